// Package descriptor implements the BUFR FXY descriptor model: the 16-bit
// wire identifier that names a Table B element, a Table C operator, a
// Table D sequence, or a built-in replication marker. Package resolve
// expands a flat list of these into the resolved tree the event reader
// walks.
package descriptor

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Descriptor is the wire-level (f,x,y) triple packed big-endian into 16 bits:
// f occupies the top 2 bits, x the next 6, y the bottom 8.
type Descriptor struct {
	F uint8
	X uint8
	Y uint8
}

// XY returns the (x,y) pair used as the key into Table B and Table D.
func (d Descriptor) XY() XY { return XY{X: d.X, Y: d.Y} }

// String renders the descriptor in the conventional "fxxyyy" notation, e.g.
// a replication of 2 elements repeated 3 times is "102003".
func (d Descriptor) String() string {
	return fmt.Sprintf("%01d%02d%03d", d.F, d.X, d.Y)
}

// Read parses one descriptor from r, which must yield a big-endian uint16.
func Read(r io.Reader) (Descriptor, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Descriptor{}, err
	}
	val := binary.BigEndian.Uint16(buf[:])

	return Descriptor{
		F: uint8(val >> 14),
		X: uint8((val >> 8) & 0x3f),
		Y: uint8(val & 0xff),
	}, nil
}

// XY is the (x,y) key used to look up Table B and Table D entries.
type XY struct {
	X uint8
	Y uint8
}

// String renders the key in "xx-yyy" notation, e.g. "05-001".
func (xy XY) String() string { return fmt.Sprintf("%02d-%03d", xy.X, xy.Y) }
