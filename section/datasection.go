package section

import (
	"io"

	"github.com/bufrio/bufr/errs"
)

// DataHeader is the 4-byte header of Section 4: a 3-byte length and one
// reserved byte, immediately preceding the bit-packed payload.
type DataHeader struct {
	SectionLength uint32
}

// ReadDataHeader reads the Section 4 header. The bit-packed payload that
// follows is decoded by package event, not here.
func ReadDataHeader(r io.Reader) (DataHeader, error) {
	length, err := readUint24(r)
	if err != nil {
		return DataHeader{}, errs.Wrap(errs.KindIO, err)
	}

	if _, err := readUint8(r); err != nil { // reserved
		return DataHeader{}, errs.Wrap(errs.KindIO, err)
	}

	return DataHeader{SectionLength: length}, nil
}
