package section

import (
	"fmt"
	"io"

	"github.com/bufrio/bufr/errs"
)

// Indicator is Section 0: the "BUFR" magic, the total message length, and
// the edition number.
type Indicator struct {
	TotalLength uint32
	Edition     uint8
}

// ReadIndicator reads Section 0 from r.
//
// Returns:
//   - errs.ErrBadMagic if the first 4 bytes are not "BUFR"
//   - errs.ErrUnsupportedEdition if the edition is not 3 or 4
func ReadIndicator(r io.Reader) (Indicator, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return Indicator{}, errs.Wrap(errs.KindIO, err)
	}
	if string(magic[:]) != "BUFR" {
		return Indicator{}, errs.Wrap(errs.KindFatal, errs.ErrBadMagic)
	}

	totalLength, err := readUint24(r)
	if err != nil {
		return Indicator{}, errs.Wrap(errs.KindIO, err)
	}

	edition, err := readUint8(r)
	if err != nil {
		return Indicator{}, errs.Wrap(errs.KindIO, err)
	}
	if edition != 3 && edition != 4 {
		return Indicator{}, errs.Wrap(errs.KindFatal,
			fmt.Errorf("%w: %d", errs.ErrUnsupportedEdition, edition))
	}

	return Indicator{TotalLength: totalLength, Edition: edition}, nil
}
