package section

import (
	"io"

	"github.com/bufrio/bufr/errs"
)

// Optional is Section 2, present only when Identification.Flags.HasOptionalSection
// is set. Its content is opaque local-use data (spec.md §1 "out of scope").
type Optional struct {
	SectionLength uint32
	Data          []byte
}

// ReadOptional reads Section 2.
func ReadOptional(r io.Reader) (Optional, error) {
	length, err := readUint24(r)
	if err != nil {
		return Optional{}, errs.Wrap(errs.KindIO, err)
	}

	// Skip the reserved byte.
	if _, err := readUint8(r); err != nil {
		return Optional{}, errs.Wrap(errs.KindIO, err)
	}

	if length < 4 {
		return Optional{}, errs.Wrap(errs.KindFatal, errs.ErrSectionTooShort)
	}

	data := make([]byte, length-4)
	if _, err := io.ReadFull(r, data); err != nil {
		return Optional{}, errs.Wrap(errs.KindIO, err)
	}

	return Optional{SectionLength: length, Data: data}, nil
}
