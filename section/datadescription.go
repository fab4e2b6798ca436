package section

import (
	"io"

	"github.com/bufrio/bufr/descriptor"
	"github.com/bufrio/bufr/errs"
)

// DataDescriptionFlags is the single flags byte of Section 3.
type DataDescriptionFlags struct {
	IsObservedData bool
	IsCompressed   bool
}

func readDataDescriptionFlags(r io.Reader) (DataDescriptionFlags, error) {
	b, err := readUint8(r)
	if err != nil {
		return DataDescriptionFlags{}, errs.Wrap(errs.KindIO, err)
	}

	return DataDescriptionFlags{
		IsObservedData: b&0b1000_0000 != 0,
		IsCompressed:   b&0b0100_0000 != 0,
	}, nil
}

// DataDescription is Section 3: the subset count, the observed/compressed
// flags, and the flat FXY program the descriptor resolver expands.
type DataDescription struct {
	SectionLength     uint32
	NumberOfSubsets   uint16
	Flags             DataDescriptionFlags
	Descriptors       []descriptor.Descriptor
	RawDescriptorBytes []byte
}

// ReadDataDescription reads Section 3.
func ReadDataDescription(r io.Reader) (DataDescription, error) {
	length, err := readUint24(r)
	if err != nil {
		return DataDescription{}, errs.Wrap(errs.KindIO, err)
	}

	// Skip the reserved byte.
	if _, err := readUint8(r); err != nil {
		return DataDescription{}, errs.Wrap(errs.KindIO, err)
	}

	if length < 7 {
		return DataDescription{}, errs.Wrap(errs.KindFatal, errs.ErrSectionTooShort)
	}

	numberOfSubsets, err := readUint16(r)
	if err != nil {
		return DataDescription{}, errs.Wrap(errs.KindIO, err)
	}

	flags, err := readDataDescriptionFlags(r)
	if err != nil {
		return DataDescription{}, err
	}

	descriptorCount := int((length - 7) / 2)
	rawBytes := make([]byte, descriptorCount*2)
	if _, err := io.ReadFull(r, rawBytes); err != nil {
		return DataDescription{}, errs.Wrap(errs.KindIO, err)
	}

	descriptors := make([]descriptor.Descriptor, descriptorCount)
	for i := 0; i < descriptorCount; i++ {
		val := uint16(rawBytes[i*2])<<8 | uint16(rawBytes[i*2+1])
		descriptors[i] = descriptor.Descriptor{
			F: uint8(val >> 14),
			X: uint8((val >> 8) & 0x3f),
			Y: uint8(val & 0xff),
		}
	}

	paddingLen := int(length) - 7 - len(rawBytes)
	if paddingLen > 0 {
		padding := make([]byte, paddingLen)
		if _, err := io.ReadFull(r, padding); err != nil {
			return DataDescription{}, errs.Wrap(errs.KindIO, err)
		}
	}

	return DataDescription{
		SectionLength:      length,
		NumberOfSubsets:    numberOfSubsets,
		Flags:              flags,
		Descriptors:        descriptors,
		RawDescriptorBytes: rawBytes,
	}, nil
}
