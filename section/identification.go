package section

import (
	"io"

	"github.com/bufrio/bufr/errs"
)

// IdentificationFlags is the single flags byte of Section 1.
type IdentificationFlags struct {
	HasOptionalSection bool
}

func readIdentificationFlags(r io.Reader) (IdentificationFlags, error) {
	b, err := readUint8(r)
	if err != nil {
		return IdentificationFlags{}, errs.Wrap(errs.KindIO, err)
	}

	return IdentificationFlags{HasOptionalSection: b&0b1000_0000 != 0}, nil
}

// Identification is Section 1, normalized to the edition-4 shape
// regardless of which edition was actually on the wire: edition-3's
// 8-bit centre/sub-centre/year fields are widened, its missing second is
// set to 0, and its missing local sub-category is set to 0 (spec.md
// §4.1).
type Identification struct {
	SectionLength             uint32
	MasterTableNumber         uint8
	Centre                    uint16
	SubCentre                 uint16
	UpdateSequenceNumber      uint8
	Flags                     IdentificationFlags
	DataCategory              uint8
	InternationalSubCategory  uint8
	LocalSubCategory          uint8
	MasterTableVersion        uint8
	LocalTablesVersion        uint8
	Year                      uint16
	Month, Day                uint8
	Hour, Minute, Second      uint8
	LocalUse                  []byte
}

// ReadIdentification reads Section 1, dispatching on edition.
func ReadIdentification(r io.Reader, edition uint8) (Identification, error) {
	if edition == 3 {
		return readIdentificationV3(r)
	}

	return readIdentificationV4(r)
}

func readIdentificationV4(r io.Reader) (Identification, error) {
	length, err := readUint24(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	if length < 22 {
		return Identification{}, errs.Wrap(errs.KindFatal, errs.ErrSectionTooShort)
	}

	id := Identification{SectionLength: length}

	id.MasterTableNumber, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}

	id.Centre, err = readUint16(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.SubCentre, err = readUint16(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.UpdateSequenceNumber, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.Flags, err = readIdentificationFlags(r)
	if err != nil {
		return Identification{}, err
	}
	id.DataCategory, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.InternationalSubCategory, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.LocalSubCategory, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.MasterTableVersion, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.LocalTablesVersion, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.Year, err = readUint16(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.Month, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.Day, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.Hour, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.Minute, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.Second, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}

	localUse := make([]byte, length-22)
	if _, err := io.ReadFull(r, localUse); err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.LocalUse = localUse

	return id, nil
}

func readIdentificationV3(r io.Reader) (Identification, error) {
	length, err := readUint24(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	if length < 17 {
		return Identification{}, errs.Wrap(errs.KindFatal, errs.ErrSectionTooShort)
	}

	id := Identification{SectionLength: length}

	id.MasterTableNumber, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	subCentre, err := readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.SubCentre = uint16(subCentre)

	centre, err := readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.Centre = uint16(centre)

	id.UpdateSequenceNumber, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.Flags, err = readIdentificationFlags(r)
	if err != nil {
		return Identification{}, err
	}
	id.DataCategory, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	dataSubCategory, err := readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.InternationalSubCategory = dataSubCategory
	id.LocalSubCategory = 0

	id.MasterTableVersion, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.LocalTablesVersion, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}

	year, err := readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.Year = uint16(year)

	id.Month, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.Day, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.Hour, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.Minute, err = readUint8(r)
	if err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.Second = 0

	localUse := make([]byte, length-17)
	if _, err := io.ReadFull(r, localUse); err != nil {
		return Identification{}, errs.Wrap(errs.KindIO, err)
	}
	id.LocalUse = localUse

	return id, nil
}
