package section

import (
	"io"

	"github.com/bufrio/bufr/errs"
)

// CheckEnd validates the Section 5 trailer.
//
// For edition 3 the stream may carry one legacy boundary marker before the
// universal trailer: either a single 0x00 byte, or the byte '7' followed
// by "77". Either form is consumed in addition to, not instead of, the
// following four-byte universal "7777" trailer (spec.md §4.7, §6.1).
func CheckEnd(r io.Reader, edition uint8) error {
	if edition == 3 {
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return errs.Wrap(errs.KindIO, err)
		}
		switch b[0] {
		case 0x00:
			// legacy single-byte boundary; fall through to the universal check.
		case '7':
			var rest [3]byte
			if _, err := io.ReadFull(r, rest[:]); err != nil {
				return errs.Wrap(errs.KindIO, err)
			}
			if string(rest[:]) != "777" {
				return errs.Wrap(errs.KindFatal, errs.ErrBadEndMarker)
			}
		default:
			return errs.Wrap(errs.KindFatal, errs.ErrBadEndMarker)
		}
	}

	var trailer [4]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		return errs.Wrap(errs.KindIO, err)
	}
	if string(trailer[:]) != "7777" {
		return errs.Wrap(errs.KindFatal, errs.ErrBadEndMarker)
	}

	return nil
}
