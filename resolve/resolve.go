// Package resolve expands a flat list of wire descriptors into the
// resolved descriptor tree the event reader walks: Table B lookups become
// leaves, Table D sequences are inlined recursively, and f=1 replication
// spans are turned into structural Replication nodes so that f=1 never
// appears in the resolved tree (spec.md §3 invariant).
package resolve

import (
	"fmt"

	"github.com/bufrio/bufr/descriptor"
	"github.com/bufrio/bufr/errs"
	"github.com/bufrio/bufr/tables"
)

// Descriptor is a node in the resolved tree. Exactly one of the Data/
// Replication/Operator/Sequence fields is meaningful, selected by Kind.
type Descriptor struct {
	Kind Kind

	// Data is set when Kind == KindData.
	Data *tables.TableBEntry

	// Replication fields, set when Kind == KindReplication.
	ReplicationY      uint8 // literal repeat count, or 0 when delayed.
	DelayedBits       uint8 // width of the delayed count marker; 0 if not delayed.
	ReplicationChildren []Descriptor

	// Operator is set when Kind == KindOperator.
	Operator descriptor.XY

	// Sequence fields, set when Kind == KindSequence.
	Sequence         *tables.TableDEntry
	SequenceChildren []Descriptor
}

// Kind discriminates the variants of a resolved Descriptor.
type Kind int

const (
	KindData Kind = iota
	KindReplication
	KindOperator
	KindSequence
)

// IsDelayed reports whether a replication node's count must be read from
// the bit stream rather than taken literally from ReplicationY.
func (d Descriptor) IsDelayed() bool {
	return d.Kind == KindReplication && d.ReplicationY == 0
}

// fromDescriptor resolves a single non-replication descriptor.
func fromDescriptor(desc descriptor.Descriptor, t *tables.Tables) (Descriptor, error) {
	switch desc.F {
	case 0:
		b, ok := t.LookupB(desc.XY())
		if !ok {
			return Descriptor{}, errs.Wrap(errs.KindTable,
				fmt.Errorf("%w: %s", errs.ErrTableBNotFound, desc.XY()))
		}
		return Descriptor{Kind: KindData, Data: b}, nil
	case 2:
		return Descriptor{Kind: KindOperator, Operator: desc.XY()}, nil
	case 3:
		d, ok := t.LookupD(desc.XY())
		if !ok {
			return Descriptor{}, errs.Wrap(errs.KindTable,
				fmt.Errorf("%w: %s", errs.ErrTableDNotFound, desc.XY()))
		}
		children, err := Descriptors(d.Elements, t)
		if err != nil {
			return Descriptor{}, err
		}
		return Descriptor{Kind: KindSequence, Sequence: d, SequenceChildren: children}, nil
	default:
		return Descriptor{}, errs.Wrap(errs.KindFatal,
			fmt.Errorf("%w: unsupported descriptor f=%d at %s", errs.ErrTableBNotFound, desc.F, desc.XY()))
	}
}

// delayedBitsFor maps a delayed-count marker descriptor to its bit width.
// (0,31,3) is a documented vendor quirk treated as 8 bits by convention
// (spec.md §9).
func delayedBitsFor(marker descriptor.Descriptor) (uint8, bool) {
	if marker.F != 0 || marker.X != 31 {
		return 0, false
	}
	switch marker.Y {
	case 0:
		return 1, true
	case 1:
		return 8, true
	case 2:
		return 16, true
	case 3:
		return 8, true
	default:
		return 0, false
	}
}

// Descriptors resolves a flat descriptor list into a resolved tree,
// recursively inlining sequences and grouping replication spans.
func Descriptors(descriptors []descriptor.Descriptor, t *tables.Tables) ([]Descriptor, error) {
	var resolved []Descriptor
	pos := 0
	for pos < len(descriptors) {
		d := descriptors[pos]
		if d.F == 1 {
			var delayedBits uint8
			if d.Y == 0 {
				pos++
				if pos >= len(descriptors) {
					return nil, errs.Wrap(errs.KindFatal, errs.ErrBadDelayedMarker)
				}
				bits, ok := delayedBitsFor(descriptors[pos])
				if !ok {
					return nil, errs.Wrap(errs.KindFatal,
						fmt.Errorf("%w: %s", errs.ErrBadDelayedMarker, descriptors[pos]))
				}
				delayedBits = bits
			}
			pos++
			span := int(d.X)
			if pos+span > len(descriptors) {
				return nil, errs.Wrap(errs.KindFatal, errs.ErrReplicationOutOfBounds)
			}
			children, err := Descriptors(descriptors[pos:pos+span], t)
			if err != nil {
				return nil, err
			}
			resolved = append(resolved, Descriptor{
				Kind:                KindReplication,
				ReplicationY:        d.Y,
				DelayedBits:         delayedBits,
				ReplicationChildren: children,
			})
			pos += span
			continue
		}

		rd, err := fromDescriptor(d, t)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, rd)
		pos++
	}

	return resolved, nil
}
