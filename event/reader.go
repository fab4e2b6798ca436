package event

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/bufrio/bufr/descriptor"
	"github.com/bufrio/bufr/errs"
	"github.com/bufrio/bufr/internal/bitio"
	"github.com/bufrio/bufr/internal/pool"
	"github.com/bufrio/bufr/resolve"
	"github.com/bufrio/bufr/section"
	"github.com/bufrio/bufr/tables"
)

// DataSpec is the resolved, ready-to-walk description of a message's data
// section: the subset count, the compressed flag, and the resolved
// descriptor tree (spec.md §4.3).
type DataSpec struct {
	NumberOfSubsets uint16
	IsCompressed    bool
	RootDescriptors []resolve.Descriptor
}

// NewDataSpec resolves a Section 3 data description against tables into a
// DataSpec ready to drive a Reader.
func NewDataSpec(dds section.DataDescription, t *tables.Tables) (DataSpec, error) {
	root, err := resolve.Descriptors(dds.Descriptors, t)
	if err != nil {
		return DataSpec{}, err
	}

	return DataSpec{
		NumberOfSubsets: dds.NumberOfSubsets,
		IsCompressed:    dds.Flags.IsCompressed,
		RootDescriptors: root,
	}, nil
}

type stackEntryKind int

const (
	stackSequence stackEntryKind = iota
	stackReplication
)

type stackEntry struct {
	kind        stackEntryKind
	descriptors []resolve.Descriptor
	next        uint16

	// Replication-only fields.
	remaining uint16
	inItem    bool
}

func newSequenceEntry(descriptors []resolve.Descriptor) stackEntry {
	return stackEntry{kind: stackSequence, descriptors: descriptors}
}

func newReplicationEntry(descriptors []resolve.Descriptor, count uint16) stackEntry {
	return stackEntry{
		kind:        stackReplication,
		descriptors: descriptors,
		next:        uint16(len(descriptors)),
		remaining:   count,
	}
}

// Reader walks a resolved descriptor tree against a bit-packed Section 4
// payload, one Event at a time (spec.md §4.4).
//
// Reader holds an explicit stack instead of recursing, mirroring the
// original decoder: a resolved tree can nest sequences inside replications
// inside sequences to an unbounded depth, and Go has no tail-call
// elimination to keep that safe on the call stack.
type Reader struct {
	spec                *DataSpec
	currentSubsetIndex  uint16
	bits                *bitio.Reader
	stack               []stackEntry
	temporaryOperator   *descriptor.XY
	widthOffset         int8
	scaleOffset         int8
	exhausted           bool
}

// NewReader reads the Section 4 header from r and returns a Reader
// positioned at the start of the bit-packed payload.
func NewReader(r io.Reader, spec *DataSpec) (*Reader, error) {
	if _, err := section.ReadDataHeader(r); err != nil {
		return nil, err
	}

	return &Reader{
		spec: spec,
		bits: bitio.NewReader(r),
	}, nil
}

// Unwrap returns the Reader's usage of its source as an io.Reader, for a
// caller that wants to resume plain byte reads once Section 4 has been
// fully consumed (e.g. to reach Section 5). It is meant for use once
// ReadEvent has produced Eof: the unread bits of the last partially
// consumed byte are skipped, and bytes already buffered by the bit reader
// are returned before any further bytes of the source.
func (r *Reader) Unwrap() io.Reader {
	return r.bits
}

// ReadEvent returns the next token in the data section's event stream.
// Once it returns an Eof event, further calls return ErrParserExhausted.
func (r *Reader) ReadEvent() (Event, error) {
	if r.exhausted {
		return Event{}, errs.Wrap(errs.KindFatal, errs.ErrParserExhausted)
	}

	ev, err := r.readEvent()
	if err == nil && ev.Kind == KindEof {
		r.exhausted = true
	}
	return ev, err
}

func (r *Reader) readEvent() (Event, error) {
	if len(r.stack) == 0 {
		if r.spec.IsCompressed {
			if r.currentSubsetIndex > 0 {
				return Event{Kind: KindEof}, nil
			}
		} else if r.currentSubsetIndex == r.spec.NumberOfSubsets {
			return Event{Kind: KindEof}, nil
		}

		r.stack = append(r.stack, newSequenceEntry(r.spec.RootDescriptors))
		subsetIdx := r.currentSubsetIndex
		r.currentSubsetIndex++
		if r.spec.IsCompressed {
			return Event{Kind: KindCompressedStart}, nil
		}
		return Event{Kind: KindSubsetStart, SubsetIndex: subsetIdx}, nil
	}

	return r.processNextDescriptor()
}

func (r *Reader) processNextDescriptor() (Event, error) {
	top := &r.stack[len(r.stack)-1]

	if top.kind == stackReplication {
		if int(top.next) >= len(top.descriptors) {
			if top.inItem {
				top.inItem = false
				return Event{Kind: KindReplicationItemEnd}, nil
			}
			if top.remaining > 0 {
				top.remaining--
				top.next = 0
				top.inItem = true
				return Event{Kind: KindReplicationItemStart}, nil
			}
			r.stack = r.stack[:len(r.stack)-1]
			return Event{Kind: KindReplicationEnd}, nil
		}
	}

	if int(top.next) >= len(top.descriptors) {
		r.stack = r.stack[:len(r.stack)-1]
		if len(r.stack) > 0 {
			return Event{Kind: KindSequenceEnd}, nil
		}
		if r.spec.IsCompressed {
			return Event{Kind: KindEof}, nil
		}
		return Event{Kind: KindSubsetEnd}, nil
	}

	current := top.descriptors[top.next]
	idx := top.next
	top.next++

	switch current.Kind {
	case resolve.KindData:
		return r.handleDataDescriptor(idx, current.Data)
	case resolve.KindReplication:
		return r.handleReplicationDescriptor(idx, current)
	case resolve.KindOperator:
		return r.handleOperatorDescriptor(idx, current.Operator)
	case resolve.KindSequence:
		return r.handleSequenceDescriptor(idx, current)
	default:
		return Event{}, errs.Wrap(errs.KindFatal, fmt.Errorf("%w: resolved kind %d", errs.ErrUnexpectedEvent, current.Kind))
	}
}

// f = 0
func (r *Reader) handleDataDescriptor(idx uint16, b *tables.TableBEntry) (Event, error) {
	bitWidth := uint(int(b.Bits) + int(r.widthOffset))
	refValue := b.ReferenceValue
	scale := int8(int16(b.Scale) + int16(r.scaleOffset))

	switch {
	case bitWidth <= 32:
		return r.handleNumericField(idx, b.XY, bitWidth, refValue, scale)
	case bitWidth%8 == 0:
		return r.handleCharacterField(idx, b.XY, bitWidth)
	default:
		return Event{}, errs.Wrap(errs.KindInvalid, fmt.Errorf("%w: %d", errs.ErrInvalidBitWidth, bitWidth))
	}
}

func decodeScaled(raw uint32, bitWidth uint, refValue int32, scale int8) Value {
	if uint64(raw) == (uint64(1)<<bitWidth)-1 {
		return Missing
	}
	if scale == 0 {
		return NewInteger(int32(raw) + refValue)
	}
	return NewDecimal(int32(int64(raw)+int64(refValue)), -scale)
}

func (r *Reader) handleNumericField(idx uint16, xy descriptor.XY, bitWidth uint, refValue int32, scale int8) (Event, error) {
	if !r.spec.IsCompressed {
		raw, err := r.bits.ReadUint(bitWidth)
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: KindData, Idx: idx, XY: xy, Value: decodeScaled(raw, bitWidth, refValue, scale)}, nil
	}

	localRef, err := r.bits.ReadUint(bitWidth)
	if err != nil {
		return Event{}, err
	}
	nbinc, err := r.bits.ReadUint(6)
	if err != nil {
		return Event{}, err
	}

	values := make([]Value, r.spec.NumberOfSubsets)
	if nbinc == 0 {
		v := decodeScaled(localRef, bitWidth, refValue, scale)
		for i := range values {
			values[i] = v
		}
	} else {
		for i := range values {
			inc, err := r.bits.ReadUint(uint(nbinc))
			if err != nil {
				return Event{}, err
			}
			values[i] = decodeScaled(localRef+inc, bitWidth, refValue, scale)
		}
	}

	return Event{Kind: KindCompressedData, Idx: idx, XY: xy, Values: values}, nil
}

func (r *Reader) handleCharacterField(idx uint16, xy descriptor.XY, bitWidth uint) (Event, error) {
	if r.spec.IsCompressed {
		return Event{}, errs.Wrap(errs.KindNotSupported, errs.ErrCompressedCharacterNotSupported)
	}

	n := int(bitWidth / 8)
	bb := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(bb)
	bb.ExtendOrGrow(n)
	raw := bb.Bytes()

	if err := r.bits.ReadBytesInto(raw); err != nil {
		return Event{}, err
	}

	allOnes := true
	for _, b := range raw {
		if b != 0xff {
			allOnes = false
			break
		}
	}
	if allOnes {
		return Event{Kind: KindData, Idx: idx, XY: xy, Value: Missing}, nil
	}

	if !utf8.Valid(raw) {
		return Event{}, errs.Wrap(errs.KindInvalid, fmt.Errorf("%w: width %d", errs.ErrInvalidUTF8, bitWidth))
	}

	return Event{Kind: KindData, Idx: idx, XY: xy, Value: NewString(string(raw))}, nil
}

// f = 1
func (r *Reader) handleReplicationDescriptor(idx uint16, d resolve.Descriptor) (Event, error) {
	var count uint16
	if d.IsDelayed() {
		raw, err := r.bits.ReadUint(uint(d.DelayedBits))
		if err != nil {
			return Event{}, err
		}
		count = uint16(raw)
	} else {
		count = uint16(d.ReplicationY)
	}

	r.stack = append(r.stack, newReplicationEntry(d.ReplicationChildren, count))
	return Event{Kind: KindReplicationStart, Idx: idx, ReplicationCount: count}, nil
}

// f = 2
func (r *Reader) handleOperatorDescriptor(idx uint16, xy descriptor.XY) (Event, error) {
	switch {
	case xy.X == 1 && xy.Y == 0:
		r.widthOffset = 0
	case xy.X == 1:
		r.widthOffset = int8(int16(xy.Y) - 128)
	case xy.X == 2 && xy.Y == 0:
		r.scaleOffset = 0
	case xy.X == 2:
		r.scaleOffset = int8(int16(xy.Y) - 128)
	case xy.X == 6:
		op := xy
		r.temporaryOperator = &op
	default:
		return Event{}, errs.Wrap(errs.KindNotSupported, fmt.Errorf("%w: %s", errs.ErrOperatorNotSupported, xy))
	}

	return Event{Kind: KindOperatorHandled, Idx: idx, OperatorX: xy.X, OperatorValue: int32(xy.Y)}, nil
}

// f = 3
func (r *Reader) handleSequenceDescriptor(idx uint16, d resolve.Descriptor) (Event, error) {
	r.stack = append(r.stack, newSequenceEntry(d.SequenceChildren))
	return Event{Kind: KindSequenceStart, Idx: idx, XY: d.Sequence.XY}, nil
}
