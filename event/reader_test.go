package event

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufrio/bufr/descriptor"
	"github.com/bufrio/bufr/errs"
	"github.com/bufrio/bufr/resolve"
	"github.com/bufrio/bufr/section"
	"github.com/bufrio/bufr/tables"
)

func sectionDataDescription(t *testing.T, xy descriptor.XY) section.DataDescription {
	t.Helper()
	return section.DataDescription{
		NumberOfSubsets: 1,
		Descriptors:     []descriptor.Descriptor{{F: 0, X: xy.X, Y: xy.Y}},
	}
}

// bitWriter packs MSB-first bits into bytes, the same order bitio.Reader
// consumes them in, so tests can hand-assemble a Section 4 payload.
type bitWriter struct {
	buf   []byte
	cur   byte
	nbits uint
}

func (w *bitWriter) writeBits(v uint32, n uint) {
	for i := int(n) - 1; i >= 0; i-- {
		bit := byte((v >> uint(i)) & 1)
		w.cur = (w.cur << 1) | bit
		w.nbits++
		if w.nbits == 8 {
			w.buf = append(w.buf, w.cur)
			w.cur = 0
			w.nbits = 0
		}
	}
}

func (w *bitWriter) writeBytes(b []byte) {
	for _, c := range b {
		w.writeBits(uint32(c), 8)
	}
}

func (w *bitWriter) bytes() []byte {
	if w.nbits > 0 {
		w.cur <<= (8 - w.nbits)
		w.buf = append(w.buf, w.cur)
		w.cur = 0
		w.nbits = 0
	}
	return w.buf
}

// withDataHeader builds a Section 4 header (3-byte length + reserved byte)
// followed by payload; the length value itself isn't validated by
// ReadDataHeader against what follows.
func withDataHeader(payload []byte) []byte {
	return append([]byte{0, 0, 0, 0}, payload...)
}

func newTestReader(t *testing.T, spec *DataSpec, payload []byte) *Reader {
	t.Helper()
	r, err := NewReader(bytes.NewReader(withDataHeader(payload)), spec)
	require.NoError(t, err)
	return r
}

func tableBField(xy descriptor.XY, bits uint16, scale int8, ref int32) resolve.Descriptor {
	return resolve.Descriptor{
		Kind: resolve.KindData,
		Data: &tables.TableBEntry{XY: xy, Bits: bits, Scale: scale, ReferenceValue: ref},
	}
}

func TestReader_SingleSubsetSingleField(t *testing.T) {
	xy := descriptor.XY{X: 1, Y: 1}
	spec := &DataSpec{
		NumberOfSubsets: 1,
		RootDescriptors: []resolve.Descriptor{tableBField(xy, 7, 0, 0)},
	}

	var w bitWriter
	w.writeBits(5, 7)
	r := newTestReader(t, spec, w.bytes())

	ev, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, KindSubsetStart, ev.Kind)
	assert.Equal(t, uint16(0), ev.SubsetIndex)

	ev, err = r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, KindData, ev.Kind)
	assert.Equal(t, xy, ev.XY)
	assert.Equal(t, NewInteger(5), ev.Value)

	ev, err = r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, KindSubsetEnd, ev.Kind)

	ev, err = r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, KindEof, ev.Kind)
}

func TestReader_ReadAfterEofIsExhausted(t *testing.T) {
	xy := descriptor.XY{X: 1, Y: 1}
	spec := &DataSpec{
		NumberOfSubsets: 1,
		RootDescriptors: []resolve.Descriptor{tableBField(xy, 7, 0, 0)},
	}

	var w bitWriter
	w.writeBits(5, 7)
	r := newTestReader(t, spec, w.bytes())

	for {
		ev, err := r.ReadEvent()
		require.NoError(t, err)
		if ev.Kind == KindEof {
			break
		}
	}

	_, err := r.ReadEvent()
	assert.ErrorIs(t, err, errs.ErrParserExhausted)
}

func TestReader_AllOnesIsMissing(t *testing.T) {
	xy := descriptor.XY{X: 1, Y: 1}
	spec := &DataSpec{
		NumberOfSubsets: 1,
		RootDescriptors: []resolve.Descriptor{tableBField(xy, 7, 0, 0)},
	}

	var w bitWriter
	w.writeBits(0x7F, 7) // all-ones for a 7-bit field.
	r := newTestReader(t, spec, w.bytes())

	_, err := r.ReadEvent() // SubsetStart
	require.NoError(t, err)

	ev, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, Missing, ev.Value)
}

func TestReader_MultipleSubsets(t *testing.T) {
	xy := descriptor.XY{X: 1, Y: 1}
	spec := &DataSpec{
		NumberOfSubsets: 2,
		RootDescriptors: []resolve.Descriptor{tableBField(xy, 8, 0, 0)},
	}

	var w bitWriter
	w.writeBits(10, 8)
	w.writeBits(20, 8)
	r := newTestReader(t, spec, w.bytes())

	var values []int32
	for {
		ev, err := r.ReadEvent()
		require.NoError(t, err)
		if ev.Kind == KindEof {
			break
		}
		if ev.Kind == KindData {
			values = append(values, ev.Value.Integer)
		}
	}
	assert.Equal(t, []int32{10, 20}, values)
}

func TestReader_DelayedReplication(t *testing.T) {
	childXY := descriptor.XY{X: 1, Y: 2}
	spec := &DataSpec{
		NumberOfSubsets: 1,
		RootDescriptors: []resolve.Descriptor{
			{
				Kind:                resolve.KindReplication,
				DelayedBits:         8,
				ReplicationChildren: []resolve.Descriptor{tableBField(childXY, 4, 0, 0)},
			},
		},
	}

	var w bitWriter
	w.writeBits(2, 8) // delayed count = 2
	w.writeBits(3, 4) // item 0 value
	w.writeBits(9, 4) // item 1 value
	r := newTestReader(t, spec, w.bytes())

	var kinds []Kind
	var values []int32
	for {
		ev, err := r.ReadEvent()
		require.NoError(t, err)
		kinds = append(kinds, ev.Kind)
		if ev.Kind == KindData {
			values = append(values, ev.Value.Integer)
		}
		if ev.Kind == KindEof {
			break
		}
	}

	assert.Equal(t, []Kind{
		KindSubsetStart,
		KindReplicationStart,
		KindReplicationItemStart, KindData, KindReplicationItemEnd,
		KindReplicationItemStart, KindData, KindReplicationItemEnd,
		KindReplicationEnd,
		KindSubsetEnd,
		KindEof,
	}, kinds)
	assert.Equal(t, []int32{3, 9}, values)
}

func TestReader_DelayedReplicationZeroCount(t *testing.T) {
	childXY := descriptor.XY{X: 1, Y: 2}
	spec := &DataSpec{
		NumberOfSubsets: 1,
		RootDescriptors: []resolve.Descriptor{
			{
				Kind:                resolve.KindReplication,
				ReplicationY:        0,
				DelayedBits:         8,
				ReplicationChildren: []resolve.Descriptor{tableBField(childXY, 4, 0, 0)},
			},
		},
	}

	var w bitWriter
	w.writeBits(0, 8) // delayed count = 0: no items.
	r := newTestReader(t, spec, w.bytes())

	var kinds []Kind
	for {
		ev, err := r.ReadEvent()
		require.NoError(t, err)
		kinds = append(kinds, ev.Kind)
		if ev.Kind == KindEof {
			break
		}
	}

	assert.Equal(t, []Kind{
		KindSubsetStart,
		KindReplicationStart,
		KindReplicationEnd,
		KindSubsetEnd,
		KindEof,
	}, kinds)
}

// Character fields only take the whole-byte decode path once their bit
// width exceeds the 32-bit numeric fast path (e.g. the seeded "Station or
// site name" element at 160 bits); anything narrower decodes numerically
// regardless of unit.
func TestReader_CharacterField(t *testing.T) {
	xy := descriptor.XY{X: 1, Y: 15}
	spec := &DataSpec{
		NumberOfSubsets: 1,
		RootDescriptors: []resolve.Descriptor{tableBField(xy, 40, 0, 0)},
	}

	var w bitWriter
	w.writeBytes([]byte("ABCDE"))
	r := newTestReader(t, spec, w.bytes())

	_, err := r.ReadEvent() // SubsetStart
	require.NoError(t, err)

	ev, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, NewString("ABCDE"), ev.Value)
}

func TestReader_CharacterField_AllOnesIsMissing(t *testing.T) {
	xy := descriptor.XY{X: 1, Y: 15}
	spec := &DataSpec{
		NumberOfSubsets: 1,
		RootDescriptors: []resolve.Descriptor{tableBField(xy, 40, 0, 0)},
	}

	var w bitWriter
	w.writeBytes([]byte{0xff, 0xff, 0xff, 0xff, 0xff})
	r := newTestReader(t, spec, w.bytes())

	_, err := r.ReadEvent()
	require.NoError(t, err)
	ev, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, Missing, ev.Value)
}

func TestReader_CompressedCharacterFieldUnsupported(t *testing.T) {
	xy := descriptor.XY{X: 1, Y: 15}
	spec := &DataSpec{
		NumberOfSubsets: 2,
		IsCompressed:    true,
		RootDescriptors: []resolve.Descriptor{tableBField(xy, 40, 0, 0)},
	}
	r := newTestReader(t, spec, nil)

	_, err := r.ReadEvent() // CompressedStart
	require.NoError(t, err)
	_, err = r.ReadEvent()
	assert.Error(t, err)
}

func TestReader_CompressedNumericField(t *testing.T) {
	xy := descriptor.XY{X: 12, Y: 101}
	spec := &DataSpec{
		NumberOfSubsets: 2,
		IsCompressed:    true,
		RootDescriptors: []resolve.Descriptor{tableBField(xy, 4, 0, 0)},
	}

	var w bitWriter
	w.writeBits(3, 4) // local reference value
	w.writeBits(2, 6) // nbinc: 2-bit per-subset increments
	w.writeBits(0, 2) // subset 0 increment
	w.writeBits(1, 2) // subset 1 increment
	r := newTestReader(t, spec, w.bytes())

	ev, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, KindCompressedStart, ev.Kind)

	ev, err = r.ReadEvent()
	require.NoError(t, err)
	require.Equal(t, KindCompressedData, ev.Kind)
	require.Len(t, ev.Values, 2)
	assert.Equal(t, NewInteger(3), ev.Values[0])
	assert.Equal(t, NewInteger(4), ev.Values[1])

	ev, err = r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, KindEof, ev.Kind)
}

func TestReader_CompressedNumericField_ConstantAcrossSubsets(t *testing.T) {
	xy := descriptor.XY{X: 12, Y: 101}
	spec := &DataSpec{
		NumberOfSubsets: 3,
		IsCompressed:    true,
		RootDescriptors: []resolve.Descriptor{tableBField(xy, 4, 0, 0)},
	}

	var w bitWriter
	w.writeBits(7, 4) // local reference value, same for every subset
	w.writeBits(0, 6) // nbinc == 0: broadcast, no per-subset increments follow
	r := newTestReader(t, spec, w.bytes())

	_, err := r.ReadEvent() // CompressedStart
	require.NoError(t, err)

	ev, err := r.ReadEvent()
	require.NoError(t, err)
	require.Len(t, ev.Values, 3)
	for _, v := range ev.Values {
		assert.Equal(t, NewInteger(7), v)
	}
}

func TestReader_OperatorWidthAndScaleOffset(t *testing.T) {
	xy := descriptor.XY{X: 1, Y: 1}
	spec := &DataSpec{
		NumberOfSubsets: 1,
		RootDescriptors: []resolve.Descriptor{
			{Kind: resolve.KindOperator, Operator: descriptor.XY{X: 1, Y: 130}}, // width += 2
			{Kind: resolve.KindOperator, Operator: descriptor.XY{X: 2, Y: 130}}, // scale += 2
			tableBField(xy, 6, 0, 0),                                           // effective: 8 bits, scale 2
		},
	}

	var w bitWriter
	w.writeBits(210, 8)
	r := newTestReader(t, spec, w.bytes())

	_, err := r.ReadEvent() // SubsetStart
	require.NoError(t, err)

	ev, err := r.ReadEvent() // width operator
	require.NoError(t, err)
	assert.Equal(t, KindOperatorHandled, ev.Kind)
	assert.Equal(t, uint8(1), ev.OperatorX)
	assert.Equal(t, int32(130), ev.OperatorValue)

	_, err = r.ReadEvent() // scale operator
	require.NoError(t, err)

	ev, err = r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, NewDecimal(210, -2), ev.Value)
}

func TestReader_UnsupportedOperator(t *testing.T) {
	spec := &DataSpec{
		NumberOfSubsets: 1,
		RootDescriptors: []resolve.Descriptor{
			{Kind: resolve.KindOperator, Operator: descriptor.XY{X: 99, Y: 0}},
		},
	}
	r := newTestReader(t, spec, nil)

	_, err := r.ReadEvent() // SubsetStart
	require.NoError(t, err)
	_, err = r.ReadEvent()
	assert.Error(t, err)
}

func TestReader_SequenceNesting(t *testing.T) {
	childXY := descriptor.XY{X: 5, Y: 1}
	seq := &tables.TableDEntry{XY: descriptor.XY{X: 1, Y: 90}, Title: "Station position"}
	spec := &DataSpec{
		NumberOfSubsets: 1,
		RootDescriptors: []resolve.Descriptor{
			{
				Kind:             resolve.KindSequence,
				Sequence:         seq,
				SequenceChildren: []resolve.Descriptor{tableBField(childXY, 8, 0, 0)},
			},
		},
	}

	var w bitWriter
	w.writeBits(42, 8)
	r := newTestReader(t, spec, w.bytes())

	var kinds []Kind
	for {
		ev, err := r.ReadEvent()
		require.NoError(t, err)
		kinds = append(kinds, ev.Kind)
		if ev.Kind == KindEof {
			break
		}
	}

	assert.Equal(t, []Kind{
		KindSubsetStart,
		KindSequenceStart,
		KindData,
		KindSequenceEnd,
		KindSubsetEnd,
		KindEof,
	}, kinds)
}

func TestNewDataSpec(t *testing.T) {
	tb := tables.New()
	xy := descriptor.XY{X: 1, Y: 1}
	tb.Insert(&tables.TableBEntry{XY: xy, Bits: 8})

	dds := sectionDataDescription(t, xy)
	spec, err := NewDataSpec(dds, tb)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), spec.NumberOfSubsets)
	require.Len(t, spec.RootDescriptors, 1)
	assert.Equal(t, resolve.KindData, spec.RootDescriptors[0].Kind)
}
