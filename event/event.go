package event

import "github.com/bufrio/bufr/descriptor"

// Kind discriminates the variants of Event.
type Kind int

const (
	KindSubsetStart Kind = iota
	KindSubsetEnd
	KindCompressedStart
	KindSequenceStart
	KindSequenceEnd
	KindReplicationStart
	KindReplicationItemStart
	KindReplicationItemEnd
	KindReplicationEnd
	KindData
	KindCompressedData
	KindOperatorHandled
	KindEof
)

// Event is the sum type emitted by Reader.ReadEvent, one token at a time
// (spec.md §4.4, §6).
type Event struct {
	Kind Kind

	// Idx is the child-position cursor at the point of emission, set on
	// SequenceStart, ReplicationStart, Data, CompressedData, and
	// OperatorHandled.
	Idx uint16

	// SubsetIndex is set on SubsetStart.
	SubsetIndex uint16

	// XY is set on SequenceStart, Data, and CompressedData.
	XY descriptor.XY

	// ReplicationCount is set on ReplicationStart.
	ReplicationCount uint16

	// Value is set on Data.
	Value Value

	// Values is set on CompressedData, one entry per subset.
	Values []Value

	// OperatorX/OperatorValue are set on OperatorHandled.
	OperatorX     uint8
	OperatorValue int32
}
