package columnar

import (
	"fmt"
	"strconv"

	"github.com/bufrio/bufr/errs"
	"github.com/bufrio/bufr/event"
	"github.com/bufrio/bufr/tables"
)

// fieldNameContext tracks how many times each element name, sequence
// title, and replication have been seen within one parent scope, so
// repeats can be disambiguated with a "(n)" suffix the way createFieldName
// expects.
type fieldNameContext struct {
	elementCounts  map[string]int
	sequenceCounts map[string]int
	replicationNum int
}

func newFieldNameContext() *fieldNameContext {
	return &fieldNameContext{
		elementCounts:  make(map[string]int),
		sequenceCounts: make(map[string]int),
	}
}

func (c *fieldNameContext) trackElement(name string) int {
	c.elementCounts[name]++
	return c.elementCounts[name]
}

func (c *fieldNameContext) trackSequence(title string) int {
	c.sequenceCounts[title]++
	return c.sequenceCounts[title]
}

func (c *fieldNameContext) trackReplication() int {
	c.replicationNum++
	return c.replicationNum
}

func sequenceLabel(title string, count int) string {
	if count <= 1 {
		return title
	}
	return withCount(title, count)
}

// Materialize reads every event out of r and returns the resulting
// column-oriented field tree, dispatching on spec's compressed flag.
func Materialize(r *event.Reader, t *tables.Tables, spec *event.DataSpec) (*Fields, error) {
	if spec.IsCompressed {
		return materializeCompressed(r, t, spec.NumberOfSubsets)
	}
	return materializeNonCompressed(r, t)
}

func unexpectedEvent(where string, ev event.Event) error {
	return errs.Wrap(errs.KindFatal, fmt.Errorf("%w: in %s, kind %d", errs.ErrUnexpectedEvent, where, ev.Kind))
}

func replicationLabel(n int) string {
	return "replication:" + strconv.Itoa(n)
}

// --- compressed path: already column-oriented ------------------------------

func materializeCompressed(r *event.Reader, t *tables.Tables, numSubsets uint16) (*Fields, error) {
	fields := newFields()
	for {
		ev, err := r.ReadEvent()
		if err != nil {
			return nil, err
		}
		switch ev.Kind {
		case event.KindCompressedStart:
			// At the top level parseCompressedStructure returns on Eof,
			// which ends the compressed stream.
			if err := parseCompressedStructure(r, t, fields, numSubsets); err != nil {
				return nil, err
			}
			return dropEmptyStructs(fields), nil
		case event.KindEof:
			return dropEmptyStructs(fields), nil
		default:
			return nil, unexpectedEvent("materializeCompressed", ev)
		}
	}
}

func parseCompressedStructure(r *event.Reader, t *tables.Tables, fields *Fields, numSubsets uint16) error {
	ctx := newFieldNameContext()
	for {
		ev, err := r.ReadEvent()
		if err != nil {
			return err
		}
		switch ev.Kind {
		case event.KindCompressedData:
			b, ok := t.LookupB(ev.XY)
			if !ok {
				return errs.Wrap(errs.KindTable, fmt.Errorf("%w: %s", errs.ErrTableBNotFound, ev.XY))
			}
			count := ctx.trackElement(b.ElementName)
			fields.Set(createFieldName(b, count), &Column{Kind: KindScalar, Values: ev.Values, Type: determineType(b)})

		case event.KindSequenceStart:
			d, ok := t.LookupD(ev.XY)
			if !ok {
				return errs.Wrap(errs.KindTable, fmt.Errorf("%w: %s", errs.ErrTableDNotFound, ev.XY))
			}
			count := ctx.trackSequence(d.Title)
			nested := newFields()
			if err := parseCompressedStructure(r, t, nested, numSubsets); err != nil {
				return err
			}
			fields.Set(sequenceLabel(d.Title, count), &Column{Kind: KindStruct, Fields: nested})

		case event.KindReplicationStart:
			repNum := ctx.trackReplication()
			col, err := parseCompressedReplication(r, t, numSubsets)
			if err != nil {
				return err
			}
			fields.Set(replicationLabel(repNum), col)

		case event.KindOperatorHandled:
			// advisory only; no column produced.

		case event.KindSequenceEnd, event.KindEof:
			return nil

		default:
			return unexpectedEvent("parseCompressedStructure", ev)
		}
	}
}

func parseCompressedReplication(r *event.Reader, t *tables.Tables, numSubsets uint16) (*Column, error) {
	var items []*Fields
	for {
		ev, err := r.ReadEvent()
		if err != nil {
			return nil, err
		}
		switch ev.Kind {
		case event.KindReplicationItemStart:
			item := newFields()
			if err := parseCompressedReplicationItem(r, t, item, numSubsets); err != nil {
				return nil, err
			}
			items = append(items, item)
		case event.KindReplicationEnd:
			return buildCompressedList(items, numSubsets), nil
		default:
			return nil, unexpectedEvent("parseCompressedReplication", ev)
		}
	}
}

func parseCompressedReplicationItem(r *event.Reader, t *tables.Tables, fields *Fields, numSubsets uint16) error {
	ctx := newFieldNameContext()
	for {
		ev, err := r.ReadEvent()
		if err != nil {
			return err
		}
		switch ev.Kind {
		case event.KindCompressedData:
			b, ok := t.LookupB(ev.XY)
			if !ok {
				return errs.Wrap(errs.KindTable, fmt.Errorf("%w: %s", errs.ErrTableBNotFound, ev.XY))
			}
			count := ctx.trackElement(b.ElementName)
			fields.Set(createFieldName(b, count), &Column{Kind: KindScalar, Values: ev.Values, Type: determineType(b)})

		case event.KindSequenceStart:
			d, ok := t.LookupD(ev.XY)
			if !ok {
				return errs.Wrap(errs.KindTable, fmt.Errorf("%w: %s", errs.ErrTableDNotFound, ev.XY))
			}
			count := ctx.trackSequence(d.Title)
			nested := newFields()
			if err := parseCompressedStructure(r, t, nested, numSubsets); err != nil {
				return err
			}
			fields.Set(sequenceLabel(d.Title, count), &Column{Kind: KindStruct, Fields: nested})

		case event.KindReplicationStart:
			repNum := ctx.trackReplication()
			col, err := parseCompressedReplication(r, t, numSubsets)
			if err != nil {
				return err
			}
			fields.Set(replicationLabel(repNum), col)

		case event.KindOperatorHandled:
			// advisory only; no column produced.

		case event.KindReplicationItemEnd:
			return nil

		default:
			return unexpectedEvent("parseCompressedReplicationItem", ev)
		}
	}
}

// buildCompressedList merges per-item field columns into one offset-encoded
// List column. Every subset contributes the same number of items in the
// compressed encoding this materializer supports (spec.md's Non-goal on
// variable per-subset delayed counts under compression): all len(items) of
// them, with item values laid out subset by subset.
func buildCompressedList(items []*Fields, numSubsets uint16) *Column {
	merged := newFields()
	if len(items) > 0 {
		first := items[0]
		for pair := first.Oldest(); pair != nil; pair = pair.Next() {
			var values []event.Value
			typ := TypeNull
			for s := 0; s < int(numSubsets); s++ {
				for _, item := range items {
					col, ok := item.Get(pair.Key)
					if !ok || col.Kind != KindScalar || s >= len(col.Values) {
						continue
					}
					values = append(values, col.Values[s])
					if typ == TypeNull {
						typ = col.Type
					}
				}
			}
			merged.Set(pair.Key, &Column{Kind: KindScalar, Values: values, Type: typ})
		}
	}

	offsets := make([]int32, int(numSubsets)+1)
	for i := range offsets {
		offsets[i] = int32(i * len(items))
	}

	return &Column{Kind: KindList, Offsets: offsets, Items: &Column{Kind: KindStruct, Fields: merged}}
}
