package columnar

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/bufrio/bufr/errs"
	"github.com/bufrio/bufr/event"
	"github.com/bufrio/bufr/tables"
)

// rowKind discriminates the variants of rowValue, the intermediate
// row-oriented shape one non-compressed subset is parsed into before its
// fields are appended onto the running column builders.
type rowKind int

const (
	rowScalar rowKind = iota
	rowStruct
	rowList
)

type rowValue struct {
	kind   rowKind
	scalar event.Value
	field  *tables.TableBEntry
	fields *rowFields
	items  []*rowFields
}

type rowFields = orderedmap.OrderedMap[string, *rowValue]

func newRowFields() *rowFields { return orderedmap.New[string, *rowValue]() }

// materializeNonCompressed parses every subset in row order, using the
// first subset to establish column shape and type, then appends every
// subsequent subset's values onto that shape.
func materializeNonCompressed(r *event.Reader, t *tables.Tables) (*Fields, error) {
	ev, err := r.ReadEvent()
	if err != nil {
		return nil, err
	}

	var builders *columnBuilders
	switch ev.Kind {
	case event.KindSubsetStart:
		first, err := parseSubset(r, t)
		if err != nil {
			return nil, err
		}
		builders = newColumnBuilders(first)
		appendRowToColumns(first, builders)
	case event.KindEof:
		return newFields(), nil
	default:
		return nil, unexpectedEvent("materializeNonCompressed", ev)
	}

	for {
		ev, err := r.ReadEvent()
		if err != nil {
			return nil, err
		}
		switch ev.Kind {
		case event.KindSubsetStart:
			subset, err := parseSubset(r, t)
			if err != nil {
				return nil, err
			}
			appendRowToColumns(subset, builders)
		case event.KindEof:
			return dropEmptyStructs(builders.finish()), nil
		default:
			return nil, unexpectedEvent("materializeNonCompressed", ev)
		}
	}
}

func parseSubset(r *event.Reader, t *tables.Tables) (*rowFields, error) {
	fields := newRowFields()
	ctx := newFieldNameContext()

	for {
		ev, err := r.ReadEvent()
		if err != nil {
			return nil, err
		}
		switch ev.Kind {
		case event.KindSubsetEnd:
			return fields, nil

		case event.KindData:
			b, ok := t.LookupB(ev.XY)
			if !ok {
				return nil, errs.Wrap(errs.KindTable, fmt.Errorf("%w: %s", errs.ErrTableBNotFound, ev.XY))
			}
			count := ctx.trackElement(b.ElementName)
			fields.Set(createFieldName(b, count), &rowValue{kind: rowScalar, scalar: ev.Value, field: b})

		case event.KindSequenceStart:
			d, ok := t.LookupD(ev.XY)
			if !ok {
				return nil, errs.Wrap(errs.KindTable, fmt.Errorf("%w: %s", errs.ErrTableDNotFound, ev.XY))
			}
			count := ctx.trackSequence(d.Title)
			nested, err := parseSequence(r, t)
			if err != nil {
				return nil, err
			}
			fields.Set(sequenceLabel(d.Title, count), &rowValue{kind: rowStruct, fields: nested})

		case event.KindReplicationStart:
			repNum := ctx.trackReplication()
			items, err := parseReplication(r, t)
			if err != nil {
				return nil, err
			}
			fields.Set(replicationLabel(repNum), &rowValue{kind: rowList, items: items})

		case event.KindOperatorHandled:
			// advisory only; no field produced.

		default:
			return nil, unexpectedEvent("parseSubset", ev)
		}
	}
}

func parseSequence(r *event.Reader, t *tables.Tables) (*rowFields, error) {
	fields := newRowFields()
	ctx := newFieldNameContext()

	for {
		ev, err := r.ReadEvent()
		if err != nil {
			return nil, err
		}
		switch ev.Kind {
		case event.KindSequenceEnd, event.KindReplicationItemEnd:
			return fields, nil

		case event.KindData:
			b, ok := t.LookupB(ev.XY)
			if !ok {
				return nil, errs.Wrap(errs.KindTable, fmt.Errorf("%w: %s", errs.ErrTableBNotFound, ev.XY))
			}
			count := ctx.trackElement(b.ElementName)
			fields.Set(createFieldName(b, count), &rowValue{kind: rowScalar, scalar: ev.Value, field: b})

		case event.KindSequenceStart:
			d, ok := t.LookupD(ev.XY)
			if !ok {
				return nil, errs.Wrap(errs.KindTable, fmt.Errorf("%w: %s", errs.ErrTableDNotFound, ev.XY))
			}
			count := ctx.trackSequence(d.Title)
			nested, err := parseSequence(r, t)
			if err != nil {
				return nil, err
			}
			fields.Set(sequenceLabel(d.Title, count), &rowValue{kind: rowStruct, fields: nested})

		case event.KindReplicationStart:
			repNum := ctx.trackReplication()
			items, err := parseReplication(r, t)
			if err != nil {
				return nil, err
			}
			fields.Set(replicationLabel(repNum), &rowValue{kind: rowList, items: items})

		case event.KindOperatorHandled:
			// advisory only; no field produced.

		default:
			return nil, unexpectedEvent("parseSequence", ev)
		}
	}
}

func parseReplication(r *event.Reader, t *tables.Tables) ([]*rowFields, error) {
	var items []*rowFields
	for {
		ev, err := r.ReadEvent()
		if err != nil {
			return nil, err
		}
		switch ev.Kind {
		case event.KindReplicationEnd:
			return items, nil
		case event.KindReplicationItemStart:
			item, err := parseSequence(r, t)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		default:
			return nil, unexpectedEvent("parseReplication", ev)
		}
	}
}
