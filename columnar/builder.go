package columnar

import "github.com/bufrio/bufr/event"

// columnBuilders accumulates per-subset rowValues into Column trees, one
// builder node per field established by the first subset. Later subsets
// append onto whatever shape the first subset defined; a field the first
// subset didn't have is silently ignored, matching an optional/conditional
// element that happened not to appear there.
type columnBuilders struct {
	order []string
	byKey map[string]*columnBuilder
}

type columnBuilder struct {
	kind Kind

	// Scalar.
	values []event.Value
	typ    Type

	// Struct.
	fields *columnBuilders

	// List: a replication's items share one schema by construction
	// (spec.md §4.2), so every item's fields are merged into one nested
	// columnBuilders rather than tracked per item position.
	offsets    []int32
	itemFields *columnBuilders
}

func newColumnBuilders(first *rowFields) *columnBuilders {
	b := &columnBuilders{byKey: make(map[string]*columnBuilder)}
	for pair := first.Oldest(); pair != nil; pair = pair.Next() {
		b.order = append(b.order, pair.Key)
		b.byKey[pair.Key] = newColumnBuilderFor(pair.Value)
	}
	return b
}

func newColumnBuilderFor(v *rowValue) *columnBuilder {
	switch v.kind {
	case rowStruct:
		return &columnBuilder{kind: KindStruct, fields: newColumnBuilders(v.fields)}
	case rowList:
		var itemFields *columnBuilders
		if len(v.items) > 0 {
			itemFields = newColumnBuilders(v.items[0])
		} else {
			itemFields = &columnBuilders{byKey: make(map[string]*columnBuilder)}
		}
		return &columnBuilder{kind: KindList, offsets: []int32{0}, itemFields: itemFields}
	default:
		return &columnBuilder{kind: KindScalar, typ: determineType(v.field)}
	}
}

func appendRowToColumns(row *rowFields, b *columnBuilders) {
	for pair := row.Oldest(); pair != nil; pair = pair.Next() {
		cb, ok := b.byKey[pair.Key]
		if !ok {
			continue
		}
		appendValue(pair.Value, cb)
	}
}

func appendValue(v *rowValue, cb *columnBuilder) {
	switch v.kind {
	case rowScalar:
		if cb.kind == KindScalar {
			cb.values = append(cb.values, v.scalar)
		}
	case rowStruct:
		if cb.kind == KindStruct {
			appendRowToColumns(v.fields, cb.fields)
		}
	case rowList:
		if cb.kind == KindList {
			last := cb.offsets[len(cb.offsets)-1]
			cb.offsets = append(cb.offsets, last+int32(len(v.items)))
			for _, item := range v.items {
				appendRowToColumns(item, cb.itemFields)
			}
		}
	}
}

func (b *columnBuilders) finish() *Fields {
	fields := newFields()
	for _, key := range b.order {
		fields.Set(key, b.byKey[key].finish())
	}
	return fields
}

func (cb *columnBuilder) finish() *Column {
	switch cb.kind {
	case KindStruct:
		return &Column{Kind: KindStruct, Fields: cb.fields.finish()}
	case KindList:
		return &Column{
			Kind:    KindList,
			Offsets: cb.offsets,
			Items:   &Column{Kind: KindStruct, Fields: cb.itemFields.finish()},
		}
	default:
		return &Column{Kind: KindScalar, Values: cb.values, Type: cb.typ}
	}
}
