// Package columnar materializes a data event stream into a column-oriented
// tree: one Column per Table B element, Table D sequence, or replication,
// named and typed the way a downstream Arrow/Parquet writer would expect.
//
// No Arrow/Parquet binding exists anywhere in the dependency set this
// module draws from, so Column is a dependency-free nested value instead
// of an arrow.RecordBatch: producing one is left to an external collaborator
// that already depends on the columnar format it targets.
package columnar

import (
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/bufrio/bufr/event"
	"github.com/bufrio/bufr/tables"
)

// Type is the inferred scalar type of a Column's values.
type Type int

const (
	TypeNull Type = iota
	TypeString
	TypeInt32
	TypeFloat64
)

// Fields is an insertion-ordered map from field name to Column, matching
// the field order the descriptor tree defined them in.
type Fields = orderedmap.OrderedMap[string, *Column]

// Kind discriminates the variants of Column.
type Kind int

const (
	KindScalar Kind = iota
	KindStruct
	KindList
)

// Column is one node of the materialized tree: a leaf of typed scalar
// values, a struct of named child columns (one Table D sequence), or a
// list of struct items (one replication), offset-encoded the way a
// variable-length Arrow list column is.
type Column struct {
	Kind Kind

	// Scalar fields.
	Values []event.Value
	Type   Type

	// Struct fields.
	Fields *Fields

	// List fields.
	Offsets []int32
	Items   *Column
}

func newFields() *Fields { return orderedmap.New[string, *Column]() }

// determineType infers a Column's scalar type from a Table B entry's unit
// and scale, matching the original decoder's type-inference rule: code and
// flag tables are always integers regardless of declared scale, a zero
// scale is an integer, a negative scale widens to float64, and a positive
// scale stays an integer.
func determineType(b *tables.TableBEntry) Type {
	switch b.Unit {
	case "CCITT IA5":
		return TypeString
	case "Code table", "Flag table":
		return TypeInt32
	}
	switch {
	case b.Scale == 0:
		return TypeInt32
	case b.Scale < 0:
		return TypeFloat64
	default:
		return TypeInt32
	}
}

// createFieldName builds the column's field name from a Table B entry:
// the bare element name when its unit carries no information ("Numeric"),
// otherwise the element name with its unit bracketed, and a "(n)" suffix
// disambiguating the n-th repeat of the same element within one parent.
func createFieldName(b *tables.TableBEntry, count int) string {
	if b.Unit == "Numeric" {
		if count <= 1 {
			return b.ElementName
		}
		return withCount(b.ElementName, count)
	}

	base := b.ElementName + " [" + b.Unit + "]"
	if count <= 1 {
		return base
	}
	return withCount(base, count)
}

func withCount(s string, count int) string {
	return s + " (" + strconv.Itoa(count) + ")"
}

// isEmptyStruct reports whether column is a struct with no fields, or a
// list whose items are such a struct — a shape most columnar writers
// (Parquet in particular) cannot represent and that materialize elides.
func isEmptyStruct(column *Column) bool {
	switch column.Kind {
	case KindStruct:
		return column.Fields.Len() == 0
	case KindList:
		return isEmptyStruct(column.Items)
	default:
		return false
	}
}

// dropEmptyStructs returns a copy of fields with every empty-struct column
// removed.
func dropEmptyStructs(fields *Fields) *Fields {
	out := newFields()
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		if isEmptyStruct(pair.Value) {
			continue
		}
		out.Set(pair.Key, pair.Value)
	}
	return out
}
