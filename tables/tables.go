// Package tables implements the read-only registry of BUFR Table B
// (element metadata), Table C (operator metadata, advisory only), and
// Table D (sequence metadata) entries that the descriptor resolver and
// the data event reader look up by (x,y).
//
// The static WMO table content itself is an external collaborator (spec.md
// §1): this package only defines the entry shapes and the registry; callers
// populate it at startup from whatever source they have (a generated Go
// file, a CSV loaded at init time, vendor-local overrides) via Insert.
package tables

import (
	"github.com/bufrio/bufr/descriptor"
	"github.com/bufrio/bufr/internal/options"
)

// TableBEntry describes one Table B element.
//
// Unit carries semantics for a handful of literal values: "CCITT IA5"
// selects string materialization, "Code table"/"Flag table" select 32-bit
// signed integer materialization regardless of Scale. The event reader
// does not consult Unit: it picks numeric or character decoding from the
// effective bit width alone.
type TableBEntry struct {
	XY              descriptor.XY
	ClassName       string
	ElementName     string
	Unit            string
	Scale           int8
	ReferenceValue  int32
	Bits            uint16
}

// TableCEntry describes one Table C operator. Table C is advisory: the
// event reader hard-codes the subset of operators it understands (spec.md
// §4.6) and does not consult this table to decide behavior, only to
// describe an operator in diagnostics.
type TableCEntry struct {
	X                  uint8
	Y                  *uint8 // nil when the entry applies to all y.
	OperatorName       string
	OperationDefinition string
}

// TableDEntry describes one Table D sequence: a named, statically ordered
// list of child descriptors that the resolver expands inline.
type TableDEntry struct {
	XY       descriptor.XY
	Category string
	Title    string
	SubTitle string
	Elements []descriptor.Descriptor
}

// Tables is the registry consulted during descriptor resolution.
type Tables struct {
	tableB map[descriptor.XY]*TableBEntry
	tableC map[tableCKey]*TableCEntry
	tableD map[descriptor.XY]*TableDEntry
}

type tableCKey struct {
	x uint8
	y uint8
	// anyY is true when this key was registered without a specific y
	// (an operator whose behavior doesn't vary by y).
	anyY bool
}

// Option configures a Tables registry at construction time, applied in
// order. This is how a vendor-local override table gets layered on top of
// the generated WMO tables: pass WithTableB/WithTableD/WithTableC for the
// generated set first, then again for the overrides.
type Option = options.Option[*Tables]

// WithTableB bulk-inserts Table B entries.
func WithTableB(entries []*TableBEntry) Option {
	return options.NoError(func(t *Tables) {
		for _, e := range entries {
			t.Insert(e)
		}
	})
}

// WithTableD bulk-inserts Table D entries.
func WithTableD(entries []*TableDEntry) Option {
	return options.NoError(func(t *Tables) {
		for _, e := range entries {
			t.InsertSequence(e)
		}
	})
}

// WithTableC bulk-inserts Table C entries.
func WithTableC(entries []*TableCEntry) Option {
	return options.NoError(func(t *Tables) {
		for _, e := range entries {
			t.InsertOperator(e)
		}
	})
}

// New returns a registry populated by opts, applied in order. With no
// options it returns an empty registry; use Insert/InsertOperator/
// InsertSequence to populate it by hand, typically from generated table
// data at process startup.
func New(opts ...Option) *Tables {
	t := &Tables{
		tableB: make(map[descriptor.XY]*TableBEntry),
		tableC: make(map[tableCKey]*TableCEntry),
		tableD: make(map[descriptor.XY]*TableDEntry),
	}

	// NoError-constructed options never fail; Apply's error return exists
	// for Option implementations that do validation.
	_ = options.Apply(t, opts...)

	return t
}

// Insert adds or replaces a Table B entry.
func (t *Tables) Insert(entry *TableBEntry) {
	t.tableB[entry.XY] = entry
}

// InsertSequence adds or replaces a Table D entry.
func (t *Tables) InsertSequence(entry *TableDEntry) {
	t.tableD[entry.XY] = entry
}

// InsertOperator adds or replaces a Table C entry. A nil y registers the
// entry for every y under that x.
func (t *Tables) InsertOperator(entry *TableCEntry) {
	key := tableCKey{x: entry.X}
	if entry.Y == nil {
		key.anyY = true
	} else {
		key.y = *entry.Y
	}
	t.tableC[key] = entry
}

// LookupB returns the Table B entry for xy, or (nil, false) if absent.
func (t *Tables) LookupB(xy descriptor.XY) (*TableBEntry, bool) {
	e, ok := t.tableB[xy]
	return e, ok
}

// LookupD returns the Table D entry for xy, or (nil, false) if absent.
func (t *Tables) LookupD(xy descriptor.XY) (*TableDEntry, bool) {
	e, ok := t.tableD[xy]
	return e, ok
}

// LookupC returns the advisory Table C entry for (x,y), falling back to an
// any-y registration under the same x.
func (t *Tables) LookupC(x, y uint8) (*TableCEntry, bool) {
	if e, ok := t.tableC[tableCKey{x: x, y: y}]; ok {
		return e, true
	}
	e, ok := t.tableC[tableCKey{x: x, anyY: true}]
	return e, ok
}
