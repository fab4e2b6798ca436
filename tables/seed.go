package tables

import "github.com/bufrio/bufr/descriptor"

// NewSeed returns a registry pre-populated with a small, hand-picked subset
// of the real WMO master tables: the delayed-replication width markers that
// the resolver must always recognize (0-31-000..003), plus a handful of
// commonly used Table B elements and Table D sequences useful for examples
// and tests. It is not a substitute for the full master tables, which are
// the caller's responsibility to load (spec.md §1, §6) — production callers
// should build their own *Tables from generated WMO table data and only
// fall back to NewSeed for quick experiments.
func NewSeed() *Tables {
	t := New()

	for _, e := range seedTableB {
		entry := e
		t.Insert(&entry)
	}
	for _, e := range seedTableD {
		entry := e
		t.InsertSequence(&entry)
	}
	for _, e := range seedTableC {
		entry := e
		t.InsertOperator(&entry)
	}

	return t
}

var seedTableB = []TableBEntry{
	{
		XY: descriptor.XY{X: 31, Y: 0}, ClassName: "Replication", ElementName: "Delayed descriptor replication factor",
		Unit: "Numeric", Scale: 0, ReferenceValue: 0, Bits: 1,
	},
	{
		XY: descriptor.XY{X: 31, Y: 1}, ClassName: "Replication", ElementName: "Delayed descriptor replication factor",
		Unit: "Numeric", Scale: 0, ReferenceValue: 0, Bits: 8,
	},
	{
		XY: descriptor.XY{X: 31, Y: 2}, ClassName: "Replication", ElementName: "Extended delayed descriptor replication factor",
		Unit: "Numeric", Scale: 0, ReferenceValue: 0, Bits: 16,
	},
	{
		XY: descriptor.XY{X: 31, Y: 3}, ClassName: "Replication", ElementName: "Delayed descriptor and data repetition factor",
		Unit: "Numeric", Scale: 0, ReferenceValue: 0, Bits: 8,
	},
	{
		XY: descriptor.XY{X: 1, Y: 1}, ClassName: "Identification", ElementName: "WMO block number",
		Unit: "Numeric", Scale: 0, ReferenceValue: 0, Bits: 7,
	},
	{
		XY: descriptor.XY{X: 1, Y: 2}, ClassName: "Identification", ElementName: "WMO station number",
		Unit: "Numeric", Scale: 0, ReferenceValue: 0, Bits: 10,
	},
	{
		XY: descriptor.XY{X: 1, Y: 15}, ClassName: "Identification", ElementName: "Station or site name",
		Unit: "CCITT IA5", Scale: 0, ReferenceValue: 0, Bits: 160,
	},
	{
		XY: descriptor.XY{X: 5, Y: 1}, ClassName: "Location", ElementName: "Latitude (high accuracy)",
		Unit: "Numeric", Scale: 5, ReferenceValue: -9000000, Bits: 25,
	},
	{
		XY: descriptor.XY{X: 6, Y: 1}, ClassName: "Location", ElementName: "Longitude (high accuracy)",
		Unit: "Numeric", Scale: 5, ReferenceValue: -18000000, Bits: 26,
	},
	{
		XY: descriptor.XY{X: 7, Y: 1}, ClassName: "Location", ElementName: "Height of station",
		Unit: "Numeric", Scale: 0, ReferenceValue: -400, Bits: 15,
	},
	{
		XY: descriptor.XY{X: 12, Y: 101}, ClassName: "Temperature", ElementName: "Temperature/dry-bulb temperature",
		Unit: "Numeric", Scale: 2, ReferenceValue: 0, Bits: 16,
	},
	{
		XY: descriptor.XY{X: 10, Y: 51}, ClassName: "Pressure", ElementName: "Pressure reduced to mean sea level",
		Unit: "Numeric", Scale: -1, ReferenceValue: 0, Bits: 14,
	},
	{
		XY: descriptor.XY{X: 20, Y: 3}, ClassName: "Clouds", ElementName: "Present weather",
		Unit: "Code table", Scale: 0, ReferenceValue: 0, Bits: 7,
	},
}

var seedTableD = []TableDEntry{
	{
		XY: descriptor.XY{X: 1, Y: 90}, Category: "Location", Title: "Station position",
		Elements: []descriptor.Descriptor{
			{F: 0, X: 5, Y: 1},
			{F: 0, X: 6, Y: 1},
			{F: 0, X: 7, Y: 1},
		},
	},
}

var seedTableC = []TableCEntry{
	{X: 1, Y: nil, OperatorName: "Change data width", OperationDefinition: "Add YYY-128 bits to the defined width"},
	{X: 2, Y: nil, OperatorName: "Change scale", OperationDefinition: "Add YYY-128 to the defined scale"},
	{X: 6, Y: nil, OperatorName: "Signify data width", OperationDefinition: "YYY bits of data follow for the local descriptor"},
}
