// Package section parses the four BUFR header sections (indicator,
// identification, optional, data-description), the data-section header
// that precedes the bit-packed payload, and the end-of-message trailer.
//
// # Section layout
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Section 0 — Indicator (8 bytes, fixed)                   │
//	│  "BUFR" magic, 3-byte total length, 1-byte edition        │
//	├─────────────────────────────────────────────────────────┤
//	│ Section 1 — Identification (edition-dependent length)    │
//	│  centre/sub-centre, category, master table version, date  │
//	├─────────────────────────────────────────────────────────┤
//	│ Section 2 — Optional (present only if §1 flag bit 7 set) │
//	│  opaque local-use bytes                                   │
//	├─────────────────────────────────────────────────────────┤
//	│ Section 3 — Data description                              │
//	│  subset count, observed/compressed flags, FXY descriptors │
//	├─────────────────────────────────────────────────────────┤
//	│ Section 4 — Data (3-byte length + 1 reserved byte header, │
//	│  bit-packed payload decoded by package event)             │
//	├─────────────────────────────────────────────────────────┤
//	│ Section 5 — End: "7777", optionally preceded on edition 3 │
//	│  by one legacy boundary byte                              │
//	└─────────────────────────────────────────────────────────┘
//
// All multi-byte integers are big-endian, per the WMO wire format; fields
// in the data section (§4) are bit-packed with no byte alignment between
// fields, which is why that section is parsed separately by package event
// rather than by this package.
package section
