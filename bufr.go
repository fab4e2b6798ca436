// Package bufr decodes WMO BUFR (Binary Universal Form for the
// Representation of meteorological data) messages: editions 3 and 4,
// compressed and non-compressed subset encoding, delayed and fixed
// replication, and the handful of Table C operators the original decoder
// this package was modeled on understands.
//
// # Basic usage
//
// Decoding one message and materializing it into columns:
//
//	t := tables.NewSeed()
//	msg, err := bufr.Decode(r, t)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fields, err := msg.Materialize()
//
// Streaming a message's events directly, for callers that want to avoid
// the columnar materializer's schema-from-first-subset pass:
//
//	events, err := msg.Events()
//	for {
//	    ev, err := events.ReadEvent()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if ev.Kind == event.KindEof {
//	        break
//	    }
//	}
//
// # Package structure
//
// This package is a thin entry point over descriptor, tables, resolve,
// section, event, and columnar. Use those directly for finer control, in
// particular a long-running decoder processing many messages sharing the
// same template should use Decoder instead of the package-level Decode
// function, to reuse the resolved descriptor tree across messages.
package bufr

import (
	"io"

	"github.com/bufrio/bufr/columnar"
	"github.com/bufrio/bufr/event"
	"github.com/bufrio/bufr/internal/progcache"
	"github.com/bufrio/bufr/resolve"
	"github.com/bufrio/bufr/section"
	"github.com/bufrio/bufr/tables"
)

// Message is one decoded BUFR message, positioned after Section 3 and
// ready to walk Section 4's data event stream.
type Message struct {
	Edition        uint8
	Identification section.Identification
	Optional       *section.Optional
	Tables         *tables.Tables

	spec event.DataSpec
	body io.Reader
}

// Decode parses Sections 0 through 3 of a BUFR message from r against t
// and returns a Message ready to read Section 4. It resolves the
// descriptor tree once per call; a caller decoding many messages that
// share the same template should use a Decoder instead.
func Decode(r io.Reader, t *tables.Tables) (*Message, error) {
	return (&Decoder{tables: t, cache: nil}).decode(r)
}

// Decoder decodes a stream of BUFR messages against a fixed Tables
// registry, caching each distinct data-description template's resolved
// descriptor tree so that repeated messages of the same template (the
// common case for an operational feed) skip re-resolution.
type Decoder struct {
	tables *tables.Tables
	cache  *progcache.Cache[[]resolve.Descriptor]
}

// NewDecoder returns a Decoder backed by t, with an empty template cache.
func NewDecoder(t *tables.Tables) *Decoder {
	return &Decoder{tables: t, cache: progcache.New[[]resolve.Descriptor]()}
}

// Decode parses one message from r.
func (d *Decoder) Decode(r io.Reader) (*Message, error) {
	return d.decode(r)
}

func (d *Decoder) decode(r io.Reader) (*Message, error) {
	indicator, err := section.ReadIndicator(r)
	if err != nil {
		return nil, err
	}

	ident, err := section.ReadIdentification(r, indicator.Edition)
	if err != nil {
		return nil, err
	}

	var optional *section.Optional
	if ident.Flags.HasOptionalSection {
		o, err := section.ReadOptional(r)
		if err != nil {
			return nil, err
		}
		optional = &o
	}

	dds, err := section.ReadDataDescription(r)
	if err != nil {
		return nil, err
	}

	root, err := d.resolve(dds)
	if err != nil {
		return nil, err
	}

	return &Message{
		Edition:        indicator.Edition,
		Identification: ident,
		Optional:       optional,
		Tables:         d.tables,
		spec: event.DataSpec{
			NumberOfSubsets: dds.NumberOfSubsets,
			IsCompressed:    dds.Flags.IsCompressed,
			RootDescriptors: root,
		},
		body: r,
	}, nil
}

func (d *Decoder) resolve(dds section.DataDescription) ([]resolve.Descriptor, error) {
	if d.cache == nil {
		return resolve.Descriptors(dds.Descriptors, d.tables)
	}

	key := progcache.KeyOf(dds.RawDescriptorBytes)
	if cached, ok := d.cache.Get(key); ok {
		return cached, nil
	}

	root, err := resolve.Descriptors(dds.Descriptors, d.tables)
	if err != nil {
		return nil, err
	}
	d.cache.Put(key, root)

	return root, nil
}

// Events returns an event.Reader positioned at the start of Section 4's
// bit-packed payload.
func (m *Message) Events() (*event.Reader, error) {
	return event.NewReader(m.body, &m.spec)
}

// Materialize decodes the entire data section into column-oriented
// fields, then validates the Section 5 trailer.
func (m *Message) Materialize() (*columnar.Fields, error) {
	r, err := m.Events()
	if err != nil {
		return nil, err
	}

	fields, err := columnar.Materialize(r, m.Tables, &m.spec)
	if err != nil {
		return nil, err
	}

	if err := section.CheckEnd(r.Unwrap(), m.Edition); err != nil {
		return nil, err
	}

	return fields, nil
}
