package descriptor_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufrio/bufr/descriptor"
)

func TestDescriptor_String(t *testing.T) {
	tests := []struct {
		name string
		d    descriptor.Descriptor
		want string
	}{
		{"table b", descriptor.Descriptor{F: 0, X: 1, Y: 2}, "001002"},
		{"replication", descriptor.Descriptor{F: 1, X: 2, Y: 3}, "102003"},
		{"operator", descriptor.Descriptor{F: 2, X: 1, Y: 0}, "201000"},
		{"sequence", descriptor.Descriptor{F: 3, X: 1, Y: 90}, "301090"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.String())
		})
	}
}

func TestDescriptor_XY(t *testing.T) {
	d := descriptor.Descriptor{F: 0, X: 5, Y: 1}
	assert.Equal(t, descriptor.XY{X: 5, Y: 1}, d.XY())
}

func TestXY_String(t *testing.T) {
	xy := descriptor.XY{X: 5, Y: 1}
	assert.Equal(t, "05-001", xy.String())
}

func TestRead(t *testing.T) {
	tests := []struct {
		name  string
		bytes []byte
		want  descriptor.Descriptor
	}{
		{"table b 0-00-001", []byte{0x00, 0x01}, descriptor.Descriptor{F: 0, X: 0, Y: 1}},
		{"replication 1-02-003", []byte{0x42, 0x03}, descriptor.Descriptor{F: 1, X: 2, Y: 3}},
		{"operator 2-01-000", []byte{0x81, 0x00}, descriptor.Descriptor{F: 2, X: 1, Y: 0}},
		{"sequence 3-01-090", []byte{0xc1, 0x5a}, descriptor.Descriptor{F: 3, X: 1, Y: 90}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := descriptor.Read(bytes.NewReader(tt.bytes))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRead_Truncated(t *testing.T) {
	_, err := descriptor.Read(bytes.NewReader([]byte{0x00}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestRead_RoundTrip(t *testing.T) {
	d := descriptor.Descriptor{F: 0, X: 12, Y: 101}
	val := uint16(d.F)<<14 | uint16(d.X)<<8 | uint16(d.Y)
	buf := []byte{byte(val >> 8), byte(val)}

	got, err := descriptor.Read(bytes.NewReader(buf))
	require.NoError(t, err)
	assert.Equal(t, d, got)
}
