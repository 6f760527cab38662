package sor

import (
	"encoding/binary"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryStoreIdentity(t *testing.T) {
	reg := newRegistry(nil, zerolog.Nop())

	testCases := [][]byte{
		nil,
		{},
		{0x00},
		{0xff, 0x00, 0xab},
		[]byte("any byte sequence at all"),
	}
	for _, payload := range testCases {
		out, decoded := reg.decode(MethodStore, payload)
		assert.True(t, decoded)
		assert.Equal(t, payload, out)
	}
}

func TestRegistryPassthroughMethods(t *testing.T) {
	reg := newRegistry(nil, zerolog.Nop())
	payload := []byte{0x01, 0x02, 0x03}

	for _, m := range []Method{MethodHuffman, MethodBWTHuffman, MethodBWTArithmetic, MethodBWTLZMA, MethodBWTPPM} {
		out, decoded := reg.decode(m, payload)
		assert.False(t, decoded, "method %s", m)
		assert.Equal(t, payload, out, "method %s", m)
	}
}

func TestRegistryUnknownMethodPassthrough(t *testing.T) {
	reg := newRegistry(nil, zerolog.Nop())
	payload := []byte{0xca, 0xfe}

	out, decoded := reg.decode(Method(250), payload)
	assert.False(t, decoded)
	assert.Equal(t, payload, out)
}

func TestRegistryLZMAWithoutDelegate(t *testing.T) {
	reg := newRegistry(nil, zerolog.Nop())
	payload := []byte{0x5d, 0x00, 0x00, 0x80, 0x00}

	out, decoded := reg.decode(MethodLZMA, payload)
	assert.False(t, decoded)
	assert.Equal(t, payload, out)
}

func TestRegistryPatternSubframe(t *testing.T) {
	// u32 tableLen | table | u32 codecLen | codec payload
	table := []byte{0xde, 0xad}
	inner := []byte("abc")
	payload := make([]byte, 0, 8+len(table)+len(inner))
	payload = binary.LittleEndian.AppendUint32(payload, uint32(len(table)))
	payload = append(payload, table...)
	payload = binary.LittleEndian.AppendUint32(payload, uint32(len(inner)))
	payload = append(payload, inner...)

	delegate := &fakeDelegate{succeedOn: 1, result: []byte("patterned")}
	reg := newRegistry(delegate, zerolog.Nop())

	out, decoded := reg.decode(MethodPatternLZMA, payload)
	// The pattern table is opaque: even a successful delegated decode is
	// still substituted text, never reported as decoded content.
	assert.False(t, decoded)
	assert.Equal(t, []byte("patterned"), out)
	require.NotEmpty(t, delegate.calls)
	assert.Equal(t, inner, delegate.calls[0])
}

func TestRegistryPatternSubframeMalformed(t *testing.T) {
	reg := newRegistry(nil, zerolog.Nop())

	testCases := []struct {
		desc    string
		payload []byte
	}{
		{desc: "too short for table length", payload: []byte{0x01, 0x02}},
		{desc: "table length past end", payload: []byte{0xff, 0x00, 0x00, 0x00, 0x01}},
		{desc: "codec length past end", payload: []byte{0x01, 0x00, 0x00, 0x00, 0xaa, 0x09, 0x00, 0x00, 0x00, 0x01}},
	}
	for _, tt := range testCases {
		t.Run(tt.desc, func(t *testing.T) {
			out, decoded := reg.decode(MethodPatternLZMA, tt.payload)
			assert.False(t, decoded)
			assert.Equal(t, tt.payload, out)
		})
	}
}

func TestMethodString(t *testing.T) {
	assert.Equal(t, "store", MethodStore.String())
	assert.Equal(t, "dup-ref", MethodDupRef.String())
	assert.Equal(t, "unknown(42)", Method(42).String())
	assert.Equal(t, "text", TypeText.String())
	assert.Equal(t, "type(9)", FileType(9).String())
}
