package sor

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDelegate records every span handed to it and succeeds once the call
// number in succeedOn is reached (0 means never).
type fakeDelegate struct {
	calls     [][]byte
	succeedOn int
	result    []byte
}

func (f *fakeDelegate) Decode(data []byte) ([]byte, error) {
	f.calls = append(f.calls, data)
	if f.succeedOn > 0 && len(f.calls) >= f.succeedOn {
		return f.result, nil
	}
	return nil, errors.New("decode failed")
}

// fakePropsDelegate additionally records parameter-sweep tuples.
type fakePropsDelegate struct {
	fakeDelegate
	props     [][3]int
	propsWins int
}

func (f *fakePropsDelegate) DecodeProps(data []byte, lc, lp, pb int) ([]byte, error) {
	f.props = append(f.props, [3]int{lc, lp, pb})
	if f.propsWins > 0 && len(f.props) >= f.propsWins {
		return f.result, nil
	}
	return nil, errors.New("decode failed")
}

func TestPipelineNilDelegate(t *testing.T) {
	p := pipeline{logger: zerolog.Nop()}

	data := []byte{0x01, 0x02, 0x03}
	out, decoded := p.decode(data)
	assert.False(t, decoded)
	assert.Equal(t, data, out)
}

func TestPipelineRawAttemptFirst(t *testing.T) {
	delegate := &fakeDelegate{succeedOn: 1, result: []byte("plain")}
	p := pipeline{delegate: delegate, logger: zerolog.Nop()}

	data := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x11}
	out, decoded := p.decode(data)
	assert.True(t, decoded)
	assert.Equal(t, []byte("plain"), out)
	require.Len(t, delegate.calls, 1)
	assert.Equal(t, data, delegate.calls[0])
}

func TestPipelineXZMagicSkipsRawAttempt(t *testing.T) {
	delegate := &fakeDelegate{succeedOn: 1, result: []byte("framed")}
	p := pipeline{delegate: delegate, logger: zerolog.Nop()}

	// Minimal framed stream: 11-byte header with no filter list, padded
	// to the next 4-byte boundary, then the payload span.
	data := append([]byte{0xfd, '7', 'z', 'X', 'Z', 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00}, []byte("payload")...)
	out, decoded := p.decode(data)
	assert.True(t, decoded)
	assert.Equal(t, []byte("framed"), out)
	require.Len(t, delegate.calls, 1)
	// The first delegate call must already be the header-stripped span.
	assert.Equal(t, []byte("payload"), delegate.calls[0])
}

func TestPipelineHeaderStripSkipsFilterList(t *testing.T) {
	delegate := &fakeDelegate{succeedOn: 1, result: []byte("ok")}
	p := pipeline{delegate: delegate, logger: zerolog.Nop()}

	var buf bytes.Buffer
	buf.Write(xzMagic)
	buf.Write([]byte{0x00, 0x01}) // version
	buf.WriteByte(0x00)           // stream flags
	buf.WriteByte(0x01)           // filter flags, bit 0: filter list present
	buf.WriteByte(0x00)           // check type
	buf.WriteByte(0x00)           // reserved
	buf.WriteByte(0x01)           // one filter
	buf.WriteByte(0x21)           // filter id
	buf.WriteByte(0x01)           // filter size
	buf.WriteByte(0xaa)           // filter data
	// header ends at offset 15, padded to the 4-byte boundary at 16
	buf.WriteByte(0x00)
	buf.Write([]byte("body"))

	out, err := p.headerStrip(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), out)
	require.Len(t, delegate.calls, 1)
	assert.Equal(t, []byte("body"), delegate.calls[0])
}

func TestPipelineSyntheticHeader(t *testing.T) {
	delegate := &fakeDelegate{succeedOn: 2, result: []byte("synthetic")}
	p := pipeline{delegate: delegate, logger: zerolog.Nop()}

	data := []byte{0x0a, 0x0b, 0x0c}
	out, decoded := p.decode(data)
	assert.True(t, decoded)
	assert.Equal(t, []byte("synthetic"), out)

	// raw, header-strip (fails structurally before calling the delegate
	// on a 3-byte span), synthetic header
	require.Len(t, delegate.calls, 2)
	synth := delegate.calls[1]
	require.Len(t, synth, lzmaHeaderSize+len(data))
	assert.Equal(t, byte(0x5d), synth[0]) // lc=3 lp=0 pb=2
	assert.Equal(t, uint32(lzmaDictSize), binary.LittleEndian.Uint32(synth[1:5]))
	assert.Equal(t, bytes.Repeat([]byte{0xff}, 8), synth[5:13])
	assert.Equal(t, data, synth[13:])
}

func TestPipelineParameterSweepOrder(t *testing.T) {
	delegate := &fakePropsDelegate{propsWins: 3}
	delegate.result = []byte("swept")
	p := pipeline{delegate: delegate, logger: zerolog.Nop()}

	out, decoded := p.decode([]byte{0x01, 0x02, 0x03, 0x04})
	assert.True(t, decoded)
	assert.Equal(t, []byte("swept"), out)

	// Stops at the first successful tuple, in declared order.
	require.Len(t, delegate.props, 3)
	for i, got := range delegate.props {
		assert.Equal(t, [3]int{lzmaProps[i].lc, lzmaProps[i].lp, lzmaProps[i].pb}, got)
	}
}

func TestPipelineTerminalPassthrough(t *testing.T) {
	delegate := &fakePropsDelegate{}
	p := pipeline{delegate: delegate, logger: zerolog.Nop()}

	data := []byte{0x10, 0x20, 0x30, 0x40}
	out, decoded := p.decode(data)
	assert.False(t, decoded)
	assert.Equal(t, data, out)
	// every attempt ran
	assert.NotEmpty(t, delegate.calls)
	assert.Len(t, delegate.props, len(lzmaProps))
}
