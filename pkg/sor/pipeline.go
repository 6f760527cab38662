package sor

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Raw LZMA header constants used by the synthetic-header attempt. These
// mirror what the SOR encoder writes: props = lc + lp*9 + pb*45 with
// lc=3, lp=0, pb=2, an 8 MiB dictionary and the unknown-length sentinel.
const (
	lzmaDictSize   = 1 << 23
	lzmaHeaderSize = 13
)

// xzMagic is the first five bytes of an XZ stream.
var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z'}

// lzmaProps is the fixed parameter-sweep order. The encoder's own defaults
// come first, then the tuples other LZMA tooling commonly emits.
var lzmaProps = []struct{ lc, lp, pb int }{
	{3, 0, 2},
	{3, 0, 0},
	{0, 0, 2},
	{0, 0, 0},
	{2, 0, 0},
	{1, 0, 0},
	{0, 2, 0},
}

// pipeline is the delegated-codec fallback chain for LZMA-family payloads.
// The exact framing the encoder used is not knowable upfront, so a bounded,
// ordered list of interpretations is tried: the raw span, the span with an
// XZ-style header stripped, the span behind a synthetic raw-LZMA header,
// and finally a sweep over plausible properties. Nothing escapes this
// boundary: when every attempt fails the original bytes come back
// unchanged, flagged as not decoded, because the entry's metadata is still
// useful to the caller.
type pipeline struct {
	delegate Codec
	logger   zerolog.Logger
}

func (p pipeline) decode(data []byte) ([]byte, bool) {
	if p.delegate == nil {
		return data, false
	}

	var attempts []attempt[[]byte]
	if !bytes.HasPrefix(data, xzMagic) {
		attempts = append(attempts, attempt[[]byte]{
			name: "raw",
			run:  func() ([]byte, error) { return p.delegate.Decode(data) },
		})
	}
	attempts = append(attempts,
		attempt[[]byte]{
			name: "header-strip",
			run:  func() ([]byte, error) { return p.headerStrip(data) },
		},
		attempt[[]byte]{
			name: "synthetic-header",
			run:  func() ([]byte, error) { return p.delegate.Decode(withSyntheticHeader(data, 3, 0, 2)) },
		},
	)
	if pc, ok := p.delegate.(PropsCodec); ok {
		for _, t := range lzmaProps {
			t := t
			attempts = append(attempts, attempt[[]byte]{
				name: fmt.Sprintf("sweep lc=%d lp=%d pb=%d", t.lc, t.lp, t.pb),
				run:  func() ([]byte, error) { return pc.DecodeProps(data, t.lc, t.lp, t.pb) },
			})
		}
	}

	out, step, err := firstSuccess(attempts)
	if err != nil {
		p.logger.Debug().Err(err).Int("size", len(data)).Msg("all codec attempts failed, keeping payload as-is")
		return data, false
	}
	p.logger.Debug().Str("attempt", step).Int("size", len(data)).Msg("delegated codec succeeded")
	return out, true
}

// headerStrip parses an XZ/7z-style framed stream: 5 magic bytes, u16
// version, stream flags, filter flags, check type and a reserved byte,
// optionally followed by a filter list, padded to 4-byte alignment. The
// remaining span is handed to the delegate.
func (p pipeline) headerStrip(data []byte) ([]byte, error) {
	if len(data) < 11 {
		return nil, errors.Errorf("framed stream too short: %d bytes", len(data))
	}
	filterFlags := data[8]
	off := 11
	if filterFlags&0x01 != 0 {
		if off >= len(data) {
			return nil, errors.New("framed stream truncated at filter count")
		}
		count := int(data[off])
		off++
		for i := 0; i < count; i++ {
			if off+2 > len(data) {
				return nil, errors.Errorf("framed stream truncated in filter %d", i)
			}
			size := int(data[off+1])
			off += 2 + size
		}
	}
	off = (off + 3) &^ 3
	if off > len(data) {
		return nil, errors.New("framed stream shorter than its header")
	}
	return p.delegate.Decode(data[off:])
}

// withSyntheticHeader prepends a constructed raw-LZMA header to a span that
// appears to have lost its own.
func withSyntheticHeader(data []byte, lc, lp, pb int) []byte {
	hdr := make([]byte, lzmaHeaderSize, lzmaHeaderSize+len(data))
	hdr[0] = byte(lc + lp*9 + pb*45)
	binary.LittleEndian.PutUint32(hdr[1:5], lzmaDictSize)
	for i := 5; i < lzmaHeaderSize; i++ {
		hdr[i] = 0xFF // unknown uncompressed length
	}
	return append(hdr, data...)
}
