// Package sorxz implements the sor.Codec capability on top of
// github.com/ulikunitz/xz, covering XZ-framed streams and classic raw-LZMA
// streams with a 13-byte header.
package sorxz

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// dictSize is the dictionary capacity assumed when reconstructing a lost
// LZMA header (8 MiB, what the SOR encoder uses).
const dictSize = 1 << 23

// Codec decodes XZ and classic-LZMA streams. The zero value is ready to
// use.
type Codec struct{}

// Decode decompresses data, sniffing the XZ magic to pick between the XZ
// container reader and the classic LZMA reader.
func (Codec) Decode(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, xzMagic) {
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "open xz stream")
		}
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(err, "read xz stream")
		}
		return out, nil
	}

	r, err := lzma.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "open lzma stream")
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read lzma stream")
	}
	return out, nil
}

// DecodeProps decodes a raw LZMA stream whose 13-byte header was lost,
// reconstructing it from explicit properties. This is the optional
// sor.PropsCodec capability behind the pipeline's parameter sweep.
func (c Codec) DecodeProps(data []byte, lc, lp, pb int) ([]byte, error) {
	if lc < 0 || lc > 8 || lp < 0 || lp > 4 || pb < 0 || pb > 4 {
		return nil, errors.Errorf("invalid lzma properties lc=%d lp=%d pb=%d", lc, lp, pb)
	}
	hdr := make([]byte, 13)
	hdr[0] = byte(lc + lp*9 + pb*45)
	binary.LittleEndian.PutUint32(hdr[1:5], dictSize)
	for i := 5; i < len(hdr); i++ {
		hdr[i] = 0xFF // unknown uncompressed length
	}
	return c.Decode(append(hdr, data...))
}
