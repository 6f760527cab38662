// Package sor decodes SOR archive containers: named, independently
// compressed payloads bundled in a single binary blob, in either of the two
// on-disk layout versions. The engine is responsible for framing, codec
// dispatch and backreference resolution; the LZMA/XZ bit-level decoder is
// an injected capability (see Codec and the sorxz package). Decoding is
// best-effort: only an unrecognized magic fails outright, everything else
// degrades per entry.
package sor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Version is the on-disk layout version selected by the archive magic.
type Version uint8

const (
	V1 Version = 1
	V2 Version = 2
)

func (v Version) String() string {
	return fmt.Sprintf("v%d", uint8(v))
}

var (
	magicV1 = []byte("SOR1")
	magicV2 = []byte("SOR2")
)

// ProgressFunc is invoked once per entry, before that entry is decoded.
// Because the decoder is pull-based it also serves as an early-termination
// checkpoint: a caller wanting to stop simply stops calling Next.
type ProgressFunc func(index, total int, status string)

// Options configures a Decoder. The zero value is usable: no delegated
// codec (LZMA-family methods pass payloads through), no logging, no
// progress reporting.
type Options struct {
	// Delegate is the external LZMA/XZ decode capability. Nil is valid
	// and routes methods 4 and 6 to passthrough.
	Delegate Codec

	// Logger receives entry-level warnings and codec attempt outcomes.
	Logger *zerolog.Logger

	// OnEntry reports per-entry progress.
	OnEntry ProgressFunc
}

// Decoder walks one archive buffer entry by entry. All state, including the
// backreference table, belongs to a single Decoder instance; concurrent
// decodes of different archives cannot interfere.
type Decoder struct {
	cur     cursor
	version Version
	count   int
	offset  int

	produced int
	backrefs []backref

	reg     registry
	logger  zerolog.Logger
	onEntry ProgressFunc
}

// NewDecoder validates the archive magic and positions the decoder at the
// first entry. A magic mismatch is the only whole-archive failure
// (ErrBadMagic).
func NewDecoder(buf []byte, opts Options) (*Decoder, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	d := &Decoder{
		cur:     cursor{buf: buf},
		reg:     newRegistry(opts.Delegate, logger),
		logger:  logger,
		onEntry: opts.OnEntry,
	}

	magic, err := d.cur.slice(0, 4)
	if err != nil {
		return nil, errors.Wrap(ErrBadMagic, "shorter than a magic value")
	}

	switch {
	case bytes.Equal(magic, magicV2):
		d.version = V2
		formatVersion, err := d.cur.u32(4)
		if err != nil {
			return nil, errors.Wrap(ErrBadMagic, "truncated v2 header")
		}
		count, err := d.cur.u32(8)
		if err != nil {
			return nil, errors.Wrap(ErrBadMagic, "truncated v2 header")
		}
		if formatVersion != uint32(V2) {
			logger.Warn().Uint32("format_version", formatVersion).Msg("unexpected format version field")
		}
		d.count = int(count)
		d.offset = 12
	case bytes.Equal(magic, magicV1):
		d.version = V1
		d.offset = 4
		// V1 carries no entry count; a codec-free pre-scan produces one
		// for progress reporting.
		d.count = d.prescan()
	default:
		return nil, errors.Wrapf(ErrBadMagic, "magic %q", magic)
	}

	logger.Debug().Stringer("version", d.version).Int("entries", d.count).Msg("archive header read")
	return d, nil
}

// Version reports the layout version selected by the magic.
func (d *Decoder) Version() Version {
	return d.version
}

// Count reports the declared entry count (V2) or the pre-scanned count
// (V1, a best-effort figure for progress reporting).
func (d *Decoder) Count() int {
	return d.count
}

// Next decodes and returns the next entry, or io.EOF once the archive is
// exhausted. Entry-level failures are logged with their offset context and
// recovered by skipping forward a fixed distance; the entries that follow a
// skip may be misaligned with the true boundaries.
func (d *Decoder) Next() (*Entry, error) {
	reported := false
	for d.offset < d.cur.len() && (d.version == V1 || d.produced < d.count) {
		if d.onEntry != nil && !reported {
			d.onEntry(d.produced, d.count, fmt.Sprintf("entry %d at offset %d", d.produced, d.offset))
			reported = true
		}

		e, err := d.readEntry(d.offset)
		if err != nil {
			d.logger.Warn().Err(err).Int("offset", d.offset).Msg("skipping unreadable entry")
			d.offset += recoverySkip
			continue
		}

		d.offset = e.NextOffset
		d.produced++
		d.backrefs = append(d.backrefs, backref{data: e.Data, decoded: e.Decoded})
		return e, nil
	}
	return nil, io.EOF
}

// DecodeAll decodes every entry of buf in one call. The result is partial
// on recoverable corruption and empty only for archives whose entries all
// failed; the error is non-nil only for an unrecognized magic.
func DecodeAll(buf []byte, opts Options) ([]Entry, error) {
	d, err := NewDecoder(buf, opts)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for {
		e, err := d.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, *e)
	}
}

// prescan walks entry headers without invoking any codec, purely to count
// entries for progress totals. It stops at the first unparsable header;
// the count is therefore a lower bound on corrupt input.
func (d *Decoder) prescan() int {
	var n int
	off := d.offset
	for off < d.cur.len() {
		nameLen, err := d.cur.u16(off)
		if err != nil || nameLen > maxNameLen {
			break
		}
		pos := off + 2 + int(nameLen) + 1 // name and file type

		// V1 field order: u32 originalSize, then u8 method.
		method, err := d.cur.u8(pos + 4)
		if err != nil {
			break
		}
		pos += 4 + 1

		if Method(method) == MethodDupRef {
			if pos+4 > d.cur.len() {
				break
			}
			off = pos + 4
			n++
			continue
		}

		size, err := d.cur.u32(pos)
		if err != nil {
			break
		}
		pos += 4
		if pos+int(size) > d.cur.len() {
			// The decode loop consumes the truncated tail as one entry.
			n++
			break
		}
		off = pos + int(size)
		n++
	}
	return n
}
