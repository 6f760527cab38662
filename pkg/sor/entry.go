package sor

import "github.com/pkg/errors"

// backref is one backreference table slot: an entry's bytes together with
// whether they are faithfully recovered content. Dup-ref entries inherit
// both, so aliasing a passthrough payload stays flagged as undecoded.
type backref struct {
	data    []byte
	decoded bool
}

// Entry is one decoded archive record.
type Entry struct {
	// Name is the entry name after encoding fallbacks and control
	// character stripping; synthetic (entry_NNNN) when undecodable.
	Name         string
	Type         FileType
	Method       Method
	OriginalSize uint32

	// Data holds the entry's bytes. When Decoded is false they are the
	// compressed payload passed through unchanged (no decoder was
	// available or every codec attempt failed) and must not be assumed
	// to be the original content.
	Data    []byte
	Decoded bool

	// Offset is where this entry's header began; NextOffset is where the
	// following entry starts. NextOffset equal to the buffer length after
	// a truncated payload marks the last usable entry.
	Offset     int
	NextOffset int
}

// readEntry decodes the entry headered at off and returns it along with the
// next read offset. Failures are entry-granular: the decoder's loop decides
// whether to recover.
func (d *Decoder) readEntry(off int) (*Entry, error) {
	cur := d.cur
	index := len(d.backrefs)

	nameLen, err := cur.u16(off)
	if err != nil {
		return nil, err
	}
	if nameLen > maxNameLen {
		return nil, errors.Wrapf(ErrNameTooLong, "%d bytes at offset %d", nameLen, off)
	}
	rawName, err := cur.slice(off+2, int(nameLen))
	if err != nil {
		return nil, err
	}
	pos := off + 2 + int(nameLen)

	e := &Entry{
		Name:   decodeName(rawName, index, d.logger),
		Offset: off,
	}

	ft, err := cur.u8(pos)
	if err != nil {
		return nil, err
	}
	pos++

	var method uint8
	switch d.version {
	case V2:
		if method, err = cur.u8(pos); err != nil {
			return nil, err
		}
		pos++
		if e.OriginalSize, err = cur.u32(pos); err != nil {
			return nil, err
		}
		pos += 4
	default:
		if e.OriginalSize, err = cur.u32(pos); err != nil {
			return nil, err
		}
		pos += 4
		if method, err = cur.u8(pos); err != nil {
			return nil, err
		}
		pos++
	}
	e.Type = FileType(ft)
	e.Method = Method(method)

	// Metadata noise should not block extraction: out-of-range tags and
	// implausible sizes are logged and carried through.
	if e.Type > TypeUnknown {
		d.logger.Warn().Str("name", e.Name).Stringer("type", e.Type).
			Bool("tolerated", e.Type <= maxFileType).Msg("unexpected file type tag")
	}
	if e.OriginalSize > softSizeLimit {
		d.logger.Warn().Str("name", e.Name).Uint32("original_size", e.OriginalSize).Msg("declared size exceeds soft limit")
	}

	if e.Method == MethodDupRef {
		refIndex, err := cur.u32(pos)
		if err != nil {
			return nil, err
		}
		pos += 4
		if int(refIndex) >= len(d.backrefs) {
			return nil, errors.Wrapf(ErrMissingBackreference, "entry %q references %d, only %d decoded", e.Name, refIndex, len(d.backrefs))
		}
		ref := d.backrefs[refIndex]
		e.Data = ref.data
		e.Decoded = ref.decoded
		e.NextOffset = pos
		return e, nil
	}

	compressedSize, err := cur.u32(pos)
	if err != nil {
		return nil, err
	}
	pos += 4

	if pos+int(compressedSize) > cur.len() {
		// Truncated-tail recovery: treat the remainder of the buffer as
		// this entry's payload and let the loop terminate cleanly.
		d.logger.Warn().Str("name", e.Name).Uint32("compressed_size", compressedSize).Int("remaining", cur.len()-pos).
			Msg("declared payload runs past end of archive, consuming remainder")
		e.Data = d.cur.buf[pos:]
		e.Decoded = false
		e.NextOffset = cur.len()
		return e, nil
	}

	payload, err := cur.slice(pos, int(compressedSize))
	if err != nil {
		return nil, err
	}
	e.Data, e.Decoded = d.reg.decode(e.Method, payload)
	e.NextOffset = pos + int(compressedSize)
	return e, nil
}
