package sor

import "github.com/rs/zerolog"

// Codec decodes one compressed payload into its original bytes. The
// LZMA/XZ capability backing methods 4 and 6 is supplied by the caller
// through this interface; a nil Codec is a valid state and routes those
// methods to passthrough.
type Codec interface {
	Decode(data []byte) ([]byte, error)
}

// PropsCodec is optionally implemented by delegates that can decode a raw
// LZMA stream from explicit literal-context/position properties. When
// present it enables the pipeline's parameter sweep.
type PropsCodec interface {
	DecodeProps(data []byte, lc, lp, pb int) ([]byte, error)
}

// registry maps method codes to payload handling. Store is the identity
// codec; Huffman, the BWT combinations and PPM have no working decoder in
// this system and fall through to passthrough; the LZMA-family methods go
// through the delegated-codec pipeline. MethodDupRef never reaches the
// registry: the entry decoder resolves it against the backreference table.
type registry struct {
	pipeline pipeline
	logger   zerolog.Logger
}

func newRegistry(delegate Codec, logger zerolog.Logger) registry {
	return registry{
		pipeline: pipeline{delegate: delegate, logger: logger},
		logger:   logger,
	}
}

// decode dispatches payload per method and reports whether the returned
// bytes are faithfully recovered content. Passthrough results, and
// pattern-substituted payloads this engine cannot reverse, report false.
func (r registry) decode(m Method, payload []byte) ([]byte, bool) {
	switch m {
	case MethodStore:
		return payload, true
	case MethodLZMA:
		return r.pipeline.decode(payload)
	case MethodPatternLZMA:
		return r.decodePattern(payload)
	default:
		if !m.known() {
			r.logger.Warn().Stringer("method", m).Msg("unknown compression method, keeping payload as-is")
		} else {
			r.logger.Debug().Stringer("method", m).Msg("no decoder available, keeping payload as-is")
		}
		return payload, false
	}
}

// decodePattern unwraps the method 6 sub-frame: a pattern table this engine
// does not interpret, followed by a delegated-codec payload. Even when the
// LZMA leg succeeds the result is still pattern-substituted text, so it is
// never reported as decoded.
func (r registry) decodePattern(payload []byte) ([]byte, bool) {
	cur := cursor{buf: payload}

	tableLen, err := cur.u32(0)
	if err != nil {
		r.logger.Warn().Err(err).Msg("malformed pattern sub-frame, keeping payload as-is")
		return payload, false
	}
	codecOff := 4 + int(tableLen)
	codecLen, err := cur.u32(codecOff)
	if err != nil {
		r.logger.Warn().Err(err).Msg("malformed pattern sub-frame, keeping payload as-is")
		return payload, false
	}
	inner, err := cur.slice(codecOff+4, int(codecLen))
	if err != nil {
		r.logger.Warn().Err(err).Msg("malformed pattern sub-frame, keeping payload as-is")
		return payload, false
	}

	out, _ := r.pipeline.decode(inner)
	return out, false
}
