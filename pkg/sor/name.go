package sor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/unicode"
)

// decodeName turns raw entry name bytes into a usable string. Encoders have
// been observed writing UTF-8 as well as both UTF-16 flavors, so the legs
// are tried in that order; when all fail, or the name is empty once control
// characters are stripped, a synthetic placeholder keyed on the entry
// position is used.
func decodeName(raw []byte, index int, logger zerolog.Logger) string {
	name, leg, err := firstSuccess([]attempt[string]{
		{name: "utf-8", run: func() (string, error) { return decodeUTF8(raw) }},
		{name: "utf-16le", run: func() (string, error) { return decodeUTF16(raw, unicode.LittleEndian) }},
		{name: "utf-16be", run: func() (string, error) { return decodeUTF16(raw, unicode.BigEndian) }},
	})
	if err != nil {
		logger.Warn().Err(err).Int("entry", index).Msg("cannot decode entry name")
		name = ""
	} else if leg != "utf-8" {
		logger.Debug().Str("encoding", leg).Int("entry", index).Msg("entry name decoded with fallback encoding")
	}

	name = stripControl(name)
	if name == "" {
		name = fmt.Sprintf("entry_%04d", index)
	}
	return name
}

func decodeUTF8(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", errors.New("invalid utf-8")
	}
	return string(raw), nil
}

func decodeUTF16(raw []byte, endianness unicode.Endianness) (string, error) {
	if len(raw)%2 != 0 {
		return "", errors.New("odd utf-16 length")
	}
	out, err := unicode.UTF16(endianness, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	s := string(out)
	// The decoder substitutes U+FFFD instead of failing; treat that as a
	// failed leg so the next encoding gets a chance.
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", errors.New("utf-16 replacement runes")
	}
	return s, nil
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
