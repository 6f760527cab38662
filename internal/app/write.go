package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sorarc/unsor/pkg/sor"
)

// sanitizeName maps an archive entry name to a safe relative path: each
// path segment has Windows-forbidden and control characters replaced with
// underscores and trailing dots/spaces trimmed. Segments emptied by the
// trim (including "." and "..") are dropped, which also neutralizes path
// traversal.
func sanitizeName(name string) string {
	var parts []string
	for _, part := range strings.Split(name, "/") {
		part = strings.Map(func(r rune) rune {
			switch r {
			case ':', '*', '?', '"', '<', '>', '|', '\\':
				return '_'
			}
			if r < 0x20 || r == 0x7f {
				return '_'
			}
			return r
		}, part)
		part = strings.Trim(part, " .")
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "entry"
	}
	return filepath.Join(parts...)
}

// resolvePaths assigns one output path per entry, suffixing duplicates so
// dup-ref entries sharing a source name do not overwrite each other. Final
// resolved paths are registered too, so a generated suffix cannot collide
// with a genuine entry of that name.
func resolvePaths(dist string, entries []sor.Entry) []string {
	paths := make([]string, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		rel := sanitizeName(e.Name)
		ext := filepath.Ext(rel)
		base := strings.TrimSuffix(rel, ext)
		for n := 1; ; n++ {
			if _, taken := seen[rel]; !taken {
				break
			}
			rel = fmt.Sprintf("%s_%d%s", base, n, ext)
		}
		seen[rel] = struct{}{}
		paths[i] = filepath.Join(dist, rel)
	}
	return paths
}

func writeEntry(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
