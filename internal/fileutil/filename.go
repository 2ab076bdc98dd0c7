// Package fileutil normalizes arbitrary media titles into safe
// filesystem names.
package fileutil

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeTitle maps an arbitrary string (e.g. a video title) to a
// filesystem-safe filename.
//
// Titles containing any character outside 7-bit ASCII are discarded
// wholesale and replaced by a stable name derived from a content hash
// of the original string, preserving the extension. Non-ASCII titles
// would otherwise produce unpredictable-length or encoding-unsafe
// filenames; the hash guarantees a short, deterministic name.
//
// ASCII titles keep only alphanumerics, whitespace, hyphens,
// underscores and periods, with surrounding whitespace trimmed.
func SanitizeTitle(title string) string {
	if !isASCII(title) {
		ext := filepath.Ext(title)
		if !isASCII(ext) {
			ext = ""
		}
		sum := md5.Sum([]byte(title))
		return "video_" + hex.EncodeToString(sum[:])[:8] + ext
	}

	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_', r == '.',
			unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// isASCII reports whether every byte of s is within the 7-bit range.
// A pure byte-range check is sufficient; no locale-aware normalization.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}
