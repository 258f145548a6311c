// Package upload issues pre-signed write grants for direct-to-storage uploads.
package upload

import (
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultFolder is used when a folder is absent or sanitizes to nothing.
	DefaultFolder = "uploads"
	// DefaultContentType is assumed when a request carries none.
	DefaultContentType = "image/jpeg"

	defaultFileName = "file"
	maxFileNameLen  = 128
)

// SanitizeFolder collapses folder into a single safe relative segment.
// Path separators split segments; empty, "." and ".." segments are dropped,
// each survivor keeps only [A-Za-z0-9_-] and survivors are joined with "-".
//
//	"rooms/../../secrets" -> "rooms-secrets"
//	"/abs/path/"          -> "abs-path"
func SanitizeFolder(folder string) string {
	parts := strings.FieldsFunc(folder, func(r rune) bool { return r == '/' || r == '\\' })

	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "." || p == ".." {
			continue
		}
		seg := strings.Map(func(r rune) rune {
			if isAlnum(r) || r == '-' || r == '_' {
				return r
			}
			return -1
		}, p)
		seg = strings.Trim(seg, "-")
		if seg != "" {
			kept = append(kept, seg)
		}
	}

	if len(kept) == 0 {
		return DefaultFolder
	}
	return strings.Join(kept, "-")
}

// SanitizeFileName replaces unsafe characters with "_", collapses runs of
// dots and strips leading dots so the name can never traverse.
func SanitizeFileName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	b.Grow(len(name))
	prevDot := false
	for _, r := range name {
		switch {
		case r == '.':
			if prevDot {
				continue
			}
			prevDot = true
			b.WriteRune(r)
			continue
		case isAlnum(r) || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
		prevDot = false
	}

	out := strings.TrimLeft(b.String(), ".")
	if len(out) > maxFileNameLen {
		out = out[len(out)-maxFileNameLen:]
		out = strings.TrimLeft(out, ".")
	}
	if out == "" || strings.Trim(out, "_") == "" {
		return defaultFileName
	}
	return out
}

// ObjectKey derives {folder}/{unixMillis}-{fileName} from sanitized inputs.
func ObjectKey(folder, fileName string, at time.Time) string {
	return SanitizeFolder(folder) + "/" + strconv.FormatInt(at.UnixMilli(), 10) + "-" + SanitizeFileName(fileName)
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
