package iri

import "strings"

// Sanitization for identifiers and path segments embedded in generated URLs
// or file paths. This is a security boundary, not cosmetics: a rejected
// input is an expected outcome (path traversal attempt, unknown platform),
// so failures are signalled by a false ok, never by an error.

// shellMeta are characters that must never appear in an identity segment
// embedded in a URL or command context.
const shellMeta = ";|&$<>`!(){}[]*?~'\"\\\n\r\t "

// CleanPath normalizes a relative path for embedding in an identifier or
// URL: repeated separators collapse to one, "." and ".." segments are
// removed textually (a/../b becomes a/b, not b — no filesystem
// resolution), and reserved or non-ASCII characters are percent-encoded
// per segment. ok is false when the input is empty, absolute-looking after
// cleaning, or contains a segment that fails SafeSegment's character
// rules.
func CleanPath(p string) (string, bool) {
	if p == "" {
		return "", false
	}
	parts := strings.Split(p, "/")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			continue
		}
		seg, ok := SafeSegment(part)
		if !ok {
			return "", false
		}
		cleaned = append(cleaned, seg)
	}
	if len(cleaned) == 0 {
		return "", false
	}
	return strings.Join(cleaned, "/"), true
}

// SafeSegment validates and encodes a single path or identity segment.
// Raw path separators, shell metacharacters, and empty segments are
// rejected; reserved URL characters and non-ASCII bytes are
// percent-encoded.
func SafeSegment(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if strings.ContainsAny(s, "/\\") {
		return "", false
	}
	if strings.ContainsAny(s, shellMeta) {
		return "", false
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreservedByte(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteString(percentEncode(c))
	}
	return b.String(), true
}

// isUnreservedByte follows RFC 3986 unreserved characters plus '@' and ':'
// which are safe in path segments.
func isUnreservedByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '@' || c == ':':
		return true
	}
	return false
}

const upperhex = "0123456789ABCDEF"

func percentEncode(c byte) string {
	return string([]byte{'%', upperhex[c>>4], upperhex[c&0xf]})
}
