package portal

import "strings"

// ParseQuery splits a raw query string into key/value pairs, URL-decoding
// both sides. All decoding and tolerance for malformed input is centralized
// here: segments without '=', empty segments and trailing '&' are skipped,
// and a later duplicate key overwrites an earlier one.
//
// Submitted forms come from whatever captive-portal browser the client
// happens to run, so this parser never fails; it extracts what it can.
func ParseQuery(raw string) map[string]string {
	params := make(map[string]string)
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			continue
		}
		key := urlDecode(part[:eq])
		if key == "" {
			continue
		}
		params[key] = urlDecode(part[eq+1:])
	}
	return params
}

// urlDecode decodes percent-escapes and '+' in form values. Invalid
// escapes, including a '%' within two bytes of the end of the value, are
// kept literally rather than rejected, matching what lenient embedded
// clients expect.
func urlDecode(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '+':
			b.WriteByte(' ')
		case s[i] == '%' && i+2 < len(s):
			hi, okHi := unhex(s[i+1])
			lo, okLo := unhex(s[i+2])
			if okHi && okLo {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
			b.WriteByte(s[i])
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
