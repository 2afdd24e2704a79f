// Package primitives implements the small byte-exact text transforms that
// the rest of the server builds on: URI encoding, query-string sorting,
// XML escaping, and RFC-1123 / ISO-8601 date formatting. Every function here
// is pure and allocation-light so it can sit on the hot path of request
// canonicalisation without its own buffering layer.
package primitives

import (
	"strconv"
	"strings"
)

// URIEncode percent-encodes s per RFC 3986's unreserved set (A-Z a-z 0-9
// - _ . ~), leaving those bytes untouched and upper-hex-encoding everything
// else. When encodeSlash is false, '/' also passes through unencoded; SigV4
// canonicalisation needs both forms (path components vs. query values).
func URIEncode(s string, encodeSlash bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		if c == '/' && !encodeSlash {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex(c >> 4))
		b.WriteByte(upperHex(c & 0x0f))
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	}
	return false
}

func upperHex(nibble byte) byte {
	const digits = "0123456789ABCDEF"
	return digits[nibble]
}

// SortQueryString splits q on '&', sorts the tokens by raw byte order of the
// whole token, and rejoins them. A bare "name" with no "=" sorts as if
// followed by an empty value but is re-emitted without the "=".
func SortQueryString(q string) string {
	if q == "" {
		return ""
	}
	tokens := strings.Split(q, "&")
	sortTokensByValue(tokens)
	return strings.Join(tokens, "&")
}

// sortTokensByValue sorts tokens by the byte ordering a bare "name" would
// have if it were "name=" — without mutating tokens that have no "=".
func sortTokensByValue(tokens []string) {
	key := func(t string) string {
		if strings.Contains(t, "=") {
			return t
		}
		return t + "="
	}
	// insertion sort is fine here: query strings carry a handful of params.
	for i := 1; i < len(tokens); i++ {
		j := i
		for j > 0 && key(tokens[j-1]) > key(tokens[j]) {
			tokens[j-1], tokens[j] = tokens[j], tokens[j-1]
			j--
		}
	}
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// XMLEscape replaces the five characters XML requires escaped in text
// content and attribute values. It is the identity function elsewhere.
func XMLEscape(s string) string {
	return xmlEscaper.Replace(s)
}

var monthNames = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

var dayNames = [...]string{
	"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat",
}

// FormatHTTPDate renders the signed unix timestamp t as the 29-byte
// RFC-1123 form "Ddd, DD Mmm YYYY HH:MM:SS GMT" used by the Date header.
// Negative timestamps clamp to the epoch.
func FormatHTTPDate(t int64) string {
	if t < 0 {
		t = 0
	}
	y, mo, d, hh, mm, ss, wd := civilFromUnix(t)

	var b strings.Builder
	b.Grow(29)
	b.WriteString(dayNames[wd])
	b.WriteString(", ")
	writeZeroPadded(&b, d, 2)
	b.WriteByte(' ')
	b.WriteString(monthNames[mo-1])
	b.WriteByte(' ')
	writeZeroPadded(&b, y, 4)
	b.WriteByte(' ')
	writeZeroPadded(&b, hh, 2)
	b.WriteByte(':')
	writeZeroPadded(&b, mm, 2)
	b.WriteByte(':')
	writeZeroPadded(&b, ss, 2)
	b.WriteString(" GMT")
	return b.String()
}

// FormatISO8601 renders the signed unix timestamp t as the 20-byte
// "YYYY-MM-DDTHH:MM:SSZ" form used by x-amz-date and list-result
// LastModified fields. Negative timestamps clamp to the epoch.
func FormatISO8601(t int64) string {
	if t < 0 {
		t = 0
	}
	y, mo, d, hh, mm, ss, _ := civilFromUnix(t)

	var b strings.Builder
	b.Grow(20)
	writeZeroPadded(&b, y, 4)
	b.WriteByte('-')
	writeZeroPadded(&b, mo, 2)
	b.WriteByte('-')
	writeZeroPadded(&b, d, 2)
	b.WriteByte('T')
	writeZeroPadded(&b, hh, 2)
	b.WriteByte(':')
	writeZeroPadded(&b, mm, 2)
	b.WriteByte(':')
	writeZeroPadded(&b, ss, 2)
	b.WriteByte('Z')
	return b.String()
}

func writeZeroPadded(b *strings.Builder, v, width int) {
	s := strconv.Itoa(v)
	for len(s) < width {
		s = "0" + s
	}
	b.WriteString(s)
}

// civilFromUnix decomposes a non-negative unix timestamp into a proleptic
// Gregorian civil date and time-of-day, plus a 0=Sunday..6=Saturday weekday,
// without consulting the local timezone database.
func civilFromUnix(t int64) (year, month, day, hour, min, sec, weekday int) {
	days := t / 86400
	rem := t % 86400

	hour = int(rem / 3600)
	min = int((rem % 3600) / 60)
	sec = int(rem % 60)

	// Howard Hinnant's days-from-civil / civil-from-days algorithm, Jan 1
	// 1970 is day 0 and a Thursday.
	weekday = int((days + 4) % 7)

	z := days + 719468
	era := z / 146097
	if z < 0 {
		era = (z - 146096) / 146097
	}
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if mp >= 10 {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}

	year = int(y)
	month = int(m)
	day = int(d)
	return
}

// HasQuery reports whether the '&'-separated query string q contains a
// token named name, matched only at token boundaries (never as a prefix of
// a longer token).
func HasQuery(q, name string) bool {
	_, ok := lookupQuery(q, name)
	return ok
}

// GetQueryParam returns the value associated with name in the '&'-separated
// query string q. A bare name with no "=" yields an empty-string value. The
// second return reports whether name was present at all.
func GetQueryParam(q, name string) (string, bool) {
	return lookupQuery(q, name)
}

func lookupQuery(q, name string) (string, bool) {
	if q == "" {
		return "", false
	}
	for _, tok := range strings.Split(q, "&") {
		if tok == "" {
			continue
		}
		k, v, hasEq := strings.Cut(tok, "=")
		if k == name {
			if !hasEq {
				return "", true
			}
			return v, true
		}
	}
	return "", false
}
