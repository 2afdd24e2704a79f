package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURIEncode(t *testing.T) {
	cases := []struct {
		name        string
		in          string
		encodeSlash bool
		want        string
	}{
		{"unreserved passthrough", "abcXYZ019-_.~", true, "abcXYZ019-_.~"},
		{"space encoded", "a b", true, "a%20b"},
		{"slash encoded", "a/b", true, "a%2Fb"},
		{"slash preserved", "a/b", false, "a/b"},
		{"unicode byte encoded upper hex", "é", true, "%C3%A9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, URIEncode(tc.in, tc.encodeSlash))
		})
	}
}

func TestSortQueryString(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"already sorted", "a=1&b=2", "a=1&b=2"},
		{"reorders", "b=2&a=1", "a=1&b=2"},
		{"bare name sorts as empty value", "b=2&a", "a&b=2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SortQueryString(tc.in))
		})
	}
}

func TestXMLEscape(t *testing.T) {
	assert.Equal(t, "&lt;a&gt; &amp; &quot;b&quot; &apos;c&apos;", XMLEscape(`<a> & "b" 'c'`))
}

func TestFormatHTTPDate(t *testing.T) {
	// 2013-05-24T00:00:00Z, the SigV4 worked-example date.
	got := FormatHTTPDate(1369353600)
	assert.Equal(t, "Fri, 24 May 2013 00:00:00 GMT", got)
	assert.Len(t, got, 29)
}

func TestFormatISO8601(t *testing.T) {
	got := FormatISO8601(1369353600)
	assert.Equal(t, "2013-05-24T00:00:00Z", got)
	assert.Len(t, got, 20)
}

func TestFormatDatesEpoch(t *testing.T) {
	assert.Equal(t, "Thu, 01 Jan 1970 00:00:00 GMT", FormatHTTPDate(0))
	assert.Equal(t, "1970-01-01T00:00:00Z", FormatISO8601(0))
}

func TestHasQueryAndGetQueryParam(t *testing.T) {
	q := "list-type=2&prefix=a%2F&uploads"

	assert.True(t, HasQuery(q, "list-type"))
	assert.True(t, HasQuery(q, "uploads"))
	assert.False(t, HasQuery(q, "upload"))

	v, ok := GetQueryParam(q, "list-type")
	require.True(t, ok)
	assert.Equal(t, "2", v)

	v, ok = GetQueryParam(q, "uploads")
	require.True(t, ok)
	assert.Equal(t, "", v)

	_, ok = GetQueryParam(q, "missing")
	assert.False(t, ok)
}
