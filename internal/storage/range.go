package storage

import (
	"strconv"
	"strings"
)

// ByteRange is an inclusive (start, end) pair with 0 <= start <= end <
// size, per §3's Range type.
type ByteRange struct {
	Start, End int64
}

// ParseRange parses the value of a Range header (without the leading
// "Range: ") against an object of the given size, per §8's rules:
// "bytes=A-B" requires 0<=A<=B<size; "bytes=A-" means A..size-1. Any other
// shape, or an out-of-bounds range, returns ok=false rather than an error —
// callers map that to InvalidArgument themselves, since a missing Range
// header and a malformed one are handled identically by GetObject/HeadObject
// (full-object response vs. a 416-mapped error, respectively).
func ParseRange(value string, size int64) (ByteRange, bool) {
	const prefix = "bytes="
	if !strings.HasPrefix(value, prefix) {
		return ByteRange{}, false
	}
	spec := strings.TrimPrefix(value, prefix)
	if strings.Contains(spec, ",") {
		// Multi-range requests are not supported by this core.
		return ByteRange{}, false
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return ByteRange{}, false
	}

	if startStr == "" {
		return ByteRange{}, false
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return ByteRange{}, false
	}

	var end int64
	if endStr == "" {
		end = size - 1
	} else {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return ByteRange{}, false
		}
	}

	if start > end || start >= size {
		return ByteRange{}, false
	}
	if end >= size {
		return ByteRange{}, false
	}

	return ByteRange{Start: start, End: end}, true
}

// ContentRange renders the "bytes A-B/size" value of a Content-Range
// header for r against the given total object size.
func (r ByteRange) ContentRange(size int64) string {
	return "bytes " + strconv.FormatInt(r.Start, 10) + "-" + strconv.FormatInt(r.End, 10) + "/" + strconv.FormatInt(size, 10)
}

// Len returns the number of bytes the range covers.
func (r ByteRange) Len() int64 {
	return r.End - r.Start + 1
}
