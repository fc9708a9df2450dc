// Package posid provides the position identifiers that give every character
// in a replicated text field a permanent, totally ordered location.
//
// An identifier is a path of segments. Each segment carries an allocation
// digit plus the site id and version counter of the replica that created it,
// which makes independently allocated identifiers collision-free without
// coordination. Identifiers are encoded as fixed-width lowercase hex, so
// ordinary string comparison matches identifier order and receivers never
// need to decode an identifier to compare it.
package posid

import (
	"strconv"
	"strings"
)

// ID is an encoded position identifier. The zero value ("") is not a valid
// identifier; it is used as the open lower/upper bound in Alloc.
type ID string

// Compare returns -1, 0, or 1 ordering a before, equal to, or after b.
// Because of the fixed-width encoding this is plain byte comparison.
func Compare(a, b ID) int {
	return strings.Compare(string(a), string(b))
}

// segment is one level of an identifier path. Segments order by digit,
// then site, then version.
type segment struct {
	digit uint32
	site  uint32
	ver   uint64
}

// Encoded segment width: 8 hex digits, 8 hex site, 16 hex version.
const segmentHexLen = 8 + 8 + 16

func appendSegment(b *strings.Builder, s segment) {
	appendHex(b, uint64(s.digit), 8)
	appendHex(b, uint64(s.site), 8)
	appendHex(b, s.ver, 16)
}

func appendHex(b *strings.Builder, v uint64, width int) {
	h := strconv.FormatUint(v, 16)
	for i := len(h); i < width; i++ {
		b.WriteByte('0')
	}
	b.WriteString(h)
}

func encode(path []segment) ID {
	var b strings.Builder
	b.Grow(len(path) * segmentHexLen)
	for _, s := range path {
		appendSegment(&b, s)
	}
	return ID(b.String())
}

// parse decodes an identifier back into its segment path. Identifiers are
// opaque to everything except the allocator, which only ever parses locally
// held bounds; a malformed tail is dropped rather than reported.
func parse(id ID) []segment {
	s := string(id)
	path := make([]segment, 0, len(s)/segmentHexLen)
	for len(s) >= segmentHexLen {
		digit, err1 := strconv.ParseUint(s[0:8], 16, 32)
		site, err2 := strconv.ParseUint(s[8:16], 16, 32)
		ver, err3 := strconv.ParseUint(s[16:32], 16, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			break
		}
		path = append(path, segment{digit: uint32(digit), site: uint32(site), ver: ver})
		s = s[segmentHexLen:]
	}
	return path
}
