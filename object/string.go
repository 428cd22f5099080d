package object

import "strconv"

// EmbeddedStringCap is the length threshold above which a string value is
// stored raw instead of embedded inline — spec.md §4.D encoding table.
const EmbeddedStringCap = 44

// NewString returns a new string Object, choosing the tightest encoding:
// an integer tag if v parses as one within int64 range, else embedded or
// raw depending on length.
func NewString(v []byte) *Object {
	if n, ok := parseInt64(v); ok {
		return Create(TypeString, EncIntString, n)
	}
	if len(v) <= EmbeddedStringCap {
		return Create(TypeString, EncEmbeddedString, append([]byte(nil), v...))
	}
	return Create(TypeString, EncRawString, append([]byte(nil), v...))
}

func parseInt64(v []byte) (int64, bool) {
	if len(v) == 0 || len(v) > 20 {
		return 0, false
	}
	n, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return 0, false
	}
	// Reject forms that wouldn't round-trip byte-for-byte (leading zeros,
	// "+1"), matching the "non-integer assignment" trigger in spec.md's
	// encoding table: those stay strings even though they parse.
	if strconv.FormatInt(n, 10) != string(v) {
		return 0, false
	}
	return n, true
}

// StringBytes decodes a string Object's raw-string view, regardless of
// encoding — spec.md §4.D "decode(obj) returns a raw-string view".
func StringBytes(o *Object) []byte {
	switch o.enc {
	case EncIntString:
		return []byte(strconv.FormatInt(o.payload.(int64), 10))
	case EncEmbeddedString, EncRawString:
		return o.payload.([]byte)
	default:
		return nil
	}
}

// SetStringBytes overwrites o's value, re-checking it with parseInt64 so a
// non-integer assignment moves from EncIntString to a general string
// encoding (spec.md §4.D "non-integer assignment" trigger) while an
// integer-looking assignment is stored as EncIntString. An object already
// in EncRawString stays raw, since encodings never move to a lower rank.
func SetStringBytes(o *Object, v []byte) {
	if o.enc == EncRawString {
		o.setPayload(append([]byte(nil), v...))
		return
	}
	if n, ok := parseInt64(v); ok {
		o.enc = EncIntString
		o.setPayload(n)
		return
	}
	if len(v) <= EmbeddedStringCap {
		o.enc = EncEmbeddedString
	} else {
		o.enc = EncRawString
	}
	o.setPayload(append([]byte(nil), v...))
}

// StringLen returns the logical byte length of the string view.
func StringLen(o *Object) int { return len(StringBytes(o)) }

// IncrBy applies a signed integer delta, returning the new value. Fails
// (ok=false) if the current value is not an integer-looking string, or if
// the addition would overflow int64 — spec.md §7 OVERFLOW.
func IncrBy(o *Object, delta int64) (int64, bool) {
	cur, ok := parseInt64(StringBytes(o))
	if !ok {
		return 0, false
	}
	sum := cur + delta
	if (delta > 0 && sum < cur) || (delta < 0 && sum > cur) {
		return 0, false
	}
	o.enc = EncIntString
	o.setPayload(sum)
	return sum, true
}
