package pubsub

// MatchGlob implements spec.md §4.G/§9's glob dialect: `*` matches any
// (including empty) sequence, `?` matches any single byte, `[...]` is a
// positive character class with optional `^` negation and `a-z` ranges,
// `\x` escapes the next byte literally. Matching is whole-string, no
// anchoring options.
func MatchGlob(pattern, s string) bool {
	return matchGlob([]byte(pattern), []byte(s))
}

func matchGlob(pattern, s []byte) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 1 && pattern[1] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchGlob(pattern[1:], s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			s = s[1:]
			pattern = pattern[1:]
		case '[':
			if len(s) == 0 {
				return false
			}
			end := classEnd(pattern)
			if end < 0 {
				// Unterminated class: treat '[' as a literal.
				if s[0] != '[' {
					return false
				}
				s, pattern = s[1:], pattern[1:]
				continue
			}
			if !matchClass(pattern[1:end], s[0]) {
				return false
			}
			s, pattern = s[1:], pattern[end+1:]
		case '\\':
			if len(pattern) < 2 {
				return len(s) > 0 && s[0] == '\\' && len(s) == 1
			}
			if len(s) == 0 || s[0] != pattern[1] {
				return false
			}
			s, pattern = s[1:], pattern[2:]
		default:
			if len(s) == 0 || s[0] != pattern[0] {
				return false
			}
			s, pattern = s[1:], pattern[1:]
		}
	}
	return len(s) == 0
}

// classEnd returns the index of the ']' closing the class starting at
// pattern[0]=='[', or -1 if unterminated.
func classEnd(pattern []byte) int {
	i := 1
	if i < len(pattern) && pattern[i] == '^' {
		i++
	}
	// A ']' immediately after '[' or '[^' is a literal member, not the
	// closing bracket.
	if i < len(pattern) && pattern[i] == ']' {
		i++
	}
	for i < len(pattern) {
		if pattern[i] == '\\' && i+1 < len(pattern) {
			i += 2
			continue
		}
		if pattern[i] == ']' {
			return i
		}
		i++
	}
	return -1
}

func matchClass(body []byte, c byte) bool {
	negate := false
	if len(body) > 0 && body[0] == '^' {
		negate, body = true, body[1:]
	}
	matched := false
	for i := 0; i < len(body); {
		if body[i] == '\\' && i+1 < len(body) {
			if body[i+1] == c {
				matched = true
			}
			i += 2
			continue
		}
		if i+2 < len(body) && body[i+1] == '-' {
			lo, hi := body[i], body[i+2]
			if lo <= c && c <= hi {
				matched = true
			}
			i += 3
			continue
		}
		if body[i] == c {
			matched = true
		}
		i++
	}
	return matched != negate
}
