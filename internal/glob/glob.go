// Package glob implements the Redis-style pattern matcher shared by KEYS,
// PUBSUB CHANNELS, and pattern subscriptions: '?' matches one byte, '*'
// matches zero or more bytes, '[...]' is a character class with ranges and
// '^' negation, and '\' escapes the following byte.
package glob

// Match reports whether s matches pattern using Redis glob semantics.
// Implemented iteratively with backtracking on '*', per the design note
// in spec.md section 9.
func Match(pattern, s string) bool {
	return matchFrom(pattern, s)
}

func matchFrom(pattern, s string) bool {
	var pBacktrack, sBacktrack int
	havingBacktrack := false

	pi, si := 0, 0
	pn, sn := len(pattern), len(s)

	for si < sn {
		if pi < pn {
			switch pattern[pi] {
			case '*':
				// collapse consecutive stars
				for pi < pn && pattern[pi] == '*' {
					pi++
				}
				if pi == pn {
					return true // trailing star matches the rest
				}
				pBacktrack = pi
				sBacktrack = si + 1
				havingBacktrack = true
				continue
			case '?':
				pi++
				si++
				continue
			case '[':
				end, neg, ok := classBounds(pattern, pi)
				if ok && matchClass(pattern, pi, end, neg, s[si]) {
					pi = end + 1
					si++
					continue
				}
			case '\\':
				if pi+1 < pn {
					if pattern[pi+1] == s[si] {
						pi += 2
						si++
						continue
					}
				}
			default:
				if pattern[pi] == s[si] {
					pi++
					si++
					continue
				}
			}
		}
		if havingBacktrack {
			pi = pBacktrack
			si = sBacktrack
			sBacktrack++
			continue
		}
		return false
	}

	// consume any trailing stars
	for pi < pn && pattern[pi] == '*' {
		pi++
	}
	return pi == pn
}

// classBounds finds the index of the closing ']' for a class starting at
// pattern[start]=='[' and whether the class is negated. ok is false if the
// class is unterminated, in which case the caller reports no match at
// that position.
func classBounds(pattern string, start int) (end int, neg bool, ok bool) {
	i := start + 1
	if i < len(pattern) && pattern[i] == '^' {
		neg = true
		i++
	}
	first := true
	for i < len(pattern) {
		if pattern[i] == '\\' && i+1 < len(pattern) {
			i += 2
			first = false
			continue
		}
		if pattern[i] == ']' && !first {
			return i, neg, true
		}
		first = false
		i++
	}
	return 0, false, false
}

func matchClass(pattern string, start, end int, neg bool, c byte) bool {
	i := start + 1
	if i < len(pattern) && pattern[i] == '^' {
		i++
	}
	matched := false
	for i < end {
		if pattern[i] == '\\' && i+1 < end {
			if pattern[i+1] == c {
				matched = true
			}
			i += 2
			continue
		}
		if i+2 < end && pattern[i+1] == '-' {
			lo, hi := pattern[i], pattern[i+2]
			if lo <= hi && c >= lo && c <= hi {
				matched = true
			}
			i += 3
			continue
		}
		if pattern[i] == c {
			matched = true
		}
		i++
	}
	if neg {
		return !matched
	}
	return matched
}
