package vfs

import "strings"

// MatchGlob reports whether name matches pattern under the glob grammar
// of §4.6: '*' matches any run of characters (including empty), '?'
// matches exactly one character, and '[set]' matches one character from
// the set, supporting ranges ('a-z') and leading '!'/'^' negation.
// anchored selects end-to-end basename matching (find -name); when
// false, '*' additionally refuses to cross '/' (pathname expansion).
func MatchGlob(pattern, name string, anchored bool) bool {
	return matchGlob(pattern, name, anchored)
}

func matchGlob(pattern, name string, anchored bool) bool {
	p, n := 0, 0
	starP, starN := -1, -1

	for n < len(name) {
		if p < len(pattern) {
			switch pattern[p] {
			case '*':
				starP, starN = p, n
				p++
				continue
			case '?':
				if !anchored && name[n] == '/' {
					break
				}
				p++
				n++
				continue
			case '[':
				if end := classEnd(pattern, p); end >= 0 {
					if matchClass(pattern[p:end+1], name[n]) && (anchored || name[n] != '/') {
						p = end + 1
						n++
						continue
					}
				}
			default:
				if pattern[p] == name[n] {
					p++
					n++
					continue
				}
			}
		}
		if starP >= 0 {
			starN++
			if !anchored && starN-1 < len(name) && name[starN-1] == '/' {
				return false
			}
			p = starP + 1
			n = starN
			continue
		}
		return false
	}

	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}

// classEnd finds the index of the closing ']' of a bracket expression
// starting at pattern[start] == '['. Returns -1 if unterminated.
func classEnd(pattern string, start int) int {
	i := start + 1
	if i < len(pattern) && (pattern[i] == '!' || pattern[i] == '^') {
		i++
	}
	if i < len(pattern) && pattern[i] == ']' {
		i++
	}
	for i < len(pattern) && pattern[i] != ']' {
		i++
	}
	if i >= len(pattern) {
		return -1
	}
	return i
}

func matchClass(class string, c byte) bool {
	// class includes the surrounding [ and ].
	body := class[1 : len(class)-1]
	negate := false
	if strings.HasPrefix(body, "!") || strings.HasPrefix(body, "^") {
		negate = true
		body = body[1:]
	}
	matched := false
	for i := 0; i < len(body); i++ {
		if i+2 < len(body) && body[i+1] == '-' {
			if body[i] <= c && c <= body[i+2] {
				matched = true
			}
			i += 2
			continue
		}
		if body[i] == c {
			matched = true
		}
	}
	if negate {
		return !matched
	}
	return matched
}

// HasMeta reports whether pattern contains any glob metacharacter.
func HasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}
