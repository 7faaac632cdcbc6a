package ignore

import "github.com/gbzip/gbzip/internal/config"

// matchGlob matches text against the full extent of pattern using the
// gitignore glob language (?, *, **, character classes). It never matches
// a substring: the whole of text must be consumed. Backtracking depth is
// bounded by config.MaxMatchRecursionDepth; tripping the guard returns
// false rather than looping unboundedly on a pathological pattern.
func matchGlob(pattern, text string) bool {
	return matchRecursive(pattern, text, 0)
}

func matchRecursive(pattern, text string, depth int) bool {
	if depth > config.MaxMatchRecursionDepth {
		return false
	}

	p, t := 0, 0
	pStar, tStar := -1, -1

	for t < len(text) {
		if p+1 < len(pattern) && pattern[p] == '*' && pattern[p+1] == '*' {
			p += 2
			// Further stars and repeated "**/" segments match nothing a
			// single "**" does not, so collapse them before recursing.
			for {
				for p < len(pattern) && pattern[p] == '*' {
					p++
				}
				for p < len(pattern) && pattern[p] == '/' {
					p++
				}
				if p+1 < len(pattern) && pattern[p] == '*' && pattern[p+1] == '*' {
					p += 2
					continue
				}
				break
			}
			if p == len(pattern) {
				return true
			}
			for t < len(text) {
				if matchRecursive(pattern[p:], text[t:], depth+1) {
					return true
				}
				t++
			}
			return matchRecursive(pattern[p:], text[t:], depth+1)
		}

		if p < len(pattern) && pattern[p] == '*' {
			p++
			pStar = p
			tStar = t
			continue
		}

		if p < len(pattern) && pattern[p] == '?' {
			if text[t] == '/' {
				if pStar != -1 {
					tStar++
					p, t = pStar, tStar
					continue
				}
				return false
			}
			p++
			t++
			continue
		}

		if p < len(pattern) && pattern[p] == '[' {
			bracketStart := p
			p++
			negated := false
			matched := false

			if p < len(pattern) && (pattern[p] == '!' || pattern[p] == '^') {
				negated = true
				p++
			}

			for p < len(pattern) && pattern[p] != ']' {
				if p+2 < len(pattern) && pattern[p+1] == '-' && pattern[p+2] != ']' {
					if text[t] >= pattern[p] && text[t] <= pattern[p+2] {
						matched = true
					}
					p += 3
				} else {
					if pattern[p] == text[t] {
						matched = true
					}
					p++
				}
			}

			if p < len(pattern) && pattern[p] == ']' {
				p++
			} else {
				// Malformed class: treat '[' as a literal character.
				p = bracketStart
				if pattern[p] == text[t] {
					p++
					t++
					continue
				}
				if pStar != -1 {
					tStar++
					p, t = pStar, tStar
					continue
				}
				return false
			}

			if negated {
				matched = !matched
			}
			if matched {
				t++
				continue
			}
			if pStar != -1 {
				tStar++
				p, t = pStar, tStar
				continue
			}
			return false
		}

		if p < len(pattern) && t < len(text) && pattern[p] == text[t] {
			p++
			t++
			continue
		}

		if pStar != -1 {
			// '*' never crosses a '/' boundary.
			if tStar < len(text) && text[tStar] == '/' {
				return false
			}
			tStar++
			p, t = pStar, tStar
			continue
		}

		return false
	}

	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}
