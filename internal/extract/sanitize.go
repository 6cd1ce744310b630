package extract

import "strings"

// SanitizeFilename strips every character outside A-Z, a-z, 0-9, '-', '_'
// and '.' from name. Filenames and content identifiers are attacker
// controlled, so anything that could traverse paths or confuse a shell is
// dropped rather than escaped. Sanitizing an already sanitized name returns
// it unchanged.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	return b.String()
}
