package pix

import "regexp"

var tokenPattern = regexp.MustCompile(`\$\$([^$]+)\$\$`)

// Resolve returns the payload referenced by name: the payload of the first
// rectangle with that name, otherwise of the first connection with that label.
func Resolve(d *Document, name string) (string, bool) {
	if r, ok := d.RectangleByName(name); ok {
		return r.Payload, true
	}
	if c, ok := d.ConnectionByLabel(name); ok {
		return c.Payload, true
	}
	return "", false
}

// Substitute replaces every $$name$$ token in text with the referenced payload.
// It is a single pass: tokens inside substituted payloads are not expanded.
// Unresolved tokens are left verbatim.
func Substitute(d *Document, text string) string {
	return tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		name := tokenPattern.FindStringSubmatch(tok)[1]
		if payload, ok := Resolve(d, name); ok {
			return payload
		}
		return tok
	})
}

// UnresolvedTokens lists the token names in text that Substitute would leave alone.
func UnresolvedTokens(d *Document, text string) []string {
	var out []string
	for _, m := range tokenPattern.FindAllStringSubmatch(text, -1) {
		if _, ok := Resolve(d, m[1]); !ok {
			out = append(out, m[1])
		}
	}
	return out
}
