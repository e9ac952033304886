package pix

import (
	"fmt"
	"sort"
)

// Warning is a non-fatal observation about a document.
type Warning struct {
	Type    string
	Message string
	IDs     []string
}

// Analyse reports structural oddities that are legal but usually unintended:
// self connections, parallel connections, isolated rectangles, overlapping
// regular rectangles, ambiguous names and payload tokens that resolve to nothing.
func (d *Document) Analyse() []Warning {
	var warnings []Warning

	pairs := make(map[[2]string][]string)
	for _, c := range d.conns {
		if c.FromID == c.ToID {
			warnings = append(warnings, Warning{
				Type:    "self-connection",
				Message: fmt.Sprintf("connection %s starts and ends at the same rectangle", c.ID),
				IDs:     []string{c.ID},
			})
		}
		key := [2]string{c.FromID, c.ToID}
		pairs[key] = append(pairs[key], c.ID)
	}
	for _, ids := range pairs {
		if len(ids) > 1 {
			warnings = append(warnings, Warning{
				Type:    "parallel-connections",
				Message: fmt.Sprintf("%d connections share the same endpoints", len(ids)),
				IDs:     ids,
			})
		}
	}

	for _, r := range d.rects {
		if r.Kind == KindCollection {
			continue
		}
		if len(d.Incident(r.ID)) == 0 {
			warnings = append(warnings, Warning{
				Type:    "isolated",
				Message: fmt.Sprintf("rectangle %q has no connections", displayName(r)),
				IDs:     []string{r.ID},
			})
		}
	}

	for i, a := range d.rects {
		if a.Kind == KindCollection {
			continue
		}
		for _, b := range d.rects[i+1:] {
			if b.Kind == KindCollection {
				continue
			}
			if RectOverlap(a.Bounds().Rect(), b.Bounds().Rect()) > 0 {
				warnings = append(warnings, Warning{
					Type:    "overlap",
					Message: fmt.Sprintf("rectangles %q and %q overlap", displayName(a), displayName(b)),
					IDs:     []string{a.ID, b.ID},
				})
			}
		}
	}

	names := make(map[string][]string)
	for _, r := range d.rects {
		if r.Name != "" {
			names[r.Name] = append(names[r.Name], r.ID)
		}
	}
	for _, c := range d.conns {
		if c.Label != "" {
			names[c.Label] = append(names[c.Label], c.ID)
		}
	}
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, name := range keys {
		if ids := names[name]; len(ids) > 1 {
			warnings = append(warnings, Warning{
				Type:    "ambiguous-name",
				Message: fmt.Sprintf("name %q is used by %d entities; $$%s$$ resolves to the first", name, len(ids), name),
				IDs:     ids,
			})
		}
	}

	check := func(id, payload string) {
		for _, tok := range UnresolvedTokens(d, payload) {
			warnings = append(warnings, Warning{
				Type:    "unresolved-token",
				Message: fmt.Sprintf("payload token $$%s$$ matches no rectangle or connection", tok),
				IDs:     []string{id},
			})
		}
	}
	for _, r := range d.rects {
		check(r.ID, r.Payload)
	}
	for _, c := range d.conns {
		check(c.ID, c.Payload)
	}

	return warnings
}

func displayName(r *Rectangle) string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}
