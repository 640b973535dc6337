package envelope

import "strings"

// Discriminator decides from a View whether a source understands an
// envelope. It runs before Parse, so it should only look at a few fields.
type Discriminator func(v View) bool

// HasFields matches when every path exists. No paths always matches.
func HasFields(paths ...string) Discriminator {
	return func(v View) bool {
		for _, p := range paths {
			if !v.Has(p) {
				return false
			}
		}
		return true
	}
}

// FieldEquals matches when path holds exactly the string value.
func FieldEquals(path, value string) Discriminator {
	return func(v View) bool {
		s, ok := v.String(path)
		return ok && s == value
	}
}

// FieldPrefix matches when path holds a string starting with prefix, e.g.
// FieldPrefix("type", "users.").
func FieldPrefix(path, prefix string) Discriminator {
	return func(v View) bool {
		s, ok := v.String(path)
		return ok && strings.HasPrefix(s, prefix)
	}
}

// And matches when all ds match.
func And(ds ...Discriminator) Discriminator {
	return func(v View) bool {
		for _, d := range ds {
			if !d(v) {
				return false
			}
		}
		return true
	}
}

// Or matches when any of ds matches.
func Or(ds ...Discriminator) Discriminator {
	return func(v View) bool {
		for _, d := range ds {
			if d(v) {
				return true
			}
		}
		return false
	}
}

// Not inverts d.
func Not(d Discriminator) Discriminator {
	return func(v View) bool {
		return !d(v)
	}
}
