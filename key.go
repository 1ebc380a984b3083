package queryflight

import "strings"

// keySep joins key segments into the canonical string form,
// e.g. Key{"user", "42"} -> "user.42".
const keySep = "."

// Key is an ordered, non-empty sequence of string segments identifying one
// logical query. Two logically identical queries must build identical keys;
// the engine never inspects segments beyond equality of the canonical form.
type Key []string

// K is a convenience constructor: K("user", "42").
func K(segments ...string) Key { return Key(segments) }

// Canon returns the canonical string form of the key.
func (k Key) Canon() string { return strings.Join(k, keySep) }

// Valid reports whether the key has at least one non-empty segment.
func (k Key) Valid() bool {
	if len(k) == 0 {
		return false
	}
	for _, s := range k {
		if s == "" {
			return false
		}
	}
	return true
}

// Split separates the key into a leading category segment and the joined
// remainder, the shape the invalidation bus is addressed by.
// Key{"user", "42", "orders"} -> ("user", "42.orders").
func (k Key) Split() (category, subKey string) {
	if len(k) == 0 {
		return "", ""
	}
	return k[0], strings.Join(k[1:], keySep)
}
