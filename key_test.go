package queryflight

import "testing"

func TestKeyCanon(t *testing.T) {
	cases := []struct {
		key  Key
		want string
	}{
		{K("user"), "user"},
		{K("user", "42"), "user.42"},
		{K("user", "42", "orders"), "user.42.orders"},
		{Key{}, ""},
	}
	for _, c := range cases {
		if got := c.key.Canon(); got != c.want {
			t.Errorf("Canon(%v) = %q, want %q", c.key, got, c.want)
		}
	}
}

func TestKeyValid(t *testing.T) {
	cases := []struct {
		key  Key
		want bool
	}{
		{K("user"), true},
		{K("user", "42"), true},
		{Key{}, false},
		{Key(nil), false},
		{K(""), false},
		{K("user", ""), false},
	}
	for _, c := range cases {
		if got := c.key.Valid(); got != c.want {
			t.Errorf("Valid(%v) = %v, want %v", c.key, got, c.want)
		}
	}
}

func TestKeySplit(t *testing.T) {
	cases := []struct {
		key      Key
		category string
		subKey   string
	}{
		{K("user", "42"), "user", "42"},
		{K("user", "42", "orders"), "user", "42.orders"},
		{K("user"), "user", ""},
		{Key{}, "", ""},
	}
	for _, c := range cases {
		cat, sub := c.key.Split()
		if cat != c.category || sub != c.subKey {
			t.Errorf("Split(%v) = (%q, %q), want (%q, %q)", c.key, cat, sub, c.category, c.subKey)
		}
	}
}
