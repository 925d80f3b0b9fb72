// Package collator provides the locale-aware string comparison shared by both
// ordering engines. Comparisons ignore case, accents and punctuation and treat
// runs of digits as numbers, so "Bard 2" sorts before "Bard 10". A
// punctuation mark between two digits separates numbers instead of being
// dropped, so "0.5" sorts before "1".
package collator

import (
	"cmp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collator wraps a collate.Collator with the fixed sort options. The
// underlying collator keeps internal buffers and is not safe for concurrent
// use, so every comparison is serialized.
type Collator struct {
	mu  sync.Mutex
	col *collate.Collator
}

// New creates a Collator for the given locale. language.Und selects the root
// collation order.
func New(tag language.Tag) *Collator {
	return &Collator{
		col: collate.New(tag, collate.Loose, collate.Numeric),
	}
}

// Compare returns -1, 0 or 1.
func (c *Collator) Compare(a, b string) int {
	sa, sb := segments(a), segments(b)

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i < len(sa) && i < len(sb); i++ {
		x, y := sa[i], sb[i]
		if i > 0 {
			x, y = padFraction(x, y)
		}
		if r := c.col.CompareString(x, y); r != 0 {
			return r
		}
	}
	return cmp.Compare(len(sa), len(sb))
}

// padFraction right-pads the leading digit runs of a and b with zeros to a
// common length, so digits after a separator compare by place value and
// "2.5" sorts after "2.25".
func padFraction(a, b string) (string, string) {
	da, db := leadingDigits(a), leadingDigits(b)
	switch {
	case da < db:
		a = a[:da] + strings.Repeat("0", db-da) + a[da:]
	case db < da:
		b = b[:db] + strings.Repeat("0", da-db) + b[db:]
	}
	return a, b
}

func leadingDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

// segments drops punctuation runes, splitting s wherever one sits between
// two digits. The collation tables treat punctuation as significant at the
// primary level, so it has to go before the strings reach the collator, but
// deleting the dot from "0.5" would leave the number 5.
func segments(s string) []string {
	if strings.IndexFunc(s, unicode.IsPunct) < 0 {
		return []string{s}
	}

	rs := []rune(s)
	var (
		out []string
		b   strings.Builder
	)
	for i, r := range rs {
		if !unicode.IsPunct(r) {
			b.WriteRune(r)
			continue
		}
		if i > 0 && i+1 < len(rs) && unicode.IsDigit(rs[i-1]) && unicode.IsDigit(rs[i+1]) {
			out = append(out, b.String())
			b.Reset()
		}
	}
	return append(out, b.String())
}

var (
	defaultCollator *Collator
	defaultOnce     sync.Once
	defaultTag      = language.Und
)

// SetDefaultLocale selects the locale used by Default. It only has an effect
// before the first call to Default.
func SetDefaultLocale(tag language.Tag) {
	defaultTag = tag
}

// Default returns the process-wide Collator.
func Default() *Collator {
	defaultOnce.Do(func() {
		defaultCollator = New(defaultTag)
	})
	return defaultCollator
}

// Compare compares a and b with the process-wide Collator.
func Compare(a, b string) int {
	return Default().Compare(a, b)
}
