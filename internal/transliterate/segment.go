// Package transliterate converts Han-script runs of mixed text into katakana
// through a remote per-character reading service.
package transliterate

import (
	"iter"
	"strings"
)

// IsHan reports whether r is a CJK ideograph: the unified block, extension A,
// or the compatibility block.
func IsHan(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0xF900 && r <= 0xFAFF)
}

// ContainsHan reports whether text has at least one Han rune.
func ContainsHan(text string) bool {
	return strings.ContainsFunc(text, IsHan)
}

// Segment is a maximal run of runes sharing one classification.
type Segment struct {
	Text string
	Han  bool
}

// Segments lazily partitions text into alternating Han and non-Han runs.
// Concatenating the yielded texts reproduces text exactly.
func Segments(text string) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		start := 0
		han := false

		for idx, r := range text {
			isHan := IsHan(r)
			if idx > start && isHan != han {
				if !yield(Segment{Text: text[start:idx], Han: han}) {
					return
				}

				start = idx
			}

			han = isHan
		}

		if start < len(text) {
			yield(Segment{Text: text[start:], Han: han})
		}
	}
}
