// Package annotate marks out-of-vocabulary words in a segmentation.
//
// Unknown words are rendered upper-case and every upper-case character of
// the rendered text counts as unrecognized.
package annotate

import (
	"strings"
	"unicode"
)

// Separator joins the words of an annotated result.
const Separator = " "

// Lookup reports vocabulary membership, ignoring case.
type Lookup interface {
	Contains(word string) bool
}

// Result is the rendered segmentation.
type Result struct {
	Text string
	// Unrecognized is the number of characters in words absent from the vocabulary.
	Unrecognized int
	// Unknown lists the flagged word slots, in order.
	Unknown []int
}

// Annotate joins words with Separator, upper-casing every word the lookup rejects.
func Annotate(words []string, vocab Lookup) Result {
	var sb strings.Builder
	result := Result{}
	for i, word := range words {
		if i > 0 {
			sb.WriteString(Separator)
		}
		if vocab != nil && vocab.Contains(word) {
			sb.WriteString(strings.ToLower(word))
			continue
		}
		sb.WriteString(strings.ToUpper(word))
		result.Unknown = append(result.Unknown, i)
	}
	result.Text = sb.String()
	result.Unrecognized = CountUnrecognized(result.Text)
	return result
}

// CountUnrecognized returns the number of upper-case characters in text.
func CountUnrecognized(text string) int {
	count := 0
	for _, r := range text {
		if unicode.IsUpper(r) {
			count++
		}
	}
	return count
}
