/*
Package corpus builds and persists the unigram and bigram frequency tables
that the language model is derived from.

The reference text is a single stream of lowercase words separated by
whitespace (text8 is the default source). Tables are counted once, saved to
a MessagePack cache and reloaded on later runs.
*/
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

var (
	// ErrEmptyCorpus is returned when the corpus text holds no words.
	ErrEmptyCorpus = errors.New("corpus is empty")
	// ErrMalformedCache marks frequency tables that are not word -> non-negative count mappings.
	ErrMalformedCache = errors.New("malformed frequency tables")
)

// Bigram is an ordered pair of consecutive words.
type Bigram struct {
	Prev string
	Word string
}

// Counts holds the raw frequency tables of a corpus
type Counts struct {
	Unigrams map[string]int
	Bigrams  map[Bigram]int
}

// NewCounts returns empty tables.
func NewCounts() *Counts {
	return &Counts{
		Unigrams: make(map[string]int),
		Bigrams:  make(map[Bigram]int),
	}
}

// Count counts words and bigrams in text.
func Count(text string) *Counts {
	counts, err := CountReader(strings.NewReader(text))
	if err != nil {
		// strings.Reader never fails
		log.Errorf("Counting corpus text: %v", err)
	}
	return counts
}

func (c *Counts) add(prev, word string) {
	c.Unigrams[word]++
	if prev != "" {
		c.Bigrams[Bigram{Prev: prev, Word: word}]++
	}
}

// CountReader streams whitespace separated words from r and counts
// unigrams and bigrams of consecutive words.
func CountReader(r io.Reader) (*Counts, error) {
	counts := NewCounts()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanWords)

	prev := ""
	words := 0
	for scanner.Scan() {
		word := scanner.Text()
		counts.add(prev, word)
		prev = word
		words++
		if words%1000000 == 0 {
			log.Debugf("Counted %d words", words)
		}
	}
	if err := scanner.Err(); err != nil {
		return counts, fmt.Errorf("failed to read corpus: %w", err)
	}

	if words == 0 {
		log.Warn("Corpus text is empty, frequency tables will be empty")
	}
	log.Debugf("Counted %d words: %d unigrams, %d bigrams", words, len(counts.Unigrams), len(counts.Bigrams))
	return counts, nil
}

// Total returns the number of word tokens
func (c *Counts) Total() int {
	total := 0
	for _, n := range c.Unigrams {
		total += n
	}
	return total
}

// Len returns the vocabulary size.
func (c *Counts) Len() int {
	return len(c.Unigrams)
}

// Validate checks that both tables map non-empty keys to non-negative counts.
func (c *Counts) Validate() error {
	if c == nil || c.Unigrams == nil || c.Bigrams == nil {
		return fmt.Errorf("%w: missing table", ErrMalformedCache)
	}
	for word, n := range c.Unigrams {
		if word == "" {
			return fmt.Errorf("%w: empty word", ErrMalformedCache)
		}
		if n < 0 {
			return fmt.Errorf("%w: negative count %d for %q", ErrMalformedCache, n, word)
		}
	}
	for pair, n := range c.Bigrams {
		if pair.Prev == "" || pair.Word == "" {
			return fmt.Errorf("%w: incomplete bigram (%q, %q)", ErrMalformedCache, pair.Prev, pair.Word)
		}
		if n < 0 {
			return fmt.Errorf("%w: negative count %d for (%q, %q)", ErrMalformedCache, n, pair.Prev, pair.Word)
		}
	}
	return nil
}
