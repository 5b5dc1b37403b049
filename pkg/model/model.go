// Package model turns corpus frequency tables into smoothed unigram and
// bigram probability estimates.
//
// Every estimate is finite and strictly positive, unseen words included.
// The log forms are the primary API: they stay representable for very long
// unseen words and long word sequences where the linear product would
// underflow to zero.
package model

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/bastiangx/wordsplit/pkg/corpus"
	"github.com/charmbracelet/log"
)

// StartToken is the context word preceding the first word of an input.
const StartToken = "^"

var (
	// ErrNoSingletons is returned for a corpus without any word seen exactly once.
	// The unseen-word estimate has no evidence to work from in that case.
	ErrNoSingletons = errors.New("corpus has no single-occurrence words")
	// ErrInvalidOptions is returned for a prior or base outside its domain.
	ErrInvalidOptions = errors.New("invalid model options")
)

// Options tunes the unseen-word estimate.
type Options struct {
	// Prior scales every unseen-word estimate down relative to seen words.
	Prior float64
	// Base attenuates the estimate per character beyond the longest singleton length.
	Base float64
}

// DefaultOptions returns prior 1e-8 and base 1/26.
func DefaultOptions() Options {
	return Options{
		Prior: 1e-8,
		Base:  1.0 / 26.0,
	}
}

// Validate checks that prior is positive and base lies in (0, 1).
func (o Options) Validate() error {
	if !(o.Prior > 0) || math.IsInf(o.Prior, 0) {
		return fmt.Errorf("%w: prior must be positive, got %v", ErrInvalidOptions, o.Prior)
	}
	if !(o.Base > 0 && o.Base < 1) {
		return fmt.Errorf("%w: base must be in (0, 1), got %v", ErrInvalidOptions, o.Base)
	}
	return nil
}

// LanguageModel is an immutable bigram model over a fixed corpus.
type LanguageModel struct {
	unigrams map[string]int
	bigrams  map[corpus.Bigram]int

	logTotal float64
	// singletons maps a word length (in runes) to the number of words of that
	// length seen exactly once.
	singletons map[int]int
	longest    int

	opts     Options
	logPrior float64
	logBase  float64
}

// New builds a model over counts. The tables are not copied and must not be
// modified afterwards.
func New(counts *corpus.Counts, opts Options) (*LanguageModel, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if counts == nil {
		return nil, ErrNoSingletons
	}

	total := 0
	singletons := make(map[int]int)
	longest := 0
	for word, n := range counts.Unigrams {
		total += n
		if n == 1 {
			length := utf8.RuneCountInString(word)
			singletons[length]++
			if length > longest {
				longest = length
			}
		}
	}
	if len(singletons) == 0 {
		return nil, ErrNoSingletons
	}

	bigrams := counts.Bigrams
	if bigrams == nil {
		bigrams = map[corpus.Bigram]int{}
	}

	m := &LanguageModel{
		unigrams:   counts.Unigrams,
		bigrams:    bigrams,
		logTotal:   math.Log(float64(total)),
		singletons: singletons,
		longest:    longest,
		opts:       opts,
		logPrior:   math.Log(opts.Prior),
		logBase:    math.Log(opts.Base),
	}
	log.Debugf("Language model ready: %d words, %d tokens, %d singleton lengths (longest %d)",
		len(counts.Unigrams), total, len(singletons), longest)
	return m, nil
}

// Options returns the options the model was built with.
func (m *LanguageModel) Options() Options {
	return m.opts
}

// Known reports whether word was observed in the corpus.
func (m *LanguageModel) Known(word string) bool {
	return m.unigrams[word] > 0
}

// LogUnigramProb returns the natural log of the probability of word.
//
// Seen words get count/total. Unseen words get
// prior * singletons[len]/total, or when no singleton of that length exists,
// prior * singletons[longest]/total * base^(len-longest).
func (m *LanguageModel) LogUnigramProb(word string) float64 {
	if n := m.unigrams[word]; n > 0 {
		return math.Log(float64(n)) - m.logTotal
	}

	length := utf8.RuneCountInString(word)
	if ones := m.singletons[length]; ones > 0 {
		return clampLog(m.logPrior + math.Log(float64(ones)) - m.logTotal)
	}

	ones := m.singletons[m.longest]
	return clampLog(m.logPrior + math.Log(float64(ones)) - m.logTotal +
		float64(length-m.longest)*m.logBase)
}

// LogBigramProb returns the natural log of the probability of word following previous.
//
// An observed pair with an observed previous word gets
// count(previous, word)/count(previous). Anything else falls back to half the
// unigram estimate of word.
func (m *LanguageModel) LogBigramProb(word, previous string) float64 {
	if pair := m.bigrams[corpus.Bigram{Prev: previous, Word: word}]; pair > 0 {
		if prev := m.unigrams[previous]; prev > 0 {
			return clampLog(math.Log(float64(pair)) - math.Log(float64(prev)))
		}
	}
	return m.LogUnigramProb(word) - math.Ln2
}

// UnigramProb returns the probability of word, see LogUnigramProb.
func (m *LanguageModel) UnigramProb(word string) float64 {
	return toProb(m.LogUnigramProb(word))
}

// BigramProb returns the probability of word following previous, see LogBigramProb.
func (m *LanguageModel) BigramProb(word, previous string) float64 {
	return toProb(m.LogBigramProb(word, previous))
}

// LogSequenceProb scores words as a left-to-right bigram chain, the first
// word conditioned on previous.
func (m *LanguageModel) LogSequenceProb(words []string, previous string) float64 {
	score := 0.0
	for _, word := range words {
		score += m.LogBigramProb(word, previous)
		previous = word
	}
	return score
}

// clampLog caps a log probability at 0.
// Short unseen lengths below the longest singleton length can otherwise
// exceed probability 1 through the negative exponent.
func clampLog(lp float64) float64 {
	if lp > 0 {
		return 0
	}
	return lp
}

// toProb converts a log probability to a value in [SmallestNonzeroFloat64, 1].
func toProb(lp float64) float64 {
	p := math.Exp(lp)
	if p < math.SmallestNonzeroFloat64 {
		return math.SmallestNonzeroFloat64
	}
	if p > 1 {
		return 1
	}
	return p
}
