/*
Package segment recovers the most probable word sequence from text whose
spaces were removed.

Every split of the input into words of 1..MaxWordLength characters is a
candidate. Candidates are ranked by their joint probability as a
left-to-right bigram chain, the first word conditioned on the caller's
context. The search is a dynamic programme filled from the end of the input
backwards, one state per (offset, length of the preceding word), so it needs
no recursion and runs in O(n * L^2) for input length n and bound L.

	seg, err := segment.New(lm, segment.DefaultOptions())
	result, err := seg.Segment("thecatsat")
	// result.Words == []string{"the", "cat", "sat"}

Scores are compared in log space. When two candidates tie exactly, the one
with the shorter first word wins.
*/
package segment

import (
	"errors"
	"fmt"
	"math"

	"github.com/bastiangx/wordsplit/pkg/model"
	"github.com/charmbracelet/log"
)

// DefaultMaxWordLength bounds candidate words when no length is configured.
const DefaultMaxWordLength = 20

var (
	// ErrInvalidMaxLength is returned for a candidate word bound below 1.
	ErrInvalidMaxLength = errors.New("max word length must be at least 1")
	// ErrStepLimit is returned when a search exceeds its transition budget.
	ErrStepLimit = errors.New("segmentation step limit exceeded")
)

// Scorer gives the log probability of word following previous.
// *model.LanguageModel satisfies it.
type Scorer interface {
	LogBigramProb(word, previous string) float64
}

// Options controls the search.
type Options struct {
	// MaxWordLength is the longest candidate word, in characters.
	MaxWordLength int
	// MaxSteps caps the number of scored transitions per call; 0 means no cap.
	MaxSteps int
}

// DefaultOptions returns a 20 character bound and no step cap.
func DefaultOptions() Options {
	return Options{
		MaxWordLength: DefaultMaxWordLength,
		MaxSteps:      0,
	}
}

// Validate rejects a bound below 1 and a negative step cap.
func (o Options) Validate() error {
	if o.MaxWordLength < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxLength, o.MaxWordLength)
	}
	if o.MaxSteps < 0 {
		return fmt.Errorf("max steps must not be negative, got %d", o.MaxSteps)
	}
	return nil
}

// Segmentation is the best word sequence found for one input.
type Segmentation struct {
	Words []string
	// LogProb is the natural log of the joint probability of Words.
	LogProb float64
	// Steps counts the scored transitions.
	Steps int
}

// Segmenter is safe for concurrent use; each call owns its own memo table.
type Segmenter struct {
	scorer Scorer
	opts   Options
}

// New returns a segmenter scoring with scorer.
func New(scorer Scorer, opts Options) (*Segmenter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if scorer == nil {
		return nil, errors.New("segmenter needs a scorer")
	}
	return &Segmenter{scorer: scorer, opts: opts}, nil
}

// Options returns the search options.
func (s *Segmenter) Options() Options {
	return s.opts
}

// WithOptions returns a segmenter sharing the scorer with different options.
func (s *Segmenter) WithOptions(opts Options) (*Segmenter, error) {
	return New(s.scorer, opts)
}

// Segment splits text with the start of input as context.
func (s *Segmenter) Segment(text string) (Segmentation, error) {
	return s.SegmentAfter(text, model.StartToken)
}

// SegmentAfter splits text with previous as the context of its first word.
// Empty text yields an empty sequence with log probability 0.
func (s *Segmenter) SegmentAfter(text, previous string) (Segmentation, error) {
	if text == "" {
		return Segmentation{Words: []string{}}, nil
	}

	// byte offset of every character boundary, candidates are substrings of text
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	n := len(offsets) - 1

	// no candidate is longer than the text itself
	maxLen := min(s.opts.MaxWordLength, n)
	memo := newMemoTable(n, maxLen)
	steps := 0

	for i := n - 1; i >= 0; i-- {
		maxWord := min(maxLen, n-i)

		// contexts reaching offset i: the caller's at 0, else any word ending here
		ctxFrom, ctxTo := 1, min(maxLen, i)
		if i == 0 {
			ctxFrom, ctxTo = 0, 0
		}

		for ctx := ctxFrom; ctx <= ctxTo; ctx++ {
			prev := previous
			if ctx > 0 {
				prev = text[offsets[i-ctx]:offsets[i]]
			}

			best := math.Inf(-1)
			bestLen := 0
			for length := 1; length <= maxWord; length++ {
				word := text[offsets[i]:offsets[i+length]]
				rest, _ := memo.get(i+length, length)
				score := s.scorer.LogBigramProb(word, prev) + rest
				if score > best {
					best = score
					bestLen = length
				}
			}
			if bestLen == 0 {
				// scorer returned NaN or -Inf for every candidate
				bestLen = 1
			}
			memo.set(i, ctx, best, bestLen)

			steps += maxWord
			if s.opts.MaxSteps > 0 && steps > s.opts.MaxSteps {
				return Segmentation{}, fmt.Errorf("%w: %d steps for %d characters", ErrStepLimit, steps, n)
			}
		}
	}

	logProb, _ := memo.get(0, 0)
	words := make([]string, 0, n/4+1)
	for i, ctx := 0, 0; i < n; {
		_, length := memo.get(i, ctx)
		words = append(words, text[offsets[i]:offsets[i+length]])
		i += length
		ctx = length
	}

	log.Debugf("Segmented %d characters into %d words in %d steps", n, len(words), steps)
	return Segmentation{Words: words, LogProb: logProb, Steps: steps}, nil
}
