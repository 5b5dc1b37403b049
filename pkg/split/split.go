// Package split wires the language model, the segmenter and the annotator
// into one pipeline from raw concatenated text to annotated words.
package split

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bastiangx/wordsplit/internal/utils"
	"github.com/bastiangx/wordsplit/pkg/annotate"
	"github.com/bastiangx/wordsplit/pkg/corpus"
	"github.com/bastiangx/wordsplit/pkg/dictionary"
	"github.com/bastiangx/wordsplit/pkg/model"
	"github.com/bastiangx/wordsplit/pkg/segment"
	"github.com/charmbracelet/log"
)

// ISplitter defines the interface for segmentation engines
type ISplitter interface {
	// Split segments input with the configured word length bound
	Split(input string) (Result, error)

	// SplitWith segments input with a per-call word length bound
	SplitWith(input string, maxWordLength int) (Result, error)

	// Stats returns statistics about the loaded model
	Stats() map[string]int
}

// Options bundles everything a Splitter is built from.
type Options struct {
	Model   model.Options
	Segment segment.Options
	// MinFrequencyPercent filters the vocabulary used for annotation.
	MinFrequencyPercent float64
	// CacheSize is the number of chunk segmentations kept; 0 disables the cache.
	CacheSize int
}

// DefaultOptions returns the default model and search settings with a small cache.
func DefaultOptions() Options {
	return Options{
		Model:     model.DefaultOptions(),
		Segment:   segment.DefaultOptions(),
		CacheSize: 256,
	}
}

// Result is one pipeline run.
type Result struct {
	// Input is the normalized text that was segmented.
	Input string
	Words []string
	// Text is the annotated segmentation.
	Text string
	// Unrecognized is the number of characters in out-of-vocabulary words.
	Unrecognized int
	// Unknown lists the indexes into Words of out-of-vocabulary words.
	Unknown []int
	LogProb float64
	Elapsed time.Duration
}

// Splitter is safe for concurrent use.
type Splitter struct {
	model     *model.LanguageModel
	segmenter *segment.Segmenter
	dict      *dictionary.Dictionary
	cache     *hotCache
	opts      Options
}

// New builds the model, the segmenter and the vocabulary from counts.
// Configuration errors surface here, before any search.
func New(counts *corpus.Counts, opts Options) (*Splitter, error) {
	if counts == nil {
		return nil, errors.New("splitter needs frequency counts")
	}
	if opts.CacheSize < 0 {
		return nil, fmt.Errorf("cache size must not be negative, got %d", opts.CacheSize)
	}
	lm, err := model.New(counts, opts.Model)
	if err != nil {
		return nil, err
	}
	seg, err := segment.New(lm, opts.Segment)
	if err != nil {
		return nil, err
	}

	s := &Splitter{
		model:     lm,
		segmenter: seg,
		dict:      dictionary.New(counts.Unigrams, opts.MinFrequencyPercent),
		opts:      opts,
	}
	if opts.CacheSize > 0 {
		if s.cache, err = newHotCache(opts.CacheSize); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Split segments input with the configured word length bound.
func (s *Splitter) Split(input string) (Result, error) {
	return s.split(input, s.segmenter)
}

// SplitWith segments input with maxWordLength as the bound for this call only.
func (s *Splitter) SplitWith(input string, maxWordLength int) (Result, error) {
	if maxWordLength == s.opts.Segment.MaxWordLength {
		return s.split(input, s.segmenter)
	}
	opts := s.opts.Segment
	opts.MaxWordLength = maxWordLength
	seg, err := s.segmenter.WithOptions(opts)
	if err != nil {
		return Result{}, err
	}
	return s.split(input, seg)
}

func (s *Splitter) split(input string, seg *segment.Segmenter) (Result, error) {
	start := time.Now()
	normalized := utils.NormalizeInput(input)
	result := Result{Input: normalized, Words: []string{}}

	chunks := strings.Fields(normalized)
	if len(chunks) == 0 {
		log.Warn("Empty input, nothing to segment")
		result.Elapsed = time.Since(start)
		return result, nil
	}

	previous := model.StartToken
	for _, chunk := range chunks {
		segmentation, err := s.segmentChunk(seg, chunk, previous)
		if err != nil {
			return Result{}, err
		}
		result.Words = append(result.Words, segmentation.Words...)
		result.LogProb += segmentation.LogProb
		previous = segmentation.Words[len(segmentation.Words)-1]
	}

	annotated := annotate.Annotate(result.Words, s.dict)
	result.Text = annotated.Text
	result.Unrecognized = annotated.Unrecognized
	result.Unknown = annotated.Unknown
	result.Elapsed = time.Since(start)

	log.Debugf("Split %d characters into %d words (%d unrecognized) in %v",
		len(normalized), len(result.Words), result.Unrecognized, result.Elapsed)
	return result, nil
}

func (s *Splitter) segmentChunk(seg *segment.Segmenter, chunk, previous string) (segment.Segmentation, error) {
	if s.cache == nil {
		return seg.SegmentAfter(chunk, previous)
	}
	key := cacheKey{chunk: chunk, previous: previous, maxLen: seg.Options().MaxWordLength}
	if cached, ok := s.cache.get(key); ok {
		return cached, nil
	}
	segmentation, err := seg.SegmentAfter(chunk, previous)
	if err != nil {
		return segment.Segmentation{}, err
	}
	s.cache.put(key, segmentation)
	return segmentation, nil
}

// Dictionary returns the vocabulary used for annotation.
func (s *Splitter) Dictionary() *dictionary.Dictionary {
	return s.dict
}

// Model returns the language model.
func (s *Splitter) Model() *model.LanguageModel {
	return s.model
}

// Stats returns statistics about the loaded model
func (s *Splitter) Stats() map[string]int {
	stats := s.dict.Stats()
	stats["maxCandidateLength"] = s.opts.Segment.MaxWordLength
	stats["maxSteps"] = s.opts.Segment.MaxSteps
	if s.cache != nil {
		for k, v := range s.cache.stats() {
			stats[k] = v
		}
	}
	return stats
}
