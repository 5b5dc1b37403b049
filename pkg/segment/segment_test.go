package segment

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/bastiangx/wordsplit/pkg/corpus"
	"github.com/bastiangx/wordsplit/pkg/model"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

const sampleText = "the cat sat on the mat and the dog sat on the log " +
	"a cat and a dog are friends the cat likes the sun " +
	"there is a hat on the cat in the hat"

func sampleModel(t testing.TB) *model.LanguageModel {
	t.Helper()
	lm, err := model.New(corpus.Count(sampleText), model.DefaultOptions())
	if err != nil {
		t.Fatalf("model.New: %v", err)
	}
	return lm
}

func newSegmenter(t testing.TB, scorer Scorer, maxLen int) *Segmenter {
	t.Helper()
	seg, err := New(scorer, Options{MaxWordLength: maxLen})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return seg
}

// constScorer gives every word the same score regardless of context.
type constScorer float64

func (c constScorer) LogBigramProb(word, previous string) float64 { return float64(c) }

// recordingScorer remembers the longest candidate it was asked about.
type recordingScorer struct {
	longest int
	calls   int
}

func (r *recordingScorer) LogBigramProb(word, previous string) float64 {
	r.calls++
	if len(word) > r.longest {
		r.longest = len(word)
	}
	return -float64(len(word))
}

func TestSegmentScenario(t *testing.T) {
	counts := &corpus.Counts{
		Unigrams: map[string]int{"the": 100, "cat": 50, "dog": 1},
		Bigrams:  map[corpus.Bigram]int{{Prev: "the", Word: "cat"}: 40},
	}
	lm, err := model.New(counts, model.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	seg := newSegmenter(t, lm, 6)

	result, err := seg.Segment("thecat")
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if !reflect.DeepEqual(result.Words, []string{"the", "cat"}) {
		t.Errorf("Segment(thecat) = %v, want [the cat]", result.Words)
	}
	want := math.Log(100.0/151/2) + math.Log(0.4)
	if math.Abs(result.LogProb-want) > 1e-9 {
		t.Errorf("LogProb = %g, want %g", result.LogProb, want)
	}

	result, err = seg.Segment("thexyz")
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if !reflect.DeepEqual(result.Words, []string{"the", "xyz"}) {
		t.Errorf("Segment(thexyz) = %v, want [the xyz]", result.Words)
	}
}

func TestSegment(t *testing.T) {
	seg := newSegmenter(t, sampleModel(t), DefaultMaxWordLength)

	testCases := []struct {
		input    string
		expected []string
	}{
		{"thecatsatonthemat", []string{"the", "cat", "sat", "on", "the", "mat"}},
		{"thedogsatonthelog", []string{"the", "dog", "sat", "on", "the", "log"}},
		{"acatandadog", []string{"a", "cat", "and", "a", "dog"}},
		{"thecatinthehat", []string{"the", "cat", "in", "the", "hat"}},
		{"cat", []string{"cat"}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result, err := seg.Segment(tc.input)
			if err != nil {
				t.Fatalf("Segment: %v", err)
			}
			if !reflect.DeepEqual(result.Words, tc.expected) {
				t.Errorf("Segment(%q) = %v, want %v", tc.input, result.Words, tc.expected)
			}
		})
	}
}

func TestSegmentEmpty(t *testing.T) {
	seg := newSegmenter(t, sampleModel(t), 5)
	result, err := seg.Segment("")
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(result.Words) != 0 || result.LogProb != 0 {
		t.Errorf("expected empty segmentation, got %v (%g)", result.Words, result.LogProb)
	}
}

func TestSegmentPreservesCharacters(t *testing.T) {
	seg := newSegmenter(t, sampleModel(t), 8)
	inputs := []string{
		"thecatsatonthemat",
		"zzzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
		"qwjxkvthecatqqq",
		"a",
		"héllowörld",
		strings.Repeat("thecat", 50),
	}
	for _, input := range inputs {
		result, err := seg.Segment(input)
		if err != nil {
			t.Fatalf("Segment(%q): %v", input, err)
		}
		if got := strings.Join(result.Words, ""); got != input {
			t.Errorf("concatenation of %v = %q, want %q", result.Words, got, input)
		}
		for _, w := range result.Words {
			if w == "" {
				t.Errorf("empty word in segmentation of %q", input)
			}
		}
	}
}

func TestSegmentDeterministic(t *testing.T) {
	seg := newSegmenter(t, sampleModel(t), 10)
	input := "thecatlikesthesunandthedogsat"
	first, err := seg.Segment(input)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := seg.Segment(input)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, again, first)
		}
	}
}

func TestSegmentMonotonicInMaxLength(t *testing.T) {
	lm := sampleModel(t)
	input := "therearefriendsonthemat"
	prev := math.Inf(-1)
	for maxLen := 1; maxLen <= 12; maxLen++ {
		result, err := newSegmenter(t, lm, maxLen).Segment(input)
		if err != nil {
			t.Fatal(err)
		}
		if result.LogProb < prev {
			t.Errorf("max length %d scored %g, below %g at max length %d", maxLen, result.LogProb, prev, maxLen-1)
		}
		prev = result.LogProb
	}
}

// bruteForce enumerates every split of text into words of at most maxLen bytes.
func bruteForce(lm *model.LanguageModel, text string, maxLen int) ([]string, float64) {
	var best []string
	bestScore := math.Inf(-1)
	var walk func(rest string, words []string)
	walk = func(rest string, words []string) {
		if rest == "" {
			if score := lm.LogSequenceProb(words, model.StartToken); score > bestScore {
				bestScore = score
				best = append([]string(nil), words...)
			}
			return
		}
		for i := 1; i <= maxLen && i <= len(rest); i++ {
			walk(rest[i:], append(words, rest[:i]))
		}
	}
	walk(text, nil)
	return best, bestScore
}

func TestSegmentMatchesExhaustiveSearch(t *testing.T) {
	lm := sampleModel(t)
	inputs := []string{"thecatsat", "adogonalog", "catsunhat", "xthedogx", "onthemat"}
	for _, input := range inputs {
		for _, maxLen := range []int{2, 3, 5} {
			result, err := newSegmenter(t, lm, maxLen).Segment(input)
			if err != nil {
				t.Fatal(err)
			}
			_, want := bruteForce(lm, input, maxLen)
			if math.Abs(result.LogProb-want) > 1e-9 {
				t.Errorf("Segment(%q, %d) scored %g, exhaustive best %g", input, maxLen, result.LogProb, want)
			}
			if got := lm.LogSequenceProb(result.Words, model.StartToken); math.Abs(got-result.LogProb) > 1e-9 {
				t.Errorf("reported LogProb %g does not match chain score %g", result.LogProb, got)
			}
		}
	}
}

func TestSegmentMaxLengthBoundary(t *testing.T) {
	scorer := &recordingScorer{}
	seg := newSegmenter(t, scorer, 4)
	if _, err := seg.Segment("abcdefghij"); err != nil {
		t.Fatal(err)
	}
	if scorer.longest != 4 {
		t.Errorf("longest candidate = %d, want exactly 4", scorer.longest)
	}

	// a word of exactly the bound is chosen when it scores best
	result, err := newSegmenter(t, constScorer(-1), 4).Segment("abcd")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(result.Words, []string{"abcd"}) {
		t.Errorf("Segment(abcd) = %v, want [abcd]", result.Words)
	}
}

func TestSegmentTieBreak(t *testing.T) {
	// every word costs the same, so a|bc and ab|c tie; the shorter first word wins
	seg := newSegmenter(t, constScorer(-1), 2)
	result, err := seg.Segment("abc")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(result.Words, []string{"a", "bc"}) {
		t.Errorf("Segment(abc) = %v, want [a bc]", result.Words)
	}
}

func TestSegmentAfterUsesContext(t *testing.T) {
	counts := &corpus.Counts{
		Unigrams: map[string]int{"in": 40, "inn": 10, "a": 30, "an": 30, "old": 20, "x": 1},
		Bigrams: map[corpus.Bigram]int{
			{Prev: "an", Word: "old"}: 20,
		},
	}
	lm, err := model.New(counts, model.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	seg := newSegmenter(t, lm, 5)
	result, err := seg.SegmentAfter("old", "an")
	if err != nil {
		t.Fatal(err)
	}
	want := lm.LogBigramProb("old", "an")
	if !reflect.DeepEqual(result.Words, []string{"old"}) || math.Abs(result.LogProb-want) > 1e-12 {
		t.Errorf("SegmentAfter = %v (%g), want [old] (%g)", result.Words, result.LogProb, want)
	}
}

func TestSegmentBoundAboveInputLength(t *testing.T) {
	testCases := []struct {
		maxLen      int
		description string
	}{
		{100, "Bound larger than input"},
		{math.MaxInt32, "Bound at MaxInt32"},
		{math.MaxInt, "Bound at MaxInt"},
	}

	want, err := newSegmenter(t, sampleModel(t), 20).Segment("thecatsat")
	if err != nil {
		t.Fatal(err)
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			result, err := newSegmenter(t, sampleModel(t), tc.maxLen).Segment("thecatsat")
			if err != nil {
				t.Fatalf("Segment: %v", err)
			}
			if !reflect.DeepEqual(result.Words, want.Words) || result.LogProb != want.LogProb {
				t.Errorf("Segment = %v (%g), want %v (%g)", result.Words, result.LogProb, want.Words, want.LogProb)
			}
		})
	}
}

func TestNewErrors(t *testing.T) {
	lm := sampleModel(t)
	if _, err := New(lm, Options{MaxWordLength: 0}); !errors.Is(err, ErrInvalidMaxLength) {
		t.Errorf("expected ErrInvalidMaxLength, got %v", err)
	}
	if _, err := New(lm, Options{MaxWordLength: -3}); !errors.Is(err, ErrInvalidMaxLength) {
		t.Errorf("expected ErrInvalidMaxLength, got %v", err)
	}
	if _, err := New(lm, Options{MaxWordLength: 3, MaxSteps: -1}); err == nil {
		t.Error("expected error for negative step cap")
	}
	if _, err := New(nil, DefaultOptions()); err == nil {
		t.Error("expected error for nil scorer")
	}
}

func TestStepLimit(t *testing.T) {
	seg, err := New(constScorer(-1), Options{MaxWordLength: 5, MaxSteps: 50})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := seg.Segment(strings.Repeat("a", 100)); !errors.Is(err, ErrStepLimit) {
		t.Errorf("expected ErrStepLimit, got %v", err)
	}
	if _, err := seg.Segment("abc"); err != nil {
		t.Errorf("short input should fit the budget: %v", err)
	}
}

func TestWithOptions(t *testing.T) {
	seg := newSegmenter(t, constScorer(-1), 2)
	wider, err := seg.WithOptions(Options{MaxWordLength: 3})
	if err != nil {
		t.Fatal(err)
	}
	result, err := wider.Segment("abc")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(result.Words, []string{"abc"}) {
		t.Errorf("Segment(abc) = %v, want [abc]", result.Words)
	}
	if seg.Options().MaxWordLength != 2 {
		t.Error("WithOptions modified the receiver")
	}
}

func BenchmarkSegment(b *testing.B) {
	lm := sampleModel(b)
	seg := newSegmenter(b, lm, DefaultMaxWordLength)
	input := strings.Repeat("thecatsatonthematandthedogsatonthelog", 20)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := seg.Segment(input); err != nil {
			b.Fatal(err)
		}
	}
}
