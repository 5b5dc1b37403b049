// Package dictionary holds the known vocabulary in a patricia trie.
package dictionary

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Entry is a vocabulary word with its corpus frequency
type Entry struct {
	Word      string
	Frequency int
}

// Dictionary is the set of words the annotator accepts as recognized.
// It is read-only after New and safe for concurrent use.
type Dictionary struct {
	trie          *patricia.Trie
	totalWords    int
	maxFrequency  int
	maxWordLength int
	minFrequency  int
}

// New builds a dictionary from unigram counts.
// Words whose share of all tokens is below minFrequencyPercent are left out;
// 0 keeps every word with a positive count.
func New(unigrams map[string]int, minFrequencyPercent float64) *Dictionary {
	total := 0
	for _, n := range unigrams {
		total += n
	}

	minFrequency := 1
	if minFrequencyPercent > 0 {
		threshold := int(float64(total) * minFrequencyPercent / 100)
		if threshold > minFrequency {
			minFrequency = threshold
		}
	}

	d := &Dictionary{
		trie:         patricia.NewTrie(),
		minFrequency: minFrequency,
	}
	skipped := 0
	for word, n := range unigrams {
		if n < minFrequency {
			skipped++
			continue
		}
		d.add(strings.ToLower(word), n)
	}

	log.Debugf("Dictionary built: %d words, %d below frequency %d", d.totalWords, skipped, minFrequency)
	return d
}

func (d *Dictionary) add(word string, frequency int) {
	if word == "" {
		return
	}
	if existing, ok := d.trie.Get(patricia.Prefix(word)).(int); ok {
		// words differing only in case merge into one entry
		d.trie.Set(patricia.Prefix(word), existing+frequency)
		frequency += existing
	} else {
		d.trie.Insert(patricia.Prefix(word), frequency)
		d.totalWords++
	}
	if frequency > d.maxFrequency {
		d.maxFrequency = frequency
	}
	if length := utf8.RuneCountInString(word); length > d.maxWordLength {
		d.maxWordLength = length
	}
}

// Contains reports whether word is in the vocabulary, ignoring case.
func (d *Dictionary) Contains(word string) bool {
	if word == "" {
		return false
	}
	return d.trie.Match(patricia.Prefix(strings.ToLower(word)))
}

// Frequency returns the corpus count of word, or 0 when unknown.
func (d *Dictionary) Frequency(word string) int {
	if freq, ok := d.trie.Get(patricia.Prefix(strings.ToLower(word))).(int); ok {
		return freq
	}
	return 0
}

// WithPrefix returns up to limit words starting with prefix, most frequent first.
// A limit of 0 or less returns every match.
func (d *Dictionary) WithPrefix(prefix string, limit int) []Entry {
	var entries []Entry
	err := d.trie.VisitSubtree(patricia.Prefix(strings.ToLower(prefix)), func(p patricia.Prefix, item patricia.Item) error {
		freq, ok := item.(int)
		if !ok {
			log.Errorf("Unknown item type: %T for word %s", item, p)
			return nil
		}
		entries = append(entries, Entry{Word: string(p), Frequency: freq})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
		return nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Frequency != entries[j].Frequency {
			return entries[i].Frequency > entries[j].Frequency
		}
		return entries[i].Word < entries[j].Word
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// Len returns the number of words.
func (d *Dictionary) Len() int {
	return d.totalWords
}

// MaxWordLength returns the length of the longest word, in characters.
func (d *Dictionary) MaxWordLength() int {
	return d.maxWordLength
}

// Stats returns statistics about the loaded dictionary
func (d *Dictionary) Stats() map[string]int {
	return map[string]int{
		"totalWords":    d.totalWords,
		"maxFrequency":  d.maxFrequency,
		"maxWordLength": d.maxWordLength,
		"minFrequency":  d.minFrequency,
	}
}
