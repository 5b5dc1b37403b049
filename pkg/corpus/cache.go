package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const cacheVersion = 1

// bigramEntry is the on-disk form of one bigram count.
type bigramEntry struct {
	Prev  string `msgpack:"p"`
	Word  string `msgpack:"w"`
	Count int    `msgpack:"c"`
}

// cacheFile is the msgpack layout of the frequency table cache.
type cacheFile struct {
	Version  int            `msgpack:"v"`
	Unigrams map[string]int `msgpack:"u"`
	Bigrams  []bigramEntry  `msgpack:"b"`
}

// SaveCache writes counts to path as msgpack.
func SaveCache(path string, counts *Counts) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache dir: %w", err)
		}
	}

	data := cacheFile{
		Version:  cacheVersion,
		Unigrams: counts.Unigrams,
		Bigrams:  make([]bigramEntry, 0, len(counts.Bigrams)),
	}
	for pair, n := range counts.Bigrams {
		data.Bigrams = append(data.Bigrams, bigramEntry{Prev: pair.Prev, Word: pair.Word, Count: n})
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cache file %s: %w", path, err)
	}
	writer := bufio.NewWriter(file)
	if err := msgpack.NewEncoder(writer).Encode(&data); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadCache reads counts previously written by SaveCache.
// A missing file yields an error matching os.ErrNotExist and any undecodable
// or invalid payload yields ErrMalformedCache.
func LoadCache(path string) (*Counts, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return decodeCache(bufio.NewReader(file))
}

func decodeCache(r io.Reader) (*Counts, error) {
	var data cacheFile
	if err := msgpack.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCache, err)
	}
	if data.Version != cacheVersion {
		return nil, fmt.Errorf("%w: unsupported cache version %d", ErrMalformedCache, data.Version)
	}
	if data.Unigrams == nil {
		return nil, fmt.Errorf("%w: missing unigram table", ErrMalformedCache)
	}

	counts := &Counts{
		Unigrams: data.Unigrams,
		Bigrams:  make(map[Bigram]int, len(data.Bigrams)),
	}
	for _, entry := range data.Bigrams {
		counts.Bigrams[Bigram{Prev: entry.Prev, Word: entry.Word}] += entry.Count
	}
	if err := counts.Validate(); err != nil {
		return nil, err
	}
	return counts, nil
}

// LoadOrBuild returns the cached tables at cachePath, or counts the text
// returned by open and saves the result for the next run.
// A malformed cache is discarded and rebuilt. An empty cachePath disables caching.
func LoadOrBuild(cachePath string, open func() (io.ReadCloser, error)) (*Counts, error) {
	if cachePath != "" {
		counts, err := LoadCache(cachePath)
		switch {
		case err == nil:
			log.Debugf("Loaded frequency tables from %s: %d unigrams, %d bigrams",
				cachePath, len(counts.Unigrams), len(counts.Bigrams))
			return counts, nil
		case errors.Is(err, os.ErrNotExist):
			log.Info("Frequency cache not found. Counting words...")
		case errors.Is(err, ErrMalformedCache):
			log.Warnf("Discarding frequency cache %s: %v", cachePath, err)
			if rmErr := os.Remove(cachePath); rmErr != nil {
				log.Warnf("Failed to remove cache %s: %v", cachePath, rmErr)
			}
		default:
			log.Warnf("Failed to read frequency cache %s: %v. Rebuilding...", cachePath, err)
		}
	}

	rc, err := open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	counts, err := CountReader(rc)
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		if err := SaveCache(cachePath, counts); err != nil {
			log.Warnf("Failed to save frequency cache %s: %v", cachePath, err)
		} else {
			log.Debugf("Saved frequency tables to %s", cachePath)
		}
	}
	return counts, nil
}
