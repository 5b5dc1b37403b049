package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bastiangx/wordsplit/internal/utils"
	"github.com/bastiangx/wordsplit/pkg/config"
	"github.com/bastiangx/wordsplit/pkg/corpus"
	"github.com/bastiangx/wordsplit/pkg/split"
	"github.com/charmbracelet/log"
)

// loadCounts reads the frequency cache, or fetches and counts the corpus when
// the cache is missing. The corpus is only downloaded when it is needed.
func loadCounts(cfg *config.Config, dataDir string, noFetch bool) (*corpus.Counts, error) {
	corpusPath := utils.ResolvePath(dataDir, cfg.Corpus.Path)
	cachePath := utils.ResolvePath(dataDir, cfg.Corpus.CachePath)
	log.Debugf("Corpus: %s, cache: %s", corpusPath, cachePath)

	open := func() (io.ReadCloser, error) {
		if err := ensureCorpus(cfg, corpusPath, noFetch); err != nil {
			return nil, err
		}
		return corpus.Open(corpusPath)
	}
	return corpus.LoadOrBuild(cachePath, open)
}

func ensureCorpus(cfg *config.Config, corpusPath string, noFetch bool) error {
	if utils.FileExists(corpusPath) {
		return corpus.Verify(corpusPath, expectedSize(cfg, corpusPath))
	}
	if noFetch || cfg.Corpus.URL == "" {
		return fmt.Errorf("corpus file %s not found and fetching is disabled: %w", corpusPath, os.ErrNotExist)
	}

	log.Warnf("Corpus %s not found, downloading %s", corpusPath, cfg.Corpus.URL)
	return corpus.Fetch(context.Background(), cfg.Corpus.URL, corpusPath, expectedSize(cfg, corpusPath))
}

// expectedSize only applies to the default download
func expectedSize(cfg *config.Config, corpusPath string) int64 {
	if cfg.Corpus.URL != corpus.DefaultURL || !strings.HasSuffix(corpusPath, corpus.DefaultFile) {
		return 0
	}
	return cfg.Corpus.ExpectedSize
}

// splitFile runs the one-shot mode on the contents of path.
func splitFile(splitter split.ISplitter, path string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return errors.New("concatenated_file is empty")
	}

	result, err := splitter.Split(string(data))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Concatenated text:", result.Input)
	fmt.Fprintln(w, "Segmented text:", result.Text)
	fmt.Fprintln(w, "Unrecognized characters:", result.Unrecognized)
	return nil
}
