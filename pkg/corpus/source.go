package corpus

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	// DefaultURL points at the text8 Wikipedia dump.
	DefaultURL = "http://mattmahoney.net/dc/text8.zip"
	// DefaultFile is the local name of the downloaded corpus.
	DefaultFile = "text8.zip"
	// DefaultSize is the expected byte size of text8.zip.
	DefaultSize = 31344016
)

// ErrSizeMismatch is returned when a corpus file fails the size check.
var ErrSizeMismatch = errors.New("corpus file size mismatch")

// zipReader closes both the archive entry and the archive.
type zipReader struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (z *zipReader) Close() error {
	err := z.ReadCloser.Close()
	if archiveErr := z.archive.Close(); err == nil {
		err = archiveErr
	}
	return err
}

// Open returns a reader over the corpus text at path.
// Zip archives are read from their first entry, anything else as plain text.
func Open(path string) (io.ReadCloser, error) {
	if strings.ToLower(filepath.Ext(path)) != ".zip" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open corpus %s: %w", path, err)
		}
		return file, nil
	}

	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus archive %s: %w", path, err)
	}
	if len(archive.File) == 0 {
		archive.Close()
		return nil, fmt.Errorf("%w: archive %s has no entries", ErrEmptyCorpus, path)
	}

	entry := archive.File[0]
	rc, err := entry.Open()
	if err != nil {
		archive.Close()
		return nil, fmt.Errorf("failed to open %s in %s: %w", entry.Name, path, err)
	}
	log.Debugf("Reading corpus entry %s from %s", entry.Name, path)
	return &zipReader{ReadCloser: rc, archive: archive}, nil
}

// Verify checks that the file at path has the expected size.
// An expected size of zero skips the check.
func Verify(path string, expectedSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if expectedSize > 0 && info.Size() != expectedSize {
		return fmt.Errorf("%w: %s is %d bytes, expected %d", ErrSizeMismatch, path, info.Size(), expectedSize)
	}
	return nil
}

// progressWriter logs download progress every 5%.
type progressWriter struct {
	total       int64
	written     int64
	lastPercent int64
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.total > 0 {
		percent := p.written * 100 / p.total
		if percent != p.lastPercent && percent%5 == 0 {
			log.Infof("Downloading corpus: %d%%", percent)
		}
		p.lastPercent = percent
	}
	return len(b), nil
}

// Fetch downloads url into dest unless dest already exists, then verifies its size.
func Fetch(ctx context.Context, url, dest string, expectedSize int64) error {
	if _, err := os.Stat(dest); err == nil {
		if err := Verify(dest, expectedSize); err != nil {
			return err
		}
		log.Debugf("Found and verified corpus file %s", dest)
		return nil
	}

	log.Infof("Downloading corpus file from %s", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: status %s", url, resp.Status)
	}

	if dir := filepath.Dir(dest); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmp := dest + ".part"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	progress := &progressWriter{total: resp.ContentLength, lastPercent: -1}
	_, copyErr := io.Copy(file, io.TeeReader(resp.Body, progress))
	closeErr := file.Close()
	if copyErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", tmp, copyErr)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return closeErr
	}

	if err := Verify(tmp, expectedSize); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		return err
	}
	log.Infof("Found and verified corpus file %s", dest)
	return nil
}
