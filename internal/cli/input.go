// Package cli handles cmd line input for segmenting text interactively, mainly for DBG and testing
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/bastiangx/wordsplit/internal/logger"
	"github.com/bastiangx/wordsplit/internal/utils"
	"github.com/bastiangx/wordsplit/pkg/dictionary"
	"github.com/bastiangx/wordsplit/pkg/split"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// default number of entries listed by :words
const wordsLimit = 10

// InputHandler reads lines of concatenated text and prints their segmentation.
// Lines starting with ':' are commands: :words <prefix>, :freq <word>, :stats and :quit.
type InputHandler struct {
	splitter     split.ISplitter
	logger       *log.Logger
	reader       *bufio.Reader
	writer       io.Writer
	unknownStyle lipgloss.Style
	scoreStyle   lipgloss.Style
	showScore    bool
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler.
// Colors are only rendered when color is set and w is a terminal.
func NewInputHandler(splitter split.ISplitter, r io.Reader, w io.Writer, color, showScore bool) *InputHandler {
	renderer := lipgloss.NewRenderer(w)
	unknownStyle := renderer.NewStyle()
	scoreStyle := renderer.NewStyle()
	if color {
		unknownStyle = unknownStyle.Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"})
		scoreStyle = scoreStyle.Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#797593", Dark: "#908caa"})
	}
	return &InputHandler{
		splitter:     splitter,
		logger:       logger.Default("cli"),
		reader:       bufio.NewReader(r),
		writer:       w,
		unknownStyle: unknownStyle,
		scoreStyle:   scoreStyle,
		showScore:    showScore,
	}
}

// Start begins the interface loop.
// It continuously prompts for input and hands each trimmed line to handleInput().
// The loop ends on :quit or when the input is closed.
func (h *InputHandler) Start() error {
	fmt.Fprintln(h.writer, "WordSplit CLI [BETA]")
	fmt.Fprintln(h.writer, "type text without spaces and press Enter to split it (:quit to exit)")

	for {
		fmt.Fprint(h.writer, "> ")
		line, err := h.reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			if quit := h.handleInput(line); quit {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(h.writer)
				return nil
			}
			return err
		}
	}
}

// handleInput processes one line and reports whether the loop should stop.
func (h *InputHandler) handleInput(line string) bool {
	h.requestCount++

	if strings.HasPrefix(line, ":") {
		return h.handleCommand(line)
	}

	result, err := h.splitter.Split(line)
	if err != nil {
		h.logger.Errorf("Failed to split input: %v", err)
		return false
	}
	h.logger.Debugf("Took [ %v ] for %d characters", result.Elapsed, len(result.Input))

	if len(result.Words) == 0 {
		h.logger.Warnf("Nothing to split in: '%s'", line)
		return false
	}

	fmt.Fprintln(h.writer, h.render(result))
	fmt.Fprintf(h.writer, "unrecognized: %d\n", result.Unrecognized)
	if h.showScore {
		score := fmt.Sprintf("log p = %.4f (%v)", result.LogProb, result.Elapsed)
		fmt.Fprintln(h.writer, h.scoreStyle.Render(score))
	}
	return false
}

// render joins the annotated words, styling the out-of-vocabulary ones
func (h *InputHandler) render(result split.Result) string {
	words := strings.Split(result.Text, " ")
	if len(words) != len(result.Words) {
		return result.Text
	}
	for _, i := range result.Unknown {
		words[i] = h.unknownStyle.Render(words[i])
	}
	return strings.Join(words, " ")
}

func (h *InputHandler) handleCommand(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":stats":
		h.printStats()
	case ":words":
		if len(fields) < 2 {
			h.logger.Errorf("Usage: :words <prefix> [limit]")
			return false
		}
		limit := wordsLimit
		if len(fields) > 2 {
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 1 {
				h.logger.Errorf("Invalid limit: %s", fields[2])
				return false
			}
			limit = n
		}
		h.printWords(fields[1], limit)
	case ":freq":
		if len(fields) != 2 {
			h.logger.Errorf("Usage: :freq <word>")
			return false
		}
		h.printFrequency(fields[1])
	default:
		h.logger.Errorf("Unknown command: %s", fields[0])
	}
	return false
}

func (h *InputHandler) printStats() {
	stats := h.splitter.Stats()
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h.writer, "%-20s %12s\n", k, utils.FormatWithCommas(stats[k]))
	}
}

// dictionary returns the splitter's vocabulary when it exposes one
func (h *InputHandler) dictionary() (*dictionary.Dictionary, bool) {
	lister, ok := h.splitter.(interface{ Dictionary() *dictionary.Dictionary })
	if !ok {
		h.logger.Warn("Word lookup is not supported by this splitter")
		return nil, false
	}
	return lister.Dictionary(), true
}

func (h *InputHandler) printWords(prefix string, limit int) {
	dict, ok := h.dictionary()
	if !ok {
		return
	}
	entries := dict.WithPrefix(prefix, limit)
	if len(entries) == 0 {
		h.logger.Warnf("No words found for prefix: '%s'", prefix)
		return
	}

	fmt.Fprintf(h.writer, "Found %d words for prefix '%s':\n", len(entries), prefix)
	for i, e := range entries {
		fmt.Fprintf(h.writer, "%2d. %-30s (freq: %8s)\n", i+1, e.Word, utils.FormatWithCommas(e.Frequency))
	}
}

func (h *InputHandler) printFrequency(word string) {
	dict, ok := h.dictionary()
	if !ok {
		return
	}
	freq := dict.Frequency(word)
	if freq == 0 {
		h.logger.Warnf("'%s' is not in the vocabulary", word)
	}
	fmt.Fprintf(h.writer, "%s: %s\n", strings.ToLower(word), utils.FormatWithCommas(freq))
}
