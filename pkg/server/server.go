package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/bastiangx/wordsplit/internal/logger"
	"github.com/bastiangx/wordsplit/pkg/split"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultMaxInputLength is used when no positive maximum is configured.
const DefaultMaxInputLength = 100000

// Server handles the IPC for word segmentation
type Server struct {
	splitter       split.ISplitter
	decoder        *msgpack.Decoder
	writer         *bufio.Writer
	encoder        *msgpack.Encoder
	logger         *log.Logger
	maxInputLength int
	requestCount   int
}

// NewServer creates a segmentation server using stdin/stdout for IPC
func NewServer(splitter split.ISplitter, maxInputLength int) *Server {
	return NewServerWithIO(splitter, maxInputLength, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing responses to w
func NewServerWithIO(splitter split.ISplitter, maxInputLength int, r io.Reader, w io.Writer) *Server {
	if maxInputLength < 1 {
		maxInputLength = DefaultMaxInputLength
	}
	writer := bufio.NewWriter(w)
	return &Server{
		splitter:       splitter,
		decoder:        msgpack.NewDecoder(bufio.NewReader(r)),
		writer:         writer,
		encoder:        msgpack.NewEncoder(writer),
		logger:         logger.NewWithWriter(os.Stderr, "server"),
		maxInputLength: maxInputLength,
	}
}

// Start processes requests until the input is closed
func (s *Server) Start() error {
	s.logger.Debug("Starting server")

	for {
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("Input closed")
				return nil
			}
			s.logger.Errorf("Reading request: %v", err)
			return err
		}
		s.requestCount++

		var request Request
		if err := msgpack.Unmarshal(raw, &request); err != nil {
			s.logger.Errorf("Decoding request: %v", err)
			if err := s.sendError("", "invalid msgpack request", 400); err != nil {
				return err
			}
			continue
		}
		if err := s.handleRequest(request); err != nil {
			return err
		}
	}
}

// handleRequest dispatches on the action; only write failures are returned
func (s *Server) handleRequest(request Request) error {
	switch request.Action {
	case "", ActionSegment:
		return s.handleSegment(request)
	case ActionHealth:
		return s.sendResponse(StatusResponse{ID: request.ID, Status: "ok"})
	case ActionInfo:
		return s.sendResponse(StatusResponse{ID: request.ID, Status: "ok", Stats: s.splitter.Stats()})
	default:
		return s.sendError(request.ID, fmt.Sprintf("unknown action: %s", request.Action), 400)
	}
}

func (s *Server) handleSegment(request Request) error {
	if n := utf8.RuneCountInString(request.Text); n > s.maxInputLength {
		s.logger.Debugf("Request %s rejected: %d characters", request.ID, n)
		return s.sendError(request.ID, fmt.Sprintf("input exceeds maximum length of %d characters", s.maxInputLength), 413)
	}

	var (
		result split.Result
		err    error
	)
	if request.Limit != nil {
		if *request.Limit < 1 || *request.Limit > s.maxInputLength {
			return s.sendError(request.ID, fmt.Sprintf("max word length must be in [1, %d], got %d", s.maxInputLength, *request.Limit), 400)
		}
		result, err = s.splitter.SplitWith(request.Text, *request.Limit)
	} else {
		result, err = s.splitter.Split(request.Text)
	}
	if err != nil {
		s.logger.Errorf("Segmenting request %s: %v", request.ID, err)
		return s.sendError(request.ID, err.Error(), 500)
	}

	return s.sendResponse(SegmentResponse{
		ID:           request.ID,
		Words:        result.Words,
		Text:         result.Text,
		Unrecognized: result.Unrecognized,
		LogProb:      result.LogProb,
		TimeTaken:    result.Elapsed.Microseconds(),
	})
}

// sendResponse encodes one response and flushes it to the client
func (s *Server) sendResponse(response any) error {
	if err := s.encoder.Encode(response); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
		return err
	}
	return s.writer.Flush()
}

func (s *Server) sendError(id, message string, code int) error {
	return s.sendResponse(ErrorResponse{ID: id, Error: message, Code: code})
}

// RequestCount returns the number of requests read so far.
func (s *Server) RequestCount() int {
	return s.requestCount
}
