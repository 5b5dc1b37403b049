/*
Package server implements msgpack IPC for word segmentation.

The server reads msgpack requests from stdin and writes one msgpack response
per request to stdout. Logs go to stderr so stdout only carries frames.
Requests are processed synchronously, in order, with timing info included in
responses.

# IPC

Each message carries an ID that is echoed back. Segmentation is the default
action:

	{"id": "req_001", "t": "thecatsat", "l": 20}

The server responds with the words, the annotated text, the unrecognized
character count, the log probability and the time taken in microseconds:

	{"id": "req_001", "w": ["the", "cat", "sat"], "s": "the cat sat", "u": 0, "p": -21.7, "t": 85}

The "l" field bounds the candidate word length for that request only and
falls back to the configured bound when omitted.

Other actions:

	{"id": "h1", "action": "health"}
	{"id": "i1", "action": "info"}

# Errors

Failed requests get an error message and a code:

	{"id": "req_002", "e": "input exceeds maximum length of 100000 characters", "c": 413}

400 marks a malformed request, an unknown action or an invalid "l".
413 marks input longer than the configured maximum.
500 marks a failure inside the engine.
*/
package server

// Action names accepted in the "action" field.
const (
	ActionSegment = "segment"
	ActionHealth  = "health"
	ActionInfo    = "info"
)

// Request is any incoming message; Action defaults to segment.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action,omitempty"`
	Text   string `msgpack:"t"`
	Limit  *int   `msgpack:"l,omitempty"`
}

// SegmentResponse - segmentation result
type SegmentResponse struct {
	ID           string   `msgpack:"id"`
	Words        []string `msgpack:"w"`
	Text         string   `msgpack:"s"`
	Unrecognized int      `msgpack:"u"`
	LogProb      float64  `msgpack:"p"`
	TimeTaken    int64    `msgpack:"t"`
}

// StatusResponse answers health and info requests
type StatusResponse struct {
	ID     string         `msgpack:"id"`
	Status string         `msgpack:"status"`
	Stats  map[string]int `msgpack:"stats,omitempty"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
