package mcp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultMaxMessageBytes caps a single frame body when no limit is configured.
const DefaultMaxMessageBytes = 16 << 20

var (
	// ErrEmptyFrame is returned when a header section ends without a usable
	// Content-Length. The frame is skipped and the caller keeps reading.
	ErrEmptyFrame = errors.New("frame has no usable Content-Length header")
	// ErrFrameTooLarge is returned after the body of an oversized frame has been discarded.
	ErrFrameTooLarge = errors.New("frame exceeds maximum message size")
)

// Reader reads Content-Length framed messages from a byte stream.
//
// Read returns io.EOF when the stream ends where a header line was expected.
// That is the only end-of-stream signal; ErrEmptyFrame and ErrFrameTooLarge
// mean the stream is still usable.
type Reader struct {
	r        *bufio.Reader
	maxBytes int
}

// NewReader wraps r. maxBytes <= 0 selects DefaultMaxMessageBytes.
func NewReader(r io.Reader, maxBytes int) *Reader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxMessageBytes
	}
	return &Reader{r: bufio.NewReader(r), maxBytes: maxBytes}
}

// Read returns the body of the next frame.
func (fr *Reader) Read() ([]byte, error) {
	length, err := fr.readHeaders()
	if err != nil {
		return nil, err
	}
	if length <= 0 {
		return nil, ErrEmptyFrame
	}

	if length > fr.maxBytes {
		if _, err := io.CopyN(io.Discard, fr.r, int64(length)); err != nil {
			return nil, fmt.Errorf("failed to discard oversized payload: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFrameTooLarge, length, fr.maxBytes)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return payload, nil
}

// readHeaders consumes one header section and returns the declared body length,
// or 0 when no valid Content-Length was present.
func (fr *Reader) readHeaders() (int, error) {
	length := 0
	for {
		line, err := fr.r.ReadString('\n')
		if err != nil {
			// A partial header line at end of input is still end of input.
			if errors.Is(err, io.EOF) {
				return 0, io.EOF
			}
			return 0, err
		}

		clean := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(clean) == "" {
			return length, nil
		}

		key, value, ok := strings.Cut(clean, ":")
		if !ok {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(key), "Content-Length") {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			length = n
		}
	}
}

// Writer writes Content-Length framed messages. Every Write is flushed.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write emits one complete frame whose length is the byte length of body.
func (fw *Writer) Write(body []byte) error {
	if _, err := fmt.Fprintf(fw.w, "Content-Length: %d\r\n\r\n", len(body)); err != nil {
		return err
	}
	if _, err := fw.w.Write(body); err != nil {
		return err
	}
	return fw.w.Flush()
}
