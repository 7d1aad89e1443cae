package inference

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/sellerscope/sellerscope/internal/log"
)

// frameDecoder incrementally decodes a newline-delimited JSON stream into
// ChatResponse frames.
//
// The upstream frames its responses as JSON objects separated by '\n', but
// network reads do not align with those boundaries: a frame may arrive split
// across any number of reads. Bytes are buffered until a newline appears;
// trailing bytes with no newline are carried over to the next read, and a
// final unterminated line at EOF is decoded as the last frame.
//
// A line that fails to parse is logged and skipped, never fatal.
type frameDecoder struct {
	r      *bufio.Reader
	logger log.Logger
	eof    bool
}

func newFrameDecoder(r io.Reader, logger log.Logger) *frameDecoder {
	return &frameDecoder{r: bufio.NewReader(r), logger: logger}
}

// Next returns the next decoded frame, or io.EOF when the stream is
// exhausted. Transport read errors are returned as-is.
func (d *frameDecoder) Next() (*ChatResponse, error) {
	for {
		if d.eof {
			return nil, io.EOF
		}

		line, err := d.r.ReadBytes('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, err
			}
			// Flush a trailing unterminated line before reporting EOF.
			d.eof = true
			if len(bytes.TrimSpace(line)) == 0 {
				return nil, io.EOF
			}
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var frame ChatResponse
		if err := json.Unmarshal(line, &frame); err != nil {
			d.logger.Warn("skipping malformed upstream frame", "error", err, "bytes", len(line))
			continue
		}
		return &frame, nil
	}
}
