package payload

import (
	"context"
	"errors"
	"io"
)

const (
	chunkSize = 32 * 1024

	// maxEmptyReads is the number of consecutive (0, nil) results from the
	// underlying reader after which Stream gives up
	maxEmptyReads = 100
)

// Stream is a payload backed by an io.Reader. Data is read lazily, one chunk
// per Next call.
//
// The context is checked before each read, but a read that is already
// blocked is not interrupted by closing the context: this is up to the
// reader (for network connections, use deadlines).
type Stream struct {
	r         io.Reader
	remaining int64
	err       error
}

// FromReader returns a payload reading from r. If length is not
// UnknownLength, at most length bytes are read.
func FromReader(r io.Reader, length int64) *Stream {
	if length >= 0 {
		r = io.LimitReader(r, length)
	}
	return &Stream{r: r, remaining: length}
}

// Next implements Payload
func (s *Stream) Next(ctx context.Context) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := chunkSize
	if s.remaining >= 0 && s.remaining < chunkSize {
		if s.remaining == 0 {
			s.err = io.EOF
			return nil, io.EOF
		}
		size = int(s.remaining)
	}

	buf := make([]byte, size)
	for i := 0; i < maxEmptyReads; i++ {
		n, err := s.r.Read(buf)
		if s.remaining >= 0 {
			s.remaining -= int64(n)
		}
		if err != nil {
			s.err = err
			if errors.Is(err, io.EOF) {
				s.remaining = 0
			}
		}
		if n > 0 {
			return buf[:n], nil
		}
		if err != nil {
			return nil, err
		}
	}
	s.err = io.ErrNoProgress
	return nil, s.err
}

// ContentLength implements Payload
func (s *Stream) ContentLength() int64 {
	return s.remaining
}
