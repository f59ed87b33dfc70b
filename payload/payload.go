// Package payload contains the streaming body abstraction used for requests
// and responses.
//
// A payload is a lazy, finite sequence of byte chunks. It is consumed once:
// there is no way to rewind it, and after the last chunk every call to Next
// returns io.EOF.
package payload

import (
	"context"
	"errors"
	"io"
)

// UnknownLength is returned by ContentLength when the size of a payload is
// not known in advance
const UnknownLength = -1

// Payload is a streaming message body
type Payload interface {
	// Next returns the next chunk of data. After the last chunk it returns
	// io.EOF. A chunk returned with a nil error is never empty.
	//
	// The returned slice is owned by the caller.
	Next(ctx context.Context) ([]byte, error)

	// ContentLength returns the number of bytes not yet returned by Next,
	// or UnknownLength
	ContentLength() int64
}

// ReadAll consumes the payload and returns all its data
func ReadAll(ctx context.Context, p Payload) ([]byte, error) {
	var data []byte
	if n := p.ContentLength(); n > 0 {
		data = make([]byte, 0, n)
	}
	for {
		chunk, err := p.Next(ctx)
		if errors.Is(err, io.EOF) {
			return data, nil
		}
		if err != nil {
			return data, err
		}
		data = append(data, chunk...)
	}
}

// Drain consumes the payload and discards its data
func Drain(ctx context.Context, p Payload) error {
	for {
		_, err := p.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// NewReader returns an io.Reader reading the payload.
//
// The context is passed to every Next call made by the reader.
func NewReader(ctx context.Context, p Payload) io.Reader {
	return &reader{ctx: ctx, p: p}
}

type reader struct {
	ctx     context.Context //nolint:containedctx // io.Reader predates contexts
	p       Payload
	pending []byte
	err     error
}

func (r *reader) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	for len(r.pending) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.pending, r.err = r.p.Next(r.ctx)
	}
	n := copy(b, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}
