package payload

import (
	"context"
	"io"
)

// Body is an in-memory payload consisting of a fixed list of chunks
type Body struct {
	chunks    [][]byte
	remaining int64
}

// Empty returns a payload with no data
func Empty() *Body {
	return &Body{}
}

// Bytes returns a payload consisting of a single chunk
func Bytes(b []byte) *Body {
	return Chunks(b)
}

// String returns a payload consisting of a single chunk holding s
func String(s string) *Body {
	return Chunks([]byte(s))
}

// Chunks returns a payload yielding the given chunks in order. Empty chunks
// are skipped.
func Chunks(chunks ...[]byte) *Body {
	b := &Body{chunks: make([][]byte, 0, len(chunks))}
	for _, c := range chunks {
		if len(c) == 0 {
			continue
		}
		b.chunks = append(b.chunks, c)
		b.remaining += int64(len(c))
	}
	return b
}

// Next implements Payload
func (b *Body) Next(ctx context.Context) ([]byte, error) {
	if len(b.chunks) == 0 {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	chunk := b.chunks[0]
	b.chunks[0] = nil
	b.chunks = b.chunks[1:]
	b.remaining -= int64(len(chunk))
	return chunk, nil
}

// ContentLength implements Payload
func (b *Body) ContentLength() int64 {
	return b.remaining
}
