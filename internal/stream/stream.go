// Package stream provides readers and writers for streams of typed values,
// shaped after the io package but generic over the element type.
package stream

import "io"

// Reader produces a stream of values of type T. Read returns the number of
// values read; the error is io.EOF once the stream is exhausted.
type Reader[T any] interface {
	Read(values []T) (int, error)
}

// Writer consumes a stream of values of type T.
type Writer[T any] interface {
	Write(values []T) (int, error)
}

// WriteCloser is a Writer with a terminal Close releasing whatever the writer
// buffers.
type WriteCloser[T any] interface {
	Writer[T]
	io.Closer
}

// NewReader constructs a Reader producing the given values.
func NewReader[T any](values ...T) Reader[T] {
	return &sliceReader[T]{values: append([]T{}, values...)}
}

type sliceReader[T any] struct{ values []T }

func (r *sliceReader[T]) Read(values []T) (n int, err error) {
	n = copy(values, r.values)
	r.values = r.values[n:]
	if len(r.values) == 0 {
		err = io.EOF
	}
	return n, err
}

// Copy reads values from r and writes them to w until the end of the stream,
// returning the number of values copied.
func Copy[T any](w Writer[T], r Reader[T]) (n int64, err error) {
	buf := make([]T, 32)
	for {
		rn, rerr := r.Read(buf)
		if rn > 0 {
			wn, werr := w.Write(buf[:rn])
			n += int64(wn)
			if werr != nil {
				return n, werr
			}
			if wn < rn {
				return n, io.ErrShortWrite
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				rerr = nil
			}
			return n, rerr
		}
		if rn == 0 {
			return n, io.ErrNoProgress
		}
	}
}

// ReadAll drains r, returning the values it produced. io.EOF is the expected
// termination and is not reported as an error.
func ReadAll[T any](r Reader[T]) ([]T, error) {
	values := make([]T, 0, 16)
	for {
		if len(values) == cap(values) {
			values = append(values, make([]T, len(values))...)[:len(values)]
		}
		n, err := r.Read(values[len(values):cap(values)])
		values = values[:len(values)+n]
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			return values, err
		}
	}
}
