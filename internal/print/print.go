// Package print renders streams of values in the output formats shared by
// the cryptosim commands: one document per value for json and yaml, one
// formatted line per value for text.
package print

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/stealthrocket/cryptosim/internal/stream"
)

func NewJSONWriter[T any](w io.Writer) stream.WriteCloser[T] {
	e := json.NewEncoder(w)
	e.SetEscapeHTML(false)
	e.SetIndent("", "  ")
	return &jsonWriter[T]{enc: e}
}

type jsonWriter[T any] struct{ enc *json.Encoder }

func (w *jsonWriter[T]) Write(values []T) (int, error) {
	for n := range values {
		if err := w.enc.Encode(values[n]); err != nil {
			return n, err
		}
	}
	return len(values), nil
}

func (w *jsonWriter[T]) Close() error { return nil }

func NewYAMLWriter[T any](w io.Writer) stream.WriteCloser[T] {
	e := yaml.NewEncoder(w)
	e.SetIndent(2)
	return &yamlWriter[T]{enc: e}
}

type yamlWriter[T any] struct{ enc *yaml.Encoder }

func (w *yamlWriter[T]) Write(values []T) (int, error) {
	for n := range values {
		if err := w.enc.Encode(values[n]); err != nil {
			return n, err
		}
	}
	return len(values), nil
}

func (w *yamlWriter[T]) Close() error {
	// The yaml encoder reports closing before the first document as an error;
	// an empty stream is fine here.
	if err := w.enc.Close(); err != nil {
		if err.Error() != `yaml: expected STREAM-START` {
			return err
		}
	}
	return nil
}

// NewTextWriter formats every value with the given fmt verb, which must
// include its own line termination.
func NewTextWriter[T any](w io.Writer, format string) stream.WriteCloser[T] {
	return &textWriter[T]{output: bufio.NewWriter(w), format: format}
}

type textWriter[T any] struct {
	output *bufio.Writer
	format string
}

func (w *textWriter[T]) Write(values []T) (int, error) {
	for n := range values {
		if _, err := fmt.Fprintf(w.output, w.format, values[n]); err != nil {
			return n, err
		}
	}
	return len(values), nil
}

func (w *textWriter[T]) Close() error { return w.output.Flush() }
