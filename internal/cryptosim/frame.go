package cryptosim

import (
	"encoding/binary"
	"errors"
	"io"
)

// Messages travel on the socket as frames: a 4-byte big-endian length
// followed by that many payload bytes. The length is the only field with a
// defined byte order; the payload it delimits is opaque to the framing layer.

const (
	frameHeaderSize = 4

	// DefaultMaxFrameSize bounds a single message in either direction when
	// no limit is configured.
	DefaultMaxFrameSize = 1 << 20
)

var errFrameTooLarge = errors.New("frame exceeds the maximum message size")

func writeFrame(w io.Writer, payload []byte, max int) error {
	if len(payload) > max {
		return errFrameTooLarge
	}
	var header [frameHeaderSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// readFrame reads the next frame into buf, growing it as needed, and returns
// the payload. A clean close between frames surfaces as io.EOF; a close
// mid-frame as io.ErrUnexpectedEOF.
func readFrame(r io.Reader, buf []byte, max int) ([]byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := int(binary.BigEndian.Uint32(header[:]))
	if n > max {
		return nil, errFrameTooLarge
	}
	if n <= cap(buf) {
		buf = buf[:n]
	} else {
		buf = make([]byte, n)
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}
