// Package tracelog records the raw protocol exchanges served by a cryptosim
// server and reads them back for offline inspection.
//
// Records accumulate into chunks that are compressed as a unit, so tracing
// stays cheap on the request path. A trace cut short (crashed server, full
// disk) loses at most the unflushed tail chunk; every complete chunk remains
// readable.
//
// Unlike protocol messages, trace files may outlive the host that produced
// them, so the container format uses a fixed byte order. The request and
// reply payloads inside are stored verbatim.
package tracelog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrCorrupt reports a trace file whose structure does not add up. It is
// wrapped with position details; test with errors.Is.
var ErrCorrupt = errors.New("tracelog: corrupt trace")

var fileMagic = [4]byte{'C', 'S', 'T', 'L'}

const (
	fileVersion     = 0
	fileHeaderSize  = 8
	chunkHeaderSize = 12
	recordFixedSize = 8 + 4 + 4

	// Chunks are cut when the raw payload reaches this size.
	chunkTargetSize = 64 * 1024

	// Upper bound on a single chunk accepted at read time, so a corrupt
	// header cannot trigger an absurd allocation.
	maxChunkSize = 64 * 1024 * 1024
)

// Record is one request/reply exchange, stored verbatim.
type Record struct {
	Time    time.Time
	Request []byte
	Reply   []byte
}

// Writer appends records to a trace. Methods are safe for concurrent use, so
// one Writer can serve every connection of a server.
type Writer struct {
	mutex       sync.Mutex
	output      io.Writer
	compression Compression
	chunk       []byte
	count       int
	scratch     []byte
}

// NewWriter writes the trace file header to output and returns a Writer
// appending records to it.
func NewWriter(output io.Writer, compression Compression) (*Writer, error) {
	if !compression.valid() {
		return nil, fmt.Errorf("invalid trace compression: %q", compression)
	}
	header := [fileHeaderSize]byte{}
	copy(header[:4], fileMagic[:])
	header[4] = fileVersion
	header[5] = compression.code()
	if _, err := output.Write(header[:]); err != nil {
		return nil, err
	}
	return &Writer{output: output, compression: compression}, nil
}

// WriteRecord appends one record, flushing the current chunk when it is full.
func (w *Writer) WriteRecord(r *Record) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.chunk = appendRecord(w.chunk, r)
	w.count++
	if len(w.chunk) >= chunkTargetSize {
		return w.flushChunk()
	}
	return nil
}

// Flush compresses and writes out the partial chunk, if any. Call it before
// closing the underlying file or the tail of the trace is lost.
func (w *Writer) Flush() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.count == 0 {
		return nil
	}
	return w.flushChunk()
}

func (w *Writer) flushChunk() error {
	compressed := compress(w.scratch, w.chunk, w.compression)
	w.scratch = compressed[:cap(compressed)]

	var header [chunkHeaderSize]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(w.chunk)))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(compressed)))
	binary.LittleEndian.PutUint32(header[8:12], uint32(w.count))
	if _, err := w.output.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.output.Write(compressed); err != nil {
		return err
	}
	w.chunk = w.chunk[:0]
	w.count = 0
	return nil
}

func appendRecord(b []byte, r *Record) []byte {
	b = binary.LittleEndian.AppendUint64(b, uint64(r.Time.UnixNano()))
	b = binary.LittleEndian.AppendUint32(b, uint32(len(r.Request)))
	b = binary.LittleEndian.AppendUint32(b, uint32(len(r.Reply)))
	b = append(b, r.Request...)
	b = append(b, r.Reply...)
	return b
}

// Reader iterates over the records of a trace.
type Reader struct {
	input       io.Reader
	compression Compression
	chunk       []byte
	offset      int
	remaining   int
	scratch     []byte
	record      Record
}

// NewReader reads and validates the trace file header of input and returns a
// Reader positioned on the first record.
func NewReader(input io.Reader) (*Reader, error) {
	var header [fileHeaderSize]byte
	if _, err := io.ReadFull(input, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: truncated file header", ErrCorrupt)
		}
		return nil, err
	}
	if [4]byte(header[:4]) != fileMagic {
		return nil, fmt.Errorf("%w: not a trace file", ErrCorrupt)
	}
	if header[4] != fileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, header[4])
	}
	compression, err := compressionOf(header[5])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, err)
	}
	return &Reader{input: input, compression: compression}, nil
}

// Compression returns the compression the trace was written with.
func (r *Reader) Compression() Compression {
	return r.compression
}

// ReadRecord returns the next record, or io.EOF at the end of the trace. The
// record and its payloads are only valid until the next call.
func (r *Reader) ReadRecord() (*Record, error) {
	for r.remaining == 0 {
		if err := r.readChunk(); err != nil {
			return nil, err
		}
	}
	if r.offset+recordFixedSize > len(r.chunk) {
		return nil, fmt.Errorf("%w: truncated record", ErrCorrupt)
	}
	b := r.chunk[r.offset:]
	nanos := int64(binary.LittleEndian.Uint64(b[0:8]))
	reqLen := int(binary.LittleEndian.Uint32(b[8:12]))
	repLen := int(binary.LittleEndian.Uint32(b[12:16]))
	if recordFixedSize+reqLen+repLen > len(b) {
		return nil, fmt.Errorf("%w: record overruns its chunk", ErrCorrupt)
	}
	r.offset += recordFixedSize + reqLen + repLen
	r.remaining--
	if r.remaining == 0 && r.offset != len(r.chunk) {
		return nil, fmt.Errorf("%w: chunk record count mismatch", ErrCorrupt)
	}
	r.record = Record{
		Time:    time.Unix(0, nanos),
		Request: b[recordFixedSize : recordFixedSize+reqLen],
		Reply:   b[recordFixedSize+reqLen : recordFixedSize+reqLen+repLen],
	}
	return &r.record, nil
}

func (r *Reader) readChunk() error {
	var header [chunkHeaderSize]byte
	if _, err := io.ReadFull(r.input, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: truncated chunk header", ErrCorrupt)
		}
		return err
	}
	rawSize := int(binary.LittleEndian.Uint32(header[0:4]))
	compressedSize := int(binary.LittleEndian.Uint32(header[4:8]))
	count := int(binary.LittleEndian.Uint32(header[8:12]))
	if rawSize > maxChunkSize || compressedSize > maxChunkSize || count <= 0 {
		return fmt.Errorf("%w: implausible chunk header", ErrCorrupt)
	}
	if cap(r.scratch) < compressedSize {
		r.scratch = make([]byte, compressedSize)
	}
	compressed := r.scratch[:compressedSize]
	if _, err := io.ReadFull(r.input, compressed); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: truncated chunk", ErrCorrupt)
		}
		return err
	}
	chunk, err := decompress(r.chunk[:cap(r.chunk)], compressed, r.compression)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCorrupt, err)
	}
	if len(chunk) != rawSize {
		return fmt.Errorf("%w: chunk size mismatch", ErrCorrupt)
	}
	r.chunk = chunk
	r.offset = 0
	r.remaining = count
	return nil
}
