package historical

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"unsafe"

	"golang.org/x/exp/mmap"
)

var ErrEof = errors.New("EOF")

// Source is a random-access view over a memory-mapped file holding a packed
// array of fixed-size binary records. T must be a flat struct without
// pointers; its in-memory layout is the on-disk layout.
type Source[T any] struct {
	path       string
	recordSize int64
	reader     *mmap.ReaderAt
	bufferPool *sync.Pool
}

func NewSource[T any](path string) *Source[T] {
	recordSize := int64(unsafe.Sizeof(*new(T)))
	return &Source[T]{
		path:       path,
		recordSize: recordSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buffer := make([]byte, recordSize)
				return &buffer
			},
		},
	}
}

func (s *Source[T]) Open() error {
	reader, err := mmap.Open(s.path)
	if err != nil {
		return fmt.Errorf("unable to open data source %q: %w", s.path, err)
	}
	if size := int64(reader.Len()); size%s.recordSize != 0 {
		_ = reader.Close()
		return fmt.Errorf("data source %q size %d is not a multiple of record size %d", s.path, size, s.recordSize)
	}
	s.reader = reader
	return nil
}

func (s *Source[T]) Close() {
	_ = s.reader.Close()
}

// EntryCount reports how many records the mapped file holds. Valid after a
// successful Open.
func (s *Source[T]) EntryCount() int64 {
	return int64(s.reader.Len()) / s.recordSize
}

// Read returns the record at index. Reading past the end returns ErrEof.
func (s *Source[T]) Read(index int64) (T, error) {
	var record T

	buffer := s.bufferPool.Get().(*[]byte)
	defer s.bufferPool.Put(buffer)

	n, err := s.reader.ReadAt(*buffer, index*s.recordSize)
	if err != nil && err != io.EOF {
		return record, fmt.Errorf("unable to read record %d: %w", index, err)
	}
	if int64(n) < s.recordSize {
		return record, ErrEof
	}

	record = *(*T)(unsafe.Pointer(&(*buffer)[0])) // #nosec G103
	return record, nil
}
