package ring

import (
	"fmt"
	"sync/atomic"
)

// buffer is the storage shared by the two halves. Cursors grow monotonically
// and are reduced modulo the power-of-two capacity only when indexing, so the
// full capacity is usable and free/length arithmetic never wraps.
type buffer struct {
	data  []byte
	mask  uint64
	read  atomic.Uint64
	write atomic.Uint64
}

// New allocates a ring of at least capacity bytes, rounded up to the next
// power of two, and returns its two halves. Exactly one goroutine may use
// the Writer and exactly one the Reader; under that discipline every
// operation is wait-free.
func New(capacity int) (*Writer, *Reader, error) {
	if capacity <= 0 {
		return nil, nil, fmt.Errorf("ring capacity must be positive, got %d", capacity)
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	b := &buffer{
		data: make([]byte, size),
		mask: uint64(size - 1),
	}
	return &Writer{b: b}, &Reader{b: b}, nil
}

// Writer is the producer half of a ring.
type Writer struct {
	b *buffer
}

// Capacity returns the fixed byte capacity of the ring.
func (w *Writer) Capacity() int { return len(w.b.data) }

// Free returns the number of bytes that can currently be written.
func (w *Writer) Free() int {
	return len(w.b.data) - int(w.b.write.Load()-w.b.read.Load())
}

// Write copies up to Free() bytes from p into the ring, advances the write
// cursor and returns the number of bytes written. Callers that must not
// split a payload check Free() first.
func (w *Writer) Write(p []byte) int {
	write := w.b.write.Load()
	free := len(w.b.data) - int(write-w.b.read.Load())
	n := len(p)
	if n > free {
		n = free
	}
	if n == 0 {
		return 0
	}
	start := int(write & w.b.mask)
	copied := copy(w.b.data[start:], p[:n])
	if copied < n {
		copy(w.b.data, p[copied:n])
	}
	w.b.write.Store(write + uint64(n))
	return n
}

// Reader is the consumer half of a ring.
type Reader struct {
	b *buffer
}

// Capacity returns the fixed byte capacity of the ring.
func (r *Reader) Capacity() int { return len(r.b.data) }

// Length returns the number of bytes currently available to read.
func (r *Reader) Length() int {
	return int(r.b.write.Load() - r.b.read.Load())
}

// Read copies up to len(p) available bytes into p, advances the read cursor
// and returns the number of bytes read. Reading exactly n bytes means
// passing a length-n slice after checking Length().
func (r *Reader) Read(p []byte) int {
	read := r.b.read.Load()
	avail := int(r.b.write.Load() - read)
	n := len(p)
	if n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}
	start := int(read & r.b.mask)
	copied := copy(p[:n], r.b.data[start:])
	if copied < n {
		copy(p[copied:n], r.b.data)
	}
	r.b.read.Store(read + uint64(n))
	return n
}
