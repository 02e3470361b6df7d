// Package secret holds sensitive bytes outside the Go heap where the
// platform allows it.
//
// On Linux a Buffer is backed by an anonymous mmap region that the garbage
// collector never copies. The region is mlocked against swap and marked
// MADV_DONTDUMP when the process limits allow it; when they do not, the
// buffer still works and Locked reports false. Other platforms fall back to
// heap memory. In every case Close zeroes the contents.
package secret

import (
	"errors"
	"sync"
)

// ErrEmpty is returned when a buffer is requested for no data.
var ErrEmpty = errors.New("secret: cannot create buffer from empty source")

// Buffer holds one secret value. A Buffer must not be copied after creation.
// After Close, Bytes and String panic.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	mapped bool
	locked bool
	closed bool
}

// NewFromBytes copies source into protected memory and zeroes source in
// place, so the caller's slice no longer holds the secret.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, ErrEmpty
	}

	data, mapped, locked := allocate(len(source))
	copy(data, source)
	wipe(source)

	return &Buffer{data: data, mapped: mapped, locked: locked}, nil
}

// NewFromString copies s into protected memory. The string itself stays on
// the heap; callers should drop their reference promptly.
func NewFromString(s string) (*Buffer, error) {
	return NewFromBytes([]byte(s))
}

// Bytes returns the secret. The slice aliases the protected region and must
// not be retained past Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.data
}

// String returns a heap copy of the secret for APIs that need a string.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}
	return string(b.data)
}

// Len returns the size of the secret in bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Locked reports whether the memory is pinned against swap.
func (b *Buffer) Locked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locked
}

// Close zeroes the contents and releases the memory. Idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	wipe(b.data)
	err := release(b.data, b.mapped, b.locked)
	b.data = nil
	return err
}

func wipe(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
