// SPDX-License-Identifier: LGPL-3.0-or-later

// Package scrub provides scrub-on-drop buffers for secret key material:
// shared secrets, half-keys, DEKs, and HKDF intermediates. Every such
// buffer overwrites its memory before release, on every exit path,
// including error paths.
package scrub

// Bytes is an owned secret buffer. Callers must call Wipe when done,
// typically via defer immediately after acquiring the buffer so that
// every return path — success or error — scrubs it.
type Bytes struct {
	b []byte
}

// New wraps buf as a scrub-on-drop buffer. The caller gives up direct
// ownership of buf; only the returned Bytes should be used afterward.
func New(buf []byte) *Bytes {
	return &Bytes{b: buf}
}

// Alloc allocates a fresh zeroed secret buffer of size n.
func Alloc(n int) *Bytes {
	return &Bytes{b: make([]byte, n)}
}

// Bytes returns the underlying slice. The slice is invalidated by Wipe.
func (s *Bytes) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

// Len returns the buffer length.
func (s *Bytes) Len() int {
	if s == nil {
		return 0
	}
	return len(s.b)
}

// Wipe overwrites the buffer with zeroes. Safe to call multiple times and
// on a nil receiver.
func (s *Bytes) Wipe() {
	if s == nil {
		return
	}
	for i := range s.b {
		s.b[i] = 0
	}
	s.b = nil
}

// Concat returns a new scrub buffer holding the concatenation of bufs.
// The caller remains responsible for wiping bufs separately.
func Concat(bufs ...[]byte) *Bytes {
	n := 0
	for _, b := range bufs {
		n += len(b)
	}
	out := make([]byte, 0, n)
	for _, b := range bufs {
		out = append(out, b...)
	}
	return &Bytes{b: out}
}
