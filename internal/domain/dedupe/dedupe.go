// Package dedupe remembers fingerprints of processed inputs so the batch runner
// handles each distinct input file once.
package dedupe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
)

// Deduper records seen fingerprints to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an id so a failed job can be submitted again.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type slot struct {
	id  string
	seq uint64
}

// window keeps the most recent maxSize ids and evicts the oldest first.
// With maxSize <= 0 nothing is ever evicted.
type window struct {
	mu      sync.Mutex
	seen    map[string]uint64 // id -> seq of its live slot
	ring    []slot
	next    int
	seq     uint64
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &window{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]uint64)
	if d.maxSize > 0 {
		d.ring = make([]slot, 0, d.maxSize)
	}
	return d
}

func (d *window) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seq++
	d.seen[id] = d.seq
	if d.maxSize <= 0 {
		return false
	}
	s := slot{id: id, seq: d.seq}
	if len(d.ring) < d.maxSize {
		d.ring = append(d.ring, s)
		return false
	}
	old := d.ring[d.next]
	if seq, ok := d.seen[old.id]; ok && seq == old.seq {
		delete(d.seen, old.id)
	}
	d.ring[d.next] = s
	d.next = (d.next + 1) % d.maxSize
	return false
}

// Unrecord leaves the ring slot in place; eviction skips slots whose seq no longer matches.
func (d *window) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, id)
}

func (d *window) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}

// Fingerprint returns the hex sha256 of everything read from r.
func Fingerprint(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", errors.Wrap(err, "hash input")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FingerprintFile hashes the content of a file.
func FingerprintFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // path is operator supplied
	if err != nil {
		return "", errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()
	return Fingerprint(f)
}
