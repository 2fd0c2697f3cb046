// Package media holds generated audio and video behind locally addressable
// handles until their owner releases them.
package media

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const Prefix = "/media/"

var (
	ErrNotFound  = errors.New("media: handle not found")
	ErrStoreFull = errors.New("media: store is full")
	ErrClosed    = errors.New("media: store is closed")
)

// Handle is the string a client dereferences to fetch a media item.
type Handle string

// ID returns the handle without its path prefix.
func (h Handle) ID() string { return strings.TrimPrefix(string(h), Prefix) }

func HandleFromID(id string) Handle { return Handle(Prefix + id) }

type Item struct {
	Data      []byte
	MediaType string
	Created   time.Time
}

type Options struct {
	// MaxBytes caps the total payload held. Zero means unlimited.
	MaxBytes int64
	// OnChange is called with the item count and total bytes after every
	// change.
	OnChange func(items int, bytes int64)
}

type Store struct {
	mu     sync.RWMutex
	items  map[Handle]*Item
	size   int64
	closed bool
	opts   Options
}

func NewStore(opts Options) *Store {
	return &Store{items: make(map[Handle]*Item), opts: opts}
}

// Put stores data and returns a new handle for it. The caller owns the handle
// and must Release it when it is no longer displayed.
func (s *Store) Put(data []byte, mediaType string) (Handle, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("media: empty payload")
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	if s.opts.MaxBytes > 0 && s.size+int64(len(data)) > s.opts.MaxBytes {
		s.mu.Unlock()
		return "", ErrStoreFull
	}
	h := HandleFromID(uuid.NewString())
	s.items[h] = &Item{Data: data, MediaType: mediaType, Created: time.Now()}
	s.size += int64(len(data))
	n, size := len(s.items), s.size
	s.mu.Unlock()

	s.notify(n, size)
	return h, nil
}

func (s *Store) Get(h Handle) (*Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[h]
	return it, ok
}

// Release drops the item behind h. Releasing an unknown or already released
// handle returns ErrNotFound.
func (s *Store) Release(h Handle) error {
	s.mu.Lock()
	it, ok := s.items[h]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.items, h)
	s.size -= int64(len(it.Data))
	n, size := len(s.items), s.size
	s.mu.Unlock()

	s.notify(n, size)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) Bytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Close releases every item and rejects further Puts.
func (s *Store) Close() error {
	s.mu.Lock()
	s.items = make(map[Handle]*Item)
	s.size = 0
	s.closed = true
	s.mu.Unlock()

	s.notify(0, 0)
	return nil
}

func (s *Store) notify(n int, size int64) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(n, size)
	}
}

// Slot is a single-owner holder for the handle currently on display.
// Replacing the handle releases the previous one.
type Slot struct {
	mu    sync.Mutex
	store *Store
	cur   Handle
}

func NewSlot(s *Store) *Slot { return &Slot{store: s} }

func (sl *Slot) Current() Handle {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.cur
}

func (sl *Slot) Replace(h Handle) {
	sl.mu.Lock()
	prev := sl.cur
	sl.cur = h
	sl.mu.Unlock()
	if prev != "" && prev != h {
		_ = sl.store.Release(prev)
	}
}

func (sl *Slot) Release() {
	sl.Replace("")
}

// Publish stores data and returns the handle as a string.
func (s *Store) Publish(data []byte, mediaType string) (string, error) {
	h, err := s.Put(data, mediaType)
	return string(h), err
}
