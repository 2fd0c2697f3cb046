package media

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetRelease(t *testing.T) {
	var lastCount int
	var lastBytes int64
	s := NewStore(Options{OnChange: func(n int, b int64) { lastCount, lastBytes = n, b }})

	h, err := s.Put([]byte("RIFF"), "audio/wav")
	require.NoError(t, err)
	assert.Contains(t, string(h), Prefix)
	assert.Equal(t, h, HandleFromID(h.ID()))

	it, ok := s.Get(h)
	require.True(t, ok)
	assert.Equal(t, "audio/wav", it.MediaType)
	assert.Equal(t, 1, lastCount)
	assert.Equal(t, int64(4), lastBytes)

	require.NoError(t, s.Release(h))
	assert.ErrorIs(t, s.Release(h), ErrNotFound)
	_, ok = s.Get(h)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, int64(0), lastBytes)
}

func TestStore_MaxBytes(t *testing.T) {
	s := NewStore(Options{MaxBytes: 6})
	_, err := s.Put([]byte("1234"), "video/mp4")
	require.NoError(t, err)
	_, err = s.Put([]byte("567"), "video/mp4")
	assert.ErrorIs(t, err, ErrStoreFull)
	assert.Equal(t, int64(4), s.Bytes())
}

func TestStore_Close(t *testing.T) {
	s := NewStore(Options{})
	_, err := s.Put([]byte("a"), "audio/wav")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, 0, s.Len())
	_, err = s.Put([]byte("b"), "audio/wav")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStore_EmptyPayload(t *testing.T) {
	_, err := NewStore(Options{}).Put(nil, "audio/wav")
	assert.Error(t, err)
}

func TestSlot_ReplaceReleasesPrevious(t *testing.T) {
	s := NewStore(Options{})
	slot := NewSlot(s)

	a, _ := s.Put([]byte("a"), "audio/wav")
	b, _ := s.Put([]byte("b"), "audio/wav")

	slot.Replace(a)
	slot.Replace(b)
	_, ok := s.Get(a)
	assert.False(t, ok)
	assert.Equal(t, b, slot.Current())

	slot.Release()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, Handle(""), slot.Current())
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore(Options{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := s.Put([]byte("xx"), "audio/wav")
			if assert.NoError(t, err) {
				assert.NoError(t, s.Release(h))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, int64(0), s.Bytes())
}
