package staging

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"animator-service/internal/entity"
)

type Blob struct {
	Data        []byte
	ContentType string
	Filename    string
	expiresAt   time.Time
}

// BlobCache keeps uploaded files in memory until they are staged. References
// to it ("blob:<uuid>") never survive a restart.
type BlobCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	blobs map[string]Blob
	now   func() time.Time
}

func NewBlobCache(ttl time.Duration) *BlobCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &BlobCache{ttl: ttl, blobs: map[string]Blob{}, now: time.Now}
}

// Put stores the bytes and returns an ephemeral reference to them.
func (c *BlobCache) Put(data []byte, contentType, filename string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictLocked()
	id := uuid.NewString()
	c.blobs[id] = Blob{
		Data:        data,
		ContentType: contentType,
		Filename:    filename,
		expiresAt:   c.now().Add(c.ttl),
	}
	return entity.EphemeralPrefix + id
}

func (c *BlobCache) Get(ref string) (Blob, bool) {
	id := strings.TrimPrefix(strings.TrimSpace(ref), entity.EphemeralPrefix)

	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.blobs[id]
	if !ok || c.now().After(b.expiresAt) {
		return Blob{}, false
	}
	return b, true
}

func (c *BlobCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked()
	return len(c.blobs)
}

// Purge drops expired blobs and returns how many were removed.
func (c *BlobCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictLocked()
}

func (c *BlobCache) evictLocked() int {
	now := c.now()
	n := 0
	for id, b := range c.blobs {
		if now.After(b.expiresAt) {
			delete(c.blobs, id)
			n++
		}
	}
	return n
}
