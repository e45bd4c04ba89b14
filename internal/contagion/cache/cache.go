package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/awmpietro/interbank-contagion/internal/contagion"
)

// InMemory keeps parsed networks keyed by the hash of their source text.
// Cached networks are shared; callers must not mutate them.
type InMemory struct {
	mu    sync.RWMutex
	max   int
	items map[string]*contagion.Network
	group singleflight.Group
}

func NewInMemory(max int) *InMemory {
	if max < 0 {
		max = 0
	}
	return &InMemory{
		max:   max,
		items: make(map[string]*contagion.Network, max),
	}
}

func (c *InMemory) GetOrCompute(source string, fn func() (*contagion.Network, error)) (*contagion.Network, error) {
	key := hash(source)

	c.mu.RLock()
	if v, ok := c.items[key]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		if v, ok := c.items[key]; ok {
			c.mu.RUnlock()
			return v, nil
		}
		c.mu.RUnlock()

		n, err := safeCompute(fn)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if len(c.items) < c.max {
			c.items[key] = n
		}
		c.mu.Unlock()
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*contagion.Network), nil
}

func (c *InMemory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func safeCompute(fn func() (*contagion.Network, error)) (n *contagion.Network, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("network build panicked: %v", r)
		}
	}()
	return fn()
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
