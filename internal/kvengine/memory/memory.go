// Package memory is a plain map-backed kvengine.Engine, used only by tests
// that want to avoid file I/O. It is the one place in this module a
// standard-library-only implementation is deliberate: property tests drive
// thousands of generated put sequences, and bbolt's fsync path would make
// those tests slower without adding any coverage of the algorithm under
// test — the algorithm only ever sees the kvengine.Engine interface, never
// bbolt itself.
package memory

import (
	"sync"

	"github.com/embeddedkv/versionedstore/internal/kvengine"
)

// Engine is an in-memory kvengine.Engine. Safe for the store's single-
// threaded access pattern; the mutex exists only so tests may additionally
// inspect engine state from a second goroutine without a race detector
// complaint.
type Engine struct {
	mu      sync.Mutex
	closed  bool
	columns map[string]*column
}

// New returns an empty in-memory engine.
func New() *Engine {
	return &Engine{columns: make(map[string]*column)}
}

func (e *Engine) Column(name string) (kvengine.Column, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, kvengine.ErrClosed
	}
	c, ok := e.columns[name]
	if !ok {
		c = newColumn()
		e.columns[name] = c
	}
	return c, nil
}

func (e *Engine) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return kvengine.ErrClosed
	}
	return nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

type column struct {
	mu   sync.Mutex
	data map[string][]byte
	subs map[uint64]*column
}

func newColumn() *column {
	return &column{data: make(map[string][]byte), subs: make(map[uint64]*column)}
}

func (c *column) Get(key []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[string(key)]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (c *column) Put(key, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (c *column) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, string(key))
	return nil
}

func (c *column) SubColumn(id uint64) (kvengine.Column, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub, ok := c.subs[id]
	if !ok {
		return nil, false, nil
	}
	return sub, true, nil
}

func (c *column) CreateSubColumnIfNotExists(id uint64) (kvengine.Column, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub, ok := c.subs[id]
	if !ok {
		sub = newColumn()
		c.subs[id] = sub
	}
	return sub, nil
}

func (c *column) DeleteSubColumn(id uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, id)
	return nil
}

func (c *column) SubColumnIDsDescendingFrom(minID uint64) ([]uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]uint64, 0, len(c.subs))
	for id := range c.subs {
		if id >= minID {
			ids = append(ids, id)
		}
	}
	// Descending order, matching the bbolt cursor-walk-backward contract.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] < ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids, nil
}
