package trace

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/connectivity"
)

// GraphSource supplies net graphs to a Resolver.
type GraphSource interface {
	Graph(net string, s connectivity.Strategy) (*connectivity.Graph, error)
}

// Builder builds a fresh graph on every call.
type Builder struct {
	index  *board.NetIndex
	builds atomic.Int64
}

// NewBuilder creates an uncached graph source over idx.
func NewBuilder(idx *board.NetIndex) *Builder {
	return &Builder{index: idx}
}

// Graph implements GraphSource.
func (b *Builder) Graph(net string, s connectivity.Strategy) (*connectivity.Graph, error) {
	prims, err := b.index.Net(net)
	if err != nil {
		return nil, err
	}
	b.builds.Add(1)
	return connectivity.Build(net, prims, s)
}

// Builds returns the number of graphs built so far.
func (b *Builder) Builds() int64 {
	return b.builds.Load()
}

// GraphCache keeps one graph per (net, strategy) for the lifetime of a
// session. Concurrent requests for a key that is still being built wait for
// that build instead of starting another. Failed builds are not cached.
type GraphCache struct {
	builder *Builder

	mu     sync.RWMutex
	graphs map[string]*connectivity.Graph
	group  singleflight.Group
}

// NewGraphCache creates an empty cache over idx.
func NewGraphCache(idx *board.NetIndex) *GraphCache {
	return &GraphCache{
		builder: NewBuilder(idx),
		graphs:  make(map[string]*connectivity.Graph),
	}
}

func cacheKey(net, strategy string) string {
	return strategy + "\x00" + net
}

// Graph implements GraphSource.
func (c *GraphCache) Graph(net string, s connectivity.Strategy) (*connectivity.Graph, error) {
	key := cacheKey(net, s.Name())

	c.mu.RLock()
	g, ok := c.graphs[key]
	c.mu.RUnlock()
	if ok {
		return g, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		g, ok := c.graphs[key]
		c.mu.RUnlock()
		if ok {
			return g, nil
		}

		g, err := c.builder.Graph(net, s)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.graphs[key] = g
		c.mu.Unlock()
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*connectivity.Graph), nil
}

// Builds returns the number of graphs built so far.
func (c *GraphCache) Builds() int64 {
	return c.builder.Builds()
}

// Len returns the number of cached graphs.
func (c *GraphCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.graphs)
}

// Clear drops every cached graph.
func (c *GraphCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.graphs = make(map[string]*connectivity.Graph)
}
