/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package keyzone

import (
	"container/list"
	"fmt"
	"sync"
)

type zoneEntry[V any] struct {
	key   string
	value V
}

// Zone keeps state for at most maxKeys identities, evicting the least recently used one.
type Zone[V any] struct {
	maxKeys int

	mu      sync.Mutex
	lruList *list.List
	entries map[string]*list.Element

	metricsCollector MetricsCollector
}

// New creates a new Zone. Metrics collector may be nil, then metrics are disabled.
func New[V any](maxKeys int, metricsCollector MetricsCollector) (*Zone[V], error) {
	if maxKeys <= 0 {
		return nil, fmt.Errorf("maxKeys must be greater than 0")
	}
	if metricsCollector == nil {
		metricsCollector = disabledMetrics{}
	}
	return &Zone[V]{
		maxKeys:          maxKeys,
		lruList:          list.New(),
		entries:          make(map[string]*list.Element),
		metricsCollector: metricsCollector,
	}, nil
}

// GetOrAdd returns the state of the identity, creating it with newValue when it is absent.
// The provider is called under the zone lock and must not call back into the zone.
func (z *Zone[V]) GetOrAdd(key string, newValue func() V) (value V, exists bool) {
	z.mu.Lock()
	defer z.mu.Unlock()

	if elem, ok := z.entries[key]; ok {
		z.lruList.MoveToFront(elem)
		return elem.Value.(*zoneEntry[V]).value, true
	}

	value = newValue()
	z.entries[key] = z.lruList.PushFront(&zoneEntry[V]{key: key, value: value})
	if len(z.entries) > z.maxKeys {
		z.evictOldest()
		z.metricsCollector.AddEvictions(1)
	}
	z.metricsCollector.SetAmount(len(z.entries))
	return value, false
}

func (z *Zone[V]) evictOldest() {
	elem := z.lruList.Back()
	if elem == nil {
		return
	}
	z.lruList.Remove(elem)
	delete(z.entries, elem.Value.(*zoneEntry[V]).key)
}
