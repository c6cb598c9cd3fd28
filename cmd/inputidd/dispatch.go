package main

import (
	"sync"

	"github.com/nerrad567/inputid/internal/registry"
)

// dispatcher fans one registry event out to every attached sink. Sinks
// are attached during startup, before the socket service accepts its
// first connection, but the mutex keeps attachment safe regardless.
type dispatcher struct {
	mu    sync.RWMutex
	sinks []func(registry.Event)
}

func newDispatcher() *dispatcher {
	return &dispatcher{}
}

func (d *dispatcher) attach(sink func(registry.Event)) {
	d.mu.Lock()
	d.sinks = append(d.sinks, sink)
	d.mu.Unlock()
}

// dispatch invokes every sink in attachment order. It runs on the
// registry's calling goroutine, so sinks must not block.
func (d *dispatcher) dispatch(ev registry.Event) {
	d.mu.RLock()
	sinks := d.sinks
	d.mu.RUnlock()

	for _, sink := range sinks {
		sink(ev)
	}
}
