// Package identity сообщает, какой зритель сейчас вошел в систему.
package identity

import "sync"

// Provider exposes the current viewer and its changes.
type Provider interface {
	// Current returns the viewer id, ok is false when nobody is logged in
	Current() (viewerID string, ok bool)
	// Watch calls fn on every change of the current viewer until cancel is called
	Watch(fn func(viewerID string, ok bool)) (cancel func())
}

type state struct {
	viewerID string
	ok       bool
}

// watchers рассылает изменения состояния подписчикам
type watchers struct {
	fns  map[uint64]func(string, bool)
	next uint64
	mu   sync.Mutex
}

func (w *watchers) add(fn func(string, bool)) func() {
	w.mu.Lock()
	if w.fns == nil {
		w.fns = make(map[uint64]func(string, bool))
	}
	id := w.next
	w.next++
	w.fns[id] = fn
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.fns, id)
			w.mu.Unlock()
		})
	}
}

func (w *watchers) notify(s state) {
	w.mu.Lock()
	fns := make([]func(string, bool), 0, len(w.fns))
	for _, fn := range w.fns {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(s.viewerID, s.ok)
	}
}
