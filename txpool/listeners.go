// Copyright 2021 Erigon contributors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package txpool

import (
	"sync"

	"github.com/coldbit-labs/evmpool/core/types"
)

// AddedFunc is called once per transaction admitted by AddLocal/AddRemote.
type AddedFunc func(tx types.Transaction, local bool)

// DroppedFunc is called once per transaction removed for a reason other
// than block inclusion (eviction, replacement, or explicit removal).
type DroppedFunc func(tx types.Transaction, reason error)

// listeners tracks Added/Dropped subscribers. Every mutating pool
// operation collects the notifications it needs to fire while holding the
// pool's lock, then calls notifyAdded/notifyDropped only after releasing
// it — a listener that calls back into the pool (e.g. to inspect Select
// output) would otherwise deadlock against the very lock it's being
// notified under.
type listeners struct {
	mu      sync.Mutex
	added   map[int]AddedFunc
	dropped map[int]DroppedFunc
	nextID  int
}

func newListeners() *listeners {
	return &listeners{
		added:   make(map[int]AddedFunc),
		dropped: make(map[int]DroppedFunc),
	}
}

func (l *listeners) subscribeAdded(f AddedFunc) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.added[id] = f
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.added, id)
	}
}

func (l *listeners) subscribeDropped(f DroppedFunc) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.dropped[id] = f
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.dropped, id)
	}
}

func (l *listeners) notifyAdded(tx types.Transaction, local bool) {
	l.mu.Lock()
	fns := make([]AddedFunc, 0, len(l.added))
	for _, f := range l.added {
		fns = append(fns, f)
	}
	l.mu.Unlock()
	for _, f := range fns {
		f(tx, local)
	}
}

func (l *listeners) notifyDropped(tx types.Transaction, reason error) {
	l.mu.Lock()
	fns := make([]DroppedFunc, 0, len(l.dropped))
	for _, f := range l.dropped {
		fns = append(fns, f)
	}
	l.mu.Unlock()
	for _, f := range fns {
		f(tx, reason)
	}
}
