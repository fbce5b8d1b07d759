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
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/coldbit-labs/evmpool/common"
	"github.com/coldbit-labs/evmpool/log"
)

// defaultAnnounceQueueSize bounds newly_announced the way Besu bounds its
// EvictingQueue<Hash> newPooledHashes: once full, the oldest unbroadcast
// hash is silently dropped rather than blocking admission.
const defaultAnnounceQueueSize = 4096

// newlyAnnounced is the bounded FIFO of hashes admitted since the last
// broadcast drain. It is guarded by its own mutex rather than the pool's
// main lock, matching Besu's `synchronized (newPooledHashes)` block: the
// broadcast loop's concerns (what to gossip) are independent of the pool's
// structural state (what's still valid), so serializing them behind one
// lock would make broadcasting compete with admission for no reason.
type newlyAnnounced struct {
	mu      sync.Mutex
	seen    *simplelru.LRU[common.Hash, struct{}]
	pending []common.Hash
	limit   int
}

func newNewlyAnnounced(size int) *newlyAnnounced {
	seen, _ := simplelru.NewLRU[common.Hash, struct{}](size, nil)
	return &newlyAnnounced{seen: seen, limit: size}
}

func (n *newlyAnnounced) add(hash common.Hash) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.seen.Contains(hash) {
		return
	}
	n.seen.Add(hash, struct{}{})
	n.pending = append(n.pending, hash)
	if len(n.pending) > n.limit {
		n.pending = n.pending[1:]
	}
}

// drain returns every hash queued since the last call, in arrival order,
// and clears the queue. It does not clear the dedup cache: a
// re-announcement of an already-broadcast hash within the cache's window
// is still suppressed.
func (n *newlyAnnounced) drain() []common.Hash {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.pending) == 0 {
		return nil
	}
	batch := n.pending
	n.pending = nil
	return batch
}

// broadcastLoop periodically drains newlyAnnounced and hands the batch to
// send, mirroring Erigon's txpool.BroadcastLoop ticker-based select
// pattern. In a full node send would fan the batch out to peers; here it is
// the pool's only hook into an outer transport, kept as an injectable
// collaborator so this package stays free of any p2p dependency.
func broadcastLoop(ctx context.Context, announced *newlyAnnounced, interval time.Duration, send func([]common.Hash), logger log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			batch := announced.drain()
			if len(batch) == 0 {
				continue
			}
			logger.Debug("txpool: announcing new transactions", "count", len(batch))
			send(batch)
		}
	}
}
