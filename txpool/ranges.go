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
	"container/heap"
	"time"

	"github.com/holiman/uint256"

	"github.com/coldbit-labs/evmpool/common"
	"github.com/coldbit-labs/evmpool/core/types"
)

// TransactionInfo is the mempool's bookkeeping record for one admitted
// transaction: the payload plus everything the ranges, sender index, and
// eviction/aging logic need that isn't already on the transaction itself.
type TransactionInfo struct {
	Tx      types.Transaction
	Hash    common.Hash
	Sender  common.Address
	Local   bool
	AddedAt time.Time
	seq     uint64 // insertion sequence, breaks ties in favor of arrival order

	// AddedToBlock is set by RemoveByHash when the removal reason is
	// inclusion in a block rather than eviction or replacement, so
	// on_dropped notifications are correctly suppressed for it.
	AddedToBlock bool

	inStatic bool
	bestIdx  int
	worstIdx int
}

// signedTip is a priority-fee-per-gas value that may fall below zero: a
// transaction's fee cap (or, for legacy/access-list, its gas price) can sit
// under the current base fee. uint256.Int has no negative representation,
// so sign and magnitude are tracked separately rather than clamping to
// zero, which would make every underwater transaction compare equal.
type signedTip struct {
	neg bool
	abs *uint256.Int
}

func positiveTip(v *uint256.Int) signedTip { return signedTip{abs: v} }

func negativeTip(v *uint256.Int) signedTip {
	if v.IsZero() {
		return signedTip{abs: v}
	}
	return signedTip{neg: true, abs: v}
}

func (t signedTip) gt(o signedTip) bool {
	if t.neg != o.neg {
		return o.neg
	}
	if t.neg {
		return t.abs.Lt(o.abs)
	}
	return t.abs.Gt(o.abs)
}

func (t signedTip) eq(o signedTip) bool {
	return t.neg == o.neg && t.abs.Eq(o.abs)
}

// effectiveTip returns this transaction's per-unit-gas priority fee under
// baseFee: min(tip, feeCap-baseFee) for a fee-market transaction, or
// gasPrice-baseFee for every other variant, matching the legacy/access-list
// treatment of GasPrice as both tip and cap. Either form may go negative
// when the cap doesn't cover baseFee.
func effectiveTip(tx types.Transaction, baseFee *uint256.Int) signedTip {
	if dyn, ok := tx.(*types.DynamicFeeTx); ok {
		if baseFee != nil && dyn.FeeCap.Lt(baseFee) {
			return negativeTip(new(uint256.Int).Sub(baseFee, dyn.FeeCap))
		}
		tip, err := dyn.EffectiveGasTip(baseFee)
		if err != nil {
			return negativeTip(new(uint256.Int).Sub(baseFee, dyn.FeeCap))
		}
		return positiveTip(tip)
	}
	price := tx.GetPrice()
	if baseFee == nil || baseFee.IsZero() {
		return positiveTip(price.Clone())
	}
	if price.Lt(baseFee) {
		return negativeTip(new(uint256.Int).Sub(baseFee, price))
	}
	return positiveTip(new(uint256.Int).Sub(price, baseFee))
}

// isStaticEligible reports whether tx belongs in the static range at
// baseFee. Only a fee-market transaction can qualify, and only when its
// fee cap leaves enough headroom over baseFee to still pay its full
// priority fee: max_fee_per_gas - baseFee >= max_priority_fee_per_gas.
// Legacy and access-list transactions are always dynamic, regardless of
// how their gas price compares to baseFee.
func isStaticEligible(tx types.Transaction, baseFee *uint256.Int) bool {
	dyn, ok := tx.(*types.DynamicFeeTx)
	if !ok {
		return false
	}
	if baseFee == nil || baseFee.IsZero() {
		return true
	}
	if dyn.FeeCap.Lt(baseFee) {
		return false
	}
	headroom := new(uint256.Int).Sub(dyn.FeeCap, baseFee)
	return headroom.Cmp(dyn.TipCap) >= 0
}

// higherPriority orders a before b: locally submitted first, then by
// descending effective tip under baseFee, then by ascending arrival
// sequence, matching Besu's comparator
// (receivedFromLocalSource, then priority fee, then sequence).
func higherPriority(a, b *TransactionInfo, baseFee *uint256.Int) bool {
	if a.Local != b.Local {
		return a.Local
	}
	ta, tb := effectiveTip(a.Tx, baseFee), effectiveTip(b.Tx, baseFee)
	if !ta.eq(tb) {
		return ta.gt(tb)
	}
	return a.seq < b.seq
}

// bestQueue is a max-heap over the range's priority ordering: Pop returns
// the transaction Select should include next.
type bestQueue struct {
	items   []*TransactionInfo
	baseFee *uint256.Int
}

func (q *bestQueue) Len() int { return len(q.items) }
func (q *bestQueue) Less(i, j int) bool {
	return higherPriority(q.items[i], q.items[j], q.baseFee)
}
func (q *bestQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].bestIdx, q.items[j].bestIdx = i, j
}
func (q *bestQueue) Push(x interface{}) {
	info := x.(*TransactionInfo)
	info.bestIdx = len(q.items)
	q.items = append(q.items, info)
}
func (q *bestQueue) Pop() interface{} {
	n := len(q.items)
	item := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	item.bestIdx = -1
	return item
}

// worstQueue is a min-heap over the same ordering: Pop returns the
// transaction eviction should drop first when the pool is over capacity.
type worstQueue struct {
	items   []*TransactionInfo
	baseFee *uint256.Int
}

func (q *worstQueue) Len() int { return len(q.items) }
func (q *worstQueue) Less(i, j int) bool {
	return higherPriority(q.items[j], q.items[i], q.baseFee)
}
func (q *worstQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].worstIdx, q.items[j].worstIdx = i, j
}
func (q *worstQueue) Push(x interface{}) {
	info := x.(*TransactionInfo)
	info.worstIdx = len(q.items)
	q.items = append(q.items, info)
}
func (q *worstQueue) Pop() interface{} {
	n := len(q.items)
	item := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	item.worstIdx = -1
	return item
}

// subPool is a heap-indexed collection of transactions ranked by priority,
// used for both the static and dynamic ranges of the ordering model. It
// replaces Erigon's three-way Pending/BaseFee/Queued SubPoolMarker state
// machine with a plain two-range split.
type subPool struct {
	best  *bestQueue
	worst *worstQueue
}

func newSubPool(baseFee *uint256.Int) *subPool {
	return &subPool{
		best:  &bestQueue{baseFee: baseFee},
		worst: &worstQueue{baseFee: baseFee},
	}
}

func (p *subPool) add(info *TransactionInfo) {
	heap.Push(p.best, info)
	heap.Push(p.worst, info)
}

func (p *subPool) remove(info *TransactionInfo) {
	if info.bestIdx >= 0 && info.bestIdx < len(p.best.items) {
		heap.Remove(p.best, info.bestIdx)
	}
	if info.worstIdx >= 0 && info.worstIdx < len(p.worst.items) {
		heap.Remove(p.worst, info.worstIdx)
	}
}

// setBaseFee updates the shared base fee pointer and reheapifies both
// queues, since every priority comparison in this range depends on it.
func (p *subPool) setBaseFee(baseFee *uint256.Int) {
	p.best.baseFee = baseFee
	p.worst.baseFee = baseFee
	heap.Init(p.best)
	heap.Init(p.worst)
}

func (p *subPool) len() int { return len(p.best.items) }

func (p *subPool) popWorst() *TransactionInfo {
	if p.worst.Len() == 0 {
		return nil
	}
	worst := heap.Pop(p.worst).(*TransactionInfo)
	if worst.bestIdx >= 0 && worst.bestIdx < len(p.best.items) {
		heap.Remove(p.best, worst.bestIdx)
	}
	return worst
}

// peekWorst returns the lowest-priority transaction without removing it.
func (p *subPool) peekWorst() *TransactionInfo {
	if p.worst.Len() == 0 {
		return nil
	}
	return p.worst.items[0]
}

// snapshotHeap orders a private copy of a range's TransactionInfo
// pointers, sharing the pointers themselves but never touching their
// bestIdx/worstIdx bookkeeping. bestQueue and worstQueue write those
// fields as a side effect of Swap, so reusing either type directly against
// a copied slice would corrupt the live heap's index for the very pointers
// the copy shares with it; snapshotHeap exists so a walk can pop entries in
// priority order while remove/add still work correctly against the real
// heaps underneath it.
type snapshotHeap struct {
	items   []*TransactionInfo
	baseFee *uint256.Int
}

func (q *snapshotHeap) Len() int { return len(q.items) }
func (q *snapshotHeap) Less(i, j int) bool {
	return higherPriority(q.items[i], q.items[j], q.baseFee)
}
func (q *snapshotHeap) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }
func (q *snapshotHeap) Push(x interface{}) {
	q.items = append(q.items, x.(*TransactionInfo))
}
func (q *snapshotHeap) Pop() interface{} {
	n := len(q.items)
	item := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	return item
}

func newSnapshotHeap(items []*TransactionInfo, baseFee *uint256.Int) *snapshotHeap {
	cpy := make([]*TransactionInfo, len(items))
	copy(cpy, items)
	h := &snapshotHeap{items: cpy, baseFee: baseFee}
	heap.Init(h)
	return h
}

// bestSnapshot returns a snapshotHeap seeded from this range's current
// best ordering, safe to pop from while the caller mutates the live pool
// (e.g. Select removing a transaction its selector dropped) mid-walk.
func (p *subPool) bestSnapshot() *snapshotHeap {
	return newSnapshotHeap(p.best.items, p.best.baseFee)
}

// ascendBest calls f for every transaction in descending priority order,
// stopping early if f returns false.
func (p *subPool) ascendBest(f func(info *TransactionInfo) bool) {
	tmp := p.bestSnapshot()
	for tmp.Len() > 0 {
		next := heap.Pop(tmp).(*TransactionInfo)
		if !f(next) {
			return
		}
	}
}

// mergeBest calls f for every transaction across both a and b in
// descending priority order, merging their independent best-priority
// orderings by repeatedly popping whichever head is higher priority. This
// is what lets a dynamic-range Legacy/AccessList transaction with a large
// effective tip outrank a static-range fee-market transaction, and vice
// versa, rather than draining one range before ever looking at the other.
func mergeBest(a, b *subPool, baseFee *uint256.Int, f func(info *TransactionInfo) bool) {
	ha, hb := a.bestSnapshot(), b.bestSnapshot()
	for ha.Len() > 0 || hb.Len() > 0 {
		var next *TransactionInfo
		switch {
		case ha.Len() == 0:
			next = heap.Pop(hb).(*TransactionInfo)
		case hb.Len() == 0:
			next = heap.Pop(ha).(*TransactionInfo)
		case higherPriority(ha.items[0], hb.items[0], baseFee):
			next = heap.Pop(ha).(*TransactionInfo)
		default:
			next = heap.Pop(hb).(*TransactionInfo)
		}
		if !f(next) {
			return
		}
	}
}
