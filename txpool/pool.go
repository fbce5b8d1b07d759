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

// Package txpool implements the pending-transaction mempool: admission,
// the static/dynamic priority ranges, replacement, capacity eviction,
// aging, and block-building selection.
package txpool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/coldbit-labs/evmpool/common"
	"github.com/coldbit-labs/evmpool/core/types"
	"github.com/coldbit-labs/evmpool/log"
)

// Config bounds the pool's resource usage and its admission rules.
type Config struct {
	// Capacity is the maximum number of transactions held across both
	// ranges combined.
	Capacity int
	// PriceBumpPercent is the minimum percentage increase a replacement
	// transaction must offer over the one it replaces, in gas price, or in
	// both tip cap and fee cap for fee-market transactions (see outbids),
	// matching the classic 10% geth/Erigon default.
	PriceBumpPercent uint64
	// MaxAge is how long a transaction may sit in the pool, in either
	// range, before the aging sweep evicts it; zero disables aging.
	MaxAge time.Duration
	// AnnounceQueueSize bounds newly_announced.
	AnnounceQueueSize int
	// BroadcastInterval is the fixed delay between newly_announced drains.
	BroadcastInterval time.Duration
}

// DefaultConfig returns the settings this module's cmd/txpooldemo starts
// with.
func DefaultConfig() Config {
	return Config{
		Capacity:          10000,
		PriceBumpPercent:  10,
		MaxAge:            3 * time.Hour,
		AnnounceQueueSize: defaultAnnounceQueueSize,
		BroadcastInterval: 100 * time.Millisecond,
	}
}

// SelectionResult is returned by a SelectorFunc for each candidate
// transaction Select visits.
type SelectionResult int

const (
	// Include keeps the transaction in the block being built and moves
	// on to the next candidate.
	Include SelectionResult = iota
	// DropAndContinue removes the transaction from the pool entirely
	// (the caller's block-building rules will never accept it, e.g. its
	// type is disabled at the current fork) and moves on. A transaction
	// that can never be selected no longer lingers to be retried every
	// block.
	DropAndContinue
	// Complete stops selection immediately, leaving every remaining
	// candidate untouched.
	Complete
)

// SelectorFunc is called once per candidate, in descending priority order
// with per-sender nonce ordering preserved.
type SelectorFunc func(tx types.Transaction) SelectionResult

// Mempool holds every pending and queued transaction for one chain. All
// structural state (by_hash, by_sender, the two ranges, base_fee) is
// guarded by a single sync.RWMutex rather than one per collection, since
// almost every operation touches more than one of them together.
type Mempool struct {
	mu     sync.RWMutex
	cfg    Config
	signer types.Signer
	chain  types.ChainHead
	logger log.Logger

	byHash   map[common.Hash]*TransactionInfo
	bySender map[common.Address]*PerSenderState
	static   *subPool
	dynamic  *subPool
	baseFee  *uint256.Int
	seq      uint64

	announced *newlyAnnounced
	listeners *listeners

	cancel context.CancelFunc
}

// New builds an empty pool for the given chain, signed against signer, and
// primed with the chain's current base fee.
func New(cfg Config, signer types.Signer, chain types.ChainHead, logger log.Logger) *Mempool {
	if logger == nil {
		logger = log.NewNop()
	}
	baseFee := uint256.NewInt(0)
	if head := chain.CurrentHeader(); head != nil && head.BaseFee != nil {
		baseFee = head.BaseFee.Clone()
	}
	return &Mempool{
		cfg:       cfg,
		signer:    signer,
		chain:     chain,
		logger:    logger,
		byHash:    make(map[common.Hash]*TransactionInfo),
		bySender:  make(map[common.Address]*PerSenderState),
		static:    newSubPool(baseFee),
		dynamic:   newSubPool(baseFee),
		baseFee:   baseFee,
		announced: newNewlyAnnounced(cfg.AnnounceQueueSize),
		listeners: newListeners(),
	}
}

// Start launches the broadcast and aging background loops. send receives
// batches of newly admitted hashes on cfg.BroadcastInterval; in a full node
// it would fan them out to peers.
func (p *Mempool) Start(ctx context.Context, send func([]common.Hash)) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	go broadcastLoop(ctx, p.announced, p.cfg.BroadcastInterval, send, p.logger)
	if p.cfg.MaxAge > 0 {
		go p.agingLoop(ctx)
	}
}

// Stop tears down the background loops started by Start.
func (p *Mempool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
}

// AddLocal admits a transaction submitted by this node's own user,
// exempting it from capacity eviction for as long as any remote
// transaction remains evictable in its place.
func (p *Mempool) AddLocal(tx types.Transaction) error {
	return p.add(tx, true)
}

// AddRemote admits a transaction received from a peer.
func (p *Mempool) AddRemote(tx types.Transaction) error {
	return p.add(tx, false)
}

func (p *Mempool) add(tx types.Transaction, local bool) error {
	sender, err := tx.Sender(p.signer)
	if err != nil {
		return ErrInvalidSender
	}
	if dyn, ok := tx.(*types.DynamicFeeTx); ok && dyn.FeeCap.Lt(dyn.TipCap) {
		return types.ErrFeeCapLessThanTip
	}
	intrinsic, err := types.IntrinsicGas(tx)
	if err != nil {
		return err
	}
	if tx.GetGas() < intrinsic {
		return ErrIntrinsicGas
	}
	hash := tx.Hash()

	p.mu.Lock()
	if _, known := p.byHash[hash]; known {
		p.mu.Unlock()
		return ErrAlreadyKnown
	}

	ss, ok := p.bySender[sender]
	if !ok {
		ss = newPerSenderState(sender, p.chain.Nonce(sender))
		p.bySender[sender] = ss
	}
	if tx.GetNonce() < ss.chainNonce {
		p.mu.Unlock()
		return ErrNonceTooLow
	}

	var dropped []*TransactionInfo

	if existing := ss.get(tx.GetNonce()); existing != nil {
		if !outbids(tx, existing.Tx, p.cfg.PriceBumpPercent) {
			p.mu.Unlock()
			return ErrReplaceUnderpriced
		}
		p.removeLocked(existing)
		dropped = append(dropped, existing)
	}

	if p.totalLenLocked() >= p.cfg.Capacity {
		worst := p.worstEvictableLocked(local)
		if worst == nil || !outbids(tx, worst.Tx, 0) {
			p.mu.Unlock()
			return ErrTxPoolFull
		}
		p.removeLocked(worst)
		dropped = append(dropped, worst)
	}

	info := &TransactionInfo{
		Tx:      tx,
		Hash:    hash,
		Sender:  sender,
		Local:   local,
		AddedAt: time.Now(),
		seq:     p.seq,
	}
	p.seq++
	ss.put(info)
	p.byHash[hash] = info
	p.placeLocked(info)
	p.announced.add(hash)
	p.checkInvariantsLocked()
	p.mu.Unlock()

	for _, d := range dropped {
		reason := errEvicted
		if d.Tx.GetNonce() == tx.GetNonce() && d.Sender == sender {
			reason = errReplaced
		}
		p.listeners.notifyDropped(d.Tx, reason)
	}
	p.listeners.notifyAdded(tx, local)
	return nil
}

// outbids reports whether candidate satisfies the price-bump rule against
// incumbent: for a fee-market candidate, both its priority fee and its fee
// cap must each clear incumbent's corresponding field by bumpPercent; for
// every other type, its gas price alone must. A non-fee-market incumbent's
// gas price stands in for both of its fields, so a fee-market transaction
// replacing a legacy one still has to bump both against that synthesized
// value. bumpPercent zero is used for capacity-eviction admission, where
// the candidate must strictly exceed rather than merely match.
func outbids(candidate, incumbent types.Transaction, bumpPercent uint64) bool {
	candTip, candCap := feeFields(candidate)
	inTip, inCap := feeFields(incumbent)
	return bumpsBy(candTip, inTip, bumpPercent) && bumpsBy(candCap, inCap, bumpPercent)
}

// feeFields returns a transaction's (priority fee, fee cap) pair for
// replacement comparisons: a fee-market transaction's own TipCap/FeeCap, or
// its gas price standing in for both on every other type.
func feeFields(tx types.Transaction) (tip, feeCap *uint256.Int) {
	if dyn, ok := tx.(*types.DynamicFeeTx); ok {
		return dyn.TipCap, dyn.FeeCap
	}
	price := tx.GetPrice()
	return price, price
}

func bumpsBy(candidate, incumbent *uint256.Int, bumpPercent uint64) bool {
	if bumpPercent == 0 {
		return candidate.Cmp(incumbent) > 0
	}
	threshold := new(uint256.Int).Mul(incumbent, uint256.NewInt(100+bumpPercent))
	threshold.Div(threshold, uint256.NewInt(100))
	return candidate.Cmp(threshold) >= 0
}

// placeLocked assigns info to the static range if it is fee-market and its
// fee cap leaves headroom over the current base fee for its full priority
// fee, or to the dynamic range otherwise. Nonce-gap state has no bearing on
// range membership; it only affects the order Select offers transactions
// to its caller.
func (p *Mempool) placeLocked(info *TransactionInfo) {
	static := isStaticEligible(info.Tx, p.baseFee)
	info.inStatic = static
	if static {
		p.static.add(info)
	} else {
		p.dynamic.add(info)
	}
}

// removeLocked strips info out of every index. Callers hold p.mu and are
// responsible for firing the appropriate listener notification themselves
// once the lock is released.
func (p *Mempool) removeLocked(info *TransactionInfo) {
	delete(p.byHash, info.Hash)
	if ss, ok := p.bySender[info.Sender]; ok {
		ss.delete(info.Tx.GetNonce())
		if ss.len() == 0 {
			delete(p.bySender, info.Sender)
		}
	}
	if info.inStatic {
		p.static.remove(info)
	} else {
		p.dynamic.remove(info)
	}
}

func (p *Mempool) totalLenLocked() int {
	return len(p.byHash)
}

// checkInvariantsLocked panics if the static/dynamic ranges have drifted
// out of sync with the by-hash index — an entry lost, duplicated, or
// present in both ranges at once. There is no way to keep serving Select
// correctly once it happens, so the process aborts rather than returning
// stale or duplicated results.
func (p *Mempool) checkInvariantsLocked() {
	if total := p.static.len() + p.dynamic.len(); total != len(p.byHash) {
		panic(fmt.Errorf("%w: static+dynamic=%d byHash=%d", ErrInvariantViolated, total, len(p.byHash)))
	}
}

// worstEvictableLocked returns the tail of whichever of the static and
// dynamic ranges has the strictly smaller effective priority at the
// current base fee. Local transactions are never returned unless
// preferLocal is true and no remote candidate exists in either range, so
// local submissions are the last thing evicted for capacity.
func (p *Mempool) worstEvictableLocked(preferLocal bool) *TransactionInfo {
	sw := p.static.peekWorst()
	dw := p.dynamic.peekWorst()

	worst := dw
	if sw != nil && (dw == nil || higherPriority(dw, sw, p.baseFee)) {
		worst = sw
	}
	if worst == nil {
		return nil
	}
	if !worst.Local || preferLocal {
		return worst
	}

	other := sw
	if worst == sw {
		other = dw
	}
	if other != nil && (!other.Local || preferLocal) {
		return other
	}
	return nil
}

// RemoveByHash removes a transaction, e.g. because it was included in a
// block (addedToBlock=true, which suppresses the Dropped notification) or
// invalidated some other way.
func (p *Mempool) RemoveByHash(hash common.Hash, addedToBlock bool) error {
	p.mu.Lock()
	info, ok := p.byHash[hash]
	if !ok {
		p.mu.Unlock()
		return ErrNotFound
	}
	info.AddedToBlock = addedToBlock
	p.removeLocked(info)
	p.mu.Unlock()

	if !addedToBlock {
		p.listeners.notifyDropped(info.Tx, errRemovedExplicitly)
	}
	return nil
}

// UpdateBaseFee re-ranks both ranges under the new base fee and moves
// transactions across the static/dynamic boundary as their eligibility
// changes.
func (p *Mempool) UpdateBaseFee(baseFee *uint256.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.baseFee = baseFee
	p.static.setBaseFee(baseFee)
	p.dynamic.setBaseFee(baseFee)
	for _, info := range p.byHash {
		static := isStaticEligible(info.Tx, p.baseFee)
		if static == info.inStatic {
			continue
		}
		if info.inStatic {
			p.static.remove(info)
		} else {
			p.dynamic.remove(info)
		}
		info.inStatic = static
		if static {
			p.static.add(info)
		} else {
			p.dynamic.add(info)
		}
	}
	p.checkInvariantsLocked()
}

// NextNonce returns the next nonce addr may submit at: its on-chain nonce
// plus however many contiguous pending transactions already occupy the
// nonces right after it.
func (p *Mempool) NextNonce(addr common.Address) uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if ss, ok := p.bySender[addr]; ok {
		return ss.nextNonce()
	}
	return p.chain.Nonce(addr)
}

// Select walks the static and dynamic ranges merged into a single
// descending priority order, honoring per-sender nonce order (a sender's
// transaction is only offered to selector once every lower nonce from the
// same sender has already been included or dropped), and reports the
// outcome via selector.
func (p *Mempool) Select(maxCount int, selector SelectorFunc) {
	p.mu.Lock()

	expected := make(map[common.Address]uint64)
	waiting := make(map[common.Address]map[uint64]*TransactionInfo)
	var droppedNow []*TransactionInfo
	count := 0
	stop := false

	var process func(info *TransactionInfo)
	process = func(info *TransactionInfo) {
		if stop {
			return
		}
		exp, ok := expected[info.Sender]
		if !ok {
			exp = p.bySender[info.Sender].chainNonce
		}
		if info.Tx.GetNonce() != exp {
			bucket := waiting[info.Sender]
			if bucket == nil {
				bucket = make(map[uint64]*TransactionInfo)
				waiting[info.Sender] = bucket
			}
			bucket[info.Tx.GetNonce()] = info
			return
		}
		switch selector(info.Tx) {
		case Complete:
			stop = true
			return
		case DropAndContinue:
			p.removeLocked(info)
			droppedNow = append(droppedNow, info)
			expected[info.Sender] = exp + 1
		default:
			expected[info.Sender] = exp + 1
			count++
		}
		for {
			next, ok := waiting[info.Sender][expected[info.Sender]]
			if !ok {
				break
			}
			delete(waiting[info.Sender], expected[info.Sender])
			process(next)
			if stop {
				return
			}
		}
		if maxCount > 0 && count >= maxCount {
			stop = true
		}
	}

	mergeBest(p.static, p.dynamic, p.baseFee, func(info *TransactionInfo) bool {
		process(info)
		return !stop
	})
	p.mu.Unlock()

	for _, d := range droppedNow {
		p.listeners.notifyDropped(d.Tx, errDroppedBySelector)
	}
}

// SubscribeAdded registers f to be called for every future admission,
// returning an unsubscribe function.
func (p *Mempool) SubscribeAdded(f AddedFunc) func() {
	return p.listeners.subscribeAdded(f)
}

// SubscribeDropped registers f to be called whenever a transaction leaves
// the pool for a reason other than block inclusion.
func (p *Mempool) SubscribeDropped(f DroppedFunc) func() {
	return p.listeners.subscribeDropped(f)
}

// agingLoop periodically evicts transactions, in either range, that have
// sat past cfg.MaxAge, mirroring Besu's evictOldTransactions sweep.
func (p *Mempool) agingLoop(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.MaxAge / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.evictAged()
		}
	}
}

func (p *Mempool) evictAged() {
	cutoff := time.Now().Add(-p.cfg.MaxAge)
	p.mu.Lock()
	var aged []*TransactionInfo
	for _, info := range p.byHash {
		if info.AddedAt.Before(cutoff) {
			aged = append(aged, info)
		}
	}
	for _, info := range aged {
		p.removeLocked(info)
	}
	p.mu.Unlock()
	for _, info := range aged {
		p.listeners.notifyDropped(info.Tx, errAgedOut)
	}
}
