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
	"github.com/google/btree"

	"github.com/coldbit-labs/evmpool/common"
)

// nonceDegree is the branching factor for each sender's nonce-ordered
// btree. Senders rarely carry more than a handful of pending transactions,
// so a small degree keeps node allocations cheap without materially
// affecting lookup depth.
const nonceDegree = 16

// nonceItem is one entry of a PerSenderState's btree, ordered by nonce.
type nonceItem struct {
	nonce uint64
	info  *TransactionInfo
}

func (a *nonceItem) Less(than btree.Item) bool {
	return a.nonce < than.(*nonceItem).nonce
}

// PerSenderState tracks every pending transaction for one account, ordered
// by nonce, plus the account's on-chain nonce baseline as of the last time
// the mempool observed it (used to detect nonce gaps: a sender's lowest
// pending nonce must equal chainNonce for it to be nonce-gap free).
type PerSenderState struct {
	addr       common.Address
	byNonce    *btree.BTree
	chainNonce uint64
}

func newPerSenderState(addr common.Address, chainNonce uint64) *PerSenderState {
	return &PerSenderState{
		addr:       addr,
		byNonce:    btree.New(nonceDegree),
		chainNonce: chainNonce,
	}
}

func (s *PerSenderState) get(nonce uint64) *TransactionInfo {
	item := s.byNonce.Get(&nonceItem{nonce: nonce})
	if item == nil {
		return nil
	}
	return item.(*nonceItem).info
}

func (s *PerSenderState) put(info *TransactionInfo) *TransactionInfo {
	old := s.byNonce.ReplaceOrInsert(&nonceItem{nonce: info.Tx.GetNonce(), info: info})
	if old == nil {
		return nil
	}
	return old.(*nonceItem).info
}

func (s *PerSenderState) delete(nonce uint64) *TransactionInfo {
	old := s.byNonce.Delete(&nonceItem{nonce: nonce})
	if old == nil {
		return nil
	}
	return old.(*nonceItem).info
}

func (s *PerSenderState) len() int { return s.byNonce.Len() }

// lowestNonce returns the smallest pending nonce for this sender, and
// whether it has any pending transaction at all.
func (s *PerSenderState) lowestNonce() (uint64, bool) {
	min := s.byNonce.Min()
	if min == nil {
		return 0, false
	}
	return min.(*nonceItem).nonce, true
}

// hasNonceGap reports whether this sender's lowest pending transaction sits
// above the account's chain nonce, meaning at least one earlier nonce is
// missing and Select withholds every transaction here until it's filled.
func (s *PerSenderState) hasNonceGap() bool {
	lowest, ok := s.lowestNonce()
	if !ok {
		return false
	}
	return lowest != s.chainNonce
}

// ascend calls f for every transaction in nonce order, stopping early if f
// returns false.
func (s *PerSenderState) ascend(f func(info *TransactionInfo) bool) {
	s.byNonce.Ascend(func(item btree.Item) bool {
		return f(item.(*nonceItem).info)
	})
}

// nextNonce returns the next contiguous nonce this sender is eligible to
// submit at: the account's chain nonce plus however many contiguous
// pending transactions immediately follow it with no gap.
func (s *PerSenderState) nextNonce() uint64 {
	expect := s.chainNonce
	s.byNonce.Ascend(func(item btree.Item) bool {
		it := item.(*nonceItem)
		if it.nonce != expect {
			return false
		}
		expect++
		return true
	})
	return expect
}
