// Copyright 2014 The go-ethereum Authors
// (original work)
// Copyright 2024 The Erigon Authors
// (modifications)
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

package types

import (
	"github.com/holiman/uint256"

	"github.com/coldbit-labs/evmpool/common"
)

// Header is the subset of the block header the mempool needs: enough to
// drive UpdateBaseFee and NextNonce without pulling in the full block/body
// machinery a complete node builds around it. Everything downstream of the
// EVM (state root, receipts, bloom, difficulty/PoW fields) lives outside
// this module's scope, so it is deliberately absent here.
type Header struct {
	ParentHash common.Hash
	Number     uint64
	GasLimit   uint64
	GasUsed    uint64
	Time       uint64
	BaseFee    *uint256.Int
}

// ChainHead is the minimal view of chain state the mempool consults: the
// current base fee (for re-ranking pending transactions) and, per account,
// the next expected nonce (for gap detection and NextNonce queries).
type ChainHead interface {
	CurrentHeader() *Header
	Nonce(addr common.Address) uint64
	Balance(addr common.Address) *uint256.Int
}
