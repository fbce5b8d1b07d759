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

package main

import (
	"github.com/holiman/uint256"

	"github.com/coldbit-labs/evmpool/common"
	"github.com/coldbit-labs/evmpool/core/types"
)

// memChainHead is a fixed in-memory stand-in for the ChainHead a real node
// would derive from its state trie; this command has no execution layer of
// its own, so nonces/balances are supplied once at startup and never move.
type memChainHead struct {
	header   *types.Header
	nonces   map[common.Address]uint64
	balances map[common.Address]*uint256.Int
}

func newMemChainHead(baseFee *uint256.Int) *memChainHead {
	return &memChainHead{
		header:   &types.Header{Number: 1, BaseFee: baseFee},
		nonces:   make(map[common.Address]uint64),
		balances: make(map[common.Address]*uint256.Int),
	}
}

func (c *memChainHead) CurrentHeader() *types.Header { return c.header }

func (c *memChainHead) Nonce(addr common.Address) uint64 { return c.nonces[addr] }

func (c *memChainHead) Balance(addr common.Address) *uint256.Int {
	if b, ok := c.balances[addr]; ok {
		return b
	}
	return uint256.NewInt(0)
}
