// Copyright 2019 The go-ethereum Authors
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

package forkid

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/require"
)

var testGenesis = [32]byte{0x01, 0x02, 0x03}

func TestChainMatchesGenesisChecksumAtHeadZero(t *testing.T) {
	ids := Chain(testGenesis, []uint64{10, 20})
	require.Len(t, ids, 3)

	want := crc32.ChecksumIEEE(testGenesis[:])
	var hashBuf [4]byte
	binary.BigEndian.PutUint32(hashBuf[:], want)
	require.Equal(t, hashBuf, ids[0].Hash)
	require.Equal(t, uint64(10), ids[0].Next)
	require.Equal(t, uint64(20), ids[1].Next)
	require.Equal(t, uint64(0), ids[2].Next)
}

func TestNewIDMatchesChainEntry(t *testing.T) {
	forks := []uint64{10, 20}
	ids := Chain(testGenesis, forks)

	require.Equal(t, ids[0], NewID(testGenesis, forks, 0))
	require.Equal(t, ids[0], NewID(testGenesis, forks, 9))
	require.Equal(t, ids[1], NewID(testGenesis, forks, 10))
	require.Equal(t, ids[1], NewID(testGenesis, forks, 19))
	require.Equal(t, ids[2], NewID(testGenesis, forks, 20))
	require.Equal(t, ids[2], NewID(testGenesis, forks, 1000))
}

func TestValidateCompatible(t *testing.T) {
	forks := []uint64{10, 20}
	chain := Chain(testGenesis, forks)

	// Remote reports exactly the same checksum/Next we're at: compatible.
	require.NoError(t, Validate(chain, chain[1], 15))
	// Remote is on our final known fork: compatible.
	require.NoError(t, Validate(chain, chain[2], 25))
	// Remote shares our first checksum but hasn't learned of fork 10 yet
	// (reports Next=0); harmless since our head hasn't reached it either.
	stale := ID{Hash: chain[0].Hash, Next: 0}
	require.NoError(t, Validate(chain, stale, 5))
	// Remote is still on our first checksum and announces fork 10 next,
	// which we have applied: it is syncing, compatible.
	require.NoError(t, Validate(chain, chain[0], 15))
}

func TestValidateIncompatible(t *testing.T) {
	forks := []uint64{10, 20}
	chain := Chain(testGenesis, forks)

	other := ID{Hash: [4]byte{0xde, 0xad, 0xbe, 0xef}}
	require.ErrorIs(t, Validate(chain, other, 15), ErrLocalIncompatibleOrStale)

	// Remote's checksum matches our current entry, but our head has already
	// passed the fork it claims comes next: schedules diverged.
	diverged := ID{Hash: chain[1].Hash, Next: 12}
	require.ErrorIs(t, Validate(chain, diverged, 15), ErrLocalIncompatibleOrStale)
}

func TestEncodeRLPFixedWidthNext(t *testing.T) {
	id := ID{Hash: [4]byte{1, 2, 3, 4}, Next: 42}
	var buf bytes.Buffer
	require.NoError(t, id.EncodeRLP(&buf))
	// list header + 5-byte hash field + 9-byte fixed-width next field
	require.Equal(t, 1+5+9, buf.Len())
	require.Equal(t, byte(0x88), buf.Bytes()[6])
}
