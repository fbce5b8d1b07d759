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

// Package forkid implements the EIP-2124 fork identifier: a compact
// checksum of a chain's genesis and past fork blocks, exchanged during peer
// handshake so two nodes can tell whether they run compatible fork
// schedules without transmitting the whole list.
package forkid

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

var (
	// ErrRemoteStale is returned when the remote is on an earlier fork
	// than the ones this chain has already passed, but its checksum
	// still matches a prefix of our own history — it just hasn't
	// updated yet.
	ErrRemoteStale = errors.New("remote needs update")
	// ErrLocalIncompatibleOrStale is returned when neither side's fork
	// history is a prefix of the other's: the two chains have diverged.
	ErrLocalIncompatibleOrStale = errors.New("local incompatible or needs update")
)

// ID is the 32-bit CRC32 checksum of the chain's genesis hash and all fork
// block numbers passed so far, plus the block number of the next
// still-unapplied fork (0 if none is scheduled).
type ID struct {
	Hash [4]byte
	Next uint64
}

// EncodeRLP writes ID as the two-element RLP list [hash, next] used on the
// wire during the peer status handshake; Next is always encoded as an
// 8-byte big-endian scalar, never a variable-length one, so both ends agree
// on the field width regardless of its value.
func (id ID) EncodeRLP(w io.Writer) error {
	hashField := append([]byte{0x84}, id.Hash[:]...)
	var nextBuf [9]byte
	nextBuf[0] = 0x88
	binary.BigEndian.PutUint64(nextBuf[1:], id.Next)
	body := append(hashField, nextBuf[:]...)
	header := byte(0xc0 + len(body))
	if _, err := w.Write([]byte{header}); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

// Chain returns the fork ID for every fork block in forks (sorted
// ascending, deduplicated by the caller), matching the checksum a peer
// would compute after passing that fork.
func Chain(genesis [32]byte, forks []uint64) []ID {
	hash := crc32.ChecksumIEEE(genesis[:])
	ids := make([]ID, 0, len(forks)+1)
	ids = append(ids, checksumToID(hash, next(forks, 0)))
	for i, fork := range forks {
		hash = checksumUpdate(hash, fork)
		var nextFork uint64
		if i+1 < len(forks) {
			nextFork = forks[i+1]
		}
		ids = append(ids, checksumToID(hash, nextFork))
	}
	return ids
}

// NewID computes the fork ID this chain presents at head, the way a node
// would compute its own ID to announce during a handshake.
func NewID(genesis [32]byte, forks []uint64, head uint64) ID {
	hash := crc32.ChecksumIEEE(genesis[:])
	var nextFork uint64
	for _, fork := range forks {
		if fork <= head {
			hash = checksumUpdate(hash, fork)
			continue
		}
		nextFork = fork
		break
	}
	return checksumToID(hash, nextFork)
}

func next(forks []uint64, i int) uint64 {
	if i < len(forks) {
		return forks[i]
	}
	return 0
}

func checksumUpdate(hash uint32, fork uint64) uint32 {
	var blob [8]byte
	binary.BigEndian.PutUint64(blob[:], fork)
	return crc32.Update(hash, crc32.IEEETable, blob[:])
}

func checksumToID(hash uint32, next uint64) ID {
	var id ID
	binary.BigEndian.PutUint32(id.Hash[:], hash)
	id.Next = next
	return id
}

// Validate checks whether a remote peer announcing remote is compatible
// with a local chain whose own fork checksums (in arrival order) are
// chain, given the local head block number. It implements the EIP-2124
// state machine: a peer is compatible if its checksum matches ours at the
// point in the schedule our head has reached, is a stale prefix of ours
// (it hasn't forked yet but will match once it catches up), or is ahead of
// us with a checksum we'll eventually reach.
func Validate(chain []ID, remote ID, head uint64) error {
	// active is the index of the checksum our head is currently on.
	active := 0
	for active < len(chain)-1 && chain[active].Next != 0 && head >= chain[active].Next {
		active++
	}
	for i, local := range chain {
		if local.Hash != remote.Hash {
			continue
		}
		// Same checksum as ours right now. If the remote announces a Next
		// fork our head has already passed, our schedules have diverged.
		if i == active && remote.Next > 0 && head >= remote.Next {
			return ErrLocalIncompatibleOrStale
		}
		// The remote is on a checksum we have already moved past: it is
		// syncing, and compatible only if the fork it announces next is the
		// one that followed that checksum for us.
		if i < active && remote.Next != local.Next {
			return ErrRemoteStale
		}
		return nil
	}
	// No checksum in our schedule matches: the remote is on a different
	// chain or on a fork we don't know about, so it is incompatible.
	if len(chain) > 0 {
		last := chain[len(chain)-1]
		if remote.Hash == last.Hash {
			return nil
		}
	}
	return ErrLocalIncompatibleOrStale
}
