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
	"github.com/coldbit-labs/evmpool/common"
	"github.com/coldbit-labs/evmpool/crypto"
	"github.com/coldbit-labs/evmpool/rlp"
)

// rlpHash returns the keccak256 hash of already-encoded RLP bytes.
func rlpHash(encoded []byte) common.Hash {
	return crypto.Keccak256Hash(encoded)
}

// prefixedRlpHash hashes prefix (when non-zero, the typed-envelope type
// byte) followed by the RLP encoding of the field list x, matching every
// typed transaction's Hash/SigningHash construction.
func prefixedRlpHash(prefix byte, x []interface{}) common.Hash {
	enc, err := rlp.EncodeToBytes(x)
	if err != nil {
		panic(err)
	}
	if prefix == 0 {
		return crypto.Keccak256Hash(enc)
	}
	return crypto.Keccak256Hash([]byte{prefix}, enc)
}
