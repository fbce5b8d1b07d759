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

package crypto

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/erigontech/secp256k1"
	"github.com/holiman/uint256"
)

// secp256k1Curve exposes the curve parameters through the standard
// elliptic.Curve interface for callers that only need X/Y bookkeeping
// (UnmarshalPubkey, MarshalPubkey); actual signing/recovery below bypasses
// it entirely and calls into libsecp256k1.
var secp256k1Curve = secp256k1.S256()

// secp256k1N is the order of the secp256k1 base point, used to reject
// signatures whose s value isn't in the lower half of the curve (the
// "low-s" / EIP-2 malleability rule).
var secp256k1N, _ = uint256.FromBig(secp256k1Curve.Params().N)
var secp256k1NBig = secp256k1Curve.Params().N
var secp256k1halfN = new(uint256.Int).Rsh(secp256k1N, 1)

// Sign calculates an ECDSA signature over a 32-byte hash. It returns a
// 65-byte signature in the [R || S || V] format, where V is 0 or 1.
func Sign(hash []byte, prv *ecdsa.PrivateKey) ([]byte, error) {
	if len(hash) != DigestLength {
		return nil, fmt.Errorf("hash is required to be exactly %d bytes (%d)", DigestLength, len(hash))
	}
	if prv == nil {
		return nil, errors.New("private key is nil")
	}
	seckey := math256Bytes(prv.D)
	defer zeroBytes(seckey)
	return secp256k1.Sign(hash, seckey)
}

// Ecrecover returns the uncompressed public key that created the given
// signature.
func Ecrecover(hash, sig []byte) ([]byte, error) {
	return secp256k1.RecoverPubkey(hash, sig)
}

// SigToPub returns the recovered public key as an *ecdsa.PublicKey.
func SigToPub(hash, sig []byte) (*ecdsa.PublicKey, error) {
	s, err := Ecrecover(hash, sig)
	if err != nil {
		return nil, err
	}
	return UnmarshalPubkey(s)
}

// VerifySignature checks that the given public key created the given
// signature. The signature should have the 64-byte [R || S] format.
func VerifySignature(pubkey, hash, signature []byte) bool {
	return secp256k1.VerifySignature(pubkey, hash, signature)
}

// ValidateSignatureValues verifies whether the signature values are valid
// with the given chain rules. The v value is assumed to be either 0 or 1.
// homestead enforces the additional low-s rule required after EIP-2.
func ValidateSignatureValues(v byte, r, s *uint256.Int, homestead bool) bool {
	if r == nil || s == nil {
		return false
	}
	if v != 0 && v != 1 {
		return false
	}
	if r.IsZero() || s.IsZero() {
		return false
	}
	if r.Cmp(secp256k1N) >= 0 || s.Cmp(secp256k1N) >= 0 {
		return false
	}
	if homestead && s.Cmp(secp256k1halfN) > 0 {
		return false
	}
	return true
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
