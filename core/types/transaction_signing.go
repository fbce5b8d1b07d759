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
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/coldbit-labs/evmpool/common"
	"github.com/coldbit-labs/evmpool/crypto"
)

// Signer binds a signature to a chain, recovering the sender of a
// transaction and computing the signature values for a freshly-signed one.
// Every transaction variant delegates Sender/SigningHash to a Signer rather
// than hard-coding chain rules into its own methods, so a single mempool
// can validate both legacy and typed transactions under one chain ID.
type Signer interface {
	Sender(tx Transaction) (common.Address, error)
	SignatureValues(tx Transaction, sig []byte) (v, r, s *uint256.Int, err error)
	ChainID() *uint256.Int
	Equal(Signer) bool
}

// MakeSigner returns a Signer valid for the given chain, matching the
// transaction type it will be asked to validate: legacy transactions use
// EIP-155 (or Homestead/Frontier if unprotected), typed transactions always
// bind to chainID directly.
func MakeSigner(chainID *uint256.Int) Signer {
	return &londonSigner{chainID: chainID}
}

// londonSigner accepts every transaction type this module implements
// (legacy — protected or not —, access-list, dynamic-fee), named for the
// London-era transaction pool it stands in for.
type londonSigner struct {
	chainID *uint256.Int
}

func (s *londonSigner) ChainID() *uint256.Int { return s.chainID }

func (s *londonSigner) Equal(other Signer) bool {
	o, ok := other.(*londonSigner)
	return ok && s.chainID.Eq(o.chainID)
}

func (s *londonSigner) Sender(tx Transaction) (common.Address, error) {
	v, r, sVal := tx.RawSignatureValues()
	switch tx.Type() {
	case LegacyTxType:
		chainID := tx.(*LegacyTx).GetChainID()
		var vAdj uint256.Int
		if chainID == nil {
			vAdj.Sub(v, uint256.NewInt(27))
		} else {
			// v = 2*chainID + 35 + {0,1}
			vAdj.Sub(v, uint256.NewInt(35))
			doubled := new(uint256.Int).Mul(chainID, uint256.NewInt(2))
			vAdj.Sub(&vAdj, doubled)
			if chainID.Cmp(s.chainID) != 0 && !chainID.IsZero() {
				return common.Address{}, fmt.Errorf("signer chain id %d does not match tx chain id %d", s.chainID, chainID)
			}
		}
		sigHash := tx.SigningHash(chainID)
		return recoverPlain(sigHash, r, sVal, &vAdj, true)
	case AccessListTxType, DynamicFeeTxType:
		txChainID := tx.GetChainID()
		if txChainID.Cmp(s.chainID) != 0 {
			return common.Address{}, fmt.Errorf("signer chain id %d does not match tx chain id %d", s.chainID, txChainID)
		}
		sigHash := tx.SigningHash(s.chainID)
		return recoverPlain(sigHash, r, sVal, v, true)
	default:
		return common.Address{}, ErrTxTypeNotSupported
	}
}

func (s *londonSigner) SignatureValues(tx Transaction, sig []byte) (v, r, sVal *uint256.Int, err error) {
	rBytes, sBytes := sig[:32], sig[32:64]
	r = new(uint256.Int).SetBytes(rBytes)
	sVal = new(uint256.Int).SetBytes(sBytes)
	switch tx.Type() {
	case LegacyTxType:
		v = new(uint256.Int).SetUint64(uint64(sig[64]))
		if s.chainID != nil && !s.chainID.IsZero() {
			doubled := new(uint256.Int).Mul(s.chainID, uint256.NewInt(2))
			v.Add(v, doubled)
			v.Add(v, uint256.NewInt(35))
		} else {
			v.Add(v, uint256.NewInt(27))
		}
	case AccessListTxType, DynamicFeeTxType:
		v = new(uint256.Int).SetUint64(uint64(sig[64]))
	default:
		return nil, nil, nil, ErrTxTypeNotSupported
	}
	return v, r, sVal, nil
}

// recoverPlain recovers the sender address from a signing hash and
// signature values, requiring the low-s rule whenever homestead is true
// (every transaction type this module supports post-dates Homestead).
func recoverPlain(sighash common.Hash, r, s, v *uint256.Int, homestead bool) (common.Address, error) {
	if !crypto.ValidateSignatureValues(byte(v.Uint64()), r, s, homestead) {
		return common.Address{}, ErrInvalidSig
	}
	sig := make([]byte, 65)
	rBytes, sBytes := r.Bytes32(), s.Bytes32()
	copy(sig[0:32], rBytes[:])
	copy(sig[32:64], sBytes[:])
	sig[64] = byte(v.Uint64())
	pub, err := crypto.Ecrecover(sighash[:], sig)
	if err != nil {
		return common.Address{}, err
	}
	if len(pub) == 0 || pub[0] != 4 {
		return common.Address{}, errors.New("invalid public key")
	}
	pubKey, err := crypto.UnmarshalPubkeyStd(pub)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}
