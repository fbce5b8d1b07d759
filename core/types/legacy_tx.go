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
	"bytes"
	"errors"
	"io"

	"github.com/holiman/uint256"

	"github.com/coldbit-labs/evmpool/common"
	"github.com/coldbit-labs/evmpool/rlp"
)

// LegacyTx is the pre-EIP-2718 transaction, RLP-encoded directly as a list
// with no leading type byte. Its V value carries either the Homestead
// {27,28} convention or, for a chain-bound (EIP-155) transaction,
// {2*chainID+35, 2*chainID+36}.
type LegacyTx struct {
	CommonTx
	GasPrice *uint256.Int
}

func (tx *LegacyTx) Type() byte { return LegacyTxType }

// GetChainID recovers the chain ID embedded in an EIP-155 V value, or nil
// if this transaction predates EIP-155 (V is 27 or 28).
func (tx *LegacyTx) GetChainID() *uint256.Int {
	v := tx.V.Uint64()
	if v == 27 || v == 28 {
		return nil
	}
	chainID := new(uint256.Int).SetUint64((v - 35) / 2)
	return chainID
}

func (tx *LegacyTx) GetPrice() *uint256.Int  { return tx.GasPrice }
func (tx *LegacyTx) GetTip() *uint256.Int    { return tx.GasPrice }
func (tx *LegacyTx) GetFeeCap() *uint256.Int { return tx.GasPrice }
func (tx *LegacyTx) GetAccessList() AccessList { return nil }

func (tx *LegacyTx) copy() Transaction {
	cpy := &LegacyTx{
		CommonTx: CommonTx{
			Nonce:    tx.Nonce,
			GasLimit: tx.GasLimit,
			Data:     common.CopyBytes(tx.Data),
		},
		GasPrice: new(uint256.Int),
	}
	if tx.To != nil {
		to := *tx.To
		cpy.To = &to
	}
	if tx.Value != nil {
		cpy.Value = new(uint256.Int).Set(tx.Value)
	}
	if tx.GasPrice != nil {
		cpy.GasPrice.Set(tx.GasPrice)
	}
	cpy.V.Set(&tx.V)
	cpy.R.Set(&tx.R)
	cpy.S.Set(&tx.S)
	return cpy
}

func (tx *LegacyTx) payloadSize() int {
	size := rlp.IntLen(tx.Nonce)
	size += rlp.IntLenExcludingHead(tx.GasPrice.Uint64()) + 1
	size += rlp.IntLen(tx.GasLimit)
	if tx.To == nil {
		size++
	} else {
		size += 21
	}
	size += rlp.Uint256LenExcludingHead(tx.Value) + 1
	size += rlp.StringLen(tx.Data)
	size += rlp.Uint256LenExcludingHead(&tx.V) + 1
	size += rlp.Uint256LenExcludingHead(&tx.R) + 1
	size += rlp.Uint256LenExcludingHead(&tx.S) + 1
	return size
}

func (tx *LegacyTx) EncodingSize() int {
	size := tx.payloadSize()
	return rlp.ListPrefixLen(size) + size
}

// EncodeRLP writes the canonical [nonce, gasPrice, gas, to, value, data, v,
// r, s] list, matching AccessListTx.EncodeRLP's structure minus the type
// byte and access list.
func (tx *LegacyTx) EncodeRLP(w io.Writer) error {
	payloadSize := tx.payloadSize()
	var b [33]byte
	if err := rlp.EncodeStructSizePrefix(payloadSize, w, b[:]); err != nil {
		return err
	}
	if err := rlp.EncodeUint256(uint256.NewInt(tx.Nonce), w, b[:]); err != nil {
		return err
	}
	if err := rlp.EncodeUint256(tx.GasPrice, w, b[:]); err != nil {
		return err
	}
	if err := rlp.EncodeUint256(uint256.NewInt(tx.GasLimit), w, b[:]); err != nil {
		return err
	}
	var toAddr *[20]byte
	if tx.To != nil {
		a := [20]byte(*tx.To)
		toAddr = &a
	}
	if err := rlp.EncodeOptionalAddress(toAddr, w, b[:]); err != nil {
		return err
	}
	if err := rlp.EncodeUint256(tx.Value, w, b[:]); err != nil {
		return err
	}
	dataEnc := make([]byte, rlp.StringLen(tx.Data))
	rlp.EncodeString(tx.Data, dataEnc)
	if _, err := w.Write(dataEnc); err != nil {
		return err
	}
	if err := rlp.EncodeUint256(&tx.V, w, b[:]); err != nil {
		return err
	}
	if err := rlp.EncodeUint256(&tx.R, w, b[:]); err != nil {
		return err
	}
	return rlp.EncodeUint256(&tx.S, w, b[:])
}

// DecodeRLP populates tx from the RLP list starting at pos, returning the
// position right after the list.
func (tx *LegacyTx) DecodeRLP(payload []byte, pos int) (int, error) {
	s := rlp.NewStream(payload, pos)
	if err := s.List(); err != nil {
		return 0, err
	}
	var err error
	if tx.Nonce, err = s.Uint(); err != nil {
		return 0, err
	}
	if tx.GasPrice, err = s.Uint256Bytes(); err != nil {
		return 0, err
	}
	if tx.GasLimit, err = s.Uint(); err != nil {
		return 0, err
	}
	toBytes, err := s.Bytes()
	if err != nil {
		return 0, err
	}
	if len(toBytes) > 0 {
		if len(toBytes) != 20 {
			return 0, errors.New("wrong size for To")
		}
		to := common.BytesToAddress(toBytes)
		tx.To = &to
	}
	if tx.Value, err = s.Uint256Bytes(); err != nil {
		return 0, err
	}
	if tx.Data, err = s.Bytes(); err != nil {
		return 0, err
	}
	tx.Data = common.CopyBytes(tx.Data)
	v, err := s.Uint256Bytes()
	if err != nil {
		return 0, err
	}
	if vv := v.Uint64(); v.IsUint64() && vv != 27 && vv != 28 && vv < 35 {
		return 0, ErrInvalidV
	}
	tx.V = *v
	r, err := s.Uint256Bytes()
	if err != nil {
		return 0, err
	}
	tx.R = *r
	sVal, err := s.Uint256Bytes()
	if err != nil {
		return 0, err
	}
	tx.S = *sVal
	if err := s.ListEnd(); err != nil {
		return 0, err
	}
	return s.Pos(), nil
}

func (tx *LegacyTx) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := tx.EncodeRLP(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hash returns the keccak256 hash of the RLP encoding, memoized.
func (tx *LegacyTx) Hash() common.Hash {
	if h := tx.cachedHash(); h != nil {
		return *h
	}
	b, _ := tx.MarshalBinary()
	h := rlpHash(b)
	tx.storeCachedHash(h)
	return h
}

// SigningHash returns the hash signed over: for a pre-EIP-155 legacy
// transaction it is the 6-field list; for a chain-bound one it also
// includes (chainID, 0, 0), per EIP-155.
func (tx *LegacyTx) SigningHash(chainID *uint256.Int) common.Hash {
	if chainID == nil || chainID.IsZero() {
		return prefixedRlpHash(0, []interface{}{
			tx.Nonce, tx.GasPrice, tx.GasLimit, tx.To, tx.Value, tx.Data,
		})
	}
	return prefixedRlpHash(0, []interface{}{
		tx.Nonce, tx.GasPrice, tx.GasLimit, tx.To, tx.Value, tx.Data,
		chainID, uint(0), uint(0),
	})
}

func (tx *LegacyTx) cachedSender() (common.Address, bool) { return tx.cachedSenderVal() }

func (tx *LegacyTx) Sender(signer Signer) (common.Address, error) {
	if addr, ok := tx.cachedSender(); ok {
		return addr, nil
	}
	addr, err := signer.Sender(tx)
	if err != nil {
		return common.Address{}, err
	}
	tx.storeCachedSender(addr)
	return addr, nil
}

func (tx *LegacyTx) WithSignature(signer Signer, sig []byte) (Transaction, error) {
	cpy := tx.copy().(*LegacyTx)
	v, r, s, err := signer.SignatureValues(tx, sig)
	if err != nil {
		return nil, err
	}
	cpy.V, cpy.R, cpy.S = *v, *r, *s
	return cpy, nil
}
