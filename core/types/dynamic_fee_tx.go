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

// DynamicFeeTx is the EIP-1559 fee-market transaction: it replaces the
// single GasPrice field with a TipCap (priority fee, per unit gas) and a
// FeeCap (absolute ceiling, per unit gas), so a transaction's effective
// price adapts to the block's base fee without needing to be resubmitted.
type DynamicFeeTx struct {
	CommonTx
	ChainID    *uint256.Int
	TipCap     *uint256.Int
	FeeCap     *uint256.Int
	AccessList AccessList
}

func (tx *DynamicFeeTx) Type() byte               { return DynamicFeeTxType }
func (tx *DynamicFeeTx) GetChainID() *uint256.Int  { return tx.ChainID }
func (tx *DynamicFeeTx) GetTip() *uint256.Int      { return tx.TipCap }
func (tx *DynamicFeeTx) GetFeeCap() *uint256.Int   { return tx.FeeCap }
func (tx *DynamicFeeTx) GetAccessList() AccessList { return tx.AccessList }

// GetPrice returns the fee cap: callers that need the effective price under
// a known base fee should use EffectiveGasTip instead.
func (tx *DynamicFeeTx) GetPrice() *uint256.Int { return tx.FeeCap }

// EffectiveGasTip returns min(TipCap, FeeCap-baseFee), the actual per-unit
// tip paid to the block producer once the base fee is known, or an error if
// the fee cap can't cover the base fee at all.
func (tx *DynamicFeeTx) EffectiveGasTip(baseFee *uint256.Int) (*uint256.Int, error) {
	if baseFee == nil || baseFee.IsZero() {
		return tx.TipCap.Clone(), nil
	}
	if tx.FeeCap.Lt(baseFee) {
		return nil, ErrGasFeeCapTooLow
	}
	headroom := new(uint256.Int).Sub(tx.FeeCap, baseFee)
	if headroom.Gt(tx.TipCap) {
		return tx.TipCap.Clone(), nil
	}
	return headroom, nil
}

func (tx *DynamicFeeTx) copy() Transaction {
	cpy := &DynamicFeeTx{
		CommonTx: CommonTx{
			Nonce:    tx.Nonce,
			GasLimit: tx.GasLimit,
			Data:     common.CopyBytes(tx.Data),
		},
		ChainID:    new(uint256.Int),
		TipCap:     new(uint256.Int),
		FeeCap:     new(uint256.Int),
		AccessList: make(AccessList, len(tx.AccessList)),
	}
	copy(cpy.AccessList, tx.AccessList)
	if tx.To != nil {
		to := *tx.To
		cpy.To = &to
	}
	if tx.Value != nil {
		cpy.Value = new(uint256.Int).Set(tx.Value)
	}
	if tx.ChainID != nil {
		cpy.ChainID.Set(tx.ChainID)
	}
	if tx.TipCap != nil {
		cpy.TipCap.Set(tx.TipCap)
	}
	if tx.FeeCap != nil {
		cpy.FeeCap.Set(tx.FeeCap)
	}
	cpy.V.Set(&tx.V)
	cpy.R.Set(&tx.R)
	cpy.S.Set(&tx.S)
	return cpy
}

func (tx *DynamicFeeTx) accessListSize() int {
	size := 0
	for _, tuple := range tx.AccessList {
		storageSize := 33 * len(tuple.StorageKeys)
		tupleSize := 21 + rlp.ListPrefixLen(storageSize) + storageSize
		size += rlp.ListPrefixLen(tupleSize) + tupleSize
	}
	return size
}

func (tx *DynamicFeeTx) payloadSize() int {
	size := rlp.Uint256LenExcludingHead(tx.ChainID) + 1
	size += rlp.IntLen(tx.Nonce)
	size += rlp.Uint256LenExcludingHead(tx.TipCap) + 1
	size += rlp.Uint256LenExcludingHead(tx.FeeCap) + 1
	size += rlp.IntLen(tx.GasLimit)
	if tx.To == nil {
		size++
	} else {
		size += 21
	}
	size += rlp.Uint256LenExcludingHead(tx.Value) + 1
	size += rlp.StringLen(tx.Data)
	alSize := tx.accessListSize()
	size += rlp.ListPrefixLen(alSize) + alSize
	size += rlp.Uint256LenExcludingHead(&tx.V) + 1
	size += rlp.Uint256LenExcludingHead(&tx.R) + 1
	size += rlp.Uint256LenExcludingHead(&tx.S) + 1
	return size
}

func (tx *DynamicFeeTx) EncodingSize() int {
	size := tx.payloadSize()
	return 1 + rlp.ListPrefixLen(size) + size
}

func (tx *DynamicFeeTx) encodeAccessList(w io.Writer, b []byte) error {
	alSize := tx.accessListSize()
	if err := rlp.EncodeStructSizePrefix(alSize, w, b); err != nil {
		return err
	}
	for _, tuple := range tx.AccessList {
		storageSize := 33 * len(tuple.StorageKeys)
		tupleSize := 21 + rlp.ListPrefixLen(storageSize) + storageSize
		if err := rlp.EncodeStructSizePrefix(tupleSize, w, b); err != nil {
			return err
		}
		addr := [20]byte(tuple.Address)
		if err := rlp.EncodeOptionalAddress(&addr, w, b); err != nil {
			return err
		}
		if err := rlp.EncodeStructSizePrefix(storageSize, w, b); err != nil {
			return err
		}
		for _, key := range tuple.StorageKeys {
			enc := make([]byte, 33)
			n := rlp.EncodeString(key.Bytes(), enc)
			if _, err := w.Write(enc[:n]); err != nil {
				return err
			}
		}
	}
	return nil
}

// EncodeRLP writes the typed envelope: the 0x02 type byte followed by the
// RLP list [chainId, nonce, tipCap, feeCap, gas, to, value, data,
// accessList, v, r, s].
func (tx *DynamicFeeTx) EncodeRLP(w io.Writer) error {
	if _, err := w.Write([]byte{DynamicFeeTxType}); err != nil {
		return err
	}
	payloadSize := tx.payloadSize()
	var b [33]byte
	if err := rlp.EncodeStructSizePrefix(payloadSize, w, b[:]); err != nil {
		return err
	}
	if err := rlp.EncodeUint256(tx.ChainID, w, b[:]); err != nil {
		return err
	}
	if err := rlp.EncodeUint256(uint256.NewInt(tx.Nonce), w, b[:]); err != nil {
		return err
	}
	if err := rlp.EncodeUint256(tx.TipCap, w, b[:]); err != nil {
		return err
	}
	if err := rlp.EncodeUint256(tx.FeeCap, w, b[:]); err != nil {
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
	if err := tx.encodeAccessList(w, b[:]); err != nil {
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

// DecodeRLP populates tx from the RLP list starting at pos (positioned just
// past the type byte).
func (tx *DynamicFeeTx) DecodeRLP(payload []byte, pos int) (int, error) {
	s := rlp.NewStream(payload, pos)
	if err := s.List(); err != nil {
		return 0, err
	}
	var err error
	if tx.ChainID, err = s.Uint256Bytes(); err != nil {
		return 0, err
	}
	if tx.Nonce, err = s.Uint(); err != nil {
		return 0, err
	}
	if tx.TipCap, err = s.Uint256Bytes(); err != nil {
		return 0, err
	}
	if tx.FeeCap, err = s.Uint256Bytes(); err != nil {
		return 0, err
	}
	if tx.FeeCap.Lt(tx.TipCap) {
		return 0, ErrFeeCapLessThanTip
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
	if tx.AccessList, err = decodeAccessList(s); err != nil {
		return 0, err
	}
	v, err := s.Uint256Bytes()
	if err != nil {
		return 0, err
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

func (tx *DynamicFeeTx) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := tx.EncodeRLP(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hash returns keccak256(0x02 || rlp(payload)), memoized.
func (tx *DynamicFeeTx) Hash() common.Hash {
	if h := tx.cachedHash(); h != nil {
		return *h
	}
	h := prefixedRlpHash(DynamicFeeTxType, []interface{}{
		tx.ChainID, tx.Nonce, tx.TipCap, tx.FeeCap, tx.GasLimit, tx.To, tx.Value, tx.Data,
		tx.AccessList, &tx.V, &tx.R, &tx.S,
	})
	tx.storeCachedHash(h)
	return h
}

// SigningHash returns keccak256(0x02 || rlp([chainId, nonce, tipCap,
// feeCap, gas, to, value, data, accessList])).
func (tx *DynamicFeeTx) SigningHash(chainID *uint256.Int) common.Hash {
	return prefixedRlpHash(DynamicFeeTxType, []interface{}{
		chainID, tx.Nonce, tx.TipCap, tx.FeeCap, tx.GasLimit, tx.To, tx.Value, tx.Data, tx.AccessList,
	})
}

func (tx *DynamicFeeTx) cachedSender() (common.Address, bool) { return tx.cachedSenderVal() }

func (tx *DynamicFeeTx) Sender(signer Signer) (common.Address, error) {
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

func (tx *DynamicFeeTx) WithSignature(signer Signer, sig []byte) (Transaction, error) {
	cpy := tx.copy().(*DynamicFeeTx)
	v, r, s, err := signer.SignatureValues(tx, sig)
	if err != nil {
		return nil, err
	}
	cpy.V, cpy.R, cpy.S = *v, *r, *s
	return cpy, nil
}
