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

// AccessListTx is the EIP-2930 typed transaction: a legacy transaction plus
// an explicit chain ID and an access list of addresses/storage slots the
// transaction intends to touch.
type AccessListTx struct {
	LegacyTx
	ChainID    *uint256.Int
	AccessList AccessList
}

func (tx *AccessListTx) Type() byte                  { return AccessListTxType }
func (tx *AccessListTx) GetChainID() *uint256.Int     { return tx.ChainID }
func (tx *AccessListTx) GetAccessList() AccessList    { return tx.AccessList }

func (tx *AccessListTx) copy() Transaction {
	cpy := &AccessListTx{
		LegacyTx: LegacyTx{
			CommonTx: CommonTx{
				Nonce:    tx.Nonce,
				GasLimit: tx.GasLimit,
				Data:     common.CopyBytes(tx.Data),
			},
			GasPrice: new(uint256.Int),
		},
		ChainID:    new(uint256.Int),
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
	if tx.GasPrice != nil {
		cpy.GasPrice.Set(tx.GasPrice)
	}
	if tx.ChainID != nil {
		cpy.ChainID.Set(tx.ChainID)
	}
	cpy.V.Set(&tx.V)
	cpy.R.Set(&tx.R)
	cpy.S.Set(&tx.S)
	return cpy
}

func (tx *AccessListTx) accessListSize() int {
	size := 0
	for _, tuple := range tx.AccessList {
		tupleSize := 21 // address string header + 20 bytes
		storageSize := 0
		for range tuple.StorageKeys {
			storageSize += 33
		}
		tupleSize += rlp.ListPrefixLen(storageSize) + storageSize
		size += rlp.ListPrefixLen(tupleSize) + tupleSize
	}
	return size
}

func (tx *AccessListTx) payloadSize() int {
	size := rlp.Uint256LenExcludingHead(tx.ChainID) + 1
	size += rlp.IntLen(tx.Nonce)
	size += rlp.Uint256LenExcludingHead(tx.GasPrice) + 1
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

func (tx *AccessListTx) EncodingSize() int {
	size := tx.payloadSize()
	return 1 + rlp.ListPrefixLen(size) + size
}

func (tx *AccessListTx) encodeAccessList(w io.Writer, b []byte) error {
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

// EncodeRLP writes the typed envelope: the 0x01 type byte followed by the
// RLP list [chainId, nonce, gasPrice, gas, to, value, data, accessList, v,
// r, s].
func (tx *AccessListTx) EncodeRLP(w io.Writer) error {
	if _, err := w.Write([]byte{AccessListTxType}); err != nil {
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

func decodeAccessList(s *rlp.Stream) (AccessList, error) {
	if err := s.List(); err != nil {
		return nil, err
	}
	var al AccessList
	for s.Remaining() {
		if err := s.List(); err != nil {
			return nil, err
		}
		addrBytes, err := s.Bytes()
		if err != nil {
			return nil, err
		}
		if len(addrBytes) != 20 {
			return nil, errors.New("wrong size for access list address")
		}
		tuple := AccessTuple{Address: common.BytesToAddress(addrBytes)}
		if err := s.List(); err != nil {
			return nil, err
		}
		for s.Remaining() {
			keyBytes, err := s.Bytes()
			if err != nil {
				return nil, err
			}
			if len(keyBytes) != 32 {
				return nil, errors.New("wrong size for storage key")
			}
			tuple.StorageKeys = append(tuple.StorageKeys, common.BytesToHash(keyBytes))
		}
		if err := s.ListEnd(); err != nil {
			return nil, err
		}
		if err := s.ListEnd(); err != nil {
			return nil, err
		}
		al = append(al, tuple)
	}
	if err := s.ListEnd(); err != nil {
		return nil, err
	}
	return al, nil
}

// DecodeRLP populates tx from the RLP list starting at pos (pos is
// positioned just past the type byte, matching DecodeTransaction's call
// convention).
func (tx *AccessListTx) DecodeRLP(payload []byte, pos int) (int, error) {
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

func (tx *AccessListTx) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := tx.EncodeRLP(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hash returns keccak256(0x01 || rlp(payload)), memoized.
func (tx *AccessListTx) Hash() common.Hash {
	if h := tx.cachedHash(); h != nil {
		return *h
	}
	h := prefixedRlpHash(AccessListTxType, []interface{}{
		tx.ChainID, tx.Nonce, tx.GasPrice, tx.GasLimit, tx.To, tx.Value, tx.Data,
		tx.AccessList, &tx.V, &tx.R, &tx.S,
	})
	tx.storeCachedHash(h)
	return h
}

// SigningHash returns keccak256(0x01 || rlp([chainId, nonce, gasPrice, gas,
// to, value, data, accessList])), where chainId is the chainID argument; the
// signer passes its own chain ID here after checking it equals tx.ChainID.
func (tx *AccessListTx) SigningHash(chainID *uint256.Int) common.Hash {
	return prefixedRlpHash(AccessListTxType, []interface{}{
		chainID, tx.Nonce, tx.GasPrice, tx.GasLimit, tx.To, tx.Value, tx.Data, tx.AccessList,
	})
}

func (tx *AccessListTx) cachedSender() (common.Address, bool) { return tx.cachedSenderVal() }

func (tx *AccessListTx) Sender(signer Signer) (common.Address, error) {
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

func (tx *AccessListTx) WithSignature(signer Signer, sig []byte) (Transaction, error) {
	cpy := tx.copy().(*AccessListTx)
	v, r, s, err := signer.SignatureValues(tx, sig)
	if err != nil {
		return nil, err
	}
	cpy.V, cpy.R, cpy.S = *v, *r, *s
	return cpy, nil
}
