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

// Package types holds the transaction envelope variants, their RLP codec,
// and the signer model used to bind a signature to a chain ID.
package types

import (
	"errors"
	"io"
	"sync/atomic"

	"github.com/holiman/uint256"

	"github.com/coldbit-labs/evmpool/common"
)

// Transaction type identifiers, carried on the wire as the leading byte of
// the typed-envelope encoding (legacy transactions have no leading type
// byte — the envelope is distinguished by starting directly with a list).
const (
	LegacyTxType     byte = 0x00
	AccessListTxType byte = 0x01
	DynamicFeeTxType byte = 0x02
)

var (
	ErrInvalidSig           = errors.New("invalid transaction v, r, s values")
	ErrUnexpectedProtection = errors.New("transaction type does not supported EIP-155 protected signatures")
	ErrInvalidTxType        = errors.New("transaction type not valid in this context")
	ErrTxTypeNotSupported   = errors.New("transaction type not supported")
	ErrGasFeeCapTooLow      = errors.New("fee cap less than base fee")
	ErrFeeCapLessThanTip    = errors.New("max fee per gas less than max priority fee per gas")
	ErrInvalidV             = errors.New("v is not in any recognized signature scheme")
)

// AccessTuple is a tuple of an account and its associated storage slots,
// one entry of an AccessList.
type AccessTuple struct {
	Address     common.Address `json:"address"`
	StorageKeys []common.Hash  `json:"storageKeys"`
}

// AccessList is the EIP-2930 access list carried by AccessListTx and
// DynamicFeeTx.
type AccessList []AccessTuple

// StorageKeys returns the total number of storage keys across the whole
// list, used by IntrinsicGas.
func (al AccessList) StorageKeys() int {
	sum := 0
	for _, tuple := range al {
		sum += len(tuple.StorageKeys)
	}
	return sum
}

// Transaction is implemented by every wire-format transaction variant.
// Callers reach fields through these accessors rather than switching on the
// concrete type, so the mempool's ordering and selection logic is variant
// agnostic.
type Transaction interface {
	Type() byte
	GetChainID() *uint256.Int
	GetNonce() uint64
	GetPrice() *uint256.Int
	GetTip() *uint256.Int
	GetFeeCap() *uint256.Int
	GetGas() uint64
	GetTo() *common.Address
	GetValue() *uint256.Int
	GetData() []byte
	GetAccessList() AccessList

	RawSignatureValues() (v, r, s *uint256.Int)
	SigningHash(chainID *uint256.Int) common.Hash
	Hash() common.Hash

	Sender(Signer) (common.Address, error)
	cachedSender() (common.Address, bool)
	WithSignature(signer Signer, sig []byte) (Transaction, error)

	EncodeRLP(w io.Writer) error
	MarshalBinary() ([]byte, error)
	EncodingSize() int

	copy() Transaction
}

// TransactionMisc holds fields shared by every variant that are not part
// of the signed payload: caches for the two values every hot path recomputes
// otherwise (hash, sender). Both are populated at most once per
// transaction and read many times, so an atomic.Pointer avoids a mutex on
// the read path while staying safe for concurrent AddRemote/AddLocal calls.
type TransactionMisc struct {
	hash atomic.Pointer[common.Hash]
	from atomic.Pointer[common.Address]
}

func (tm *TransactionMisc) cachedHash() *common.Hash        { return tm.hash.Load() }
func (tm *TransactionMisc) storeCachedHash(h common.Hash)   { tm.hash.Store(&h) }
func (tm *TransactionMisc) cachedSenderVal() (common.Address, bool) {
	if s := tm.from.Load(); s != nil {
		return *s, true
	}
	return common.Address{}, false
}
func (tm *TransactionMisc) storeCachedSender(a common.Address) { tm.from.Store(&a) }

// CommonTx holds the fields shared by every transaction variant, matching
// go-ethereum/Erigon's own layout of embedding this struct into each
// concrete type instead of duplicating the fields.
type CommonTx struct {
	TransactionMisc

	Nonce    uint64
	GasLimit uint64
	To       *common.Address
	Value    *uint256.Int
	Data     []byte
	V, R, S  uint256.Int
}

func (ct *CommonTx) GetNonce() uint64          { return ct.Nonce }
func (ct *CommonTx) GetGas() uint64            { return ct.GasLimit }
func (ct *CommonTx) GetTo() *common.Address    { return ct.To }
func (ct *CommonTx) GetValue() *uint256.Int    { return ct.Value }
func (ct *CommonTx) GetData() []byte           { return ct.Data }
func (ct *CommonTx) RawSignatureValues() (v, r, s *uint256.Int) {
	return &ct.V, &ct.R, &ct.S
}

// DecodeTransaction reads a single transaction from its wire envelope: a
// typed envelope starts with a type byte followed by an RLP list, a legacy
// transaction starts directly with the RLP list header.
func DecodeTransaction(data []byte) (Transaction, error) {
	if len(data) == 0 {
		return nil, errors.New("empty transaction bytes")
	}
	if data[0] >= 0xc0 {
		tx := &LegacyTx{}
		if _, err := tx.DecodeRLP(data, 0); err != nil {
			return nil, err
		}
		return tx, nil
	}
	switch data[0] {
	case AccessListTxType:
		tx := &AccessListTx{}
		if _, err := tx.DecodeRLP(data, 1); err != nil {
			return nil, err
		}
		return tx, nil
	case DynamicFeeTxType:
		tx := &DynamicFeeTx{}
		if _, err := tx.DecodeRLP(data, 1); err != nil {
			return nil, err
		}
		return tx, nil
	default:
		return nil, ErrTxTypeNotSupported
	}
}
