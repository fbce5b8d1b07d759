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
	"math"
)

// Per-transaction gas constants, all post-Homestead/Istanbul/Shanghai, the
// only eras this module's signature and RLP handling supports.
const (
	TxGas                   uint64 = 21000
	TxGasContractCreation   uint64 = 53000
	TxDataZeroGas           uint64 = 4
	TxDataNonZeroGasEIP2028 uint64 = 16
	// TxAccessListAddressGas and TxAccessListStorageKeyGas are EIP-2930's
	// flat per-entry costs, charged in addition to the base transaction
	// cost for every tuple/key an access list carries.
	TxAccessListAddressGas   uint64 = 2400
	TxAccessListStorageKeyGas uint64 = 1900
	// InitCodeWordGas is EIP-3860's per-32-byte-word surcharge on a
	// contract-creation transaction's init code.
	InitCodeWordGas uint64 = 2
)

var ErrGasUintOverflow = errors.New("gas uint64 overflow")

// IntrinsicGas returns tx's static, pre-execution cost: the flat
// per-transaction base (higher for contract creation), the per-byte cost of
// its data, EIP-3860's init-code word surcharge when it creates a contract,
// and EIP-2930's per-entry access-list cost. It never accounts for the cost
// of actually running the code.
func IntrinsicGas(tx Transaction) (uint64, error) {
	gas := TxGas
	creation := tx.GetTo() == nil
	if creation {
		gas = TxGasContractCreation
	}

	if data := tx.GetData(); len(data) > 0 {
		var nz uint64
		for _, b := range data {
			if b != 0 {
				nz++
			}
		}
		if (math.MaxUint64-gas)/TxDataNonZeroGasEIP2028 < nz {
			return 0, ErrGasUintOverflow
		}
		gas += nz * TxDataNonZeroGasEIP2028

		zeroes := uint64(len(data)) - nz
		if (math.MaxUint64-gas)/TxDataZeroGas < zeroes {
			return 0, ErrGasUintOverflow
		}
		gas += zeroes * TxDataZeroGas

		if creation {
			words := (uint64(len(data)) + 31) / 32
			if (math.MaxUint64-gas)/InitCodeWordGas < words {
				return 0, ErrGasUintOverflow
			}
			gas += words * InitCodeWordGas
		}
	}

	if al := tx.GetAccessList(); len(al) > 0 {
		addrCost := uint64(len(al)) * TxAccessListAddressGas
		if math.MaxUint64-gas < addrCost {
			return 0, ErrGasUintOverflow
		}
		gas += addrCost

		keyCost := uint64(al.StorageKeys()) * TxAccessListStorageKeyGas
		if math.MaxUint64-gas < keyCost {
			return 0, ErrGasUintOverflow
		}
		gas += keyCost
	}

	return gas, nil
}
