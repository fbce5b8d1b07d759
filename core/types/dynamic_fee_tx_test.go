// Copyright 2021 Erigon contributors
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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestDynamicFeeTxDecodeRejectsFeeCapBelowTip(t *testing.T) {
	tx := &DynamicFeeTx{
		CommonTx: CommonTx{
			Nonce:    0,
			GasLimit: 21000,
			Value:    uint256.NewInt(0),
		},
		ChainID: uint256.NewInt(1),
		TipCap:  uint256.NewInt(10),
		FeeCap:  uint256.NewInt(5),
	}
	tx.R.SetUint64(1)
	tx.S.SetUint64(1)
	var buf bytes.Buffer
	require.NoError(t, tx.EncodeRLP(&buf))

	_, err := DecodeTransaction(buf.Bytes())
	require.ErrorIs(t, err, ErrFeeCapLessThanTip)
}

func TestDynamicFeeTxDecodeAcceptsFeeCapEqualToTip(t *testing.T) {
	tx := &DynamicFeeTx{
		CommonTx: CommonTx{
			Nonce:    0,
			GasLimit: 21000,
			Value:    uint256.NewInt(0),
		},
		ChainID: uint256.NewInt(1),
		TipCap:  uint256.NewInt(10),
		FeeCap:  uint256.NewInt(10),
	}
	tx.R.SetUint64(1)
	tx.S.SetUint64(1)
	var buf bytes.Buffer
	require.NoError(t, tx.EncodeRLP(&buf))

	_, err := DecodeTransaction(buf.Bytes())
	require.NoError(t, err)
}
