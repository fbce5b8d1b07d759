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

func legacyTxWithV(v uint64) []byte {
	tx := &LegacyTx{
		CommonTx: CommonTx{
			Nonce:    0,
			GasLimit: 21000,
			Value:    uint256.NewInt(0),
		},
		GasPrice: uint256.NewInt(1),
	}
	tx.V.SetUint64(v)
	tx.R.SetUint64(1)
	tx.S.SetUint64(1)
	var buf bytes.Buffer
	if err := tx.EncodeRLP(&buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func TestLegacyTxDecodeRejectsUnrecognizedV(t *testing.T) {
	for _, v := range []uint64{0, 1, 26, 29, 30, 34} {
		_, err := DecodeTransaction(legacyTxWithV(v))
		require.ErrorIs(t, err, ErrInvalidV, "v=%d should be rejected", v)
	}
}

func TestLegacyTxDecodeAcceptsRecognizedV(t *testing.T) {
	for _, v := range []uint64{27, 28, 35, 36, 37, 38} {
		_, err := DecodeTransaction(legacyTxWithV(v))
		require.NoError(t, err, "v=%d should decode", v)
	}
}

func TestGetChainIDNoLongerUnderflowsOnValidV(t *testing.T) {
	tx := &LegacyTx{GasPrice: uint256.NewInt(1)}
	tx.V.SetUint64(37)
	require.Equal(t, uint64(1), tx.GetChainID().Uint64())

	tx.V.SetUint64(27)
	require.Nil(t, tx.GetChainID())
}
