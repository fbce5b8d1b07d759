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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/coldbit-labs/evmpool/common"
	"github.com/coldbit-labs/evmpool/crypto"
)

const testKeyHex = "289c2857d4598e37fb9647507e47a309d6133539bf21a8b9cb6df88fd5232032"

func signTx(t *testing.T, tx Transaction, signer Signer) Transaction {
	t.Helper()
	key, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	sighash := tx.SigningHash(signer.ChainID())
	sig, err := crypto.Sign(sighash[:], key)
	require.NoError(t, err)
	signed, err := tx.WithSignature(signer, sig)
	require.NoError(t, err)
	return signed
}

func TestLegacyTxSignAndRecover(t *testing.T) {
	to := common.HexToAddress("0x0000000000000000000000000000000000000001")
	tx := &LegacyTx{
		CommonTx: CommonTx{
			Nonce:    3,
			GasLimit: 21000,
			To:       &to,
			Value:    uint256.NewInt(1000),
			Data:     nil,
		},
		GasPrice: uint256.NewInt(7),
	}
	signer := MakeSigner(uint256.NewInt(1))
	signed := signTx(t, tx, signer)

	sender, err := signed.Sender(signer)
	require.NoError(t, err)

	key, _ := crypto.HexToECDSA(testKeyHex)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), sender)

	encoded, err := signed.MarshalBinary()
	require.NoError(t, err)

	decoded, err := DecodeTransaction(encoded)
	require.NoError(t, err)
	require.Equal(t, signed.Hash(), decoded.Hash())

	decodedSender, err := decoded.Sender(signer)
	require.NoError(t, err)
	require.Equal(t, sender, decodedSender)
}

func TestAccessListTxRoundTrip(t *testing.T) {
	to := common.HexToAddress("0x0000000000000000000000000000000000000002")
	tx := &AccessListTx{
		LegacyTx: LegacyTx{
			CommonTx: CommonTx{
				Nonce:    5,
				GasLimit: 50000,
				To:       &to,
				Value:    uint256.NewInt(1),
				Data:     []byte{0x01, 0x02},
			},
			GasPrice: uint256.NewInt(9),
		},
		ChainID: uint256.NewInt(1),
		AccessList: AccessList{
			{Address: to, StorageKeys: []common.Hash{common.HexToHash("0x01")}},
		},
	}
	signer := MakeSigner(uint256.NewInt(1))
	signed := signTx(t, tx, signer)
	require.Equal(t, AccessListTxType, signed.Type())

	encoded, err := signed.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, byte(AccessListTxType), encoded[0])

	decoded, err := DecodeTransaction(encoded)
	require.NoError(t, err)
	require.Equal(t, signed.Hash(), decoded.Hash())
	require.Equal(t, 1, decoded.GetAccessList().StorageKeys())

	sender, err := decoded.Sender(signer)
	require.NoError(t, err)
	key, _ := crypto.HexToECDSA(testKeyHex)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), sender)
}

func TestDynamicFeeTxRoundTripAndEffectiveTip(t *testing.T) {
	to := common.HexToAddress("0x0000000000000000000000000000000000000003")
	tx := &DynamicFeeTx{
		CommonTx: CommonTx{
			Nonce:    1,
			GasLimit: 30000,
			To:       &to,
			Value:    uint256.NewInt(0),
			Data:     nil,
		},
		ChainID: uint256.NewInt(1),
		TipCap:  uint256.NewInt(2),
		FeeCap:  uint256.NewInt(10),
	}
	signer := MakeSigner(uint256.NewInt(1))
	signed := signTx(t, tx, signer)
	require.Equal(t, DynamicFeeTxType, signed.Type())

	encoded, err := signed.MarshalBinary()
	require.NoError(t, err)
	decoded, err := DecodeTransaction(encoded)
	require.NoError(t, err)
	require.Equal(t, signed.Hash(), decoded.Hash())

	dyn := decoded.(*DynamicFeeTx)
	tip, err := dyn.EffectiveGasTip(uint256.NewInt(3))
	require.NoError(t, err)
	require.True(t, tip.Eq(uint256.NewInt(2)))

	tip, err = dyn.EffectiveGasTip(uint256.NewInt(9))
	require.NoError(t, err)
	require.True(t, tip.Eq(uint256.NewInt(1)))

	_, err = dyn.EffectiveGasTip(uint256.NewInt(11))
	require.ErrorIs(t, err, ErrGasFeeCapTooLow)
}

func TestHashIsMemoized(t *testing.T) {
	tx := &LegacyTx{
		CommonTx: CommonTx{Nonce: 0, GasLimit: 21000, Value: uint256.NewInt(0)},
		GasPrice: uint256.NewInt(1),
	}
	h1 := tx.Hash()
	h2 := tx.Hash()
	require.Equal(t, h1, h2)
}
