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
	"encoding/hex"
	"os"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/coldbit-labs/evmpool/common"
)

const (
	testAddrHex = "970e8128ab834e8eac17ab8e3812f010678cf791"
	testPrivHex = "289c2857d4598e37fb9647507e47a309d6133539bf21a8b9cb6df88fd5232032"
)

// This is a sanity check ensuring Keccak256 hasn't drifted onto the wrong
// sha3 variant.
func TestKeccak256Hash(t *testing.T) {
	exp, err := hex.DecodeString("4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45")
	require.NoError(t, err)
	h := Keccak256Hash([]byte("abc"))
	require.Equal(t, exp, h.Bytes())
}

func TestKeccak256HasherMulti(t *testing.T) {
	hasher := NewKeccakState()
	hasher.Write([]byte{0x12, 0x34})
	hasher.Write([]byte{0xca, 0xfe})
	hasher.Write([]byte{0xba, 0xbe})
	var h common.Hash
	hasher.Read(h[:])
	require.NotEqual(t, common.Hash{}, h)
}

func TestToECDSAErrors(t *testing.T) {
	_, err := HexToECDSA("0000000000000000000000000000000000000000000000000000000000000000")
	require.Error(t, err)
	_, err = HexToECDSA("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	require.Error(t, err)
}

func TestUnmarshalPubkey(t *testing.T) {
	_, err := UnmarshalPubkey(nil)
	require.ErrorIs(t, err, errInvalidPubkey)
	_, err = UnmarshalPubkey([]byte{1, 2, 3})
	require.ErrorIs(t, err, errInvalidPubkey)
}

func TestSignAndRecover(t *testing.T) {
	key, err := HexToECDSA(testPrivHex)
	require.NoError(t, err)
	addr := common.HexToAddress(testAddrHex)

	msg := Keccak256([]byte("foo"))
	sig, err := Sign(msg, key)
	require.NoError(t, err)

	recoveredPub, err := Ecrecover(msg, sig)
	require.NoError(t, err)
	pubKey, err := UnmarshalPubkeyStd(recoveredPub)
	require.NoError(t, err)
	require.Equal(t, addr, PubkeyToAddress(*pubKey))

	recoveredPub2, err := SigToPub(msg, sig)
	require.NoError(t, err)
	require.Equal(t, addr, PubkeyToAddress(*recoveredPub2))

	require.True(t, VerifySignature(MarshalPubkey(&key.PublicKey), msg, sig[:64]))
}

func TestInvalidSign(t *testing.T) {
	_, err := Sign(make([]byte, 1), nil)
	require.Error(t, err)
	_, err = Sign(make([]byte, 33), nil)
	require.Error(t, err)
}

func TestSaveAndLoadECDSA(t *testing.T) {
	f, err := os.CreateTemp("", "saveecdsa_test.*.txt")
	require.NoError(t, err)
	file := f.Name()
	f.Close()
	defer os.Remove(file)

	key, err := HexToECDSA(testPrivHex)
	require.NoError(t, err)
	require.NoError(t, SaveECDSA(file, key))

	loaded, err := LoadECDSA(file)
	require.NoError(t, err)
	require.Equal(t, key.D, loaded.D)
}

func TestLoadECDSAShortKey(t *testing.T) {
	f, err := os.CreateTemp("", "loadecdsa_test.*.txt")
	require.NoError(t, err)
	filename := f.Name()
	defer os.Remove(filename)
	f.WriteString("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcde")
	f.Close()

	_, err = LoadECDSA(filename)
	require.Error(t, err)
}

func TestValidateSignatureValues(t *testing.T) {
	one := uint256.NewInt(1)
	zero := uint256.NewInt(0)
	secp256k1nMinus1 := new(uint256.Int).Sub(secp256k1N, one)

	require.True(t, ValidateSignatureValues(0, one, one, true))
	require.True(t, ValidateSignatureValues(1, one, one, true))
	require.False(t, ValidateSignatureValues(2, one, one, true))
	require.False(t, ValidateSignatureValues(0, zero, zero, true))
	require.False(t, ValidateSignatureValues(0, secp256k1nMinus1, secp256k1nMinus1, true))
	require.False(t, ValidateSignatureValues(0, secp256k1N, secp256k1nMinus1, true))
}

func TestCreateAddress(t *testing.T) {
	addr := common.HexToAddress(testAddrHex)
	a0 := CreateAddress(addr, 0)
	a1 := CreateAddress(addr, 1)
	require.NotEqual(t, a0, a1)
}
