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

// Package crypto wraps keccak256 hashing and secp256k1 signing/recovery for
// transaction hashing and sender recovery. It carries no dependency on any
// wallet or key-management concern beyond the raw primitives the mempool and
// codec need.
package crypto

import (
	"bufio"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"math/big"
	"os"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/coldbit-labs/evmpool/common"
)

// DigestLength is the length of a keccak256 digest.
const DigestLength = 32

var errInvalidPubkey = errors.New("invalid secp256k1 public key")

// KeccakState wraps a keccak256 hash.Hash and additionally exposes Read,
// which enables us to read exactly one digest's worth of output without
// allocating (sha3's Sum implementation allocates every call).
type KeccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// NewKeccakState returns a fresh KeccakState, suitable for pooling by
// callers that hash many values in sequence.
func NewKeccakState() KeccakState {
	return sha3.NewLegacyKeccak256().(KeccakState)
}

// HashData hashes data into a 32-byte digest using an existing hasher
// instance, resetting it first so the caller can reuse it across calls.
func HashData(kh KeccakState, data []byte) (h common.Hash) {
	kh.Reset()
	kh.Write(data)
	kh.Read(h[:])
	return h
}

// Keccak256 calculates and returns the keccak256 hash of the concatenated
// inputs.
func Keccak256(data ...[]byte) []byte {
	b := make([]byte, DigestLength)
	d := NewKeccakState()
	for _, b := range data {
		d.Write(b)
	}
	d.Read(b)
	return b
}

// Keccak256Hash calculates and returns the keccak256 hash of the
// concatenated inputs, and returns it as a common.Hash.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	d := NewKeccakState()
	for _, b := range data {
		d.Write(b)
	}
	d.Read(h[:])
	return h
}

// CreateAddress creates the deterministic contract-creation address of the
// account with the given nonce, keccak256(rlp([sender, nonce]))[12:].
func CreateAddress(b common.Address, nonce uint64) common.Address {
	buf := make([]byte, 0, 1+21+9)
	// list([sender, nonce]) encoded inline, avoiding a dependency from
	// crypto on the rlp package.
	nonceBytes := big.NewInt(0).SetUint64(nonce).Bytes()
	senderField := append([]byte{0x80 + 20}, b[:]...)
	var nonceField []byte
	switch {
	case nonce == 0:
		nonceField = []byte{0x80}
	case len(nonceBytes) == 1 && nonceBytes[0] < 0x80:
		nonceField = nonceBytes
	default:
		nonceField = append([]byte{0x80 + byte(len(nonceBytes))}, nonceBytes...)
	}
	payload := append(senderField, nonceField...)
	if len(payload) < 56 {
		buf = append(buf, 0xc0+byte(len(payload)))
	} else {
		lenBytes := big.NewInt(int64(len(payload))).Bytes()
		buf = append(buf, 0xf7+byte(len(lenBytes)))
		buf = append(buf, lenBytes...)
	}
	buf = append(buf, payload...)
	return common.BytesToAddress(Keccak256(buf)[12:])
}

// S256 returns the secp256k1 curve, used only for ecdsa.PublicKey.Curve
// bookkeeping — actual signing/recovery goes through libsecp256k1.
func S256() elliptic.Curve {
	return secp256k1Curve
}

// ToECDSA creates a private key with the given D value.
func ToECDSA(d []byte) (*ecdsa.PrivateKey, error) {
	return toECDSA(d, true)
}

// ToECDSAUnsafe blindly converts a binary blob to a private key, skipping
// all the validation steps. It is meant for reading keys from disk.
func ToECDSAUnsafe(d []byte) *ecdsa.PrivateKey {
	priv, _ := toECDSA(d, false)
	return priv
}

func toECDSA(d []byte, strict bool) (*ecdsa.PrivateKey, error) {
	priv := new(ecdsa.PrivateKey)
	priv.PublicKey.Curve = S256()
	if strict && 8*len(d) != priv.Params().BitSize {
		return nil, fmt.Errorf("invalid length, need %d bits", priv.Params().BitSize)
	}
	priv.D = new(big.Int).SetBytes(d)

	if priv.D.Cmp(secp256k1NBig) >= 0 {
		return nil, errors.New("invalid private key, >=N")
	}
	if priv.D.Sign() <= 0 {
		return nil, errors.New("invalid private key, zero or negative")
	}

	priv.PublicKey.X, priv.PublicKey.Y = priv.PublicKey.Curve.ScalarBaseMult(d)
	if priv.PublicKey.X == nil {
		return nil, errors.New("invalid private key")
	}
	return priv, nil
}

// FromECDSA exports a private key into a binary dump.
func FromECDSA(priv *ecdsa.PrivateKey) []byte {
	if priv == nil {
		return nil
	}
	return math256Bytes(priv.D)
}

func math256Bytes(b *big.Int) []byte {
	blob := make([]byte, 32)
	bb := b.Bytes()
	copy(blob[32-len(bb):], bb)
	return blob
}

// UnmarshalPubkey converts bytes to a secp256k1 public key.
func UnmarshalPubkey(pub []byte) (*ecdsa.PublicKey, error) {
	x, y := elliptic.Unmarshal(S256(), pub)
	if x == nil {
		return nil, errInvalidPubkey
	}
	return &ecdsa.PublicKey{Curve: S256(), X: x, Y: y}, nil
}

// UnmarshalPubkeyStd converts an uncompressed 65-byte recovered public key
// (the shape secp256k1.RecoverPubkey returns) into an *ecdsa.PublicKey.
func UnmarshalPubkeyStd(pub []byte) (*ecdsa.PublicKey, error) {
	return UnmarshalPubkey(pub)
}

// MarshalPubkey converts a public key to the uncompressed form specified in
// section 4.3.6 of ANSI X9.62.
func MarshalPubkey(pub *ecdsa.PublicKey) []byte {
	return elliptic.Marshal(S256(), pub.X, pub.Y)
}

// PubkeyToAddress derives the 20-byte account address for pub.
func PubkeyToAddress(p ecdsa.PublicKey) common.Address {
	pubBytes := MarshalPubkey(&p)
	return common.BytesToAddress(Keccak256(pubBytes[1:])[12:])
}

// GenerateKey generates a new private key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	for {
		seed := make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, seed); err != nil {
			return nil, err
		}
		if key, err := toECDSA(seed, true); err == nil {
			return key, nil
		}
	}
}

// HexToECDSA parses a secp256k1 private key encoded as a hex string.
func HexToECDSA(hexkey string) (*ecdsa.PrivateKey, error) {
	b, err := hex.DecodeString(stripHexPrefix(hexkey))
	if err != nil {
		return nil, errors.New("invalid hex string")
	}
	if len(b) != 32 {
		return nil, errors.New("invalid length, need 256 bits")
	}
	return ToECDSA(b)
}

// LoadECDSA loads a secp256k1 private key from the given file.
func LoadECDSA(file string) (*ecdsa.PrivateKey, error) {
	fd, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	r := bufio.NewReader(fd)
	buf := make([]byte, 64)
	n, err := readASCII(buf, r)
	if err != nil {
		return nil, err
	} else if n != len(buf) {
		return nil, fmt.Errorf("key file too short, want 64 hex characters")
	}
	if err := checkKeyFileEnd(r); err != nil {
		return nil, err
	}

	return HexToECDSA(string(buf))
}

func readASCII(buf []byte, r *bufio.Reader) (n int, err error) {
	for ; n < len(buf); n++ {
		buf[n], err = r.ReadByte()
		switch {
		case err == io.EOF || buf[n] < '!':
			return n, nil
		case err != nil:
			return n, err
		}
	}
	return n, nil
}

func checkKeyFileEnd(r *bufio.Reader) error {
	for i := 0; ; i++ {
		b, err := r.ReadByte()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		case b != '\n' && b != '\r':
			return fmt.Errorf("invalid character %q at end of key file", b)
		case i >= 2:
			return errors.New("key file too long, want 64 hex characters")
		}
	}
}

// SaveECDSA saves a secp256k1 private key to the given file, hex-encoded.
func SaveECDSA(file string, key *ecdsa.PrivateKey) error {
	k := fmt.Sprintf("%x", FromECDSA(key))
	return os.WriteFile(file, []byte(k), 0600)
}

// stripHexPrefix mirrors go-ethereum's hexutil "0x"-tolerant decode, kept
// local since JSON-RPC hex helpers are otherwise out of scope.
func stripHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}
