// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package common

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

const (
	HashLength    = 32
	AddressLength = 20
)

// Hash represents the 32-byte keccak256 output used throughout the protocol
// as a block/transaction identifier and as a 32-byte storage key.
type Hash [HashLength]byte

func BytesToHash(b []byte) (h Hash) {
	h.SetBytes(b)
	return h
}

func HexToHash(s string) Hash { return BytesToHash(FromHex(s)) }

func (h Hash) Bytes() []byte  { return h[:] }
func (h Hash) String() string { return h.Hex() }
func (h Hash) Hex() string    { return "0x" + hex.EncodeToString(h[:]) }

// SetBytes sets the hash to the value of b, right-aligned, truncating from
// the left if b is longer than the hash.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

func (h Hash) Cmp(other Hash) int { return bytes.Compare(h[:], other[:]) }

// Address represents the 20-byte address derived from the low bytes of a
// keccak256 hash of an uncompressed secp256k1 public key.
type Address [AddressLength]byte

func BytesToAddress(b []byte) (a Address) {
	a.SetBytes(b)
	return a
}

func HexToAddress(s string) Address { return BytesToAddress(FromHex(s)) }

func (a Address) Bytes() []byte  { return a[:] }
func (a Address) String() string { return a.Hex() }
func (a Address) Hex() string    { return "0x" + hex.EncodeToString(a[:]) }

func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

func (a Address) Cmp(other Address) int { return bytes.Compare(a[:], other[:]) }

// FromHex decodes s as a hex string, tolerating an optional "0x"/"0X" prefix
// and an odd number of digits (as RLP scalars sometimes produce).
func FromHex(s string) []byte {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// CopyBytes returns an independent copy of b.
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// Addresses is a slice of Address implementing sort.Interface.
type Addresses []Address

func (a Addresses) Len() int           { return len(a) }
func (a Addresses) Less(i, j int) bool { return bytes.Compare(a[i][:], a[j][:]) < 0 }
func (a Addresses) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }

// Hashes is a slice of Hash implementing sort.Interface.
type Hashes []Hash

func (h Hashes) Len() int           { return len(h) }
func (h Hashes) Less(i, j int) bool { return bytes.Compare(h[i][:], h[j][:]) < 0 }
func (h Hashes) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

var _ fmt.Stringer = Address{}
