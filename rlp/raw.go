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

// Package rlp implements the canonical Recursive Length Prefix encoding used
// throughout the protocol.
//
// General design (matches the wire format exactly, no reflection on the hot
// path): a byte string encodes as itself when it is a single byte < 0x80;
// otherwise it is length-prefixed. Lists use the 0xc0 family analogously.
// Integers encode as the shortest big-endian "scalar" form with no leading
// zero byte; zero encodes as the empty string.
//
// This file holds the position-based, allocation-free primitives: callers
// own the buffers, encode functions write into a slice and return the
// number of bytes written, decode functions accept a payload and a
// position and return the new position.
package rlp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

// ErrMalformed is returned for any input that isn't canonical RLP: an
// under/overrun, a non-minimal scalar, or a length that doesn't fit.
var ErrMalformed = errors.New("rlp: malformed input")

// EOL is returned by decode primitives when a list has been exhausted.
var EOL = errors.New("rlp: end of list")

// ListPrefixLen returns the number of bytes a list header for a payload of
// dataLen bytes occupies.
func ListPrefixLen(dataLen int) int {
	if dataLen >= 56 {
		return 1 + (bits.Len64(uint64(dataLen))+7)/8
	}
	return 1
}

// EncodeListPrefix writes the list header for a payload of dataLen bytes
// into to and returns the number of bytes written.
func EncodeListPrefix(dataLen int, to []byte) int {
	if dataLen >= 56 {
		beLen := (bits.Len64(uint64(dataLen)) + 7) / 8
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], uint64(dataLen))
		to[0] = 247 + byte(beLen)
		copy(to[1:], tmp[8-beLen:])
		return 1 + beLen
	}
	to[0] = 192 + byte(dataLen)
	return 1
}

// StringLen returns the number of bytes needed to encode s as an RLP
// string, header included.
func StringLen(s []byte) int {
	switch {
	case len(s) == 0:
		return 1
	case len(s) == 1:
		if s[0] < 0x80 {
			return 1
		}
		return 2
	case len(s) < 56:
		return 1 + len(s)
	default:
		return 1 + (bits.Len(uint(len(s)))+7)/8 + len(s)
	}
}

// EncodeString writes the canonical RLP string encoding of s into to and
// returns the number of bytes written.
func EncodeString(s []byte, to []byte) int {
	switch {
	case len(s) == 0:
		to[0] = 0x80
		return 1
	case len(s) == 1 && s[0] < 0x80:
		to[0] = s[0]
		return 1
	case len(s) < 56:
		to[0] = 0x80 + byte(len(s))
		copy(to[1:], s)
		return 1 + len(s)
	default:
		beLen := (bits.Len(uint(len(s))) + 7) / 8
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], uint64(len(s)))
		to[0] = 0xb7 + byte(beLen)
		copy(to[1:], tmp[8-beLen:])
		copy(to[1+beLen:], s)
		return 1 + beLen + len(s)
	}
}

// IntLenExcludingHead returns the number of bytes needed for the scalar
// body of i, excluding the single-byte header a value < 128 shares with it.
func IntLenExcludingHead(i uint64) int {
	if i < 128 {
		return 0
	}
	return (bits.Len64(i) + 7) / 8
}

// IntLen returns the full encoded length (header included) of scalar i.
func IntLen(i uint64) int {
	if i < 0x80 {
		return 1
	}
	return 1 + IntLenExcludingHead(i)
}

// EncodeInt writes the canonical scalar encoding of i (no leading zero
// bytes, empty string for zero) into to and returns bytes written.
func EncodeInt(i uint64, to []byte) int {
	if i == 0 {
		to[0] = 0x80
		return 1
	}
	if i < 0x80 {
		to[0] = byte(i)
		return 1
	}
	beLen := (bits.Len64(i) + 7) / 8
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], i)
	to[0] = 0x80 + byte(beLen)
	copy(to[1:], tmp[8-beLen:])
	return 1 + beLen
}

// beInt parses a big-endian integer of the given byte length starting at
// pos, rejecting any encoding that carries a leading zero byte (RLP scalars
// must be minimal).
func beInt(payload []byte, pos, length int) (int, error) {
	if pos+length > len(payload) {
		return 0, fmt.Errorf("%w: int out of bounds", ErrMalformed)
	}
	if length > 0 && payload[pos] == 0 {
		return 0, fmt.Errorf("%w: leading zero in scalar %x", ErrMalformed, payload[pos:pos+length])
	}
	var r int
	for _, b := range payload[pos : pos+length] {
		r = (r << 8) | int(b)
	}
	return r, nil
}

// Prefix parses the RLP header at pos and reports where the payload starts,
// how long it is, and whether it is a list.
func Prefix(payload []byte, pos int) (dataPos, dataLen int, isList bool, err error) {
	if pos >= len(payload) {
		return 0, 0, false, fmt.Errorf("%w: prefix out of bounds", ErrMalformed)
	}
	switch first := payload[pos]; {
	case first < 0x80:
		return pos, 1, false, nil
	case first < 0xb8:
		return pos + 1, int(first) - 0x80, false, nil
	case first < 0xc0:
		beLen := int(first) - 0xb7
		dataPos = pos + 1 + beLen
		dataLen, err = beInt(payload, pos+1, beLen)
		if err == nil && dataLen < 56 {
			err = fmt.Errorf("%w: non-minimal long string length", ErrMalformed)
		}
		return dataPos, dataLen, false, err
	case first < 0xf8:
		return pos + 1, int(first) - 0xc0, true, nil
	default:
		beLen := int(first) - 0xf7
		dataPos = pos + 1 + beLen
		dataLen, err = beInt(payload, pos+1, beLen)
		if err == nil && dataLen < 56 {
			err = fmt.Errorf("%w: non-minimal long list length", ErrMalformed)
		}
		return dataPos, dataLen, true, err
	}
}

// U64 parses a scalar into a uint64, returning the position right after it.
func U64(payload []byte, pos int) (newPos int, val uint64, err error) {
	dataPos, dataLen, isList, err := Prefix(payload, pos)
	if err != nil {
		return 0, 0, err
	}
	if isList {
		return 0, 0, fmt.Errorf("%w: expected scalar, got list", ErrMalformed)
	}
	if dataLen > 8 {
		return 0, 0, fmt.Errorf("%w: uint64 overflow", ErrMalformed)
	}
	if dataPos+dataLen > len(payload) {
		return 0, 0, fmt.Errorf("%w: scalar out of bounds", ErrMalformed)
	}
	if dataLen > 0 && payload[dataPos] == 0 {
		return 0, 0, fmt.Errorf("%w: leading zero in scalar", ErrMalformed)
	}
	if dataLen == 1 && dataPos != pos && payload[dataPos] < 0x80 {
		return 0, 0, fmt.Errorf("%w: non-canonical single-byte scalar", ErrMalformed)
	}
	for _, b := range payload[dataPos : dataPos+dataLen] {
		val = (val << 8) | uint64(b)
	}
	return dataPos + dataLen, val, nil
}

// U32 parses a scalar into a uint32.
func U32(payload []byte, pos int) (newPos int, val uint32, err error) {
	newPos, v, err := U64(payload, pos)
	if err != nil {
		return 0, 0, err
	}
	if v > 0xffffffff {
		return 0, 0, fmt.Errorf("%w: uint32 overflow", ErrMalformed)
	}
	return newPos, uint32(v), nil
}

// String parses an RLP string (byte slice) at pos, returning a slice into
// payload (no copy) and the position right after it.
func String(payload []byte, pos int) (newPos int, val []byte, err error) {
	dataPos, dataLen, isList, err := Prefix(payload, pos)
	if err != nil {
		return 0, nil, err
	}
	if isList {
		return 0, nil, fmt.Errorf("%w: expected string, got list", ErrMalformed)
	}
	if dataPos+dataLen > len(payload) {
		return 0, nil, fmt.Errorf("%w: string out of bounds", ErrMalformed)
	}
	return dataPos + dataLen, payload[dataPos : dataPos+dataLen], nil
}

// List parses a list header at pos, returning the position of the first
// element and the position right after the whole list.
func List(payload []byte, pos int) (dataPos, end int, err error) {
	dp, dataLen, isList, err := Prefix(payload, pos)
	if err != nil {
		return 0, 0, err
	}
	if !isList {
		return 0, 0, fmt.Errorf("%w: expected list, got string", ErrMalformed)
	}
	if dp+dataLen > len(payload) {
		return 0, 0, fmt.Errorf("%w: list out of bounds", ErrMalformed)
	}
	return dp, dp + dataLen, nil
}
