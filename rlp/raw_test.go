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

package rlp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeStringRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{0x7f},
		{0x80},
		[]byte("dog"),
		make([]byte, 55),
		make([]byte, 56),
		make([]byte, 1024),
	}
	for _, c := range cases {
		buf := make([]byte, StringLen(c))
		n := EncodeString(c, buf)
		require.Equal(t, len(buf), n)
		newPos, val, err := String(buf, 0)
		require.NoError(t, err)
		require.Equal(t, len(buf), newPos)
		require.Equal(t, c, val)
	}
}

func TestEncodeIntRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 255, 256, 0xffffffff, 1<<63 - 1}
	for _, c := range cases {
		buf := make([]byte, IntLen(c))
		n := EncodeInt(c, buf)
		require.Equal(t, len(buf), n)
		newPos, val, err := U64(buf, 0)
		require.NoError(t, err)
		require.Equal(t, len(buf), newPos)
		require.Equal(t, c, val)
	}
}

func TestEncodeListPrefix(t *testing.T) {
	cases := []int{0, 1, 55, 56, 1024}
	for _, dataLen := range cases {
		buf := make([]byte, ListPrefixLen(dataLen))
		n := EncodeListPrefix(dataLen, buf)
		require.Equal(t, len(buf), n)
		dataPos, gotLen, isList, err := Prefix(append(buf, make([]byte, dataLen)...), 0)
		require.NoError(t, err)
		require.True(t, isList)
		require.Equal(t, dataLen, gotLen)
		require.Equal(t, len(buf), dataPos)
	}
}

func TestNonMinimalScalarRejected(t *testing.T) {
	// A single leading zero byte in front of 0x01 is a non-canonical
	// encoding of the scalar 1 and must be rejected.
	payload := []byte{0x82, 0x00, 0x01}
	_, _, err := U64(payload, 0)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformed))
}

func TestNonCanonicalSingleByteScalarRejected(t *testing.T) {
	// 0x05 must be self-encoded as the byte 0x05, never wrapped in a
	// length-1 string header.
	payload := []byte{0x81, 0x05}
	_, _, err := U64(payload, 0)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformed))

	// A value >= 0x80 has no self-encoded form and must use the header.
	payload = []byte{0x81, 0x85}
	newPos, val, err := U64(payload, 0)
	require.NoError(t, err)
	require.Equal(t, 2, newPos)
	require.Equal(t, uint64(0x85), val)
}

func TestNonMinimalLengthRejected(t *testing.T) {
	// A long-string header claiming a length under 56 is non-canonical:
	// that length should have used the short-string form.
	payload := []byte{0xb8, 10}
	payload = append(payload, make([]byte, 10)...)
	_, _, _, err := Prefix(payload, 0)
	require.Error(t, err)
}

func TestListNesting(t *testing.T) {
	inner := make([]byte, StringLen([]byte("cat")))
	EncodeString([]byte("cat"), inner)
	outerBody := append(append([]byte{}, inner...), func() []byte {
		b := make([]byte, StringLen([]byte("dog")))
		EncodeString([]byte("dog"), b)
		return b
	}()...)
	head := make([]byte, ListPrefixLen(len(outerBody)))
	n := EncodeListPrefix(len(outerBody), head)
	full := append(head[:n], outerBody...)

	dataPos, end, err := List(full, 0)
	require.NoError(t, err)
	require.Equal(t, len(full), end)

	pos, first, err := String(full, dataPos)
	require.NoError(t, err)
	require.Equal(t, []byte("cat"), first)

	_, second, err := String(full, pos)
	require.NoError(t, err)
	require.Equal(t, []byte("dog"), second)
}
