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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func buildList(items ...[]byte) []byte {
	var body []byte
	for _, it := range items {
		body = append(body, it...)
	}
	head := make([]byte, ListPrefixLen(len(body)))
	n := EncodeListPrefix(len(body), head)
	return append(head[:n], body...)
}

func encStr(s []byte) []byte {
	b := make([]byte, StringLen(s))
	EncodeString(s, b)
	return b
}

func encInt(i uint64) []byte {
	b := make([]byte, IntLen(i))
	EncodeInt(i, b)
	return b
}

func TestStreamListAndScalars(t *testing.T) {
	payload := buildList(encInt(42), encStr([]byte("hello")))
	s := NewStream(payload, 0)
	require.NoError(t, s.List())

	v, err := s.Uint()
	require.NoError(t, err)
	require.Equal(t, uint64(42), v)

	b, err := s.Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), b)

	require.False(t, s.Remaining())
	require.NoError(t, s.ListEnd())
	require.Equal(t, len(payload), s.Pos())
}

func TestStreamUint256Bytes(t *testing.T) {
	x := uint256.NewInt(0).SetAllOne()
	payload := encStr(x.Bytes())
	s := NewStream(payload, 0)
	got, err := s.Uint256Bytes()
	require.NoError(t, err)
	require.True(t, x.Eq(got))
}

func TestStreamUint256OverflowRejected(t *testing.T) {
	payload := encStr(make([]byte, 33))
	s := NewStream(payload, 0)
	_, err := s.Uint256Bytes()
	require.Error(t, err)
}

func TestStreamReadBytesLengthMismatch(t *testing.T) {
	payload := encStr([]byte{1, 2, 3})
	s := NewStream(payload, 0)
	var to [4]byte
	err := s.ReadBytes(to[:])
	require.Error(t, err)
}

func TestStreamNestedLists(t *testing.T) {
	inner := buildList(encInt(1), encInt(2))
	outer := buildList(inner, encInt(3))

	s := NewStream(outer, 0)
	require.NoError(t, s.List())
	require.NoError(t, s.List())
	a, err := s.Uint()
	require.NoError(t, err)
	require.Equal(t, uint64(1), a)
	b, err := s.Uint()
	require.NoError(t, err)
	require.Equal(t, uint64(2), b)
	require.NoError(t, s.ListEnd())
	c, err := s.Uint()
	require.NoError(t, err)
	require.Equal(t, uint64(3), c)
	require.NoError(t, s.ListEnd())
}
