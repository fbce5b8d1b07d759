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
	"fmt"

	"github.com/holiman/uint256"
)

// Stream is a forward-only cursor over an RLP payload, used by the
// per-transaction-type decoders (AccessListTx, DynamicFeeTx) instead of the
// reflective Decode path. It never copies: Bytes/ReadBytes return slices
// into the underlying payload.
type Stream struct {
	payload []byte
	pos     int
	// ends holds the byte offset one past the end of each currently open
	// list, innermost last, so ListEnd/AtEnd can tell when a nested list
	// or the top-level payload is exhausted.
	ends []int
}

// NewStream wraps payload for streaming decode.
func NewStream(payload []byte, pos int) *Stream {
	return &Stream{payload: payload, pos: pos}
}

// Pos returns the current cursor position.
func (s *Stream) Pos() int { return s.pos }

// Remaining reports whether there is any input left before the innermost
// open list (or the end of payload, if not currently in a list) ends.
func (s *Stream) Remaining() bool {
	if len(s.ends) == 0 {
		return s.pos < len(s.payload)
	}
	return s.pos < s.ends[len(s.ends)-1]
}

// List enters a list, returning its element count is not tracked (callers
// use Remaining/ListEnd to iterate), advancing the cursor to the first
// element.
func (s *Stream) List() error {
	dataPos, end, err := List(s.payload, s.pos)
	if err != nil {
		return err
	}
	s.ends = append(s.ends, end)
	s.pos = dataPos
	return nil
}

// ListEnd closes the innermost open list, advancing the cursor past it
// regardless of whether all its elements were consumed.
func (s *Stream) ListEnd() error {
	if len(s.ends) == 0 {
		return fmt.Errorf("%w: ListEnd without List", ErrMalformed)
	}
	end := s.ends[len(s.ends)-1]
	s.ends = s.ends[:len(s.ends)-1]
	s.pos = end
	return nil
}

// Uint reads a scalar as a uint64.
func (s *Stream) Uint() (uint64, error) {
	newPos, val, err := U64(s.payload, s.pos)
	if err != nil {
		return 0, err
	}
	s.pos = newPos
	return val, nil
}

// Bytes reads a byte string, returning a slice into the underlying payload.
func (s *Stream) Bytes() ([]byte, error) {
	newPos, val, err := String(s.payload, s.pos)
	if err != nil {
		return nil, err
	}
	s.pos = newPos
	return val, nil
}

// ReadBytes reads a byte string of exactly len(to) bytes into to, used for
// fixed-width fields (addresses, hashes, signature components) so callers
// don't allocate.
func (s *Stream) ReadBytes(to []byte) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	if len(b) != len(to) {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformed, len(to), len(b))
	}
	copy(to, b)
	return nil
}

// Uint256Bytes reads a scalar into a *uint256.Int, rejecting values that
// overflow 256 bits or carry a leading zero byte.
func (s *Stream) Uint256Bytes() (*uint256.Int, error) {
	b, err := s.Bytes()
	if err != nil {
		return nil, err
	}
	if len(b) > 32 {
		return nil, fmt.Errorf("%w: uint256 overflow", ErrMalformed)
	}
	if len(b) > 0 && b[0] == 0 {
		return nil, fmt.Errorf("%w: leading zero in uint256 scalar", ErrMalformed)
	}
	return new(uint256.Int).SetBytes(b), nil
}

// Raw returns the raw encoded bytes (header included) of the next element
// without advancing past it, used to compute AccessList/topic hashes.
func (s *Stream) Raw() ([]byte, error) {
	dataPos, dataLen, isList, err := Prefix(s.payload, s.pos)
	if err != nil {
		return nil, err
	}
	headerLen := dataPos - s.pos
	if isList {
		return s.payload[s.pos : dataPos+dataLen], nil
	}
	return s.payload[s.pos : s.pos+headerLen+dataLen], nil
}
