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
	"io"
)

// Decode reads the RLP encoding of val from r. val must be a Decoder, or a
// pointer to []byte, uint64 or uint32; any other target, including byte
// arrays and slices of values, returns an error.
func Decode(r io.Reader, val interface{}) error {
	payload, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if dec, ok := val.(Decoder); ok {
		_, err := dec.DecodeRLP(payload, 0)
		return err
	}
	switch v := val.(type) {
	case *[]byte:
		_, b, err := String(payload, 0)
		if err != nil {
			return err
		}
		*v = CopyOf(b)
		return nil
	case *uint64:
		_, n, err := U64(payload, 0)
		if err != nil {
			return err
		}
		*v = n
		return nil
	case *uint32:
		_, n, err := U32(payload, 0)
		if err != nil {
			return err
		}
		*v = n
		return nil
	default:
		return fmt.Errorf("rlp: unsupported decode target %T", val)
	}
}

// CopyOf returns an independent copy of b, since Stream/String slices
// alias the original payload.
func CopyOf(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
