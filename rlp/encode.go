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
	"bytes"
	"fmt"
	"io"
	"reflect"

	"github.com/holiman/uint256"
)

// Encoder is implemented by types that know how to write their own RLP
// encoding, mirroring the classic go-ethereum rlp.Encoder interface used by
// ad hoc composite values (fork-id messages, block headers).
type Encoder interface {
	EncodeRLP(w io.Writer) error
}

// Decoder is implemented by types that know how to populate themselves from
// a byte-position RLP stream.
type Decoder interface {
	DecodeRLP(payload []byte, pos int) (newPos int, err error)
}

// Encode writes the canonical RLP encoding of val to w. val may implement
// Encoder, be a []byte, a fixed-size byte array, a uint64/uint32, a
// *uint256.Int, a string, or a []interface{} whose elements recursively
// satisfy the same rules — enough to cover the ad hoc composite values used
// by prefixedRlpHash and the fork-id announcement message.
func Encode(w io.Writer, val interface{}) error {
	b, err := EncodeToBytes(val)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// EncodeToBytes returns the canonical RLP encoding of val.
func EncodeToBytes(val interface{}) ([]byte, error) {
	if enc, ok := val.(Encoder); ok {
		var buf bytes.Buffer
		if err := enc.EncodeRLP(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	switch v := val.(type) {
	case []byte:
		buf := make([]byte, StringLen(v))
		EncodeString(v, buf)
		return buf, nil
	case string:
		return EncodeToBytes([]byte(v))
	case uint64:
		buf := make([]byte, IntLen(v))
		EncodeInt(v, buf)
		return buf, nil
	case uint32:
		return EncodeToBytes(uint64(v))
	case int:
		if v < 0 {
			return nil, fmt.Errorf("rlp: cannot encode negative int")
		}
		return EncodeToBytes(uint64(v))
	case uint:
		return EncodeToBytes(uint64(v))
	case byte:
		return EncodeToBytes(uint64(v))
	case *uint256.Int:
		return encodeUint256Bytes(v)
	case uint256.Int:
		return encodeUint256Bytes(&v)
	case []interface{}:
		return encodeList(v)
	default:
		return encodeReflect(reflect.ValueOf(val))
	}
}

func encodeUint256Bytes(v *uint256.Int) ([]byte, error) {
	if v == nil {
		return EncodeToBytes(uint64(0))
	}
	return EncodeToBytes(v.Bytes())
}

func encodeList(items []interface{}) ([]byte, error) {
	var body []byte
	for _, item := range items {
		b, err := EncodeToBytes(item)
		if err != nil {
			return nil, err
		}
		body = append(body, b...)
	}
	head := make([]byte, ListPrefixLen(len(body)))
	n := EncodeListPrefix(len(body), head)
	return append(head[:n], body...), nil
}

// encodeReflect handles fixed-size byte arrays (common.Hash, common.Address)
// and slices/structs composed of encodable fields, covering the ad hoc
// values (block headers, [32]byte hashes) that flow through Encode without
// a hand-written Encoder.
func encodeReflect(rv reflect.Value) ([]byte, error) {
	switch rv.Kind() {
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return EncodeToBytes(b)
		}
	case reflect.Slice:
		items := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
		return encodeList(items)
	case reflect.Ptr:
		if rv.IsNil() {
			return EncodeToBytes([]byte{})
		}
		return encodeReflect(rv.Elem())
	case reflect.Struct:
		// Ad hoc struct values (AccessTuple and similar) encode as a list
		// of their exported fields in declaration order.
		items := make([]interface{}, 0, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			if !rv.Type().Field(i).IsExported() {
				continue
			}
			items = append(items, rv.Field(i).Interface())
		}
		return encodeList(items)
	}
	return nil, fmt.Errorf("rlp: cannot encode type %s", rv.Type())
}

// EncodeUint256 writes the canonical scalar encoding of x into w, matching
// AccessListTx's per-field encode calls.
func EncodeUint256(x *uint256.Int, w io.Writer, buf []byte) error {
	if x == nil {
		buf[0] = 0x80
		_, err := w.Write(buf[:1])
		return err
	}
	n := x.ByteLen()
	if n == 0 {
		buf[0] = 0x80
		_, err := w.Write(buf[:1])
		return err
	}
	b := x.Bytes()
	m := EncodeString(b, buf)
	_, err := w.Write(buf[:m])
	return err
}

// Uint256LenExcludingHead returns the byte length of x's big-endian body,
// excluding the RLP header. A value below 0x80 is its own single-byte
// encoding and reports 0, matching IntLenExcludingHead.
func Uint256LenExcludingHead(x *uint256.Int) int {
	if x == nil || x.BitLen() < 8 {
		return 0
	}
	return x.ByteLen()
}

// EncodeStructSizePrefix writes a list header for a struct/composite value
// of the given payload size, matching AccessListTx.EncodeRLP's header call.
func EncodeStructSizePrefix(size int, w io.Writer, buf []byte) error {
	n := EncodeListPrefix(size, buf)
	_, err := w.Write(buf[:n])
	return err
}

// EncodeOptionalAddress writes addr if non-nil, or the empty string
// otherwise, matching the `to *common.Address` "contract creation" case on
// every transaction variant.
func EncodeOptionalAddress(addr *[20]byte, w io.Writer, buf []byte) error {
	if addr == nil {
		buf[0] = 0x80
		_, err := w.Write(buf[:1])
		return err
	}
	n := EncodeString(addr[:], buf)
	_, err := w.Write(buf[:n])
	return err
}
