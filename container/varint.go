/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package container implements the patch file's outer envelope: the
// magic/version header and the base-128 varint encoding used for every
// length and offset inside it.
package container

import (
	"io"

	"github.com/accrescent/ina"
)

// maxVarintBytes bounds a varint at 10 groups of 7 bits, enough for any
// uint64, so a corrupt stream of 0x80 bytes cannot spin a reader forever.
const maxVarintBytes = 10

// PutUvarint appends the base-128 little-endian encoding of v to buf and
// returns the extended slice.
func PutUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}

	return append(buf, byte(v))
}

// PutVarint zig-zag maps a signed value (n >= 0 -> 2n, n < 0 -> 2|n|-1)
// and appends its unsigned varint encoding to buf.
func PutVarint(buf []byte, n int64) []byte {
	return PutUvarint(buf, zigzagEncode(n))
}

func zigzagEncode(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// ReadUvarint decodes a base-128 little-endian unsigned varint from r.
// io.EOF is returned only if the stream ends cleanly before any byte of
// the varint is read; any other truncation is reported as ErrMalformedVarint.
func ReadUvarint(r io.ByteReader) (uint64, error) {
	var result uint64
	var shift uint

	for i := 0; i < maxVarintBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if i == 0 && err == io.EOF {
				return 0, io.EOF
			}

			return 0, ina.WrapError(ina.ErrMalformedVarint, "truncated varint", err)
		}

		if i == maxVarintBytes-1 && b >= 0x02 {
			return 0, ina.NewError(ina.ErrMalformedVarint, "varint overflows 64 bits")
		}

		result |= uint64(b&0x7f) << shift

		if b < 0x80 {
			return result, nil
		}

		shift += 7
	}

	return 0, ina.NewError(ina.ErrMalformedVarint, "varint too long")
}

// ReadVarint decodes a zig-zag signed varint from r.
func ReadVarint(r io.ByteReader) (int64, error) {
	u, err := ReadUvarint(r)
	if err != nil {
		return 0, err
	}

	return zigzagDecode(u), nil
}
