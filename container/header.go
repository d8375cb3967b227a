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

package container

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/accrescent/ina"
)

// Magic identifies an ina patch file. It has no relationship to the
// content-sniffing magic numbers kanzi recognizes for file types; it is
// this format's own.
const Magic uint32 = 0x5C956C7C

// Header is the parsed, fixed-layout prefix of a patch file, up to and
// including the reserved data_offset region.
type Header struct {
	VersionMajor uint16
	VersionMinor uint16
}

// WriteHeader writes the magic, version, and a zero data_offset varint (no
// reserved bytes follow it in this build) to w.
func WriteHeader(w io.Writer, major, minor uint16) error {
	buf := make([]byte, 8, 9)
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint16(buf[4:6], major)
	binary.LittleEndian.PutUint16(buf[6:8], minor)
	buf = PutUvarint(buf, 0)

	if _, err := w.Write(buf); err != nil {
		return ina.WrapError(ina.ErrIO, "writing patch header", err)
	}

	return nil
}

// ReadHeader validates the magic, reads the version, and skips the
// data_offset region. It returns the parsed version along with the reader
// the caller must use for everything after: since the varint decoder
// needs single-byte reads, ReadHeader wraps r in a *bufio.Reader when r
// doesn't already provide ReadByte, and that wrapper - not r - is
// positioned at the first byte of the compressed payload.
func ReadHeader(r io.Reader) (Header, io.Reader, error) {
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}

	magicBuf := make([]byte, 4)
	if _, err := io.ReadFull(br, magicBuf); err != nil {
		return Header{}, nil, ina.NewError(ina.ErrBadMagic, "patch header too short for magic")
	}

	if got := binary.LittleEndian.Uint32(magicBuf); got != Magic {
		return Header{}, nil, ina.NewError(ina.ErrBadMagic, "patch header magic mismatch")
	}

	versionBuf := make([]byte, 4)
	if _, err := io.ReadFull(br, versionBuf); err != nil {
		return Header{}, nil, ina.WrapError(ina.ErrIO, "reading patch version", err)
	}

	h := Header{
		VersionMajor: binary.LittleEndian.Uint16(versionBuf[0:2]),
		VersionMinor: binary.LittleEndian.Uint16(versionBuf[2:4]),
	}

	if !ina.SupportedMajorVersions[h.VersionMajor] {
		return Header{}, nil, ina.NewError(ina.ErrUnsupportedVersion, "unsupported patch major version")
	}

	dataOffset, err := ReadUvarint(br)
	if err != nil {
		return Header{}, nil, ina.WrapError(ina.ErrIO, "reading data_offset", err)
	}

	if dataOffset > 0 {
		if _, err := io.CopyN(io.Discard, br, int64(dataOffset)); err != nil {
			return Header{}, nil, ina.WrapError(ina.ErrIO, "skipping reserved header bytes", err)
		}
	}

	return h, br, nil
}

// byteReader is the subset of *bufio.Reader that ReadHeader and the
// varint codec need; satisfied by anything that also implements
// io.Reader.
type byteReader interface {
	io.Reader
	io.ByteReader
}
