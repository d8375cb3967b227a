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

package delta

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accrescent/ina"
	"github.com/accrescent/ina/patch"
)

func roundTrip(t *testing.T, oldWithSentinel, new []byte) []byte {
	t.Helper()
	require.Equal(t, byte(0), oldWithSentinel[len(oldWithSentinel)-1])

	var patchBuf bytes.Buffer
	require.NoError(t, Diff(oldWithSentinel, new, &patchBuf, patch.DefaultConfig()))

	old := oldWithSentinel[:len(oldWithSentinel)-1]
	var out bytes.Buffer
	n, err := Patch(bytes.NewReader(old), bytes.NewReader(patchBuf.Bytes()), &out)
	require.NoError(t, err)
	require.Equal(t, int64(len(new)), n)

	return out.Bytes()
}

func TestRoundTripHelloHero(t *testing.T) {
	got := roundTrip(t, []byte("Hello\x00"), []byte("Hero"))
	require.Equal(t, []byte("Hero"), got)
}

func TestRoundTripEmptyOld(t *testing.T) {
	got := roundTrip(t, []byte{0}, []byte("anything"))
	require.Equal(t, []byte("anything"), got)
}

func TestRoundTripIdentical(t *testing.T) {
	body := []byte("a medium length blob of bytes that repeats itself, repeats itself")
	oldWithSentinel := append(append([]byte{}, body...), 0)
	got := roundTrip(t, oldWithSentinel, body)
	require.Equal(t, body, got)
}

func TestRoundTripScatteredEdits(t *testing.T) {
	old := []byte("function foo(a, b) { return a + b; } function bar(x) { return x * 2; }")
	new := []byte("function foo(a, b) { return a - b; } function baz(x) { return x * 3; }")
	oldWithSentinel := append(append([]byte{}, old...), 0)
	got := roundTrip(t, oldWithSentinel, new)
	require.Equal(t, new, got)
}

func TestHeaderBadMagic(t *testing.T) {
	_, _, err := ReadHeader(bytes.NewReader([]byte{0, 0, 0, 0}))
	require.Error(t, err)

	var ierr *ina.Error
	require.ErrorAs(t, err, &ierr)
	require.Equal(t, ina.ErrBadMagic, ierr.Kind)
}

func TestHeaderReportsVersion(t *testing.T) {
	var patchBuf bytes.Buffer
	require.NoError(t, Diff([]byte{0}, []byte("x"), &patchBuf, patch.DefaultConfig()))

	major, minor, err := ReadHeader(bytes.NewReader(patchBuf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, ina.CurrentVersionMajor, major)
	require.Equal(t, ina.CurrentVersionMinor, minor)
}

func TestStreamingEquivalenceAcrossBufferSizes(t *testing.T) {
	old := bytes.Repeat([]byte("0123456789abcdef"), 4000)
	new := append(append([]byte{}, old[:30000]...), []byte("INSERTED-A-SMALL-RUN-OF-BYTES")...)
	new = append(new, old[30000:]...)

	oldWithSentinel := append(append([]byte{}, old...), 0)

	var patchBuf bytes.Buffer
	require.NoError(t, Diff(oldWithSentinel, new, &patchBuf, patch.DefaultConfig()))

	read := func(bufSize int) []byte {
		p, err := patch.NewPatcher(bytes.NewReader(old), bytes.NewReader(patchBuf.Bytes()))
		require.NoError(t, err)
		defer p.Close()

		var out []byte
		buf := make([]byte, bufSize)

		for {
			n, err := p.Read(buf)
			out = append(out, buf[:n]...)

			if err == io.EOF {
				break
			}

			require.NoError(t, err)
		}

		return out
	}

	onePass := read(1)
	bigPass := read(64 * 1024)
	require.Equal(t, onePass, bigPass)
	require.Equal(t, new, onePass)
}
