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

package patch

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accrescent/ina"
)

func writePatch(t *testing.T, controls []ina.Control) []byte {
	t.Helper()
	var buf bytes.Buffer

	w, err := NewWriter(&buf, DefaultConfig())
	require.NoError(t, err)

	for _, c := range controls {
		require.NoError(t, w.WriteControl(c))
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestWriterReaderRoundTrip(t *testing.T) {
	old := []byte("the quick brown fox jumps over the lazy dog")
	controls := []ina.Control{
		{Add: []byte{0, 0, 0, 0, 0}, Copy: []byte("XX"), Seek: 0},
		{Add: make([]byte, len(old)-5), Copy: nil, Seek: 0},
	}

	raw := writePatch(t, controls)

	p, err := NewPatcher(bytes.NewReader(old), bytes.NewReader(raw))
	require.NoError(t, err)
	defer p.Close()

	got, err := io.ReadAll(p)
	require.NoError(t, err)

	want := append(append([]byte{}, old[:5]...), 'X', 'X')
	want = append(want, old[5:]...)
	require.Equal(t, want, got)
}

func TestPatcherHonorsSeek(t *testing.T) {
	old := []byte("AAAAAAAAAABBBBBBBBBBCCCCCCCCCC")
	controls := []ina.Control{
		{Add: make([]byte, 10), Copy: nil, Seek: 10}, // skip the B run entirely
		{Add: make([]byte, 10), Copy: nil, Seek: 0},
	}

	raw := writePatch(t, controls)
	p, err := NewPatcher(bytes.NewReader(old), bytes.NewReader(raw))
	require.NoError(t, err)
	defer p.Close()

	got, err := io.ReadAll(p)
	require.NoError(t, err)
	require.Equal(t, []byte("AAAAAAAAAACCCCCCCCCC"), got)
}

func TestPatcherTinyReadBuffer(t *testing.T) {
	old := bytes.Repeat([]byte{'z'}, 4096)
	controls := []ina.Control{
		{Add: make([]byte, 4096), Copy: []byte("tail"), Seek: 0},
	}

	raw := writePatch(t, controls)
	p, err := NewPatcher(bytes.NewReader(old), bytes.NewReader(raw))
	require.NoError(t, err)
	defer p.Close()

	var got []byte
	buf := make([]byte, 1)

	for {
		n, err := p.Read(buf)
		got = append(got, buf[:n]...)

		if err == io.EOF {
			break
		}

		require.NoError(t, err)
	}

	want := append(bytes.Repeat([]byte{'z'}, 4096), []byte("tail")...)
	require.Equal(t, want, got)
}

func TestPatcherTruncatedFrameIsError(t *testing.T) {
	old := []byte("hello world")
	controls := []ina.Control{
		{Add: []byte{0, 0, 0}, Copy: []byte("abc"), Seek: 0},
	}

	raw := writePatch(t, controls)
	truncatedRaw := raw[:len(raw)-2] // cut the zstd frame short

	p, err := NewPatcher(bytes.NewReader(old), bytes.NewReader(truncatedRaw))
	require.NoError(t, err)
	defer p.Close()

	_, err = io.ReadAll(p)
	require.Error(t, err)
}

func TestNewPatcherRejectsBadMagic(t *testing.T) {
	_, err := NewPatcher(bytes.NewReader(nil), bytes.NewReader([]byte("not a patch file@@@")))
	require.Error(t, err)

	var ierr *ina.Error
	require.ErrorAs(t, err, &ierr)
	require.Equal(t, ina.ErrBadMagic, ierr.Kind)
}
