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

package match

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accrescent/ina/sais"
)

// reconstruct replays a region sequence against old/new and reassembles
// new, proving the regions cover it edge to edge with no gap or overlap.
func reconstruct(t *testing.T, old, new []byte, regions []Region) []byte {
	t.Helper()
	out := make([]byte, 0, len(new))
	prevEnd := 0

	for _, r := range regions {
		require.Equal(t, prevEnd, r.AddNewPos, "region must start where the previous one's copy ended")
		out = append(out, new[r.AddNewPos:r.AddNewPos+r.AddLen]...)
		out = append(out, new[r.AddNewPos+r.AddLen:r.CopyEnd]...)
		prevEnd = r.CopyEnd
	}

	return out
}

func runMatcher(old, new []byte) []Region {
	sa := sais.New(old)
	m := NewMatcher(old[:len(old)-1], new, sa)
	var regions []Region

	for {
		r, ok := m.Next()
		if !ok {
			break
		}
		regions = append(regions, r)
	}

	return regions
}

func TestMatcherCoversIdenticalInput(t *testing.T) {
	old := []byte("the quick brown fox jumps over the lazy dog\x00")
	new := []byte("the quick brown fox jumps over the lazy dog")

	regions := runMatcher(old, new)
	require.NotEmpty(t, regions)
	require.Equal(t, new, reconstruct(t, old[:len(old)-1], new, regions))
	require.Equal(t, len(new), regions[len(regions)-1].CopyEnd)
}

func TestMatcherCoversSmallEdit(t *testing.T) {
	old := []byte("AAAAAAAAAABBBBBBBBBBCCCCCCCCCC\x00")
	new := []byte("AAAAAAAAAAXXBBBBBBBBBBCCCCCCCCCC")

	regions := runMatcher(old, new)
	require.Equal(t, new, reconstruct(t, old[:len(old)-1], new, regions))
}

func TestMatcherCoversWhollyUnrelatedInput(t *testing.T) {
	old := []byte("0123456789\x00")
	new := []byte("zyxwvutsrq")

	regions := runMatcher(old, new)
	require.Equal(t, new, reconstruct(t, old[:len(old)-1], new, regions))
}

func TestMatcherEmptyNew(t *testing.T) {
	old := []byte("anything\x00")
	sa := sais.New(old)
	m := NewMatcher(old[:len(old)-1], nil, sa)

	_, ok := m.Next()
	require.False(t, ok)
}
