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

package sais

import "sort"

// SuffixArray pairs a borrowed byte blob with its suffix array and answers
// longest-common-prefix queries against it. It is built once and is
// immutable and safe for concurrent read-only use thereafter.
type SuffixArray struct {
	data []byte
	sa   []uint32
}

// New builds a SuffixArray over data, which must end in a zero sentinel
// byte (see Build). The blob is borrowed, not copied: it must outlive the
// SuffixArray.
func New(data []byte) *SuffixArray {
	return &SuffixArray{data: data, sa: Build(data)}
}

// Len returns the number of indexed suffixes (== len(data)).
func (s *SuffixArray) Len() int {
	return len(s.sa)
}

// At returns the starting offset of the i-th suffix in lexicographic order.
func (s *SuffixArray) At(i int) uint32 {
	return s.sa[i]
}

// commonPrefixLen returns how many leading bytes a and b share.
func commonPrefixLen(a, b []byte) int {
	n := len(a)

	if len(b) < n {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}

	return n
}

// comparePrefix orders suffix against pattern, truncating suffix to
// min(len(suffix), len(pattern)) bytes before comparing - a -1/0/1
// result, per the spec's "truncate to the query length" rule.
func comparePrefix(suffix, pattern []byte) int {
	n := len(pattern)

	if len(suffix) < n {
		n = len(suffix)
	}

	for i := 0; i < n; i++ {
		if suffix[i] < pattern[i] {
			return -1
		}

		if suffix[i] > pattern[i] {
			return 1
		}
	}

	if len(suffix) < len(pattern) {
		return -1
	}

	return 0
}

// LongestMatch returns the longest prefix of pattern that occurs anywhere
// in the indexed blob, as the position of one occurrence and its length.
// ok is false if no byte of pattern occurs at all (or pattern is empty).
//
// On a miss, the insertion point's neighboring suffixes are examined and
// the one with the longer common prefix with pattern wins; ties favor the
// predecessor (the lexicographically smaller of the two).
func (s *SuffixArray) LongestMatch(pattern []byte) (pos uint32, length int, ok bool) {
	if len(pattern) == 0 || len(s.sa) == 0 {
		return 0, 0, false
	}

	lo := sort.Search(len(s.sa), func(i int) bool {
		return comparePrefix(s.data[s.sa[i]:], pattern) >= 0
	})

	var bestPos uint32
	bestLen := 0

	if lo < len(s.sa) {
		p := s.sa[lo]
		l := commonPrefixLen(s.data[p:], pattern)

		if l > bestLen {
			bestLen = l
			bestPos = p
		}
	}

	if lo > 0 {
		p := s.sa[lo-1]
		l := commonPrefixLen(s.data[p:], pattern)

		// Ties favor the predecessor, so >= rather than >.
		if l >= bestLen {
			bestLen = l
			bestPos = p
		}
	}

	if bestLen == 0 {
		return 0, 0, false
	}

	return bestPos, bestLen, true
}

// Contains reports whether pattern occurs anywhere in the indexed blob.
func (s *SuffixArray) Contains(pattern []byte) bool {
	if len(pattern) == 0 {
		return true
	}

	_, length, ok := s.LongestMatch(pattern)
	return ok && length == len(pattern)
}
