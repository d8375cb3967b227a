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

// Package match implements the bsdiff-family match maker: given two byte
// blobs and a suffix array over the old one, it produces a left-to-right
// sequence of approximately-matching regions between them.
//
// Executables share long runs of unchanged code interspersed with small
// edits - relocated addresses, rewritten operands. Exact matching alone
// would fragment those runs into many short, expensive-to-encode matches.
// The scan loop below instead keeps extending the *previous* match's
// alignment for as long as it explains the new bytes about as well as
// starting a fresh match would, joining runs that exact matching would
// have split.
package match

import "github.com/accrescent/ina/sais"

// nonMatchThreshold is how many more matching bytes a fresh match needs
// over the continuation of the previous one before it is worth the
// overhead of breaking to it.
const nonMatchThreshold = 8

// Region describes one aligned span between old and new: add_len bytes
// starting at AddOldPos in old align (approximately) with new bytes
// starting at AddNewPos, and new[AddNewPos+AddLen : CopyEnd] is a literal
// run that follows with no alignment to old.
type Region struct {
	AddOldPos int
	AddNewPos int
	AddLen    int
	CopyEnd   int
}

// Matcher yields match regions covering new, left to right, by walking
// suffix-array queries against old.
type Matcher struct {
	old, new []byte
	sa       *sais.SuffixArray

	scan, pos, length int

	lastScan, lastPos, lastOffset int
}

// NewMatcher returns a Matcher over old and new using a prebuilt suffix
// array of old. sa must have been built over the same old slice (with its
// sentinel byte, if any, included in whatever sa indexes); old here is the
// sentinel-free view used for byte comparisons.
func NewMatcher(old, new []byte, sa *sais.SuffixArray) *Matcher {
	return &Matcher{old: old, new: new, sa: sa}
}

// Next returns the next match region, or ok=false once new has been fully
// covered.
func (m *Matcher) Next() (region Region, ok bool) {
	for m.scan < len(m.new) {
		oldScore := 0
		m.scan += m.length
		scsc := m.scan

		for ; m.scan < len(m.new); m.scan++ {
			m.pos, m.length = m.longestMatchAt(m.scan)

			for ; scsc < m.scan+m.length; scsc++ {
				if m.oldMatchesAt(scsc, scsc) {
					oldScore++
				}
			}

			if (m.length == oldScore && m.length != 0) || m.length > oldScore+nonMatchThreshold {
				break
			}

			if m.oldMatchesAt(m.scan, m.scan) {
				oldScore--
			}
		}

		if m.length != oldScore || m.scan == len(m.new) {
			lenf := m.forwardExtent()
			lenb := 0

			if m.scan < len(m.new) {
				lenb = m.backwardExtent()
			}

			if m.lastScan+lenf > m.scan-lenb {
				lenf, lenb = resolveOverlap(m.old, m.new, m.lastScan, m.lastPos, m.scan, m.pos, lenf, lenb)
			}

			region = Region{
				AddOldPos: m.lastPos,
				AddNewPos: m.lastScan,
				AddLen:    lenf,
				CopyEnd:   m.scan - lenb,
			}

			m.lastScan = m.scan - lenb
			m.lastPos = m.pos - lenb
			m.lastOffset = m.pos - m.scan

			return region, true
		}
	}

	return Region{}, false
}

// oldMatchesAt reports whether old, read at the offset the previous
// match's alignment would predict for new position newPos, equals
// new[newPos]. pos is the new-side index used to compute that prediction
// (usually equal to newPos; see the scan loop above).
func (m *Matcher) oldMatchesAt(pos, newPos int) bool {
	idx := pos + m.lastOffset
	return idx >= 0 && idx < len(m.old) && m.old[idx] == m.new[newPos]
}

// longestMatchAt finds the longest prefix of new[at:] occurring anywhere
// in old.
func (m *Matcher) longestMatchAt(at int) (pos, length int) {
	p, l, ok := m.sa.LongestMatch(m.new[at:])

	if !ok {
		return 0, 0
	}

	return int(p), l
}

// forwardExtent extends the previous match forward from lastScan/lastPos,
// returning the length that maximizes matches*2 - length (the classic
// bsdiff score), capped at the upcoming break point.
func (m *Matcher) forwardExtent() int {
	s, bestScore, best := 0, 0, 0

	for i := 0; m.lastScan+i < m.scan && m.lastPos+i < len(m.old); {
		if m.old[m.lastPos+i] == m.new[m.lastScan+i] {
			s++
		}

		i++

		if s*2-i > bestScore {
			bestScore = s*2 - i
			best = i
		}
	}

	return best
}

// backwardExtent extends the new match backward from scan/pos toward
// lastScan, symmetric to forwardExtent.
func (m *Matcher) backwardExtent() int {
	s, bestScore, best := 0, 0, 0

	for i := 1; m.scan >= m.lastScan+i && m.pos >= i; i++ {
		if m.old[m.pos-i] == m.new[m.scan-i] {
			s++
		}

		if s*2-i > bestScore {
			bestScore = s*2 - i
			best = i
		}
	}

	return best
}

// resolveOverlap picks the split point inside an overlapping
// forward/backward extension that maximizes matches awarded to the
// forward (old-aligned) side minus matches awarded to the backward side.
//
// Correctness of the index arithmetic here assumes lenf >= overlap: see
// the open question in the design notes. That has not been observed to
// fail on real executable inputs, but is not proven unreachable, so on
// violation this falls back to the pre-refinement lengths untouched.
func resolveOverlap(old, new []byte, lastScan, lastPos, scan, pos, lenf, lenb int) (int, int) {
	overlap := (lastScan + lenf) - (scan - lenb)

	if overlap <= 0 || overlap > lenf {
		return lenf, lenb
	}

	s, best, bestLen := 0, 0, 0

	for i := 0; i < overlap; i++ {
		if new[lastScan+lenf-overlap+i] == old[lastPos+lenf-overlap+i] {
			s++
		}

		if new[scan-lenb+i] == old[pos-lenb+i] {
			s--
		}

		if s > best {
			best = s
			bestLen = i + 1
		}
	}

	return lenf + bestLen - overlap, lenb - bestLen
}
