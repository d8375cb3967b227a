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

// Package control turns a sequence of match regions into the add/copy/seek
// control triples that make up the body of a patch.
package control

import (
	"github.com/accrescent/ina"
	"github.com/accrescent/ina/match"
)

// regionSource is satisfied by *match.Matcher; an interface here keeps this
// package from depending on the matcher's own internals.
type regionSource interface {
	Next() (match.Region, bool)
}

// Producer pulls match regions one at a time and converts each into an
// ina.Control, computing the seek each control needs to land on the next
// one's old-side anchor.
type Producer struct {
	old, new []byte
	src      regionSource

	next    match.Region
	hasNext bool
}

// NewProducer returns a Producer reading regions from src and slicing bytes
// out of old and new to build each control's Add and Copy payloads.
func NewProducer(old, new []byte, src regionSource) *Producer {
	p := &Producer{old: old, new: new, src: src}
	p.next, p.hasNext = src.Next()
	return p
}

// Next returns the next control, or ok=false once the region source is
// exhausted. The final control's Seek is always 0, since there is nowhere
// left to seek to.
func (p *Producer) Next() (ina.Control, bool) {
	if !p.hasNext {
		return ina.Control{}, false
	}

	cur := p.next
	p.next, p.hasNext = p.src.Next()

	add := make([]byte, cur.AddLen)
	for i := 0; i < cur.AddLen; i++ {
		add[i] = p.new[cur.AddNewPos+i] - p.old[cur.AddOldPos+i]
	}

	copyStart := cur.AddNewPos + cur.AddLen
	var cp []byte
	if copyStart < cur.CopyEnd {
		cp = append(cp, p.new[copyStart:cur.CopyEnd]...)
	}

	var seek int64
	if p.hasNext {
		seek = int64(p.next.AddOldPos) - int64(cur.AddOldPos+cur.AddLen)
	}

	return ina.Control{Add: add, Copy: cp, Seek: seek}, true
}
