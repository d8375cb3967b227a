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

// Package delta wires the suffix array, match maker, control producer
// and patch container into the two operations library callers actually
// want: Diff and Patch. A is independently usable via sais, and E via
// patch, for deployments that only ever apply patches.
package delta

import (
	"io"
	"time"

	"github.com/accrescent/ina"
	"github.com/accrescent/ina/container"
	"github.com/accrescent/ina/control"
	"github.com/accrescent/ina/match"
	"github.com/accrescent/ina/patch"
	"github.com/accrescent/ina/sais"
)

// Diff builds a patch that turns oldWithSentinel[:len-1] into new and
// writes it to patchSink.
//
// oldWithSentinel must end in exactly one zero sentinel byte, as SACA-K
// requires; that byte is never written to the patch and must not appear
// in new's reconstruction. Both panic on a missing sentinel or a blob
// past the 2^31-1 byte limit: these are precondition violations, not
// recoverable errors (see sais.Build).
func Diff(oldWithSentinel, new []byte, patchSink io.Writer, cfg patch.Config, listeners ...ina.Listener) error {
	notify(listeners, ina.EvtSuffixArrayStart, int64(len(oldWithSentinel)))
	sa := sais.New(oldWithSentinel)
	notify(listeners, ina.EvtSuffixArrayEnd, int64(sa.Len()))

	old := oldWithSentinel[:len(oldWithSentinel)-1]

	notify(listeners, ina.EvtDiffStart, int64(len(new)))

	w, err := patch.NewWriter(patchSink, cfg)
	if err != nil {
		return err
	}

	m := match.NewMatcher(old, new, sa)
	producer := control.NewProducer(old, new, m)

	for {
		c, ok := producer.Next()
		if !ok {
			break
		}

		if err := w.WriteControl(c); err != nil {
			return err
		}

		notify(listeners, ina.EvtControlEmitted, int64(len(c.Add)+len(c.Copy)))
	}

	if err := w.Close(); err != nil {
		return err
	}

	notify(listeners, ina.EvtDiffEnd, int64(len(new)))
	return nil
}

// Patch reconstructs new from old and a patch stream, writing the result
// to newSink and returning the number of bytes written.
func Patch(old io.ReadSeeker, patchSource io.Reader, newSink io.Writer, listeners ...ina.Listener) (int64, error) {
	notify(listeners, ina.EvtPatchStart, 0)

	p, err := patch.NewPatcher(old, patchSource)
	if err != nil {
		return 0, err
	}
	defer p.Close()

	n, err := io.Copy(newSink, p)
	if err != nil {
		return n, err
	}

	notify(listeners, ina.EvtPatchEnd, n)
	return n, nil
}

// ReadHeader reports a patch's major and minor version without
// decompressing its body.
func ReadHeader(patchSource io.Reader) (major, minor uint16, err error) {
	h, _, err := container.ReadHeader(patchSource)
	if err != nil {
		return 0, 0, err
	}

	return h.VersionMajor, h.VersionMinor, nil
}

func notify(listeners []ina.Listener, evtType int, size int64) {
	if len(listeners) == 0 {
		return
	}

	evt := ina.NewEvent(evtType, size, time.Time{})

	for _, l := range listeners {
		l.ProcessEvent(evt)
	}
}
