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
	"bufio"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/accrescent/ina"
	"github.com/accrescent/ina/container"
)

// defaultScratchSize bounds the internal buffer Patcher reuses for
// difference bytes during an Add region, so a pull never allocates.
const defaultScratchSize = 8 * 1024

// defaultReadBufferSize is how much of the decompressed control stream
// Patcher buffers ahead of the varint/control parser.
const defaultReadBufferSize = 64 * 1024

type patcherState int

const (
	stateAtNextControl patcherState = iota
	stateAdd
	stateCopy
)

// Option configures a Patcher at construction.
type Option func(*Patcher)

// WithScratchSize overrides the default 8 KiB add-phase scratch buffer.
func WithScratchSize(n int) Option {
	return func(p *Patcher) {
		if n > 0 {
			p.scratch = make([]byte, n)
		}
	}
}

// WithReadBufferSize overrides the default buffer between the
// decompressor and the control-record parser. A tighter buffer caps
// memory at the cost of more, smaller reads from the decompressor.
func WithReadBufferSize(n int) Option {
	return func(p *Patcher) {
		if n > 0 {
			p.readBufferSize = n
		}
	}
}

// Patcher is a pull-model io.Reader that replays a patch's control
// stream against an old blob to reconstruct new. Each Read call advances
// the state machine until it produces bytes, reaches the end of the patch
// or fails; callers should keep reading until (0, io.EOF).
type Patcher struct {
	old io.ReadSeeker
	dec *zstd.Decoder
	br  *bufio.Reader

	readBufferSize int
	scratch        []byte

	state                       patcherState
	addRemaining, copyRemaining int
}

// NewPatcher validates the patch header, opens its decompressor, and
// returns a Patcher ready to be read from. old must support both
// sequential reads and signed relative seeks; patchSource needs only
// sequential reads.
func NewPatcher(old io.ReadSeeker, patchSource io.Reader, opts ...Option) (*Patcher, error) {
	header, body, err := container.ReadHeader(patchSource)
	if err != nil {
		return nil, err
	}

	_ = header // version is validated by ReadHeader; nothing else to act on yet

	p := &Patcher{
		old:            old,
		scratch:        make([]byte, defaultScratchSize),
		readBufferSize: defaultReadBufferSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	dec, err := zstd.NewReader(body)
	if err != nil {
		return nil, ina.WrapError(ina.ErrCodecError, "opening patch decompressor", err)
	}

	p.dec = dec
	p.br = bufio.NewReaderSize(dec, p.readBufferSize)
	return p, nil
}

// Close releases the decompressor's resources. It does not close old or
// the underlying patch source.
func (p *Patcher) Close() error {
	p.dec.Close()
	return nil
}

// Read implements io.Reader by running the AtNextControl/Add/Copy state
// machine until it has produced at least one byte, hit end of patch, or
// hit an error.
func (p *Patcher) Read(out []byte) (int, error) {
	if len(out) == 0 {
		return 0, nil
	}

	for {
		switch p.state {
		case stateAtNextControl:
			n, err := container.ReadUvarint(p.br)
			if err != nil {
				if err == io.EOF {
					return 0, io.EOF
				}

				return 0, err
			}

			p.addRemaining = int(n)
			p.state = stateAdd

		case stateAdd:
			if p.addRemaining == 0 {
				n, err := container.ReadUvarint(p.br)
				if err != nil {
					return 0, truncated(err)
				}

				p.copyRemaining = int(n)
				p.state = stateCopy
				continue
			}

			return p.readAdd(out)

		case stateCopy:
			if p.copyRemaining == 0 {
				seek, err := container.ReadVarint(p.br)
				if err != nil {
					return 0, truncated(err)
				}

				if seek != 0 {
					if _, err := p.old.Seek(seek, io.SeekCurrent); err != nil {
						return 0, ina.WrapError(ina.ErrIO, "seeking old blob", err)
					}
				}

				p.state = stateAtNextControl
				continue
			}

			return p.readCopy(out)
		}
	}
}

// readAdd reads min(addRemaining, |out|, |scratch|) bytes from old into
// out, the same count of difference bytes from the patch into the
// reused scratch buffer, and adds them in place (mod 256).
func (p *Patcher) readAdd(out []byte) (int, error) {
	n := p.addRemaining

	if len(out) < n {
		n = len(out)
	}

	if len(p.scratch) < n {
		n = len(p.scratch)
	}

	if _, err := io.ReadFull(p.old, out[:n]); err != nil {
		return 0, ina.WrapError(ina.ErrIO, "reading old blob during add", err)
	}

	if _, err := io.ReadFull(p.br, p.scratch[:n]); err != nil {
		return 0, truncated(err)
	}

	for i := 0; i < n; i++ {
		out[i] += p.scratch[i]
	}

	p.addRemaining -= n
	return n, nil
}

// readCopy reads min(copyRemaining, |out|) bytes directly from the patch
// into out.
func (p *Patcher) readCopy(out []byte) (int, error) {
	n := p.copyRemaining

	if len(out) < n {
		n = len(out)
	}

	if _, err := io.ReadFull(p.br, out[:n]); err != nil {
		return 0, truncated(err)
	}

	p.copyRemaining -= n
	return n, nil
}

// truncated wraps a mid-record read failure as ErrTruncatedPatch. A
// clean io.EOF here is still an error: only the AtNextControl boundary
// may end cleanly.
func truncated(err error) error {
	return ina.WrapError(ina.ErrTruncatedPatch, "patch ended mid-record", err)
}
