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

// Package patch implements the patch container's header and streaming
// body: Writer serializes control triples behind a general-purpose
// compressor (component D), Patcher pulls them back out behind a
// decompressor and replays them against an old blob (component E).
package patch

import (
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/accrescent/ina"
	"github.com/accrescent/ina/container"
)

// DefaultCompressionLevel is tuned for a high ratio without extreme
// memory use; it sits well inside zstd's accepted range.
const DefaultCompressionLevel = 19

// Config holds the options recognized by Writer.
type Config struct {
	// CompressionLevel is clamped to the codec's own accepted range.
	CompressionLevel int
	// CompressionThreads is 0 to compress on the calling goroutine, or
	// >=1 to enable the codec's background worker pool.
	CompressionThreads int
}

// DefaultConfig returns the Writer defaults named in the format notes.
func DefaultConfig() Config {
	return Config{CompressionLevel: DefaultCompressionLevel, CompressionThreads: 1}
}

// Writer writes a patch file: the fixed header, then a stream of
// varint-framed control records behind a zstd frame.
type Writer struct {
	enc *zstd.Encoder
	buf []byte
}

// NewWriter writes the patch header to w and opens the compressor for the
// control stream that follows.
func NewWriter(w io.Writer, cfg Config) (*Writer, error) {
	if err := container.WriteHeader(w, ina.CurrentVersionMajor, ina.CurrentVersionMinor); err != nil {
		return nil, err
	}

	// The codec compresses on the calling goroutine at a concurrency of 1
	// and offloads to background workers only above that.
	concurrency := cfg.CompressionThreads + 1

	level := zstd.EncoderLevelFromZstd(cfg.CompressionLevel)

	enc, err := zstd.NewWriter(w,
		zstd.WithEncoderLevel(level),
		zstd.WithEncoderConcurrency(concurrency),
	)
	if err != nil {
		return nil, ina.WrapError(ina.ErrCodecError, "opening patch compressor", err)
	}

	return &Writer{enc: enc}, nil
}

// WriteControl appends one control record: varint add-length, add bytes,
// varint copy-length, copy bytes, signed varint seek.
func (w *Writer) WriteControl(c ina.Control) error {
	w.buf = container.PutUvarint(w.buf[:0], uint64(len(c.Add)))
	w.buf = append(w.buf, c.Add...)
	w.buf = container.PutUvarint(w.buf, uint64(len(c.Copy)))
	w.buf = append(w.buf, c.Copy...)
	w.buf = container.PutVarint(w.buf, c.Seek)

	if _, err := w.enc.Write(w.buf); err != nil {
		return ina.WrapError(ina.ErrIO, "writing control record", err)
	}

	return nil
}

// Close finalizes the compressor frame. It must be called exactly once,
// after the last WriteControl, for the patch to be readable.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return ina.WrapError(ina.ErrCodecError, "closing patch compressor", err)
	}

	return nil
}
