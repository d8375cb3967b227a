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

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/accrescent/ina/delta"
	"github.com/accrescent/ina/patch"
)

const (
	_ARG_COMPRESSION_THREADS    = "--compression-threads="
	_ARG_COMPRESSION_LEVEL      = "--compression-level="
	_ARG_DECOMPRESSION_BUF_SIZE = "--decompression-buffer-size="
	_APP_HEADER                 = "ina: binary diffing and patching designed for executables"
)

var log = bufio.NewWriter(os.Stdout)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if len(args) < 2 {
		printUsage()
		return 1
	}

	var status int

	switch args[1] {
	case "diff":
		status = runDiff(args[2:])
	case "patch":
		status = runPatch(args[2:])
	case "info":
		status = runInfo(args[2:])
	case "-h", "--help", "help":
		printUsage()
		status = 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[1])
		printUsage()
		status = 1
	}

	log.Flush()
	return status
}

func printUsage() {
	fmt.Fprintln(log, _APP_HEADER)
	fmt.Fprintln(log, "Usage:")
	fmt.Fprintln(log, "  ina diff <old> <new> <patch> [--compression-threads=N] [--compression-level=N]")
	fmt.Fprintln(log, "  ina patch <old> <patch> <new> [--decompression-buffer-size=N]")
	fmt.Fprintln(log, "  ina info <patch>")
}

func runDiff(args []string) int {
	cfg := patch.DefaultConfig()
	var positional []string

	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, _ARG_COMPRESSION_THREADS):
			n, err := strconv.Atoi(strings.TrimPrefix(arg, _ARG_COMPRESSION_THREADS))
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid %s\n", arg)
				return 1
			}

			cfg.CompressionThreads = n

		case strings.HasPrefix(arg, _ARG_COMPRESSION_LEVEL):
			n, err := strconv.Atoi(strings.TrimPrefix(arg, _ARG_COMPRESSION_LEVEL))
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid %s\n", arg)
				return 1
			}

			cfg.CompressionLevel = n

		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) != 3 {
		fmt.Fprintln(os.Stderr, "diff requires <old> <new> <patch>")
		return 1
	}

	oldPath, newPath, patchPath := positional[0], positional[1], positional[2]

	oldData, err := os.ReadFile(oldPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read old file %q: %v\n", oldPath, err)
		return 1
	}

	// Reserve space for the sentinel SACA-K requires.
	oldWithSentinel := make([]byte, len(oldData)+1)
	copy(oldWithSentinel, oldData)

	newData, err := os.ReadFile(newPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read new file %q: %v\n", newPath, err)
		return 1
	}

	patchFile, err := os.Create(patchPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create patch file %q: %v\n", patchPath, err)
		return 1
	}
	defer patchFile.Close()

	if err := delta.Diff(oldWithSentinel, newData, patchFile, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate patch: %v\n", err)
		return 1
	}

	return 0
}

func runPatch(args []string) int {
	bufSize := 0
	var positional []string

	for _, arg := range args {
		if strings.HasPrefix(arg, _ARG_DECOMPRESSION_BUF_SIZE) {
			n, err := strconv.Atoi(strings.TrimPrefix(arg, _ARG_DECOMPRESSION_BUF_SIZE))
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid %s\n", arg)
				return 1
			}

			bufSize = n
			continue
		}

		positional = append(positional, arg)
	}

	if len(positional) != 3 {
		fmt.Fprintln(os.Stderr, "patch requires <old> <patch> <new>")
		return 1
	}

	oldPath, patchPath, newPath := positional[0], positional[1], positional[2]

	oldFile, err := os.Open(oldPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open old file %q: %v\n", oldPath, err)
		return 1
	}
	defer oldFile.Close()

	patchFile, err := os.Open(patchPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open patch file %q: %v\n", patchPath, err)
		return 1
	}
	defer patchFile.Close()

	newFile, err := os.Create(newPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create new file %q: %v\n", newPath, err)
		return 1
	}
	defer newFile.Close()

	var opts []patch.Option
	if bufSize > 0 {
		opts = append(opts, patch.WithReadBufferSize(bufSize))
	}

	p, err := patch.NewPatcher(oldFile, patchFile, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open patch %q: %v\n", patchPath, err)
		return 1
	}
	defer p.Close()

	if _, err := newFile.ReadFrom(p); err != nil {
		fmt.Fprintf(os.Stderr, "failed to apply patch: %v\n", err)
		return 1
	}

	return 0
}

func runInfo(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "info requires <patch>")
		return 1
	}

	patchFile, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open patch file %q: %v\n", args[0], err)
		return 1
	}
	defer patchFile.Close()

	major, minor, err := delta.ReadHeader(patchFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read patch header of %q: %v\n", args[0], err)
		return 1
	}

	fmt.Fprintf(log, "ina patch file, format version %d.%d\n", major, minor)
	return 0
}
