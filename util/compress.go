// util/compress.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// zstdFile chains the zstd encoder and the underlying file so that a
// single Close fully flushes the compressed stream.
type zstdFile struct {
	*zstd.Encoder
	f *os.File
}

func (z zstdFile) Close() error {
	if err := z.Encoder.Close(); err != nil {
		z.f.Close()
		return err
	}
	return z.f.Close()
}

// CreateZSTFile creates the file at the given path and returns a
// WriteCloser that compresses everything written to it.
func CreateZSTFile(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return zstdFile{Encoder: zw, f: f}, nil
}

// ReadZSTFile reads and decompresses the contents of the file at the
// given path.
func ReadZSTFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return io.ReadAll(zr)
}
