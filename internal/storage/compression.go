package storage

import (
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGZ   Compression = "gz"
	CompressionXZ   Compression = "xz"
	CompressionZSTD Compression = "zst"
)

func ParseCompression(value string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return CompressionNone, nil
	case "gz", "gzip":
		return CompressionGZ, nil
	case "xz":
		return CompressionXZ, nil
	case "zst", "zstd":
		return CompressionZSTD, nil
	default:
		return "", fmt.Errorf("unsupported compression: %s", value)
	}
}

// Extension is appended after ".csv".
func (c Compression) Extension() string {
	if c == CompressionNone || c == "" {
		return ""
	}
	return "." + string(c)
}

func compressionFromPath(path string) Compression {
	lower := strings.ToLower(path)
	for _, c := range []Compression{CompressionGZ, CompressionXZ, CompressionZSTD} {
		if strings.HasSuffix(lower, c.Extension()) {
			return c
		}
	}
	return CompressionNone
}

func newCompressedWriter(w io.Writer, c Compression) (io.Writer, func() error, error) {
	switch c {
	case CompressionNone, "":
		return w, func() error { return nil }, nil
	case CompressionGZ:
		gz := gzip.NewWriter(w)
		return gz, gz.Close, nil
	case CompressionXZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xw, xw.Close, nil
	case CompressionZSTD:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return zw, zw.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported compression: %s", c)
	}
}

func newCompressedReader(r io.Reader, c Compression) (io.Reader, func() error, error) {
	switch c {
	case CompressionNone, "":
		return r, func() error { return nil }, nil
	case CompressionGZ:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gz, gz.Close, nil
	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xr, func() error { return nil }, nil
	case CompressionZSTD:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return zr, func() error {
			zr.Close()
			return nil
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported compression: %s", c)
	}
}
