package io

import (
	"github.com/matzehuels/drawkit/pkg/compress"
	"github.com/matzehuels/drawkit/pkg/errors"
)

// Compression selects how page content is stored on write.
type Compression int

const (
	// CompressionPreserve keeps each page's original storage form.
	CompressionPreserve Compression = iota
	// CompressionAlways stores every page as a compressed payload.
	CompressionAlways
	// CompressionNever stores every page as inline XML.
	CompressionNever
)

var compressionNames = map[Compression]string{
	CompressionPreserve: "preserve",
	CompressionAlways:   "always",
	CompressionNever:    "never",
}

func (c Compression) String() string {
	if s, ok := compressionNames[c]; ok {
		return s
	}
	return "unknown"
}

// ParseCompression maps "preserve", "always" or "never" to a Compression.
func ParseCompression(s string) (Compression, error) {
	for c, name := range compressionNames {
		if name == s {
			return c, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown compression mode %q", s)
}

// Options configures reading and writing. The zero value is ready to use.
type Options struct {
	// MaxDecompressedSize bounds the inflated size of one compressed page.
	// Zero means compress.DefaultMaxDecompressedSize.
	MaxDecompressedSize int64

	// Compression chooses the page storage form on write.
	Compression Compression

	// Indent pretty-prints output with this many spaces per level.
	// Zero writes compact XML.
	Indent int
}

// Validate reports option values that cannot be honoured.
func (o Options) Validate() error {
	if o.MaxDecompressedSize < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max decompressed size must not be negative")
	}
	if _, ok := compressionNames[o.Compression]; !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown compression mode %d", o.Compression)
	}
	if o.Indent < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "indent must not be negative")
	}
	return nil
}

func (o Options) codec() *compress.Codec {
	return compress.New(o.MaxDecompressedSize)
}

// compressPage decides the storage form of a page under o.
func (o Options) compressPage(compressed bool) bool {
	switch o.Compression {
	case CompressionAlways:
		return true
	case CompressionNever:
		return false
	}
	return compressed
}
