// Package compress implements the base64 + raw DEFLATE codec drawio uses for
// compressed page content.
//
// Compressed content is produced by deflating the page XML without a zlib
// header or trailer and base64-encoding the result. [Codec.Decompress]
// reverses this and enforces a ceiling on the inflated size, so a small
// hostile payload cannot expand into unbounded memory.
//
//	c := compress.New(compress.DefaultMaxDecompressedSize)
//	payload, _ := c.Compress([]byte("<mxGraphModel/>"))
//	xml, _ := c.Decompress(payload)
//
// Output of [Codec.Compress] is deterministic for a given input because the
// compression level is fixed at [Level].
package compress

import (
	"bytes"
	"encoding/base64"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/matzehuels/drawkit/pkg/errors"
)

// Level is the DEFLATE level used by Compress. It is fixed so that the same
// input always produces the same payload.
const Level = flate.BestCompression

// DefaultMaxDecompressedSize bounds the inflated size of one payload (64 MiB).
const DefaultMaxDecompressedSize int64 = 64 << 20

// Codec compresses and decompresses page payloads.
// A Codec holds no mutable state and is safe for concurrent use.
type Codec struct {
	// MaxDecompressedSize is the largest inflated payload Decompress accepts.
	// Zero or negative means DefaultMaxDecompressedSize.
	MaxDecompressedSize int64
}

// New creates a codec with the given expansion ceiling in bytes.
func New(maxDecompressedSize int64) *Codec {
	return &Codec{MaxDecompressedSize: maxDecompressedSize}
}

var defaultCodec = &Codec{}

// Decompress decodes payload with the default expansion ceiling.
func Decompress(payload string) ([]byte, error) {
	return defaultCodec.Decompress(payload)
}

// Compress encodes data with the default codec.
func Compress(data []byte) (string, error) {
	return defaultCodec.Compress(data)
}

func (c *Codec) limit() int64 {
	if c == nil || c.MaxDecompressedSize <= 0 {
		return DefaultMaxDecompressedSize
	}
	return c.MaxDecompressedSize
}

// Decompress base64-decodes payload and inflates the result as raw DEFLATE.
//
// Surrounding whitespace is ignored and an empty payload yields empty output.
// Errors carry INVALID_BASE64, INFLATE_FAILURE or EXPANSION_LIMIT_EXCEEDED.
// No more than MaxDecompressedSize+1 bytes are ever buffered.
func (c *Codec) Decompress(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return []byte{}, nil
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBase64, err, "decode base64 payload")
	}

	limit := c.limit()
	r := flate.NewReader(bytes.NewReader(raw))
	defer r.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInflateFailure, err, "inflate payload")
	}
	if n > limit {
		return nil, errors.New(errors.ErrCodeExpansionLimitExceeded,
			"inflated payload exceeds %d bytes", limit)
	}
	return buf.Bytes(), nil
}

// Compress deflates data at [Level] without a zlib header and returns the
// standard base64 encoding of the result.
func (c *Codec) Compress(data []byte) (string, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, Level)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeDeflateFailure, err, "create deflate writer")
	}
	if _, err := w.Write(data); err != nil {
		return "", errors.Wrap(errors.ErrCodeDeflateFailure, err, "deflate payload")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeDeflateFailure, err, "flush deflate stream")
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
