// Package style implements the drawio style-string sublanguage.
//
// A style string is a ';'-separated list of tokens controlling how a cell is
// drawn:
//
//	ellipse;whiteSpace=wrap;html=1;fillColor=#dae8fc;
//
// # Decoding and Encoding
//
// [Decode] turns a string into an ordered [Style]; [Encode] turns it back.
// The pair is lossless for well-formed input: the key order, bare flag
// tokens and a trailing ';' are all reproduced, so an unmodified style
// re-encodes byte for byte.
//
// # Values
//
// The codec treats every value as an opaque string. Typed interpretation is
// left to callers that know a key's meaning:
//
//	s := style.Decode("rounded=1;opacity=50;")
//	rounded, _ := s.Bool("rounded")  // true
//	opacity, _ := s.Float("opacity") // 50
//
// Unknown keys are never rejected on decode, which keeps documents written by
// newer drawio versions readable.
//
// # Presets
//
// Shape libraries supply preset styles. [Merge] layers cell-specific keys on
// top of a preset without disturbing the preset's key order.
package style
