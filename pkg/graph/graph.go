package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/drawkit/pkg/model"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph summarizes a document as indented JSON bytes.
func MarshalGraph(doc *model.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a document summary to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(doc *model.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(doc, f)
}

// WriteGraph writes a document summary as JSON to an io.Writer.
// Use MarshalGraph for in-memory serialization or WriteGraphFile for files.
func WriteGraph(doc *model.Document, w io.Writer) error {
	return writeGraphTo(doc, w)
}

// ReadGraphFile reads a JSON summary file and rebuilds a document from it.
func ReadGraphFile(path string) (*model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON summary from an io.Reader into a document.
// See [ToDocument] for what survives the trip.
func ReadGraph(r io.Reader) (*model.Document, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(doc *model.Document, w io.Writer) error {
	out := FromDocument(doc)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*model.Document, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToDocument(data)
}
