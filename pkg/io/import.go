package io

import (
	"bytes"
	"io"
	"os"

	"github.com/beevik/etree"

	"github.com/matzehuels/drawkit/pkg/errors"
	"github.com/matzehuels/drawkit/pkg/model"
)

// ReadDrawio decodes a drawio document from r.
//
// ReadDrawio returns an error if:
//   - The input is not well-formed XML or its root is not an mxfile element
//   - A diagram element has no id, or two pages share an id
//   - Compressed page content is not valid base64 or raw DEFLATE, or
//     inflates beyond Options.MaxDecompressedSize
//   - A known attribute holds a malformed value
//   - A page's cell graph fails validation
//
// Errors are *errors.Error values carrying the page id and, where one is
// involved, the offending cell id and attribute. No partial document is
// returned. ReadDrawio does not close r.
func ReadDrawio(r io.Reader, opts Options) (*model.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read drawio input")
	}
	return UnmarshalDrawio(data, opts)
}

// ImportDrawio reads the drawio file at path.
//
// It returns the same errors as [ReadDrawio], plus INVALID_PATH for a
// malformed path and NOT_FOUND when the file does not exist.
func ImportDrawio(path string, opts Options) (*model.Document, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return UnmarshalDrawio(data, opts)
}

// UnmarshalDrawio decodes a drawio document held in memory.
func UnmarshalDrawio(data []byte, opts Options) (*model.Document, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	xml := etree.NewDocument()
	if err := xml.ReadFromBytes(bytes.TrimSpace(data)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnparseableXML, err, "parse drawio document")
	}
	root := xml.Root()
	if root == nil {
		return nil, errors.New(errors.ErrCodeUnparseableXML, "document has no root element")
	}
	if root.FullTag() != tagFile {
		return nil, errors.New(errors.ErrCodeUnrecognizedElement,
			"root element is <%s>, want <%s>", root.FullTag(), tagFile)
	}

	dec := &decoder{codec: opts.codec()}
	doc := &model.Document{Attrs: attrsOf(root)}
	var extra []*etree.Element
	for _, el := range root.ChildElements() {
		if el.FullTag() != tagDiagram {
			extra = append(extra, el)
			continue
		}
		page, err := dec.page(el)
		if err != nil {
			return nil, err
		}
		if err := doc.AddPage(page); err != nil {
			return nil, err
		}
	}

	var err error
	if doc.Extra, err = rawXML(extra); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "capture mxfile children")
	}
	return doc, nil
}
