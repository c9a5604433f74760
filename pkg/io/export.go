package io

import (
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/drawkit/pkg/errors"
	"github.com/matzehuels/drawkit/pkg/model"
)

// WriteDrawio encodes doc and writes it to w.
//
// The document is validated and rendered in memory before anything is
// written, so a validation or encoding failure leaves w untouched. A
// validation failure is reported as SERIALIZE_VALIDATION_FAILED wrapping
// the same violation detail the reader reports.
func WriteDrawio(doc *model.Document, w io.Writer, opts Options) error {
	data, err := MarshalDrawio(doc, opts)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeSerializeFailure, err, "write drawio output")
	}
	return nil
}

// MarshalDrawio encodes doc into a new byte slice.
func MarshalDrawio(doc *model.Document, opts Options) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is nil")
	}
	if err := doc.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerializeValidationFailed, err, "document failed validation")
	}

	enc := &encoder{opts: opts}
	out := newDocument()
	root := out.CreateElement(tagFile)
	setAttrs(root, doc.Attrs)
	for _, p := range doc.Pages {
		el, err := enc.page(p)
		if err != nil {
			return nil, withPage(err, p.ID)
		}
		root.AddChild(el)
	}
	if err := appendRaw(root, doc.Extra); err != nil {
		return nil, err
	}

	if opts.Indent > 0 {
		out.Indent(opts.Indent)
	}
	data, err := out.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerializeFailure, err, "render drawio document")
	}
	return data, nil
}

// ExportDrawio writes doc to the file at path.
//
// The file is replaced atomically: output goes to a temporary file in the
// same directory, which is renamed over path only after a complete write.
func ExportDrawio(doc *model.Document, path string, opts Options) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	data, err := MarshalDrawio(doc, opts)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".drawkit-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeSerializeFailure, err, "create temporary file in %s", dir)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeSerializeFailure, err, "write %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeSerializeFailure, err, "close %s", tmpPath)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeSerializeFailure, err, "chmod %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrap(errors.ErrCodeSerializeFailure, err, "rename to %s", path)
	}
	return nil
}
