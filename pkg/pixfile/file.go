package pixfile

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/ha1tch/pix-toolkit/pkg/pix"
)

// Extension is the conventional file extension for pix documents.
const Extension = ".pix"

// WriteFile writes a document to path as indented JSON.
func WriteFile(path string, d *pix.Document) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer file.Close()

	if err := Write(file, d); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return file.Close()
}

// Write writes a document to w as indented JSON.
func Write(w io.Writer, d *pix.Document) error {
	data, err := ToJSON(d, true)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ReadFile reads a document from path. A missing file is an error; an empty
// file is an empty document.
func ReadFile(path string, gridSize float64) (*pix.Document, *Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read %s", path)
	}
	doc, report, err := ParseJSON(data, gridSize)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "load %s", path)
	}
	return doc, report, nil
}

// Read reads a document from r.
func Read(r io.Reader, gridSize float64) (*pix.Document, *Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read document")
	}
	return ParseJSON(data, gridSize)
}
