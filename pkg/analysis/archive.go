package analysis

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/papercomputeco/clerk/pkg/pdf"
)

// ReadArchive returns every PDF in a zip archive, at any depth, in archive
// order. Directory entries and macOS resource forks are skipped. An entry
// whose text cannot be extracted is returned with Err set.
func ReadArchive(data []byte) ([]Invoice, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	invoices := make([]Invoice, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		name := path.Base(f.Name)
		if strings.HasPrefix(name, "._") || !strings.EqualFold(path.Ext(name), ".pdf") {
			continue
		}

		inv := Invoice{Name: name}
		raw, err := readEntry(f)
		if err != nil {
			inv.Err = err
		} else {
			inv.Text, inv.Err = pdf.ExtractText(raw)
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return raw, nil
}
