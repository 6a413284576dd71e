package unxlsx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// Write serializes the package to w as a ZIP archive. Every remaining part
// is written exactly once, in the ordering of the original archive, and
// each keeps its original storage method (stored entries stay stored,
// deflated entries stay deflated). Deflate entries are compressed with
// klauspost/compress.
func (p *Package) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	for _, part := range p.parts {
		hdr := &zip.FileHeader{
			Name:     part.Path,
			Method:   part.Method,
			Modified: part.Modified,
		}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			zw.Close()
			return fmt.Errorf("unxlsx: write part %s: %w", part.Path, err)
		}
		if _, err := fw.Write(part.Data); err != nil {
			zw.Close()
			return fmt.Errorf("unxlsx: write part %s: %w", part.Path, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("unxlsx: close archive: %w", err)
	}
	return nil
}

// Bytes serializes the package to an in-memory ZIP archive.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
