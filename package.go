package unxlsx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/flate"
)

// contentTypesPath is the well-known location of the content-type registry
// in an OOXML package. Its presence is what distinguishes an office package
// from an arbitrary ZIP archive.
const contentTypesPath = "[Content_Types].xml"

// Part is one named entry inside an OOXML package: a path, raw bytes, and
// the ZIP storage metadata needed to write the entry back unchanged.
type Part struct {
	Path     string
	Data     []byte
	Method   uint16 // zip.Store or zip.Deflate
	Modified time.Time
}

// Package is an ordered mapping from part path to raw bytes, constructed
// once by Open or NewReader and consumed once by Write. Part ordering
// matches the input archive; parts removed during editing keep the ordering
// of the survivors intact.
//
// A Package is not safe for concurrent use by multiple goroutines.
type Package struct {
	parts []*Part
	index map[string]*Part
	raw   []byte // original archive bytes, kept so an unchanged package can be re-emitted verbatim
}

// Open reads the spreadsheet package at path fully into memory.
//
// It fails with ErrNotZipArchive for non-ZIP input, ErrEncrypted for
// password-encrypted packages (OLE compound files, or ZIPs carrying
// EncryptedPackage/EncryptionInfo streams), and ErrNotOfficePackage when
// the archive has no [Content_Types].xml.
func Open(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unxlsx: open %s: %w", path, err)
	}
	pkg, err := OpenBytes(data)
	if err != nil {
		return nil, fmt.Errorf("unxlsx: open %s: %w", path, err)
	}
	return pkg, nil
}

// NewReader reads a spreadsheet package from an io.ReaderAt with the given
// size. The input is fully buffered; the caller may close or reuse r once
// NewReader returns.
func NewReader(r io.ReaderAt, size int64) (*Package, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(io.NewSectionReader(r, 0, size), data); err != nil {
		return nil, fmt.Errorf("unxlsx: read package: %w", err)
	}
	return OpenBytes(data)
}

// OpenBytes constructs a Package from raw archive bytes.
func OpenBytes(data []byte) (*Package, error) {
	if isCompoundFile(data) {
		// Password-encrypted OOXML files are OLE compound files holding
		// EncryptionInfo/EncryptedPackage streams, not ZIP archives.
		return nil, ErrEncrypted
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("unxlsx: %v: %w", err, ErrNotZipArchive)
	}
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	pkg := &Package{
		index: make(map[string]*Part, len(zr.File)),
		raw:   data,
	}
	for _, f := range zr.File {
		if isEncryptedStream(f.Name) {
			return nil, ErrEncrypted
		}
		if f.FileInfo().IsDir() {
			continue
		}
		partData, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		method := f.Method
		if method != zip.Store && method != zip.Deflate {
			// Exotic methods decompress fine but cannot be re-emitted;
			// fall back to deflate on write.
			method = zip.Deflate
		}
		part := &Part{
			Path:     f.Name,
			Data:     partData,
			Method:   method,
			Modified: f.Modified,
		}
		if _, exists := pkg.index[part.Path]; exists {
			return nil, fmt.Errorf("unxlsx: duplicate part %s: %w", part.Path, ErrNotOfficePackage)
		}
		pkg.parts = append(pkg.parts, part)
		pkg.index[part.Path] = part
	}

	if _, ok := pkg.index[contentTypesPath]; !ok {
		return nil, fmt.Errorf("unxlsx: missing %s: %w", contentTypesPath, ErrNotOfficePackage)
	}
	return pkg, nil
}

// Part returns the part at the given path.
func (p *Package) Part(path string) (*Part, bool) {
	part, ok := p.index[path]
	return part, ok
}

// Has reports whether a part exists at the given path.
func (p *Package) Has(path string) bool {
	_, ok := p.index[path]
	return ok
}

// SetPartData replaces the bytes of an existing part. The part keeps its
// position, storage method, and timestamp.
func (p *Package) SetPartData(path string, data []byte) error {
	part, ok := p.index[path]
	if !ok {
		return fmt.Errorf("unxlsx: part %s not in package: %w", path, ErrInconsistentPackage)
	}
	part.Data = data
	return nil
}

// RemovePart deletes the part at the given path, preserving the relative
// ordering of the remaining parts. It reports whether a part was removed.
func (p *Package) RemovePart(path string) bool {
	part, ok := p.index[path]
	if !ok {
		return false
	}
	delete(p.index, path)
	for i, candidate := range p.parts {
		if candidate == part {
			p.parts = append(p.parts[:i], p.parts[i+1:]...)
			break
		}
	}
	return true
}

// Paths returns the part paths in archive order.
func (p *Package) Paths() []string {
	paths := make([]string, len(p.parts))
	for i, part := range p.parts {
		paths[i] = part.Path
	}
	return paths
}

// Len returns the number of parts in the package.
func (p *Package) Len() int {
	return len(p.parts)
}
