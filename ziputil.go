package unxlsx

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// maxDecompressSize is the maximum allowed decompressed size for a single ZIP
// entry. This guards against zip bomb attacks. Defaults to 256 MB.
const maxDecompressSize int64 = 256 * 1024 * 1024

// isSafePath checks whether p is a safe ZIP-internal path that does not
// escape the archive root via path traversal (e.g., "../../../etc/passwd").
func isSafePath(p string) bool {
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "/") {
		return false
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false
	}
	return true
}

// resolveTarget resolves a relationship Target against the part that owns the
// relationship. Targets are ZIP-internal paths (forward-slash separated);
// a leading "/" makes the target package-absolute. The result is cleaned and
// validated to stay within the archive root; an empty string is returned for
// paths that escape it.
func resolveTarget(sourcePart, target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return ""
	}
	if strings.HasPrefix(target, "/") {
		cleaned := path.Clean(strings.TrimPrefix(target, "/"))
		if !isSafePath(cleaned) {
			return ""
		}
		return cleaned
	}
	dir := path.Dir(sourcePart)
	cleaned := path.Clean(path.Join(dir, target))
	if !isSafePath(cleaned) {
		return ""
	}
	return cleaned
}

// relsPathFor returns the path of the .rels part that holds the
// relationships of the given part ("xl/workbook.xml" ->
// "xl/_rels/workbook.xml.rels"). The package-level relationship part is
// "_rels/.rels".
func relsPathFor(partPath string) string {
	if partPath == "" || partPath == "." {
		return "_rels/.rels"
	}
	dir := path.Dir(partPath)
	base := path.Base(partPath)
	if dir == "." {
		return "_rels/" + base + ".rels"
	}
	return dir + "/_rels/" + base + ".rels"
}

// stripBOM removes a leading UTF-8 BOM (0xEF 0xBB 0xBF) from data, if present.
func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// readZipFile reads the full contents of a ZIP entry.
// It enforces maxDecompressSize to guard against zip bombs and validates
// that the entry path is safe (no path traversal).
func readZipFile(f *zip.File) ([]byte, error) {
	return readZipFileWithLimit(f, maxDecompressSize)
}

// readZipFileWithLimit is the implementation of readZipFile with a
// configurable size limit. It is separated to allow tests to use a smaller
// limit.
func readZipFileWithLimit(f *zip.File, limit int64) ([]byte, error) {
	if !isSafePath(f.Name) {
		return nil, fmt.Errorf("unxlsx: unsafe zip entry path: %s", f.Name)
	}

	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("unxlsx: zip entry %s too large: %d bytes (max %d)", f.Name, f.UncompressedSize64, limit)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("unxlsx: open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	// Read up to limit+1 to detect if the actual decompressed data
	// exceeds the limit (the declared size might be wrong/forged).
	lr := io.LimitReader(rc, limit+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("unxlsx: read zip entry %s: %w", f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("unxlsx: zip entry %s decompressed size exceeds limit (%d bytes)", f.Name, limit)
	}

	return data, nil
}
