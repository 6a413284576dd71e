package unxlsx

// In-memory spreadsheet fixtures for tests. Everything is built as ZIP
// archives on the fly; no testdata files on disk. The protected fixture
// variants are derived from the plain ones by string insertion, so tests
// can assert that stripping a marker restores the plain bytes exactly.

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const tdContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/><Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/><Override PartName="/xl/worksheets/sheet2.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/><Override PartName="/xl/sharedStrings.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"/></Types>`

const tdContentTypesMacro = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/xl/workbook.xml" ContentType="application/vnd.ms-excel.sheet.macroEnabled.main+xml"/><Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/><Override PartName="/xl/worksheets/sheet2.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/><Override PartName="/xl/sharedStrings.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"/><Override PartName="/xl/vbaProject.bin" ContentType="application/vnd.ms-office.vbaProject"/></Types>`

const tdRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/></Relationships>`

const tdWorkbookRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/><Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet2.xml"/><Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings" Target="sharedStrings.xml"/></Relationships>`

const tdWorkbookRelsMacro = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/><Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet2.xml"/><Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings" Target="sharedStrings.xml"/><Relationship Id="rId4" Type="http://schemas.microsoft.com/office/2006/relationships/vbaProject" Target="vbaProject.bin"/></Relationships>`

const tdWorkbook = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><workbookPr defaultThemeVersion="166925"/><sheets><sheet name="Budget" sheetId="1" r:id="rId1"/><sheet name="Notes" sheetId="2" r:id="rId2"/></sheets></workbook>`

const tdWorkbookProtectionElem = `<workbookProtection workbookAlgorithmName="SHA-512" workbookHashValue="aGFzaA==" workbookSaltValue="c2FsdA==" workbookSpinCount="100000" lockStructure="1"/>`

const tdSheetPlain = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><dimension ref="A1"/><sheetData><row r="1"><c r="A1" t="s"><v>0</v></c></row></sheetData><pageMargins left="0.7" right="0.7" top="0.75" bottom="0.75" header="0.3" footer="0.3"/></worksheet>`

const tdSheetProtectionElem = `<sheetProtection algorithmName="SHA-512" hashValue="aGFzaA==" saltValue="c2FsdA==" spinCount="100000" sheet="1" objects="1" scenarios="1"/>`

const tdSharedStrings = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="1" uniqueCount="1"><si><t>quarterly totals</t></si></sst>`

const tdVBABin = "\xcc\x61fake-vba-project-binary\x00\x01"

// tdWorkbookProtected is tdWorkbook with structure protection inserted, so
// stripping it must restore tdWorkbook byte for byte.
func tdWorkbookProtected() string {
	return strings.Replace(tdWorkbook, "<sheets>", tdWorkbookProtectionElem+"<sheets>", 1)
}

// tdWorkbookMacro carries the codeName marker a VBA-backed workbook has.
func tdWorkbookMacro() string {
	return strings.Replace(tdWorkbookProtected(),
		`<workbookPr defaultThemeVersion="166925"/>`,
		`<workbookPr codeName="ThisWorkbook" defaultThemeVersion="166925"/>`, 1)
}

// tdSheetProtected is tdSheetPlain with sheet protection inserted.
func tdSheetProtected() string {
	return strings.Replace(tdSheetPlain, "</sheetData>", "</sheetData>"+tdSheetProtectionElem, 1)
}

// plainFiles is a minimal two-sheet workbook with no protection and no VBA.
func plainFiles() map[string]string {
	return map[string]string{
		contentTypesPath:             tdContentTypes,
		"_rels/.rels":                tdRootRels,
		"xl/workbook.xml":            tdWorkbook,
		"xl/_rels/workbook.xml.rels": tdWorkbookRels,
		"xl/worksheets/sheet1.xml":   tdSheetPlain,
		"xl/worksheets/sheet2.xml":   tdSheetPlain,
		"xl/sharedStrings.xml":       tdSharedStrings,
	}
}

// protectedFiles has workbook structure protection and protection on the
// first sheet only.
func protectedFiles() map[string]string {
	files := plainFiles()
	files["xl/workbook.xml"] = tdWorkbookProtected()
	files["xl/worksheets/sheet1.xml"] = tdSheetProtected()
	return files
}

// macroFiles is protectedFiles plus an embedded VBA project: the binary
// part, its relationship, its content-type Override, and the workbook
// codeName marker.
func macroFiles() map[string]string {
	files := protectedFiles()
	files[contentTypesPath] = tdContentTypesMacro
	files["xl/_rels/workbook.xml.rels"] = tdWorkbookRelsMacro
	files["xl/workbook.xml"] = tdWorkbookMacro()
	files["xl/vbaProject.bin"] = tdVBABin
	return files
}

// zipEntry describes one archive entry for buildArchive. The method is used
// as given (zip.Store is a valid value).
type zipEntry struct {
	name   string
	data   string
	method uint16
}

// buildArchive assembles a ZIP archive from entries in the given order.
func buildArchive(t *testing.T, entries []zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   e.method,
			Modified: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		_, err = fw.Write([]byte(e.data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// buildArchiveMap assembles a deflated ZIP archive with entries in sorted
// path order, for tests that do not care about ordering.
func buildArchiveMap(t *testing.T, files map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]zipEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, zipEntry{name: name, data: files[name], method: zip.Deflate})
	}
	return buildArchive(t, entries)
}

// openArchiveMap builds the archive and opens it as a Package.
func openArchiveMap(t *testing.T, files map[string]string) *Package {
	t.Helper()
	pkg, err := OpenBytes(buildArchiveMap(t, files))
	require.NoError(t, err)
	return pkg
}

// partData returns the current bytes of a part that must exist.
func partData(t *testing.T, pkg *Package, path string) []byte {
	t.Helper()
	part, ok := pkg.Part(path)
	require.True(t, ok, "part %s missing", path)
	return part.Data
}

// writeTempFile drops data into a fresh temp dir and returns the full path.
func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}
