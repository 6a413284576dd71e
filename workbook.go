package unxlsx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Well-known workbook part paths and namespaces.
const (
	workbookPath    = "xl/workbook.xml"
	nsSpreadsheetML = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsOfficeDocRels = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// SheetRef identifies one worksheet: its display name, the relationship id
// the workbook uses to point at it, and the resolved part path.
type SheetRef struct {
	Name  string
	RelID string
	Path  string
}

// sheetEntry is a raw <sheet> element from the workbook's <sheets> list,
// before relationship resolution.
type sheetEntry struct {
	name  string
	relID string
}

// sheetList enumerates the worksheet parts of the package: the workbook's
// <sheets> list cross-referenced through xl/_rels/workbook.xml.rels.
// Filenames are never guessed. A sheet id without a relationship, an
// external or non-worksheet relationship, or a relationship pointing at a
// missing part is reported as ErrInconsistentPackage.
func sheetList(pkg *Package) ([]SheetRef, error) {
	part, ok := pkg.Part(workbookPath)
	if !ok {
		return nil, fmt.Errorf("unxlsx: missing %s: %w", workbookPath, ErrNotOfficePackage)
	}

	entries, err := parseWorkbookSheets(part.Data)
	if err != nil {
		return nil, err
	}

	rels, err := parseRelationships(pkg, workbookPath)
	if err != nil {
		return nil, err
	}

	sheets := make([]SheetRef, 0, len(entries))
	for _, entry := range entries {
		rel, ok := rels.findByID(entry.relID)
		if !ok {
			return nil, fmt.Errorf("unxlsx: sheet %q: relationship %s not found: %w", entry.name, entry.relID, ErrInconsistentPackage)
		}
		if rel.external() {
			return nil, fmt.Errorf("unxlsx: sheet %q: relationship %s is external: %w", entry.name, entry.relID, ErrInconsistentPackage)
		}
		target := resolveTarget(workbookPath, rel.Target)
		if target == "" {
			return nil, fmt.Errorf("unxlsx: sheet %q: relationship target %q escapes package: %w", entry.name, rel.Target, ErrInconsistentPackage)
		}
		if !pkg.Has(target) {
			return nil, fmt.Errorf("unxlsx: sheet %q: part %s missing: %w", entry.name, target, ErrInconsistentPackage)
		}
		sheets = append(sheets, SheetRef{
			Name:  entry.name,
			RelID: entry.relID,
			Path:  target,
		})
	}
	return sheets, nil
}

// parseWorkbookSheets extracts (name, r:id) pairs from the workbook's
// <sheets> element via a token scan, tolerant of namespace flavor.
func parseWorkbookSheets(data []byte) ([]sheetEntry, error) {
	dec := xml.NewDecoder(bytes.NewReader(stripBOM(data)))

	var entries []sheetEntry
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("unxlsx: parse %s: %v: %w", workbookPath, err, ErrMalformedXML)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		var entry sheetEntry
		for _, attr := range se.Attr {
			switch {
			case attr.Name.Local == "name" && attr.Name.Space == "":
				entry.name = attr.Value
			case attr.Name.Local == "id" && attr.Name.Space == nsOfficeDocRels:
				entry.relID = attr.Value
			}
		}
		if entry.relID == "" {
			return nil, fmt.Errorf("unxlsx: sheet %q has no relationship id: %w", entry.name, ErrMalformedXML)
		}
		entries = append(entries, entry)
	}
}
