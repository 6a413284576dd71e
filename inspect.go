package unxlsx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Report is the result of surveying a package for protection constructs
// before (or after) stripping them.
type Report struct {
	// WorkbookProtected is true when xl/workbook.xml carries a
	// <workbookProtection> element with at least one attribute set.
	WorkbookProtected bool

	// ProtectedSheets and UnprotectedSheets partition the workbook's
	// sheet list by presence of a <sheetProtection> element, in
	// workbook order.
	ProtectedSheets   []SheetRef
	UnprotectedSheets []SheetRef

	// HasVBA is true when the workbook declares a VBA project
	// relationship.
	HasVBA bool

	// Signed is true when the package carries digital signature parts;
	// editing such a package invalidates the signature.
	Signed bool
}

// Inspect surveys the package: workbook structure protection, per-sheet
// protection, VBA presence, and digital signatures. It performs no edits.
func Inspect(pkg *Package) (*Report, error) {
	report := &Report{}

	wbPart, ok := pkg.Part(workbookPath)
	if !ok {
		return nil, fmt.Errorf("unxlsx: missing %s: %w", workbookPath, ErrNotOfficePackage)
	}
	protected, err := workbookProtectionSet(wbPart.Data)
	if err != nil {
		return nil, err
	}
	report.WorkbookProtected = protected

	sheets, err := sheetList(pkg)
	if err != nil {
		return nil, err
	}
	for _, sheet := range sheets {
		part, ok := pkg.Part(sheet.Path)
		if !ok {
			return nil, fmt.Errorf("unxlsx: sheet %q: part %s missing: %w", sheet.Name, sheet.Path, ErrInconsistentPackage)
		}
		has, err := containsElement(part.Path, part.Data, elemSheetProtection)
		if err != nil {
			return nil, err
		}
		if has {
			report.ProtectedSheets = append(report.ProtectedSheets, sheet)
		} else {
			report.UnprotectedSheets = append(report.UnprotectedSheets, sheet)
		}
	}

	rels, err := parseRelationships(pkg, workbookPath)
	if err != nil {
		return nil, err
	}
	_, report.HasVBA = rels.findByType(relTypeVBAProject)

	report.Signed, err = hasSignature(pkg)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// workbookProtectionSet reports whether the workbook part carries a
// workbookProtection element with at least one attribute. A bare element
// with no attributes locks nothing, so it does not count as protected
// (though the stripper removes it regardless).
func workbookProtectionSet(data []byte) (bool, error) {
	dec := xml.NewDecoder(bytes.NewReader(stripBOM(data)))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("unxlsx: parse %s: %v: %w", workbookPath, err, ErrMalformedXML)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == elemWorkbookProtection {
			return len(se.Attr) > 0, nil
		}
	}
}

// containsElement reports whether the part contains an element with the
// given local name, in any namespace.
func containsElement(path string, data []byte, local string) (bool, error) {
	dec := xml.NewDecoder(bytes.NewReader(stripBOM(data)))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("unxlsx: parse %s: %v: %w", path, err, ErrMalformedXML)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == local {
			return true, nil
		}
	}
}
