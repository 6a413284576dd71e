package unxlsx

import "fmt"

// Protection marker element names. Both live in the spreadsheetML namespace,
// but transitional and strict documents use different namespace URIs, so the
// strippers match by local name (the original tooling behaves the same way).
const (
	elemWorkbookProtection = "workbookProtection"
	elemSheetProtection    = "sheetProtection"
)

// stripWorkbookProtection removes the <workbookProtection> element, with
// all its lock and password-hash attributes, from xl/workbook.xml.
// Removal is idempotent: an absent element is a no-op, not an error.
// The part is rewritten only when a change occurred.
func stripWorkbookProtection(pkg *Package) (bool, error) {
	part, ok := pkg.Part(workbookPath)
	if !ok {
		return false, fmt.Errorf("unxlsx: missing %s: %w", workbookPath, ErrNotOfficePackage)
	}
	doc, err := ParsePart(part.Path, part.Data)
	if err != nil {
		return false, err
	}
	n, err := doc.RemoveElements("", elemWorkbookProtection)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if err := pkg.SetPartData(workbookPath, doc.Bytes()); err != nil {
		return false, err
	}
	return true, nil
}

// stripSheetProtection removes <sheetProtection> from each of the given
// worksheet parts, independently per sheet: a sheet without the element is
// skipped and never prevents processing of the others. Returns the display
// names of the sheets that were actually modified, in workbook order.
//
// Edits are staged across all sheets and committed together, so the stage
// either fully lands in the Package or leaves it untouched. Each
// worksheet's parse/strip/serialize reads no shared state, so the staging
// loop is safe to fan out across sheets if that ever becomes worth it;
// staged results merge back by part path regardless of completion order.
func stripSheetProtection(pkg *Package, sheets []SheetRef) ([]string, error) {
	var stripped []string
	staged := make(map[string][]byte)
	for _, sheet := range sheets {
		part, ok := pkg.Part(sheet.Path)
		if !ok {
			return nil, fmt.Errorf("unxlsx: sheet %q: part %s missing: %w", sheet.Name, sheet.Path, ErrInconsistentPackage)
		}
		doc, err := ParsePart(part.Path, part.Data)
		if err != nil {
			return nil, err
		}
		n, err := doc.RemoveElements("", elemSheetProtection)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			continue
		}
		staged[sheet.Path] = doc.Bytes()
		stripped = append(stripped, sheet.Name)
	}
	for path, data := range staged {
		if err := pkg.SetPartData(path, data); err != nil {
			return nil, err
		}
	}
	return stripped, nil
}
