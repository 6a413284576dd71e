package unxlsx

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"
)

// removeVBAProject fully excises the VBA project: the binary part, its
// content-type registration, its relationship entry, and the codeName
// marker on the workbook. A retained project can carry an Open event macro
// that re-applies protection the next time a VBA-capable host loads the
// file, so durable unprotection requires all four.
//
// The part is located through the workbook's relationship of the
// vbaProject type, never by its conventional xl/vbaProject.bin name.
// Absence of the relationship is a no-op (not every input has macros).
// All edits are staged and committed together; if any registration the
// schema requires cannot be found, nothing changes and
// ErrInconsistentPackage is reported; removing the binary while leaving a
// dangling registration would make the package invalid.
func removeVBAProject(pkg *Package) (bool, error) {
	rels, err := parseRelationships(pkg, workbookPath)
	if err != nil {
		return false, err
	}
	rel, ok := rels.findByType(relTypeVBAProject)
	if !ok {
		return false, nil
	}
	if rel.external() {
		return false, fmt.Errorf("unxlsx: vba relationship %s is external: %w", rel.ID, ErrInconsistentPackage)
	}

	target := resolveTarget(workbookPath, rel.Target)
	if target == "" {
		return false, fmt.Errorf("unxlsx: vba relationship target %q escapes package: %w", rel.Target, ErrInconsistentPackage)
	}
	if !pkg.Has(target) {
		return false, fmt.Errorf("unxlsx: vba part %s missing: %w", target, ErrInconsistentPackage)
	}

	// Stage 1: drop the <Relationship> entry from the workbook rels part.
	relsPath := relsPathFor(workbookPath)
	relsPart, _ := pkg.Part(relsPath)
	relsDoc, err := ParsePart(relsPath, relsPart.Data)
	if err != nil {
		return false, err
	}
	n, err := relsDoc.RemoveElementsWhere(func(se xml.StartElement) bool {
		if se.Name.Local != "Relationship" {
			return false
		}
		for _, attr := range se.Attr {
			if attr.Name.Local == "Id" && attr.Value == rel.ID {
				return true
			}
		}
		return false
	})
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, fmt.Errorf("unxlsx: relationship %s not found in %s: %w", rel.ID, relsPath, ErrInconsistentPackage)
	}

	// Stage 2: drop the content-type registration. The part is registered
	// either by an Override for its part name or by a Default for its
	// extension; a Default shared with surviving parts must stay.
	ctDoc, err := stageContentTypeRemoval(pkg, target)
	if err != nil {
		return false, err
	}

	// Stage 3: clear the codeName marker. Real workbooks carry it on
	// <workbookPr>; clearing a stray one on the <workbook> root costs
	// nothing. Neither being present is fine, the flag is optional.
	wbPart, ok := pkg.Part(workbookPath)
	if !ok {
		return false, fmt.Errorf("unxlsx: missing %s: %w", workbookPath, ErrNotOfficePackage)
	}
	wbDoc, err := ParsePart(workbookPath, wbPart.Data)
	if err != nil {
		return false, err
	}
	if _, err := wbDoc.RemoveAttribute("workbookPr", "codeName"); err != nil {
		return false, err
	}
	if _, err := wbDoc.RemoveAttribute("workbook", "codeName"); err != nil {
		return false, err
	}

	// Commit: every stage succeeded, apply the whole removal.
	if err := pkg.SetPartData(relsPath, relsDoc.Bytes()); err != nil {
		return false, err
	}
	if ctDoc != nil {
		if err := pkg.SetPartData(contentTypesPath, ctDoc.Bytes()); err != nil {
			return false, err
		}
	}
	if wbDoc.Changed() {
		if err := pkg.SetPartData(workbookPath, wbDoc.Bytes()); err != nil {
			return false, err
		}
	}
	pkg.RemovePart(target)
	return true, nil
}

// stageContentTypeRemoval prepares the [Content_Types].xml edit that
// unregisters the part at target. Returns nil when a shared Default covers
// the part and no edit is needed; fails with ErrInconsistentPackage when no
// registration exists at all.
func stageContentTypeRemoval(pkg *Package, target string) (*PartDocument, error) {
	ct, err := parseContentTypes(pkg)
	if err != nil {
		return nil, err
	}

	ctPart, _ := pkg.Part(contentTypesPath)
	ctDoc, err := ParsePart(contentTypesPath, ctPart.Data)
	if err != nil {
		return nil, err
	}

	if _, ok := ct.overrideFor(target); ok {
		want := "/" + target
		if _, err := ctDoc.RemoveElementsWhere(func(se xml.StartElement) bool {
			if se.Name.Local != "Override" {
				return false
			}
			for _, attr := range se.Attr {
				if attr.Name.Local == "PartName" && attr.Value == want {
					return true
				}
			}
			return false
		}); err != nil {
			return nil, err
		}
		return ctDoc, nil
	}

	def, ok := ct.defaultFor(target)
	if !ok {
		return nil, fmt.Errorf("unxlsx: part %s has no content-type registration: %w", target, ErrInconsistentPackage)
	}

	// The Default stays when any surviving part shares the extension.
	ext := strings.TrimPrefix(path.Ext(target), ".")
	for _, p := range pkg.Paths() {
		if p == target {
			continue
		}
		if strings.EqualFold(strings.TrimPrefix(path.Ext(p), "."), ext) {
			return nil, nil
		}
	}

	if _, err := ctDoc.RemoveElementsWhere(func(se xml.StartElement) bool {
		if se.Name.Local != "Default" {
			return false
		}
		for _, attr := range se.Attr {
			if attr.Name.Local == "Extension" && strings.EqualFold(attr.Value, def.Extension) {
				return true
			}
		}
		return false
	}); err != nil {
		return nil, err
	}
	return ctDoc, nil
}
