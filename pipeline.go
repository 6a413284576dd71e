package unxlsx

import (
	"fmt"
	"os"
)

// Result reports what a pipeline run changed.
type Result struct {
	// WorkbookStripped is true when a workbookProtection element was
	// removed.
	WorkbookStripped bool

	// SheetsStripped lists the display names of sheets whose
	// sheetProtection element was removed, in workbook order.
	SheetsStripped []string

	// VBARemoved is true when a VBA project part and its registrations
	// were excised.
	VBARemoved bool
}

// Changed reports whether the run modified the package at all.
func (r *Result) Changed() bool {
	return r.WorkbookStripped || len(r.SheetsStripped) > 0 || r.VBARemoved
}

// Unprotect runs the removal pipeline over an in-memory package: workbook
// structure protection, then per-sheet protection, then the VBA project,
// each stage independently skippable. On any failure the error is returned
// with part and stage context and the package must be considered
// unusable for writing; callers that want all-or-nothing semantics on disk
// get them from UnprotectFile, which never writes output on a failure path.
func Unprotect(pkg *Package, opts ...Option) (*Result, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger

	signed, err := hasSignature(pkg)
	if err != nil {
		return nil, err
	}
	if signed {
		if !cfg.allowSignatureLoss {
			return nil, ErrSignatureInvalidated
		}
		log.Warn("package is digitally signed; edits will invalidate the signature")
	}

	// Sheet enumeration happens up front: a malformed relationship graph
	// aborts the run before any stage edits the package.
	sheets, err := sheetList(pkg)
	if err != nil {
		return nil, err
	}
	targets, err := selectSheets(sheets, cfg.sheetNames)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	if cfg.workbook {
		result.WorkbookStripped, err = stripWorkbookProtection(pkg)
		if err != nil {
			return nil, fmt.Errorf("unxlsx: stage %s: %w", StageStructure, err)
		}
		log.Info("workbook protection stage done",
			"stage", StageStructure, "modified", result.WorkbookStripped)
	} else {
		log.Info("workbook protection stage skipped", "stage", StageStructure)
	}

	if cfg.sheets {
		result.SheetsStripped, err = stripSheetProtection(pkg, targets)
		if err != nil {
			return nil, fmt.Errorf("unxlsx: stage %s: %w", StageSheets, err)
		}
		log.Info("sheet protection stage done",
			"stage", StageSheets, "sheets_modified", len(result.SheetsStripped))
	} else {
		log.Info("sheet protection stage skipped", "stage", StageSheets)
	}

	if cfg.vba {
		result.VBARemoved, err = removeVBAProject(pkg)
		if err != nil {
			return nil, fmt.Errorf("unxlsx: stage %s: %w", StageVBA, err)
		}
		log.Info("vba removal stage done",
			"stage", StageVBA, "modified", result.VBARemoved)
	} else {
		log.Info("vba removal stage skipped", "stage", StageVBA)
	}

	return result, nil
}

// Pipeline stage names used in errors and log events.
const (
	StageStructure = "structure"
	StageSheets    = "sheets"
	StageVBA       = "vba"
	StageWrite     = "write"
)

// selectSheets filters the workbook's sheet list down to the requested
// display names; an empty request selects every sheet. Unknown names fail
// before any edit.
func selectSheets(sheets []SheetRef, names []string) ([]SheetRef, error) {
	if len(names) == 0 {
		return sheets, nil
	}
	byName := make(map[string]SheetRef, len(sheets))
	for _, s := range sheets {
		byName[s.Name] = s
	}
	selected := make([]SheetRef, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unxlsx: no sheet named %q in workbook", name)
		}
		selected = append(selected, s)
	}
	return selected, nil
}

// UnprotectFile runs the pipeline from one file to another. The input is
// fully buffered before the output is opened, so inPath and outPath may
// name the same file; the output is written only after every stage has
// succeeded. When the run changes nothing the input bytes are re-emitted
// verbatim, so an already-unprotected file round-trips byte-identically.
func UnprotectFile(inPath, outPath string, opts ...Option) (*Result, error) {
	pkg, err := Open(inPath)
	if err != nil {
		return nil, err
	}

	result, err := Unprotect(pkg, opts...)
	if err != nil {
		return nil, err
	}

	var out []byte
	if result.Changed() {
		out, err = pkg.Bytes()
		if err != nil {
			return nil, fmt.Errorf("unxlsx: stage %s: %w", StageWrite, err)
		}
	} else {
		out = pkg.raw
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return nil, fmt.Errorf("unxlsx: stage %s: write %s: %w", StageWrite, outPath, err)
	}
	return result, nil
}
