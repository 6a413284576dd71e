// Package unxlsx edits Office Open XML spreadsheet packages (.xlsx/.xlsm)
// to remove write-protection markers: workbook structure protection,
// per-sheet protection, and an embedded VBA project that could re-apply
// protection on open. Nothing else in the package is altered: parts the
// pipeline does not touch survive byte for byte.
//
// The package cannot and does not break encryption: password-encrypted
// files are detected and rejected with [ErrEncrypted].
//
// # Opening a package
//
// Use [Open] to read a file by path, or [NewReader] / [OpenBytes] for
// in-memory input. The whole archive is buffered up front, so the output
// path of a later write may safely equal the input path:
//
//	pkg, err := unxlsx.Open("report.xlsx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Inspecting
//
// [Inspect] surveys the package without editing it: the workbook
// protection flag, which sheets are protected, whether a VBA project is
// present, and whether the package is digitally signed.
//
// # Unprotecting
//
// [Unprotect] runs the removal pipeline over an in-memory [Package];
// [UnprotectFile] wraps it file-to-file and never writes output on a
// failure path:
//
//	res, err := unxlsx.UnprotectFile("in.xlsm", "out.xlsm",
//	    unxlsx.WithSheets("Budget", "Forecast"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Changed())
//
// Absent constructs are no-ops, not errors: running the pipeline over an
// already-unprotected file reproduces it unchanged, and running it twice
// is the same as running it once.
//
// # Error Handling
//
// The package defines sentinel errors for the failure categories:
//   - [ErrNotZipArchive] – the input is not a ZIP archive
//   - [ErrNotOfficePackage] – no [Content_Types].xml registry
//   - [ErrEncrypted] – the package is password encrypted
//   - [ErrMalformedXML] – a part is not well-formed XML
//   - [ErrInconsistentPackage] – the relationship/content-type graph does not resolve
//   - [ErrSignatureInvalidated] – the package is signed and edits were not authorized
//
// Filesystem failures surface as wrapped *os.PathError values.
package unxlsx
