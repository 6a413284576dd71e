package unxlsx

import "errors"

// Sentinel errors returned by the unxlsx package.
var (
	// ErrNotZipArchive indicates the input file is not a ZIP archive
	// and therefore cannot be an OOXML spreadsheet package.
	ErrNotZipArchive = errors.New("unxlsx: not a zip archive")

	// ErrNotOfficePackage indicates the archive is a valid ZIP but lacks
	// the OOXML package structure (no [Content_Types].xml).
	ErrNotOfficePackage = errors.New("unxlsx: not an office package")

	// ErrEncrypted indicates the file is a password-encrypted package
	// (an OLE compound file, or a ZIP carrying EncryptedPackage /
	// EncryptionInfo streams). Encrypted packages cannot be edited;
	// this tool removes protection markers, it does not break encryption.
	ErrEncrypted = errors.New("unxlsx: package is password encrypted")

	// ErrMalformedXML indicates a package part could not be parsed as XML.
	ErrMalformedXML = errors.New("unxlsx: malformed xml part")

	// ErrInconsistentPackage indicates the relationship or content-type
	// graph does not resolve (a sheet id with no relationship, a
	// relationship pointing at a missing part, a VBA part without its
	// registrations). Nothing is written when this is reported.
	ErrInconsistentPackage = errors.New("unxlsx: inconsistent package structure")

	// ErrSignatureInvalidated indicates the package carries a digital
	// signature that any edit would invalidate. Pass WithAllowSignatureLoss
	// to proceed anyway.
	ErrSignatureInvalidated = errors.New("unxlsx: edit would invalidate package signature")
)
