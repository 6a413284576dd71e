package unxlsx

import "bytes"

// compoundFileMagic is the signature of an OLE2 compound file. Excel stores
// password-encrypted workbooks as compound files wrapping the real package
// in EncryptionInfo/EncryptedPackage streams.
var compoundFileMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// encryptedStreamNames are entry names that mark an encrypted package even
// when the container itself is a readable ZIP.
var encryptedStreamNames = map[string]bool{
	"EncryptedPackage": true,
	"EncryptionInfo":   true,
}

// isCompoundFile reports whether data starts with the OLE2 compound file
// signature.
func isCompoundFile(data []byte) bool {
	return len(data) >= len(compoundFileMagic) && bytes.Equal(data[:len(compoundFileMagic)], compoundFileMagic)
}

// isEncryptedStream reports whether a ZIP entry name denotes one of the
// encryption streams of a password-protected package.
func isEncryptedStream(name string) bool {
	return encryptedStreamNames[name]
}
