package unxlsx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveVBAProject(t *testing.T) {
	pkg := openArchiveMap(t, macroFiles())

	removed, err := removeVBAProject(pkg)
	require.NoError(t, err)
	assert.True(t, removed)

	// The binary part is gone.
	assert.False(t, pkg.Has("xl/vbaProject.bin"))

	// Its relationship entry is gone; the others are untouched bytes.
	assert.Equal(t, tdWorkbookRels, string(partData(t, pkg, "xl/_rels/workbook.xml.rels")))

	// Its content-type Override is gone; the rest of the registry is
	// untouched bytes.
	wantCT := strings.Replace(tdContentTypesMacro,
		`<Override PartName="/xl/vbaProject.bin" ContentType="application/vnd.ms-office.vbaProject"/>`, "", 1)
	assert.Equal(t, wantCT, string(partData(t, pkg, contentTypesPath)))

	// The codeName marker is cleared; workbook protection (a different
	// stage's concern) stays.
	assert.Equal(t, tdWorkbookProtected(), string(partData(t, pkg, workbookPath)))

	// Unrelated parts survive byte for byte.
	assert.Equal(t, tdSharedStrings, string(partData(t, pkg, "xl/sharedStrings.xml")))
}

func TestRemoveVBAProjectAbsent(t *testing.T) {
	pkg := openArchiveMap(t, plainFiles())

	removed, err := removeVBAProject(pkg)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, tdWorkbookRels, string(partData(t, pkg, "xl/_rels/workbook.xml.rels")))
}

func TestRemoveVBAProjectMissingPart(t *testing.T) {
	files := macroFiles()
	delete(files, "xl/vbaProject.bin")
	pkg := openArchiveMap(t, files)

	_, err := removeVBAProject(pkg)
	assert.ErrorIs(t, err, ErrInconsistentPackage)

	// Nothing was committed.
	assert.Equal(t, tdWorkbookRelsMacro, string(partData(t, pkg, "xl/_rels/workbook.xml.rels")))
	assert.Equal(t, tdWorkbookMacro(), string(partData(t, pkg, workbookPath)))
}

func TestRemoveVBAProjectExternalRelationship(t *testing.T) {
	files := macroFiles()
	files["xl/_rels/workbook.xml.rels"] = strings.Replace(tdWorkbookRelsMacro,
		`Target="vbaProject.bin"`,
		`Target="https://example.com/vbaProject.bin" TargetMode="External"`, 1)
	pkg := openArchiveMap(t, files)

	_, err := removeVBAProject(pkg)
	assert.ErrorIs(t, err, ErrInconsistentPackage)
}

func TestRemoveVBAProjectNoContentTypeRegistration(t *testing.T) {
	// Neither an Override nor a bin Default registers the part: refuse and
	// change nothing rather than leave a dangling registration graph.
	files := macroFiles()
	files[contentTypesPath] = tdContentTypes
	pkg := openArchiveMap(t, files)

	_, err := removeVBAProject(pkg)
	assert.ErrorIs(t, err, ErrInconsistentPackage)
	assert.Equal(t, tdWorkbookRelsMacro, string(partData(t, pkg, "xl/_rels/workbook.xml.rels")))
	assert.True(t, pkg.Has("xl/vbaProject.bin"))
}

// contentTypesWithBinDefault registers vbaProject.bin by extension Default
// instead of by part Override.
func contentTypesWithBinDefault() string {
	return strings.Replace(tdContentTypes,
		`<Default Extension="xml"`,
		`<Default Extension="bin" ContentType="application/vnd.ms-office.vbaProject"/><Default Extension="xml"`, 1)
}

func TestRemoveVBAProjectDefaultRegistration(t *testing.T) {
	files := macroFiles()
	files[contentTypesPath] = contentTypesWithBinDefault()
	pkg := openArchiveMap(t, files)

	removed, err := removeVBAProject(pkg)
	require.NoError(t, err)
	assert.True(t, removed)

	// The bin Default served only the removed part, so it goes too.
	assert.Equal(t, tdContentTypes, string(partData(t, pkg, contentTypesPath)))
}

func TestRemoveVBAProjectSharedDefaultStays(t *testing.T) {
	files := macroFiles()
	files[contentTypesPath] = contentTypesWithBinDefault()
	files["xl/media/payload.bin"] = "other binary part"
	pkg := openArchiveMap(t, files)

	removed, err := removeVBAProject(pkg)
	require.NoError(t, err)
	assert.True(t, removed)

	// Another .bin part survives, so the shared Default must stay.
	assert.Equal(t, contentTypesWithBinDefault(), string(partData(t, pkg, contentTypesPath)))
	assert.True(t, pkg.Has("xl/media/payload.bin"))
}
