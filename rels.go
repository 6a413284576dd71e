package unxlsx

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Relationship types looked up by the pipeline. Parts are always located
// through these, never by guessing filenames: Excel is free to use
// arbitrary internal names.
const (
	relTypeWorksheet       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet"
	relTypeVBAProject      = "http://schemas.microsoft.com/office/2006/relationships/vbaProject"
	relTypeSignatureOrigin = "http://schemas.openxmlformats.org/package/2006/relationships/digital-signature/origin"
)

// signaturePartPrefix is where package digital signature parts conventionally
// live.
const signaturePartPrefix = "_xmlsignatures/"

// relationshipsXML models a .rels part: the typed pointers from one part to
// others, resolved by id.
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML is a single <Relationship> entry.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// external reports whether the relationship points outside the package.
func (r relationshipXML) external() bool {
	return strings.EqualFold(r.TargetMode, "External")
}

// parseRelationships reads and decodes the .rels part belonging to
// sourcePart. A missing .rels part yields an empty set, not an error;
// a present but unparsable one is ErrMalformedXML.
func parseRelationships(pkg *Package, sourcePart string) (*relationshipsXML, error) {
	relsPath := relsPathFor(sourcePart)
	part, ok := pkg.Part(relsPath)
	if !ok {
		return &relationshipsXML{}, nil
	}

	var rels relationshipsXML
	if err := xml.Unmarshal(stripBOM(part.Data), &rels); err != nil {
		return nil, fmt.Errorf("unxlsx: parse %s: %v: %w", relsPath, err, ErrMalformedXML)
	}
	return &rels, nil
}

// findByID returns the relationship with the given id.
func (r *relationshipsXML) findByID(id string) (relationshipXML, bool) {
	for _, rel := range r.Relationships {
		if rel.ID == id {
			return rel, true
		}
	}
	return relationshipXML{}, false
}

// findByType returns the first relationship of the given type.
func (r *relationshipsXML) findByType(relType string) (relationshipXML, bool) {
	for _, rel := range r.Relationships {
		if rel.Type == relType {
			return rel, true
		}
	}
	return relationshipXML{}, false
}

// hasSignature reports whether the package carries a digital signature:
// either signature parts under _xmlsignatures/ or a signature-origin
// relationship at package level. Any edit to a signed package invalidates
// the signature, which the pipeline refuses by default.
func hasSignature(pkg *Package) (bool, error) {
	for _, p := range pkg.Paths() {
		if strings.HasPrefix(p, signaturePartPrefix) {
			return true, nil
		}
	}
	rootRels, err := parseRelationships(pkg, ".")
	if err != nil {
		return false, err
	}
	if _, ok := rootRels.findByType(relTypeSignatureOrigin); ok {
		return true, nil
	}
	return false, nil
}
