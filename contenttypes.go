package unxlsx

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"
)

// Content types relevant to protection and VBA handling.
const (
	contentTypeVBAProject = "application/vnd.ms-office.vbaProject"
)

// contentTypesXML models [Content_Types].xml: the registry mapping part
// names (Override) or extensions (Default) to MIME media types.
type contentTypesXML struct {
	XMLName   xml.Name     `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []ctDefault  `xml:"Default"`
	Overrides []ctOverride `xml:"Override"`
}

type ctDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// parseContentTypes reads and decodes [Content_Types].xml.
func parseContentTypes(pkg *Package) (*contentTypesXML, error) {
	part, ok := pkg.Part(contentTypesPath)
	if !ok {
		return nil, fmt.Errorf("unxlsx: missing %s: %w", contentTypesPath, ErrNotOfficePackage)
	}
	var ct contentTypesXML
	if err := xml.Unmarshal(stripBOM(part.Data), &ct); err != nil {
		return nil, fmt.Errorf("unxlsx: parse %s: %v: %w", contentTypesPath, err, ErrMalformedXML)
	}
	return &ct, nil
}

// overrideFor returns the Override entry registered for the given part path
// (package paths carry no leading slash; PartName attributes do).
func (ct *contentTypesXML) overrideFor(partPath string) (ctOverride, bool) {
	want := "/" + partPath
	for _, o := range ct.Overrides {
		if o.PartName == want {
			return o, true
		}
	}
	return ctOverride{}, false
}

// defaultFor returns the Default entry registered for the extension of the
// given part path. Extension matching is case-insensitive per OPC.
func (ct *contentTypesXML) defaultFor(partPath string) (ctDefault, bool) {
	ext := strings.TrimPrefix(path.Ext(partPath), ".")
	for _, d := range ct.Defaults {
		if strings.EqualFold(d.Extension, ext) {
			return d, true
		}
	}
	return ctDefault{}, false
}
