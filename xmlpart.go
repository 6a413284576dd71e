package unxlsx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// PartDocument is a parsed, editable view over one XML part. Edits splice
// the raw bytes using token offsets from encoding/xml, so everything the
// edit does not touch (the XML declaration, namespace prefix bindings,
// attribute order, whitespace) survives byte for byte. OOXML consumers are
// strict about namespace-qualified names, so this fidelity is required
// for the output to stay readable.
//
// A PartDocument owns its bytes exclusively; it is never shared across
// parts or goroutines.
type PartDocument struct {
	path    string
	data    []byte
	changed bool
}

// ParsePart validates data as XML and wraps it for editing. Parts whose XML
// declaration names a non-UTF-8 encoding are decoded via charset.NewReaderLabel
// for validation, but structural edits on them are refused (see the edit
// methods). Fails with a wrapped ErrMalformedXML when data is not well-formed.
func ParsePart(path string, data []byte) (*PartDocument, error) {
	dec := xml.NewDecoder(bytes.NewReader(stripBOM(data)))
	dec.CharsetReader = charset.NewReaderLabel
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unxlsx: parse %s: %v: %w", path, err, ErrMalformedXML)
		}
	}
	return &PartDocument{path: path, data: data}, nil
}

// Path returns the package path of the part this document was parsed from.
func (d *PartDocument) Path() string {
	return d.path
}

// Bytes returns the current serialized form of the document.
func (d *PartDocument) Bytes() []byte {
	return d.data
}

// Changed reports whether any edit has modified the document.
func (d *PartDocument) Changed() bool {
	return d.changed
}

// RemoveElements removes every element named local in the given namespace,
// including nested content. An empty space matches any namespace; OOXML
// parts exist in both transitional and strict namespace flavors, so callers
// stripping by local name usually want the any-namespace form. Returns the
// number of elements removed; zero with a nil error when none matched.
func (d *PartDocument) RemoveElements(space, local string) (int, error) {
	return d.RemoveElementsWhere(func(se xml.StartElement) bool {
		if se.Name.Local != local {
			return false
		}
		return space == "" || se.Name.Space == space
	})
}

// RemoveElementsWhere removes every element whose start tag satisfies match,
// including all nested content. Elements inside an already-matched element
// are not matched again.
func (d *PartDocument) RemoveElementsWhere(match func(xml.StartElement) bool) (int, error) {
	utf8OK := d.spliceable()
	ranges, err := elementRanges(d.data, !utf8OK, match)
	if err != nil {
		return 0, fmt.Errorf("unxlsx: edit %s: %v: %w", d.path, err, ErrMalformedXML)
	}
	if len(ranges) == 0 {
		return 0, nil
	}
	if !utf8OK {
		return 0, d.spliceRefusedErr()
	}
	d.data = spliceOut(d.data, ranges)
	d.changed = true
	return len(ranges), nil
}

// RemoveAttribute removes the attribute named attrLocal (matched by local
// name, any prefix) from every element named elemLocal. Returns the number
// of attributes removed.
func (d *PartDocument) RemoveAttribute(elemLocal, attrLocal string) (int, error) {
	utf8OK := d.spliceable()
	edits, err := attributeEdits(d.data, !utf8OK, elemLocal, attrLocal)
	if err != nil {
		return 0, fmt.Errorf("unxlsx: edit %s: %v: %w", d.path, err, ErrMalformedXML)
	}
	if len(edits) == 0 {
		return 0, nil
	}
	if !utf8OK {
		return 0, d.spliceRefusedErr()
	}
	out := make([]byte, 0, len(d.data))
	var pos int64
	for _, e := range edits {
		out = append(out, d.data[pos:e.start]...)
		out = append(out, e.replacement...)
		pos = e.end
	}
	out = append(out, d.data[pos:]...)
	d.data = out
	d.changed = true
	return len(edits), nil
}

// spliceable reports whether offset-based editing is safe: token offsets
// index the raw bytes only when the part is UTF-8 (the OOXML default).
// Non-UTF-8 parts still scan (through charset conversion) so that a no-op
// stays a no-op, but an edit that would actually fire is refused rather
// than risk splicing at converted offsets.
func (d *PartDocument) spliceable() bool {
	switch strings.ToLower(xmlEncodingLabel(d.data)) {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return true
	}
	return false
}

func (d *PartDocument) spliceRefusedErr() error {
	return fmt.Errorf("unxlsx: part %s declares encoding %q, structural edits require utf-8: %w",
		d.path, xmlEncodingLabel(d.data), ErrMalformedXML)
}

// byteRange is a half-open range of raw bytes to drop from a document.
type byteRange struct {
	start, end int64
}

// elementRanges scans data and returns the raw byte range of every element
// whose start tag satisfies match. Ranges are disjoint and in document
// order. With useCharset the scan decodes through charset conversion and
// the offsets are only good for counting matches, not for splicing.
func elementRanges(data []byte, useCharset bool, match func(xml.StartElement) bool) ([]byteRange, error) {
	body := stripBOM(data)
	bomLen := int64(len(data) - len(body))
	dec := xml.NewDecoder(bytes.NewReader(body))
	if useCharset {
		dec.CharsetReader = charset.NewReaderLabel
	}

	var ranges []byteRange
	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			return ranges, nil
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || !match(se) {
			continue
		}
		// Consume through the matching end element; InputOffset then
		// marks the end of the element's raw text. Self-closing tags
		// yield a synthesized EndElement without consuming input, so
		// the same bookkeeping covers both forms.
		depth := 1
		for depth > 0 {
			tok, err = dec.Token()
			if err != nil {
				return nil, err
			}
			switch tok.(type) {
			case xml.StartElement:
				depth++
			case xml.EndElement:
				depth--
			}
		}
		ranges = append(ranges, byteRange{start: bomLen + start, end: bomLen + dec.InputOffset()})
	}
}

// spliceOut returns data with the given disjoint, ordered ranges removed.
func spliceOut(data []byte, ranges []byteRange) []byte {
	out := make([]byte, 0, len(data))
	var pos int64
	for _, r := range ranges {
		out = append(out, data[pos:r.start]...)
		pos = r.end
	}
	out = append(out, data[pos:]...)
	return out
}

// tagEdit replaces the raw bytes of one start tag.
type tagEdit struct {
	start, end  int64
	replacement []byte
}

// attributeEdits scans data for elements named elemLocal carrying an
// attribute whose local name is attrLocal, and produces the rewritten start
// tags with that attribute removed.
func attributeEdits(data []byte, useCharset bool, elemLocal, attrLocal string) ([]tagEdit, error) {
	body := stripBOM(data)
	bomLen := int64(len(data) - len(body))
	dec := xml.NewDecoder(bytes.NewReader(body))
	if useCharset {
		dec.CharsetReader = charset.NewReaderLabel
	}

	var edits []tagEdit
	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			return edits, nil
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != elemLocal {
			continue
		}
		if !hasAttrLocal(se, attrLocal) {
			continue
		}
		end := dec.InputOffset()
		tag := body[start:end]
		rewritten, ok := stripAttrFromTag(tag, attrLocal)
		if !ok {
			continue
		}
		edits = append(edits, tagEdit{
			start:       bomLen + start,
			end:         bomLen + end,
			replacement: rewritten,
		})
	}
}

func hasAttrLocal(se xml.StartElement, local string) bool {
	for _, attr := range se.Attr {
		if attr.Name.Local == local {
			return true
		}
	}
	return false
}

// stripAttrFromTag removes one attribute (matched by local name) from the
// raw text of a start tag, along with the whitespace run preceding it.
// The tag is everything from '<' through '>' inclusive.
func stripAttrFromTag(tag []byte, attrLocal string) ([]byte, bool) {
	i := 0
	if i >= len(tag) || tag[i] != '<' {
		return nil, false
	}
	i++
	// Skip the element name.
	for i < len(tag) && !isTagSpace(tag[i]) && tag[i] != '>' && tag[i] != '/' {
		i++
	}
	for i < len(tag) {
		wsStart := i
		for i < len(tag) && isTagSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || tag[i] == '>' || tag[i] == '/' || tag[i] == '?' {
			return nil, false
		}
		nameStart := i
		for i < len(tag) && tag[i] != '=' && !isTagSpace(tag[i]) && tag[i] != '>' && tag[i] != '/' {
			i++
		}
		name := string(tag[nameStart:i])
		for i < len(tag) && isTagSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || tag[i] != '=' {
			return nil, false
		}
		i++
		for i < len(tag) && isTagSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || (tag[i] != '"' && tag[i] != '\'') {
			return nil, false
		}
		quote := tag[i]
		i++
		valEnd := bytes.IndexByte(tag[i:], quote)
		if valEnd < 0 {
			return nil, false
		}
		i += valEnd + 1

		local := name
		if idx := strings.LastIndexByte(name, ':'); idx >= 0 {
			local = name[idx+1:]
		}
		if local == attrLocal {
			out := make([]byte, 0, len(tag))
			out = append(out, tag[:wsStart]...)
			out = append(out, tag[i:]...)
			return out, true
		}
	}
	return nil, false
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// xmlEncodingLabel extracts the encoding pseudo-attribute from the XML
// declaration, or "" when the declaration or attribute is absent.
func xmlEncodingLabel(data []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(stripBOM(data)))
	tok, err := dec.Token()
	if err != nil {
		return ""
	}
	pi, ok := tok.(xml.ProcInst)
	if !ok || pi.Target != "xml" {
		return ""
	}
	return procInstAttr(string(pi.Inst), "encoding")
}

// procInstAttr pulls a single pseudo-attribute value out of an XML
// declaration body such as `version="1.0" encoding="UTF-8"`.
func procInstAttr(inst, name string) string {
	rest := inst
	for {
		idx := strings.Index(rest, name)
		if idx < 0 {
			return ""
		}
		after := rest[idx+len(name):]
		after = strings.TrimLeft(after, " \t\r\n")
		if !strings.HasPrefix(after, "=") {
			rest = rest[idx+len(name):]
			continue
		}
		after = strings.TrimLeft(after[1:], " \t\r\n")
		if len(after) == 0 || (after[0] != '"' && after[0] != '\'') {
			return ""
		}
		quote := after[0]
		end := strings.IndexByte(after[1:], quote)
		if end < 0 {
			return ""
		}
		return after[1 : 1+end]
	}
}
