// Package ligolw reads and writes LIGO Light-Weight XML documents.
//
// Only the parts of the format needed to carry tables are interpreted: Table, Column and Stream
// elements. Every other element is kept verbatim so that a document can be read, have some of its
// table cells changed and be written back as a valid container. Comments between elements are
// kept too; comments inside text content and processing instructions are not.
package ligolw

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/ubuntu/decorate"
)

var (
	// ErrTableNotFound is returned when a document has no table with the requested name.
	ErrTableNotFound = errors.New("table not found")
	// ErrMultipleTables is returned when a document has more than one table with the requested name.
	ErrMultipleTables = errors.New("more than one table with the same name")
	// ErrNotLIGOLW is returned when the root element of a document is not LIGO_LW.
	ErrNotLIGOLW = errors.New("document root is not a LIGO_LW element")
)

const (
	rootElement   = "LIGO_LW"
	tableElement  = "Table"
	columnElement = "Column"
	streamElement = "Stream"

	xmlHeader = `<?xml version='1.0' encoding='utf-8'?>`
	doctype   = `<!DOCTYPE LIGO_LW SYSTEM "http://ldas-sw.ligo.caltech.edu/doc/ligolwAPI/html/ligolw_dtd.txt">`
)

// element is a node of the document tree.
type element struct {
	name     string
	attrs    []xml.Attr
	text     string
	children []*element
	comment  bool

	// encode, when set, generates the text content at write time given the element depth.
	encode func(depth int) string
}

func (e *element) attr(name string) string {
	for _, a := range e.attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (e *element) walk(fn func(*element)) {
	fn(e)
	for _, c := range e.children {
		c.walk(fn)
	}
}

// Document is a parsed LIGO_LW document.
type Document struct {
	root *element
	// comments are the comments outside the root element.
	comments []string
	tables   map[*element]*Table
}

// New returns an empty LIGO_LW document.
func New() *Document {
	return &Document{
		root:   &element{name: rootElement},
		tables: make(map[*element]*Table),
	}
}

// ReadFile parses the LIGO_LW document at path.
func ReadFile(path string) (doc *Document, err error) {
	defer decorate.OnError(&err, "could not read LIGO_LW file %s", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// Read parses a LIGO_LW document from r.
func Read(r io.Reader) (*Document, error) {
	root, comments, err := parse(r)
	if err != nil {
		return nil, err
	}
	if root.name != rootElement {
		return nil, fmt.Errorf("%w: found %q", ErrNotLIGOLW, root.name)
	}

	return &Document{root: root, comments: comments, tables: make(map[*element]*Table)}, nil
}

func parse(r io.Reader) (root *element, comments []string, err error) {
	dec := xml.NewDecoder(r)

	var stack []*element
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("invalid XML: %v", err)
		}

		switch tok := tok.(type) {
		case xml.StartElement:
			e := &element{name: tok.Name.Local}
			for _, a := range tok.Attr {
				e.attrs = append(e.attrs, xml.Attr{Name: xml.Name{Local: a.Name.Local}, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, nil, errors.New("invalid XML: more than one root element")
				}
				root = e
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, e)
			}
			stack = append(stack, e)

		case xml.EndElement:
			e := stack[len(stack)-1]
			switch {
			case strings.TrimSpace(e.text) != "":
				e.children = slices.DeleteFunc(e.children, func(c *element) bool { return c.comment })
			case len(e.children) > 0:
				e.text = ""
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(tok)
			}

		case xml.Comment:
			if len(stack) == 0 {
				comments = append(comments, string(tok))
				continue
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, &element{comment: true, text: string(tok)})
		}
	}

	if root == nil {
		return nil, nil, errors.New("invalid XML: no root element")
	}
	return root, comments, nil
}

// Table returns the only table named name in the document.
// Names are compared without their ":table" suffix.
func (d *Document) Table(name string) (*Table, error) {
	name = stripTableName(name)

	var found []*element
	d.root.walk(func(e *element) {
		if e.name == tableElement && stripTableName(e.attr("Name")) == name {
			found = append(found, e)
		}
	})

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %d tables named %s", ErrMultipleTables, len(found), name)
	}

	if t, ok := d.tables[found[0]]; ok {
		return t, nil
	}

	t, err := tableFromElement(found[0])
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	d.tables[found[0]] = t
	return t, nil
}

// AddTable appends t to the top level of the document.
func (d *Document) AddTable(t *Table) {
	e := t.toElement()
	d.root.children = append(d.root.children, e)
	d.tables[e] = t
}

// Write serializes the document to w. Tables obtained from the document are written with their
// current rows.
func (d *Document) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(xmlHeader + "\n")
	bw.WriteString(doctype + "\n")
	for _, c := range d.comments {
		bw.WriteString("<!--" + c + "-->\n")
	}
	writeElement(bw, d.root, 0)
	return bw.Flush()
}

// Bytes returns the serialized document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeElement(w *bufio.Writer, e *element, depth int) {
	indent := strings.Repeat("\t", depth)

	w.WriteString(indent)
	if e.comment {
		w.WriteString("<!--" + e.text + "-->\n")
		return
	}
	w.WriteString("<" + e.name)
	for _, a := range e.attrs {
		w.WriteString(" " + a.Name.Local + `="`)
		w.WriteString(attrEscaper.Replace(a.Value))
		w.WriteString(`"`)
	}

	text := e.text
	if e.encode != nil {
		text = e.encode(depth)
	}

	if len(e.children) == 0 && text == "" {
		w.WriteString("/>\n")
		return
	}
	w.WriteString(">")

	if len(e.children) > 0 {
		w.WriteString("\n")
		for _, c := range e.children {
			writeElement(w, c, depth+1)
		}
		w.WriteString(indent)
	} else {
		w.WriteString(textEscaper.Replace(text))
	}
	w.WriteString("</" + e.name + ">\n")
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", `"`, "&quot;", "\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;")
)
