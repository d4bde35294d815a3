package ligolw

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrMalformedStream is returned when a table stream cannot be split into rows.
var ErrMalformedStream = errors.New("malformed table stream")

const defaultDelimiter = ","

// Column describes one column of a table: its name without table prefix and its LIGO_LW type.
type Column struct {
	Name string
	Type string
}

// IsText reports whether values of the column are written as quoted strings.
func (c Column) IsText() bool {
	switch c.Type {
	case "lstring", "string", "char_s", "char_v", "ilwd:char", "ilwd:char_u":
		return true
	}
	return false
}

// Cell is a single table value. Null cells are written as empty fields.
type Cell struct {
	Value string
	Null  bool
}

// NullCell returns an unset cell.
func NullCell() Cell {
	return Cell{Null: true}
}

// ValueCell returns a cell holding v.
func ValueCell(v string) Cell {
	return Cell{Value: v}
}

// Table is a LIGO_LW table.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]Cell

	delimiter string
}

// NewTable returns an empty table with the given columns.
func NewTable(name string, columns []Column) *Table {
	return &Table{
		Name:      stripTableName(name),
		Columns:   columns,
		delimiter: defaultDelimiter,
	}
}

// ColumnIndex returns the index of the named column, or -1 if the table has no such column.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Append adds a row to the table. The row must have one cell per column.
func (t *Table) Append(row []Cell) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table %s has %d columns", len(row), t.Name, len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Get returns the cell of row in the named column. The second value is false when the table has
// no such column or row.
func (t *Table) Get(row int, column string) (Cell, bool) {
	i := t.ColumnIndex(column)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return Cell{}, false
	}
	return t.Rows[row][i], true
}

// Set replaces the cell of row in the named column.
func (t *Table) Set(row int, column string, c Cell) error {
	i := t.ColumnIndex(column)
	if i < 0 {
		return fmt.Errorf("table %s has no column %s", t.Name, column)
	}
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("table %s has no row %d", t.Name, row)
	}
	t.Rows[row][i] = c
	return nil
}

func tableFromElement(e *element) (*Table, error) {
	t := &Table{Name: stripTableName(e.attr("Name")), delimiter: defaultDelimiter}

	var stream *element
	for _, c := range e.children {
		switch c.name {
		case columnElement:
			t.Columns = append(t.Columns, Column{Name: stripColumnName(c.attr("Name")), Type: c.attr("Type")})
		case streamElement:
			if stream != nil {
				return nil, fmt.Errorf("%w: more than one stream", ErrMalformedStream)
			}
			stream = c
		}
	}

	if stream == nil {
		stream = &element{name: streamElement, attrs: streamAttrs(t.Name, t.delimiter)}
		e.children = append(e.children, stream)
	} else {
		if d := stream.attr("Delimiter"); d != "" {
			t.delimiter = d
		}
		rows, err := decodeStream(stream.text, t.delimiter, len(t.Columns))
		if err != nil {
			return nil, err
		}
		t.Rows = rows
	}

	stream.encode = t.encodeStream
	return t, nil
}

func (t *Table) toElement() *element {
	e := &element{
		name:  tableElement,
		attrs: []xml.Attr{{Name: xml.Name{Local: "Name"}, Value: t.Name + ":table"}},
	}
	for _, c := range t.Columns {
		e.children = append(e.children, &element{
			name: columnElement,
			attrs: []xml.Attr{
				{Name: xml.Name{Local: "Name"}, Value: t.Name + ":" + c.Name},
				{Name: xml.Name{Local: "Type"}, Value: c.Type},
			},
		})
	}
	stream := &element{name: streamElement, attrs: streamAttrs(t.Name, t.delimiter), encode: t.encodeStream}
	e.children = append(e.children, stream)
	return e
}

func streamAttrs(table, delimiter string) []xml.Attr {
	return []xml.Attr{
		{Name: xml.Name{Local: "Name"}, Value: table + ":table"},
		{Name: xml.Name{Local: "Type"}, Value: "Local"},
		{Name: xml.Name{Local: "Delimiter"}, Value: delimiter},
	}
}

// encodeStream renders the rows as the text of a Stream element nested at depth.
func (t *Table) encodeStream(depth int) string {
	if len(t.Rows) == 0 {
		return ""
	}

	rowIndent := strings.Repeat("\t", depth+1)
	lines := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		fields := make([]string, len(row))
		for i, c := range row {
			fields[i] = encodeCell(t.Columns[i], c)
		}
		lines = append(lines, rowIndent+strings.Join(fields, t.delimiter))
	}

	return "\n" + strings.Join(lines, t.delimiter+"\n") + "\n" + strings.Repeat("\t", depth)
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func encodeCell(col Column, c Cell) string {
	if c.Null {
		return ""
	}
	if col.IsText() {
		return `"` + quoteEscaper.Replace(c.Value) + `"`
	}
	return c.Value
}

type token struct {
	text   string
	quoted bool
}

// decodeStream splits stream text into rows of ncols cells.
func decodeStream(text, delimiter string, ncols int) ([][]Cell, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if ncols == 0 {
		return nil, fmt.Errorf("%w: data without columns", ErrMalformedStream)
	}

	toks, err := tokenize(text, delimiter)
	if err != nil {
		return nil, err
	}

	// Tolerate a delimiter after the last value.
	if last := toks[len(toks)-1]; len(toks)%ncols == 1 && !last.quoted && last.text == "" {
		toks = toks[:len(toks)-1]
	}
	if len(toks)%ncols != 0 {
		return nil, fmt.Errorf("%w: %d values do not fill rows of %d columns", ErrMalformedStream, len(toks), ncols)
	}

	rows := make([][]Cell, 0, len(toks)/ncols)
	for i := 0; i < len(toks); i += ncols {
		row := make([]Cell, ncols)
		for j, tok := range toks[i : i+ncols] {
			switch {
			case tok.quoted:
				row[j] = ValueCell(tok.text)
			case tok.text == "":
				row[j] = NullCell()
			default:
				row[j] = ValueCell(tok.text)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func tokenize(text, delimiter string) ([]token, error) {
	delim := []rune(delimiter)
	if len(delim) != 1 {
		return nil, fmt.Errorf("%w: unsupported delimiter %q", ErrMalformedStream, delimiter)
	}

	var toks []token
	var b strings.Builder
	var inQuotes, quoted, escaped bool

	flush := func() {
		if quoted {
			toks = append(toks, token{text: b.String(), quoted: true})
		} else {
			toks = append(toks, token{text: strings.TrimSpace(b.String())})
		}
		b.Reset()
		quoted = false
	}

	for _, r := range text {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case inQuotes && r == '\\':
			escaped = true
		case r == '"' && inQuotes:
			inQuotes = false
		case r == '"':
			if quoted || strings.TrimSpace(b.String()) != "" {
				return nil, fmt.Errorf("%w: unexpected quote", ErrMalformedStream)
			}
			b.Reset()
			inQuotes, quoted = true, true
		case inQuotes:
			b.WriteRune(r)
		case r == delim[0]:
			flush()
		case quoted:
			if !unicode.IsSpace(r) {
				return nil, fmt.Errorf("%w: unexpected %q after quoted value", ErrMalformedStream, r)
			}
		default:
			b.WriteRune(r)
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("%w: unterminated quoted value", ErrMalformedStream)
	}
	flush()

	return toks, nil
}

// stripTableName removes the ":table" suffix of LIGO_LW table names.
func stripTableName(name string) string {
	return strings.TrimSuffix(name, ":table")
}

// stripColumnName removes the "table:" prefix of LIGO_LW column names.
func stripColumnName(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}
