package ligolw_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/hwinj/hwinj/internal/ligolw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		file  string
		table string

		wantRows int
		wantErr  error
	}{
		"Single sim_inspiral row":      {file: "one_row.xml", table: "sim_inspiral", wantRows: 1},
		"Table name with suffix":       {file: "one_row.xml", table: "sim_inspiral:table", wantRows: 1},
		"Other table of same document": {file: "one_row.xml", table: "process", wantRows: 1},
		"Error on missing table":       {file: "one_row.xml", table: "sim_burst", wantErr: ligolw.ErrTableNotFound},
		"Error on duplicated table":    {file: "two_tables.xml", table: "sim_inspiral", wantErr: ligolw.ErrMultipleTables},
		"Error on incomplete last row": {file: "malformed_stream.xml", table: "sim_inspiral", wantErr: ligolw.ErrMalformedStream},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			doc, err := ligolw.ReadFile(filepath.Join("testdata", tc.file))
			require.NoError(t, err, "Setup: could not read document")

			table, err := doc.Table(tc.table)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, table.Rows, tc.wantRows, "Table should have the expected number of rows")
		})
	}
}

func TestReadFileErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		file string

		wantErr error
	}{
		"Error on missing file":         {file: "does_not_exist.xml"},
		"Error on invalid XML":          {file: "invalid.xml"},
		"Error on non LIGO_LW document": {file: "not_ligolw.xml", wantErr: ligolw.ErrNotLIGOLW},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := ligolw.ReadFile(filepath.Join("testdata", tc.file))
			require.Error(t, err, "ReadFile should fail")
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestCells(t *testing.T) {
	t.Parallel()

	doc, err := ligolw.ReadFile(filepath.Join("testdata", "one_row.xml"))
	require.NoError(t, err, "Setup: could not read document")
	table, err := doc.Table("sim_inspiral")
	require.NoError(t, err, "Setup: could not get table")

	tests := map[string]struct {
		column string

		want   ligolw.Cell
		wantOk bool
	}{
		"Quoted string":       {column: "waveform", want: ligolw.ValueCell("TaylorT4threePN"), wantOk: true},
		"Integer":             {column: "geocent_end_time", want: ligolw.ValueCell("1000000010"), wantOk: true},
		"Real":                {column: "longitude", want: ligolw.ValueCell("2.5"), wantOk: true},
		"Empty field is null": {column: "source", want: ligolw.NullCell(), wantOk: true},
		"Identifier":          {column: "simulation_id", want: ligolw.ValueCell("sim_inspiral:simulation_id:0"), wantOk: true},
		"Unknown column":      {column: "spin1x"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok := table.Get(0, tc.column)
			require.Equal(t, tc.wantOk, ok, "Get should report whether the column exists")
			if !ok {
				return
			}
			assert.Equal(t, tc.want, got, "Get should return the cell content")
		})
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	doc, err := ligolw.ReadFile(filepath.Join("testdata", "one_row.xml"))
	require.NoError(t, err, "Setup: could not read document")
	table, err := doc.Table("sim_inspiral")
	require.NoError(t, err, "Setup: could not get table")

	require.NoError(t, table.Set(0, "geocent_end_time", ligolw.ValueCell("1000000100")), "Set should succeed")
	require.NoError(t, table.Set(0, "source", ligolw.ValueCell(`with "quotes", and \ commas`)), "Set should succeed")
	require.Error(t, table.Set(0, "spin1x", ligolw.ValueCell("0")), "Set should fail on unknown column")
	require.Error(t, table.Set(1, "source", ligolw.ValueCell("0")), "Set should fail on unknown row")

	data, err := doc.Bytes()
	require.NoError(t, err, "Bytes should succeed")

	got, err := ligolw.Read(bytes.NewReader(data))
	require.NoError(t, err, "Written document should be readable")

	gotTable, err := got.Table("sim_inspiral")
	require.NoError(t, err, "Written document should keep the sim_inspiral table")
	require.Equal(t, table.Columns, gotTable.Columns, "Columns should be preserved")
	require.Equal(t, table.Rows, gotTable.Rows, "Rows should be preserved")

	process, err := got.Table("process")
	require.NoError(t, err, "Written document should keep the other tables")
	cell, ok := process.Get(0, "program")
	require.True(t, ok, "Process table should keep its columns")
	require.Equal(t, "lalapps_inspinj", cell.Value, "Process table should keep its content")
}

func TestRoundTripKeepsComments(t *testing.T) {
	t.Parallel()

	doc, err := ligolw.ReadFile(filepath.Join("testdata", "comments.xml"))
	require.NoError(t, err, "Setup: could not read document")
	table, err := doc.Table("sim_inspiral")
	require.NoError(t, err, "Setup: could not get table")
	require.NoError(t, table.Set(0, "geocent_end_time", ligolw.ValueCell("1000000100")), "Set should succeed")

	data, err := doc.Bytes()
	require.NoError(t, err, "Bytes should succeed")

	want := `<?xml version='1.0' encoding='utf-8'?>
<!DOCTYPE LIGO_LW SYSTEM "http://ldas-sw.ligo.caltech.edu/doc/ligolwAPI/html/ligolw_dtd.txt">
<!-- generated by lalapps_inspinj -->
<LIGO_LW>
	<!-- injection parameters -->
	<Table Name="sim_inspiral:table">
		<Column Name="sim_inspiral:geocent_end_time" Type="int_4s"/>
		<!-- nanoseconds of the geocentric end time -->
		<Column Name="sim_inspiral:geocent_end_time_ns" Type="int_4s"/>
		<Stream Name="sim_inspiral:table" Type="Local" Delimiter=",">
			1000000100,0
		</Stream>
	</Table>
</LIGO_LW>
`
	require.Equal(t, want, string(data), "Comments between elements should be written back in place")

	got, err := ligolw.Read(bytes.NewReader(data))
	require.NoError(t, err, "Written document should be readable")
	gotTable, err := got.Table("sim_inspiral")
	require.NoError(t, err, "Written document should keep the table")
	require.Equal(t, table.Rows, gotTable.Rows, "Rows should be preserved")
}

func TestWriteNewDocument(t *testing.T) {
	t.Parallel()

	doc := ligolw.New()
	table := ligolw.NewTable("sim_inspiral:table", []ligolw.Column{
		{Name: "waveform", Type: "lstring"},
		{Name: "mass1", Type: "real_4"},
	})
	require.NoError(t, table.Append([]ligolw.Cell{ligolw.ValueCell(`a"b`), ligolw.NullCell()}), "Append should succeed")
	require.NoError(t, table.Append([]ligolw.Cell{ligolw.ValueCell("x"), ligolw.ValueCell("1.5")}), "Append should succeed")
	require.Error(t, table.Append([]ligolw.Cell{ligolw.ValueCell("x")}), "Append should fail on incomplete rows")
	doc.AddTable(table)

	data, err := doc.Bytes()
	require.NoError(t, err, "Bytes should succeed")

	want := `<?xml version='1.0' encoding='utf-8'?>
<!DOCTYPE LIGO_LW SYSTEM "http://ldas-sw.ligo.caltech.edu/doc/ligolwAPI/html/ligolw_dtd.txt">
<LIGO_LW>
	<Table Name="sim_inspiral:table">
		<Column Name="sim_inspiral:waveform" Type="lstring"/>
		<Column Name="sim_inspiral:mass1" Type="real_4"/>
		<Stream Name="sim_inspiral:table" Type="Local" Delimiter=",">
			"a\"b",,
			"x",1.5
		</Stream>
	</Table>
</LIGO_LW>
`
	require.Equal(t, want, string(data), "Written document should match")

	got, err := ligolw.Read(bytes.NewReader(data))
	require.NoError(t, err, "Written document should be readable")
	gotTable, err := got.Table("sim_inspiral")
	require.NoError(t, err, "Written document should contain the table")
	require.Equal(t, table.Rows, gotTable.Rows, "Rows should be preserved")
}

func TestStreamSyntax(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		stream string

		want    [][]ligolw.Cell
		wantErr bool
	}{
		"Trailing delimiter is ignored": {
			stream: `1,"a",`,
			want:   [][]ligolw.Cell{{ligolw.ValueCell("1"), ligolw.ValueCell("a")}},
		},
		"Escaped characters in strings": {
			stream: `1,"a\\b\"c"`,
			want:   [][]ligolw.Cell{{ligolw.ValueCell("1"), ligolw.ValueCell(`a\b"c`)}},
		},
		"Empty quoted string is not null": {
			stream: `,""`,
			want:   [][]ligolw.Cell{{ligolw.NullCell(), ligolw.ValueCell("")}},
		},
		"Delimiter inside quotes": {
			stream: `2,"a,b"`,
			want:   [][]ligolw.Cell{{ligolw.ValueCell("2"), ligolw.ValueCell("a,b")}},
		},

		"Error on unterminated string":    {stream: `1,"a`, wantErr: true},
		"Error on text after string":      {stream: `1,"a"b`, wantErr: true},
		"Error on quote inside value":     {stream: `1,a"b"`, wantErr: true},
		"Error on values not filling row": {stream: `1,"a",2`, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			doc := `<LIGO_LW><Table Name="t:table">` +
				`<Column Name="t:n" Type="int_4s"/><Column Name="t:s" Type="lstring"/>` +
				`<Stream Name="t:table" Type="Local" Delimiter=",">` + tc.stream + `</Stream></Table></LIGO_LW>`

			d, err := ligolw.Read(bytes.NewReader([]byte(doc)))
			require.NoError(t, err, "Setup: document should be valid XML")

			table, err := d.Table("t")
			if tc.wantErr {
				require.ErrorIs(t, err, ligolw.ErrMalformedStream)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, table.Rows, "Rows should match")
		})
	}
}
