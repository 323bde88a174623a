package patterns

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []Pattern{
	{Name: "dashcam", Expr: `(?P<year>\d{4})(?P<month>\d{2})(?P<day>\d{2})-(?P<hour>\d{2})(?P<minute>\d{2})`, Priority: 5},
	{Name: "recorder", Expr: `rec_(?P<stamp>\d{8}T\d{6})`, Layout: "20060102T150405", Description: "field recorder"},
}

func TestExportImport(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Export(&buf, sample, f))
			assert.Contains(t, buf.String(), "patterns")

			got, err := Import(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, sample, got)
		})
	}
}

func TestImport_Documents(t *testing.T) {
	yamlDoc := `
patterns:
  - name: scans
    expr: 'scan-(?P<year>\d{4})'
    priority: 2
`
	got, err := Import(strings.NewReader(yamlDoc), FormatYAML)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "scans", got[0].Name)
	assert.Equal(t, 2, got[0].Priority)

	tomlDoc := `
[[patterns]]
name = "scans"
expr = 'scan-(?P<year>\d{4})'
`
	got, err = Import(strings.NewReader(tomlDoc), FormatTOML)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, `scan-(?P<year>\d{4})`, got[0].Expr)

	got, err = Import(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestImport_Rejects(t *testing.T) {
	_, err := Import(strings.NewReader(`{"patterns":[{"name":"bad","expr":"("}]}`), FormatJSON)
	assert.ErrorIs(t, err, ErrInvalidPattern)

	dup := `{"patterns":[{"name":"a","expr":"(?P<year>\\d{4})"},{"name":"a","expr":"(?P<year>\\d{4})"}]}`
	_, err = Import(strings.NewReader(dup), FormatJSON)
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = Import(strings.NewReader(`{`), FormatJSON)
	assert.Error(t, err)

	_, err = Import(strings.NewReader(`{}`), Format("xml"))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"patterns.json", FormatJSON, false},
		{"/etc/stampwatch/patterns.YAML", FormatYAML, false},
		{"p.yml", FormatYAML, false},
		{"p.toml", FormatTOML, false},
		{"p.xml", "", true},
		{"patterns", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
