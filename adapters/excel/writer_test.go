package excel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var records = [][]string{
	{"Condition", "no conflict", "any conflict"},
	{"Long QT syndrome", "5", "3"},
	{"Brugada syndrome, type 1", "0", "12"},
}

func TestWriteReadsBack(t *testing.T) {
	for _, format := range []Format{FormatCSV, FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, format, records))

			got, err := Read(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, records, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	assert.Equal(t, "by-gene.xlsx", f.Filename("by-gene"))

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}
