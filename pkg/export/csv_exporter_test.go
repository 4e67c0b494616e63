package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	sheet := Sheet{
		Headers: []string{"NIS", "Nama", "Status"},
		Rows: [][]string{
			{"00001", "Alice", "Hadir"},
			{"00002", "Budi", "Sakit"},
		},
	}
	out, err := NewCSVExporter().Render(sheet)
	require.NoError(t, err)
	assert.Equal(t, "NIS,Nama,Status\n00001,Alice,Hadir\n00002,Budi,Sakit\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Sheet{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	sheet := Sheet{
		Headers: []string{"NIS", "Status"},
		Rows:    [][]string{{"00001", "Hadir"}},
	}
	out, err := NewPDFExporter().Render(sheet, "Rekap Kehadiran")
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}
