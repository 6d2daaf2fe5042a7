package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	payload, err := exporter.Render(Dataset{
		Headers: []string{"Rank", "Student"},
		Rows: []map[string]string{
			{"Rank": "1", "Student": "Ada"},
			{"Rank": "2", "Student": "Grace, Rear Admiral"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Rank,Student", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[2], `"Grace, Rear Admiral"`)
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	payload, err := exporter.Render(Dataset{
		Headers: []string{"Rank", "Student"},
		Rows:    []map[string]string{{"Rank": "1", "Student": "Ada"}},
	}, "Course Leaderboard")
	require.NoError(t, err)
	require.True(t, len(payload) > 4)
	assert.Equal(t, "%PDF", string(payload[:4]))
}
