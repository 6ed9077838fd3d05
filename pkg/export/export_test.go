package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	out, err := CSV(Table{
		Headers: []string{"Student", "Plan", "Price"},
		Rows: [][]string{
			{"Diego", "Start", "200.00"},
			{"Carla", "Gold", "450.00"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Student,Plan,Price\nDiego,Start,200.00\nCarla,Gold,450.00\n", string(out))
}

func TestCSVRejectsRaggedRows(t *testing.T) {
	_, err := CSV(Table{
		Headers: []string{"Student", "Plan"},
		Rows:    [][]string{{"Diego"}},
	})
	require.Error(t, err)
}

func TestCSVRequiresHeaders(t *testing.T) {
	_, err := CSV(Table{})
	require.Error(t, err)
}

func TestPDF(t *testing.T) {
	out, err := PDF(Table{
		Title:   "Enrollments",
		Headers: []string{"Student", "Plan", "Price"},
		Rows:    [][]string{{"Diego", "Start", "200.00"}},
	})
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}
