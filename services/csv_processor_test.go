package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvtojira/models"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadWorkItems(t *testing.T) {
	path := writeCSV(t, "Work Item Type,Title,Tags,Description,Priority\n"+
		"Epic,Search,Search; UI Polish,Top level,High\n"+
		"Story,Results page,,,\n"+
		",orphan blank type,,,\n"+
		"Sub-Task,Paging,,\"multi, comma\",Urgent\n")

	items, err := NewCSVProcessor(testConfig()).ReadWorkItems(path)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, 1, items[0].Row)
	assert.Equal(t, models.TypeEpic, items[0].Type)
	assert.Equal(t, []string{"Search", "UI Polish"}, items[0].Tags)
	assert.Equal(t, "Top level", items[0].Description)
	assert.Equal(t, "High", items[0].Priority)

	assert.Equal(t, 2, items[1].Row)
	assert.Nil(t, items[1].Tags)

	// 種別が空の行は読み飛ばすが行番号は消費する
	assert.Equal(t, 4, items[2].Row)
	assert.Equal(t, models.TypeSubTask, items[2].Type)
	assert.Equal(t, "multi, comma", items[2].Description)
}

func TestReadWorkItems_ColumnOrderCaseAndBOM(t *testing.T) {
	content := "\xEF\xBB\xBFtitle, PRIORITY ,work item type\n" +
		"Login,Low,Task\n" +
		"Bad,Low,Feature\n"
	path := writeCSV(t, content)

	items, err := NewCSVProcessor(testConfig()).ReadWorkItems(path)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Login", items[0].Title)
	assert.Equal(t, models.TypeTask, items[0].Type)
	assert.Equal(t, "Low", items[0].Priority)
	assert.Empty(t, items[0].Description)

	assert.Equal(t, "Feature", items[1].RawType)
	assert.Empty(t, items[1].Type)
}

func TestReadWorkItems_MissingRequiredColumn(t *testing.T) {
	path := writeCSV(t, "Work Item Type,Tags\nEpic,a\n")

	_, err := NewCSVProcessor(testConfig()).ReadWorkItems(path)

	var inputErr *models.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.ErrorIs(t, err, models.ErrMissingColumn)
	assert.Contains(t, err.Error(), "Title")
}

func TestReadWorkItems_EmptyFile(t *testing.T) {
	path := writeCSV(t, "")

	_, err := NewCSVProcessor(testConfig()).ReadWorkItems(path)

	var inputErr *models.InputError
	require.ErrorAs(t, err, &inputErr)
}

func TestReadWorkItems_MissingFile(t *testing.T) {
	_, err := NewCSVProcessor(testConfig()).ReadWorkItems(filepath.Join(t.TempDir(), "none.csv"))

	var inputErr *models.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadWorkItems_MalformedRow(t *testing.T) {
	path := writeCSV(t, "Work Item Type,Title\nEpic,\"unterminated\n")

	_, err := NewCSVProcessor(testConfig()).ReadWorkItems(path)

	var inputErr *models.InputError
	require.ErrorAs(t, err, &inputErr)
}

func TestWorkItemReader_Lazy(t *testing.T) {
	r, err := newWorkItemReader("inline", strings.NewReader("Work Item Type,Title,Parent\nEpic,A,\nStory,B,1\n"))
	require.NoError(t, err)

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "A", first.Title)

	second, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "1", second.ParentRef)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, r.Close())
}

func TestWriteReportCSV(t *testing.T) {
	results := []models.RowResult{
		{Row: 1, Type: "Epic", Title: "A", Key: "PROJ-1", Outcome: models.OutcomeCreated},
		{Row: 2, Type: "Sub-Task", Title: "B", Outcome: models.OutcomeFailed, Err: models.ErrParentMissing},
	}

	var buf bytes.Buffer
	require.NoError(t, NewCSVProcessor(testConfig()).WriteReportCSV(&buf, results))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "JIRA Issue Key", records[0][4])
	assert.Equal(t, []string{"1", "Epic", "A", "created", "PROJ-1", "", ""}, records[1])
	assert.Equal(t, "failed", records[2][3])
	assert.Equal(t, "parent missing", records[2][6])
}
