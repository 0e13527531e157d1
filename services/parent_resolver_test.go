package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvtojira/models"
)

func item(row int, typ models.WorkItemType, title string) models.WorkItem {
	return models.WorkItem{Row: row, RawType: string(typ), Type: typ, Title: title}
}

func parentRows(plans []ImportPlan) map[int]int {
	rows := make(map[int]int, len(plans))
	for _, p := range plans {
		rows[p.Item.Row] = p.ParentRow
	}
	return rows
}

func TestPlanImport_Positional(t *testing.T) {
	items := []models.WorkItem{
		item(1, models.TypeEpic, "E1"),
		item(2, models.TypeStory, "S1"),
		item(3, models.TypeSubTask, "ST1"),
		item(4, models.TypeTask, "T1"),
		item(5, models.TypeSubTask, "ST2"),
		item(6, models.TypeEpic, "E2"),
		item(7, models.TypeSubTask, "ST3"),
		item(8, models.TypeStory, "S2"),
	}

	plans := PlanImport(items)
	require.Len(t, plans, len(items))

	assert.Equal(t, map[int]int{
		1: 0,
		2: 1,
		3: 2,
		4: 1,
		5: 4,
		6: 0,
		// Epic行は飛ばして直前のStory/Taskにつく
		7: 4,
		8: 6,
	}, parentRows(plans))

	assert.False(t, plans[1].RequiresParent)
	assert.True(t, plans[2].RequiresParent)
}

func TestPlanImport_NoPrecedingParent(t *testing.T) {
	plans := PlanImport([]models.WorkItem{
		item(1, models.TypeSubTask, "lonely"),
		item(2, models.TypeStory, "no epic"),
	})

	assert.Equal(t, 0, plans[0].ParentRow)
	assert.True(t, plans[0].RequiresParent)
	assert.Equal(t, 0, plans[1].ParentRow)
	assert.False(t, plans[1].RequiresParent)
}

func TestPlanImport_UnknownTypeIsNotAParent(t *testing.T) {
	bad := models.WorkItem{Row: 2, RawType: "Feature", Title: "F"}
	plans := PlanImport([]models.WorkItem{
		item(1, models.TypeStory, "S"),
		bad,
		item(3, models.TypeSubTask, "ST"),
	})

	assert.Equal(t, 0, plans[1].ParentRow)
	assert.Equal(t, 1, plans[2].ParentRow)
}

func TestPlanImport_ExplicitParent(t *testing.T) {
	child := item(1, models.TypeSubTask, "early child")
	child.ParentRef = "3"
	badRef := item(4, models.TypeTask, "bad ref")
	badRef.ParentRef = "abc"

	plans := PlanImport([]models.WorkItem{
		child,
		item(2, models.TypeEpic, "E"),
		item(3, models.TypeStory, "S"),
		badRef,
	})

	assert.Equal(t, 3, plans[0].ParentRow)
	assert.NoError(t, plans[0].Err)

	var vErr *models.ValidationError
	require.ErrorAs(t, plans[3].Err, &vErr)
	assert.ErrorIs(t, plans[3].Err, models.ErrInvalidParentRef)
}
