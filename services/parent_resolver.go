package services

import (
	"strconv"

	"csvtojira/models"
)

// ImportPlan は1行分の作成計画です
type ImportPlan struct {
	Item models.WorkItem
	// ParentRow は親の行番号です。0は親なしを表します。
	ParentRow int
	// RequiresParent は親が無ければ作成できない行を表します (サブタスク)
	RequiresParent bool
	Err            error
}

// PlanImport は各行の親行を決定します。
//
// 「Parent」列に行番号があればそれを使います。無い場合はファイル順の位置で決めます:
// Story/Taskは直前のEpic、Sub-taskは直前のStoryまたはTask (Epic行は飛ばします)。
func PlanImport(items []models.WorkItem) []ImportPlan {
	plans := make([]ImportPlan, 0, len(items))

	lastEpic := 0
	lastStoryOrTask := 0

	for _, item := range items {
		plan := ImportPlan{Item: item}

		switch {
		case item.Type == models.TypeEpic:
			// 親なし
		case item.Type.IsStoryOrTask():
			plan.ParentRow = lastEpic
		case item.Type == models.TypeSubTask:
			plan.ParentRow = lastStoryOrTask
			plan.RequiresParent = true
		}

		if item.ParentRef != "" {
			row, err := strconv.Atoi(item.ParentRef)
			if err != nil || row <= 0 {
				plan.Err = &models.ValidationError{
					Row:   item.Row,
					Field: "Parent",
					Value: item.ParentRef,
					Err:   models.ErrInvalidParentRef,
				}
			} else {
				plan.ParentRow = row
			}
		}

		switch {
		case item.Type == models.TypeEpic:
			lastEpic = item.Row
		case item.Type.IsStoryOrTask():
			lastStoryOrTask = item.Row
		}

		plans = append(plans, plan)
	}

	return plans
}
