package command_test

import (
	"strings"
	"testing"

	"github.com/plotdeck/plotdeck/command"
	"github.com/stretchr/testify/assert"
)

func TestTranslate_TitlePosition(t *testing.T) {
	_, failures := command.Parse(`{"action": "update_chart", "targetChartId": "c1", "chartUpdate": {"titlePosition": "middle"}}`)

	msg := command.Translate(failures)
	assert.Contains(t, msg, `"middle"`)
	assert.Contains(t, msg, `"top"`)
	assert.Contains(t, msg, `"bottom"`)
	assert.NotContains(t, msg, "chartUpdate")
}

func TestTranslate_Aggregation(t *testing.T) {
	_, failures := command.Parse(`{"action": "update_chart", "targetChartId": "c1", "chartUpdate": {"aggregation": "median"}}`)

	msg := command.Translate(failures)
	assert.Contains(t, msg, `"median"`)
	for _, agg := range []string{"sum", "avg", "count", "min", "max"} {
		assert.Contains(t, msg, agg)
	}
}

func TestTranslate_SortOrder(t *testing.T) {
	_, failures := command.Parse(`{"action": "sort_data", "targetChartId": "c1", "sortColumn": "revenue", "sortOrder": "up"}`)

	msg := command.Translate(failures)
	assert.Contains(t, msg, `"up"`)
	assert.Contains(t, msg, "ascending")
	assert.Contains(t, msg, "descending")
}

func TestTranslate_ChartType(t *testing.T) {
	_, failures := command.Parse(`{"action": "update_chart", "targetChartId": "c1", "chartUpdate": {"type": "sparkline"}}`)

	msg := command.Translate(failures)
	assert.Contains(t, msg, `"sparkline"`)
	assert.Contains(t, msg, "chart type")
}

func TestTranslate_GenericEnumListsOptions(t *testing.T) {
	_, failures := command.Parse(`{"action": "update_theme", "themeUpdate": "sepia"}`)

	msg := command.Translate(failures)
	assert.Contains(t, msg, `"sepia"`)
	assert.Contains(t, msg, "light")
	assert.Contains(t, msg, "dark")
}

func TestTranslate_FirstFailureWins(t *testing.T) {
	// titlePosition is visited before aggregation in the patch grammar, so
	// its sentence wins even when both fields are wrong.
	_, failures := command.Parse(`{
		"action": "update_chart",
		"targetChartId": "c1",
		"chartUpdate": {"titlePosition": "middle", "aggregation": "median"}
	}`)

	msg := command.Translate(failures)
	assert.Contains(t, msg, "title position")
	assert.NotContains(t, msg, "aggregation")
}

func TestTranslate_WrongType(t *testing.T) {
	_, failures := command.Parse(`{"action": "update_chart", "targetChartId": "c1", "chartUpdate": {"trendValue": "high"}}`)

	msg := command.Translate(failures)
	assert.Contains(t, msg, "rephrasing")
}

func TestTranslate_FallbackNeverEmpty(t *testing.T) {
	assert.NotEmpty(t, command.Translate(nil))

	_, failures := command.Parse(`not json at all`)
	msg := command.Translate(failures)
	assert.NotEmpty(t, msg)
	assert.False(t, strings.Contains(msg, "$"))
}
