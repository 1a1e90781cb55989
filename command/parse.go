package command

import (
	"encoding/json"
	"strings"

	"github.com/plotdeck/plotdeck/dashboard"
)

// maxGridUnits bounds chart geometry values. Grids in practice are a
// handful of units wide; anything beyond this is model hallucination.
const maxGridUnits = 64

// Parse validates a candidate JSON string against the command grammar.
// On success it returns exactly one typed Command. On failure it returns
// the field-level failures in the order they were found; the command is
// nil and nothing partially applies.
func Parse(raw string) (Command, []Failure) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, []Failure{{Path: "$", Kind: FailureMalformed, Detail: "not valid JSON: " + err.Error()}}
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, []Failure{{Path: "$", Kind: FailureMalformed, Got: renderValue(root), Detail: "top-level value is not an object"}}
	}

	p := &parser{}
	action, ok := p.enum(obj, "", "action", actionStrings(), true)
	if !ok {
		return nil, p.failures
	}

	var cmd Command
	switch Action(action) {
	case ActionUpdateChart:
		cmd = p.parseUpdateChart(obj)
	case ActionUpdateAllCharts:
		cmd = p.parseUpdateAllCharts(obj)
	case ActionAddChart:
		cmd = p.parseAddChart(obj)
	case ActionDeleteChart:
		cmd = p.parseDeleteChart(obj)
	case ActionAddPage:
		cmd = p.parseAddPage(obj)
	case ActionUpdatePage:
		cmd = p.parseUpdatePage(obj)
	case ActionDeletePage:
		cmd = p.parseDeletePage(obj)
	case ActionUpdateTheme:
		cmd = p.parseUpdateTheme(obj)
	case ActionAddFilter:
		cmd = p.parseAddFilter(obj)
	case ActionFilterData:
		cmd = p.parseFilterData(obj)
	case ActionSortData:
		cmd = p.parseSortData(obj)
	case ActionReject:
		cmd = p.parseReject(obj)
	}

	if len(p.failures) > 0 {
		return nil, p.failures
	}
	return cmd, nil
}

func (p *parser) parseUpdateChart(obj map[string]any) Command {
	target, _ := p.str(obj, "", "targetChartId", true)
	var patch dashboard.ChartPatch
	if upd, ok := p.object(obj, "", "chartUpdate", true); ok {
		patch = p.parseChartPatch(upd, "chartUpdate")
	}
	msg := p.optStr(obj, "", "message")
	return UpdateChart{TargetChartID: target, Patch: patch, Message: msg}
}

func (p *parser) parseUpdateAllCharts(obj map[string]any) Command {
	allowed := append(chartTypeStrings(), WildcardChartType)
	target, _ := p.enum(obj, "", "targetChartType", allowed, true)
	var patch dashboard.ChartPatch
	if upd, ok := p.object(obj, "", "chartUpdate", true); ok {
		patch = p.parseChartPatch(upd, "chartUpdate")
	}
	msg := p.optStr(obj, "", "message")
	return UpdateAllCharts{TargetChartType: target, Patch: patch, Message: msg}
}

func (p *parser) parseAddChart(obj map[string]any) Command {
	var chart dashboard.Chart
	if nc, ok := p.object(obj, "", "newChart", true); ok {
		id, _ := p.str(nc, "newChart", "id", true)
		typeStr, typeOK := p.enum(nc, "newChart", "type", chartTypeStrings(), true)

		chart.ID = id
		if typeOK {
			chart.Type = dashboard.ChartType(typeStr)
		}
		// Remaining chart fields share the patch grammar. Title and
		// geometry stay zero when absent; the mutator applies defaults.
		delete(nc, "type") // validated above, keep the patch pass from re-reporting it
		patch := p.parseChartPatch(nc, "newChart")
		patch.ApplyTo(&chart)
	}
	msg := p.optStr(obj, "", "message")
	return AddChart{Chart: chart, TargetPageID: p.optStr(obj, "", "targetPageId"), Message: msg}
}

func (p *parser) parseDeleteChart(obj map[string]any) Command {
	target, _ := p.str(obj, "", "targetChartId", true)
	return DeleteChart{TargetChartID: target, Message: p.optStr(obj, "", "message")}
}

func (p *parser) parseAddPage(obj map[string]any) Command {
	var page NewPage
	if np, ok := p.object(obj, "", "newPage", true); ok {
		page.ID, _ = p.str(np, "newPage", "id", true)
		page.Name = p.optStr(np, "newPage", "name")
		page.ShowTitle = p.optBool(np, "newPage", "showTitle")
	}
	return AddPage{Page: page, Message: p.optStr(obj, "", "message")}
}

func (p *parser) parseUpdatePage(obj map[string]any) Command {
	target, _ := p.str(obj, "", "targetPageId", true)
	var patch dashboard.PagePatch
	if upd, ok := p.object(obj, "", "pageUpdate", true); ok {
		patch.Name = p.optStrPtr(upd, "pageUpdate", "name")
		patch.ShowTitle = p.optBool(upd, "pageUpdate", "showTitle")
	}
	return UpdatePage{TargetPageID: target, Patch: patch, Message: p.optStr(obj, "", "message")}
}

func (p *parser) parseDeletePage(obj map[string]any) Command {
	target, _ := p.str(obj, "", "targetPageId", true)
	return DeletePage{TargetPageID: target, Message: p.optStr(obj, "", "message")}
}

func (p *parser) parseUpdateTheme(obj map[string]any) Command {
	theme, _ := p.enum(obj, "", "themeUpdate", []string{string(dashboard.ThemeLight), string(dashboard.ThemeDark)}, true)
	return UpdateTheme{Theme: dashboard.Theme(theme), Message: p.optStr(obj, "", "message")}
}

func (p *parser) parseAddFilter(obj map[string]any) Command {
	target, _ := p.str(obj, "", "targetChartId", true)
	col, _ := p.str(obj, "", "filterColumn", true)
	vals := p.stringList(obj, "", "filterValues", true)
	return AddFilter{TargetChartID: target, FilterColumn: col, FilterValues: vals, Message: p.optStr(obj, "", "message")}
}

func (p *parser) parseFilterData(obj map[string]any) Command {
	target, _ := p.str(obj, "", "targetChartId", true)
	col, _ := p.str(obj, "", "filterColumn", true)
	vals := p.stringList(obj, "", "filterValues", true)
	return FilterData{TargetChartID: target, FilterColumn: col, FilterValues: vals, Message: p.optStr(obj, "", "message")}
}

func (p *parser) parseSortData(obj map[string]any) Command {
	target, _ := p.str(obj, "", "targetChartId", true)
	col, _ := p.str(obj, "", "sortColumn", true)
	order, _ := p.enum(obj, "", "sortOrder", []string{string(dashboard.SortAsc), string(dashboard.SortDesc)}, true)
	return SortData{TargetChartID: target, SortColumn: col, SortOrder: dashboard.SortOrder(order), Message: p.optStr(obj, "", "message")}
}

func (p *parser) parseReject(obj map[string]any) Command {
	reason, _ := p.enum(obj, "", "rejectReason", rejectReasonStrings(), true)
	return Reject{Reason: RejectReason(reason), Message: p.optStr(obj, "", "message")}
}

// parseChartPatch validates the shared partial-chart grammar under the
// given path prefix. Unknown keys are ignored; models pad freely.
func (p *parser) parseChartPatch(obj map[string]any, path string) dashboard.ChartPatch {
	var patch dashboard.ChartPatch

	if s, ok := p.optEnum(obj, path, "type", chartTypeStrings()); ok {
		t := dashboard.ChartType(s)
		patch.Type = &t
	}
	patch.Title = p.optStrPtr(obj, path, "title")
	if s, ok := p.optEnum(obj, path, "titlePosition", []string{string(dashboard.TitleTop), string(dashboard.TitleBottom)}); ok {
		tp := dashboard.TitlePosition(s)
		patch.TitlePosition = &tp
	}
	patch.XAxis = p.optStrPtr(obj, path, "xAxis")
	patch.YAxis = p.yAxis(obj, path, "yAxis")
	patch.GroupBy = p.optStrPtr(obj, path, "groupBy")
	if s, ok := p.optEnum(obj, path, "aggregation", aggregationStrings()); ok {
		a := dashboard.Aggregation(s)
		patch.Aggregation = &a
	}
	if s, ok := p.optEnum(obj, path, "trend", []string{string(dashboard.TrendUp), string(dashboard.TrendDown), string(dashboard.TrendFlat)}); ok {
		tr := dashboard.TrendDirection(s)
		patch.Trend = &tr
	}
	patch.TrendValue = p.optNumber(obj, path, "trendValue")
	patch.DisplayColumns = p.optStringList(obj, path, "displayColumns")
	patch.Colors = p.optStringList(obj, path, "colors")
	patch.SortColumn = p.optStrPtr(obj, path, "sortColumn")
	if s, ok := p.optEnum(obj, path, "sortOrder", []string{string(dashboard.SortAsc), string(dashboard.SortDesc)}); ok {
		so := dashboard.SortOrder(s)
		patch.SortOrder = &so
	}
	patch.FilterColumn = p.optStrPtr(obj, path, "filterColumn")
	patch.FilterValues = p.optStringList(obj, path, "filterValues")
	patch.X = p.gridInt(obj, path, "x")
	patch.Y = p.gridInt(obj, path, "y")
	patch.Width = p.gridInt(obj, path, "width")
	patch.Height = p.gridInt(obj, path, "height")

	return patch
}

func actionStrings() []string {
	actions := Actions()
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}

func chartTypeStrings() []string {
	types := dashboard.ChartTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func aggregationStrings() []string {
	aggs := dashboard.Aggregations()
	out := make([]string, len(aggs))
	for i, a := range aggs {
		out[i] = string(a)
	}
	return out
}

func rejectReasonStrings() []string {
	reasons := RejectReasons()
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}
