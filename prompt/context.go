// Package prompt turns a dashboard document, its data schema and a user
// request into the deterministic message sequence sent to the model.
package prompt

import (
	"github.com/plotdeck/plotdeck/dashboard"
	"github.com/plotdeck/plotdeck/dataset"
)

// TableChartRef identifies a table or matrix chart anywhere in the
// document. These carry no distinctive visual framing, so "the table" in a
// request usually means one of them regardless of the current page.
type TableChartRef struct {
	ChartID string              `json:"chartId"`
	Type    dashboard.ChartType `json:"type"`
	Title   string              `json:"title"`
	PageID  string              `json:"pageId"`
}

// ChartRef identifies a chart on the current page.
type ChartRef struct {
	ID    string              `json:"id"`
	Type  dashboard.ChartType `json:"type"`
	Title string              `json:"title"`
}

// Context is the compressed grounding information for one command
// request. It contains identifiers, titles, types and column metadata,
// never row data, so its size is bounded by page, chart and column
// counts and does not grow with the row count.
type Context struct {
	CurrentPageID     string           `json:"currentPageId"`
	CurrentPageName   string           `json:"currentPageName"`
	TableCharts       []TableChartRef  `json:"tableCharts"`
	CurrentPageCharts []ChartRef       `json:"currentPageCharts"`
	ColumnNames       []string         `json:"columnNames"`
	Columns           []dataset.Column `json:"columns"`
	RowCount          int              `json:"rowCount"`
}

// Compress reduces the full document and schema to the minimal context
// needed to ground a command request.
func Compress(doc *dashboard.Document, schema *dataset.Schema) Context {
	ctx := Context{
		CurrentPageID:     doc.CurrentPageID,
		TableCharts:       []TableChartRef{},
		CurrentPageCharts: []ChartRef{},
	}

	current := doc.CurrentPage()
	if current != nil {
		ctx.CurrentPageName = current.Name
		for _, chart := range current.Charts {
			ctx.CurrentPageCharts = append(ctx.CurrentPageCharts, ChartRef{
				ID:    chart.ID,
				Type:  chart.Type,
				Title: chart.Title,
			})
		}
	}

	for _, page := range doc.Pages {
		for _, chart := range page.Charts {
			if chart.Type != dashboard.ChartTable && chart.Type != dashboard.ChartMatrix {
				continue
			}
			ctx.TableCharts = append(ctx.TableCharts, TableChartRef{
				ChartID: chart.ID,
				Type:    chart.Type,
				Title:   chart.Title,
				PageID:  page.ID,
			})
		}
	}

	if schema != nil {
		ctx.ColumnNames = schema.ColumnNames()
		ctx.Columns = append([]dataset.Column(nil), schema.Columns...)
		ctx.RowCount = schema.RowCount
	}

	return ctx
}
