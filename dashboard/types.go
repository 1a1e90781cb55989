// Package dashboard defines the dashboard document model: an ordered
// sequence of pages, each holding an ordered set of charts, plus a global
// theme. The document is only ever mutated through Apply.
package dashboard

import (
	"encoding/json"
	"fmt"
)

// ChartType identifies one of the supported chart variants.
type ChartType string

// Supported chart types.
const (
	ChartKPI          ChartType = "kpi"
	ChartBar          ChartType = "bar"
	ChartStackedBar   ChartType = "stacked-bar"
	ChartClusteredBar ChartType = "clustered-bar"
	ChartLine         ChartType = "line"
	ChartArea         ChartType = "area"
	ChartStackedArea  ChartType = "stacked-area"
	ChartScatter      ChartType = "scatter"
	ChartBubble       ChartType = "bubble"
	ChartPie          ChartType = "pie"
	ChartDonut        ChartType = "donut"
	ChartHeatmap      ChartType = "heatmap"
	ChartTreemap      ChartType = "treemap"
	ChartWaterfall    ChartType = "waterfall"
	ChartFunnel       ChartType = "funnel"
	ChartGauge        ChartType = "gauge"
	ChartRadar        ChartType = "radar"
	ChartTable        ChartType = "table"
	ChartMatrix       ChartType = "matrix"
)

// ChartTypes lists every supported chart type in a stable order.
func ChartTypes() []ChartType {
	return []ChartType{
		ChartKPI, ChartBar, ChartStackedBar, ChartClusteredBar, ChartLine,
		ChartArea, ChartStackedArea, ChartScatter, ChartBubble, ChartPie,
		ChartDonut, ChartHeatmap, ChartTreemap, ChartWaterfall, ChartFunnel,
		ChartGauge, ChartRadar, ChartTable, ChartMatrix,
	}
}

// ValidChartType reports whether s names a supported chart type.
func ValidChartType(s string) bool {
	for _, t := range ChartTypes() {
		if string(t) == s {
			return true
		}
	}
	return false
}

// Aggregation is the aggregation mode applied to a chart's metric column.
type Aggregation string

const (
	AggSum   Aggregation = "sum"
	AggAvg   Aggregation = "avg"
	AggCount Aggregation = "count"
	AggMin   Aggregation = "min"
	AggMax   Aggregation = "max"
)

// Aggregations lists the valid aggregation modes.
func Aggregations() []Aggregation {
	return []Aggregation{AggSum, AggAvg, AggCount, AggMin, AggMax}
}

// TitlePosition places a chart's title above or below the plot area.
type TitlePosition string

const (
	TitleTop    TitlePosition = "top"
	TitleBottom TitlePosition = "bottom"
)

// SortOrder is the direction of a chart-level sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TrendDirection annotates kpi/gauge-like charts with a movement indicator.
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendFlat TrendDirection = "flat"
)

// Theme is the document-wide color theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Default chart geometry in grid units.
const (
	DefaultChartWidth  = 2
	DefaultChartHeight = 2
	DefaultChartTitle  = "New Chart"
)

// YAxis holds one or more metric column bindings. The wire format accepts
// either a single string or an ordered list of strings; a single binding
// round-trips back to a plain string.
type YAxis []string

// UnmarshalJSON accepts "col" or ["col1", "col2"].
func (y *YAxis) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*y = YAxis{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("yAxis must be a string or list of strings")
	}
	*y = YAxis(list)
	return nil
}

// MarshalJSON emits a plain string for a single binding.
func (y YAxis) MarshalJSON() ([]byte, error) {
	if len(y) == 1 {
		return json.Marshal(y[0])
	}
	return json.Marshal([]string(y))
}

// Chart is a single visual on a page. Optional bindings are pointers or
// nil-able slices so a zero value is distinguishable from "unset".
type Chart struct {
	ID            string         `json:"id"`
	Type          ChartType      `json:"type"`
	Title         string         `json:"title"`
	TitlePosition TitlePosition  `json:"titlePosition,omitempty"`
	XAxis         string         `json:"xAxis,omitempty"`
	YAxis         YAxis          `json:"yAxis,omitempty"`
	GroupBy       string         `json:"groupBy,omitempty"`
	Aggregation   Aggregation    `json:"aggregation,omitempty"`
	Trend         TrendDirection `json:"trend,omitempty"`
	TrendValue    *float64       `json:"trendValue,omitempty"`

	// DisplayColumns selects the visible columns for table/matrix charts.
	DisplayColumns []string `json:"displayColumns,omitempty"`

	Colors []string `json:"colors,omitempty"`

	SortColumn string    `json:"sortColumn,omitempty"`
	SortOrder  SortOrder `json:"sortOrder,omitempty"`

	FilterColumn string   `json:"filterColumn,omitempty"`
	FilterValues []string `json:"filterValues,omitempty"`

	// Layout geometry in grid units.
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Clone returns a deep copy of the chart.
func (c *Chart) Clone() *Chart {
	if c == nil {
		return nil
	}
	out := *c
	out.YAxis = append(YAxis(nil), c.YAxis...)
	out.DisplayColumns = append([]string(nil), c.DisplayColumns...)
	out.Colors = append([]string(nil), c.Colors...)
	out.FilterValues = append([]string(nil), c.FilterValues...)
	if c.TrendValue != nil {
		v := *c.TrendValue
		out.TrendValue = &v
	}
	return &out
}

// Page is one dashboard page. Chart order is meaningful for layout; chart
// IDs are unique within the page.
type Page struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ShowTitle bool     `json:"showTitle"`
	Charts    []*Chart `json:"charts"`
}

// Clone returns a deep copy of the page.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	out := *p
	out.Charts = make([]*Chart, len(p.Charts))
	for i, c := range p.Charts {
		out.Charts[i] = c.Clone()
	}
	return &out
}

// FindChart returns the chart with the given ID, or nil.
func (p *Page) FindChart(id string) *Chart {
	for _, c := range p.Charts {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Document is the full dashboard state. Page IDs are unique within the
// document and exactly one page is current.
type Document struct {
	ID            string  `json:"id"`
	Pages         []*Page `json:"pages"`
	CurrentPageID string  `json:"currentPageId"`
	Theme         Theme   `json:"theme"`
}

// Clone returns a deep copy of the document. Apply clones before mutating
// so a failed command never leaves a partially written document behind.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Pages = make([]*Page, len(d.Pages))
	for i, p := range d.Pages {
		out.Pages[i] = p.Clone()
	}
	return &out
}

// CurrentPage returns the current page, or nil if the ID is dangling.
func (d *Document) CurrentPage() *Page {
	return d.FindPage(d.CurrentPageID)
}

// FindPage returns the page with the given ID, or nil.
func (d *Document) FindPage(id string) *Page {
	for _, p := range d.Pages {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// FindChart searches the current page first, then the remaining pages in
// document order. Returns the owning page and the chart, or nil, nil.
func (d *Document) FindChart(chartID string) (*Page, *Chart) {
	if cur := d.CurrentPage(); cur != nil {
		if c := cur.FindChart(chartID); c != nil {
			return cur, c
		}
	}
	for _, p := range d.Pages {
		if p.ID == d.CurrentPageID {
			continue
		}
		if c := p.FindChart(chartID); c != nil {
			return p, c
		}
	}
	return nil, nil
}
