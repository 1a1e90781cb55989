// Package command defines the closed grammar the interpreter may emit: a
// tagged union of mutation commands plus a first-class reject outcome.
// Parse is the only way to obtain a Command, so an unrecognized action can
// only fail there; the mutation step never sees one.
package command

import "github.com/plotdeck/plotdeck/dashboard"

// Action tags a command variant.
type Action string

const (
	ActionUpdateChart     Action = "update_chart"
	ActionUpdateAllCharts Action = "update_all_charts"
	ActionAddChart        Action = "add_chart"
	ActionDeleteChart     Action = "delete_chart"
	ActionAddPage         Action = "add_page"
	ActionUpdatePage      Action = "update_page"
	ActionDeletePage      Action = "delete_page"
	ActionUpdateTheme     Action = "update_theme"
	ActionAddFilter       Action = "add_filter"
	ActionSortData        Action = "sort_data"
	ActionFilterData      Action = "filter_data"
	ActionReject          Action = "reject"
)

// Actions lists every action in the grammar.
func Actions() []Action {
	return []Action{
		ActionUpdateChart, ActionUpdateAllCharts, ActionAddChart,
		ActionDeleteChart, ActionAddPage, ActionUpdatePage, ActionDeletePage,
		ActionUpdateTheme, ActionAddFilter, ActionSortData, ActionFilterData,
		ActionReject,
	}
}

// RejectReason is the closed set of reasons a request can be declined.
type RejectReason string

const (
	RejectDataManipulation RejectReason = "data_manipulation"
	RejectImpossibleAction RejectReason = "impossible_action"
	RejectAmbiguousRequest RejectReason = "ambiguous_request"
	RejectNoMatchingChart  RejectReason = "no_matching_chart"
	RejectOther            RejectReason = "other"
)

// RejectReasons lists the valid reject reasons.
func RejectReasons() []RejectReason {
	return []RejectReason{
		RejectDataManipulation, RejectImpossibleAction,
		RejectAmbiguousRequest, RejectNoMatchingChart, RejectOther,
	}
}

// WildcardChartType matches every chart in a bulk update.
const WildcardChartType = "all"

// Command is one validated instruction. Every variant except Reject
// describes a single dashboard mutation.
type Command interface {
	Action() Action
}

// UpdateChart patches a single chart identified by ID.
type UpdateChart struct {
	TargetChartID string               `json:"targetChartId"`
	Patch         dashboard.ChartPatch `json:"chartUpdate"`
	Message       string               `json:"message,omitempty"`
}

func (UpdateChart) Action() Action { return ActionUpdateChart }

// UpdateAllCharts patches every chart whose type matches TargetChartType,
// or every chart when the target is the wildcard "all".
type UpdateAllCharts struct {
	TargetChartType string               `json:"targetChartType"`
	Patch           dashboard.ChartPatch `json:"chartUpdate"`
	Message         string               `json:"message,omitempty"`
}

func (UpdateAllCharts) Action() Action { return ActionUpdateAllCharts }

// Matches reports whether the bulk target covers the given chart type.
func (u UpdateAllCharts) Matches(t dashboard.ChartType) bool {
	return u.TargetChartType == WildcardChartType || u.TargetChartType == string(t)
}

// AddChart appends a new chart to the target page (current page when
// TargetPageID is empty). Geometry and title defaults are applied at
// mutation time.
type AddChart struct {
	Chart        dashboard.Chart `json:"newChart"`
	TargetPageID string          `json:"targetPageId,omitempty"`
	Message      string          `json:"message,omitempty"`
}

func (AddChart) Action() Action { return ActionAddChart }

// DeleteChart removes the chart with the given ID. Deletion is idempotent.
type DeleteChart struct {
	TargetChartID string `json:"targetChartId"`
	Message       string `json:"message,omitempty"`
}

func (DeleteChart) Action() Action { return ActionDeleteChart }

// NewPage is the payload for AddPage.
type NewPage struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	ShowTitle *bool  `json:"showTitle,omitempty"`
}

// AddPage appends a new page to the document.
type AddPage struct {
	Page    NewPage `json:"newPage"`
	Message string  `json:"message,omitempty"`
}

func (AddPage) Action() Action { return ActionAddPage }

// UpdatePage patches a page's display properties.
type UpdatePage struct {
	TargetPageID string              `json:"targetPageId"`
	Patch        dashboard.PagePatch `json:"pageUpdate"`
	Message      string              `json:"message,omitempty"`
}

func (UpdatePage) Action() Action { return ActionUpdatePage }

// DeletePage removes a page. Like chart deletion it is idempotent.
type DeletePage struct {
	TargetPageID string `json:"targetPageId"`
	Message      string `json:"message,omitempty"`
}

func (DeletePage) Action() Action { return ActionDeletePage }

// UpdateTheme sets the document-wide theme.
type UpdateTheme struct {
	Theme   dashboard.Theme `json:"themeUpdate"`
	Message string          `json:"message,omitempty"`
}

func (UpdateTheme) Action() Action { return ActionUpdateTheme }

// AddFilter applies a column filter to a chart's display configuration.
type AddFilter struct {
	TargetChartID string   `json:"targetChartId"`
	FilterColumn  string   `json:"filterColumn"`
	FilterValues  []string `json:"filterValues"`
	Message       string   `json:"message,omitempty"`
}

func (AddFilter) Action() Action { return ActionAddFilter }

// FilterData replaces a chart's filter state. Shares the payload shape and
// merge semantics of AddFilter; kept as a distinct variant because the
// grammar distinguishes them.
type FilterData struct {
	TargetChartID string   `json:"targetChartId"`
	FilterColumn  string   `json:"filterColumn"`
	FilterValues  []string `json:"filterValues"`
	Message       string   `json:"message,omitempty"`
}

func (FilterData) Action() Action { return ActionFilterData }

// SortData sets a chart's sort column and direction.
type SortData struct {
	TargetChartID string              `json:"targetChartId"`
	SortColumn    string              `json:"sortColumn"`
	SortOrder     dashboard.SortOrder `json:"sortOrder"`
	Message       string              `json:"message,omitempty"`
}

func (SortData) Action() Action { return ActionSortData }

// Reject declines the request. It never mutates the document; the reason
// is surfaced to the caller as the outcome, not as an error.
type Reject struct {
	Reason  RejectReason `json:"rejectReason"`
	Message string       `json:"message,omitempty"`
}

func (Reject) Action() Action { return ActionReject }
