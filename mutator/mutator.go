// Package mutator applies validated commands to a dashboard document.
// Apply is a pure state transition: it deep-copies the input document and
// either returns a fully mutated copy or an error with the original state
// untouched. Partial writes cannot be observed.
package mutator

import (
	"fmt"

	"github.com/plotdeck/plotdeck/command"
	"github.com/plotdeck/plotdeck/dashboard"
)

// Apply transitions the document under one command. Reject commands
// return the input document unchanged. Benign misses (a target that does
// not exist) return *TargetNotFoundError; callers surface those as
// no_matching_chart outcomes, not system errors.
func Apply(doc *dashboard.Document, cmd command.Command) (*dashboard.Document, error) {
	switch c := cmd.(type) {
	case command.UpdateChart:
		return applyUpdateChart(doc, c)
	case command.UpdateAllCharts:
		return applyUpdateAllCharts(doc, c)
	case command.AddChart:
		return applyAddChart(doc, c)
	case command.DeleteChart:
		return applyDeleteChart(doc, c)
	case command.AddPage:
		return applyAddPage(doc, c)
	case command.UpdatePage:
		return applyUpdatePage(doc, c)
	case command.DeletePage:
		return applyDeletePage(doc, c)
	case command.UpdateTheme:
		next := doc.Clone()
		next.Theme = c.Theme
		return next, nil
	case command.AddFilter:
		return applyChartFilter(doc, c.TargetChartID, c.FilterColumn, c.FilterValues)
	case command.FilterData:
		return applyChartFilter(doc, c.TargetChartID, c.FilterColumn, c.FilterValues)
	case command.SortData:
		return applySortData(doc, c)
	case command.Reject:
		// First-class no-op: the reason is the outcome, not an error.
		return doc, nil
	default:
		// Unreachable for commands produced by command.Parse.
		return nil, fmt.Errorf("unhandled command type %T", cmd)
	}
}

func applyUpdateChart(doc *dashboard.Document, c command.UpdateChart) (*dashboard.Document, error) {
	next := doc.Clone()
	_, chart := next.FindChart(c.TargetChartID)
	if chart == nil {
		return nil, &TargetNotFoundError{Kind: TargetChart, ID: c.TargetChartID}
	}
	c.Patch.ApplyTo(chart)
	return next, nil
}

func applyUpdateAllCharts(doc *dashboard.Document, c command.UpdateAllCharts) (*dashboard.Document, error) {
	// Zero matches is a successful no-op over the empty set.
	next := doc.Clone()
	for _, page := range next.Pages {
		for _, chart := range page.Charts {
			if c.Matches(chart.Type) {
				c.Patch.ApplyTo(chart)
			}
		}
	}
	return next, nil
}

func applyAddChart(doc *dashboard.Document, c command.AddChart) (*dashboard.Document, error) {
	next := doc.Clone()

	pageID := c.TargetPageID
	if pageID == "" {
		pageID = next.CurrentPageID
	}
	page := next.FindPage(pageID)
	if page == nil {
		return nil, &TargetNotFoundError{Kind: TargetPage, ID: pageID}
	}
	if _, existing := next.FindChart(c.Chart.ID); existing != nil {
		return nil, &DuplicateIDError{Kind: TargetChart, ID: c.Chart.ID}
	}

	chart := c.Chart.Clone()
	if chart.Title == "" {
		chart.Title = dashboard.DefaultChartTitle
	}
	if chart.Width == 0 {
		chart.Width = dashboard.DefaultChartWidth
	}
	if chart.Height == 0 {
		chart.Height = dashboard.DefaultChartHeight
	}

	page.Charts = append(page.Charts, chart)
	return next, nil
}

func applyDeleteChart(doc *dashboard.Document, c command.DeleteChart) (*dashboard.Document, error) {
	// Idempotent: deleting an absent chart is a no-op.
	next := doc.Clone()
	for _, page := range next.Pages {
		for i, chart := range page.Charts {
			if chart.ID == c.TargetChartID {
				page.Charts = append(page.Charts[:i], page.Charts[i+1:]...)
				return next, nil
			}
		}
	}
	return next, nil
}

func applyAddPage(doc *dashboard.Document, c command.AddPage) (*dashboard.Document, error) {
	next := doc.Clone()
	if next.FindPage(c.Page.ID) != nil {
		return nil, &DuplicateIDError{Kind: TargetPage, ID: c.Page.ID}
	}

	name := c.Page.Name
	if name == "" {
		name = "New Page"
	}
	showTitle := true
	if c.Page.ShowTitle != nil {
		showTitle = *c.Page.ShowTitle
	}

	next.Pages = append(next.Pages, &dashboard.Page{
		ID:        c.Page.ID,
		Name:      name,
		ShowTitle: showTitle,
	})
	return next, nil
}

func applyUpdatePage(doc *dashboard.Document, c command.UpdatePage) (*dashboard.Document, error) {
	next := doc.Clone()
	page := next.FindPage(c.TargetPageID)
	if page == nil {
		return nil, &TargetNotFoundError{Kind: TargetPage, ID: c.TargetPageID}
	}
	c.Patch.ApplyTo(page)
	return next, nil
}

func applyDeletePage(doc *dashboard.Document, c command.DeletePage) (*dashboard.Document, error) {
	next := doc.Clone()
	for i, page := range next.Pages {
		if page.ID != c.TargetPageID {
			continue
		}
		next.Pages = append(next.Pages[:i], next.Pages[i+1:]...)
		// Deleting the current page moves currency to the first
		// remaining page.
		if next.CurrentPageID == c.TargetPageID {
			next.CurrentPageID = ""
			if len(next.Pages) > 0 {
				next.CurrentPageID = next.Pages[0].ID
			}
		}
		return next, nil
	}
	return next, nil
}

func applyChartFilter(doc *dashboard.Document, chartID, column string, values []string) (*dashboard.Document, error) {
	next := doc.Clone()
	_, chart := next.FindChart(chartID)
	if chart == nil {
		return nil, &TargetNotFoundError{Kind: TargetChart, ID: chartID}
	}
	chart.FilterColumn = column
	chart.FilterValues = append([]string(nil), values...)
	return next, nil
}

func applySortData(doc *dashboard.Document, c command.SortData) (*dashboard.Document, error) {
	next := doc.Clone()
	_, chart := next.FindChart(c.TargetChartID)
	if chart == nil {
		return nil, &TargetNotFoundError{Kind: TargetChart, ID: c.TargetChartID}
	}
	chart.SortColumn = c.SortColumn
	chart.SortOrder = c.SortOrder
	return next, nil
}
