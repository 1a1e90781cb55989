package dashboard

// ChartPatch is a partial chart update. Nil fields are left untouched when
// the patch is applied; present fields overwrite the prior value.
type ChartPatch struct {
	Type           *ChartType      `json:"type,omitempty"`
	Title          *string         `json:"title,omitempty"`
	TitlePosition  *TitlePosition  `json:"titlePosition,omitempty"`
	XAxis          *string         `json:"xAxis,omitempty"`
	YAxis          YAxis           `json:"yAxis,omitempty"`
	GroupBy        *string         `json:"groupBy,omitempty"`
	Aggregation    *Aggregation    `json:"aggregation,omitempty"`
	Trend          *TrendDirection `json:"trend,omitempty"`
	TrendValue     *float64        `json:"trendValue,omitempty"`
	DisplayColumns []string        `json:"displayColumns,omitempty"`
	Colors         []string        `json:"colors,omitempty"`
	SortColumn     *string         `json:"sortColumn,omitempty"`
	SortOrder      *SortOrder      `json:"sortOrder,omitempty"`
	FilterColumn   *string         `json:"filterColumn,omitempty"`
	FilterValues   []string        `json:"filterValues,omitempty"`
	X              *int            `json:"x,omitempty"`
	Y              *int            `json:"y,omitempty"`
	Width          *int            `json:"width,omitempty"`
	Height         *int            `json:"height,omitempty"`
}

// IsZero reports whether the patch carries no fields at all.
func (p *ChartPatch) IsZero() bool {
	return p == nil || (p.Type == nil && p.Title == nil && p.TitlePosition == nil &&
		p.XAxis == nil && p.YAxis == nil && p.GroupBy == nil && p.Aggregation == nil &&
		p.Trend == nil && p.TrendValue == nil && p.DisplayColumns == nil &&
		p.Colors == nil && p.SortColumn == nil && p.SortOrder == nil &&
		p.FilterColumn == nil && p.FilterValues == nil &&
		p.X == nil && p.Y == nil && p.Width == nil && p.Height == nil)
}

// ApplyTo merges the patch into the chart, field by field.
func (p *ChartPatch) ApplyTo(c *Chart) {
	if p == nil || c == nil {
		return
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.TitlePosition != nil {
		c.TitlePosition = *p.TitlePosition
	}
	if p.XAxis != nil {
		c.XAxis = *p.XAxis
	}
	if p.YAxis != nil {
		c.YAxis = append(YAxis(nil), p.YAxis...)
	}
	if p.GroupBy != nil {
		c.GroupBy = *p.GroupBy
	}
	if p.Aggregation != nil {
		c.Aggregation = *p.Aggregation
	}
	if p.Trend != nil {
		c.Trend = *p.Trend
	}
	if p.TrendValue != nil {
		v := *p.TrendValue
		c.TrendValue = &v
	}
	if p.DisplayColumns != nil {
		c.DisplayColumns = append([]string(nil), p.DisplayColumns...)
	}
	if p.Colors != nil {
		c.Colors = append([]string(nil), p.Colors...)
	}
	if p.SortColumn != nil {
		c.SortColumn = *p.SortColumn
	}
	if p.SortOrder != nil {
		c.SortOrder = *p.SortOrder
	}
	if p.FilterColumn != nil {
		c.FilterColumn = *p.FilterColumn
	}
	if p.FilterValues != nil {
		c.FilterValues = append([]string(nil), p.FilterValues...)
	}
	if p.X != nil {
		c.X = *p.X
	}
	if p.Y != nil {
		c.Y = *p.Y
	}
	if p.Width != nil {
		c.Width = *p.Width
	}
	if p.Height != nil {
		c.Height = *p.Height
	}
}

// PagePatch is a partial page update.
type PagePatch struct {
	Name      *string `json:"name,omitempty"`
	ShowTitle *bool   `json:"showTitle,omitempty"`
}

// ApplyTo merges the patch into the page.
func (p *PagePatch) ApplyTo(pg *Page) {
	if p == nil || pg == nil {
		return
	}
	if p.Name != nil {
		pg.Name = *p.Name
	}
	if p.ShowTitle != nil {
		pg.ShowTitle = *p.ShowTitle
	}
}
