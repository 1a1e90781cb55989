package dashboard_test

import (
	"encoding/json"
	"testing"

	"github.com/plotdeck/plotdeck/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYAxis_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    dashboard.YAxis
		wantErr bool
	}{
		{
			name:  "single string",
			input: `"revenue"`,
			want:  dashboard.YAxis{"revenue"},
		},
		{
			name:  "list of strings",
			input: `["revenue", "cost"]`,
			want:  dashboard.YAxis{"revenue", "cost"},
		},
		{
			name:  "empty list",
			input: `[]`,
			want:  dashboard.YAxis{},
		},
		{
			name:    "number",
			input:   `42`,
			wantErr: true,
		},
		{
			name:    "list of numbers",
			input:   `[1, 2]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got dashboard.YAxis
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestYAxis_MarshalJSON(t *testing.T) {
	single, err := json.Marshal(dashboard.YAxis{"revenue"})
	require.NoError(t, err)
	assert.Equal(t, `"revenue"`, string(single))

	multi, err := json.Marshal(dashboard.YAxis{"revenue", "cost"})
	require.NoError(t, err)
	assert.Equal(t, `["revenue","cost"]`, string(multi))
}

func TestValidChartType(t *testing.T) {
	assert.True(t, dashboard.ValidChartType("bar"))
	assert.True(t, dashboard.ValidChartType("stacked-bar"))
	assert.True(t, dashboard.ValidChartType("matrix"))
	assert.False(t, dashboard.ValidChartType("Bar"))
	assert.False(t, dashboard.ValidChartType("all"))
	assert.False(t, dashboard.ValidChartType(""))
}

func TestChart_Clone_IsDeep(t *testing.T) {
	tv := 3.5
	orig := &dashboard.Chart{
		ID:           "c1",
		Type:         dashboard.ChartBar,
		YAxis:        dashboard.YAxis{"revenue"},
		Colors:       []string{"#fff"},
		FilterValues: []string{"east"},
		TrendValue:   &tv,
	}

	clone := orig.Clone()
	clone.YAxis[0] = "cost"
	clone.Colors[0] = "#000"
	clone.FilterValues[0] = "west"
	*clone.TrendValue = 9.9

	assert.Equal(t, dashboard.YAxis{"revenue"}, orig.YAxis)
	assert.Equal(t, []string{"#fff"}, orig.Colors)
	assert.Equal(t, []string{"east"}, orig.FilterValues)
	assert.Equal(t, 3.5, *orig.TrendValue)
}

func TestDocument_FindChart_CurrentPageFirst(t *testing.T) {
	// The same chart ID exists on two pages; the current page wins.
	doc := &dashboard.Document{
		ID:            "d1",
		CurrentPageID: "p2",
		Pages: []*dashboard.Page{
			{ID: "p1", Charts: []*dashboard.Chart{{ID: "dup", Title: "on p1"}}},
			{ID: "p2", Charts: []*dashboard.Chart{{ID: "dup", Title: "on p2"}}},
		},
	}

	page, chart := doc.FindChart("dup")
	require.NotNil(t, chart)
	assert.Equal(t, "p2", page.ID)
	assert.Equal(t, "on p2", chart.Title)
}

func TestDocument_FindChart_FallsBackToDocumentOrder(t *testing.T) {
	doc := &dashboard.Document{
		ID:            "d1",
		CurrentPageID: "p2",
		Pages: []*dashboard.Page{
			{ID: "p1", Charts: []*dashboard.Chart{{ID: "only-on-p1"}}},
			{ID: "p2"},
			{ID: "p3", Charts: []*dashboard.Chart{{ID: "only-on-p1"}}},
		},
	}

	page, chart := doc.FindChart("only-on-p1")
	require.NotNil(t, chart)
	assert.Equal(t, "p1", page.ID)

	_, missing := doc.FindChart("nope")
	assert.Nil(t, missing)
}

func TestDocument_Clone_IsDeep(t *testing.T) {
	doc := &dashboard.Document{
		ID:            "d1",
		CurrentPageID: "p1",
		Theme:         dashboard.ThemeLight,
		Pages: []*dashboard.Page{
			{ID: "p1", Name: "Main", Charts: []*dashboard.Chart{{ID: "c1", Title: "Revenue"}}},
		},
	}

	clone := doc.Clone()
	clone.Pages[0].Name = "Changed"
	clone.Pages[0].Charts[0].Title = "Changed"
	clone.Theme = dashboard.ThemeDark

	assert.Equal(t, "Main", doc.Pages[0].Name)
	assert.Equal(t, "Revenue", doc.Pages[0].Charts[0].Title)
	assert.Equal(t, dashboard.ThemeLight, doc.Theme)
}

func TestChart_JSONRoundTrip(t *testing.T) {
	// yAxis arrives as a bare string from the wire and stays usable.
	raw := `{"id":"c1","type":"line","title":"Trend","yAxis":"revenue","x":0,"y":0,"width":2,"height":2}`

	var chart dashboard.Chart
	require.NoError(t, json.Unmarshal([]byte(raw), &chart))
	assert.Equal(t, dashboard.YAxis{"revenue"}, chart.YAxis)

	out, err := json.Marshal(&chart)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"yAxis":"revenue"`)
}
