package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/plotdeck/plotdeck/api"
	"github.com/plotdeck/plotdeck/command"
	"github.com/plotdeck/plotdeck/dashboard"
	"github.com/plotdeck/plotdeck/interpreter"
	"github.com/plotdeck/plotdeck/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInterpreter struct {
	outcome *interpreter.Outcome
	err     error
}

func (f *fakeInterpreter) Interpret(_ context.Context, req interpreter.Request) (*interpreter.Outcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.outcome.Document == nil {
		f.outcome.Document = req.Document
	}
	return f.outcome, nil
}

func testDoc() *dashboard.Document {
	return &dashboard.Document{
		ID:            "doc-1",
		CurrentPageID: "page-1",
		Pages: []*dashboard.Page{
			{ID: "page-1", Name: "Overview", Charts: []*dashboard.Chart{
				{ID: "chart-1", Type: dashboard.ChartBar, Title: "Revenue", Width: 2, Height: 2},
			}},
		},
	}
}

func newServer(t *testing.T, fi *fakeInterpreter, ledger *usage.Ledger) *httptest.Server {
	t.Helper()
	handler := api.NewHandler(api.Dependencies{
		Interpreter: fi,
		Ledger:      ledger,
		RecentLimit: 10,
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func postCommand(t *testing.T, server *httptest.Server, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(server.URL+"/api/command", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func TestCommandEndpoint_Applied(t *testing.T) {
	fi := &fakeInterpreter{outcome: &interpreter.Outcome{
		Applied: true,
		Command: command.UpdateTheme{Theme: dashboard.ThemeDark},
		Message: "Switched to dark.",
	}}
	server := newServer(t, fi, usage.NewLedger())

	resp := postCommand(t, server, api.CommandRequest{Prompt: "dark mode", Dashboard: testDoc()})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.CommandResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Applied)
	assert.Equal(t, "update_theme", out.Action)
	assert.Equal(t, "Switched to dark.", out.Message)
	assert.Empty(t, out.RejectReason)
	require.NotNil(t, out.Dashboard)
}

func TestCommandEndpoint_RejectIsStillOK(t *testing.T) {
	fi := &fakeInterpreter{outcome: &interpreter.Outcome{
		RejectReason: command.RejectNoMatchingChart,
		Message:      "I couldn't find the chart you're referring to on this dashboard.",
	}}
	server := newServer(t, fi, usage.NewLedger())

	resp := postCommand(t, server, api.CommandRequest{Prompt: "rename it", Dashboard: testDoc()})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.CommandResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Applied)
	assert.Equal(t, "no_matching_chart", out.RejectReason)
}

func TestCommandEndpoint_CurrentDashboardKey(t *testing.T) {
	// The documented body shape is {prompt, currentDashboard, schema}.
	fi := &fakeInterpreter{outcome: &interpreter.Outcome{
		Applied: true,
		Command: command.UpdateTheme{Theme: dashboard.ThemeDark},
		Message: "Switched to dark.",
	}}
	server := newServer(t, fi, usage.NewLedger())

	doc, err := json.Marshal(testDoc())
	require.NoError(t, err)
	body := []byte(`{"prompt":"dark mode","currentDashboard":` + string(doc) + `}`)

	resp, err := http.Post(server.URL+"/api/command", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.CommandResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Applied)
}

func TestCommandEndpoint_DashboardAliasKey(t *testing.T) {
	// The shorter "dashboard" key keeps working as an alias.
	fi := &fakeInterpreter{outcome: &interpreter.Outcome{Applied: true, Message: "ok"}}
	server := newServer(t, fi, usage.NewLedger())

	resp := postCommand(t, server, api.CommandRequest{Prompt: "hi", Dashboard: testDoc()})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCommandEndpoint_BadBody(t *testing.T) {
	server := newServer(t, &fakeInterpreter{}, usage.NewLedger())

	resp, err := http.Post(server.URL+"/api/command", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCommandEndpoint_MissingFields(t *testing.T) {
	server := newServer(t, &fakeInterpreter{}, usage.NewLedger())

	resp := postCommand(t, server, api.CommandRequest{Dashboard: testDoc()})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postCommand(t, server, api.CommandRequest{Prompt: "hi"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCommandEndpoint_ConfigurationMissing(t *testing.T) {
	fi := &fakeInterpreter{err: &interpreter.ConfigurationMissingError{Err: errors.New("OPENAI_API_KEY is not set")}}
	server := newServer(t, fi, usage.NewLedger())

	resp := postCommand(t, server, api.CommandRequest{Prompt: "x", Dashboard: testDoc()})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCommandEndpoint_UpstreamUnavailable(t *testing.T) {
	fi := &fakeInterpreter{err: &interpreter.UpstreamUnavailableError{Err: errors.New("status 503")}}
	server := newServer(t, fi, usage.NewLedger())

	resp := postCommand(t, server, api.CommandRequest{Prompt: "x", Dashboard: testDoc()})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// The failure payload carries a short error plus operator detail.
	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "model service unavailable", out["error"])
	assert.Contains(t, out["details"], "status 503")
}

func TestUsageEndpoint(t *testing.T) {
	ledger := usage.NewLedger()
	ledger.Append(usage.Record{Model: "m", InputTokens: 5, OutputTokens: 5, TotalTokens: 10})
	server := newServer(t, &fakeInterpreter{}, ledger)

	resp, err := http.Get(server.URL + "/api/usage")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.UsageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 1, out.Stats.TotalRequests)
	assert.Equal(t, 10, out.Stats.TotalTokens)
	require.Len(t, out.RecentRequests, 1)
}

func TestUsageEndpoint_Delete(t *testing.T) {
	ledger := usage.NewLedger()
	ledger.Append(usage.Record{Model: "m"})
	server := newServer(t, &fakeInterpreter{}, ledger)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/usage?target=usage", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, ledger.Stats().TotalRequests)
}

func TestUsageEndpoint_DeleteInvalidTarget(t *testing.T) {
	server := newServer(t, &fakeInterpreter{}, usage.NewLedger())

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/usage?target=bogus", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	server := newServer(t, &fakeInterpreter{}, usage.NewLedger())

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsExposed(t *testing.T) {
	server := newServer(t, &fakeInterpreter{}, usage.NewLedger())

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
