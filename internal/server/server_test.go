package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penplan/pension-planner/internal/domain"
	"github.com/penplan/pension-planner/internal/engine"
	"github.com/penplan/pension-planner/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(engine.NewEngine(), store.NewMemoryStore(), nil))
	t.Cleanup(srv.Close)
	return srv
}

func validPlanBody() []byte {
	input := domain.PlanInput{
		StartingBalance:      decimal.NewFromInt(10000),
		PeriodsPerYear:       12,
		Horizon:              120,
		ContributionAmount:   decimal.NewFromInt(200),
		ContributionsPerYear: 12,
		AnnualGrowthRate:     decimal.NewFromFloat(0.05),
		AnnualFeeRate:        decimal.NewFromFloat(0.01),
		WithdrawalPolicy:     domain.WithdrawalNone,
	}
	body, _ := json.Marshal(input)
	return body
}

func postJSON(t *testing.T, url string, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestProjectEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/project", validPlanBody())
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result domain.ProjectionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, engine.PolicyID, result.PolicyID)
	require.Len(t, result.Periods, 120)

	// The served projection is the same one the local kernel produces.
	var input domain.PlanInput
	require.NoError(t, json.Unmarshal(validPlanBody(), &input))
	local := engine.NewEngine().Project(&input)
	assert.True(t, engine.EqualResults(&result, local))
}

func TestProjectEndpointValidationError(t *testing.T) {
	srv := newTestServer(t)

	var input domain.PlanInput
	require.NoError(t, json.Unmarshal(validPlanBody(), &input))
	input.AnnualFeeRate = decimal.NewFromFloat(1.5)
	body, _ := json.Marshal(input)

	resp := postJSON(t, srv.URL+"/api/v1/project", body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "annual_fee_rate", payload["field"])
	assert.NotEmpty(t, payload["constraint"])
	assert.Contains(t, payload["error"], "annual_fee_rate")
}

func TestProjectEndpointRejectsBadJSON(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/v1/project", []byte("{not json"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProjectEndpointMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/v1/project")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestScenarioCRUD(t *testing.T) {
	srv := newTestServer(t)

	var input domain.PlanInput
	require.NoError(t, json.Unmarshal(validPlanBody(), &input))
	saveBody, _ := json.Marshal(map[string]any{"name": "baseline", "plan": input})

	resp := postJSON(t, srv.URL+"/api/v1/scenarios", saveBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var saved map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	resp.Body.Close()
	id := saved["id"]
	require.NotEmpty(t, id)

	resp, err := http.Get(srv.URL + "/api/v1/scenarios")
	require.NoError(t, err)
	var records []domain.ScenarioRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	resp.Body.Close()
	require.Len(t, records, 1)
	assert.Equal(t, "baseline", records[0].Name)

	resp, err = http.Get(srv.URL + "/api/v1/scenarios/" + id)
	require.NoError(t, err)
	var record domain.ScenarioRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	resp.Body.Close()
	assert.Equal(t, id, record.ID)
	assert.True(t, record.Plan.StartingBalance.Equal(input.StartingBalance))

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/scenarios/"+id, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/scenarios/" + id)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScenarioProjectionEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var input domain.PlanInput
	require.NoError(t, json.Unmarshal(validPlanBody(), &input))
	saveBody, _ := json.Marshal(map[string]any{"name": "baseline", "plan": input})

	resp := postJSON(t, srv.URL+"/api/v1/scenarios", saveBody)
	var saved map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/v1/scenarios/" + saved["id"] + "/projection")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Result  domain.ProjectionResult `json:"result"`
		Summary domain.ScenarioSummary  `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Len(t, payload.Result.Periods, 120)
	assert.Equal(t, "baseline", payload.Summary.Name)
	assert.True(t, payload.Summary.FinalBalance.Equal(payload.Result.FinalBalance()))
}

func TestScenarioSaveRejectsInvalidPlan(t *testing.T) {
	srv := newTestServer(t)

	var input domain.PlanInput
	require.NoError(t, json.Unmarshal(validPlanBody(), &input))
	input.PeriodsPerYear = 0
	body, _ := json.Marshal(map[string]any{"name": "broken", "plan": input})

	resp := postJSON(t, srv.URL+"/api/v1/scenarios", body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "periods_per_year", payload["field"])
}

func TestScenarioSaveRequiresName(t *testing.T) {
	srv := newTestServer(t)

	var input domain.PlanInput
	require.NoError(t, json.Unmarshal(validPlanBody(), &input))
	body, _ := json.Marshal(map[string]any{"plan": input})

	resp := postJSON(t, srv.URL+"/api/v1/scenarios", body)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
