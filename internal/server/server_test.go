package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datadash-cli/internal/backend"
	"github.com/KaramelBytes/datadash-cli/internal/dashboard"
	"github.com/KaramelBytes/datadash-cli/internal/health"
)

const usableAnalysis = `{
  "preview": [{"a": 1, "b": "x"}, {"a": 2, "b": "y"}],
  "cleaning_log": [{"step": "initial", "message": "Data loaded with 2 rows and 2 columns"}],
  "column_types": {"a": "numeric", "b": "categorical"},
  "analysis": {"summary": {"numeric": {"a": {"count": 2, "mean": 1.5}}}},
  "visualizations": {}
}`

func newIPv4Server(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("ipv4 listener unavailable: %v", err)
	}
	srv := &httptest.Server{Listener: ln, Config: &http.Server{Handler: h}}
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}

func newBackend(t *testing.T) *httptest.Server {
	return newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/":
			_, _ = io.WriteString(w, `{"status":"online"}`)
		case "/analyze-csv":
			_, _ = io.WriteString(w, usableAnalysis)
		default:
			http.NotFound(w, r)
		}
	}))
}

func newAPI(t *testing.T, backendURL string) (*httptest.Server, *dashboard.Session) {
	t.Helper()
	client := backend.NewClient(backendURL)
	mon := health.NewMonitor(client)
	sess := dashboard.NewSession(client, mon)
	return newIPv4Server(t, New(sess, mon)), sess
}

func uploadRequest(t *testing.T, url, filename, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req, err := http.NewRequest(http.MethodPost, url+"/api/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAnalysis_StartsOnSample(t *testing.T) {
	api, _ := newAPI(t, newBackend(t).URL)

	resp, err := http.Get(api.URL + "/api/analysis")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view struct {
		UsingSample bool `json:"using_sample"`
		Result      struct {
			Preview []map[string]any `json:"preview"`
		} `json:"result"`
	}
	decode(t, resp, &view)
	assert.True(t, view.UsingSample)
	assert.Len(t, view.Result.Preview, 16)
}

func TestStatus_ProbeUpdatesState(t *testing.T) {
	api, _ := newAPI(t, newBackend(t).URL)

	resp, err := http.Get(api.URL + "/api/status")
	require.NoError(t, err)
	var st statusResponse
	decode(t, resp, &st)
	assert.Equal(t, "unknown", st.State)
	assert.Nil(t, st.CheckedAt)

	resp, err = http.Post(api.URL+"/api/status/probe", "application/json", nil)
	require.NoError(t, err)
	decode(t, resp, &st)
	assert.Equal(t, "online", st.State)
	assert.NotNil(t, st.CheckedAt)
}

func TestUpload_ThenDownloads(t *testing.T) {
	api, _ := newAPI(t, newBackend(t).URL)

	resp, err := http.DefaultClient.Do(uploadRequest(t, api.URL, "scores.csv", "a,b\n1,x\n2,y\n"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dashboard.Outcome
	decode(t, resp, &out)
	assert.True(t, out.Accepted)
	assert.Equal(t, "scores.csv", out.Filename)

	resp, err = http.Get(api.URL + "/api/download/csv")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "a,b\n1,x\n2,y", string(body))
	assert.Equal(t, dashboard.ContentTypeCSV, resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="analyzed_scores.csv.csv"`, resp.Header.Get("Content-Disposition"))

	resp, err = http.Get(api.URL + "/api/download/summary/numeric")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Statistic,a\ncount,2\nmean,1.5", string(body))

	resp, err = http.Get(api.URL + "/api/download/xlsx")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, dashboard.ContentTypeXLSX, resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("PK")))
}

func TestUpload_InputErrorsAreBadRequest(t *testing.T) {
	api, _ := newAPI(t, newBackend(t).URL)

	for name, req := range map[string]*http.Request{
		"missing file": uploadRequest(t, api.URL, "", ""),
		"wrong type":   uploadRequest(t, api.URL, "notes.txt", "hello"),
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			var body map[string]string
			decode(t, resp, &body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestUpload_MalformedFormBecomesNotice(t *testing.T) {
	api, _ := newAPI(t, newBackend(t).URL)

	resp, err := http.Post(api.URL+"/api/upload", "application/json", strings.NewReader(`{"file":"x.csv"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(api.URL+"/api/charts", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(api.URL + "/api/notices")
	require.NoError(t, err)
	var notices []dashboard.Notice
	decode(t, resp, &notices)
	require.Len(t, notices, 2)
	assert.Equal(t, dashboard.SeverityWarning, notices[0].Severity)
	assert.Contains(t, notices[0].Message, "invalid upload form")
	assert.Contains(t, notices[1].Message, "invalid chart request")
}

func TestUpload_BackendDownIsBadGateway(t *testing.T) {
	down := newBackend(t)
	url := down.URL
	down.Close()
	api, _ := newAPI(t, url)

	resp, err := http.DefaultClient.Do(uploadRequest(t, api.URL, "scores.csv", "a,b\n1,x\n"))
	require.NoError(t, err)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, dashboard.OfflineMessage, body["error"])
}

func TestDownloadSummary_UnknownCategory(t *testing.T) {
	api, _ := newAPI(t, newBackend(t).URL)

	resp, err := http.Get(api.URL + "/api/download/summary/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, err = http.Get(api.URL + "/api/notices")
	require.NoError(t, err)
	var notices []dashboard.Notice
	decode(t, resp, &notices)
	require.NotEmpty(t, notices)
	last := notices[len(notices)-1]
	assert.Equal(t, "Cannot download summary for nope", last.Message)

	req, _ := http.NewRequest(http.MethodDelete, api.URL+"/api/notices/"+last.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCharts(t *testing.T) {
	api, _ := newAPI(t, newBackend(t).URL)

	resp, err := http.Get(api.URL + "/api/axes")
	require.NoError(t, err)
	var axes dashboard.AxisSuggestion
	decode(t, resp, &axes)
	assert.Contains(t, axes.Numeric, "visiting_team_score")

	resp, err = http.Post(api.URL+"/api/charts", "application/json",
		strings.NewReader(`{"kind":"line","x":"clock","y":"home_team_score"}`))
	require.NoError(t, err)
	var plan dashboard.ChartPlan
	decode(t, resp, &plan)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Custom line chart generated for X: clock, Y: home_team_score", plan.Message)

	resp, err = http.Post(api.URL+"/api/charts", "application/json", strings.NewReader(`{"kind":"bar","x":"clock"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(api.URL+"/api/charts", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTable_SampleFallbackFlag(t *testing.T) {
	api, _ := newAPI(t, newBackend(t).URL)

	resp, err := http.Get(api.URL + "/api/table")
	require.NoError(t, err)
	var body struct {
		UsingSample bool             `json:"using_sample"`
		Rows        []map[string]any `json:"rows"`
	}
	decode(t, resp, &body)
	assert.False(t, body.UsingSample)
	assert.Len(t, body.Rows, 16)
}
