package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
	"github.com/i474232898/air-quality-monitor/internal/store"
	"github.com/i474232898/air-quality-monitor/internal/testhelpers"
)

func newTestApp(t *testing.T, provider airquality.Provider, s airquality.Store) *fiber.App {
	t.Helper()
	svc := airquality.NewService(s, provider)
	return NewApp(svc, testhelpers.Paris, nil, ServerOptions{})
}

func doGet(t *testing.T, app *fiber.App, target string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp.StatusCode, body
}

func errorMessageOf(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decoding error body %q: %v", body, err)
	}
	return payload.Error
}

// TestLiveAirQuality_Success verifies that the provider's normalized result
// is returned verbatim.
func TestLiveAirQuality_Success(t *testing.T) {
	provider := &testhelpers.FakeProvider{Result: airquality.NormalizedPollution{
		Result: airquality.Result{Pollution: testhelpers.FullPollution()},
	}}
	app := newTestApp(t, provider, store.NewMemoryStore())

	status, body := doGet(t, app, "/api/air-quality?latitude=40.7128&longitude=-74.006")

	if status != http.StatusOK {
		t.Fatalf("expected status %d, got %d (%s)", http.StatusOK, status, body)
	}
	want := `{"Result":{"Pollution":{"ts":"2024-11-23T19:00:00.000Z","aqius":39,"mainus":"p2","aqicn":17,"maincn":"p1"}}}`
	if string(body) != want {
		t.Fatalf("unexpected body:\n got %s\nwant %s", body, want)
	}
}

func TestLiveAirQuality_EmptyPollution(t *testing.T) {
	app := newTestApp(t, &testhelpers.FakeProvider{}, store.NewMemoryStore())

	status, body := doGet(t, app, "/api/air-quality?latitude=1&longitude=2")

	if status != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, status)
	}
	if string(body) != `{"Result":{"Pollution":{}}}` {
		t.Fatalf("unexpected body %s", body)
	}
}

// TestLiveAirQuality_MissingCoordinates verifies the 400 response for
// missing or empty query parameters.
func TestLiveAirQuality_MissingCoordinates(t *testing.T) {
	app := newTestApp(t, &testhelpers.FakeProvider{}, store.NewMemoryStore())

	for _, target := range []string{
		"/api/air-quality",
		"/api/air-quality?latitude=&longitude=",
		"/api/air-quality?latitude=48.85",
	} {
		status, body := doGet(t, app, target)
		if status != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", target, http.StatusBadRequest, status)
		}
		if msg := errorMessageOf(t, body); msg != "Latitude and Longitude are required" {
			t.Fatalf("%s: unexpected error %q", target, msg)
		}
	}
}

func TestLiveAirQuality_UpstreamFailure(t *testing.T) {
	provider := &testhelpers.FakeProvider{Err: airquality.Upstream("API failure", errors.New("API failure"))}
	app := newTestApp(t, provider, store.NewMemoryStore())

	status, body := doGet(t, app, "/api/air-quality?latitude=40.7128&longitude=-74.006")

	if status != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, status)
	}
	if msg := errorMessageOf(t, body); msg != "Failed to fetch air quality data: API failure" {
		t.Fatalf("unexpected error %q", msg)
	}
}

// TestMostPolluted_Paris covers the selector variants against seeded readings.
func TestMostPolluted_Paris(t *testing.T) {
	mem := store.NewMemoryStore()
	testhelpers.Seed(t, mem, testhelpers.ParisReadings()...)
	app := newTestApp(t, &testhelpers.FakeProvider{}, mem)

	tests := []struct {
		query string
		want  string
	}{
		{"", `{"pollutionType":"aqius","date":"21/11/2024","time":"14:00","pollution":100}`},
		{"?pollutionType=us", `{"pollutionType":"aqius","date":"21/11/2024","time":"14:00","pollution":100}`},
		{"?pollutionType=china", `{"pollutionType":"aqicn","date":"21/11/2024","time":"14:00","pollution":80}`},
	}
	for _, tt := range tests {
		status, body := doGet(t, app, "/api/zone/paris/most-polluted-timestamp"+tt.query)
		if status != http.StatusOK {
			t.Fatalf("%q: expected status %d, got %d (%s)", tt.query, http.StatusOK, status, body)
		}
		if string(body) != tt.want {
			t.Fatalf("%q: unexpected body:\n got %s\nwant %s", tt.query, body, tt.want)
		}
	}
}

func TestMostPolluted_InvalidPollutionType(t *testing.T) {
	mem := store.NewMemoryStore()
	testhelpers.Seed(t, mem, testhelpers.ParisReadings()...)
	app := newTestApp(t, &testhelpers.FakeProvider{}, mem)

	status, body := doGet(t, app, "/api/zone/paris/most-polluted-timestamp?pollutionType=invalidType")

	if status != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, status)
	}
	if msg := errorMessageOf(t, body); msg != "Invalid pollution type. Supported values: 'aqius' or 'aqicn'" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestMostPolluted_NoData(t *testing.T) {
	app := newTestApp(t, &testhelpers.FakeProvider{}, store.NewMemoryStore())

	status, body := doGet(t, app, "/api/zone/paris/most-polluted-timestamp")

	if status != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, status)
	}
	if msg := errorMessageOf(t, body); msg != "No data found for zone: Paris" {
		t.Fatalf("unexpected error %q", msg)
	}
}

// TestMostPolluted_PersistenceFailureIsHidden verifies that storage errors
// surface as a generic 500 without internal detail.
func TestMostPolluted_PersistenceFailureIsHidden(t *testing.T) {
	failing := testhelpers.FailingStore{Err: airquality.Persistence("querying most polluted reading", errors.New("database is locked"))}
	app := newTestApp(t, &testhelpers.FakeProvider{}, failing)

	status, body := doGet(t, app, "/api/zone/paris/most-polluted-timestamp")

	if status != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, status)
	}
	if msg := errorMessageOf(t, body); msg != "Internal Server Error" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, &testhelpers.FakeProvider{}, store.NewMemoryStore())

	status, body := doGet(t, app, "/api/health")

	if status != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, status)
	}
	if string(body) != `{"message":"Server is live"}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, &testhelpers.FakeProvider{}, store.NewMemoryStore())
	doGet(t, app, "/api/health")

	status, body := doGet(t, app, "/metrics")

	if status != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, status)
	}
	if !strings.Contains(string(body), `httpRequestsTotal{method="GET",route="/api/health",statusCode="2xx"}`) {
		t.Fatalf("metrics output missing health request counter:\n%s", body)
	}
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, &testhelpers.FakeProvider{}, store.NewMemoryStore())

	status, body := doGet(t, app, "/api/zone/london/most-polluted-timestamp")

	if status != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, status)
	}
	if msg := errorMessageOf(t, body); msg != "Cannot GET /api/zone/london/most-polluted-timestamp" {
		t.Fatalf("unexpected error %q", msg)
	}
}
