package providers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/air-quality-monitor/internal/testhelpers"
)

// TestNormalize_ExtractsPollution verifies that only data.current.pollution
// is kept from a full nearest_city payload.
func TestNormalize_ExtractsPollution(t *testing.T) {
	got := Normalize([]byte(testhelpers.NearestCityPayload))

	assert.Equal(t, testhelpers.FullPollution(), got.Result.Pollution)
}

func TestNormalize_PartialPollutionKeepsPresentFields(t *testing.T) {
	got := Normalize([]byte(`{"data":{"current":{"pollution":{"aqius":50,"aqicn":100}}}}`))

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Result":{"Pollution":{"aqius":50,"aqicn":100}}}`, string(raw))
}

// TestNormalize_NeverFails verifies that absent or malformed payloads yield
// an empty pollution object instead of an error.
func TestNormalize_NeverFails(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"absent", ""},
		{"empty object", `{}`},
		{"null", `null`},
		{"not json", `<html>bad gateway</html>`},
		{"data null", `{"data":null}`},
		{"no current", `{"data":{"city":"Paris"}}`},
		{"no pollution", `{"data":{"current":{"weather":{"tp":8}}}}`},
		{"pollution not an object", `{"data":{"current":{"pollution":"n/a"}}}`},
		{"data is an array", `{"data":[1,2,3]}`},
		{"only field mistyped", `{"data":{"current":{"pollution":{"aqius":"high"}}}}`},
		{"null fields", `{"data":{"current":{"pollution":{"aqius":null,"ts":null}}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([]byte(tt.raw))

			assert.True(t, got.Result.Pollution.IsEmpty())
			raw, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, `{"Result":{"Pollution":{}}}`, string(raw))
		})
	}
}

// TestNormalize_MistypedFieldKeepsOthers verifies that one bad field does not
// discard the rest of the pollution object.
func TestNormalize_MistypedFieldKeepsOthers(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"numeric ts",
			`{"ts":1732388400,"aqius":50,"mainus":"p2","aqicn":40,"maincn":"p1"}`,
			`{"aqius":50,"mainus":"p2","aqicn":40,"maincn":"p1"}`,
		},
		{
			"whole float index",
			`{"ts":"2024-11-23T19:00:00.000Z","aqius":50.0,"aqicn":40}`,
			`{"ts":"2024-11-23T19:00:00.000Z","aqius":50,"aqicn":40}`,
		},
		{
			"fractional index dropped",
			`{"aqius":50.5,"aqicn":40}`,
			`{"aqicn":40}`,
		},
		{
			"string index dropped",
			`{"aqius":"high","aqicn":40,"maincn":7}`,
			`{"aqicn":40}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([]byte(`{"data":{"current":{"pollution":` + tt.raw + `}}}`))

			raw, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, `{"Result":{"Pollution":`+tt.want+`}}`, string(raw))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "incorrect_api_key", errorMessage([]byte(`{"status":"fail","data":{"message":"incorrect_api_key"}}`)))
	assert.Equal(t, "", errorMessage([]byte(`{"status":"fail"}`)))
	assert.Equal(t, "", errorMessage([]byte(`Too Many Requests`)))
}
