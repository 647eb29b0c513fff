package providers

import (
	"encoding/json"
	"math"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

// Normalize extracts data.current.pollution from a raw nearest_city payload.
// It never fails: an absent or malformed payload yields an empty Pollution.
// Fields are decoded one by one, so a mistyped field is dropped on its own.
func Normalize(raw []byte) airquality.NormalizedPollution {
	var out airquality.NormalizedPollution

	node := json.RawMessage(raw)
	for _, key := range []string{"data", "current", "pollution"} {
		next, ok := field(node, key)
		if !ok {
			return out
		}
		node = next
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(node, &fields); err != nil {
		return out
	}

	out.Result.Pollution = airquality.Pollution{
		TS:     stringValue(fields["ts"]),
		AQIUS:  intValue(fields["aqius"]),
		MainUS: stringValue(fields["mainus"]),
		AQICN:  intValue(fields["aqicn"]),
		MainCN: stringValue(fields["maincn"]),
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func stringValue(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// intValue accepts JSON integers and whole floats such as 50.0.
func intValue(raw json.RawMessage) *int {
	if isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	if math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	v := int(f)
	return &v
}

// field returns the member key of the JSON object raw, if raw is an object
// that has a non-null member with that name.
func field(raw json.RawMessage, key string) (json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	v, ok := obj[key]
	if !ok || len(v) == 0 || string(v) == "null" {
		return nil, false
	}
	return v, true
}

// errorMessage returns data.message from a provider error body, if any.
func errorMessage(body []byte) string {
	data, ok := field(body, "data")
	if !ok {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.Message
}
