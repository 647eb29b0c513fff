package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

// Paris is the default sampled zone.
var Paris = airquality.Zone{Name: "Paris", Latitude: 48.856613, Longitude: 2.352222}

// ParisReadings returns three readings on consecutive days. The middle one
// (21/11/2024 14:00) is the most polluted on both indexes: aqius 100, aqicn 80.
func ParisReadings() []airquality.Reading {
	mk := func(day int, clock string, hour, aqius, aqicn int) airquality.Reading {
		return airquality.Reading{
			Latitude:  48.8566,
			Longitude: 2.3522,
			Zone:      "Paris",
			Date:      time.Date(2024, time.November, day, 0, 0, 0, 0, time.UTC),
			Time:      clock,
			Pollution: airquality.PollutionRecord{
				TS:     time.Date(2024, time.November, day, hour, 0, 0, 0, time.UTC),
				AQIUS:  aqius,
				MainUS: "p2",
				AQICN:  aqicn,
				MainCN: "p1",
			},
		}
	}
	return []airquality.Reading{
		mk(20, "10:00", 10, 50, 40),
		mk(21, "14:00", 14, 100, 80),
		mk(22, "18:00", 18, 75, 60),
	}
}

// Seed inserts readings into s, failing the test on the first error.
func Seed(t testing.TB, s airquality.Store, readings ...airquality.Reading) {
	t.Helper()
	for _, r := range readings {
		if err := s.Insert(context.Background(), r); err != nil {
			t.Fatalf("seeding reading %+v: %v", r, err)
		}
	}
}

func IntPtr(v int) *int { return &v }

func StrPtr(v string) *string { return &v }

// FullPollution returns a provider pollution object with every field set.
func FullPollution() airquality.Pollution {
	return airquality.Pollution{
		TS:     StrPtr("2024-11-23T19:00:00.000Z"),
		AQIUS:  IntPtr(39),
		MainUS: StrPtr("p2"),
		AQICN:  IntPtr(17),
		MainCN: StrPtr("p1"),
	}
}

// NearestCityPayload is a successful nearest_city response body matching FullPollution.
const NearestCityPayload = `{
  "status": "success",
  "data": {
    "city": "Paris",
    "state": "Ile-de-France",
    "country": "France",
    "location": {"type": "Point", "coordinates": [2.351666, 48.859425]},
    "current": {
      "pollution": {"ts": "2024-11-23T19:00:00.000Z", "aqius": 39, "mainus": "p2", "aqicn": 17, "maincn": "p1"},
      "weather": {"ts": "2024-11-23T19:00:00.000Z", "tp": 8, "pr": 1021, "hu": 80, "ws": 2.57, "wd": 230, "ic": "04n"}
    }
  }
}`
