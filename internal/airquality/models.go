package airquality

import (
	"time"

	"github.com/i474232898/air-quality-monitor/internal/common"
)

// PollutantField names the index used to rank readings.
type PollutantField string

const (
	FieldAQIUS PollutantField = "aqius"
	FieldAQICN PollutantField = "aqicn"
)

// Valid reports whether f is one of the supported indexes.
func (f PollutantField) Valid() bool {
	return f == FieldAQIUS || f == FieldAQICN
}

// Zone is a named place with fixed coordinates that is sampled periodically.
type Zone struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Slug returns the lower-case, hyphenated zone name used in URL paths.
func (z Zone) Slug() string {
	return common.Slug(z.Name)
}

// Pollution is the provider's pollution object. Every field is optional:
// a nil field was absent from the provider response.
type Pollution struct {
	TS     *string `json:"ts,omitempty"`
	AQIUS  *int    `json:"aqius,omitempty"`
	MainUS *string `json:"mainus,omitempty"`
	AQICN  *int    `json:"aqicn,omitempty"`
	MainCN *string `json:"maincn,omitempty"`
}

// IsEmpty reports whether no field of the pollution object was present.
func (p Pollution) IsEmpty() bool {
	return p.TS == nil && p.AQIUS == nil && p.MainUS == nil && p.AQICN == nil && p.MainCN == nil
}

// NormalizedPollution is the canonical shape returned by the provider client
// and served verbatim by the live lookup.
type NormalizedPollution struct {
	Result Result `json:"Result"`
}

type Result struct {
	Pollution Pollution `json:"Pollution"`
}

// PollutionRecord is the pollution sub-document of a persisted reading.
type PollutionRecord struct {
	TS     time.Time `json:"ts"`
	AQIUS  int       `json:"aqius"`
	MainUS string    `json:"mainus"`
	AQICN  int       `json:"aqicn"`
	MainCN string    `json:"maincn"`
}

// Value returns the index selected by field.
func (p PollutionRecord) Value(field PollutantField) int {
	if field == FieldAQICN {
		return p.AQICN
	}
	return p.AQIUS
}

// Reading is one persisted observation for a zone. Date and Time are the
// ingestion wall clock (UTC), never the provider timestamp.
type Reading struct {
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Zone      string          `json:"zone"`
	Date      time.Time       `json:"date"`
	Time      string          `json:"time"`
	Pollution PollutionRecord `json:"pollution"`
}

// MostPollutedResult is the answer of the most-polluted query.
type MostPollutedResult struct {
	PollutionType PollutantField `json:"pollutionType"`
	Date          string         `json:"date"`
	Time          string         `json:"time"`
	Pollution     int            `json:"pollution"`
}

const (
	// DateLayout renders the ingestion date day-first (en-GB).
	DateLayout = "02/01/2006"
	// TimeLayout renders the ingestion time of day.
	TimeLayout = "15:04:05"
)
