package airquality

import (
	"strings"
	"time"
)

// NewReading stamps p with the ingestion instant now. aqius and aqicn must
// be present.
func NewReading(zone Zone, now time.Time, p Pollution) (Reading, error) {
	if p.AQIUS == nil || p.AQICN == nil {
		return Reading{}, Persistence("reading rejected: pollution.aqius and pollution.aqicn are required", nil)
	}

	now = now.UTC()
	r := Reading{
		Latitude:  zone.Latitude,
		Longitude: zone.Longitude,
		Zone:      zone.Name,
		Date:      time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Time:      now.Format(TimeLayout),
		Pollution: PollutionRecord{
			AQIUS: *p.AQIUS,
			AQICN: *p.AQICN,
		},
	}
	if p.TS != nil {
		if ts, err := time.Parse(time.RFC3339, *p.TS); err == nil {
			r.Pollution.TS = ts.UTC()
		}
	}
	if p.MainUS != nil {
		r.Pollution.MainUS = *p.MainUS
	}
	if p.MainCN != nil {
		r.Pollution.MainCN = *p.MainCN
	}
	return r, nil
}

// Validate checks the invariants every persisted reading must hold.
func (r Reading) Validate() error {
	if strings.TrimSpace(r.Zone) == "" {
		return Persistence("reading rejected: zone is required", nil)
	}
	if r.Date.IsZero() || r.Time == "" {
		return Persistence("reading rejected: date and time are required", nil)
	}
	return nil
}

// MorePolluted reports whether a ranks above b for field: higher value
// first, then the more recent provider timestamp. A missing or unparsable
// timestamp is the zero time and ranks last. Equal readings do not
// rank above each other, so callers scanning in insertion order should
// prefer the later one on a tie.
func MorePolluted(a, b Reading, field PollutantField) bool {
	av, bv := a.Pollution.Value(field), b.Pollution.Value(field)
	if av != bv {
		return av > bv
	}
	return a.Pollution.TS.After(b.Pollution.TS)
}

// ParseSelector translates a caller-facing pollution selector into a field.
// Empty defaults to aqius.
func ParseSelector(selector string) (PollutantField, error) {
	switch selector {
	case "", "us", string(FieldAQIUS):
		return FieldAQIUS, nil
	case "china", string(FieldAQICN):
		return FieldAQICN, nil
	default:
		return "", InvalidArgument(MsgInvalidPollutant)
	}
}
