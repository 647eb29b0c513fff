package common

import (
	"strconv"
	"strings"
)

// Slug lower-cases s and joins its words with hyphens.
func Slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

// CoordKey returns a canonical "lat,lon" key with six decimals, enough to
// tell apart points roughly ten centimetres apart.
func CoordKey(latitude, longitude float64) string {
	return strconv.FormatFloat(latitude, 'f', 6, 64) + "," + strconv.FormatFloat(longitude, 'f', 6, 64)
}
