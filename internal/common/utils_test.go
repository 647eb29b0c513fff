package common

import "testing"

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Paris":          "paris",
		"  New   York  ": "new-york",
		"Rio de Janeiro": "rio-de-janeiro",
		"":               "",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCoordKey(t *testing.T) {
	if got := CoordKey(48.856613, 2.352222); got != "48.856613,2.352222" {
		t.Errorf("CoordKey() = %q", got)
	}
	if got := CoordKey(-74.006, 40.7128); got != "-74.006000,40.712800" {
		t.Errorf("CoordKey() = %q", got)
	}
}
