package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Kepler-22 b":         "kepler-22-b",
		"  TRAPPIST-1 e  ":    "trappist-1-e",
		"HD 209458 b":         "hd-209458-b",
		"--Gliese 581 c!!":    "gliese-581-c",
		"2MASS J1207 b (A)":   "2mass-j1207-b-a",
		"Proxima Cen b":       "proxima-cen-b",
		"tau Boötis b":        "tau-bo-tis-b",
		"":                    "",
		"   ":                 "",
		"***":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	for _, in := range []string{"Kepler-22 b", "a__b", "  x  y  ", "Ünïcödé 7", "already-a-slug"} {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once), "input %q", in)
	}
}
