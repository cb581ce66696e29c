package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNameForURL(t *testing.T) {
	cases := map[string]string{
		"Gujarat":             "gujarat",
		"Vadodara(Baroda)":    "vadodara-baroda",
		"Navsari Dist.":       "navsari-dist",
		"Jetpur(Dist.Rajkot)": "jetpur-distrajkot",
		"Ahmedabad(Chimanbhai Patal Market Vasana)": "ahmedabad-chimanbhai-patal-market-vasana",
		"  Madhya   Pradesh ":                       "madhya-pradesh",
		"Mahuva (Station Road)":                     "mahuva-station-road",
		"--Unjha--":                                 "unjha",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeNameForURL(in), in)
	}
}
