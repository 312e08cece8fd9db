// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveName(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name string
		want string
	}{
		{"Rwanda", "RWA"},
		{"rwanda", "RWA"},
		{"  Kenya  ", "KEN"},
		{"Ivory Coast", "CIV"},
		{"Cote d'Ivoire", "CIV"},
		{"Côte d'Ivoire", "CIV"},
		{"Congo, Dem. Rep.", "COD"},
		{"Democratic Republic of the Congo", "COD"},
		{"Congo, Rep.", "COG"},
		{"Czech Republic", "CZE"},
		{"Czechia", "CZE"},
		{"Korea, Rep.", "KOR"},
		{"Russian Federation", "RUS"},
		{"Viet Nam", "VNM"},
		{"Egypt, Arab Rep.", "EGY"},
		{"Gambia, The", "GMB"},
		{"United States of America", "USA"},
		{"Venezuela (Bolivarian Republic of)", "VEN"},
		{"Swaziland", "SWZ"},
		{"Cape Verde", "CPV"},
		{"Burma", "MMR"},
	}
	for _, tt := range tests {
		code, ok := r.ResolveName(tt.name)
		require.True(t, ok, "expected %q to resolve", tt.name)
		assert.Equal(t, tt.want, code, "name %q", tt.name)
	}

	for _, name := range []string{"Atlantis", "Wakanda", "", "   "} {
		_, ok := r.ResolveName(name)
		assert.False(t, ok, "expected %q not to resolve", name)
	}
}

func TestResolveCode(t *testing.T) {
	r := NewResolver()

	code, ok := r.ResolveCode("rwa")
	require.True(t, ok)
	assert.Equal(t, "RWA", code)

	_, ok = r.ResolveCode("ZZZ")
	assert.False(t, ok)
	_, ok = r.ResolveCode("WLD") // World Bank aggregate pseudo-code
	assert.False(t, ok)
}

func TestRegionAndName(t *testing.T) {
	r := NewResolver()
	assert.Equal(t, "Africa", r.Region("RWA"))
	assert.Equal(t, "Europe", r.Region("FRA"))
	assert.Equal(t, "Rwanda", r.Name("RWA"))
}

func TestIsAggregate(t *testing.T) {
	r := NewResolver()

	for _, name := range []string{
		"World", "Low income", "High income", "Sub-Saharan Africa",
		"OECD members", "IDA blend", "Euro area", "Small states",
	} {
		assert.True(t, r.IsAggregate(name), "%q should be an aggregate", name)
	}

	// Real countries never count as aggregates, even when their names
	// contain aggregate words.
	for _, name := range []string{"South Africa", "Central African Republic", "United States of America", "Rwanda"} {
		assert.False(t, r.IsAggregate(name), "%q should not be an aggregate", name)
	}
}

func TestCountriesSeedList(t *testing.T) {
	r := NewResolver()
	countries := r.Countries()
	require.NotEmpty(t, countries)

	seen := make(map[string]bool, len(countries))
	for _, c := range countries {
		assert.Len(t, c[0], 3)
		assert.NotEmpty(t, c[1])
		assert.NotEmpty(t, c[2])
		assert.False(t, seen[c[0]], "duplicate code %s", c[0])
		seen[c[0]] = true
	}
	assert.True(t, seen["RWA"])
	assert.True(t, seen["KEN"])
}
