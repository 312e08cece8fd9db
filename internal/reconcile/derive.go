// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reconcile

import "github.com/energyatlas/accessdb/pkg/types"

// DerivedSourceID marks observations synthesized during reconciliation
// rather than reported by a declared source.
const DerivedSourceID = "derived:access"

// DeriveAccess fills in ELECTRICITY_ACCESS_PCT for every (country, year)
// where the dataset holds POPULATION and PEOPLE_WITHOUT_ELECTRICITY but
// no source reported an access rate directly. Reported rates always win;
// derivation only fills gaps. Returns the number of observations added.
func DeriveAccess(ds *Dataset) int {
	added := 0
	for key, entry := range ds.Entries {
		if key.Indicator != types.IndicatorPopulation {
			continue
		}
		accessKey := types.RecordKey{CountryCode: key.CountryCode, Year: key.Year, Indicator: types.IndicatorAccessPct}
		if _, ok := ds.Entries[accessKey]; ok {
			continue
		}
		withoutKey := types.RecordKey{CountryCode: key.CountryCode, Year: key.Year, Indicator: types.IndicatorPeopleWithout}
		without, ok := ds.Entries[withoutKey]
		if !ok {
			continue
		}

		pop := entry.Value
		if pop <= 0 {
			continue
		}
		pct := (pop - without.Value) / pop * 100
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}

		ds.Entries[accessKey] = Entry{
			CanonicalRecord: types.CanonicalRecord{
				CountryCode: key.CountryCode,
				Year:        key.Year,
				Indicator:   types.IndicatorAccessPct,
				Value:       pct,
				SourceID:    DerivedSourceID,
			},
		}
		added++
	}
	return added
}
