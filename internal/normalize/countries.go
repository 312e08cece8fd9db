// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import "strings"

// countryEntry is one row of the built-in ISO-3166 gazetteer.
type countryEntry struct {
	code   string
	name   string
	region string
}

// isoCountries is the canonical ISO-3166 alpha-3 table with a coarse
// region assignment used by the regional comparison query.
var isoCountries = []countryEntry{
	{"AFG", "Afghanistan", "Asia"},
	{"ALB", "Albania", "Europe"},
	{"DZA", "Algeria", "Africa"},
	{"AND", "Andorra", "Europe"},
	{"AGO", "Angola", "Africa"},
	{"ATG", "Antigua and Barbuda", "North America"},
	{"ARG", "Argentina", "South America"},
	{"ARM", "Armenia", "Asia"},
	{"AUS", "Australia", "Oceania"},
	{"AUT", "Austria", "Europe"},
	{"AZE", "Azerbaijan", "Asia"},
	{"BHS", "Bahamas", "North America"},
	{"BHR", "Bahrain", "Asia"},
	{"BGD", "Bangladesh", "Asia"},
	{"BRB", "Barbados", "North America"},
	{"BLR", "Belarus", "Europe"},
	{"BEL", "Belgium", "Europe"},
	{"BLZ", "Belize", "North America"},
	{"BEN", "Benin", "Africa"},
	{"BTN", "Bhutan", "Asia"},
	{"BOL", "Bolivia", "South America"},
	{"BIH", "Bosnia and Herzegovina", "Europe"},
	{"BWA", "Botswana", "Africa"},
	{"BRA", "Brazil", "South America"},
	{"BRN", "Brunei", "Asia"},
	{"BGR", "Bulgaria", "Europe"},
	{"BFA", "Burkina Faso", "Africa"},
	{"BDI", "Burundi", "Africa"},
	{"CPV", "Cabo Verde", "Africa"},
	{"KHM", "Cambodia", "Asia"},
	{"CMR", "Cameroon", "Africa"},
	{"CAN", "Canada", "North America"},
	{"CAF", "Central African Republic", "Africa"},
	{"TCD", "Chad", "Africa"},
	{"CHL", "Chile", "South America"},
	{"CHN", "China", "Asia"},
	{"COL", "Colombia", "South America"},
	{"COM", "Comoros", "Africa"},
	{"COG", "Congo", "Africa"},
	{"COD", "Democratic Republic of Congo", "Africa"},
	{"CRI", "Costa Rica", "North America"},
	{"CIV", "Cote d'Ivoire", "Africa"},
	{"HRV", "Croatia", "Europe"},
	{"CUB", "Cuba", "North America"},
	{"CYP", "Cyprus", "Europe"},
	{"CZE", "Czechia", "Europe"},
	{"DNK", "Denmark", "Europe"},
	{"DJI", "Djibouti", "Africa"},
	{"DMA", "Dominica", "North America"},
	{"DOM", "Dominican Republic", "North America"},
	{"ECU", "Ecuador", "South America"},
	{"EGY", "Egypt", "Africa"},
	{"SLV", "El Salvador", "North America"},
	{"GNQ", "Equatorial Guinea", "Africa"},
	{"ERI", "Eritrea", "Africa"},
	{"EST", "Estonia", "Europe"},
	{"SWZ", "Eswatini", "Africa"},
	{"ETH", "Ethiopia", "Africa"},
	{"FJI", "Fiji", "Oceania"},
	{"FIN", "Finland", "Europe"},
	{"FRA", "France", "Europe"},
	{"GAB", "Gabon", "Africa"},
	{"GMB", "Gambia", "Africa"},
	{"GEO", "Georgia", "Asia"},
	{"DEU", "Germany", "Europe"},
	{"GHA", "Ghana", "Africa"},
	{"GRC", "Greece", "Europe"},
	{"GRD", "Grenada", "North America"},
	{"GTM", "Guatemala", "North America"},
	{"GIN", "Guinea", "Africa"},
	{"GNB", "Guinea-Bissau", "Africa"},
	{"GUY", "Guyana", "South America"},
	{"HTI", "Haiti", "North America"},
	{"HND", "Honduras", "North America"},
	{"HUN", "Hungary", "Europe"},
	{"ISL", "Iceland", "Europe"},
	{"IND", "India", "Asia"},
	{"IDN", "Indonesia", "Asia"},
	{"IRN", "Iran", "Asia"},
	{"IRQ", "Iraq", "Asia"},
	{"IRL", "Ireland", "Europe"},
	{"ISR", "Israel", "Asia"},
	{"ITA", "Italy", "Europe"},
	{"JAM", "Jamaica", "North America"},
	{"JPN", "Japan", "Asia"},
	{"JOR", "Jordan", "Asia"},
	{"KAZ", "Kazakhstan", "Asia"},
	{"KEN", "Kenya", "Africa"},
	{"KIR", "Kiribati", "Oceania"},
	{"PRK", "North Korea", "Asia"},
	{"KOR", "South Korea", "Asia"},
	{"KWT", "Kuwait", "Asia"},
	{"KGZ", "Kyrgyzstan", "Asia"},
	{"LAO", "Laos", "Asia"},
	{"LVA", "Latvia", "Europe"},
	{"LBN", "Lebanon", "Asia"},
	{"LSO", "Lesotho", "Africa"},
	{"LBR", "Liberia", "Africa"},
	{"LBY", "Libya", "Africa"},
	{"LIE", "Liechtenstein", "Europe"},
	{"LTU", "Lithuania", "Europe"},
	{"LUX", "Luxembourg", "Europe"},
	{"MDG", "Madagascar", "Africa"},
	{"MWI", "Malawi", "Africa"},
	{"MYS", "Malaysia", "Asia"},
	{"MDV", "Maldives", "Asia"},
	{"MLI", "Mali", "Africa"},
	{"MLT", "Malta", "Europe"},
	{"MHL", "Marshall Islands", "Oceania"},
	{"MRT", "Mauritania", "Africa"},
	{"MUS", "Mauritius", "Africa"},
	{"MEX", "Mexico", "North America"},
	{"FSM", "Micronesia", "Oceania"},
	{"MDA", "Moldova", "Europe"},
	{"MCO", "Monaco", "Europe"},
	{"MNG", "Mongolia", "Asia"},
	{"MNE", "Montenegro", "Europe"},
	{"MAR", "Morocco", "Africa"},
	{"MOZ", "Mozambique", "Africa"},
	{"MMR", "Myanmar", "Asia"},
	{"NAM", "Namibia", "Africa"},
	{"NRU", "Nauru", "Oceania"},
	{"NPL", "Nepal", "Asia"},
	{"NLD", "Netherlands", "Europe"},
	{"NZL", "New Zealand", "Oceania"},
	{"NIC", "Nicaragua", "North America"},
	{"NER", "Niger", "Africa"},
	{"NGA", "Nigeria", "Africa"},
	{"MKD", "North Macedonia", "Europe"},
	{"NOR", "Norway", "Europe"},
	{"OMN", "Oman", "Asia"},
	{"PAK", "Pakistan", "Asia"},
	{"PLW", "Palau", "Oceania"},
	{"PSE", "Palestine", "Asia"},
	{"PAN", "Panama", "North America"},
	{"PNG", "Papua New Guinea", "Oceania"},
	{"PRY", "Paraguay", "South America"},
	{"PER", "Peru", "South America"},
	{"PHL", "Philippines", "Asia"},
	{"POL", "Poland", "Europe"},
	{"PRT", "Portugal", "Europe"},
	{"QAT", "Qatar", "Asia"},
	{"ROU", "Romania", "Europe"},
	{"RUS", "Russia", "Europe"},
	{"RWA", "Rwanda", "Africa"},
	{"KNA", "Saint Kitts and Nevis", "North America"},
	{"LCA", "Saint Lucia", "North America"},
	{"VCT", "Saint Vincent and the Grenadines", "North America"},
	{"WSM", "Samoa", "Oceania"},
	{"SMR", "San Marino", "Europe"},
	{"STP", "Sao Tome and Principe", "Africa"},
	{"SAU", "Saudi Arabia", "Asia"},
	{"SEN", "Senegal", "Africa"},
	{"SRB", "Serbia", "Europe"},
	{"SYC", "Seychelles", "Africa"},
	{"SLE", "Sierra Leone", "Africa"},
	{"SGP", "Singapore", "Asia"},
	{"SVK", "Slovakia", "Europe"},
	{"SVN", "Slovenia", "Europe"},
	{"SLB", "Solomon Islands", "Oceania"},
	{"SOM", "Somalia", "Africa"},
	{"ZAF", "South Africa", "Africa"},
	{"SSD", "South Sudan", "Africa"},
	{"ESP", "Spain", "Europe"},
	{"LKA", "Sri Lanka", "Asia"},
	{"SDN", "Sudan", "Africa"},
	{"SUR", "Suriname", "South America"},
	{"SWE", "Sweden", "Europe"},
	{"CHE", "Switzerland", "Europe"},
	{"SYR", "Syria", "Asia"},
	{"TWN", "Taiwan", "Asia"},
	{"TJK", "Tajikistan", "Asia"},
	{"TZA", "Tanzania", "Africa"},
	{"THA", "Thailand", "Asia"},
	{"TLS", "Timor-Leste", "Asia"},
	{"TGO", "Togo", "Africa"},
	{"TON", "Tonga", "Oceania"},
	{"TTO", "Trinidad and Tobago", "North America"},
	{"TUN", "Tunisia", "Africa"},
	{"TUR", "Turkey", "Asia"},
	{"TKM", "Turkmenistan", "Asia"},
	{"TUV", "Tuvalu", "Oceania"},
	{"UGA", "Uganda", "Africa"},
	{"UKR", "Ukraine", "Europe"},
	{"ARE", "United Arab Emirates", "Asia"},
	{"GBR", "United Kingdom", "Europe"},
	{"USA", "United States", "North America"},
	{"URY", "Uruguay", "South America"},
	{"UZB", "Uzbekistan", "Asia"},
	{"VUT", "Vanuatu", "Oceania"},
	{"VEN", "Venezuela", "South America"},
	{"VNM", "Vietnam", "Asia"},
	{"YEM", "Yemen", "Asia"},
	{"ZMB", "Zambia", "Africa"},
	{"ZWE", "Zimbabwe", "Africa"},
}

// countryAliases maps common alternate spellings to alpha-3 codes.
// Keys are in normalized form (see normalizeName).
var countryAliases = map[string]string{
	"ivory coast":                      "CIV",
	"cote divoire":                     "CIV",
	"democratic republic of the congo": "COD",
	"dr congo":                         "COD",
	"congo dem rep":                    "COD",
	"congo kinshasa":                   "COD",
	"congo rep":                        "COG",
	"congo brazzaville":                "COG",
	"republic of the congo":            "COG",
	"czech republic":                   "CZE",
	"swaziland":                        "SWZ",
	"cape verde":                       "CPV",
	"burma":                            "MMR",
	"east timor":                       "TLS",
	"timor leste":                      "TLS",
	"macedonia":                        "MKD",
	"republic of korea":                "KOR",
	"korea rep":                        "KOR",
	"korea dem peoples rep":            "PRK",
	"russian federation":               "RUS",
	"slovak republic":                  "SVK",
	"kyrgyz republic":                  "KGZ",
	"lao pdr":                          "LAO",
	"viet nam":                         "VNM",
	"iran islamic rep":                 "IRN",
	"egypt arab rep":                   "EGY",
	"syrian arab republic":             "SYR",
	"yemen rep":                        "YEM",
	"venezuela rb":                     "VEN",
	"gambia the":                       "GMB",
	"bahamas the":                      "BHS",
	"turkiye":                          "TUR",
	"united states of america":         "USA",
	"micronesia fed sts":               "FSM",
	"st kitts and nevis":               "KNA",
	"st lucia":                         "LCA",
	"st vincent and the grenadines":    "VCT",
	"brunei darussalam":                "BRN",
	"west bank and gaza":               "PSE",
	"bolivia plurinational state of":   "BOL",
	"tanzania united republic of":      "TZA",
	"moldova republic of":              "MDA",
}

// aggregateWords marks entity names that are rollups rather than
// countries (World Bank exports mix both into one file).
var aggregateWords = []string{
	"world", "income", "ida", "ibrd", "oecd", "region",
	"asia", "africa", "europe", "america", "caribbean", "pacific",
	"blend", "only", "total", "demographic", "fragile", "hipc",
	"small states", "least developed", "developing", "euro area",
	"union", "members",
}

// Resolver maps raw country strings onto ISO-3166 alpha-3 codes.
// The zero value is not usable; call NewResolver.
type Resolver struct {
	byCode map[string]countryEntry
	byName map[string]string
}

// NewResolver builds lookup indexes over the built-in gazetteer.
func NewResolver() *Resolver {
	r := &Resolver{
		byCode: make(map[string]countryEntry, len(isoCountries)),
		byName: make(map[string]string, len(isoCountries)+len(countryAliases)),
	}
	for _, c := range isoCountries {
		r.byCode[c.code] = c
		r.byName[normalizeName(c.name)] = c.code
	}
	for alias, code := range countryAliases {
		r.byName[alias] = code
	}
	return r
}

// ResolveCode validates an alpha-3 code, returning false for unknown codes.
func (r *Resolver) ResolveCode(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	_, ok := r.byCode[code]
	return code, ok
}

// ResolveName maps a raw country name to an alpha-3 code. Resolution is
// exact match on the normalized name, then the alias table, then a
// parenthetical-stripped retry ("Venezuela (Bolivarian Republic of)").
// Unresolvable names return false; callers drop and warn, never fail.
func (r *Resolver) ResolveName(name string) (string, bool) {
	n := normalizeName(name)
	if n == "" {
		return "", false
	}
	if code, ok := r.byName[n]; ok {
		return code, true
	}
	if i := strings.IndexByte(name, '('); i > 0 {
		if code, ok := r.byName[normalizeName(name[:i])]; ok {
			return code, true
		}
	}
	// Comma-inverted form: "Korea, Rep." style already handled by the
	// alias table after punctuation stripping; "Gambia, The" becomes
	// "gambia the". Last resort is a leading-"the" strip.
	if code, ok := r.byName[strings.TrimPrefix(n, "the ")]; ok {
		return code, true
	}
	return "", false
}

// Region returns the region for a known alpha-3 code.
func (r *Resolver) Region(code string) string {
	return r.byCode[code].region
}

// Name returns the canonical country name for a known alpha-3 code.
func (r *Resolver) Name(code string) string {
	return r.byCode[code].name
}

// Countries returns the full gazetteer as (code, name, region) triples
// in table order; the store seeds its countries table from this.
func (r *Resolver) Countries() [][3]string {
	out := make([][3]string, 0, len(isoCountries))
	for _, c := range isoCountries {
		out = append(out, [3]string{c.code, c.name, c.region})
	}
	return out
}

// IsAggregate reports whether an entity name is a statistical rollup
// (e.g. "World", "Low income", "Sub-Saharan Africa") rather than a
// country. Known country names are never aggregates.
func (r *Resolver) IsAggregate(name string) bool {
	n := normalizeName(name)
	if n == "" {
		return true
	}
	if _, ok := r.byName[n]; ok {
		return false
	}
	for _, w := range aggregateWords {
		if strings.Contains(n, w) {
			return true
		}
	}
	return false
}

// normalizeName lowercases and strips punctuation so that "Côte d'Ivoire",
// "Cote d'Ivoire" and "COTE DIVOIRE" all index identically.
func normalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == ',':
			b.WriteByte(' ')
		case r == 'ô':
			b.WriteByte('o')
		case r == 'é' || r == 'è':
			b.WriteByte('e')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
