// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

// Package geo provides static country, continent, and timezone reference
// tables used by the mismatch heuristics. The tables are intentionally
// conservative: a lookup that fails returns ok=false and the caller abstains,
// so an incomplete table only reduces how often a heuristic fires, while an
// incorrect entry would produce silent false positives.
package geo

// Continent names use the six-continent model plus Antarctica.
const (
	ContinentNorthAmerica = "North America"
	ContinentSouthAmerica = "South America"
	ContinentEurope       = "Europe"
	ContinentAfrica       = "Africa"
	ContinentAsia         = "Asia"
	ContinentOceania      = "Oceania"
	ContinentAntarctica   = "Antarctica"
)

// countryContinent maps ISO 3166-1 alpha-2 country codes to continents.
var countryContinent = map[string]string{
	// North America
	"US": ContinentNorthAmerica,
	"CA": ContinentNorthAmerica,
	"MX": ContinentNorthAmerica,
	"GT": ContinentNorthAmerica,
	"CU": ContinentNorthAmerica,
	"DO": ContinentNorthAmerica,
	"HN": ContinentNorthAmerica,
	"NI": ContinentNorthAmerica,
	"CR": ContinentNorthAmerica,
	"PA": ContinentNorthAmerica,
	"JM": ContinentNorthAmerica,
	"HT": ContinentNorthAmerica,
	"SV": ContinentNorthAmerica,
	"BZ": ContinentNorthAmerica,
	"BS": ContinentNorthAmerica,
	"TT": ContinentNorthAmerica,
	"BB": ContinentNorthAmerica,
	"PR": ContinentNorthAmerica,
	"GL": ContinentNorthAmerica,

	// South America
	"BR": ContinentSouthAmerica,
	"AR": ContinentSouthAmerica,
	"CL": ContinentSouthAmerica,
	"CO": ContinentSouthAmerica,
	"PE": ContinentSouthAmerica,
	"VE": ContinentSouthAmerica,
	"EC": ContinentSouthAmerica,
	"BO": ContinentSouthAmerica,
	"PY": ContinentSouthAmerica,
	"UY": ContinentSouthAmerica,
	"GY": ContinentSouthAmerica,
	"SR": ContinentSouthAmerica,
	"GF": ContinentSouthAmerica,

	// Europe
	"GB": ContinentEurope,
	"IE": ContinentEurope,
	"FR": ContinentEurope,
	"DE": ContinentEurope,
	"ES": ContinentEurope,
	"PT": ContinentEurope,
	"IT": ContinentEurope,
	"NL": ContinentEurope,
	"BE": ContinentEurope,
	"LU": ContinentEurope,
	"CH": ContinentEurope,
	"AT": ContinentEurope,
	"DK": ContinentEurope,
	"NO": ContinentEurope,
	"SE": ContinentEurope,
	"FI": ContinentEurope,
	"IS": ContinentEurope,
	"PL": ContinentEurope,
	"CZ": ContinentEurope,
	"SK": ContinentEurope,
	"HU": ContinentEurope,
	"RO": ContinentEurope,
	"BG": ContinentEurope,
	"GR": ContinentEurope,
	"HR": ContinentEurope,
	"SI": ContinentEurope,
	"RS": ContinentEurope,
	"BA": ContinentEurope,
	"MK": ContinentEurope,
	"AL": ContinentEurope,
	"ME": ContinentEurope,
	"EE": ContinentEurope,
	"LV": ContinentEurope,
	"LT": ContinentEurope,
	"BY": ContinentEurope,
	"UA": ContinentEurope,
	"MD": ContinentEurope,
	"RU": ContinentEurope,
	"MT": ContinentEurope,
	"CY": ContinentEurope,

	// Africa
	"EG": ContinentAfrica,
	"MA": ContinentAfrica,
	"DZ": ContinentAfrica,
	"TN": ContinentAfrica,
	"LY": ContinentAfrica,
	"NG": ContinentAfrica,
	"GH": ContinentAfrica,
	"SN": ContinentAfrica,
	"CI": ContinentAfrica,
	"CM": ContinentAfrica,
	"ET": ContinentAfrica,
	"KE": ContinentAfrica,
	"TZ": ContinentAfrica,
	"UG": ContinentAfrica,
	"ZA": ContinentAfrica,
	"ZW": ContinentAfrica,
	"ZM": ContinentAfrica,
	"MZ": ContinentAfrica,
	"AO": ContinentAfrica,
	"CD": ContinentAfrica,
	"SD": ContinentAfrica,
	"MU": ContinentAfrica,
	"MG": ContinentAfrica,

	// Asia
	"CN": ContinentAsia,
	"JP": ContinentAsia,
	"KR": ContinentAsia,
	"KP": ContinentAsia,
	"TW": ContinentAsia,
	"HK": ContinentAsia,
	"MO": ContinentAsia,
	"MN": ContinentAsia,
	"IN": ContinentAsia,
	"PK": ContinentAsia,
	"BD": ContinentAsia,
	"LK": ContinentAsia,
	"NP": ContinentAsia,
	"TH": ContinentAsia,
	"VN": ContinentAsia,
	"KH": ContinentAsia,
	"LA": ContinentAsia,
	"MM": ContinentAsia,
	"MY": ContinentAsia,
	"SG": ContinentAsia,
	"ID": ContinentAsia,
	"PH": ContinentAsia,
	"BN": ContinentAsia,
	"KZ": ContinentAsia,
	"UZ": ContinentAsia,
	"KG": ContinentAsia,
	"TJ": ContinentAsia,
	"TM": ContinentAsia,
	"AF": ContinentAsia,
	"IR": ContinentAsia,
	"IQ": ContinentAsia,
	"SY": ContinentAsia,
	"LB": ContinentAsia,
	"JO": ContinentAsia,
	"IL": ContinentAsia,
	"PS": ContinentAsia,
	"SA": ContinentAsia,
	"AE": ContinentAsia,
	"QA": ContinentAsia,
	"KW": ContinentAsia,
	"BH": ContinentAsia,
	"OM": ContinentAsia,
	"YE": ContinentAsia,
	"TR": ContinentAsia,
	"GE": ContinentAsia,
	"AM": ContinentAsia,
	"AZ": ContinentAsia,

	// Oceania
	"AU": ContinentOceania,
	"NZ": ContinentOceania,
	"FJ": ContinentOceania,
	"PG": ContinentOceania,
	"NC": ContinentOceania,
	"PF": ContinentOceania,
	"GU": ContinentOceania,
	"WS": ContinentOceania,
	"TO": ContinentOceania,
	"VU": ContinentOceania,

	// Antarctica
	"AQ": ContinentAntarctica,
}

// countryTimezone maps country codes to one representative IANA zone.
// It is a fallback used only when no direct timezone data is available,
// so one approximate zone per country is acceptable: the value feeds a
// mismatch heuristic, never a hard fact. Countries spanning many zones
// (US, RU, BR, AU, CA) use their most populous zone.
var countryTimezone = map[string]string{
	"US": "America/New_York",
	"CA": "America/Toronto",
	"MX": "America/Mexico_City",
	"GT": "America/Guatemala",
	"CU": "America/Havana",
	"DO": "America/Santo_Domingo",
	"HN": "America/Tegucigalpa",
	"NI": "America/Managua",
	"CR": "America/Costa_Rica",
	"PA": "America/Panama",
	"JM": "America/Jamaica",
	"HT": "America/Port-au-Prince",
	"SV": "America/El_Salvador",
	"BZ": "America/Belize",
	"BS": "America/Nassau",
	"TT": "America/Port_of_Spain",
	"BB": "America/Barbados",
	"PR": "America/Puerto_Rico",
	"GL": "America/Nuuk",

	"BR": "America/Sao_Paulo",
	"AR": "America/Argentina/Buenos_Aires",
	"CL": "America/Santiago",
	"CO": "America/Bogota",
	"PE": "America/Lima",
	"VE": "America/Caracas",
	"EC": "America/Guayaquil",
	"BO": "America/La_Paz",
	"PY": "America/Asuncion",
	"UY": "America/Montevideo",
	"GY": "America/Guyana",
	"SR": "America/Paramaribo",
	"GF": "America/Cayenne",

	"GB": "Europe/London",
	"IE": "Europe/Dublin",
	"FR": "Europe/Paris",
	"DE": "Europe/Berlin",
	"ES": "Europe/Madrid",
	"PT": "Europe/Lisbon",
	"IT": "Europe/Rome",
	"NL": "Europe/Amsterdam",
	"BE": "Europe/Brussels",
	"LU": "Europe/Luxembourg",
	"CH": "Europe/Zurich",
	"AT": "Europe/Vienna",
	"DK": "Europe/Copenhagen",
	"NO": "Europe/Oslo",
	"SE": "Europe/Stockholm",
	"FI": "Europe/Helsinki",
	"IS": "Atlantic/Reykjavik",
	"PL": "Europe/Warsaw",
	"CZ": "Europe/Prague",
	"SK": "Europe/Bratislava",
	"HU": "Europe/Budapest",
	"RO": "Europe/Bucharest",
	"BG": "Europe/Sofia",
	"GR": "Europe/Athens",
	"HR": "Europe/Zagreb",
	"SI": "Europe/Ljubljana",
	"RS": "Europe/Belgrade",
	"BA": "Europe/Sarajevo",
	"MK": "Europe/Skopje",
	"AL": "Europe/Tirane",
	"ME": "Europe/Podgorica",
	"EE": "Europe/Tallinn",
	"LV": "Europe/Riga",
	"LT": "Europe/Vilnius",
	"BY": "Europe/Minsk",
	"UA": "Europe/Kyiv",
	"MD": "Europe/Chisinau",
	"RU": "Europe/Moscow",
	"MT": "Europe/Malta",
	"CY": "Asia/Nicosia",

	"EG": "Africa/Cairo",
	"MA": "Africa/Casablanca",
	"DZ": "Africa/Algiers",
	"TN": "Africa/Tunis",
	"LY": "Africa/Tripoli",
	"NG": "Africa/Lagos",
	"GH": "Africa/Accra",
	"SN": "Africa/Dakar",
	"CI": "Africa/Abidjan",
	"CM": "Africa/Douala",
	"ET": "Africa/Addis_Ababa",
	"KE": "Africa/Nairobi",
	"TZ": "Africa/Dar_es_Salaam",
	"UG": "Africa/Kampala",
	"ZA": "Africa/Johannesburg",
	"ZW": "Africa/Harare",
	"ZM": "Africa/Lusaka",
	"MZ": "Africa/Maputo",
	"AO": "Africa/Luanda",
	"CD": "Africa/Kinshasa",
	"SD": "Africa/Khartoum",
	"MU": "Indian/Mauritius",
	"MG": "Indian/Antananarivo",

	"CN": "Asia/Shanghai",
	"JP": "Asia/Tokyo",
	"KR": "Asia/Seoul",
	"KP": "Asia/Pyongyang",
	"TW": "Asia/Taipei",
	"HK": "Asia/Hong_Kong",
	"MO": "Asia/Macau",
	"MN": "Asia/Ulaanbaatar",
	"IN": "Asia/Kolkata",
	"PK": "Asia/Karachi",
	"BD": "Asia/Dhaka",
	"LK": "Asia/Colombo",
	"NP": "Asia/Kathmandu",
	"TH": "Asia/Bangkok",
	"VN": "Asia/Ho_Chi_Minh",
	"KH": "Asia/Phnom_Penh",
	"LA": "Asia/Vientiane",
	"MM": "Asia/Yangon",
	"MY": "Asia/Kuala_Lumpur",
	"SG": "Asia/Singapore",
	"ID": "Asia/Jakarta",
	"PH": "Asia/Manila",
	"BN": "Asia/Brunei",
	"KZ": "Asia/Almaty",
	"UZ": "Asia/Tashkent",
	"KG": "Asia/Bishkek",
	"TJ": "Asia/Dushanbe",
	"TM": "Asia/Ashgabat",
	"AF": "Asia/Kabul",
	"IR": "Asia/Tehran",
	"IQ": "Asia/Baghdad",
	"SY": "Asia/Damascus",
	"LB": "Asia/Beirut",
	"JO": "Asia/Amman",
	"IL": "Asia/Jerusalem",
	"PS": "Asia/Gaza",
	"SA": "Asia/Riyadh",
	"AE": "Asia/Dubai",
	"QA": "Asia/Qatar",
	"KW": "Asia/Kuwait",
	"BH": "Asia/Bahrain",
	"OM": "Asia/Muscat",
	"YE": "Asia/Aden",
	"TR": "Europe/Istanbul",
	"GE": "Asia/Tbilisi",
	"AM": "Asia/Yerevan",
	"AZ": "Asia/Baku",

	"AU": "Australia/Sydney",
	"NZ": "Pacific/Auckland",
	"FJ": "Pacific/Fiji",
	"PG": "Pacific/Port_Moresby",
	"NC": "Pacific/Noumea",
	"PF": "Pacific/Tahiti",
	"GU": "Pacific/Guam",
	"WS": "Pacific/Apia",
	"TO": "Pacific/Tongatapu",
	"VU": "Pacific/Efate",

	"AQ": "Antarctica/McMurdo",
}

// timezoneContinent is a reverse index built from countryTimezone at init,
// extended with zones for the largest secondary cities so that common browser
// timezones resolve even when they are not a country's representative zone.
var timezoneContinent = map[string]string{
	"America/Los_Angeles":  ContinentNorthAmerica,
	"America/Chicago":      ContinentNorthAmerica,
	"America/Denver":       ContinentNorthAmerica,
	"America/Phoenix":      ContinentNorthAmerica,
	"America/Anchorage":    ContinentNorthAmerica,
	"America/Vancouver":    ContinentNorthAmerica,
	"America/Edmonton":     ContinentNorthAmerica,
	"America/Winnipeg":     ContinentNorthAmerica,
	"America/Halifax":      ContinentNorthAmerica,
	"America/Tijuana":      ContinentNorthAmerica,
	"America/Monterrey":    ContinentNorthAmerica,
	"Pacific/Honolulu":     ContinentNorthAmerica,
	"America/Manaus":       ContinentSouthAmerica,
	"America/Fortaleza":    ContinentSouthAmerica,
	"America/Recife":       ContinentSouthAmerica,
	"America/Cordoba":      ContinentSouthAmerica,
	"America/Medellin":     ContinentSouthAmerica,
	"Europe/Kiev":          ContinentEurope, // legacy alias of Europe/Kyiv
	"Europe/Istanbul":      ContinentEurope, // transcontinental; zone itself is European
	"Asia/Nicosia":         ContinentAsia,   // transcontinental; zone itself is Asian
	"Europe/Saratov":       ContinentEurope,
	"Europe/Samara":        ContinentEurope,
	"Asia/Novosibirsk":     ContinentAsia,
	"Asia/Yekaterinburg":   ContinentAsia,
	"Asia/Vladivostok":     ContinentAsia,
	"Asia/Chongqing":       ContinentAsia,
	"Asia/Urumqi":          ContinentAsia,
	"Australia/Melbourne":  ContinentOceania,
	"Australia/Brisbane":   ContinentOceania,
	"Australia/Perth":      ContinentOceania,
	"Australia/Adelaide":   ContinentOceania,
	"Antarctica/Palmer":    ContinentAntarctica,
	"Antarctica/Rothera":   ContinentAntarctica,
	"Antarctica/Davis":     ContinentAntarctica,
}

//nolint:gochecknoinits // builds the reverse timezone index from the country tables
func init() {
	for code, zone := range countryTimezone {
		if _, exists := timezoneContinent[zone]; exists {
			continue
		}
		if continent, ok := countryContinent[code]; ok {
			timezoneContinent[zone] = continent
		}
	}
}
