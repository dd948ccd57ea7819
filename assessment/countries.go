// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package assessment

// Country is a selectable country in the assessment flow.
type Country struct {
	Code string
	Name string
	Flag string
}

// Origins is the catalog of supported origin countries.
var Origins = []Country{
	{Code: "IN", Name: "India", Flag: "🇮🇳"},
	{Code: "CN", Name: "China", Flag: "🇨🇳"},
	{Code: "PH", Name: "Philippines", Flag: "🇵🇭"},
	{Code: "MX", Name: "Mexico", Flag: "🇲🇽"},
	{Code: "BR", Name: "Brazil", Flag: "🇧🇷"},
	{Code: "NG", Name: "Nigeria", Flag: "🇳🇬"},
	{Code: "PK", Name: "Pakistan", Flag: "🇵🇰"},
	{Code: "BD", Name: "Bangladesh", Flag: "🇧🇩"},
}

// Destinations is the catalog of supported destination countries.
var Destinations = []Country{
	{Code: "CA", Name: "Canada", Flag: "🇨🇦"},
	{Code: "US", Name: "USA", Flag: "🇺🇸"},
	{Code: "AU", Name: "Australia", Flag: "🇦🇺"},
}

// OriginByCode looks up an origin country by its code. The second
// return is false for unknown codes.
func OriginByCode(code string) (Country, bool) {
	return byCode(Origins, code)
}

// DestinationByCode looks up a destination country by its code.
func DestinationByCode(code string) (Country, bool) {
	return byCode(Destinations, code)
}

func byCode(catalog []Country, code string) (Country, bool) {
	for _, country := range catalog {
		if country.Code == code {
			return country, true
		}
	}
	return Country{}, false
}
