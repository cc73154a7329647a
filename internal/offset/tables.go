package offset

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed tables.json
var defaultTablesJSON []byte

// Box is a latitude/longitude rectangle attributed to one country.
type Box struct {
	Country string  `json:"country"`
	MinLat  float64 `json:"minLat"`
	MaxLat  float64 `json:"maxLat"`
	MinLon  float64 `json:"minLon"`
	MaxLon  float64 `json:"maxLon"`
}

// Contains reports whether c lies inside the box, edges included.
func (b Box) Contains(c Coordinates) bool {
	return c.Latitude >= b.MinLat && c.Latitude <= b.MaxLat &&
		c.Longitude >= b.MinLon && c.Longitude <= b.MaxLon
}

// Tables holds the data the Resolver looks things up in.
// Treat a Tables value as immutable once handed to a Resolver.
type Tables struct {
	Default           int               `json:"default"`
	CountryOffsets    map[string]int    `json:"countryOffsets"`
	TimezoneCountries map[string]string `json:"timezoneCountries"`
	CityCountries     map[string]string `json:"cityCountries"`
	TimezoneOffsets   map[string]int    `json:"timezoneOffsets"`
	Boxes             []Box             `json:"boxes"`
}

// DefaultTables returns the built-in tables.
func DefaultTables() Tables {
	t, err := ParseTables(defaultTablesJSON)
	if err != nil {
		// The embedded document is part of the binary; failing here is a build defect.
		panic(fmt.Sprintf("offset: invalid embedded tables: %v", err))
	}
	return t
}

// LoadTables reads tables from a JSON file.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read offset tables: %w", err)
	}
	t, err := ParseTables(data)
	if err != nil {
		return Tables{}, fmt.Errorf("invalid offset tables %s: %w", path, err)
	}
	return t, nil
}

// ParseTables decodes and validates a tables document.
// Country keys are normalised to upper case.
func ParseTables(data []byte) (Tables, error) {
	var t Tables
	if err := json.Unmarshal(data, &t); err != nil {
		return Tables{}, err
	}
	if err := t.validate(); err != nil {
		return Tables{}, err
	}

	countries := make(map[string]int, len(t.CountryOffsets))
	for k, v := range t.CountryOffsets {
		countries[NormalizeCountry(k)] = v
	}
	t.CountryOffsets = countries

	for k, v := range t.TimezoneCountries {
		t.TimezoneCountries[k] = NormalizeCountry(v)
	}
	for k, v := range t.CityCountries {
		t.CityCountries[k] = NormalizeCountry(v)
	}
	for i := range t.Boxes {
		t.Boxes[i].Country = NormalizeCountry(t.Boxes[i].Country)
	}
	return t, nil
}

func (t Tables) validate() error {
	check := func(where string, v int) error {
		if v < MinOffset || v > MaxOffset {
			return fmt.Errorf("%s offset %d outside [%d, %d]", where, v, MinOffset, MaxOffset)
		}
		return nil
	}
	if err := check("default", t.Default); err != nil {
		return err
	}
	for k, v := range t.CountryOffsets {
		if err := check("country "+k, v); err != nil {
			return err
		}
	}
	for k, v := range t.TimezoneOffsets {
		if err := check("timezone "+k, v); err != nil {
			return err
		}
	}
	for i, b := range t.Boxes {
		if b.Country == "" {
			return fmt.Errorf("box %d has no country", i)
		}
		if b.MinLat > b.MaxLat || b.MinLon > b.MaxLon {
			return fmt.Errorf("box %d (%s) has inverted bounds", i, b.Country)
		}
	}
	return nil
}

// CountryAt returns the country whose box contains c, or "".
// Boxes are checked in table order.
func (t Tables) CountryAt(c Coordinates) string {
	for _, b := range t.Boxes {
		if b.Contains(c) {
			return b.Country
		}
	}
	return ""
}

// TimezoneCountry derives a country from an IANA timezone name, first from the
// timezone table and then by matching the last path segment against known cities
// ("Asia/Dhaka" -> "Dhaka").
func (t Tables) TimezoneCountry(timezone string) string {
	if timezone == "" {
		return ""
	}
	if cc, ok := t.TimezoneCountries[timezone]; ok {
		return cc
	}
	city := timezone
	if i := strings.LastIndex(timezone, "/"); i >= 0 {
		city = timezone[i+1:]
	}
	return t.CityCountries[city]
}
