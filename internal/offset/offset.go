// Package offset resolves the signed day adjustment applied to the
// mathematical Hijri calendar so it matches local moon-sighting practice.
//
// Resolution is a pure lookup over immutable tables. The priority order is:
//
//  1. a configured override (clamped to [-2, 2])
//  2. coordinates that fall inside a configured bounding box
//  3. an explicit country code present in the country table
//  4. a country derived from the timezone (table, then city name heuristic)
//  5. the timezone itself in the timezone table
//  6. the table default
package offset

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MinOffset and MaxOffset bound every adjustment.
const (
	MinOffset = -2
	MaxOffset = 2
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Rung identifies which step of the priority order produced an offset.
type Rung int

const (
	RungDefault Rung = iota
	RungOverride
	RungCoordinates
	RungCountry
	RungTimezoneCountry
	RungTimezone
)

func (r Rung) String() string {
	switch r {
	case RungOverride:
		return "override"
	case RungCoordinates:
		return "coordinates"
	case RungCountry:
		return "country"
	case RungTimezoneCountry:
		return "timezone-country"
	case RungTimezone:
		return "timezone"
	default:
		return "default"
	}
}

// Resolution is the outcome of resolving one (timezone, country, coordinates) tuple.
type Resolution struct {
	Offset int
	// Country is the best-known ISO-2 country for the request, or "" when none
	// could be derived. It is reported even when the override decided the offset.
	Country  string
	Rung     Rung
	Override bool
}

// Resolver maps a location to an offset.
type Resolver struct {
	tables   Tables
	override *int
}

// NewResolver builds a Resolver over tables. rawOverride is the configured
// adjustment as text; empty or malformed values mean "no override".
func NewResolver(tables Tables, rawOverride string) *Resolver {
	r := &Resolver{tables: tables}
	if v, ok := ParseOverride(rawOverride); ok {
		r.override = &v
	}
	return r
}

// ParseOverride parses and clamps a configured adjustment.
func ParseOverride(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return Clamp(v), true
}

// Clamp limits v to [MinOffset, MaxOffset].
func Clamp(v int) int {
	if v < MinOffset {
		return MinOffset
	}
	if v > MaxOffset {
		return MaxOffset
	}
	return v
}

// HasOverride reports whether a configured override is active.
func (r *Resolver) HasOverride() bool {
	return r.override != nil
}

// Tables returns the lookup tables in use.
func (r *Resolver) Tables() Tables {
	return r.tables
}

// Resolve returns the effective offset for a request.
func (r *Resolver) Resolve(timezone, countryCode string, coords *Coordinates) Resolution {
	country := NormalizeCountry(countryCode)

	var boxCountry string
	if coords != nil {
		boxCountry = r.tables.CountryAt(*coords)
	}
	tzCountry := r.tables.TimezoneCountry(timezone)

	bestCountry := firstNonEmpty(boxCountry, country, tzCountry)

	if r.override != nil {
		return Resolution{Offset: *r.override, Country: bestCountry, Rung: RungOverride, Override: true}
	}

	if boxCountry != "" {
		return Resolution{Offset: Clamp(r.tables.CountryOffsets[boxCountry]), Country: boxCountry, Rung: RungCoordinates}
	}

	if v, ok := r.tables.CountryOffsets[country]; ok && country != "" {
		return Resolution{Offset: Clamp(v), Country: country, Rung: RungCountry}
	}

	if v, ok := r.tables.CountryOffsets[tzCountry]; ok && tzCountry != "" {
		return Resolution{Offset: Clamp(v), Country: tzCountry, Rung: RungTimezoneCountry}
	}

	if v, ok := r.tables.TimezoneOffsets[timezone]; ok {
		return Resolution{Offset: Clamp(v), Country: bestCountry, Rung: RungTimezone}
	}

	return Resolution{Offset: Clamp(r.tables.Default), Country: bestCountry, Rung: RungDefault}
}

// NormalizeCountry trims and uppercases an ISO-2 country code.
func NormalizeCountry(cc string) string {
	// A Caser carries state; one per call keeps this safe for concurrent use.
	return cases.Upper(language.Und).String(strings.TrimSpace(cc))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
