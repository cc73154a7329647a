package api

import (
	"fmt"
	"strconv"
	"strings"
)

// DateLayout is the DD-MM-YYYY layout the calendar service speaks.
const DateLayout = "02-01-2006"

// HijriDate is a normalised Hijri date. Year is kept as text because the
// service reports it as a string and no arithmetic is done on it.
type HijriDate struct {
	Day       int    `json:"day"`
	Month     int    `json:"month"`
	Year      string `json:"year"`
	MonthName string `json:"monthName"`
}

// Format returns the Hijri date as "DD MonthName YYYY AH".
func (h HijriDate) Format() string {
	if h.Day == 0 || h.MonthName == "" || h.Year == "" {
		return ""
	}
	return fmt.Sprintf("%d %s %s AH", h.Day, h.MonthName, h.Year)
}

// CalendarDay pairs one Gregorian date with its Hijri annotation.
type CalendarDay struct {
	HijriDay   int    `json:"hijriDay"`
	HijriMonth int    `json:"hijriMonth"`
	HijriYear  string `json:"hijriYear"`
	Gregorian  string `json:"gregorian"` // DD-MM-YYYY
	Weekday    string `json:"weekday"`
}

// envelope is the top-level shape of every calendar service response.
type envelope[T any] struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   T      `json:"data"`
}

// wireHijri mirrors the "hijri" object of the calendar service.
type wireHijri struct {
	Date  string `json:"date"` // e.g. "10-09-1447"
	Day   string `json:"day"`
	Month struct {
		Number int    `json:"number"`
		En     string `json:"en"` // e.g. "Ramaḍān"
		Days   int    `json:"days"`
	} `json:"month"`
	Year string `json:"year"`
}

// wireGregorian mirrors the "gregorian" object of the calendar service.
type wireGregorian struct {
	Date    string `json:"date"` // e.g. "28-02-2026"
	Weekday struct {
		En string `json:"en"`
	} `json:"weekday"`
}

// wireConversion is the data of a single-date conversion.
type wireConversion struct {
	Hijri     *wireHijri     `json:"hijri"`
	Gregorian *wireGregorian `json:"gregorian"`
}

// wireCalendarDay covers both calendar shapes: conversion calendars put hijri and
// gregorian at the top level, the timings calendar nests them under "date".
type wireCalendarDay struct {
	Hijri     *wireHijri     `json:"hijri"`
	Gregorian *wireGregorian `json:"gregorian"`
	Date      *struct {
		Hijri     *wireHijri     `json:"hijri"`
		Gregorian *wireGregorian `json:"gregorian"`
	} `json:"date"`
}

func (w wireHijri) normalize() (HijriDate, error) {
	day, err := strconv.Atoi(strings.TrimSpace(w.Day))
	if err != nil {
		return HijriDate{}, fmt.Errorf("%w: hijri day %q", ErrBadShape, w.Day)
	}
	if day < 1 || day > 30 {
		return HijriDate{}, fmt.Errorf("%w: hijri day %d out of range", ErrBadShape, day)
	}
	if w.Month.Number < 1 || w.Month.Number > 12 {
		return HijriDate{}, fmt.Errorf("%w: hijri month %d out of range", ErrBadShape, w.Month.Number)
	}
	if strings.TrimSpace(w.Year) == "" {
		return HijriDate{}, fmt.Errorf("%w: empty hijri year", ErrBadShape)
	}
	return HijriDate{
		Day:       day,
		Month:     w.Month.Number,
		Year:      strings.TrimSpace(w.Year),
		MonthName: w.Month.En,
	}, nil
}

func (w wireCalendarDay) normalize() (CalendarDay, error) {
	h, g := w.Hijri, w.Gregorian
	if w.Date != nil {
		if h == nil {
			h = w.Date.Hijri
		}
		if g == nil {
			g = w.Date.Gregorian
		}
	}
	if h == nil || g == nil {
		return CalendarDay{}, fmt.Errorf("%w: calendar day without hijri or gregorian", ErrBadShape)
	}
	hd, err := h.normalize()
	if err != nil {
		return CalendarDay{}, err
	}
	if g.Date == "" {
		return CalendarDay{}, fmt.Errorf("%w: calendar day without gregorian date", ErrBadShape)
	}
	return CalendarDay{
		HijriDay:   hd.Day,
		HijriMonth: hd.Month,
		HijriYear:  hd.Year,
		Gregorian:  g.Date,
		Weekday:    g.Weekday.En,
	}, nil
}
