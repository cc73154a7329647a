// Package api talks to the external Hijri calendar services: the Al Adhan
// mathematical calendar endpoints and the optional official announcement
// endpoint. Every call issues exactly one GET and never retries; callers own
// the fallback policy.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/smokyabdulrahman/ramadan-status/internal/logger"
)

// DefaultBaseURL is the Al Adhan v1 API.
const DefaultBaseURL = "https://api.aladhan.com/v1"

// calendarMethod selects the algorithmic Hijri calendar on the Al Adhan side.
const calendarMethod = "MATHEMATICAL"

// Failure classes returned (wrapped) by both clients.
var (
	ErrUpstreamStatus = errors.New("upstream returned non-2xx status")
	ErrUpstreamCode   = errors.New("upstream reported failure")
	ErrBadShape       = errors.New("unexpected upstream payload")
)

// Client communicates with the Al Adhan calendar conversion API.
type Client struct {
	httpClient *http.Client
	// BaseURL is the API base URL. Exported for testing with httptest.
	BaseURL string
	log     logger.Logger
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL and a nil
// httpClient gets a 10 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		BaseURL:    baseURL,
		log:        logger.Named("api"),
	}
}

// GregorianToHijri converts one Gregorian date using the mathematical method
// shifted by offset days.
func (c *Client) GregorianToHijri(ctx context.Context, date time.Time, offset int) (HijriDate, error) {
	endpoint := fmt.Sprintf("%s/gToH/%s", c.BaseURL, date.Format(DateLayout))

	var resp envelope[wireConversion]
	if err := c.get(ctx, endpoint, adjustmentParams(offset), &resp); err != nil {
		return HijriDate{}, err
	}
	if resp.Data.Hijri == nil {
		return HijriDate{}, fmt.Errorf("%w: conversion without hijri date", ErrBadShape)
	}
	return resp.Data.Hijri.normalize()
}

// HijriMonthCalendar returns the Gregorian dates of every day of one Hijri month.
// The result may be empty.
func (c *Client) HijriMonthCalendar(ctx context.Context, hijriYear string, hijriMonth, offset int) ([]CalendarDay, error) {
	endpoint := fmt.Sprintf("%s/hToGCalendar/%d/%s", c.BaseURL, hijriMonth, url.PathEscape(hijriYear))

	var resp envelope[[]wireCalendarDay]
	if err := c.get(ctx, endpoint, adjustmentParams(offset), &resp); err != nil {
		return nil, err
	}
	return normalizeDays(resp.Data)
}

// MonthQuery carries the optional location of a Gregorian month lookup.
type MonthQuery struct {
	Latitude, Longitude *float64
	Timezone            string
	Offset              int
}

// GregorianMonthCalendar returns one Gregorian month with Hijri annotations.
// With coordinates the timings calendar is used so the service applies the
// location's own day boundary; otherwise the plain conversion calendar.
func (c *Client) GregorianMonthCalendar(ctx context.Context, year int, month time.Month, q MonthQuery) ([]CalendarDay, error) {
	params := adjustmentParams(q.Offset)

	var endpoint string
	if q.Latitude != nil && q.Longitude != nil {
		endpoint = fmt.Sprintf("%s/calendar/%d/%d", c.BaseURL, year, int(month))
		params.Set("latitude", strconv.FormatFloat(*q.Latitude, 'f', 6, 64))
		params.Set("longitude", strconv.FormatFloat(*q.Longitude, 'f', 6, 64))
		if q.Timezone != "" {
			params.Set("timezonestring", q.Timezone)
		}
	} else {
		endpoint = fmt.Sprintf("%s/gToHCalendar/%d/%d", c.BaseURL, int(month), year)
	}

	var resp envelope[[]wireCalendarDay]
	if err := c.get(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	return normalizeDays(resp.Data)
}

func adjustmentParams(offset int) url.Values {
	params := url.Values{}
	params.Set("calendarMethod", calendarMethod)
	params.Set("adjustment", strconv.Itoa(offset))
	return params
}

func normalizeDays(in []wireCalendarDay) ([]CalendarDay, error) {
	days := make([]CalendarDay, 0, len(in))
	for _, w := range in {
		d, err := w.normalize()
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}

// get performs the GET and decodes an envelope into out, checking both the
// HTTP status and the code embedded in the body.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{ code() (int, string) }) error {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("url", endpoint).Msg("calendar request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %d: %s", ErrUpstreamStatus, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode API response: %v", ErrBadShape, err)
	}

	if code, status := out.code(); code != 200 {
		return fmt.Errorf("%w: code=%d status=%s", ErrUpstreamCode, code, status)
	}
	return nil
}

func (e *envelope[T]) code() (int, string) { return e.Code, e.Status }
