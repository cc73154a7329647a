package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smokyabdulrahman/ramadan-status/internal/logger"
)

// Announcement is the official "is today Ramadan" answer for a home region.
type Announcement struct {
	IsRamadan bool
	Hijri     HijriDate
	// TotalDays is the announced length of the month, 0 when not announced.
	TotalDays int
	// Start and End are DD-MM-YYYY, empty when not announced.
	Start, End string
}

type wireAnnouncement struct {
	IsRamadan *bool `json:"isRamadan"`
	Hijri     struct {
		Day       int    `json:"day"`
		Month     int    `json:"month"`
		Year      string `json:"year"`
		MonthName string `json:"monthName"`
	} `json:"hijri"`
	TotalDays int    `json:"totalDays"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// AnnouncementClient queries the official announcement service.
type AnnouncementClient struct {
	httpClient *http.Client
	BaseURL    string
	log        logger.Logger
}

// NewAnnouncementClient creates a client for baseURL. A nil httpClient gets a
// 10 second timeout.
func NewAnnouncementClient(baseURL string, httpClient *http.Client) *AnnouncementClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &AnnouncementClient{
		httpClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		log:        logger.Named("announcement"),
	}
}

// Check asks whether date is a day of Ramadan.
func (c *AnnouncementClient) Check(ctx context.Context, date time.Time) (Announcement, error) {
	params := url.Values{}
	params.Set("date", date.Format(DateLayout))
	reqURL := fmt.Sprintf("%s/ramadan/check?%s", c.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Announcement{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("url", c.BaseURL).Msg("announcement request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Announcement{}, fmt.Errorf("announcement request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Announcement{}, fmt.Errorf("%w: %d: %s", ErrUpstreamStatus, resp.StatusCode, string(body))
	}

	var w wireAnnouncement
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return Announcement{}, fmt.Errorf("%w: failed to decode announcement: %v", ErrBadShape, err)
	}
	if w.IsRamadan == nil {
		return Announcement{}, fmt.Errorf("%w: announcement without isRamadan", ErrBadShape)
	}
	if w.Hijri.Month < 1 || w.Hijri.Month > 12 || w.Hijri.Day < 1 || w.Hijri.Day > 30 {
		return Announcement{}, fmt.Errorf("%w: announcement hijri date %d/%d out of range", ErrBadShape, w.Hijri.Day, w.Hijri.Month)
	}

	return Announcement{
		IsRamadan: *w.IsRamadan,
		Hijri: HijriDate{
			Day:       w.Hijri.Day,
			Month:     w.Hijri.Month,
			Year:      strings.TrimSpace(w.Hijri.Year),
			MonthName: w.Hijri.MonthName,
		},
		TotalDays: w.TotalDays,
		Start:     w.Start,
		End:       w.End,
	}, nil
}
