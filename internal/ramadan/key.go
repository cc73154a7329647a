package ramadan

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smokyabdulrahman/ramadan-status/internal/offset"
)

// CacheKey identifies one status per location per local day.
func CacheKey(q Query, res offset.Resolution, local time.Time) string {
	country := res.Country
	if country == "" {
		country = "NA"
	}
	coords := "NA"
	if q.Coordinates != nil {
		coords = fmt.Sprintf("%.2f,%.2f", q.Coordinates.Latitude, q.Coordinates.Longitude)
	}
	override := "auto"
	if res.Override {
		override = "override"
	}
	return strings.Join([]string{
		q.Timezone,
		country,
		coords,
		strconv.Itoa(res.Offset),
		override,
		local.Format("2006-01-02"),
	}, "|")
}
