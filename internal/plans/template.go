package plans

import (
	"fmt"
	"strings"
	"time"
)

var weekdays = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// WeekTemplate generates the default content for a fresh plan: one heading
// per weekday labeled "<Weekday> - <Mon> <Day>" with an empty bullet, then a
// Weekly Goals block and a Notes & Reflections heading. Used by
// createWeeklyPlan when the caller supplies no content.
func WeekTemplate(weekStart time.Time) string {
	var b strings.Builder
	for i, day := range weekdays {
		date := weekStart.AddDate(0, 0, i)
		fmt.Fprintf(&b, "# %s - %s\n\n- \n\n", day, date.Format("Jan 2"))
	}
	b.WriteString("# Weekly Goals\n\n- \n\n")
	b.WriteString("# Notes & Reflections\n\n")
	return b.String()
}
