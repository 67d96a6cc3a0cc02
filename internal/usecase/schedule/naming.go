package schedule

import (
	"regexp"
	"strings"
	"time"
)

const dayAbbr = `(?:Mon(?:day)?|Tue(?:sday)?|Tues|Wed(?:nesday)?|Weds|Thu(?:rsday)?|Thurs?|Fri(?:day)?|Sat(?:urday)?|Sun(?:day)?)`

var combinedDayRe = regexp.MustCompile(`(?i)\b` + dayAbbr + `\s*[/&-]\s*` + dayAbbr + `\b`)

var dayNames = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`(?i)\bFridays?\b|\bFri\b`), "Friday"},
	{regexp.MustCompile(`(?i)\bSaturdays?\b|\bSat\b`), "Saturday"},
	{regexp.MustCompile(`(?i)\bSundays?\b|\bSun\b`), "Sunday"},
	{regexp.MustCompile(`(?i)\bMondays?\b|\bMon\b`), "Monday"},
	{regexp.MustCompile(`(?i)\bTuesdays?\b|\bTues?\b`), "Tuesday"},
	{regexp.MustCompile(`(?i)\bWednesdays?\b|\bWeds?\b`), "Wednesday"},
	{regexp.MustCompile(`(?i)\bThursdays?\b|\bThurs?\b|\bThu\b`), "Thursday"},
}

// ShortName строит имя папки мероприятия: сочетания дней ("Fri/Sat") заменяются
// фактическим днём недели, сокращения раскрываются, "/" заменяется на "-".
func ShortName(name string, date time.Time) string {
	result := combinedDayRe.ReplaceAllLiteralString(name, date.Weekday().String())
	for _, d := range dayNames {
		result = d.re.ReplaceAllLiteralString(result, d.name)
	}
	result = strings.ReplaceAll(result, "/", "-")
	return strings.TrimSpace(result)
}

// EventFolderName возвращает "YYYY-MM-DD - <short name>".
func EventFolderName(name string, date time.Time) string {
	return date.Format("2006-01-02") + " - " + ShortName(name, date)
}
