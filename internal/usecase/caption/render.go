package caption

import (
	"strings"
	"time"

	"social-scheduler/internal/domain"
	"social-scheduler/internal/usecase/strategy"
)

const (
	twitterLimit  = 280
	longFormLimit = 2200
	ellipsis      = "..."
)

const (
	fallbackVenue     = "Venue TBA"
	fallbackStartTime = "Check event details"
)

// Render заполняет шаблон окна данными мероприятия и бренда и подгоняет текст
// под ограничения платформы.
func Render(windowLabel string, event domain.Event, brand domain.BrandConfig, platform domain.Platform) string {
	tmpl, ok := templates[windowLabel]
	if !ok {
		tmpl = templates[strategy.LabelInitialAnnouncement]
	}

	hashtags := BuildHashtags(brand.DefaultHashtags, maxHashtags(platform))
	if brand.CaptionTag != "" {
		hashtags = strings.TrimSpace(brand.CaptionTag + "\n" + hashtags)
	}

	venue := strings.TrimSpace(event.Venue)
	if venue == "" {
		venue = fallbackVenue
	}

	replacer := strings.NewReplacer(
		"{event_name}", event.Name,
		"{date}", FormatDate(event.Date),
		"{venue}", venue,
		"{ticket_link}", strings.TrimSpace(event.TicketURL),
		"{start_time}", FormatStartTime(event.StartTime),
		"{lineup}", lineupSection(event.Lineup),
		"{hashtags}", hashtags,
	)
	text := replacer.Replace(tmpl)
	if brand.CaptionTag != "" && !strings.Contains(text, brand.CaptionTag) {
		text = strings.TrimRight(text, "\n ") + "\n\n" + brand.CaptionTag
	}
	return Truncate(tidy(text), platform)
}

// BuildHashtags собирает хэштеги с # в одну строку, не больше max штук.
func BuildHashtags(tags []string, max int) string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimLeft(tag, "#"))
		if tag == "" {
			continue
		}
		if len(out) == max {
			break
		}
		out = append(out, "#"+tag)
	}
	return strings.Join(out, " ")
}

func maxHashtags(platform domain.Platform) int {
	switch platform {
	case domain.PlatformTwitter:
		return 3
	case domain.PlatformTikTok:
		return 5
	case domain.PlatformInstagram:
		return 15
	default:
		return 10
	}
}

// FormatDate возвращает дату вида "Friday, 28 Oct".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Monday, 2 Jan")
}

// FormatStartTime переводит "19:30" или "19:30:00" в "7:30pm".
func FormatStartTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallbackStartTime
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("3:04pm")
		}
	}
	return fallbackStartTime
}

func lineupSection(lineup []string) string {
	var b strings.Builder
	for _, name := range lineup {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString("Featuring:\n")
		}
		b.WriteString("• " + name + "\n")
	}
	return b.String()
}

// tidy убирает хвостовые пробелы и схлопывает пустые строки, оставшиеся от пустых подстановок.
func tidy(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Truncate обрезает текст под лимит платформы. Для twitter режет по последнему
// переводу строки, затем по пробелу, и добавляет многоточие.
func Truncate(text string, platform domain.Platform) string {
	limit := 0
	switch platform {
	case domain.PlatformTwitter:
		limit = twitterLimit
	case domain.PlatformTikTok, domain.PlatformInstagram:
		limit = longFormLimit
	}
	runes := []rune(text)
	if limit == 0 || len(runes) <= limit {
		return text
	}
	if platform != domain.PlatformTwitter {
		return string(runes[:limit])
	}

	head := string(runes[:limit-len(ellipsis)])
	if idx := strings.LastIndex(head, "\n"); idx > 0 {
		head = head[:idx]
	} else if idx := strings.LastIndex(head, " "); idx > 0 {
		head = head[:idx]
	}
	return strings.TrimRight(head, " \n") + ellipsis
}
