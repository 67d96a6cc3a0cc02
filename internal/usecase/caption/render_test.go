package caption

import (
	"strings"
	"testing"
	"time"

	"social-scheduler/internal/domain"
	"social-scheduler/internal/usecase/strategy"
)

func testEvent() domain.Event {
	return domain.Event{
		ID:        "evt-1",
		Name:      "iD Comedy Club Friday Show",
		Date:      time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC),
		StartTime: "19:30",
		Venue:     "The Attic",
		TicketURL: "https://tickets.example.com/friday",
		Lineup:    []string{"Alex", "Sam"},
	}
}

func testBrand() domain.BrandConfig {
	return domain.BrandConfig{
		Name:            "iD Comedy Club",
		DefaultHashtags: []string{"#one", "#two", "#three", "#four", "#five", "#six"},
	}
}

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	text := Render(strategy.LabelInitialAnnouncement, testEvent(), testBrand(), domain.PlatformFacebook)
	for _, want := range []string{"iD Comedy Club Friday Show", "Friday, 30 Oct", "7:30pm", "The Attic", "https://tickets.example.com/friday", "• Alex", "#six"} {
		if !strings.Contains(text, want) {
			t.Fatalf("ожидали %q в подписи:\n%s", want, text)
		}
	}
	if strings.Contains(text, "{") {
		t.Fatalf("остались незаполненные плейсхолдеры:\n%s", text)
	}
}

func TestRenderFallbacks(t *testing.T) {
	event := testEvent()
	event.Venue = ""
	event.StartTime = ""
	event.TicketURL = ""
	event.Lineup = nil
	text := Render("Unknown Window", event, testBrand(), domain.PlatformFacebook)
	if !strings.Contains(text, "JUST ANNOUNCED") {
		t.Fatalf("неизвестная метка должна использовать шаблон Initial Announcement:\n%s", text)
	}
	if !strings.Contains(text, fallbackVenue) || !strings.Contains(text, fallbackStartTime) {
		t.Fatalf("ожидали заглушки площадки и времени:\n%s", text)
	}
	if strings.Contains(text, "\n\n\n") {
		t.Fatalf("пустые строки должны схлопываться:\n%s", text)
	}
}

func TestRenderHashtagLimitPerPlatform(t *testing.T) {
	cases := map[domain.Platform]int{
		domain.PlatformTwitter:   3,
		domain.PlatformTikTok:    5,
		domain.PlatformInstagram: 6,
		domain.PlatformFacebook:  6,
	}
	for platform, want := range cases {
		text := Render(strategy.LabelDayOf, testEvent(), testBrand(), platform)
		if got := strings.Count(text, "#"); got != want {
			t.Fatalf("%s: ожидали %d хэштегов, получили %d", platform, want, got)
		}
	}
}

func TestRenderCaptionTagBeforeHashtags(t *testing.T) {
	brand := testBrand()
	brand.CaptionTag = "@magicmiccomedy"
	text := Render(strategy.LabelDayBefore, testEvent(), brand, domain.PlatformInstagram)
	tagIdx := strings.Index(text, brand.CaptionTag)
	hashIdx := strings.Index(text, "#one")
	if tagIdx < 0 || hashIdx < 0 || tagIdx > hashIdx {
		t.Fatalf("тег бренда должен стоять перед хэштегами:\n%s", text)
	}
}

func TestTruncateTwitter(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got := Truncate(long, domain.PlatformTwitter)
	if n := len([]rune(got)); n > twitterLimit {
		t.Fatalf("ожидали не больше %d символов, получили %d", twitterLimit, n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("ожидали многоточие в конце: %q", got)
	}
	if strings.HasSuffix(got, " ...") {
		t.Fatalf("обрезка должна идти по границе слова без пробела: %q", got)
	}
}

func TestTruncateTwitterPrefersNewline(t *testing.T) {
	text := strings.Repeat("a", 200) + "\n" + strings.Repeat("b ", 100)
	got := Truncate(text, domain.PlatformTwitter)
	if got != strings.Repeat("a", 200)+"..." {
		t.Fatalf("ожидали обрезку по переводу строки, получили %q", got)
	}
}

func TestTruncateTwitterHardCut(t *testing.T) {
	got := Truncate(strings.Repeat("x", 400), domain.PlatformTwitter)
	if len(got) != twitterLimit {
		t.Fatalf("ожидали ровно %d символов, получили %d", twitterLimit, len(got))
	}
}

func TestTruncateRenderedTwitterCaption(t *testing.T) {
	event := testEvent()
	event.Lineup = []string{strings.Repeat("Very Long Comedian Name ", 10), "Another Comedian", "Third Comedian"}
	text := Render(strategy.LabelInitialAnnouncement, event, testBrand(), domain.PlatformTwitter)
	if n := len([]rune(text)); n > twitterLimit {
		t.Fatalf("подпись для twitter длиннее лимита: %d", n)
	}
	if !strings.HasSuffix(text, "...") {
		t.Fatalf("ожидали многоточие: %q", text)
	}
}

func TestTruncateLongForm(t *testing.T) {
	text := strings.Repeat("я", 3000)
	if got := Truncate(text, domain.PlatformInstagram); len([]rune(got)) != longFormLimit {
		t.Fatalf("instagram должен обрезаться до %d", longFormLimit)
	}
	if got := Truncate(text, domain.PlatformFacebook); got != text {
		t.Fatalf("facebook не обрезается")
	}
}

func TestFormatStartTime(t *testing.T) {
	cases := map[string]string{
		"19:30":    "7:30pm",
		"09:00:00": "9:00am",
		"":         fallbackStartTime,
		"late":     fallbackStartTime,
	}
	for in, want := range cases {
		if got := FormatStartTime(in); got != want {
			t.Fatalf("%q: ожидали %q, получили %q", in, want, got)
		}
	}
}
