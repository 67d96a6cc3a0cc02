package brand

import (
	"strings"

	"social-scheduler/internal/domain"
)

var allPlatforms = domain.AllPlatforms()

// Порядок объявления важен: первый совпавший бренд выигрывает.
var registry = []domain.BrandConfig{
	{
		Name:            "Magic Mic Comedy",
		DisplayName:     "Magic Mic Comedy",
		EventPatterns:   []string{"magic mic"},
		OrgPatterns:     []string{"magic mic"},
		PostsAs:         "iD Comedy Club",
		CaptionTag:      "@magicmiccomedy",
		Platforms:       allPlatforms,
		DefaultHashtags: []string{"#MagicMicComedy", "#OpenMic", "#StandUpComedy", "#SydneyComedy", "#ComedyNight"},
		DriveFolder:     "Magic Mic Comedy",
	},
	{
		Name:            "iD Comedy Club",
		DisplayName:     "iD Comedy Club",
		EventPatterns:   []string{"id comedy"},
		OrgPatterns:     []string{"id comedy"},
		Platforms:       allPlatforms,
		DefaultHashtags: []string{"#iDComedyClub", "#StandUpComedy", "#SydneyComedy", "#ComedyNight", "#LiveComedy", "#SydneyNightlife"},
		DriveFolder:     "iD Comedy Club",
	},
	{
		Name:            "Rory Lowe",
		DisplayName:     "Rory Lowe",
		EventPatterns:   []string{"rory lowe", "lowe key funny"},
		OrgPatterns:     []string{"rory lowe"},
		Platforms:       []domain.Platform{domain.PlatformInstagram, domain.PlatformFacebook, domain.PlatformTikTok},
		DefaultHashtags: []string{"#RoryLowe", "#LoweKeyFunny", "#StandUpComedy", "#ComedyTour"},
		DriveFolder:     "Rory Lowe",
	},
}

// Match подбирает бренд для мероприятия. Для каждого бренда сначала проверяются
// шаблоны названия мероприятия, затем шаблоны организации.
func Match(eventName, organizationName string) (domain.BrandConfig, bool) {
	return matchIn(registry, eventName, organizationName)
}

func matchIn(brands []domain.BrandConfig, eventName, organizationName string) (domain.BrandConfig, bool) {
	event := strings.ToLower(eventName)
	org := strings.ToLower(organizationName)
	for _, b := range brands {
		if containsAny(event, b.EventPatterns) || containsAny(org, b.OrgPatterns) {
			return b, true
		}
	}
	return domain.BrandConfig{}, false
}

func containsAny(value string, patterns []string) bool {
	if value == "" {
		return false
	}
	for _, pattern := range patterns {
		p := strings.ToLower(strings.TrimSpace(pattern))
		if p != "" && strings.Contains(value, p) {
			return true
		}
	}
	return false
}
