package domain

import (
	"strings"
	"time"
)

// Platform описывает социальную сеть, в которую публикуется пост.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
	PlatformTwitter   Platform = "twitter"
)

// AllPlatforms возвращает платформы в фиксированном порядке.
func AllPlatforms() []Platform {
	return []Platform{PlatformInstagram, PlatformFacebook, PlatformTikTok, PlatformTwitter}
}

// PostType описывает формат публикации.
type PostType string

const (
	PostTypePost  PostType = "post"
	PostTypeStory PostType = "story"
	PostTypeReel  PostType = "reel"
	PostTypeShort PostType = "short"
)

// ConsumesFeed сообщает, занимает ли пост место в ленте (учитывается в дневном лимите).
func (t PostType) ConsumesFeed() bool {
	return t == PostTypePost || t == PostTypeReel
}

// Event описывает мероприятие из внешнего хранилища.
type Event struct {
	ID               string
	Name             string
	Date             time.Time
	StartTime        string
	Venue            string
	TicketURL        string
	HeroImageURL     string
	BannerURL        string
	Description      string
	OrganizationID   string
	OrganizationName string
	Lineup           []string
	TicketsSold      *int
	Capacity         *int
	Status           string
}

// MediaURLs возвращает медиа по умолчанию: hero-изображение, иначе баннер.
func (e Event) MediaURLs() []string {
	switch {
	case e.HeroImageURL != "":
		return []string{e.HeroImageURL}
	case e.BannerURL != "":
		return []string{e.BannerURL}
	}
	return nil
}

// BrandConfig описывает бренд и его аккаунты.
type BrandConfig struct {
	Name            string
	DisplayName     string
	OrgPatterns     []string
	EventPatterns   []string
	PostsAs         string
	CaptionTag      string
	Platforms       []Platform
	DefaultHashtags []string
	DriveFolder     string
}

// Account возвращает бренд, от имени которого публикуются посты.
func (b BrandConfig) Account() string {
	if b.PostsAs != "" {
		return b.PostsAs
	}
	return b.Name
}

// HasPlatform проверяет, включена ли платформа у бренда.
func (b BrandConfig) HasPlatform(p Platform) bool {
	for _, candidate := range b.Platforms {
		if candidate == p {
			return true
		}
	}
	return false
}

// Hashtags возвращает хэштеги бренда без символа #.
func (b BrandConfig) Hashtags() []string {
	out := make([]string, 0, len(b.DefaultHashtags))
	for _, tag := range b.DefaultHashtags {
		out = append(out, strings.ReplaceAll(tag, "#", ""))
	}
	return out
}

// PostingWindow: повод для публикации относительно даты мероприятия.
type PostingWindow struct {
	Label       string
	TargetDate  time.Time
	Priority    int
	Platforms   []Platform
	PostTypes   []PostType
	ContentHint string
}

// DraftSlot: черновик поста без времени публикации.
type DraftSlot struct {
	EventID        string
	EventName      string
	WindowLabel    string
	Platform       Platform
	PostType       PostType
	Priority       int
	TargetDate     time.Time
	Caption        string
	Hashtags       []string
	MediaURLs      []string
	OrganizationID string
}

// Key возвращает ключ дедупликации черновика.
func (d DraftSlot) Key() DraftKey {
	return DraftKey{EventID: d.EventID, WindowLabel: d.WindowLabel, Platform: d.Platform, PostType: d.PostType}
}

// ScheduledSlot: черновик с назначенным временем публикации.
type ScheduledSlot struct {
	DraftSlot
	ScheduledFor time.Time
}

// BestTimeSlot: точка недельной таблицы вовлечённости платформы.
type BestTimeSlot struct {
	Day   time.Weekday `json:"day"`
	Hour  int          `json:"hour"`
	Score float64      `json:"score"`
}

// DraftKey идентифицирует уже сгенерированный черновик.
type DraftKey struct {
	EventID     string
	WindowLabel string
	Platform    Platform
	PostType    PostType
}

func (k DraftKey) String() string {
	return k.EventID + "|" + k.WindowLabel + "|" + string(k.Platform) + "|" + string(k.PostType)
}

// DraftStatus описывает статус черновика в social_content_drafts.
type DraftStatus string

const (
	DraftStatusDraft     DraftStatus = "draft"
	DraftStatusApproved  DraftStatus = "approved"
	DraftStatusScheduled DraftStatus = "scheduled"
	DraftStatusPublished DraftStatus = "published"
)

// DedupStatuses: статусы, черновики в которых блокируют повторную генерацию.
var DedupStatuses = []DraftStatus{DraftStatusDraft, DraftStatusApproved, DraftStatusScheduled, DraftStatusPublished}

// PendingStatuses: статусы, время которых учитывается при расчёте интервалов.
var PendingStatuses = []DraftStatus{DraftStatusDraft, DraftStatusApproved, DraftStatusScheduled}

// DraftRow: строка для вставки в social_content_drafts.
type DraftRow struct {
	OrganizationID string
	EventID        string
	WindowLabel    string
	Platform       Platform
	PostType       PostType
	Caption        string
	Hashtags       []string
	MediaURLs      []string
	ScheduledFor   time.Time
	Status         DraftStatus
	AIModel        string
	AIPromptUsed   string
}

// RunResult: итог прогона генератора расписания.
type RunResult struct {
	OK              bool     `json:"ok"`
	Message         string   `json:"message,omitempty"`
	EventsProcessed int      `json:"eventsProcessed"`
	DraftsCreated   int      `json:"draftsCreated"`
	DraftsSkipped   int      `json:"draftsSkipped"`
	DraftsDropped   int      `json:"draftsDropped"`
	FoldersCreated  int      `json:"foldersCreated"`
	Errors          []string `json:"errors"`
	Summary         string   `json:"summary,omitempty"`
}
