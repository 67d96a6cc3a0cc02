package strategy

import (
	"time"

	"social-scheduler/internal/domain"
)

// Метки окон. Метка входит в ключ дедупликации черновиков.
const (
	LabelEarlyAnnouncement   = "Early Announcement"
	LabelInitialAnnouncement = "Initial Announcement"
	LabelWeekReminder        = "1 Week Reminder"
	LabelThreeDaysOut        = "3 Days Out"
	LabelDayBefore           = "Day Before"
	LabelDayOf               = "Day-Of Hype"
	LabelPostShowRecap       = "Post-Show Recap"
)

type windowRule struct {
	offsetDays int
	label      string
	priority   int
	platforms  []domain.Platform
	postTypes  []domain.PostType
	hint       string
}

var (
	allPlatforms   = domain.AllPlatforms()
	noTikTok       = []domain.Platform{domain.PlatformInstagram, domain.PlatformFacebook, domain.PlatformTwitter}
	postOnly       = []domain.PostType{domain.PostTypePost}
	postStory      = []domain.PostType{domain.PostTypePost, domain.PostTypeStory}
	postStoryReel  = []domain.PostType{domain.PostTypePost, domain.PostTypeStory, domain.PostTypeReel}
	postReel       = []domain.PostType{domain.PostTypePost, domain.PostTypeReel}
	windowSchedule = []windowRule{
		{-42, LabelEarlyAnnouncement, 7, allPlatforms, postOnly, "Save the date: first look at the show, lineup teaser"},
		{-14, LabelInitialAnnouncement, 5, allPlatforms, postOnly, "Full announcement with date, venue and ticket link"},
		{-7, LabelWeekReminder, 4, allPlatforms, postStory, "One week to go, push ticket sales"},
		{-3, LabelThreeDaysOut, 3, noTikTok, postStory, "Countdown, highlight the lineup"},
		{-1, LabelDayBefore, 2, allPlatforms, postStory, "Tomorrow night, last chance for tickets"},
		{0, LabelDayOf, 1, allPlatforms, postStoryReel, "Tonight! Doors, start time, energy"},
		{1, LabelPostShowRecap, 6, allPlatforms, postReel, "Thank the crowd, share highlights"},
	}
)

// PostingWindows возвращает окна публикации для мероприятия относительно now.
// Окно дня мероприятия включается, если его дата не раньше now, остальные
// только если дата строго позже now.
func PostingWindows(event domain.Event, now time.Time) []domain.PostingWindow {
	base := DayStart(event.Date)
	windows := make([]domain.PostingWindow, 0, len(windowSchedule))
	for _, rule := range windowSchedule {
		target := base.AddDate(0, 0, rule.offsetDays)
		if rule.offsetDays == 0 {
			if target.Before(now) {
				continue
			}
		} else if !target.After(now) {
			continue
		}
		windows = append(windows, domain.PostingWindow{
			Label:       rule.label,
			TargetDate:  target,
			Priority:    rule.priority,
			Platforms:   append([]domain.Platform(nil), rule.platforms...),
			PostTypes:   append([]domain.PostType(nil), rule.postTypes...),
			ContentHint: rule.hint,
		})
	}
	return windows
}

// DayStart обрезает время до полуночи в часовом поясе значения.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
