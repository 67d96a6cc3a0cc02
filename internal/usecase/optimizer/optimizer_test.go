package optimizer

import (
	"testing"
	"time"

	"social-scheduler/internal/domain"
)

var loc = time.FixedZone("AEDT", 11*60*60)

func at(day, hour int) time.Time {
	return time.Date(2026, 10, day, hour, 0, 0, 0, loc)
}

func draft(label string, platform domain.Platform, postType domain.PostType, priority, day int) domain.DraftSlot {
	return domain.DraftSlot{
		EventID:     "evt-1",
		WindowLabel: label,
		Platform:    platform,
		PostType:    postType,
		Priority:    priority,
		TargetDate:  at(day, 0),
	}
}

// 2026-10-18 воскресенье, 2026-10-22 четверг.
var sundayMorning = at(18, 8)

func TestOptimizeDailyFeedCap(t *testing.T) {
	drafts := []domain.DraftSlot{
		draft("a", domain.PlatformInstagram, domain.PostTypePost, 3, 22),
		draft("b", domain.PlatformFacebook, domain.PostTypeReel, 3, 22),
		draft("c", domain.PlatformTwitter, domain.PostTypePost, 3, 22),
	}
	res := Optimize(drafts, nil, nil, sundayMorning, loc)
	if len(res.Scheduled) != 3 {
		t.Fatalf("ожидали 3 слота, получили %d", len(res.Scheduled))
	}
	onTarget := 0
	for _, s := range res.Scheduled {
		if s.ScheduledFor.Day() == 22 {
			onTarget++
		}
	}
	if onTarget != 2 {
		t.Fatalf("ожидали не больше 2 постов ленты в целевой день, получили %d", onTarget)
	}
	want := []time.Time{at(22, 11), at(22, 18), at(21, 11)}
	for i, s := range res.Scheduled {
		if !s.ScheduledFor.Equal(want[i]) {
			t.Fatalf("слот %d: ожидали %v, получили %v", i, want[i], s.ScheduledFor)
		}
	}
}

func TestOptimizeStoriesIgnoreFeedCap(t *testing.T) {
	drafts := []domain.DraftSlot{
		draft("a", domain.PlatformInstagram, domain.PostTypePost, 1, 22),
		draft("b", domain.PlatformInstagram, domain.PostTypePost, 2, 22),
		draft("c", domain.PlatformInstagram, domain.PostTypeStory, 3, 22),
	}
	res := Optimize(drafts, nil, nil, sundayMorning, loc)
	if len(res.Scheduled) != 3 {
		t.Fatalf("ожидали 3 слота, получили %d", len(res.Scheduled))
	}
	if got := res.Scheduled[2].ScheduledFor; !got.Equal(at(22, 15)) {
		t.Fatalf("сторис должна встать в целевой день в 15:00, получили %v", got)
	}
}

func TestOptimizeMinGapSkipsConflictingSlot(t *testing.T) {
	table := map[domain.Platform][]domain.BestTimeSlot{
		domain.PlatformInstagram: {{Day: time.Thursday, Hour: 18, Score: 90}},
	}
	drafts := []domain.DraftSlot{
		draft("a", domain.PlatformInstagram, domain.PostTypeStory, 1, 22),
		draft("b", domain.PlatformInstagram, domain.PostTypeStory, 2, 22),
	}
	res := Optimize(drafts, table, nil, sundayMorning, loc)
	if len(res.Scheduled) != 2 {
		t.Fatalf("ожидали 2 слота, получили %d", len(res.Scheduled))
	}
	first, second := res.Scheduled[0].ScheduledFor, res.Scheduled[1].ScheduledFor
	if !first.Equal(at(22, 18)) {
		t.Fatalf("первый черновик должен занять 18:00, получили %v", first)
	}
	if absDuration(second.Sub(first)) < MinGap {
		t.Fatalf("интервал между публикациями меньше %v: %v и %v", MinGap, first, second)
	}
	if !second.Equal(at(21, 11)) {
		t.Fatalf("второй черновик должен уйти на предыдущий день в 11:00, получили %v", second)
	}
}

func TestOptimizeRespectsExistingTimestamps(t *testing.T) {
	table := map[domain.Platform][]domain.BestTimeSlot{
		domain.PlatformFacebook: {{Day: time.Thursday, Hour: 18, Score: 90}},
	}
	existing := []time.Time{at(22, 17)}
	res := Optimize([]domain.DraftSlot{draft("a", domain.PlatformFacebook, domain.PostTypePost, 1, 22)}, table, existing, sundayMorning, loc)
	if len(res.Scheduled) != 1 {
		t.Fatalf("ожидали 1 слот")
	}
	if got := res.Scheduled[0].ScheduledFor; got.Equal(at(22, 18)) {
		t.Fatalf("слот в 18:00 конфликтует с уже запланированной публикацией в 17:00")
	}
}

func TestOptimizePriorityClaimsBestSlotFirst(t *testing.T) {
	drafts := []domain.DraftSlot{
		draft("later", domain.PlatformInstagram, domain.PostTypePost, 5, 22),
		draft("urgent", domain.PlatformInstagram, domain.PostTypePost, 1, 22),
	}
	res := Optimize(drafts, nil, nil, sundayMorning, loc)
	if res.Scheduled[0].WindowLabel != "urgent" {
		t.Fatalf("первым должен обрабатываться черновик с меньшим приоритетом")
	}
	if !res.Scheduled[0].ScheduledFor.Equal(at(22, 11)) {
		t.Fatalf("срочный черновик должен получить лучший слот, получили %v", res.Scheduled[0].ScheduledFor)
	}
}

func TestOptimizeEarlierTargetDateBreaksTies(t *testing.T) {
	drafts := []domain.DraftSlot{
		draft("friday", domain.PlatformInstagram, domain.PostTypePost, 2, 23),
		draft("thursday", domain.PlatformInstagram, domain.PostTypePost, 2, 22),
	}
	res := Optimize(drafts, nil, nil, sundayMorning, loc)
	if res.Scheduled[0].WindowLabel != "thursday" {
		t.Fatalf("при равном приоритете раньше идёт более ранняя дата")
	}
}

func TestOptimizeUsesProviderTable(t *testing.T) {
	table := map[domain.Platform][]domain.BestTimeSlot{
		domain.PlatformTikTok: {
			{Day: time.Saturday, Hour: 21, Score: 10},
			{Day: time.Saturday, Hour: 8, Score: 5},
		},
	}
	res := Optimize([]domain.DraftSlot{draft("a", domain.PlatformTikTok, domain.PostTypeReel, 1, 24)}, table, nil, sundayMorning, loc)
	if got := res.Scheduled[0].ScheduledFor; !got.Equal(at(24, 21)) {
		t.Fatalf("ожидали слот провайдера 21:00, получили %v", got)
	}
}

func TestOptimizeFallsBackToNoon(t *testing.T) {
	var existing []time.Time
	for h := 0; h < 24*3; h += 2 {
		existing = append(existing, at(21, 0).Add(time.Duration(h)*time.Hour))
	}
	res := Optimize([]domain.DraftSlot{draft("a", domain.PlatformInstagram, domain.PostTypePost, 1, 22)}, nil, existing, sundayMorning, loc)
	if len(res.Scheduled) != 1 {
		t.Fatalf("ожидали запасной слот")
	}
	if got := res.Scheduled[0].ScheduledFor; !got.Equal(at(22, FallbackHour)) {
		t.Fatalf("ожидали 12:00 целевого дня, получили %v", got)
	}
}

func TestOptimizeNoonFallbackStacksDrafts(t *testing.T) {
	var existing []time.Time
	for h := 0; h < 24*3; h += 2 {
		existing = append(existing, at(21, 0).Add(time.Duration(h)*time.Hour))
	}
	drafts := []domain.DraftSlot{
		draft("a", domain.PlatformInstagram, domain.PostTypePost, 1, 22),
		draft("b", domain.PlatformFacebook, domain.PostTypeReel, 1, 22),
		draft("c", domain.PlatformTwitter, domain.PostTypePost, 1, 22),
	}
	res := Optimize(drafts, nil, existing, sundayMorning, loc)
	if len(res.Scheduled) != 3 || len(res.Dropped) != 0 {
		t.Fatalf("ожидали 3 слота без отброшенных, получили %d/%d", len(res.Scheduled), len(res.Dropped))
	}
	// запасной слот игнорирует интервал и лимит ленты
	for _, s := range res.Scheduled {
		if !s.ScheduledFor.Equal(at(22, FallbackHour)) {
			t.Fatalf("ожидали 12:00 целевого дня, получили %v", s.ScheduledFor)
		}
	}
	if len(res.Scheduled) <= MaxFeedPostsPerDay {
		t.Fatalf("запасной слот должен превышать дневной лимит ленты")
	}
}

func TestOptimizeDropsUnplaceableDraft(t *testing.T) {
	now := at(23, 23)
	drafts := []domain.DraftSlot{
		draft("past", domain.PlatformInstagram, domain.PostTypePost, 1, 21),
		draft("future", domain.PlatformInstagram, domain.PostTypePost, 2, 28),
	}
	res := Optimize(drafts, nil, nil, now, loc)
	if len(res.Scheduled) != 1 || res.Scheduled[0].WindowLabel != "future" {
		t.Fatalf("ожидали только будущий черновик, получили %d", len(res.Scheduled))
	}
	if len(res.Dropped) != 1 || res.Dropped[0].WindowLabel != "past" {
		t.Fatalf("ожидали отброшенный черновик past")
	}
}

func TestOptimizeOnlySchedulesInFuture(t *testing.T) {
	now := at(22, 12)
	res := Optimize([]domain.DraftSlot{draft("a", domain.PlatformInstagram, domain.PostTypeStory, 1, 22)}, nil, nil, now, loc)
	if got := res.Scheduled[0].ScheduledFor; !got.After(now) {
		t.Fatalf("слот должен быть в будущем: %v", got)
	}
	if got := res.Scheduled[0].ScheduledFor; !got.Equal(at(22, 13)) {
		t.Fatalf("ожидали 13:00, получили %v", got)
	}
}

func TestOptimizeIsDeterministic(t *testing.T) {
	drafts := []domain.DraftSlot{
		draft("a", domain.PlatformInstagram, domain.PostTypePost, 3, 22),
		draft("b", domain.PlatformFacebook, domain.PostTypeStory, 1, 23),
		draft("c", domain.PlatformTwitter, domain.PostTypePost, 3, 22),
		draft("d", domain.PlatformTikTok, domain.PostTypeReel, 2, 24),
	}
	first := Optimize(drafts, nil, nil, sundayMorning, loc)
	second := Optimize(drafts, nil, nil, sundayMorning, loc)
	if len(first.Scheduled) != len(second.Scheduled) {
		t.Fatalf("разное число слотов при одинаковых входных данных")
	}
	for i := range first.Scheduled {
		if !first.Scheduled[i].ScheduledFor.Equal(second.Scheduled[i].ScheduledFor) {
			t.Fatalf("слот %d отличается между прогонами", i)
		}
	}
	if drafts[0].WindowLabel != "a" {
		t.Fatalf("входной срез не должен переупорядочиваться")
	}
}

func TestRankedSlotsMidweekBonus(t *testing.T) {
	slots := rankedSlots(nil, time.Tuesday)
	if slots[0].Hour != 11 || slots[0].Score != 90 {
		t.Fatalf("ожидали 11:00 с оценкой 90, получили %d:00 %.0f", slots[0].Hour, slots[0].Score)
	}
	slots = rankedSlots(nil, time.Saturday)
	if slots[0].Score != 80 {
		t.Fatalf("в выходные бонуса нет, получили %.0f", slots[0].Score)
	}
	table := []domain.BestTimeSlot{{Day: time.Wednesday, Hour: 10, Score: 50}, {Day: time.Wednesday, Hour: 19, Score: 70}}
	slots = rankedSlots(table, time.Wednesday)
	if slots[0].Hour != 19 || slots[0].Score != 75 {
		t.Fatalf("ожидали 19:00 с оценкой 75, получили %d:00 %.0f", slots[0].Hour, slots[0].Score)
	}
	if table[1].Score != 70 {
		t.Fatalf("исходная таблица не должна меняться")
	}
}
