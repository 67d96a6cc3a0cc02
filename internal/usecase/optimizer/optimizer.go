// Package optimizer назначает черновикам конкретное время публикации.
//
// Алгоритм жадный: черновики обрабатываются по возрастанию приоритета, затем по
// дате окна, и каждый забирает лучший свободный слот. Состояние (занятые метки
// времени и дневные счётчики ленты) живёт только внутри одного вызова Optimize.
package optimizer

import (
	"sort"
	"time"

	"social-scheduler/internal/domain"
)

const (
	// MaxFeedPostsPerDay ограничивает число постов ленты (post, reel) в сутки.
	MaxFeedPostsPerDay = 2
	// MinGap: минимальный интервал между любыми двумя публикациями.
	MinGap = 3 * time.Hour
	// FallbackHour: час запасного слота в целевой день.
	FallbackHour = 12

	midweekBestTimeBonus = 5
	midweekDefaultBonus  = 10
)

var defaultSlots = []struct {
	hour  int
	score float64
}{
	{11, 80},
	{13, 75},
	{18, 70},
	{9, 65},
	{20, 60},
	{15, 55},
}

// Result содержит назначенные слоты и черновики, для которых слот не нашёлся.
type Result struct {
	Scheduled []domain.ScheduledSlot
	Dropped   []domain.DraftSlot
}

// state: накопитель одного прогона.
type state struct {
	used     []time.Time
	feedDays map[string]int
}

// Optimize назначает время публикации черновикам.
//
// bestTimes содержит недельные таблицы по платформам (может не содержать платформу),
// existing содержит уже запланированные публикации. Все календарные вычисления идут в loc.
func Optimize(drafts []domain.DraftSlot, bestTimes map[domain.Platform][]domain.BestTimeSlot, existing []time.Time, now time.Time, loc *time.Location) Result {
	if loc == nil {
		loc = time.Local
	}
	ordered := append([]domain.DraftSlot(nil), drafts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].TargetDate.Before(ordered[j].TargetDate)
	})

	st := &state{
		used:     append(make([]time.Time, 0, len(existing)+len(ordered)), existing...),
		feedDays: make(map[string]int),
	}

	res := Result{Scheduled: make([]domain.ScheduledSlot, 0, len(ordered))}
	for _, draft := range ordered {
		at, ok := st.findBestSlot(draft, bestTimes[draft.Platform], now, loc)
		if !ok {
			res.Dropped = append(res.Dropped, draft)
			continue
		}
		st.accept(at, draft.PostType, loc)
		res.Scheduled = append(res.Scheduled, domain.ScheduledSlot{DraftSlot: draft, ScheduledFor: at})
	}
	return res
}

func (st *state) findBestSlot(draft domain.DraftSlot, table []domain.BestTimeSlot, now time.Time, loc *time.Location) (time.Time, bool) {
	target := dayStart(draft.TargetDate.In(loc))
	for _, offset := range []int{0, -1, 1} {
		day := target.AddDate(0, 0, offset)
		for _, slot := range rankedSlots(table, day.Weekday()) {
			candidate := time.Date(day.Year(), day.Month(), day.Day(), slot.Hour, 0, 0, 0, loc)
			if st.fits(candidate, draft.PostType, now, loc) {
				return candidate, true
			}
		}
	}

	// Запасной слот не проверяет ни интервал, ни дневной лимит ленты: несколько
	// черновиков могут получить одно и то же время в полдень.
	fallback := time.Date(target.Year(), target.Month(), target.Day(), FallbackHour, 0, 0, 0, loc)
	if fallback.After(now) {
		return fallback, true
	}
	return time.Time{}, false
}

func (st *state) fits(candidate time.Time, postType domain.PostType, now time.Time, loc *time.Location) bool {
	if !candidate.After(now) {
		return false
	}
	if postType.ConsumesFeed() && st.feedDays[dayKey(candidate, loc)] >= MaxFeedPostsPerDay {
		return false
	}
	for _, used := range st.used {
		if absDuration(candidate.Sub(used)) < MinGap {
			return false
		}
	}
	return true
}

func (st *state) accept(at time.Time, postType domain.PostType, loc *time.Location) {
	st.used = append(st.used, at)
	if postType.ConsumesFeed() {
		st.feedDays[dayKey(at, loc)]++
	}
}

// rankedSlots возвращает слоты дня по убыванию оценки. Без данных провайдера
// используются слоты по умолчанию.
func rankedSlots(table []domain.BestTimeSlot, day time.Weekday) []domain.BestTimeSlot {
	var slots []domain.BestTimeSlot
	for _, s := range table {
		if s.Day != day {
			continue
		}
		if isMidweek(s.Day) {
			s.Score += midweekBestTimeBonus
		}
		slots = append(slots, s)
	}
	if len(slots) == 0 {
		slots = make([]domain.BestTimeSlot, 0, len(defaultSlots))
		for _, d := range defaultSlots {
			score := d.score
			if isMidweek(day) {
				score += midweekDefaultBonus
			}
			slots = append(slots, domain.BestTimeSlot{Day: day, Hour: d.hour, Score: score})
		}
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Score > slots[j].Score })
	return slots
}

func isMidweek(day time.Weekday) bool {
	return day == time.Tuesday || day == time.Wednesday || day == time.Thursday
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
