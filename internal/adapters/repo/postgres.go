package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"social-scheduler/internal/domain"
	"social-scheduler/internal/infra/metrics"
)

const unnamedEvent = "Unnamed Event"

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

var (
	_ domain.EventRepo        = (*Postgres)(nil)
	_ domain.OrganizationRepo = (*Postgres)(nil)
	_ domain.DraftRepo        = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД. Даты мероприятий переводятся в loc.
func NewPostgres(pool *pgxpool.Pool, loc *time.Location) *Postgres {
	if loc == nil {
		loc = time.Local
	}
	return &Postgres{pool: pool, loc: loc}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// localDate превращает значение колонки date в полночь в рабочем часовом поясе.
func (p *Postgres) localDate(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, p.loc)
}

// ListFutureEvents возвращает мероприятия для создания папок.
func (p *Postgres) ListFutureEvents(ctx context.Context, from time.Time) ([]domain.Event, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id::text, COALESCE(name, title, $2), event_date, organization_id::text
FROM events
WHERE event_date >= $1
ORDER BY event_date ASC
`, from.Format("2006-01-02"), unnamedEvent)
	metrics.ObserveNetworkRequest("postgres", "events_list_future", "events", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			e     domain.Event
			date  time.Time
			orgID sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Name, &date, &orgID); err != nil {
			return nil, err
		}
		e.Date = p.localDate(date)
		e.OrganizationID = orgID.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListEventsBetween возвращает мероприятия окна генерации черновиков.
func (p *Postgres) ListEventsBetween(ctx context.Context, from, to time.Time, ids []string) ([]domain.Event, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var filter []string
	if len(ids) > 0 {
		filter = ids
	}

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id::text, COALESCE(name, title, $4), event_date, start_time::text, venue, ticket_url,
       hero_image_url, banner_url, description, organization_id::text,
       tickets_sold, capacity, status
FROM events
WHERE event_date >= $1 AND event_date <= $2
  AND ($3::text[] IS NULL OR id::text = ANY($3))
ORDER BY event_date ASC
`, from.Format("2006-01-02"), to.Format("2006-01-02"), filter, unnamedEvent)
	metrics.ObserveNetworkRequest("postgres", "events_list_window", "events", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			e                                      domain.Event
			date                                   time.Time
			startTime, venue, ticketURL, heroImage sql.NullString
			banner, description, orgID, status     sql.NullString
			ticketsSold, capacity                  sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Name, &date, &startTime, &venue, &ticketURL, &heroImage, &banner, &description, &orgID, &ticketsSold, &capacity, &status); err != nil {
			return nil, err
		}
		e.Date = p.localDate(date)
		e.StartTime = startTime.String
		e.Venue = venue.String
		e.TicketURL = ticketURL.String
		e.HeroImageURL = heroImage.String
		e.BannerURL = banner.String
		e.Description = description.String
		e.OrganizationID = orgID.String
		e.Status = status.String
		if ticketsSold.Valid {
			v := int(ticketsSold.Int64)
			e.TicketsSold = &v
		}
		if capacity.Valid {
			v := int(capacity.Int64)
			e.Capacity = &v
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// OrganizationNames возвращает названия организаций по id.
func (p *Postgres) OrganizationNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT id::text, name FROM organization_profiles WHERE id::text = ANY($1)`, ids)
	metrics.ObserveNetworkRequest("postgres", "organization_profiles_names", "organization_profiles", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   string
			name sql.NullString
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		if name.String != "" {
			names[id] = name.String
		}
	}
	return names, rows.Err()
}

// ExistingDraftKeys возвращает ключи уже сгенерированных черновиков.
func (p *Postgres) ExistingDraftKeys(ctx context.Context, eventIDs []string, statuses []domain.DraftStatus) (map[domain.DraftKey]struct{}, error) {
	keys := make(map[domain.DraftKey]struct{})
	if len(eventIDs) == 0 {
		return keys, nil
	}
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT event_id::text, window_label, platform, post_type
FROM social_content_drafts
WHERE event_id::text = ANY($1) AND status = ANY($2)
`, eventIDs, statusStrings(statuses))
	metrics.ObserveNetworkRequest("postgres", "drafts_existing_keys", "social_content_drafts", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			k                  domain.DraftKey
			platform, postType string
		)
		if err := rows.Scan(&k.EventID, &k.WindowLabel, &platform, &postType); err != nil {
			return nil, err
		}
		k.Platform = domain.Platform(platform)
		k.PostType = domain.PostType(postType)
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

// ScheduledTimes возвращает уже назначенное время публикаций.
func (p *Postgres) ScheduledTimes(ctx context.Context, statuses []domain.DraftStatus) ([]time.Time, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT scheduled_for FROM social_content_drafts
WHERE scheduled_for IS NOT NULL AND status = ANY($1)
`, statusStrings(statuses))
	metrics.ObserveNetworkRequest("postgres", "drafts_scheduled_times", "social_content_drafts", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// InsertDrafts вставляет пачку черновиков в одной транзакции.
func (p *Postgres) InsertDrafts(ctx context.Context, drafts []domain.DraftRow) error {
	if len(drafts) == 0 {
		return nil
	}
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	metrics.ObserveNetworkRequest("postgres", "begin_tx", "social_content_drafts", start, err)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, d := range drafts {
		var orgID *string
		if d.OrganizationID != "" {
			orgID = &d.OrganizationID
		}
		var media []string
		if len(d.MediaURLs) > 0 {
			media = d.MediaURLs
		}
		batch.Queue(`
INSERT INTO social_content_drafts
  (organization_id, event_id, window_label, platform, post_type, caption, hashtags, media_urls,
   scheduled_for, status, ai_model, ai_prompt_used)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`, orgID, d.EventID, d.WindowLabel, string(d.Platform), string(d.PostType), d.Caption, d.Hashtags, media,
			d.ScheduledFor.UTC(), string(d.Status), d.AIModel, d.AIPromptUsed)
	}
	start = time.Now()
	br := tx.SendBatch(ctx, batch)
	for range drafts {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			metrics.ObserveNetworkRequest("postgres", "drafts_insert_batch", "social_content_drafts", start, err)
			return err
		}
	}
	err = br.Close()
	metrics.ObserveNetworkRequest("postgres", "drafts_insert_batch", "social_content_drafts", start, err)
	if err != nil {
		return err
	}

	start = time.Now()
	err = tx.Commit(ctx)
	metrics.ObserveNetworkRequest("postgres", "commit", "social_content_drafts", start, err)
	return err
}

func statusStrings(statuses []domain.DraftStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
