package metricool

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"social-scheduler/internal/domain"
)

const cacheKeyPrefix = "besttimes:"

// CachedProvider кэширует таблицы лучшего времени между прогонами.
type CachedProvider struct {
	next  domain.BestTimesProvider
	cache domain.Cache
	ttl   time.Duration
	log   zerolog.Logger
}

var _ domain.BestTimesProvider = (*CachedProvider)(nil)

// NewCachedProvider оборачивает провайдера кэшем. Ошибки кэша не прерывают запрос.
func NewCachedProvider(next domain.BestTimesProvider, cache domain.Cache, ttl time.Duration, logger zerolog.Logger) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, ttl: ttl, log: logger}
}

// BestTimes отдаёт таблицу из кэша или запрашивает её у провайдера.
func (p *CachedProvider) BestTimes(ctx context.Context, platform domain.Platform) ([]domain.BestTimeSlot, error) {
	key := cacheKeyPrefix + string(platform)
	if raw, err := p.cache.Get(ctx, key); err == nil {
		var slots []domain.BestTimeSlot
		if err := json.Unmarshal(raw, &slots); err == nil && len(slots) > 0 {
			return slots, nil
		}
	}

	slots, err := p.next.BestTimes(ctx, platform)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return slots, nil
	}
	payload, err := json.Marshal(slots)
	if err != nil {
		return slots, nil
	}
	if err := p.cache.Set(ctx, key, payload, p.ttl); err != nil {
		p.log.Warn().Err(err).Str("platform", string(platform)).Msg("metricool: не удалось сохранить best times в кэш")
	}
	return slots, nil
}
