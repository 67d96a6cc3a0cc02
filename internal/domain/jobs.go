package domain

import (
	"context"
	"time"
)

// RunCause описывает источник запроса на генерацию расписания.
type RunCause string

const (
	// RunCauseManual: прогон запрошен через API.
	RunCauseManual RunCause = "manual"
	// RunCauseScheduled: прогон запланирован по таймеру.
	RunCauseScheduled RunCause = "scheduled"
)

// RunRequest описывает запрос на прогон генератора.
type RunRequest struct {
	ID          string    `json:"job_id,omitempty"`
	EventIDs    []string  `json:"event_ids,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
	Cause       RunCause  `json:"cause"`
}

// RunQueue описывает очередь запросов на прогон.
type RunQueue interface {
	Enqueue(ctx context.Context, req RunRequest) error
	Pop(ctx context.Context) (RunRequest, error)
}
