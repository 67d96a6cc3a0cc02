package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"social-scheduler/internal/domain"
)

const maxBodyBytes = 1 << 20

// Handlers обслуживает запуск генератора по HTTP.
type Handlers struct {
	runner domain.ScheduleRunner
	queue  domain.RunQueue
	log    zerolog.Logger
	now    func() time.Time
}

// NewHandlers создаёт обработчики. queue может быть nil, тогда асинхронный
// запуск недоступен.
func NewHandlers(runner domain.ScheduleRunner, queue domain.RunQueue, logger zerolog.Logger) *Handlers {
	return &Handlers{runner: runner, queue: queue, log: logger, now: time.Now}
}

type runBody struct {
	EventIDs []string `json:"eventIds"`
}

// ErrorResponse описывает ошибку.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RunNow синхронно выполняет прогон и возвращает его итог.
func (h *Handlers) RunNow(w http.ResponseWriter, r *http.Request) {
	req := domain.RunRequest{
		ID:          uuid.NewString(),
		EventIDs:    decodeEventIDs(r),
		RequestedAt: h.now().UTC(),
		Cause:       domain.RunCauseManual,
	}
	result, err := h.runner.Run(r.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", req.ID).Str("request_id", RequestID(r)).Msg("http: прогон завершился ошибкой")
		WriteError(w, http.StatusInternalServerError, errorTitle(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// EnqueueRun ставит прогон в очередь.
func (h *Handlers) EnqueueRun(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		WriteError(w, http.StatusServiceUnavailable, "Run queue is not configured", "")
		return
	}
	req := domain.RunRequest{
		ID:          uuid.NewString(),
		EventIDs:    decodeEventIDs(r),
		RequestedAt: h.now().UTC(),
		Cause:       domain.RunCauseManual,
	}
	if err := h.queue.Enqueue(r.Context(), req); err != nil {
		h.log.Error().Err(err).Str("job_id", req.ID).Msg("http: не удалось поставить прогон в очередь")
		WriteError(w, http.StatusInternalServerError, "Failed to enqueue run", err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": req.ID})
}

// decodeEventIDs читает необязательный фильтр. Пустое или некорректное тело
// означает отсутствие фильтра.
func decodeEventIDs(r *http.Request) []string {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(data) == 0 {
		return nil
	}
	var body runBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil
	}
	return body.EventIDs
}

func errorTitle(err error) string {
	switch {
	case errors.Is(err, domain.ErrEventsQuery):
		return "Failed to query events"
	case errors.Is(err, domain.ErrMissingServiceKey):
		return "Missing service role key"
	default:
		return "Internal server error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError отправляет JSON с ошибкой.
func WriteError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Details: details})
}
