package domain

import "errors"

var (
	// ErrMissingServiceKey: не задан сервисный ключ хранилища, прогон невозможен.
	ErrMissingServiceKey = errors.New("missing service role key")
	// ErrEventsQuery: не удалось выгрузить мероприятия или черновики.
	ErrEventsQuery = errors.New("failed to query events")
)
