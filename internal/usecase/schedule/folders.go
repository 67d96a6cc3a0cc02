package schedule

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"social-scheduler/internal/domain"
	"social-scheduler/internal/infra/metrics"
	"social-scheduler/internal/usecase/brand"
)

const (
	// FolderBatchSize: сколько папок мероприятий создаётся одновременно.
	FolderBatchSize = 10
	generalFolder   = "General"
)

var (
	eventSubfolders   = []string{"Raw Content", "Ready to Post", "Posted", "Show Footage", "Lineup"}
	generalSubfolders = []string{"Reels", "Feed Posts"}
)

type folderTask struct {
	event  domain.Event
	parent string
}

// provisionFolders создаёт структуру папок для всех будущих мероприятий с брендом.
// Ошибки только логируются. Возвращает число созданных папок мероприятий.
func (s *Service) provisionFolders(ctx context.Context, logger zerolog.Logger, events []domain.Event) int {
	var (
		tasks  []folderTask
		brands []string
		seen   = make(map[string]struct{})
	)
	for _, e := range events {
		b, ok := brand.Match(e.Name, e.OrganizationName)
		if !ok {
			continue
		}
		tasks = append(tasks, folderTask{event: e, parent: b.DriveFolder})
		if _, ok := seen[b.DriveFolder]; !ok {
			seen[b.DriveFolder] = struct{}{}
			brands = append(brands, b.DriveFolder)
		}
	}
	if len(tasks) == 0 {
		return 0
	}

	// Корневые папки брендов должны появиться раньше папок мероприятий.
	for _, name := range brands {
		if err := s.deps.Folders.CreateFolder(ctx, name, ""); err != nil {
			s.folderFailed(logger, err, name, "")
		}
	}

	created := 0
	for i := 0; i < len(tasks); i += FolderBatchSize {
		batch := tasks[i:min(i+FolderBatchSize, len(tasks))]
		done := make([]bool, len(batch))
		var g errgroup.Group
		g.SetLimit(FolderBatchSize)
		for j, t := range batch {
			j, t := j, t
			g.Go(func() error {
				if err := s.createEventFolder(ctx, logger, t); err != nil {
					s.folderFailed(logger, err, EventFolderName(t.event.Name, t.event.Date), t.parent)
					return nil
				}
				done[j] = true
				return nil
			})
		}
		_ = g.Wait()
		for _, ok := range done {
			if ok {
				created++
			}
		}
	}

	var g errgroup.Group
	for _, name := range brands {
		name := name
		g.Go(func() error {
			s.createGeneralFolders(ctx, logger, name)
			return nil
		})
	}
	_ = g.Wait()

	return created
}

// createEventFolder создаёт "<brand>/YYYY-MM-DD - <name>" и подпапки. Ошибки
// подпапок не влияют на результат.
func (s *Service) createEventFolder(ctx context.Context, logger zerolog.Logger, t folderTask) error {
	name := EventFolderName(t.event.Name, t.event.Date)
	if err := s.deps.Folders.CreateFolder(ctx, name, t.parent); err != nil {
		return err
	}
	path := t.parent + "/" + name
	var g errgroup.Group
	for _, sub := range eventSubfolders {
		sub := sub
		g.Go(func() error {
			if err := s.deps.Folders.CreateFolder(ctx, sub, path); err != nil {
				s.folderFailed(logger, err, sub, path)
			}
			return nil
		})
	}
	_ = g.Wait()
	return nil
}

func (s *Service) createGeneralFolders(ctx context.Context, logger zerolog.Logger, brandFolder string) {
	if err := s.deps.Folders.CreateFolder(ctx, generalFolder, brandFolder); err != nil {
		s.folderFailed(logger, err, generalFolder, brandFolder)
		return
	}
	path := brandFolder + "/" + generalFolder
	for _, sub := range generalSubfolders {
		if err := s.deps.Folders.CreateFolder(ctx, sub, path); err != nil {
			s.folderFailed(logger, err, sub, path)
		}
	}
}

func (s *Service) folderFailed(logger zerolog.Logger, err error, name, parent string) {
	metrics.FolderErrorsTotal.Inc()
	logger.Warn().Err(err).Str("folder", name).Str("parent", parent).Msg("schedule: не удалось создать папку")
}
