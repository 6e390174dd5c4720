package songsched

import (
	"context"
	"errors"
	"fmt"
	"log"

	"songsched/config"
	"songsched/features"
	"songsched/history"
	"songsched/internal/retry"
	"songsched/predict"
	"songsched/schedule"
	"songsched/storage"
	"songsched/youtube"
)

// Optimize runs the full pipeline with configuration from the environment:
// load the rankings catalog, build a predictor from the posting history,
// schedule every song, and persist the run (catalog writeback, run file,
// CSV export).
func Optimize(ctx context.Context) (*schedule.Result, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return OptimizeWithConfig(ctx, cfg)
}

// OptimizeWithConfig is Optimize with an explicit configuration.
func OptimizeWithConfig(ctx context.Context, cfg *config.Config) (*schedule.Result, error) {
	store := storage.NewRankingsStore(cfg.RankingsPath)
	songs, err := store.Songs()
	if err != nil {
		return nil, err
	}

	result, err := optimizeSongs(ctx, cfg, songs)
	if err != nil {
		return nil, err
	}

	if _, err := store.ApplySchedule(result); err != nil {
		return nil, err
	}
	if cfg.SchedulePath != "" {
		if _, err := storage.SaveRun(cfg.SchedulePath, result); err != nil {
			return nil, err
		}
	}
	if cfg.ScheduleCSVPath != "" {
		if err := storage.ExportScheduleCSV(cfg.ScheduleCSVPath, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// OptimizeSongs schedules an in-memory song list without reading or
// writing the catalog. The posting history still feeds the predictor when
// the configured database exists.
func OptimizeSongs(ctx context.Context, songs []schedule.Song) (*schedule.Result, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return optimizeSongs(ctx, cfg, songs)
}

func optimizeSongs(ctx context.Context, cfg *config.Config, songs []schedule.Song) (*schedule.Result, error) {
	predictor, err := historyPredictor(cfg)
	if err != nil {
		return nil, err
	}

	sched := schedule.NewScheduler(predictor, features.Build)
	sched.Constraints = cfg.Constraints()
	return sched.Optimize(ctx, songs)
}

// historyPredictor builds the baseline predictor from the posting-history
// profile, guarded by the configured prediction timeout. With no usable
// history the baseline reports not-ready and the scheduler falls back to
// its heuristic slots.
func historyPredictor(cfg *config.Config) (schedule.Predictor, error) {
	hist, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		return nil, fmt.Errorf("songsched: open history: %w", err)
	}
	defer hist.Close()

	profile, err := hist.BuildProfile()
	if err != nil {
		return nil, fmt.Errorf("songsched: build history profile: %w", err)
	}
	if profile.Samples == 0 {
		log.Printf("songsched: no posting history, predictions fall back to heuristics")
	}
	return predict.WithTimeout(profile.Baseline(), cfg.PredictTimeout), nil
}

// EnrichCatalog refreshes the rankings catalog's statistics from the
// YouTube Data API and saves the updated catalog. It returns the number of
// songs updated. A quota exhaustion mid-run still persists what was
// fetched so far.
func EnrichCatalog(ctx context.Context) (int, error) {
	cfg, err := config.Load()
	if err != nil {
		return 0, err
	}
	return EnrichCatalogWithConfig(ctx, cfg)
}

// EnrichCatalogWithConfig is EnrichCatalog with an explicit configuration.
func EnrichCatalogWithConfig(ctx context.Context, cfg *config.Config) (int, error) {
	if len(cfg.APIKeys) == 0 {
		return 0, fmt.Errorf("songsched: no api keys configured")
	}

	enricher, err := youtube.NewEnricher(cfg.APIKeys)
	if err != nil {
		return 0, err
	}
	enricher.RetryConfig = &retry.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		Multiplier:     cfg.BackoffMultiplier,
		JitterFraction: 0.2,
	}

	store := storage.NewRankingsStore(cfg.RankingsPath)
	rankings, err := store.Load()
	if err != nil {
		return 0, err
	}
	overall := rankings[storage.OverallRanking]
	if len(overall) == 0 {
		return 0, &storage.StorageError{Op: "read", Entity: "rankings", ID: storage.OverallRanking, Err: storage.ErrNotFound}
	}

	songs := make([]schedule.Song, 0, len(overall))
	for _, item := range overall {
		// Null catalog entries survive JSON decoding as nil items.
		if item == nil || item.SongName == "" {
			continue
		}
		songs = append(songs, item.Song())
	}
	if len(songs) == 0 {
		return 0, &storage.StorageError{Op: "read", Entity: "rankings", ID: storage.OverallRanking, Err: storage.ErrNotFound}
	}

	enriched, enrichErr := enricher.EnrichSongs(ctx, songs)
	if enrichErr != nil && !errors.Is(enrichErr, youtube.ErrKeysExhausted) {
		return 0, enrichErr
	}

	updated := 0
	byName := make(map[string]schedule.Song, len(enriched))
	for _, s := range enriched {
		byName[s.Name] = s
	}
	for _, items := range rankings {
		for _, item := range items {
			if item == nil {
				continue
			}
			s, ok := byName[item.SongName]
			if !ok {
				continue
			}
			unchanged := s.ViewCount == item.Metrics.ViewCount &&
				s.LikeCount == item.Metrics.LikeCount &&
				s.CommentCount == item.Metrics.CommentCount
			if unchanged {
				continue
			}
			item.Metrics.ViewCount = s.ViewCount
			item.Metrics.LikeCount = s.LikeCount
			item.Metrics.CommentCount = s.CommentCount
			if item.ReleaseDate == "" {
				item.ReleaseDate = s.ReleaseDate
			}
			updated++
		}
	}

	if err := store.Save(rankings); err != nil {
		return 0, err
	}
	if enrichErr != nil {
		log.Printf("songsched: enrichment stopped early: %v", enrichErr)
	}
	return updated, nil
}
