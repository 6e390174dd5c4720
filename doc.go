// Package songsched optimizes the posting schedule of a YouTube music channel.
//
// It ranks a catalog of candidate songs by posting priority, searches for
// the (date, hour) slots a view predictor scores highest, enforces spacing
// and per-day posting constraints, and reports any residual violations.
//
// Overview
//
// songsched provides high-level convenience functions for the most common
// operations:
//
//   - Optimize: Run the full pipeline over the configured rankings catalog
//   - OptimizeSongs: Schedule an in-memory song list
//   - EnrichCatalog: Refresh catalog statistics from the YouTube Data API
//
// Quick Start
//
// Optimize the configured catalog:
//
//	ctx := context.Background()
//	result, err := songsched.Optimize(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, e := range result.Entries {
//		fmt.Printf("%s  %s\n", e.PostAt.Format("2006-01-02 15:04"), e.Name)
//	}
//
// Schedule songs without touching the catalog on disk:
//
//	songs := []schedule.Song{{Name: "NIGHT DANCER", ViewCount: 120000}}
//	result, err := songsched.OptimizeSongs(ctx, songs)
//
// Configuration
//
// songsched uses a configuration system that loads settings from multiple
// sources:
//
//   1. Environment variables (highest priority)
//   2. Config file (songsched.json or ~/.config/songsched/songsched.json)
//   3. Default values (lowest priority)
//
// Environment variables:
//
//   - SONGSCHED_RANKINGS_PATH: Location of the rankings.json catalog
//   - SONGSCHED_SCHEDULE_PATH: Where optimization runs are saved
//   - SONGSCHED_HISTORY_DB_PATH: Posting-history sqlite database
//   - SONGSCHED_API_KEYS: Comma-separated YouTube Data API keys
//   - SONGSCHED_MIN_INTERVAL_HOURS: Minimum gap between posts
//   - SONGSCHED_MAX_POSTS_PER_DAY: Per-day posting cap
//   - SONGSCHED_MAX_DAYS_AHEAD: Scheduling horizon in days
//   - SONGSCHED_PREFERRED_HOURS: Tie-breaking posting hours (e.g. "18,19,20,21")
//   - SONGSCHED_AVOID_HOURS: Hours never scheduled (e.g. "0,1,2,3,4,5")
//   - SONGSCHED_PREDICT_TIMEOUT: Budget for one view-prediction call
//
// Error Handling
//
// All operations return errors that implement standard Go error handling:
//
//	if errors.Is(err, songsched.ErrNotFound) {
//		fmt.Println("rankings.json missing, fetch videos first")
//	}
//
//	var storErr *songsched.StorageError
//	if errors.As(err, &storErr) {
//		fmt.Printf("%s %s failed: %v\n", storErr.Op, storErr.Entity, storErr.Err)
//	}
//
// Advanced Usage
//
// For more control, use the sub-packages directly:
//
//   - schedule: Classification, ranking, slot search, repair, validation
//   - predict: View predictor contract, timeout guard, baseline model
//   - features: Feature vectors for prediction
//   - history: Posted-video history and performance profiles
//   - youtube: Catalog enrichment via the YouTube Data API
//   - storage: Rankings catalog persistence and schedule export
//   - config: Configuration management
//
// Example using the schedule package directly:
//
//	sched := schedule.NewScheduler(myPredictor, features.Build)
//	sched.Constraints.MaxPostsPerDay = 1
//	result, err := sched.Optimize(ctx, songs)
package songsched
