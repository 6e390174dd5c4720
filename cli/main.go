package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"songsched"
	"songsched/config"
	"songsched/history"
	"songsched/schedule"
	"songsched/storage"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "optimize":
		cmdOptimize(args)
	case "enrich":
		cmdEnrich(args)
	case "show":
		cmdShow(args)
	case "history":
		cmdHistory(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `songsched - posting schedule optimizer for a YouTube music channel

Usage:
  songsched optimize [flags]   Build an optimized posting schedule from rankings.json
  songsched enrich [flags]     Refresh catalog statistics from the YouTube Data API
  songsched show [flags]       Print a saved schedule
  songsched history [flags]    Show the posting-history performance profile
  songsched help               Show this help message

Examples:
  songsched optimize                           # Schedule the whole catalog
  songsched optimize --rankings data/r.json    # Use a different catalog
  songsched enrich                             # Refresh view/like/comment counts
  songsched show                               # Print schedule.json
  songsched history --limit 20                 # Last 20 recorded posts

For help on specific command: songsched <command> -h
`)
}

func cmdOptimize(args []string) {
	fs := flag.NewFlagSet("optimize", flag.ExitOnError)
	rankingsPath := fs.String("rankings", "", "Path to rankings.json (default from config)")
	schedulePath := fs.String("out", "", "Where to save the run (default from config)")
	timeout := fs.Duration("timeout", 5*time.Minute, "Overall optimization timeout")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: songsched optimize [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg := loadConfig()
	if *rankingsPath != "" {
		cfg.RankingsPath = *rankingsPath
	}
	if *schedulePath != "" {
		cfg.SchedulePath = *schedulePath
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "Optimizing schedule from %s...\n", cfg.RankingsPath)
	result, err := songsched.OptimizeWithConfig(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error optimizing schedule: %v\n", err)
		os.Exit(1)
	}

	printSchedule(result.Entries)

	if len(result.Violations) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d residual violation(s):\n", len(result.Violations))
		for _, v := range result.Violations {
			marker := " "
			if v.Severe {
				marker = "!"
			}
			fmt.Fprintf(os.Stderr, " %s %s\n", marker, v.String())
		}
	}
	fmt.Fprintf(os.Stderr, "\nScheduled %d songs, run saved to %s\n", len(result.Entries), cfg.SchedulePath)
}

func cmdEnrich(args []string) {
	fs := flag.NewFlagSet("enrich", flag.ExitOnError)
	rankingsPath := fs.String("rankings", "", "Path to rankings.json (default from config)")
	timeout := fs.Duration("timeout", 15*time.Minute, "Overall enrichment timeout")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: songsched enrich [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg := loadConfig()
	if *rankingsPath != "" {
		cfg.RankingsPath = *rankingsPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "Enriching %s from the YouTube Data API...\n", cfg.RankingsPath)
	updated, err := songsched.EnrichCatalogWithConfig(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error enriching catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Updated %d catalog entries\n", updated)
}

func cmdShow(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	schedulePath := fs.String("schedule", "", "Path to a saved run (default from config)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: songsched show [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg := loadConfig()
	path := cfg.SchedulePath
	if *schedulePath != "" {
		path = *schedulePath
	}

	run, err := storage.LoadRun(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading schedule: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Run %s (%s, %d songs)\n\n", run.ID, run.CreatedAt.Format("2006-01-02 15:04"), run.SongCount)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POST AT\tSONG\tARTIST\tMODE\tPRED. VIEWS\tCONF")
	for _, slot := range run.Entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\n",
			slot.PostAt.Format("2006-01-02 15:04"),
			truncate(slot.SongName, 40),
			truncate(slot.ArtistName, 20),
			slot.Mode,
			humanize.Comma(int64(slot.PredictedViews)),
			slot.Confidence,
		)
	}
	w.Flush()

	if len(run.Violations) > 0 {
		fmt.Printf("\n%d violation(s):\n", len(run.Violations))
		for _, v := range run.Violations {
			fmt.Printf("  %s\n", v)
		}
	}
}

func cmdHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Number of recent posts to show (0 = all)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: songsched history [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg := loadConfig()
	store, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	profile, err := store.BuildProfile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building profile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Posting history: %d posts, mean views %s\n\n",
		profile.Samples, humanize.Comma(int64(profile.BaseViews)))

	posts, err := store.Recent(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing posts: %v\n", err)
		os.Exit(1)
	}
	if len(posts) == 0 {
		fmt.Println("No recorded posts yet.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POSTED AT\tSONG\tARTIST\tVIEWS\tLIKES")
	for _, p := range posts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.PostedAt.Format("2006-01-02 15:04"),
			truncate(p.SongName, 40),
			truncate(p.Artist, 20),
			humanize.Comma(int64(p.ViewCount)),
			humanize.Comma(int64(p.LikeCount)),
		)
	}
	w.Flush()
}

func printSchedule(entries []*schedule.Entry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POST AT\tSONG\tARTIST\tMODE\tSCORE\tPRED. VIEWS")
	for _, e := range entries {
		adjusted := ""
		if e.IntervalAdjusted {
			adjusted = " *"
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%.1f\t%s\n",
			e.PostAt.Format("2006-01-02 15:04"),
			adjusted,
			truncate(e.Name, 40),
			truncate(e.Artist, 20),
			e.Mode,
			e.PriorityScore,
			humanize.Comma(int64(e.PredictedViews)),
		)
	}
	w.Flush()
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
