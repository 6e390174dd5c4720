package songsched

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"songsched/config"
	"songsched/storage"
)

func writeCatalog(t *testing.T, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rankings.json")
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func enrichTestConfig(rankingsPath string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.RankingsPath = rankingsPath
	cfg.APIKeys = []string{"test-key"}
	return cfg
}

// Null entries in the catalog decode to nil ranking items; the enrich
// path must skip them the same way the optimize path does.
func TestEnrichCatalogSkipsNullEntries(t *testing.T) {
	path := writeCatalog(t, `{
		"overall": [
			null,
			{"rank": 1, "song_name": "Song A", "video_id": "", "metrics": {"view_count": 1000}}
		],
		"support_rate": [
			null,
			{"rank": 1, "song_name": "Song A", "video_id": "", "metrics": {"support_rate": 2.5}}
		]
	}`)

	// No video IDs, so enrichment has nothing to fetch and the call
	// exercises both catalog loops without touching the network.
	updated, err := EnrichCatalogWithConfig(context.Background(), enrichTestConfig(path))
	if err != nil {
		t.Fatalf("EnrichCatalogWithConfig() error = %v", err)
	}
	if updated != 0 {
		t.Errorf("updated = %d, want 0 with nothing fetched", updated)
	}

	// The catalog survives the round trip with the real entry intact.
	songs, err := storage.NewRankingsStore(path).Songs()
	if err != nil {
		t.Fatalf("Songs() after enrich error = %v", err)
	}
	if len(songs) != 1 || songs[0].Name != "Song A" {
		t.Errorf("Songs() = %+v, want the single Song A entry", songs)
	}
}

func TestEnrichCatalogAllEntriesNull(t *testing.T) {
	path := writeCatalog(t, `{"overall": [null, null]}`)

	_, err := EnrichCatalogWithConfig(context.Background(), enrichTestConfig(path))
	if err == nil {
		t.Fatal("EnrichCatalogWithConfig() error = nil, want catalog-empty error")
	}
	var storageErr *storage.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("EnrichCatalogWithConfig() error = %v, want *storage.StorageError", err)
	}
}

func TestEnrichCatalogRequiresAPIKeys(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.APIKeys = nil

	if _, err := EnrichCatalogWithConfig(context.Background(), cfg); err == nil {
		t.Fatal("EnrichCatalogWithConfig() with no keys = nil error, want error")
	}
}
