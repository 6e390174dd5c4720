// Package youtube enriches song catalogs with live statistics from the
// YouTube Data API v3. It rotates across multiple API keys as daily quotas
// run out and derives the engagement metrics the scheduler's ranker feeds on.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/googleapi"
	gapitransport "google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"songsched/internal/retry"
	"songsched/schedule"
	"songsched/transport"
)

// dailyQuotaPerKey is the default daily unit allowance of a Data API key.
const dailyQuotaPerKey = 10000

// VideoData is the enriched record for a single upload.
type VideoData struct {
	VideoID         string    `json:"video_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ChannelID       string    `json:"channel_id"`
	ChannelTitle    string    `json:"channel_title"`
	PublishedAt     time.Time `json:"published_at"`
	CategoryID      string    `json:"category_id"`
	CategoryName    string    `json:"category_name"`
	Tags            []string  `json:"tags"`
	DurationSeconds int       `json:"duration_seconds"`
	IsShort         bool      `json:"is_short"`
	Definition      string    `json:"definition"`
	ViewCount       int64     `json:"view_count"`
	LikeCount       int64     `json:"like_count"`
	CommentCount    int64     `json:"comment_count"`
	EngagementRate  float64   `json:"engagement_rate"`
	LikeRate        float64   `json:"like_rate"`
	CommentRate     float64   `json:"comment_rate"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	PrivacyStatus   string    `json:"privacy_status"`
}

// ChannelData is the enriched record for a channel.
type ChannelData struct {
	ChannelID         string `json:"channel_id"`
	Title             string `json:"channel_title"`
	CustomURL         string `json:"custom_url"`
	SubscriberCount   int64  `json:"subscriber_count"`
	VideoCount        int64  `json:"video_count"`
	ViewCount         int64  `json:"view_count"`
	UploadsPlaylistID string `json:"uploads_playlist_id"`
}

// Enricher fetches video and channel statistics, rotating API keys on
// quota exhaustion.
type Enricher struct {
	keys *KeyPool
	rt   http.RoundTripper

	mu           sync.Mutex
	service      *youtube.Service
	requestCount int

	RetryConfig *retry.Config
}

// NewEnricher builds an enricher over the given API keys. All requests
// go through a shared rate-limited transport so key rotation never
// resets the pacing toward the API host.
func NewEnricher(apiKeys []string) (*Enricher, error) {
	pool := NewKeyPool(apiKeys)
	if pool.Size() == 0 {
		return nil, fmt.Errorf("at least one api key required")
	}

	rt := transport.New(transport.DefaultConfig())
	service, err := newService(rt, pool.Current())
	if err != nil {
		return nil, err
	}

	cfg := retry.DefaultConfig()
	return &Enricher{
		keys:        pool,
		rt:          rt,
		service:     service,
		RetryConfig: &cfg,
	}, nil
}

// newService builds a Data API client whose key rides on the request
// as a query parameter, layered over the shared rate-limited base.
func newService(base http.RoundTripper, apiKey string) (*youtube.Service, error) {
	client := &http.Client{
		Transport: &gapitransport.APIKey{Key: apiKey, Transport: base},
	}
	svc, err := youtube.NewService(context.Background(), option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return svc, nil
}

// quotaSpent reports whether this process has already issued the active
// key's daily unit allowance. List requests cost one unit each, so the
// request count doubles as a unit count.
func (e *Enricher) quotaSpent() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.requestCount >= dailyQuotaPerKey
}

// RequestCount returns the number of API calls issued so far.
func (e *Enricher) RequestCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.requestCount
}

// rotateKey switches the underlying service to the next API key.
func (e *Enricher) rotateKey() error {
	key := e.keys.Next()
	if key == "" {
		return ErrKeysExhausted
	}
	service, err := newService(e.rt, key)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.service = service
	e.requestCount = 0
	e.mu.Unlock()
	return nil
}

// call runs one API request with retries, rotating keys when the active
// one hits its quota.
func (e *Enricher) call(ctx context.Context, fn func(ctx context.Context, svc *youtube.Service) error) error {
	cfg := e.RetryConfig
	if cfg == nil {
		defaultCfg := retry.DefaultConfig()
		cfg = &defaultCfg
	}

	for {
		if e.quotaSpent() {
			log.Printf("youtube: key request budget spent, rotating key")
			if rotateErr := e.rotateKey(); rotateErr != nil {
				return rotateErr
			}
		}
		err := retry.Do(ctx, *cfg, enrichErrorClassifier, func(ctx context.Context) error {
			e.mu.Lock()
			svc := e.service
			e.mu.Unlock()

			if err := fn(ctx, svc); err != nil {
				if ctx.Err() != nil {
					return ErrNetworkTimeout
				}
				return err
			}

			e.mu.Lock()
			e.requestCount++
			e.mu.Unlock()
			return nil
		})
		if err == nil {
			return nil
		}
		if isQuotaError(err) {
			log.Printf("youtube: api quota exceeded, rotating key")
			if rotateErr := e.rotateKey(); rotateErr != nil {
				return rotateErr
			}
			continue
		}
		return err
	}
}

// EnrichVideo fetches snippet, content details, statistics and status for
// one video ID.
func (e *Enricher) EnrichVideo(ctx context.Context, videoID string) (*VideoData, error) {
	if videoID == "" {
		return nil, &EnrichError{Entity: "video", ID: videoID, Err: ErrVideoNotFound}
	}

	var data *VideoData
	err := e.call(ctx, func(ctx context.Context, svc *youtube.Service) error {
		resp, err := svc.Videos.List([]string{"snippet", "contentDetails", "statistics", "status"}).
			Id(videoID).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return ErrVideoNotFound
		}
		data = videoDataFromItem(resp.Items[0])
		return nil
	})
	if err != nil {
		return nil, &EnrichError{Entity: "video", ID: videoID, Err: err}
	}
	return data, nil
}

// EnrichChannel fetches snippet, statistics and content details for one
// channel ID.
func (e *Enricher) EnrichChannel(ctx context.Context, channelID string) (*ChannelData, error) {
	if channelID == "" {
		return nil, &EnrichError{Entity: "channel", ID: channelID, Err: ErrChannelNotFound}
	}

	var data *ChannelData
	err := e.call(ctx, func(ctx context.Context, svc *youtube.Service) error {
		resp, err := svc.Channels.List([]string{"snippet", "statistics", "contentDetails"}).
			Id(channelID).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return ErrChannelNotFound
		}
		item := resp.Items[0]
		data = &ChannelData{ChannelID: channelID}
		if item.Snippet != nil {
			data.Title = item.Snippet.Title
			data.CustomURL = item.Snippet.CustomUrl
		}
		if item.Statistics != nil {
			data.SubscriberCount = int64(item.Statistics.SubscriberCount)
			data.VideoCount = int64(item.Statistics.VideoCount)
			data.ViewCount = int64(item.Statistics.ViewCount)
		}
		if item.ContentDetails != nil && item.ContentDetails.RelatedPlaylists != nil {
			data.UploadsPlaylistID = item.ContentDetails.RelatedPlaylists.Uploads
		}
		return nil
	})
	if err != nil {
		return nil, &EnrichError{Entity: "channel", ID: channelID, Err: err}
	}
	return data, nil
}

// EnrichSongs refreshes each song's counts and engagement rates from the
// API and fills relative metrics against the batch mean. Songs without a
// video ID, and videos the API no longer knows, pass through untouched.
// Enrichment stops early only when every API key is spent or the context
// is done.
func (e *Enricher) EnrichSongs(ctx context.Context, songs []schedule.Song) ([]schedule.Song, error) {
	out := make([]schedule.Song, len(songs))
	copy(out, songs)

	fetched := make([]*VideoData, len(songs))
	for i := range out {
		if out[i].VideoID == "" {
			continue
		}
		data, err := e.EnrichVideo(ctx, out[i].VideoID)
		if err != nil {
			if errors.Is(err, ErrKeysExhausted) || ctx.Err() != nil {
				return out, err
			}
			log.Printf("youtube: enrich %s failed: %v", out[i].VideoID, err)
			continue
		}
		fetched[i] = data

		out[i].ViewCount = float64(data.ViewCount)
		out[i].LikeCount = float64(data.LikeCount)
		out[i].CommentCount = float64(data.CommentCount)
		out[i].AnalyticsEngagementRate = data.EngagementRate
		out[i].AnalyticsLikeRate = data.LikeRate
		if out[i].ReleaseDate == "" && !data.PublishedAt.IsZero() {
			out[i].ReleaseDate = data.PublishedAt.Format("2006-01-02")
		}
	}

	applyRelativeMetrics(out, fetched)
	return out, nil
}

// applyRelativeMetrics sets each song's engagement and like-rate scores
// relative to the batch mean, so a 1.0 means channel-average performance.
func applyRelativeMetrics(songs []schedule.Song, fetched []*VideoData) {
	var sumEngagement, sumLikeRate float64
	var n int
	for _, d := range fetched {
		if d == nil {
			continue
		}
		sumEngagement += d.EngagementRate
		sumLikeRate += d.LikeRate
		n++
	}
	if n == 0 {
		return
	}
	meanEngagement := sumEngagement / float64(n)
	meanLikeRate := sumLikeRate / float64(n)

	for i, d := range fetched {
		if d == nil {
			continue
		}
		if meanEngagement > 0 {
			songs[i].RelativeEngagementScore = d.EngagementRate / meanEngagement
		}
		if meanLikeRate > 0 {
			songs[i].RelativeLikeRate = d.LikeRate / meanLikeRate
		}
	}
}

func videoDataFromItem(item *youtube.Video) *VideoData {
	data := &VideoData{VideoID: item.Id}

	if item.Snippet != nil {
		data.Title = item.Snippet.Title
		data.Description = item.Snippet.Description
		data.ChannelID = item.Snippet.ChannelId
		data.ChannelTitle = item.Snippet.ChannelTitle
		data.CategoryID = item.Snippet.CategoryId
		data.CategoryName = categoryName(item.Snippet.CategoryId)
		data.Tags = item.Snippet.Tags
		if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			data.PublishedAt = t
		}
		data.ThumbnailURL = bestThumbnail(item.Snippet.Thumbnails)
	}

	if item.ContentDetails != nil {
		data.DurationSeconds = parseDuration(item.ContentDetails.Duration)
		data.IsShort = data.DurationSeconds > 0 && data.DurationSeconds < 60
		data.Definition = item.ContentDetails.Definition
	}

	if item.Statistics != nil {
		data.ViewCount = int64(item.Statistics.ViewCount)
		data.LikeCount = int64(item.Statistics.LikeCount)
		data.CommentCount = int64(item.Statistics.CommentCount)
		data.EngagementRate = engagementRate(item.Statistics)
		data.LikeRate = likeRate(item.Statistics)
		data.CommentRate = commentRate(item.Statistics)
	}

	if item.Status != nil {
		data.PrivacyStatus = item.Status.PrivacyStatus
	}

	return data
}

// bestThumbnail picks the highest-resolution thumbnail the API returned.
func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, candidate := range []*youtube.Thumbnail{t.Maxres, t.High, t.Medium, t.Default} {
		if candidate != nil && candidate.Url != "" {
			return candidate.Url
		}
	}
	return ""
}

var durationRegex = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseDuration converts an ISO 8601 duration like PT1H23M45S to seconds.
func parseDuration(s string) int {
	m := durationRegex.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	seconds := 0
	multipliers := []int{3600, 60, 1}
	for i, group := range m[1:] {
		if group == "" {
			continue
		}
		var v int
		fmt.Sscanf(group, "%d", &v)
		seconds += v * multipliers[i]
	}
	return seconds
}

// engagementRate is (likes + comments) / views as a percentage.
func engagementRate(s *youtube.VideoStatistics) float64 {
	if s.ViewCount == 0 {
		return 0
	}
	return float64(s.LikeCount+s.CommentCount) / float64(s.ViewCount) * 100
}

// likeRate is likes / views as a percentage.
func likeRate(s *youtube.VideoStatistics) float64 {
	if s.ViewCount == 0 {
		return 0
	}
	return float64(s.LikeCount) / float64(s.ViewCount) * 100
}

// commentRate is comments / views as a percentage.
func commentRate(s *youtube.VideoStatistics) float64 {
	if s.ViewCount == 0 {
		return 0
	}
	return float64(s.CommentCount) / float64(s.ViewCount) * 100
}

var videoCategories = map[string]string{
	"1":  "Film & Animation",
	"2":  "Autos & Vehicles",
	"10": "Music",
	"15": "Pets & Animals",
	"17": "Sports",
	"19": "Travel & Events",
	"20": "Gaming",
	"22": "People & Blogs",
	"23": "Comedy",
	"24": "Entertainment",
	"25": "News & Politics",
	"26": "Howto & Style",
	"27": "Education",
	"28": "Science & Technology",
	"29": "Nonprofits & Activism",
}

func categoryName(id string) string {
	if name, ok := videoCategories[id]; ok {
		return name
	}
	return "Unknown"
}

// isQuotaError reports whether an API error means the active key's daily
// quota is spent.
func isQuotaError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 403 && strings.Contains(strings.ToLower(apiErr.Message), "quota") {
			return true
		}
		for _, e := range apiErr.Errors {
			if e.Reason == "quotaExceeded" || e.Reason == "dailyLimitExceeded" {
				return true
			}
		}
		return false
	}
	return strings.Contains(err.Error(), "quotaExceeded")
}

// enrichErrorClassifier keeps retries for transient failures only. Quota
// errors are handled by key rotation, not by backing off.
func enrichErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrVideoNotFound), errors.Is(err, ErrChannelNotFound):
		return false
	case isQuotaError(err):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		// 429 and 5xx are transient; other 4xx are permanent.
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	return true
}
