package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/youtube/v3"

	"github.com/davemk99/studyrag/internal/core"
)

const maxVideoResults = 6

// VideoRecommendation is one suggested study video.
type VideoRecommendation struct {
	VideoID   string `json:"videoId"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Channel   string `json:"channel"`
}

// VideoSearcher finds candidate study videos for a search query.
type VideoSearcher interface {
	SearchVideos(ctx context.Context, query string, max int64) ([]VideoRecommendation, error)
}

// YouTubeSearcher implements VideoSearcher over the YouTube Data API,
// restricted to medium-length videos.
type YouTubeSearcher struct {
	yt *youtube.Service
}

func NewYouTubeSearcher(yt *youtube.Service) *YouTubeSearcher {
	return &YouTubeSearcher{yt: yt}
}

func (s *YouTubeSearcher) SearchVideos(ctx context.Context, query string, max int64) ([]VideoRecommendation, error) {
	resp, err := s.yt.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		VideoDuration("medium").
		MaxResults(max).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	out := make([]VideoRecommendation, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		rec := VideoRecommendation{
			VideoID: item.Id.VideoId,
			Title:   item.Snippet.Title,
			Channel: item.Snippet.ChannelTitle,
		}
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Medium != nil {
			rec.Thumbnail = item.Snippet.Thumbnails.Medium.Url
		}
		out = append(out, rec)
	}
	return out, nil
}

var _ VideoSearcher = (*YouTubeSearcher)(nil)

// VideoService recommends study videos seeded from the titles of a user's
// documents.
type VideoService struct {
	db     core.DbClient
	search VideoSearcher
}

func NewVideoService(db core.DbClient, search VideoSearcher) *VideoService {
	return &VideoService{db: db, search: search}
}

var titleSeparators = regexp.MustCompile(`[-_]+`)

// Recommend searches for tutorial videos matching the user's document titles.
// When documentIDs is non-empty only those documents seed the query. An empty
// library yields an empty result, not an error, and no search call is made.
func (s *VideoService) Recommend(ctx context.Context, userID string, documentIDs []string) ([]VideoRecommendation, error) {
	docs, err := s.db.ListDocumentsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	wanted := make(map[string]bool, len(documentIDs))
	for _, id := range documentIDs {
		wanted[id] = true
	}

	var titles []string
	for _, d := range docs {
		if len(wanted) > 0 && !wanted[d.ID] {
			continue
		}
		titles = append(titles, cleanTitle(d.Title))
	}
	if len(titles) == 0 {
		return []VideoRecommendation{}, nil
	}

	query := strings.Join(titles, " ") + " tutorial explained"
	return s.search.SearchVideos(ctx, query, maxVideoResults)
}

// cleanTitle strips the extension and separator noise so file names make
// usable search keywords.
func cleanTitle(title string) string {
	title = strings.TrimSuffix(strings.TrimSuffix(title, ".pdf"), ".PDF")
	title = titleSeparators.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}
