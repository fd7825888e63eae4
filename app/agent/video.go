package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"studyrag/logger"
	"studyrag/model"
	"studyrag/types"
)

const (
	videoResults       = 6
	educationCategory  = "27"
	videoSnippetChars  = 500
	videoKeywords      = 5
	videoQueryMaxChars = 100
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true, "in": true,
	"on": true, "at": true, "to": true, "for": true, "of": true, "with": true, "by": true,
}

type VideoSearcher interface {
	Search(ctx context.Context, query string) ([]types.Video, error)
}

type YouTubeSearcher struct {
	svc     *youtube.Service
	timeout time.Duration
}

func NewYouTubeSearcher(ctx context.Context, apiKey string, timeout time.Duration) (*YouTubeSearcher, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}
	return &YouTubeSearcher{svc: svc, timeout: timeout}, nil
}

func (y *YouTubeSearcher) Search(ctx context.Context, query string) ([]types.Video, error) {
	resp, err := model.Retry(ctx, y.timeout, func(ctx context.Context) (*youtube.SearchListResponse, error) {
		return y.svc.Search.List([]string{"snippet"}).
			Q(query).
			Type("video").
			MaxResults(videoResults).
			VideoCategoryId(educationCategory).
			RelevanceLanguage("en").
			SafeSearch("strict").
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: youtube search: %v", types.ErrProvider, err)
	}

	videos := make([]types.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Snippet == nil {
			continue
		}
		v := types.Video{
			ID:           item.Id.VideoId,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.PublishedAt,
			URL:          "https://www.youtube.com/watch?v=" + item.Id.VideoId,
		}
		if th := item.Snippet.Thumbnails; th != nil && th.Medium != nil {
			v.ThumbnailURL = th.Medium.Url
		}
		videos = append(videos, v)
	}
	return videos, nil
}

// BuildVideoQuery derives a search query from the document's name and the
// longer words at the start of its text.
func BuildVideoQuery(name, text string) string {
	words := strings.Fields(types.FirstRunes(text, videoSnippetChars))
	keywords := make([]string, 0, videoKeywords)
	for _, w := range words {
		if len(keywords) == videoKeywords {
			break
		}
		if len([]rune(w)) > 4 && !stopWords[strings.ToLower(w)] {
			keywords = append(keywords, w)
		}
	}
	query := fmt.Sprintf("%s %s tutorial explanation", strings.Replace(name, ".pdf", "", 1), strings.Join(keywords, " "))
	return types.FirstRunes(query, videoQueryMaxChars)
}

type VideoResult struct {
	Query  string        `json:"query"`
	Videos []types.Video `json:"videos"`
}

// Videos recommends videos for a document. It never fails: a missing searcher
// yields the document name as query, a search error an empty query.
type Videos struct {
	log      *logger.Logger
	searcher VideoSearcher
}

func NewVideos(log *logger.Logger, searcher VideoSearcher) *Videos {
	return &Videos{log: log, searcher: searcher}
}

func (v *Videos) Configured() bool {
	return v != nil && v.searcher != nil
}

func (v *Videos) Recommend(ctx context.Context, doc *types.Document) VideoResult {
	if !v.Configured() {
		return VideoResult{Query: doc.Name, Videos: []types.Video{}}
	}
	query := BuildVideoQuery(doc.Name, doc.TextContent)
	videos, err := v.searcher.Search(ctx, query)
	if err != nil {
		v.log.Warn("video search failed", "doc", doc.ID, "query", query, "error", err)
		return VideoResult{Query: "", Videos: []types.Video{}}
	}
	v.log.Info("video search", "doc", doc.ID, "query", query, "videos", len(videos))
	return VideoResult{Query: query, Videos: videos}
}
