// Package websearch finds tutorial videos for repair questions.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/DeyvidJesus/gomech-ai-service/internal/models"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

const (
	DefaultEndpoint = "https://www.googleapis.com/youtube/v3/search"
	maxKeywords     = 5
	maxResults      = 3
)

const (
	replyFound     = "Encontrei %d vídeos sobre: %s"
	replyNone      = "Não encontrei vídeos relevantes."
	replyFailed    = "Erro ao buscar vídeos no YouTube."
	replyNotConfig = "A busca de vídeos não está configurada no momento."
)

var (
	wordRe    = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	stopwords = map[string]bool{
		"de": true, "da": true, "do": true, "dos": true, "das": true, "um": true, "uma": true, "uns": true, "umas": true,
		"a": true, "o": true, "os": true, "as": true, "em": true, "no": true, "na": true, "nos": true, "nas": true,
		"para": true, "por": true, "com": true, "que": true, "se": true, "sobre": true, "ao": true, "à": true,
		"the": true, "is": true, "at": true, "which": true, "on": true, "and": true, "of": true, "to": true, "in": true,
	}
)

// ExtractKeywords keeps up to five non-stopwords longer than two letters. A
// question with no keyword is used verbatim.
func ExtractKeywords(text string) string {
	var keywords []string
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if stopwords[w] || utf8.RuneCountInString(w) <= 2 {
			continue
		}
		keywords = append(keywords, w)
		if len(keywords) == maxKeywords {
			break
		}
	}
	if len(keywords) == 0 {
		return text
	}
	return strings.Join(keywords, " ")
}

type Result struct {
	Reply  string         `json:"reply"`
	Videos []models.Video `json:"videos"`
}

type Searcher struct {
	apiKey   string
	endpoint string
	http     *http.Client
	log      *logger.Logger
}

// New builds a YouTube searcher. An empty endpoint targets the public API.
func New(apiKey, endpoint string, timeout time.Duration, log *logger.Logger) *Searcher {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Searcher{
		apiKey:   apiKey,
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		log:      log.With("component", "web_agent"),
	}
}

// Answer searches and always produces a reply; failures are logged.
func (s *Searcher) Answer(ctx context.Context, question string) (Result, error) {
	query := ExtractKeywords(question)
	s.log.Info("🔍 searching YouTube", "question", question, "query", query)

	videos, err := s.Search(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		s.log.Error("❌ YouTube search failed", "error", err)
		if s.apiKey == "" {
			return Result{Reply: replyNotConfig, Videos: []models.Video{}}, nil
		}
		return Result{Reply: replyFailed, Videos: []models.Video{}}, nil
	}
	if len(videos) == 0 {
		return Result{Reply: replyNone, Videos: []models.Video{}}, nil
	}
	return Result{Reply: fmt.Sprintf(replyFound, len(videos), query), Videos: videos}, nil
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   map[string]struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Search returns at most three embeddable videos for query.
func (s *Searcher) Search(ctx context.Context, query string) ([]models.Video, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: YOUTUBE_API_KEY não configurada", apierr.ErrUnavailable)
	}
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("q", query)
	q.Set("key", s.apiKey)
	q.Set("maxResults", fmt.Sprint(maxResults))
	q.Set("type", "video")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: youtube: %v", apierr.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: youtube returned %d", apierr.ErrUnavailable, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode youtube response: %v", apierr.ErrUnavailable, err)
	}
	videos := make([]models.Video, 0, len(body.Items))
	for _, item := range body.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, models.Video{
			Title:       item.Snippet.Title,
			VideoID:     item.ID.VideoID,
			IframeURL:   "https://www.youtube.com/embed/" + item.ID.VideoID,
			Thumbnail:   thumbnail(item.Snippet.Thumbnails),
			Channel:     item.Snippet.ChannelTitle,
			PublishedAt: item.Snippet.PublishedAt,
		})
	}
	return videos, nil
}

func thumbnail(thumbs map[string]struct {
	URL string `json:"url"`
}) string {
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := thumbs[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}
