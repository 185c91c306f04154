// Package twitch reads replay chat for a VOD through the public GQL
// persisted-query comment feed.
package twitch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Mindyourbiz9000/clippnj/pkg/models"
)

const (
	// DefaultGQLURL is the public Twitch GQL endpoint.
	DefaultGQLURL = "https://gql.twitch.tv/gql"
	// DefaultClientID is the anonymous web-player client id the comment
	// feed accepts without authentication.
	DefaultClientID = "kimne78kx3ncx6brgo4mv6wki5h1ko"

	commentsOperation = "VideoCommentsByOffsetOrCursor"
	commentsQueryHash = "b70a3591ff0f4e0313d126c6a1502d79a1c02baebb288227c582044aa76adf6a"

	maxRetries     = 3
	baseBackoff    = time.Second
	maxBodyExcerpt = 200

	defaultRequestTimeout = 30 * time.Second
	defaultRateLimitRPS   = 5
	defaultRateLimitBurst = 10
)

// CommentPage is one decoded page of the comment feed. Cursor is empty when
// there is no next page.
type CommentPage struct {
	Messages []models.ChatMessage
	Cursor   string
}

// CommentSource fetches one page of replay chat. Exactly one of cursor and
// offsetSeconds is authoritative per call: a non-empty cursor wins,
// otherwise offsetSeconds seeds the position.
type CommentSource interface {
	FetchCommentPage(ctx context.Context, videoID, cursor string, offsetSeconds int) (*CommentPage, error)
}

// ClientConfig holds the upstream connection settings.
type ClientConfig struct {
	GQLURL         string
	ClientID       string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// Client talks to the Twitch GQL comment feed with bounded retries,
// exponential backoff, and outbound rate limiting.
type Client struct {
	httpClient  *http.Client
	gqlURL      string
	clientID    string
	limiter     *rate.Limiter
	backoffBase time.Duration
	logger      *slog.Logger
}

// NewClient creates a comment feed client. Zero-value config fields fall
// back to the public endpoint defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.GQLURL == "" {
		cfg.GQLURL = DefaultGQLURL
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = defaultRateLimitRPS
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = defaultRateLimitBurst
	}
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.RequestTimeout},
		gqlURL:      cfg.GQLURL,
		clientID:    cfg.ClientID,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		backoffBase: baseBackoff,
		logger:      slog.Default(),
	}
}

// FetchCommentPage fetches one page, retrying transient failures up to
// maxRetries times with exponential backoff (1s, 2s, 4s). Each attempt is
// independent; the first success is returned whole.
func (c *Client) FetchCommentPage(ctx context.Context, videoID, cursor string, offsetSeconds int) (*CommentPage, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffBase << (attempt - 1)
			c.logger.Warn("Comment page fetch failed, retrying",
				"video_id", videoID, "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		page, err := c.fetchOnce(ctx, videoID, cursor, offsetSeconds)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if ctx.Err() != nil || !isRetryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("comment page fetch exhausted %d retries: %w", maxRetries, lastErr)
}

// gqlRequest is the persisted-query envelope the feed expects, sent as a
// single-element JSON array.
type gqlRequest struct {
	OperationName string        `json:"operationName"`
	Variables     gqlVariables  `json:"variables"`
	Extensions    gqlExtensions `json:"extensions"`
}

type gqlVariables struct {
	VideoID              string `json:"videoID"`
	ContentOffsetSeconds *int   `json:"contentOffsetSeconds,omitempty"`
	Cursor               string `json:"cursor,omitempty"`
}

type gqlExtensions struct {
	PersistedQuery gqlPersistedQuery `json:"persistedQuery"`
}

type gqlPersistedQuery struct {
	Version    int    `json:"version"`
	Sha256Hash string `json:"sha256Hash"`
}

type gqlResponse struct {
	Errors []gqlErrorEntry `json:"errors"`
	Data   struct {
		Video struct {
			Comments *commentConnection `json:"comments"`
		} `json:"video"`
	} `json:"data"`
}

type gqlErrorEntry struct {
	Message string `json:"message"`
}

type commentConnection struct {
	Edges    []commentEdge `json:"edges"`
	PageInfo struct {
		HasNextPage bool `json:"hasNextPage"`
	} `json:"pageInfo"`
}

type commentEdge struct {
	Cursor string `json:"cursor"`
	Node   struct {
		ContentOffsetSeconds float64 `json:"contentOffsetSeconds"`
		Commenter            *struct {
			DisplayName string `json:"displayName"`
		} `json:"commenter"`
		Message struct {
			Fragments []wireFragment `json:"fragments"`
		} `json:"message"`
	} `json:"node"`
}

type wireFragment struct {
	Text  string `json:"text"`
	Emote *struct {
		EmoteID string `json:"emoteID"`
	} `json:"emote"`
}

func buildCommentsQuery(videoID, cursor string, offsetSeconds int) gqlRequest {
	req := gqlRequest{
		OperationName: commentsOperation,
		Extensions: gqlExtensions{
			PersistedQuery: gqlPersistedQuery{Version: 1, Sha256Hash: commentsQueryHash},
		},
	}
	req.Variables.VideoID = videoID
	if cursor != "" {
		req.Variables.Cursor = cursor
	} else {
		req.Variables.ContentOffsetSeconds = &offsetSeconds
	}
	return req
}

func (c *Client) fetchOnce(ctx context.Context, videoID, cursor string, offsetSeconds int) (*CommentPage, error) {
	payload, err := json.Marshal([]gqlRequest{buildCommentsQuery(videoID, cursor, offsetSeconds)})
	if err != nil {
		return nil, fmt.Errorf("marshal comments query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gqlURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create comments request: %w", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), maxBodyExcerpt)}
	}

	var responses []gqlResponse
	if err := json.Unmarshal(body, &responses); err != nil {
		return nil, fmt.Errorf("decode comments response: %w", err)
	}
	if len(responses) == 0 {
		return nil, fmt.Errorf("empty comments response array")
	}

	first := responses[0]
	if len(first.Errors) > 0 {
		msgs := make([]string, 0, len(first.Errors))
		for _, e := range first.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, &FeedError{Message: strings.Join(msgs, "; ")}
	}

	comments := first.Data.Video.Comments
	if comments == nil {
		return nil, fmt.Errorf("comments response missing video data (video %s)", videoID)
	}

	return decodePage(comments), nil
}

func decodePage(comments *commentConnection) *CommentPage {
	page := &CommentPage{Messages: make([]models.ChatMessage, 0, len(comments.Edges))}
	for _, edge := range comments.Edges {
		fragments := make([]models.Fragment, 0, len(edge.Node.Message.Fragments))
		for _, f := range edge.Node.Message.Fragments {
			if f.Emote != nil {
				fragments = append(fragments, models.EmoteFragment{Name: f.Text, ID: f.Emote.EmoteID})
			} else {
				fragments = append(fragments, models.TextFragment{Text: f.Text})
			}
		}
		author := ""
		if edge.Node.Commenter != nil {
			author = edge.Node.Commenter.DisplayName
		}
		page.Messages = append(page.Messages,
			models.NewChatMessage(int(edge.Node.ContentOffsetSeconds), author, fragments))
	}
	if comments.PageInfo.HasNextPage && len(comments.Edges) > 0 {
		page.Cursor = comments.Edges[len(comments.Edges)-1].Cursor
	}
	return page
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
