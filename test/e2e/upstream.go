package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// FeedMessage is one scripted chat message served by the fake feed.
type FeedMessage struct {
	Offset int
	Author string
	Text   string
}

// Msg builds a scripted chat message.
func Msg(offset int, author, text string) FeedMessage {
	return FeedMessage{Offset: offset, Author: author, Text: text}
}

// ScriptedFeed is an in-process stand-in for the Twitch GQL comment feed.
// It speaks the persisted-query wire format the real client sends: requests
// arrive as a single-element JSON array, pages are keyed by video id and
// cursor, and the last edge of a non-final page carries the cursor for the
// next one. Videos that were never scripted serve an empty connection, which
// ends the client's walk with zero messages.
type ScriptedFeed struct {
	mu       sync.Mutex
	videos   map[string][][]FeedMessage // video id → pages
	holds    map[string]int             // video id → pages served before blocking
	served   map[string]int             // video id → pages served so far
	released chan struct{}
	failures int // remaining requests to fail
	status   int
	body     string
	requests int

	server *httptest.Server
}

// NewScriptedFeed starts the fake feed on a local listener.
func NewScriptedFeed() *ScriptedFeed {
	f := &ScriptedFeed{
		videos:   make(map[string][][]FeedMessage),
		holds:    make(map[string]int),
		served:   make(map[string]int),
		released: make(chan struct{}),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// URL returns the feed endpoint for wiring into the client config.
func (f *ScriptedFeed) URL() string { return f.server.URL }

// Close shuts the fake feed down.
func (f *ScriptedFeed) Close() { f.server.Close() }

// AddVideo scripts the pages served for a video, replacing any previous
// script for the same id.
func (f *ScriptedFeed) AddVideo(videoID string, pages ...[]FeedMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videos[videoID] = pages
}

// HoldAfter makes requests for videoID block once n pages have been served,
// until Release is called or the client abandons the request.
func (f *ScriptedFeed) HoldAfter(videoID string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holds[videoID] = n
}

// Release unblocks every request currently held by HoldAfter and disarms
// the hold for the rest of the test.
func (f *ScriptedFeed) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holds = make(map[string]int)
	close(f.released)
	f.released = make(chan struct{})
}

// FailNext makes the next n requests answer with the given HTTP status
// instead of a page.
func (f *ScriptedFeed) FailNext(n, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = n
	f.status = status
	f.body = body
}

// Requests returns the number of GQL requests received so far, including
// failed and held ones.
func (f *ScriptedFeed) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// feedRequest mirrors the client's persisted-query envelope.
type feedRequest struct {
	OperationName string `json:"operationName"`
	Variables     struct {
		VideoID              string `json:"videoID"`
		ContentOffsetSeconds *int   `json:"contentOffsetSeconds"`
		Cursor               string `json:"cursor"`
	} `json:"variables"`
}

// Wire shapes of the comment feed response.
type wireEnvelope struct {
	Data wireData `json:"data"`
}

type wireData struct {
	Video wireVideo `json:"video"`
}

type wireVideo struct {
	Comments wireComments `json:"comments"`
}

type wireComments struct {
	Edges    []wireEdge   `json:"edges"`
	PageInfo wirePageInfo `json:"pageInfo"`
}

type wirePageInfo struct {
	HasNextPage bool `json:"hasNextPage"`
}

type wireEdge struct {
	Cursor string   `json:"cursor"`
	Node   wireNode `json:"node"`
}

type wireNode struct {
	ContentOffsetSeconds int            `json:"contentOffsetSeconds"`
	Commenter            *wireCommenter `json:"commenter"`
	Message              wireMessage    `json:"message"`
}

type wireCommenter struct {
	DisplayName string `json:"displayName"`
}

type wireMessage struct {
	Fragments []wireFragment `json:"fragments"`
}

type wireFragment struct {
	Text string `json:"text"`
}

func (f *ScriptedFeed) handle(w http.ResponseWriter, r *http.Request) {
	var reqs []feedRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil || len(reqs) == 0 {
		http.Error(w, "malformed GQL request", http.StatusBadRequest)
		return
	}
	videoID := reqs[0].Variables.VideoID
	cursor := reqs[0].Variables.Cursor

	f.mu.Lock()
	f.requests++
	if f.failures > 0 {
		f.failures--
		status, body := f.status, f.body
		f.mu.Unlock()
		http.Error(w, body, status)
		return
	}

	pageIdx := cursorIndex(cursor)
	pages := f.videos[videoID]

	holdAt, holding := f.holds[videoID]
	served := f.served[videoID]
	released := f.released
	if holding && served >= holdAt {
		f.mu.Unlock()
		// Park until the test releases the gate or the client gives up.
		select {
		case <-released:
		case <-r.Context().Done():
			return
		}
		f.mu.Lock()
	}
	f.served[videoID]++
	f.mu.Unlock()

	comments := wireComments{Edges: []wireEdge{}}
	if pageIdx < len(pages) {
		page := pages[pageIdx]
		hasNext := pageIdx+1 < len(pages)
		for i, m := range page {
			edge := wireEdge{
				Node: wireNode{
					ContentOffsetSeconds: m.Offset,
					Commenter:            &wireCommenter{DisplayName: m.Author},
					Message:              wireMessage{Fragments: []wireFragment{{Text: m.Text}}},
				},
			}
			if hasNext && i == len(page)-1 {
				edge.Cursor = fmt.Sprintf("page-%d", pageIdx+1)
			}
			comments.Edges = append(comments.Edges, edge)
		}
		comments.PageInfo.HasNextPage = hasNext
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode([]wireEnvelope{
		{Data: wireData{Video: wireVideo{Comments: comments}}},
	})
}

// cursorIndex maps the wire cursor back to a page index: the empty cursor is
// the first page, "page-N" is page N.
func cursorIndex(cursor string) int {
	if cursor == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(cursor, "page-"))
	if err != nil {
		return 0
	}
	return n
}
