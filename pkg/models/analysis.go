package models

// Category is one of the closed set of reaction categories a message can
// score in.
type Category string

const (
	CategoryFun      Category = "fun"
	CategoryHype     Category = "hype"
	CategoryBan      Category = "ban"
	CategorySub      Category = "sub"
	CategoryDonation Category = "donation"
)

// Categories lists all categories in dominant-tag priority order.
var Categories = []Category{
	CategoryFun,
	CategoryHype,
	CategoryBan,
	CategorySub,
	CategoryDonation,
}

// CategoryScores maps every category to a non-negative score. All five keys
// are always present; zero means unused.
type CategoryScores map[Category]float64

// NewCategoryScores returns a score vector with every category at zero.
func NewCategoryScores() CategoryScores {
	cs := make(CategoryScores, len(Categories))
	for _, c := range Categories {
		cs[c] = 0
	}
	return cs
}

// MessageScore is the scorer's verdict for a single message.
type MessageScore struct {
	ReactionScore float64
	EmoteCount    int
	Categories    CategoryScores
}

// ChatBucket aggregates every message whose offset falls inside one
// fixed-width time window [StartSec, StartSec+windowSec).
type ChatBucket struct {
	StartSec          int
	MessageCount      int
	ReactionScore     float64
	EmoteCount        int
	CategoryScores    CategoryScores
	MessageTimestamps []int
	SampleMessages    []string
}

// Moment is a selected clip-worthy time range.
type Moment struct {
	StartSec       int            `json:"startSec"`
	EndSec         int            `json:"endSec"`
	Score          float64        `json:"score"`
	MessagesPerSec float64        `json:"messagesPerSec"`
	MessageCount   int            `json:"messageCount"`
	Tag            Category       `json:"tag"`
	CategoryScores CategoryScores `json:"categoryScores"`
	BurstScore     float64        `json:"burstScore"`
	SampleMessages []string       `json:"sampleMessages"`
}

// TimelinePoint is one populated bucket on the message-density timeline.
type TimelinePoint struct {
	Sec   int `json:"sec"`
	Count int `json:"count"`
}

// AnalysisResult is the shaped output of one analysis run.
type AnalysisResult struct {
	VideoID         string          `json:"videoId"`
	TotalMessages   int             `json:"totalMessages"`
	BucketsAnalyzed int             `json:"bucketsAnalyzed"`
	Moments         []Moment        `json:"moments"`
	Timeline        []TimelinePoint `json:"timeline"`
}

// SearchMatch is one chat message matching a search query.
type SearchMatch struct {
	OffsetSeconds int    `json:"offsetSeconds"`
	Author        string `json:"author"`
	Text          string `json:"text"`
}

// SearchResult is the shaped output of one chat search run.
type SearchResult struct {
	VideoID        string        `json:"videoId"`
	Query          string        `json:"query"`
	Matches        []SearchMatch `json:"matches"`
	TotalScanned   int           `json:"totalScanned"`
	PagesProcessed int           `json:"pagesProcessed"`
	Truncated      bool          `json:"truncated"`
}

// ScanStats is the persisted service-level counter snapshot.
type ScanStats struct {
	ScansPerformed int64 `json:"scansPerformed"`
}
