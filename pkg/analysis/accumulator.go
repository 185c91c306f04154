// Package analysis turns a stream of replay chat messages into clip-worthy
// moments: messages are deposited into fixed-width time buckets, each bucket
// gets a composite score, and the peaks are selected as moments.
package analysis

import (
	"github.com/Mindyourbiz9000/clippnj/pkg/models"
	"github.com/Mindyourbiz9000/clippnj/pkg/scoring"
)

const (
	// maxSampleMessages caps the representative text kept per bucket so a
	// spam-heavy window cannot grow memory without bound.
	maxSampleMessages = 10
	// sampleTextLimit is the number of characters of raw text kept per sample.
	sampleTextLimit = 80
)

// Accumulator deposits scored messages into fixed-width time buckets keyed by
// the floor of the message offset. It is single-writer: the iterator callback
// adds messages, and readers consume the bucket map only after ingestion has
// completed.
type Accumulator struct {
	windowSec     int
	buckets       map[int]*models.ChatBucket
	totalMessages int
}

// NewAccumulator creates an accumulator with the given bucket width in
// seconds. Widths below one second fall back to the default window.
func NewAccumulator(windowSec int) *Accumulator {
	if windowSec <= 0 {
		windowSec = DefaultWindowSec
	}
	return &Accumulator{
		windowSec: windowSec,
		buckets:   make(map[int]*models.ChatBucket),
	}
}

// Add scores one message and folds it into its bucket. Buckets are created on
// the first message of their window; category scores are only ever added to,
// never decremented.
func (a *Accumulator) Add(msg models.ChatMessage) {
	key := (msg.OffsetSeconds / a.windowSec) * a.windowSec

	bucket, ok := a.buckets[key]
	if !ok {
		bucket = &models.ChatBucket{
			StartSec:       key,
			CategoryScores: models.NewCategoryScores(),
		}
		a.buckets[key] = bucket
	}

	bucket.MessageCount++
	bucket.MessageTimestamps = append(bucket.MessageTimestamps, msg.OffsetSeconds)
	a.totalMessages++

	score := scoring.ScoreMessage(msg)
	bucket.ReactionScore += score.ReactionScore
	bucket.EmoteCount += score.EmoteCount
	for cat, v := range score.Categories {
		bucket.CategoryScores[cat] += v
	}

	if score.ReactionScore > 0 && len(bucket.SampleMessages) < maxSampleMessages {
		bucket.SampleMessages = append(bucket.SampleMessages, truncateSample(msg.Text))
	}
}

// AddBatch adds every message of one page in source order.
func (a *Accumulator) AddBatch(messages []models.ChatMessage) {
	for _, msg := range messages {
		a.Add(msg)
	}
}

// Buckets returns the internal bucket map for read-only consumption.
func (a *Accumulator) Buckets() map[int]*models.ChatBucket {
	return a.buckets
}

// TotalMessages returns the number of messages ingested so far.
func (a *Accumulator) TotalMessages() int {
	return a.totalMessages
}

// WindowSec returns the bucket width this accumulator was built with.
func (a *Accumulator) WindowSec() int {
	return a.windowSec
}

// truncateSample keeps the first sampleTextLimit characters without splitting
// a multi-byte rune (sample text routinely carries emoji).
func truncateSample(text string) string {
	if len(text) <= sampleTextLimit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= sampleTextLimit {
		return text
	}
	return string(runes[:sampleTextLimit])
}
