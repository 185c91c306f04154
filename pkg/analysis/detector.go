package analysis

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/Mindyourbiz9000/clippnj/pkg/models"
)

// Pipeline defaults. Zero fields in DetectorOptions fall back to these.
const (
	DefaultWindowSec       = 30
	DefaultClipDurationSec = 30
	DefaultMinGapSec       = 45

	// ReactionDelaySec shifts each moment start backwards to compensate for
	// the lag between the on-screen event and the chat reacting to it.
	ReactionDelaySec = 20

	// burstWindowSec is the sliding sub-window used for intra-bucket burst
	// detection.
	burstWindowSec = 5
	// burstMinTimestamps is the minimum bucket size before burst detection
	// is attempted at all.
	burstMinTimestamps = 10
	// burstMinRate is the msgs/sec floor below which a window is not a burst.
	burstMinRate = 5.0
)

// DetectorOptions tunes moment selection. The zero value of each field means
// "use the default"; ThresholdFactor is taken as-is so callers should start
// from DefaultDetectorOptions.
type DetectorOptions struct {
	WindowSec       int
	ClipDurationSec int
	MinGapSec       int
	ThresholdFactor float64
	// MaxHighlights caps the number of emitted moments; 0 means unlimited.
	MaxHighlights int
}

// DefaultDetectorOptions returns the standard tuning.
func DefaultDetectorOptions() DetectorOptions {
	return DetectorOptions{
		WindowSec:       DefaultWindowSec,
		ClipDurationSec: DefaultClipDurationSec,
		MinGapSec:       DefaultMinGapSec,
		ThresholdFactor: 1.0,
	}
}

// candidate is one bucket's composite verdict, carrying the merged view the
// emitted moment is shaped from.
type candidate struct {
	key    int
	score  float64
	burst  float64
	merged mergedBucket
}

// mergedBucket is the virtual union of a bucket with its immediate successor.
type mergedBucket struct {
	messageCount  int
	reactionScore float64
	emoteCount    int
	categories    models.CategoryScores
	timestamps    []int
	samples       []string
}

// DetectMoments consumes a completed bucket map and returns clip-worthy
// moments in chronological order. The bucket map is treated as read-only.
//
// Selection runs in three phases: a per-window composite score (burst,
// velocity, diversity over a merged two-bucket view), an adaptive threshold
// of mean plus ThresholdFactor standard deviations, and greedy
// non-overlapping selection by descending score.
func DetectMoments(buckets map[int]*models.ChatBucket, opts DetectorOptions) []models.Moment {
	if opts.WindowSec <= 0 {
		opts.WindowSec = DefaultWindowSec
	}
	if opts.ClipDurationSec <= 0 {
		opts.ClipDurationSec = DefaultClipDurationSec
	}
	if opts.MinGapSec <= 0 {
		opts.MinGapSec = DefaultMinGapSec
	}

	if len(buckets) == 0 {
		return []models.Moment{}
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	// Phase 1: composite score per window.
	candidates := make([]candidate, 0, len(keys))
	for i, key := range keys {
		bucket := buckets[key]

		var next *models.ChatBucket
		if i+1 < len(keys) {
			next = buckets[keys[i+1]]
		}
		merged := mergeWithNext(bucket, next)

		burst := burstScore(merged.timestamps)
		velocity := velocityMultiplier(buckets, keys, i)
		diversity := diversityBonus(merged.samples)

		if spam := spamScore(merged.samples); spam > 0 {
			slog.Debug("Repetitive sample window",
				"bucket_start", key, "spam_score", spam)
		}

		raw := float64(merged.messageCount) +
			merged.reactionScore*3 +
			float64(merged.emoteCount)*2 +
			burst*0.5
		candidates = append(candidates, candidate{
			key:    key,
			score:  raw * velocity * diversity,
			burst:  burst,
			merged: merged,
		})
	}

	// Phase 2: adaptive threshold over all window composites.
	threshold := adaptiveThreshold(candidates, opts.ThresholdFactor)
	survivors := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.score >= threshold {
			survivors = append(survivors, c)
		}
	}

	// Phase 3: greedy non-overlapping selection by descending score.
	sort.Slice(survivors, func(i, j int) bool { return survivors[i].score > survivors[j].score })

	selected := make([]models.Moment, 0, len(survivors))
	for _, c := range survivors {
		start := c.key - ReactionDelaySec
		if start < 0 {
			start = 0
		}
		end := start + opts.ClipDurationSec

		if overlapsSelected(start, end, selected, opts.MinGapSec) {
			continue
		}

		selected = append(selected, models.Moment{
			StartSec:       start,
			EndSec:         end,
			Score:          c.score,
			MessagesPerSec: roundTenth(float64(c.merged.messageCount) / float64(opts.WindowSec)),
			MessageCount:   c.merged.messageCount,
			Tag:            dominantTag(c.merged.categories),
			CategoryScores: c.merged.categories,
			BurstScore:     c.burst,
			SampleMessages: c.merged.samples,
		})
		if opts.MaxHighlights > 0 && len(selected) == opts.MaxHighlights {
			break
		}
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].StartSec < selected[j].StartSec })
	return selected
}

// mergeWithNext virtually merges a bucket with its immediate successor in key
// order. Counts, scores, and category totals are summed; timestamps are
// concatenated; samples keep prefix order up to the per-bucket cap. The
// source buckets are not touched.
func mergeWithNext(bucket, next *models.ChatBucket) mergedBucket {
	merged := mergedBucket{
		messageCount:  bucket.MessageCount,
		reactionScore: bucket.ReactionScore,
		emoteCount:    bucket.EmoteCount,
		categories:    models.NewCategoryScores(),
		timestamps:    make([]int, 0, len(bucket.MessageTimestamps)),
		samples:       make([]string, 0, maxSampleMessages),
	}
	for cat, v := range bucket.CategoryScores {
		merged.categories[cat] = v
	}
	merged.timestamps = append(merged.timestamps, bucket.MessageTimestamps...)
	merged.samples = append(merged.samples, bucket.SampleMessages...)

	if next == nil {
		return merged
	}

	merged.messageCount += next.MessageCount
	merged.reactionScore += next.ReactionScore
	merged.emoteCount += next.EmoteCount
	for cat, v := range next.CategoryScores {
		merged.categories[cat] += v
	}
	merged.timestamps = append(merged.timestamps, next.MessageTimestamps...)
	for _, s := range next.SampleMessages {
		if len(merged.samples) == maxSampleMessages {
			break
		}
		merged.samples = append(merged.samples, s)
	}
	return merged
}

// burstScore measures the densest 5-second sub-window of a bucket. Sparse
// buckets score zero; past the msgs/sec floor the kernel grows superlinearly
// with density so a tight spike beats the same volume spread out.
func burstScore(timestamps []int) float64 {
	if len(timestamps) < burstMinTimestamps {
		return 0
	}

	sorted := make([]int, len(timestamps))
	copy(sorted, timestamps)
	sort.Ints(sorted)

	maxCount := 0
	j := 0
	for i := range sorted {
		if j < i {
			j = i
		}
		for j < len(sorted) && sorted[j]-sorted[i] < burstWindowSec {
			j++
		}
		if j-i > maxCount {
			maxCount = j - i
		}
	}

	msgsPerSec := float64(maxCount) / burstWindowSec
	if msgsPerSec < burstMinRate {
		return 0
	}
	return roundTenth(msgsPerSec * (msgsPerSec / burstMinRate))
}

// spamScore flags windows whose samples are dominated by one repeated line.
// Derived from the bounded sample only, so it sees scoring messages, not the
// whole bucket. Reported for diagnostics; it does not enter the composite.
func spamScore(samples []string) float64 {
	if len(samples) < 3 {
		return 0
	}
	freq := make(map[string]int, len(samples))
	maxFreq := 0
	for _, s := range samples {
		n := normalizeSample(s)
		freq[n]++
		if freq[n] > maxFreq {
			maxFreq = freq[n]
		}
	}
	if float64(maxFreq)/float64(len(samples)) >= 0.6 && maxFreq >= 3 {
		return float64(maxFreq) * 3
	}
	return 0
}

// velocityMultiplier rewards ramp-ups: the current bucket's raw message count
// against the rolling average of up to two preceding populated buckets.
func velocityMultiplier(buckets map[int]*models.ChatBucket, keys []int, i int) float64 {
	if i == 0 {
		return 1.0
	}

	count := 0
	sum := 0
	for j := i - 1; j >= 0 && j >= i-2; j-- {
		sum += buckets[keys[j]].MessageCount
		count++
	}
	prevAvg := float64(sum) / float64(count)

	current := float64(buckets[keys[i]].MessageCount)
	if prevAvg < 1 {
		if current > 5 {
			return 2.0
		}
		return 1.0
	}

	ratio := current / prevAvg
	switch {
	case ratio >= 4:
		return 2.5
	case ratio >= 3:
		return 2.0
	case ratio >= 2:
		return 1.5
	case ratio >= 1.5:
		return 1.2
	default:
		return 1.0
	}
}

// diversityBonus scales the composite by sample variety: all-identical
// samples are worth half of an all-distinct window.
func diversityBonus(samples []string) float64 {
	if len(samples) < 2 {
		return 1.0
	}
	distinct := make(map[string]struct{}, len(samples))
	for _, s := range samples {
		distinct[normalizeSample(s)] = struct{}{}
	}
	uniqueRatio := float64(len(distinct)) / float64(len(samples))
	return 0.5 + uniqueRatio*0.5
}

// adaptiveThreshold returns mean + factor * population stddev over all window
// composites. With identical buckets stddev is zero and the threshold is the
// mean.
func adaptiveThreshold(candidates []candidate, factor float64) float64 {
	if len(candidates) == 0 {
		return 0
	}
	var sum float64
	for _, c := range candidates {
		sum += c.score
	}
	mean := sum / float64(len(candidates))

	var variance float64
	for _, c := range candidates {
		d := c.score - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(candidates)))

	return mean + factor*stddev
}

// overlapsSelected reports whether [start, end] comes within minGap seconds
// of any already-selected moment.
func overlapsSelected(start, end int, selected []models.Moment, minGap int) bool {
	for _, m := range selected {
		if start < m.EndSec+minGap && end > m.StartSec-minGap {
			return true
		}
	}
	return false
}

// dominantTag picks the highest-scoring category. Ties resolve in the fixed
// priority order of models.Categories; an all-zero vector defaults to hype.
func dominantTag(categories models.CategoryScores) models.Category {
	tag := models.CategoryHype
	best := 0.0
	for _, cat := range models.Categories {
		if categories[cat] > best {
			best = categories[cat]
			tag = cat
		}
	}
	return tag
}

func normalizeSample(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
