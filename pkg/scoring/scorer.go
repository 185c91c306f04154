package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Mindyourbiz9000/clippnj/pkg/models"
)

const (
	banBonus     = 15.0
	giftMinCount = 15
	giftPerSub   = 0.6
	giftBonusCap = 20.0
	emoteBonus   = 2.0
	keywordBonus = 1.0
	capsBonus    = 0.5
	capsMinLen   = 5
)

var giftPattern = regexp.MustCompile(`(?i)is gifting (\d+)`)

// ScoreMessage classifies one chat message. It is a pure function: no I/O,
// no shared mutable state, same input always yields the same output.
//
// Privileged events run first so that high-value system messages (bans,
// mass gifts) are not diluted by the ordinary keyword weights. The sub
// keyword loop only runs for messages that earned a qualifying gift bonus;
// small gifts score nothing in the sub category at all.
func ScoreMessage(msg models.ChatMessage) models.MessageScore {
	score := models.MessageScore{Categories: models.NewCategoryScores()}

	lower := strings.ToLower(msg.Text)

	if strings.Contains(lower, "has been banned") {
		score.ReactionScore += banBonus
		score.Categories[models.CategoryBan] += banBonus
	}

	giftCredited := false
	if m := giftPattern.FindStringSubmatch(msg.Text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= giftMinCount {
			bonus := math.Min(math.Round(float64(n)*giftPerSub), giftBonusCap)
			score.ReactionScore += bonus
			score.Categories[models.CategorySub] += bonus
			giftCredited = true
		}
	}

	// One category credit per emote fragment, first matching category wins.
	for _, frag := range msg.Fragments {
		emote, ok := frag.(models.EmoteFragment)
		if !ok {
			continue
		}
		for _, cat := range models.Categories {
			if _, found := categoryRules[cat].emotes[emote.Name]; found {
				score.ReactionScore += emoteBonus
				score.EmoteCount++
				score.Categories[cat] += emoteBonus
				break
			}
		}
	}

	// At most one keyword match counts per category.
	for _, cat := range models.Categories {
		if cat == models.CategorySub && !giftCredited {
			continue
		}
		for _, re := range categoryRules[cat].keywords {
			if re.MatchString(msg.Text) {
				score.ReactionScore += keywordBonus
				score.Categories[cat] += keywordBonus
				break
			}
		}
	}

	if isAllCapsShout(msg.Text) {
		score.ReactionScore += capsBonus
		score.Categories[models.CategoryHype] += capsBonus
	}

	return score
}

// isAllCapsShout reports whether the text reads as sustained shouting:
// at least capsMinLen bytes, at least one ASCII letter, and identical to
// its own uppercase form.
func isAllCapsShout(text string) bool {
	if len(text) < capsMinLen {
		return false
	}
	hasLetter := false
	for i := 0; i < len(text); i++ {
		if text[i] >= 'A' && text[i] <= 'Z' {
			hasLetter = true
		}
		if text[i] >= 'a' && text[i] <= 'z' {
			return false
		}
	}
	return hasLetter && text == strings.ToUpper(text)
}
