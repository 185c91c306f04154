package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindyourbiz9000/clippnj/pkg/models"
)

func textMsg(text string) models.ChatMessage {
	return models.NewChatMessage(0, "viewer", []models.Fragment{models.TextFragment{Text: text}})
}

func TestScoreMessage_PrivilegedEvents(t *testing.T) {
	t.Run("ban message gets the full ban bonus", func(t *testing.T) {
		score := ScoreMessage(textMsg("xXx has been banned."))

		// 15 privileged + 1 keyword
		assert.Equal(t, 16.0, score.Categories[models.CategoryBan])
		assert.Equal(t, 16.0, score.ReactionScore)
	})

	t.Run("ban match is case insensitive", func(t *testing.T) {
		score := ScoreMessage(textMsg("Troll HAS BEEN BANNED"))

		assert.GreaterOrEqual(t, score.Categories[models.CategoryBan], 15.0)
	})

	t.Run("mass gift at threshold earns proportional bonus", func(t *testing.T) {
		score := ScoreMessage(textMsg("Foo is gifting 20 subs to the community!"))

		// round(20*0.6)=12 privileged + 1 keyword
		assert.Equal(t, 13.0, score.Categories[models.CategorySub])
	})

	t.Run("gift bonus is capped", func(t *testing.T) {
		score := ScoreMessage(textMsg("Whale is gifting 100 subs"))

		// min(round(100*0.6), 20)=20 privileged + 1 keyword
		assert.Equal(t, 21.0, score.Categories[models.CategorySub])
	})

	t.Run("small gift earns no sub credit at all", func(t *testing.T) {
		score := ScoreMessage(textMsg("Bar is gifting 10 subs"))

		assert.Equal(t, 0.0, score.Categories[models.CategorySub])
		assert.Equal(t, 0.0, score.ReactionScore)
	})

	t.Run("sub keywords without a gift event score nothing", func(t *testing.T) {
		score := ScoreMessage(textMsg("thanks for the gifted sub"))

		assert.Equal(t, 0.0, score.Categories[models.CategorySub])
	})
}

func TestScoreMessage_Emotes(t *testing.T) {
	t.Run("known emote credits its category once", func(t *testing.T) {
		msg := models.NewChatMessage(5, "viewer", []models.Fragment{
			models.EmoteFragment{Name: "LUL", ID: "425618"},
		})
		score := ScoreMessage(msg)

		assert.Equal(t, 2.0, score.Categories[models.CategoryFun])
		assert.Equal(t, 1, score.EmoteCount)
		assert.Equal(t, 2.0, score.ReactionScore)
	})

	t.Run("unknown emote is not counted", func(t *testing.T) {
		msg := models.NewChatMessage(5, "viewer", []models.Fragment{
			models.EmoteFragment{Name: "obscureEmote42", ID: "1"},
		})
		score := ScoreMessage(msg)

		assert.Equal(t, 0, score.EmoteCount)
		assert.Equal(t, 0.0, score.ReactionScore)
	})

	t.Run("each emote fragment scores independently", func(t *testing.T) {
		msg := models.NewChatMessage(5, "viewer", []models.Fragment{
			models.EmoteFragment{Name: "OMEGALUL", ID: "1"},
			models.TextFragment{Text: " "},
			models.EmoteFragment{Name: "PagMan", ID: "2"},
		})
		score := ScoreMessage(msg)

		assert.Equal(t, 2, score.EmoteCount)
		assert.Equal(t, 2.0, score.Categories[models.CategoryFun])
		assert.Equal(t, 2.0, score.Categories[models.CategoryHype])
	})

	t.Run("emote name that doubles as a keyword earns both credits", func(t *testing.T) {
		msg := models.NewChatMessage(5, "viewer", []models.Fragment{
			models.EmoteFragment{Name: "KEKW", ID: "1"},
		})
		score := ScoreMessage(msg)

		// The fragment credits the emote, and the joined text still goes
		// through the keyword pass.
		assert.Equal(t, 1, score.EmoteCount)
		assert.Equal(t, 3.0, score.Categories[models.CategoryFun])
		assert.Equal(t, 3.0, score.ReactionScore)
	})
}

func TestScoreMessage_Keywords(t *testing.T) {
	t.Run("at most one keyword hit per category", func(t *testing.T) {
		score := ScoreMessage(textMsg("lol lmao rofl hahaha"))

		assert.Equal(t, 1.0, score.Categories[models.CategoryFun])
		assert.Equal(t, 1.0, score.ReactionScore)
	})

	t.Run("distinct categories stack", func(t *testing.T) {
		score := ScoreMessage(textMsg("lol that was insane"))

		assert.Equal(t, 1.0, score.Categories[models.CategoryFun])
		assert.Equal(t, 1.0, score.Categories[models.CategoryHype])
		assert.Equal(t, 2.0, score.ReactionScore)
	})

	t.Run("french laughter counts as fun", func(t *testing.T) {
		for _, text := range []string{"mdr", "MDRRR", "ptdrrr trop fort"} {
			score := ScoreMessage(textMsg(text))
			assert.Equal(t, 1.0, score.Categories[models.CategoryFun], "text %q", text)
		}
	})

	t.Run("donation patterns", func(t *testing.T) {
		for _, text := range []string{"cheer100", "merci pour les bits", "don de 5€", "$20 incoming"} {
			score := ScoreMessage(textMsg(text))
			assert.Equal(t, 1.0, score.Categories[models.CategoryDonation], "text %q", text)
		}
	})
}

func TestScoreMessage_AllCapsBonus(t *testing.T) {
	// Sample texts deliberately avoid every keyword table so the caps bonus
	// is the only contribution.
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"sustained shout", "INCREDIBLE RUN", 0.5},
		{"too short", "WOW", 0},
		{"digits only", "123456", 0},
		{"mixed case", "Suuuuper", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ScoreMessage(textMsg(tt.text))
			assert.Equal(t, tt.want, score.Categories[models.CategoryHype])
			assert.Equal(t, tt.want, score.ReactionScore)
		})
	}
}

func TestScoreMessage_Purity(t *testing.T) {
	msg := models.NewChatMessage(42, "viewer", []models.Fragment{
		models.TextFragment{Text: "POG that clutch was insane "},
		models.EmoteFragment{Name: "PogChamp", ID: "88"},
	})

	first := ScoreMessage(msg)
	second := ScoreMessage(msg)

	require.Equal(t, first, second)
	assert.GreaterOrEqual(t, first.ReactionScore, 0.0)
	assert.GreaterOrEqual(t, first.EmoteCount, 0)
	for _, cat := range models.Categories {
		assert.GreaterOrEqual(t, first.Categories[cat], 0.0)
	}
}

func TestScoreMessage_Neutral(t *testing.T) {
	score := ScoreMessage(textMsg("how long has the stream been live"))

	assert.Equal(t, 0.0, score.ReactionScore)
	assert.Equal(t, 0, score.EmoteCount)
	for _, cat := range models.Categories {
		assert.Equal(t, 0.0, score.Categories[cat], "category %s", cat)
	}
}
