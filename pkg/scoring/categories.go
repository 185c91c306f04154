// Package scoring classifies chat messages into reaction categories.
//
// Category tables are frozen at compile time: there is no runtime
// registration, and the regexes are compiled once at program start and
// shared as immutable globals.
package scoring

import (
	"regexp"

	"github.com/Mindyourbiz9000/clippnj/pkg/models"
)

// categoryRule bundles the match atoms for one category: case-insensitive
// keyword patterns and an exact-match emote name set.
type categoryRule struct {
	keywords []*regexp.Regexp
	emotes   map[string]struct{}
}

var categoryRules = map[models.Category]categoryRule{
	models.CategoryFun: {
		keywords: compileAll(
			`\bm+d+r+\b`,
			`\bp+t+d+r+\b`,
			`\blmao+\b`,
			`\brofl\b`,
			`\blo+l\b`,
			`\bkekw\b`,
			`(ha){3,}`,
			`(he){3,}`,
			`(ja){3,}`,
			`xd{2,}`,
			`\bdead\b`,
			`crying`,
			`😂`,
			`🤣`,
		),
		emotes: emoteSet(
			"LUL", "OMEGALUL", "KEKW", "LOL", "ICANT", "KEKLEO", "PepeLaugh", "MDR",
		),
	},
	models.CategoryHype: {
		keywords: compileAll(
			`\bpog(gers|champ)?\b`,
			`let'?s ?go+`,
			`\binsane\b`,
			`\bcracked\b`,
			`\bclutch\b`,
			`\bomg+\b`,
			`\bwtf\b`,
			`holy shit`,
			`\bno ?way\b`,
			`\bnani\b`,
			`\bhypers\b`,
			`\bgg\b`,
		),
		emotes: emoteSet(
			"PogChamp", "Pog", "POGGERS", "HYPERS", "PagMan", "EZ", "Clap", "GIGACHAD", "catJAM",
		),
	},
	models.CategoryBan: {
		keywords: compileAll(
			`has been banned`,
		),
		emotes: emoteSet("BOP", "Modding", "HammerTime"),
	},
	models.CategorySub: {
		keywords: compileAll(
			`is gifting`,
			`\bgift(ed)? (a )?subs?\b`,
			`\bsub hype\b`,
		),
		emotes: emoteSet("SeemsGood", "GivePLZ", "TwitchUnity"),
	},
	models.CategoryDonation: {
		keywords: compileAll(
			`\bcheer\d+`,
			`\bbits\b`,
			`\bdon(o|at(e|ion|ed))s?\b`,
			`\d+ ?(€|\$|£)`,
			`(€|\$|£) ?\d+`,
		),
		emotes: emoteSet("Kappa", "Cheer", "bleedPurple"),
	},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
	}
	return compiled
}

func emoteSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
