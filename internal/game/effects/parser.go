// Package effects extracts game-mechanical effects the model embeds in its
// replies as sentinel tags of the form <!--[DAMAGE:12]-->, <!--[XP:40]--> or
// <!--[HEAL]-->.
package effects

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"dungeon-chat/internal/logger"
)

// Kind identifies the effect a sentinel tag encodes
type Kind string

const (
	KindDamage Kind = "damage"
	KindXP     Kind = "xp"
	KindHeal   Kind = "heal"
)

// Effect is one structured event extracted from a reply. Amount is unused
// for heal effects; the progression engine rolls the heal value itself.
type Effect struct {
	Kind   Kind
	Amount int
}

// Result is the outcome of parsing one raw reply
type Result struct {
	// Cleaned is the reply with every well-formed sentinel removed and
	// whitespace collapsed. Parsing Cleaned again yields no effects and
	// identical text.
	Cleaned string
	// Effects holds the recognized effects in the order they appeared
	Effects []Effect
	// Warnings describes sentinels that looked like tags but were
	// malformed; those are left in place untouched
	Warnings []string
}

// sentinel matches anything shaped like an effect tag, well-formed or not.
// Validation of the tag name and payload happens afterwards so malformed
// tags can be reported without being stripped.
var sentinel = regexp.MustCompile(`<!--\s*\[\s*([A-Za-z]+)\s*(?::\s*([^\]]*?)\s*)?\]\s*-->`)

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	spaceRun      = regexp.MustCompile(`[ \t]{2,}`)
	blankRun      = regexp.MustCompile(`\n{3,}`)
)

// Parse extracts effects from a raw reply and produces the cleaned display
// text. Malformed sentinels never fail the parse; they are skipped with a
// warning and survive into the cleaned text verbatim.
func Parse(raw string) Result {
	var result Result

	matches := sentinel.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		result.Cleaned = collapse(raw)
		return result
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		full := raw[m[0]:m[1]]
		tag := strings.ToUpper(raw[m[2]:m[3]])
		payload := ""
		if m[4] >= 0 {
			payload = raw[m[4]:m[5]]
		}

		effect, ok := decode(tag, payload)
		if !ok {
			logger.Log.WithFields(logrus.Fields{"tag": full}).Warn("Ignoring malformed effect tag")
			result.Warnings = append(result.Warnings, "malformed effect tag: "+full)
			continue
		}

		out.WriteString(raw[last:m[0]])
		last = m[1]
		result.Effects = append(result.Effects, effect)
	}
	out.WriteString(raw[last:])

	result.Cleaned = collapse(out.String())
	return result
}

// decode validates a candidate tag. DAMAGE and XP require a non-negative
// integer payload; HEAL takes none, though a numeric payload is tolerated
// and ignored.
func decode(tag, payload string) (Effect, bool) {
	switch tag {
	case "DAMAGE", "XP":
		amount, err := strconv.Atoi(payload)
		if err != nil || amount < 0 {
			return Effect{}, false
		}
		if tag == "DAMAGE" {
			return Effect{Kind: KindDamage, Amount: amount}, true
		}
		return Effect{Kind: KindXP, Amount: amount}, true
	case "HEAL":
		if payload != "" {
			if amount, err := strconv.Atoi(payload); err != nil || amount < 0 {
				return Effect{}, false
			}
		}
		return Effect{Kind: KindHeal}, true
	default:
		return Effect{}, false
	}
}

// collapse tidies the whitespace holes left by stripped tags. Every
// transformation here is idempotent, which keeps Parse idempotent.
func collapse(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	s = trailingSpace.ReplaceAllString(s, "\n")
	s = blankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
