// Package progression advances a character's stats from the effects a reply
// carried. Apply is a pure state transition except for the heal roll, which
// is injectable for tests.
package progression

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"dungeon-chat/internal/game/effects"
	"dungeon-chat/internal/game/rulemode"
	"dungeon-chat/internal/logger"
)

const (
	// BaseHealth is a fresh character's health; each level adds HealthPerLevel
	BaseHealth     = 100
	HealthPerLevel = 10

	healMin = 6
	healMax = 12
)

// Engine applies effects to characters
type Engine struct {
	healRoll func() int
}

// NewEngine returns an engine with the standard 6-12 heal roll
func NewEngine() *Engine {
	return &Engine{
		healRoll: func() int { return healMin + rand.IntN(healMax-healMin+1) },
	}
}

// NewEngineWithHealRoll returns an engine with a custom heal roll,
// used by tests to pin the rolled value
func NewEngineWithHealRoll(roll func() int) *Engine {
	return &Engine{healRoll: roll}
}

// Character is the slice of character state the engine operates on
type Character struct {
	Class      string
	Health     int
	SpellPower int
	Strength   int
	XP         int
	Level      int
	KO         bool
}

// Outcome summarizes what a batch of effects did to the character
type Outcome struct {
	LeveledUp    bool
	LevelsGained int
	Healed       int
	KO           bool
}

// MaxHealth is the heal ceiling for a character of the given level
func MaxHealth(level int) int {
	return BaseHealth + HealthPerLevel*(level-1)
}

// Apply processes effects in emission order and returns the new character
// state. Damage clamps at zero, healing clamps at MaxHealth, and experience
// runs the level-up loop one threshold crossing at a time so per-level side
// effects land once each.
func (e *Engine) Apply(ch Character, effs []effects.Effect) (Character, Outcome) {
	var out Outcome

	for _, eff := range effs {
		switch eff.Kind {
		case effects.KindDamage:
			ch.Health -= eff.Amount
			if ch.Health < 0 {
				ch.Health = 0
			}
		case effects.KindHeal:
			healed := e.healRoll()
			ch.Health += healed
			if maxHealth := MaxHealth(ch.Level); ch.Health > maxHealth {
				ch.Health = maxHealth
			}
			out.Healed += healed
		case effects.KindXP:
			ch.XP += eff.Amount
			for ch.XP >= ch.Level*100 {
				ch.XP -= ch.Level * 100
				ch = levelUp(ch)
				out.LevelsGained++
			}
		}
	}

	out.LeveledUp = out.LevelsGained > 0
	ch.KO = ch.Health == 0
	out.KO = ch.KO

	if len(effs) > 0 {
		logger.Log.WithFields(logrus.Fields{
			"effects":       len(effs),
			"health":        ch.Health,
			"level":         ch.Level,
			"xp":            ch.XP,
			"levels_gained": out.LevelsGained,
			"ko":            ch.KO,
		}).Debug("Applied effects to character")
	}

	return ch, out
}

// LevelUp grants one level directly, outside the XP loop
func (e *Engine) LevelUp(ch Character) Character {
	return levelUp(ch)
}

// levelUp applies the per-level gains: +1 level, +10 health, and +1 to the
// class-designated primary stat.
func levelUp(ch Character) Character {
	ch.Level++
	ch.Health += HealthPerLevel
	if rulemode.PrimaryStat(ch.Class) == rulemode.StatSpellPower {
		ch.SpellPower++
	} else {
		ch.Strength++
	}
	return ch
}
