package progression

import (
	"testing"

	"dungeon-chat/internal/game/effects"
)

func newWarrior() Character {
	return Character{Class: "warrior", Health: 100, Strength: 10, Level: 1}
}

func TestApply_DamageReducesHealth(t *testing.T) {
	engine := NewEngine()

	ch, out := engine.Apply(newWarrior(), []effects.Effect{{Kind: effects.KindDamage, Amount: 30}})

	if ch.Health != 70 {
		t.Errorf("Expected health 70, got %d", ch.Health)
	}
	if ch.KO || out.KO {
		t.Error("Expected character not KO'd")
	}
}

func TestApply_DamageClampsAtZeroAndSetsKO(t *testing.T) {
	engine := NewEngine()

	ch, out := engine.Apply(newWarrior(), []effects.Effect{{Kind: effects.KindDamage, Amount: 250}})

	if ch.Health != 0 {
		t.Errorf("Expected health clamped at 0, got %d", ch.Health)
	}
	if !ch.KO || !out.KO {
		t.Error("Expected character KO'd at 0 health")
	}
}

func TestApply_DamageAppliedInTagOrder(t *testing.T) {
	engine := NewEngine()

	effs := []effects.Effect{
		{Kind: effects.KindDamage, Amount: 60},
		{Kind: effects.KindDamage, Amount: 70},
		{Kind: effects.KindDamage, Amount: 5},
	}
	ch, _ := engine.Apply(newWarrior(), effs)

	// 100 - 60 - 70 clamps at 0; the trailing 5 keeps it there
	if ch.Health != 0 {
		t.Errorf("Expected health 0, got %d", ch.Health)
	}
	if !ch.KO {
		t.Error("Expected KO after cumulative damage")
	}
}

func TestApply_XPGrantRunsLevelUpLoop(t *testing.T) {
	engine := NewEngine()

	ch, out := engine.Apply(newWarrior(), []effects.Effect{{Kind: effects.KindXP, Amount: 250}})

	// 250 XP at level 1: one threshold of 100 is consumed, then 150 < 200
	if ch.Level != 2 {
		t.Errorf("Expected level 2, got %d", ch.Level)
	}
	if ch.XP != 150 {
		t.Errorf("Expected xp 150, got %d", ch.XP)
	}
	if ch.Health != 110 {
		t.Errorf("Expected health 110 after one level-up, got %d", ch.Health)
	}
	if ch.Strength != 11 {
		t.Errorf("Expected strength 11, got %d", ch.Strength)
	}
	if !out.LeveledUp || out.LevelsGained != 1 {
		t.Errorf("Expected one level gained, got %+v", out)
	}
}

func TestApply_SingleGrantCanLevelUpTwice(t *testing.T) {
	engine := NewEngine()

	ch, out := engine.Apply(newWarrior(), []effects.Effect{{Kind: effects.KindXP, Amount: 300}})

	// 300 -> consume 100 at level 1, 200 at level 2, landing on exactly 0
	if ch.Level != 3 {
		t.Errorf("Expected level 3, got %d", ch.Level)
	}
	if ch.XP != 0 {
		t.Errorf("Expected xp 0, got %d", ch.XP)
	}
	if ch.Health != 120 {
		t.Errorf("Expected health 120, got %d", ch.Health)
	}
	if ch.Strength != 12 {
		t.Errorf("Expected strength incremented once per crossing, got %d", ch.Strength)
	}
	if out.LevelsGained != 2 {
		t.Errorf("Expected 2 levels gained, got %d", out.LevelsGained)
	}
}

func TestApply_XPInvariantHolds(t *testing.T) {
	engine := NewEngine()

	for _, grant := range []int{0, 1, 99, 100, 101, 250, 999, 5000} {
		ch, _ := engine.Apply(newWarrior(), []effects.Effect{{Kind: effects.KindXP, Amount: grant}})
		if ch.XP < 0 || ch.XP >= ch.Level*100 {
			t.Errorf("Grant %d broke invariant: xp=%d level=%d", grant, ch.XP, ch.Level)
		}
	}
}

func TestApply_MageGainsSpellPower(t *testing.T) {
	engine := NewEngine()
	mage := Character{Class: "Mage", Health: 100, SpellPower: 12, Level: 1}

	ch, _ := engine.Apply(mage, []effects.Effect{{Kind: effects.KindXP, Amount: 100}})

	if ch.SpellPower != 13 {
		t.Errorf("Expected spell power 13, got %d", ch.SpellPower)
	}
	if ch.Strength != 0 {
		t.Errorf("Expected strength untouched, got %d", ch.Strength)
	}
}

func TestApply_HealUsesRolledAmount(t *testing.T) {
	engine := NewEngineWithHealRoll(func() int { return 8 })
	ch := newWarrior()
	ch.Health = 40

	ch, out := engine.Apply(ch, []effects.Effect{{Kind: effects.KindHeal}})

	if ch.Health != 48 {
		t.Errorf("Expected health 48, got %d", ch.Health)
	}
	if out.Healed != 8 {
		t.Errorf("Expected healed 8, got %d", out.Healed)
	}
}

func TestApply_HealClampsAtMaxHealth(t *testing.T) {
	engine := NewEngineWithHealRoll(func() int { return 12 })
	ch := newWarrior()
	ch.Health = 95

	ch, _ = engine.Apply(ch, []effects.Effect{{Kind: effects.KindHeal}})

	if ch.Health != MaxHealth(1) {
		t.Errorf("Expected health clamped at %d, got %d", MaxHealth(1), ch.Health)
	}
}

func TestApply_HealRollStaysInRange(t *testing.T) {
	engine := NewEngine()

	for i := 0; i < 200; i++ {
		ch := newWarrior()
		ch.Health = 1
		ch, out := engine.Apply(ch, []effects.Effect{{Kind: effects.KindHeal}})
		if out.Healed < 6 || out.Healed > 12 {
			t.Fatalf("Heal roll %d outside 6-12", out.Healed)
		}
		if ch.Health != 1+out.Healed {
			t.Fatalf("Expected health %d, got %d", 1+out.Healed, ch.Health)
		}
	}
}

func TestApply_HealAfterLethalDamageRevives(t *testing.T) {
	engine := NewEngineWithHealRoll(func() int { return 6 })
	ch := newWarrior()
	ch.Health = 5

	effs := []effects.Effect{
		{Kind: effects.KindDamage, Amount: 10},
		{Kind: effects.KindHeal},
	}
	ch, out := engine.Apply(ch, effs)

	if ch.Health != 6 {
		t.Errorf("Expected health 6, got %d", ch.Health)
	}
	if ch.KO || out.KO {
		t.Error("Expected no KO when healing lands after the killing blow")
	}
}

func TestApply_NoEffectsIsNoOp(t *testing.T) {
	engine := NewEngine()
	before := newWarrior()

	after, out := engine.Apply(before, nil)

	if after != before {
		t.Errorf("Expected character unchanged, got %+v", after)
	}
	if out.LeveledUp || out.KO {
		t.Errorf("Expected empty outcome, got %+v", out)
	}
}

func TestLevelUp_GrantsPerLevelGains(t *testing.T) {
	engine := NewEngine()

	ch := engine.LevelUp(newWarrior())

	if ch.Level != 2 || ch.Health != 110 || ch.Strength != 11 {
		t.Errorf("Unexpected state after direct level-up: %+v", ch)
	}
}

func TestMaxHealth(t *testing.T) {
	cases := []struct {
		level int
		want  int
	}{
		{1, 100},
		{2, 110},
		{5, 140},
	}
	for _, tc := range cases {
		if got := MaxHealth(tc.level); got != tc.want {
			t.Errorf("MaxHealth(%d) = %d, want %d", tc.level, got, tc.want)
		}
	}
}
