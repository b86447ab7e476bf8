package rulemode

import (
	"strings"
	"testing"
)

func TestLookup_Narrative(t *testing.T) {
	policy := Lookup(ModeNarrative)

	if policy.Mode != ModeNarrative {
		t.Errorf("Expected mode %q, got %q", ModeNarrative, policy.Mode)
	}
	if policy.RequireRoll {
		t.Error("Expected narrative mode not to require rolls")
	}
	if len(policy.Directives) == 0 {
		t.Fatal("Expected narrative directives")
	}
}

func TestLookup_RulesLite(t *testing.T) {
	policy := Lookup(ModeRulesLite)

	if policy.Mode != ModeRulesLite {
		t.Errorf("Expected mode %q, got %q", ModeRulesLite, policy.Mode)
	}
	if !policy.RequireRoll {
		t.Error("Expected rules-lite mode to require rolls")
	}
}

func TestLookup_UnknownFallsBackToNarrative(t *testing.T) {
	for _, mode := range []string{"", "hardcore", "NARRATIVE"} {
		policy := Lookup(mode)
		if policy.Mode != ModeNarrative {
			t.Errorf("Lookup(%q): expected narrative fallback, got %q", mode, policy.Mode)
		}
	}
}

func TestLookup_BothModesCarryEffectTagDirective(t *testing.T) {
	for _, mode := range []string{ModeNarrative, ModeRulesLite} {
		policy := Lookup(mode)

		found := false
		for _, d := range policy.Directives {
			if strings.Contains(d, "<!--[DAMAGE:n]-->") {
				found = true
			}
		}
		if !found {
			t.Errorf("Mode %q is missing the effect marker directive", mode)
		}
	}
}

func TestLookup_IntroPromptTakesTheme(t *testing.T) {
	for _, mode := range []string{ModeNarrative, ModeRulesLite} {
		policy := Lookup(mode)
		if !strings.Contains(policy.IntroPrompt, "%s") {
			t.Errorf("Mode %q intro prompt has no theme placeholder", mode)
		}
	}
}

func TestPrimaryStat(t *testing.T) {
	cases := []struct {
		class string
		want  string
	}{
		{"mage", StatSpellPower},
		{"Mage", StatSpellPower},
		{"MAGE", StatSpellPower},
		{"warrior", StatStrength},
		{"rogue", StatStrength},
		{"", StatStrength},
	}
	for _, tc := range cases {
		if got := PrimaryStat(tc.class); got != tc.want {
			t.Errorf("PrimaryStat(%q) = %q, want %q", tc.class, got, tc.want)
		}
	}
}
