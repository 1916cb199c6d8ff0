package main

import (
	"math/rand"
	"testing"

	"github.com/jwebster45206/gamebook-engine/internal/handlers"
	"github.com/jwebster45206/gamebook-engine/pkg/storybook"
)

func TestRunCombat_StrongPlayerWins(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	stats := map[string]int{"SKILL": 12, "STAMINA": 20, "GOLD": 5}
	combat := &handlers.CombatView{
		Enemy: &storybook.Enemy{ID: "rat", Name: "Giant Rat", Skill: 3, Stamina: 4},
	}

	result, err := runCombat(rng, stats, combat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Won {
		t.Error("expected a skill-12 fighter to beat a skill-3 rat")
	}
	if result.FinalStats["SKILL"] != 12 {
		t.Errorf("skill should be untouched, got %d", result.FinalStats["SKILL"])
	}
	if result.FinalStats["GOLD"] != 5 {
		t.Errorf("unrelated stats should carry over, got %d", result.FinalStats["GOLD"])
	}
	if result.FinalStats["STAMINA"] < 0 || result.FinalStats["STAMINA"] > 20 {
		t.Errorf("stamina out of range: %d", result.FinalStats["STAMINA"])
	}
	if len(result.Log) < 2 {
		t.Errorf("expected a round-by-round log, got %d lines", len(result.Log))
	}
}

func TestRunCombat_WeakPlayerLoses(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	stats := map[string]int{"SKILL": 1, "STAMINA": 2}
	combat := &handlers.CombatView{
		Enemy: &storybook.Enemy{ID: "dragon", Name: "Dragon", Skill: 12, Stamina: 30},
	}

	result, err := runCombat(rng, stats, combat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Won {
		t.Error("a skill-1 fighter should not slay a dragon")
	}
	if result.FinalStats["STAMINA"] != 0 {
		t.Errorf("losing means stamina 0, got %d", result.FinalStats["STAMINA"])
	}
}

func TestRunCombat_DefaultsWhenStatsMissing(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	result, err := runCombat(rng, map[string]int{}, &handlers.CombatView{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.FinalStats["stamina"]; !ok {
		t.Error("expected a stamina entry even without presets")
	}
}
