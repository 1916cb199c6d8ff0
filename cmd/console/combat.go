package main

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/gamebook-engine/internal/handlers"
)

const (
	defaultSkill   = 7
	defaultStamina = 14
	roundDamage    = 2
	maxRounds      = 100
)

// combatResult is a locally adjudicated fight, ready to report back to
// the session API.
type combatResult struct {
	Won        bool
	FinalStats map[string]int
	Log        []string
}

// statNamed finds a stat by case-insensitive name with a fallback.
func statNamed(stats map[string]int, name string, fallback int) (string, int) {
	for k, v := range stats {
		if strings.EqualFold(k, name) {
			return k, v
		}
	}
	return name, fallback
}

// runCombat plays out a fight round by round. Each round both sides
// roll 2d6 plus their skill; the lower total loses stamina. The fight
// ends when either side runs out.
func runCombat(rng *rand.Rand, stats map[string]int, enemy *handlers.CombatView) (*combatResult, error) {
	skillKey, playerSkill := statNamed(stats, "skill", defaultSkill)
	staminaKey, playerStamina := statNamed(stats, "stamina", defaultStamina)

	enemyName := "Enemy"
	enemySkill := defaultSkill
	enemyStamina := defaultStamina
	if enemy.Enemy != nil {
		if enemy.Enemy.Name != "" {
			enemyName = enemy.Enemy.Name
		}
		if enemy.Enemy.Skill > 0 {
			enemySkill = enemy.Enemy.Skill
		}
		if enemy.Enemy.Stamina > 0 {
			enemyStamina = enemy.Enemy.Stamina
		}
	}

	player, err := d20.NewActor("player").
		WithHP(maxInt(playerStamina, 1)).
		WithAC(10).
		WithAttributes(map[string]int{"skill": playerSkill}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build player actor: %w", err)
	}
	foe, err := d20.NewActor("enemy").
		WithHP(enemyStamina).
		WithAC(10).
		WithAttributes(map[string]int{"skill": enemySkill}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build enemy actor: %w", err)
	}
	result := &combatResult{
		Log: []string{fmt.Sprintf("%s attacks! (skill %d, stamina %d)", enemyName, enemySkill, enemyStamina)},
	}

	for round := 1; round <= maxRounds; round++ {
		playerAttack := roll2d6(rng) + attribute(player, "skill")
		enemyAttack := roll2d6(rng) + attribute(foe, "skill")

		switch {
		case playerAttack > enemyAttack:
			if err := foe.SetHP(maxInt(foe.HP()-roundDamage, 0)); err != nil {
				return nil, fmt.Errorf("failed to update enemy stamina: %w", err)
			}
			result.Log = append(result.Log, fmt.Sprintf("Round %d: you strike %s (%d vs %d). Enemy stamina %d.",
				round, enemyName, playerAttack, enemyAttack, foe.HP()))
		case enemyAttack > playerAttack:
			if err := player.SetHP(maxInt(player.HP()-roundDamage, 0)); err != nil {
				return nil, fmt.Errorf("failed to update player stamina: %w", err)
			}
			result.Log = append(result.Log, fmt.Sprintf("Round %d: %s wounds you (%d vs %d). Your stamina %d.",
				round, enemyName, enemyAttack, playerAttack, player.HP()))
		default:
			result.Log = append(result.Log, fmt.Sprintf("Round %d: blades clash, no blood drawn (%d vs %d).",
				round, playerAttack, enemyAttack))
		}

		if foe.HP() <= 0 {
			result.Won = true
			result.Log = append(result.Log, fmt.Sprintf("%s is defeated!", enemyName))
			break
		}
		if player.HP() <= 0 {
			result.Log = append(result.Log, "You collapse, beaten.")
			break
		}
	}

	result.FinalStats = make(map[string]int, len(stats))
	for k, v := range stats {
		result.FinalStats[k] = v
	}
	result.FinalStats[skillKey] = playerSkill
	result.FinalStats[staminaKey] = player.HP()
	return result, nil
}

func roll2d6(rng *rand.Rand) int {
	return rng.Intn(6) + rng.Intn(6) + 2
}

func attribute(a *d20.Actor, key string) int {
	if v, ok := a.Attribute(key); ok {
		return v
	}
	return 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
