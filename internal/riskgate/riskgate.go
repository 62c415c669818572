package riskgate

import (
	"math"

	"github.com/lucasfarrell/wavecrest-backend/pkg/config"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
)

// Input captures the pre-departure conditions evaluated for a trip.
type Input struct {
	WaveHeightMeters  float64
	WindSpeedKmh      float64
	Weather           enums.WeatherCondition
	CrewReady         bool
	EquipmentComplete bool
}

// Assessment is the full gate verdict. The gate always returns a result;
// Blocked tells callers whether departure requires an authorized override.
type Assessment struct {
	Score    int             `json:"score"`
	Level    enums.RiskLevel `json:"level"`
	Blocked  bool            `json:"blocked"`
	CanStart bool            `json:"can_start"`
	Advisory string          `json:"advisory"`
}

// Policy holds the scoring factors and the block threshold. The level bands
// and the block threshold are two separate rules; they do not share a cut
// line (a score of 71-75 is "high" yet already blocked).
type Policy struct {
	WaveFactor       float64
	WindFactor       float64
	WeatherScores    map[enums.WeatherCondition]int
	CrewPenalty      int
	EquipmentPenalty int
	BlockThreshold   int
}

// DefaultWeatherScores is the canonical weather contribution table.
// Unknown conditions contribute zero.
func DefaultWeatherScores() map[enums.WeatherCondition]int {
	return map[enums.WeatherCondition]int{
		enums.WeatherClear:  0,
		enums.WeatherCloudy: 5,
		enums.WeatherRainy:  15,
		enums.WeatherStormy: 30,
	}
}

// DefaultPolicy returns the production scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		WaveFactor:       20,
		WindFactor:       10,
		WeatherScores:    DefaultWeatherScores(),
		CrewPenalty:      25,
		EquipmentPenalty: 30,
		BlockThreshold:   70,
	}
}

// PolicyFromConfig builds a policy from the injected configuration knobs.
func PolicyFromConfig(cfg config.RiskConfig) Policy {
	return Policy{
		WaveFactor:       float64(cfg.WaveFactor),
		WindFactor:       float64(cfg.WindFactor),
		WeatherScores:    DefaultWeatherScores(),
		CrewPenalty:      cfg.CrewPenalty,
		EquipmentPenalty: cfg.EquipmentPenalty,
		BlockThreshold:   cfg.BlockThreshold,
	}
}

// Evaluate computes the weighted risk score, its display band, and the block
// verdict for the provided conditions.
func (p Policy) Evaluate(in Input) Assessment {
	score := int(math.Round(in.WaveHeightMeters * p.WaveFactor))
	score += int(math.Round(in.WindSpeedKmh * p.WindFactor))
	score += p.WeatherScores[in.Weather]
	if !in.CrewReady {
		score += p.CrewPenalty
	}
	if !in.EquipmentComplete {
		score += p.EquipmentPenalty
	}

	level := levelFor(score)
	blocked := score > p.BlockThreshold

	return Assessment{
		Score:    score,
		Level:    level,
		Blocked:  blocked,
		CanStart: !blocked,
		Advisory: advisoryFor(level),
	}
}

func levelFor(score int) enums.RiskLevel {
	switch {
	case score <= 20:
		return enums.RiskLevelLow
	case score <= 50:
		return enums.RiskLevelMedium
	case score <= 75:
		return enums.RiskLevelHigh
	default:
		return enums.RiskLevelCritical
	}
}

func advisoryFor(level enums.RiskLevel) string {
	switch level {
	case enums.RiskLevelLow:
		return "Conditions are favorable for departure."
	case enums.RiskLevelMedium:
		return "Conditions are manageable; brief the crew before departure."
	case enums.RiskLevelHigh:
		return "Conditions are rough; review crew readiness and equipment before departing."
	default:
		return "Conditions are dangerous; departure requires an authorized override."
	}
}
