package ranking

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// EngagementWeights defines the per-signal multipliers for the additive
// engagement bundle.
type EngagementWeights struct {
	Likes    float64 `json:"likes"`    // Weight per like (default: 1.8)
	Reposts  float64 `json:"reposts"`  // Weight per repost (default: 1.4)
	Comments float64 `json:"comments"` // Weight per comment (default: 3)
	Quotes   float64 `json:"quotes"`   // Weight per quote (default: 4.5)
}

// BonusWeights defines the multipliers for the viewer-context bonuses.
type BonusWeights struct {
	Virality    float64 `json:"virality"`    // Weight per engaged follower (default: 2)
	Hashtag     float64 `json:"hashtag"`     // Weight per trending hashtag match (default: 3)
	Interaction float64 `json:"interaction"` // Weight per historical author interaction (default: 2)
	Format      float64 `json:"format"`      // Multiplier on the format preference weight (default: 2)
}

// DecayWeights defines the shape of the recency falloff.
type DecayWeights struct {
	Exponent float64 `json:"exponent"` // Power applied to hours-since-post (default: 1.2)
}

// DiversityWeights defines the repeated-author dampener.
type DiversityWeights struct {
	Step  float64 `json:"step"`  // Penalty per additional post by the same author (default: 0.02)
	Floor float64 `json:"floor"` // Minimum penalty factor (default: 0.9)
}

// Weights holds all scoring weight configurations.
type Weights struct {
	Engagement EngagementWeights `json:"engagement"`
	Bonus      BonusWeights      `json:"bonus"`
	Decay      DecayWeights      `json:"decay"`
	Diversity  DiversityWeights  `json:"diversity"`
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string  `json:"version"` // Config version for future compatibility
	Weights Weights `json:"weights"` // Weight configurations
}

// DefaultWeights returns the default scoring weight configuration.
//
// final_score = (engagement + virality + hashtag + interaction + format)
// * time_decay * diversity_penalty, where:
//   - engagement = likes*1.8 + reposts*1.4 + comments*3 + quotes*4.5
//   - virality = engaged_by_followers * 2
//   - hashtag = trending matches * 3
//   - interaction = history count * 2
//   - format = preference weight * 2
//   - time_decay = 1 / (1 + hours^1.2)
//   - diversity_penalty = max(1 - (author_frequency-1)*0.02, 0.9)
func DefaultWeights() *Weights {
	return &Weights{
		Engagement: EngagementWeights{
			Likes:    1.8,
			Reposts:  1.4,
			Comments: 3,
			Quotes:   4.5,
		},
		Bonus: BonusWeights{
			Virality:    2,
			Hashtag:     3,
			Interaction: 2,
			Format:      2,
		},
		Decay: DecayWeights{
			Exponent: 1.2,
		},
		Diversity: DiversityWeights{
			Step:  0.02,
			Floor: 0.9,
		},
	}
}

// LoadCalibration loads scoring weights from a JSON calibration file.
// If the file doesn't exist or can't be parsed, returns default weights
// with an error so the caller can log and degrade gracefully. Partial
// configurations are merged with defaults.
func LoadCalibration(filePath string) (*Weights, error) {
	// Return defaults if no file path provided
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	// Merge loaded weights with defaults to handle partial configurations
	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges override weights with base weights. Only
// non-zero values from the override are applied, which allows partial
// overrides in the calibration file. A zero weight cannot be expressed
// through calibration; disable a signal by redeploying with new defaults.
func MergeCalibration(base *Weights, override *Weights) *Weights {
	// Guard against nil base to avoid panics; fall back to defaults.
	if base == nil {
		return DefaultWeights()
	}

	// If there is no override provided, return a copy of the base.
	if override == nil {
		result := *base
		return &result
	}

	result := *base // Copy base

	if override.Engagement.Likes != 0 {
		result.Engagement.Likes = override.Engagement.Likes
	}
	if override.Engagement.Reposts != 0 {
		result.Engagement.Reposts = override.Engagement.Reposts
	}
	if override.Engagement.Comments != 0 {
		result.Engagement.Comments = override.Engagement.Comments
	}
	if override.Engagement.Quotes != 0 {
		result.Engagement.Quotes = override.Engagement.Quotes
	}

	if override.Bonus.Virality != 0 {
		result.Bonus.Virality = override.Bonus.Virality
	}
	if override.Bonus.Hashtag != 0 {
		result.Bonus.Hashtag = override.Bonus.Hashtag
	}
	if override.Bonus.Interaction != 0 {
		result.Bonus.Interaction = override.Bonus.Interaction
	}
	if override.Bonus.Format != 0 {
		result.Bonus.Format = override.Bonus.Format
	}

	if override.Decay.Exponent != 0 {
		result.Decay.Exponent = override.Decay.Exponent
	}

	if override.Diversity.Step != 0 {
		result.Diversity.Step = override.Diversity.Step
	}
	if override.Diversity.Floor != 0 {
		result.Diversity.Floor = override.Diversity.Floor
	}

	return &result
}

// logCalibrationOverrides logs which weights were overridden from defaults.
func logCalibrationOverrides(defaults *Weights, loaded *Weights) {
	var overrides []string

	check := func(name string, def, got float64) {
		if got != def {
			overrides = append(overrides, fmt.Sprintf("%s: %.2f -> %.2f", name, def, got))
		}
	}

	check("engagement.likes", defaults.Engagement.Likes, loaded.Engagement.Likes)
	check("engagement.reposts", defaults.Engagement.Reposts, loaded.Engagement.Reposts)
	check("engagement.comments", defaults.Engagement.Comments, loaded.Engagement.Comments)
	check("engagement.quotes", defaults.Engagement.Quotes, loaded.Engagement.Quotes)
	check("bonus.virality", defaults.Bonus.Virality, loaded.Bonus.Virality)
	check("bonus.hashtag", defaults.Bonus.Hashtag, loaded.Bonus.Hashtag)
	check("bonus.interaction", defaults.Bonus.Interaction, loaded.Bonus.Interaction)
	check("bonus.format", defaults.Bonus.Format, loaded.Bonus.Format)
	check("decay.exponent", defaults.Decay.Exponent, loaded.Decay.Exponent)
	check("diversity.step", defaults.Diversity.Step, loaded.Diversity.Step)
	check("diversity.floor", defaults.Diversity.Floor, loaded.Diversity.Floor)

	if len(overrides) > 0 {
		slog.Info("loaded ranking calibration with overrides",
			"overrides", overrides)
	} else {
		slog.Info("loaded ranking calibration (using all defaults)")
	}
}
