package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles with gradual rollout. Rollout
// buckets are derived from a consistent hash of the learner ID so a
// learner never flips between variants.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Per-learner overrides for testing and debugging.
	learnerOverrides map[string]map[string]bool
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100), bucketed by learner ID hash.
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	LearnerID string
	IsAdmin   bool
}

// Predefined feature flag names.
const (
	// FeatureProjectLapsedStreaks zeroes a lapsed streak in progress
	// reads instead of showing the stale persisted value.
	FeatureProjectLapsedStreaks = "progress.project_lapsed_streaks"

	// FeatureBadgeXPBonuses folds badge XP bonuses back into the learner.
	FeatureBadgeXPBonuses = "badges.xp_bonuses"

	// FeatureLeaderboard exposes the public XP leaderboard.
	FeatureLeaderboard = "leaderboard.enabled"

	// FeatureLearnerCache serves learner reads through Redis.
	FeatureLearnerCache = "cache.learner"

	// FeatureDistributedEvents fans events out over Redis Pub/Sub so
	// multi-instance deployments see each other's writes.
	FeatureDistributedEvents = "events.distributed"
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:         make(map[string]*Feature),
		learnerOverrides: make(map[string]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureProjectLapsedStreaks] = &Feature{
		Name:           FeatureProjectLapsedStreaks,
		Description:    "Project lapsed streaks as zero in reads",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureBadgeXPBonuses] = &Feature{
		Name:           FeatureBadgeXPBonuses,
		Description:    "Fold badge XP bonuses into learner XP",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureLeaderboard] = &Feature{
		Name:           FeatureLeaderboard,
		Description:    "Public XP leaderboard",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureLearnerCache] = &Feature{
		Name:           FeatureLearnerCache,
		Description:    "Redis read-through cache for learners",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureDistributedEvents] = &Feature{
		Name:           FeatureDistributedEvents,
		Description:    "Redis Pub/Sub event fan-out between instances",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_PROGRESS_PROJECT_LAPSED_STREAKS=false
// Example: FEATURE_BADGES_XP_BONUSES=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		val := os.Getenv(envKey)
		if val == "" {
			continue
		}

		if b, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = b
			if b {
				feature.RolloutPercent = 100
			} else {
				feature.RolloutPercent = 0
			}
			continue
		}

		if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
			feature.Enabled = p > 0
			feature.RolloutPercent = p
		}
	}
}

// featureNameToEnvKey converts a feature name to its environment key.
// "badges.xp_bonuses" -> "FEATURE_BADGES_XP_BONUSES"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	if ctx != nil && ctx.LearnerID != "" {
		if overrides, ok := ff.learnerOverrides[ctx.LearnerID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	if ctx != nil && ctx.IsAdmin {
		return true
	}

	if !feature.Enabled {
		return false
	}

	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	if feature.RolloutPercent < 100 && ctx != nil && ctx.LearnerID != "" {
		return ff.isInRollout(ctx.LearnerID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// IsEnabledGlobally checks a flag without learner context, as startup
// wiring does.
func (ff *FeatureFlags) IsEnabledGlobally(featureName string) bool {
	return ff.IsEnabled(featureName, nil)
}

// isInRollout buckets a learner with consistent hashing so they stay in
// the same bucket across evaluations.
func (ff *FeatureFlags) isInRollout(learnerID, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(learnerID))

	bucket := int(h.Sum32() % 100)
	return bucket < percent
}

// SetLearnerOverride sets a feature override for a specific learner.
func (ff *FeatureFlags) SetLearnerOverride(learnerID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.learnerOverrides[learnerID]; !ok {
		ff.learnerOverrides[learnerID] = make(map[string]bool)
	}
	ff.learnerOverrides[learnerID][featureName] = enabled
}

// ClearLearnerOverrides removes all overrides for a learner.
func (ff *FeatureFlags) ClearLearnerOverrides(learnerID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.learnerOverrides, learnerID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
