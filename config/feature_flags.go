package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages runtime toggles with percentage rollout.
// Rollout buckets are derived from a hash of the portal user ID, so a
// user keeps the same answer across requests.
type FeatureFlags struct {
	mu sync.RWMutex

	features      map[string]*Feature
	userOverrides map[string]map[string]bool // userID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name           string
	Description    string
	Enabled        bool
	RolloutPercent int // 0-100
	// Roles limits the feature to some portal roles. Empty means everyone.
	Roles []string
}

// FeatureContext describes who is asking.
type FeatureContext struct {
	UserID string // STU-001, FAC-002, admin
	Role   string
}

// Feature names.
const (
	FeatureChatbot       = "chatbot"        // NextEdu Helper FAQ assistant
	FeatureRegistration  = "registration"   // self-service student registration
	FeatureAnnouncements = "announcements"  // faculty announcements and notes
	FeatureHistoryCache  = "history_cache"  // Redis cache of per-semester records
	FeatureSnapshotCache = "snapshot_cache" // Redis read-through for snapshot loads
)

// LoadFeatureFlags loads defaults and environment overrides.
func LoadFeatureFlags() *FeatureFlags {
	ff := NewFeatureFlags()
	ff.loadFromEnvironment()
	return ff
}

// NewFeatureFlags returns flags with defaults only.
func NewFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[string]map[string]bool),
	}
	for _, f := range []Feature{
		{Name: FeatureChatbot, Description: "FAQ assistant on every page", Enabled: true, RolloutPercent: 100},
		{Name: FeatureRegistration, Description: "Self-service registration form", Enabled: true, RolloutPercent: 100},
		{Name: FeatureAnnouncements, Description: "Faculty announcements, notes and tags", Enabled: true, RolloutPercent: 100, Roles: []string{"teacher", "admin"}},
		{Name: FeatureHistoryCache, Description: "Cache academic records in Redis", Enabled: true, RolloutPercent: 100},
		{Name: FeatureSnapshotCache, Description: "Read snapshots through Redis", Enabled: false, RolloutPercent: 0},
	} {
		ff.features[f.Name] = &f
	}
	return ff
}

// loadFromEnvironment applies FEATURE_<NAME>=true|false|<percent>.
// Example: FEATURE_HISTORY_CACHE=false, FEATURE_CHATBOT=25.
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		val := os.Getenv(featureNameToEnvKey(name))
		if val == "" {
			continue
		}
		if b, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = b
			feature.RolloutPercent = 0
			if b {
				feature.RolloutPercent = 100
			}
			continue
		}
		if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
			feature.Enabled = p > 0
			feature.RolloutPercent = p
		}
	}
}

// featureNameToEnvKey converts "history_cache" to "FEATURE_HISTORY_CACHE".
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
// A nil context checks the global switch only.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	if ctx != nil && ctx.UserID != "" {
		if enabled, ok := ff.userOverrides[ctx.UserID][featureName]; ok {
			return enabled
		}
	}

	feature, ok := ff.features[featureName]
	if !ok || !feature.Enabled {
		return false
	}

	if ctx != nil && ctx.Role != "" && len(feature.Roles) > 0 {
		allowed := false
		for _, r := range feature.Roles {
			if r == ctx.Role {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	if feature.RolloutPercent < 100 && ctx != nil && ctx.UserID != "" {
		return inRollout(ctx.UserID, featureName, feature.RolloutPercent)
	}
	return feature.RolloutPercent > 0
}

// inRollout maps user+feature to a stable bucket in 0..99.
func inRollout(userID, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(userID))
	return int(h.Sum32()%100) < percent
}

// SetUserOverride forces a feature on or off for one user.
func (ff *FeatureFlags) SetUserOverride(userID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.userOverrides[userID]; !ok {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][featureName] = enabled
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

// All returns a copy of all feature configurations.
func (ff *FeatureFlags) All() map[string]Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	out := make(map[string]Feature, len(ff.features))
	for k, v := range ff.features {
		out[k] = *v
	}
	return out
}

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
