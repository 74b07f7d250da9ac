package license

import (
	"errors"
	"testing"
)

func TestTierRank(t *testing.T) {
	tests := []struct {
		name string
		tier Tier
		rank int
	}{
		{"community is rank 0", TierCommunity, 0},
		{"team is rank 1", TierTeam, 1},
		{"enterprise is rank 2", TierEnterprise, 2},
		{"unknown is rank -1", Tier("platinum"), -1},
		{"empty is rank -1", Tier(""), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tier.Rank(); got != tt.rank {
				t.Errorf("Rank() = %d, want %d", got, tt.rank)
			}
		})
	}
}

func TestParseTier(t *testing.T) {
	t.Run("accepts canonical values", func(t *testing.T) {
		for _, tier := range ValidTiers() {
			got, err := ParseTier(string(tier))
			if err != nil {
				t.Fatalf("ParseTier(%q) error: %v", tier, err)
			}
			if got != tier {
				t.Errorf("ParseTier(%q) = %q, want %q", tier, got, tier)
			}
		}
	})

	t.Run("is case-insensitive", func(t *testing.T) {
		got, err := ParseTier("Enterprise")
		if err != nil {
			t.Fatalf("ParseTier error: %v", err)
		}
		if got != TierEnterprise {
			t.Errorf("ParseTier(\"Enterprise\") = %q, want %q", got, TierEnterprise)
		}
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		_, err := ParseTier("platinum")
		var tierErr *InvalidTierError
		if !errors.As(err, &tierErr) {
			t.Fatalf("ParseTier(\"platinum\") error = %v, want *InvalidTierError", err)
		}
		if tierErr.Tier != "platinum" {
			t.Errorf("InvalidTierError.Tier = %q, want %q", tierErr.Tier, "platinum")
		}
	})
}

func TestDefaultLimits(t *testing.T) {
	t.Run("community limits", func(t *testing.T) {
		limits := DefaultLimits(TierCommunity)
		if limits.Users != 5 {
			t.Errorf("Users = %d, want 5", limits.Users)
		}
		if limits.Repos != 3 {
			t.Errorf("Repos = %d, want 3", limits.Repos)
		}
		if limits.APIRate != 60 {
			t.Errorf("APIRate = %d, want 60", limits.APIRate)
		}
	})

	t.Run("team limits", func(t *testing.T) {
		limits := DefaultLimits(TierTeam)
		if limits.Users != 25 {
			t.Errorf("Users = %d, want 25", limits.Users)
		}
		if limits.Repos != 20 {
			t.Errorf("Repos = %d, want 20", limits.Repos)
		}
		if limits.APIRate != 300 {
			t.Errorf("APIRate = %d, want 300", limits.APIRate)
		}
	})

	t.Run("enterprise limits are unlimited", func(t *testing.T) {
		limits := DefaultLimits(TierEnterprise)
		for _, name := range []string{"users", "repos", "api_rate"} {
			if !limits.IsUnlimited(name) {
				v, _ := limits.Get(name)
				t.Errorf("%s = %d, want -1 (unlimited)", name, v)
			}
		}
	})

	t.Run("unknown tier returns community limits", func(t *testing.T) {
		limits := DefaultLimits(Tier("platinum"))
		if limits != DefaultLimits(TierCommunity) {
			t.Errorf("limits = %+v, want community defaults", limits)
		}
	})
}

func TestDefaultFeatures(t *testing.T) {
	t.Run("feature availability is monotonic across tiers", func(t *testing.T) {
		community := DefaultFeatures(TierCommunity)
		team := DefaultFeatures(TierTeam)
		enterprise := DefaultFeatures(TierEnterprise)

		for feature, enabled := range community {
			if enabled && !team[feature] {
				t.Errorf("feature %q enabled for community but not team", feature)
			}
		}
		for feature, enabled := range team {
			if enabled && !enterprise[feature] {
				t.Errorf("feature %q enabled for team but not enterprise", feature)
			}
		}
	})

	t.Run("returns a copy", func(t *testing.T) {
		first := DefaultFeatures(TierCommunity)
		first["sso"] = true
		second := DefaultFeatures(TierCommunity)
		if second["sso"] {
			t.Error("mutating the returned map leaked into the defaults")
		}
	})

	t.Run("community has no enterprise features", func(t *testing.T) {
		features := DefaultFeatures(TierCommunity)
		for _, key := range []string{"sso", "audit_log", "ip_allowlist", "retention_policies"} {
			if features[key] {
				t.Errorf("feature %q enabled for community, want disabled", key)
			}
		}
	})
}

func TestGraceDays(t *testing.T) {
	tests := []struct {
		tier Tier
		days int
	}{
		{TierCommunity, 0},
		{TierTeam, 14},
		{TierEnterprise, 30},
		{Tier("platinum"), 0},
	}

	for _, tt := range tests {
		if got := GraceDays(tt.tier); got != tt.days {
			t.Errorf("GraceDays(%q) = %d, want %d", tt.tier, got, tt.days)
		}
	}
}

func TestLimitsGet(t *testing.T) {
	limits := Limits{Users: 5, Repos: 3, APIRate: 60}

	t.Run("known names", func(t *testing.T) {
		for name, want := range map[string]int{"users": 5, "repos": 3, "api_rate": 60} {
			got, ok := limits.Get(name)
			if !ok || got != want {
				t.Errorf("Get(%q) = (%d, %v), want (%d, true)", name, got, ok, want)
			}
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		if _, ok := limits.Get("projects"); ok {
			t.Error("Get(\"projects\") ok = true, want false")
		}
	})
}
