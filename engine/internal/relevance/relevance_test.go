package relevance

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobingest/internal/domain"
	"jobingest/internal/filterconfig"
)

func boolPtr(b bool) *bool { return &b }

func TestAssess_StraightLatamAccept(t *testing.T) {
	raw := domain.RawPosting{
		ProviderPostingID: "123",
		Title:             "Remote LATAM Engineer",
		PrimaryLocation:   "Remote - Brazil",
		IsListed:          true,
	}
	cfg := &filterconfig.FilterConfig{
		LocationKeywords: filterconfig.LocationKeywords{
			StrongPositiveLatam: []string{"remote - brazil"},
		},
	}

	res := Assess(raw, cfg, nil)
	require.Equal(t, Relevant, res.Decision)
	require.Equal(t, domain.RegionLATAM, res.Region)
	require.Contains(t, strings.ToLower(res.Reason), "remote - brazil")
}

func TestAssess_StructuralRejection(t *testing.T) {
	raw := domain.RawPosting{
		ProviderPostingID: "456",
		Title:             "Engineer",
		PrimaryLocation:   "Remote (US Only)",
		IsListed:          true,
	}
	cfg := &filterconfig.FilterConfig{}

	res := Assess(raw, cfg, nil)
	require.Equal(t, Irrelevant, res.Decision)
	require.Contains(t, res.Reason, "location")
}

func TestAssess_ContextualOverride(t *testing.T) {
	raw := domain.RawPosting{
		ProviderPostingID: "789",
		Title:             "Engineer",
		BodyText:          "Fully remote, but requires PST hours.",
		IsListed:          true,
	}
	cfg := &filterconfig.FilterConfig{
		ContentKeywords: filterconfig.ContentKeywords{
			StrongPositiveGlobal:   []string{"fully remote"},
			StrongNegativeTimezone: []string{"pst"},
		},
	}

	res := Assess(raw, cfg, nil)
	require.Equal(t, Irrelevant, res.Decision)
	require.Contains(t, res.Reason, "content")
}

func TestAssess_AbsentConfigFallback(t *testing.T) {
	raw := domain.RawPosting{
		ProviderPostingID: "abc",
		IsListed:          true,
		IsRemote:          boolPtr(true),
		PrimaryLocation:   "Everywhere",
	}

	res := Assess(raw, nil, nil)
	require.Equal(t, Relevant, res.Decision)
	require.Equal(t, domain.RegionGlobal, res.Region)
	require.Contains(t, res.Reason, "isRemote fallback")
}

func TestAssess_NotListedIsIrrelevant(t *testing.T) {
	raw := domain.RawPosting{ProviderPostingID: "1", IsListed: false}
	res := Assess(raw, nil, nil)
	require.Equal(t, Irrelevant, res.Decision)
}

func TestAssess_UpdatedBeforeThresholdIsIrrelevant(t *testing.T) {
	raw := domain.RawPosting{
		ProviderPostingID: "1",
		IsListed:          true,
		UpdatedAt:         time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	cfg := &filterconfig.FilterConfig{ProcessJobsUpdatedAfterDate: "2023-01-01T00:00:00Z"}
	res := Assess(raw, cfg, nil)
	require.Equal(t, Irrelevant, res.Decision)
}

func TestAssess_CaseInsensitive(t *testing.T) {
	raw := domain.RawPosting{
		ProviderPostingID: "1",
		Title:             "remote latam engineer",
		PrimaryLocation:   "remote - brazil",
		IsListed:          true,
	}
	upper := raw
	upper.Title = "REMOTE LATAM ENGINEER"
	upper.PrimaryLocation = "REMOTE - BRAZIL"

	cfg := &filterconfig.FilterConfig{
		LocationKeywords: filterconfig.LocationKeywords{StrongPositiveLatam: []string{"remote - brazil"}},
	}

	r1 := Assess(raw, cfg, nil)
	r2 := Assess(upper, cfg, nil)
	require.Equal(t, r1.Decision, r2.Decision)
	require.Equal(t, r1.Region, r2.Region)
}

func TestAssess_MetadataRemoteEligible(t *testing.T) {
	raw := domain.RawPosting{
		ProviderPostingID: "1",
		IsListed:          true,
		Metadata: []domain.MetadataItem{
			{Name: "Remote Eligible", Value: true},
		},
	}
	cfg := &filterconfig.FilterConfig{
		RemoteMetadataFields: map[string]filterconfig.MetadataFieldRule{
			"remote eligible": {Type: "boolean", PositiveValue: "true"},
		},
	}
	res := Assess(raw, cfg, nil)
	require.Equal(t, Relevant, res.Decision)
	require.Equal(t, domain.RegionGlobal, res.Region)
}

func TestAssess_MetadataRemoteEligibleFalseRejects(t *testing.T) {
	raw := domain.RawPosting{
		ProviderPostingID: "1",
		IsListed:          true,
		Metadata: []domain.MetadataItem{
			{Name: "Remote Eligible", Value: false},
		},
	}
	cfg := &filterconfig.FilterConfig{
		RemoteMetadataFields: map[string]filterconfig.MetadataFieldRule{
			"remote eligible": {Type: "boolean", PositiveValue: "true"},
		},
	}
	res := Assess(raw, cfg, nil)
	require.Equal(t, Irrelevant, res.Decision)
}

func TestAssess_MetadataStringLatamToken(t *testing.T) {
	raw := domain.RawPosting{
		ProviderPostingID: "1",
		IsListed:          true,
		Metadata: []domain.MetadataItem{
			{Name: "work location", Value: "LATAM"},
		},
	}
	cfg := &filterconfig.FilterConfig{
		RemoteMetadataFields: map[string]filterconfig.MetadataFieldRule{
			"work location": {Type: "string", AllowedValues: []string{"LATAM", "US", "Worldwide"}},
		},
	}
	res := Assess(raw, cfg, nil)
	require.Equal(t, Relevant, res.Decision)
	require.Equal(t, domain.RegionLATAM, res.Region)
}

func TestAssess_MetadataStringOtherAllowedRejects(t *testing.T) {
	raw := domain.RawPosting{
		ProviderPostingID: "1",
		IsListed:          true,
		Metadata: []domain.MetadataItem{
			{Name: "work location", Value: "US"},
		},
	}
	cfg := &filterconfig.FilterConfig{
		RemoteMetadataFields: map[string]filterconfig.MetadataFieldRule{
			"work location": {Type: "string", AllowedValues: []string{"LATAM", "US", "Worldwide"}},
		},
	}
	res := Assess(raw, cfg, nil)
	require.Equal(t, Irrelevant, res.Decision)
}

func TestAssess_LeverHybridNeedsReview(t *testing.T) {
	raw := domain.RawPosting{
		Kind:              domain.SourceLever,
		ProviderPostingID: "1",
		IsListed:          true,
		PrimaryLocation:   "Remote - Brazil",
		WorkplaceType:     domain.WorkplaceHybrid,
	}
	cfg := &filterconfig.FilterConfig{
		LocationKeywords: filterconfig.LocationKeywords{StrongPositiveLatam: []string{"remote - brazil"}},
	}
	res := Assess(raw, cfg, nil)
	require.Equal(t, NeedsReview, res.Decision)
	require.Equal(t, domain.RegionLATAM, res.Region)
}

func TestAssess_AmbiguousRemoteWithoutNegative(t *testing.T) {
	raw := domain.RawPosting{
		ProviderPostingID: "1",
		IsListed:          true,
		PrimaryLocation:   "Remote",
	}
	cfg := &filterconfig.FilterConfig{
		LocationKeywords: filterconfig.LocationKeywords{Ambiguous: []string{"remote"}},
	}
	res := Assess(raw, cfg, nil)
	require.Equal(t, Relevant, res.Decision)
	require.Equal(t, domain.RegionGlobal, res.Region)
}

func TestAssess_RealGreenhouseFilterConfigMatchesMixedCaseMetadataField(t *testing.T) {
	loader := filterconfig.NewLoader("../../config", nil)
	cfg := loader.Load("greenhouse")
	require.NotNil(t, cfg, "config/greenhouse-filter-config.json must load")
	require.NotEmpty(t, cfg.RemoteMetadataFields, "REMOTE_METADATA_FIELDS must parse into the loader's cache")

	raw := domain.RawPosting{
		Kind:              domain.SourceGreenhouse,
		ProviderPostingID: "1",
		IsListed:          true,
		Metadata: []domain.MetadataItem{
			{Name: "Remote?", Value: "Yes"},
		},
	}

	res := Assess(raw, cfg, nil)
	require.Equal(t, Relevant, res.Decision)
	require.Equal(t, domain.RegionGlobal, res.Region)
}

func TestAssess_AmbiguousRemoteNearNegativeRejects(t *testing.T) {
	raw := domain.RawPosting{
		ProviderPostingID: "1",
		IsListed:          true,
		PrimaryLocation:   "Remote work, local candidates only please",
	}
	cfg := &filterconfig.FilterConfig{
		LocationKeywords: filterconfig.LocationKeywords{
			Ambiguous:                 []string{"remote"},
			StrongNegativeRestriction: []string{"local candidates only"},
		},
	}
	res := Assess(raw, cfg, nil)
	require.Equal(t, Irrelevant, res.Decision)
}
