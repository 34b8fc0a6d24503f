// Package domain holds the core entities the ingestion pipeline reads and
// writes: provider-shaped raw postings, the canonical schema they are
// normalized into, and the companies/run-stats that accompany them.
package domain

import "time"

// HiringRegion is the audience a RELEVANT posting was matched against.
type HiringRegion string

const (
	RegionGlobal HiringRegion = "GLOBAL"
	RegionLATAM  HiringRegion = "LATAM"
)

// WorkplaceType mirrors the provider's own remote/hybrid/onsite hint.
type WorkplaceType string

const (
	WorkplaceRemote WorkplaceType = "remote"
	WorkplaceHybrid WorkplaceType = "hybrid"
	WorkplaceOnsite WorkplaceType = "onsite"
)

// PostingStatus is the lifecycle state of a CanonicalPosting (§4.10).
type PostingStatus string

const (
	StatusActive PostingStatus = "ACTIVE"
	StatusClosed PostingStatus = "CLOSED"
)

// SourceKind names an ATS provider implementation.
type SourceKind string

const (
	SourceGreenhouse SourceKind = "greenhouse"
	SourceAshby      SourceKind = "ashby"
	SourceLever      SourceKind = "lever"
)

// SourceDescriptor is an operator-owned row describing one ATS board to
// poll. Never mutated by the ingestion core.
type SourceDescriptor struct {
	ID          int64
	Kind        SourceKind
	DisplayName string
	CompanyID   *int64
	Config      map[string]any // opaque per-kind: boardToken, jobBoardName, companyIdentifier...
	Enabled     bool
}

// MetadataItem is one Greenhouse-style custom field on a posting.
type MetadataItem struct {
	Name  string
	Value any // string, bool, or []string/[]any for array-valued fields
}

// RawPosting is the provider-shaped record fetchers hand to the relevance
// engine and (if relevant) the adapter. It never escapes a single fetch.
type RawPosting struct {
	Kind              SourceKind
	ProviderPostingID string // invariant: empty => discard with a warning

	Title string

	// Location signals. PrimaryLocation is the provider's headline location
	// string; SecondaryLocations covers Ashby-style multi-location arrays.
	// AddressLocality/Region/Country cover structured address sub-fields.
	PrimaryLocation    string
	SecondaryLocations []string
	AddressLocality    string
	AddressRegion      string
	AddressCountry     string

	BodyHTML string
	BodyText string

	Metadata []MetadataItem // Greenhouse-style only; empty for other providers

	// Lever-style workplace enum, when the provider supplies one.
	WorkplaceType WorkplaceType

	IsListed bool
	IsRemote *bool // nil when the provider gives no hint at all

	PublishedAt time.Time
	UpdatedAt   time.Time

	ApplicationURL   string
	ApplicationEmail string
	CompensationText string // raw compensationRange-ish text, if any

	// DeterminedRegion is set by the relevance engine once Assess has run;
	// it is the explicit (rawPosting, region) pair the adapter consumes.
	DeterminedRegion   HiringRegion
	DeterminedReview   bool
	DeterminedDecision string
}

// CanonicalPosting is the core's normalized, persisted posting record.
type CanonicalPosting struct {
	ID                int64
	SourceKind        SourceKind
	ProviderPostingID string
	CompanyID         int64

	Title            string
	DescriptionHTML  string
	Requirements     string
	Responsibilities string
	Benefits         string

	Location      string
	Country       string
	WorkplaceType WorkplaceType
	HiringRegion  HiringRegion

	JobType         string
	ExperienceLevel string
	Skills          []string
	Tags            []string

	SalaryMin   *float64
	SalaryMax   *float64
	Currency    string
	SalaryCycle string

	ApplicationURL   string
	ApplicationEmail string

	PublishedAt time.Time
	UpdatedAt   time.Time

	Status PostingStatus

	NormalizedFingerprint string
	NeedsReview           bool
}

// Company is created on demand the first time a source's display name is
// seen for a source with no fixed CompanyID.
type Company struct {
	ID      int64
	Name    string
	Logo    string
	Website string
}

// RunStatus summarizes how a single source's fetch went (§4.9).
type RunStatus string

const (
	RunSuccess        RunStatus = "SUCCESS"
	RunPartialSuccess RunStatus = "PARTIAL_SUCCESS"
	RunFailure        RunStatus = "FAILURE"
)

// SourceRunStats is one persisted telemetry row per source per run.
type SourceRunStats struct {
	ID            int64
	JobSourceID   int64
	RunStartedAt  time.Time
	RunEndedAt    time.Time
	Status        RunStatus
	JobsFound     int
	JobsRelevant  int
	JobsProcessed int
	JobsErrored   int
	ErrorMessage  string // truncated to 1000 chars
	DurationMs    int64
}
