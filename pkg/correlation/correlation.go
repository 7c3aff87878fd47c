package correlation

import (
	"github.com/google/uuid"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Label keys binding children to their parent KalavaiJob. Both are
// process-wide constants: changing either breaks discovery of children
// created by earlier operator versions.
const (
	// LabelChildJobName is carried by every child resource (HelmRelease and
	// anything the chart materializes) and holds the correlation id.
	LabelChildJobName = "kalavai.job.name"

	// LabelParentJobID mirrors the correlation id onto the parent KalavaiJob
	// for indexed selector lookup by the status feeds.
	LabelParentJobID = "jobId"
)

// NewJobID returns a fresh correlation id. Ids are cryptographically random
// and never reused; one live id exists per KalavaiJob at a time.
func NewJobID() string {
	return uuid.NewString()
}

// IsValid reports whether s parses as a correlation id. Used to sanity-check
// tokens read back off object labels.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// ChildLabels returns the exact selector labels used for every child lookup
// and cascade delete.
func ChildLabels(jobID string) client.MatchingLabels {
	return client.MatchingLabels{LabelChildJobName: jobID}
}

// ParentLabels returns the selector labels used to find the parent
// KalavaiJob of a child event.
func ParentLabels(jobID string) client.MatchingLabels {
	return client.MatchingLabels{LabelParentJobID: jobID}
}
