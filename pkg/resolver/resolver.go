package resolver

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	kalavaiv1 "github.com/kalavai-net/job-operator/api/v1"
	"github.com/kalavai-net/job-operator/pkg/correlation"
)

// Resolver finds the parent KalavaiJob for a correlation id.
type Resolver struct {
	// Client is the kubernetes client used to list parent resources.
	Client client.Client
}

// NewResolver creates a new parent Resolver.
func NewResolver(c client.Client) *Resolver {
	return &Resolver{Client: c}
}

// ForJobID returns the KalavaiJob in the given namespace carrying the jobId
// label. It returns (nil, nil) when no parent matches: child events may race
// parent creation or deletion, so an unmatched id is not an error. A
// transport failure listing parents is returned as an error.
func (r *Resolver) ForJobID(
	ctx context.Context,
	namespace, jobID string,
) (*kalavaiv1.KalavaiJob, error) {
	logger := log.FromContext(ctx)

	if jobID == "" {
		logger.Info("No job id on event object, skipping parent lookup")
		return nil, nil
	}

	jobs := &kalavaiv1.KalavaiJobList{}
	if err := r.Client.List(ctx, jobs,
		client.InNamespace(namespace),
		correlation.ParentLabels(jobID),
	); err != nil {
		return nil, fmt.Errorf("failed to list KalavaiJobs for job id %s: %w", jobID, err)
	}

	switch len(jobs.Items) {
	case 0:
		return nil, nil
	case 1:
	default:
		// One live id per parent is an invariant; multiple matches mean the
		// bookkeeping broke somewhere upstream.
		logger.Error(nil, "Multiple KalavaiJobs match one job id, using first match",
			"jobID", jobID, "matches", len(jobs.Items))
	}

	return &jobs.Items[0], nil
}
