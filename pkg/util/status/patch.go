// Package status provides utilities for writing KalavaiJob status updates.
//
// Every write is a JSON merge patch scoped to a single named sub-key
// (status.releases[name], status.pods[name], status.services[name]) so that
// concurrent patches from unrelated children never race each other's
// writes. A full-document replace at the transport boundary would break
// this property.
package status

import (
	"context"
	"encoding/json"
	"fmt"

	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/util/retry"
	"sigs.k8s.io/controller-runtime/pkg/client"

	kalavaiv1 "github.com/kalavai-net/job-operator/api/v1"
)

// PatchRelease merge-patches status.releases[name] of the given job.
func PatchRelease(
	ctx context.Context,
	c client.Client,
	job *kalavaiv1.KalavaiJob,
	name string,
	release kalavaiv1.ReleaseStatus,
) error {
	return patchSubtree(ctx, c, job, map[string]any{
		"releases": map[string]any{name: release},
	})
}

// PatchPod merge-patches status.pods[name] of the given job.
func PatchPod(
	ctx context.Context,
	c client.Client,
	job *kalavaiv1.KalavaiJob,
	name string,
	pod kalavaiv1.PodStatus,
) error {
	return patchSubtree(ctx, c, job, map[string]any{
		"pods": map[string]any{name: pod},
	})
}

// PatchService merge-patches status.services[name] of the given job.
func PatchService(
	ctx context.Context,
	c client.Client,
	job *kalavaiv1.KalavaiJob,
	name string,
	service kalavaiv1.ServiceStatus,
) error {
	return patchSubtree(ctx, c, job, map[string]any{
		"services": map[string]any{name: service},
	})
}

// patchSubtree applies a merge patch carrying only the given status keys,
// retrying on optimistic-concurrency conflicts. A failed write is safe to
// drop: the next event for the same child rewrites the same sub-key.
func patchSubtree(
	ctx context.Context,
	c client.Client,
	job *kalavaiv1.KalavaiJob,
	statusKeys map[string]any,
) error {
	payload, err := json.Marshal(map[string]any{"status": statusKeys})
	if err != nil {
		return fmt.Errorf("failed to marshal status patch: %w", err)
	}

	patch := client.RawPatch(types.MergePatchType, payload)
	if err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
		return c.Status().Patch(ctx, job, patch)
	}); err != nil {
		return fmt.Errorf("failed to patch status of %s/%s: %w", job.Namespace, job.Name, err)
	}
	return nil
}
