package kalavaijob

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	kalavaiv1 "github.com/kalavai-net/job-operator/api/v1"
	"github.com/kalavai-net/job-operator/pkg/correlation"
	"github.com/kalavai-net/job-operator/pkg/monitoring"
	"github.com/kalavai-net/job-operator/pkg/translator"
)

// createChildren mints a correlation id, materializes the child HelmRelease
// and records the id on the parent. It is idempotent against a partially
// completed earlier attempt: if the child already exists, its recorded id is
// adopted instead of minting a second live id.
func (r *KalavaiJobReconciler) createChildren(
	ctx context.Context,
	job *kalavaiv1.KalavaiJob,
) error {
	logger := log.FromContext(ctx)

	jobID := correlation.NewJobID()

	res, err := translator.Translate(job, jobID)
	if err != nil {
		return fmt.Errorf("failed to translate spec: %w", err)
	}
	for _, warning := range res.Warnings {
		logger.Info("Translation warning", "warning", warning)
	}

	// Owner reference makes the cluster garbage-collect the child if the
	// parent vanishes without the finalizer running.
	if err := controllerutil.SetControllerReference(job, res.Release, r.Scheme); err != nil {
		return fmt.Errorf("failed to set owner reference: %w", err)
	}

	if err := r.Create(ctx, res.Release); err != nil {
		if !errors.IsAlreadyExists(err) {
			return fmt.Errorf("failed to create HelmRelease: %w", err)
		}
		// A previous attempt created the child but failed before recording
		// the id on the parent. Adopt the id the child already carries.
		existing := translator.NewHelmRelease()
		if getErr := r.Get(ctx, client.ObjectKeyFromObject(res.Release), existing); getErr != nil {
			return fmt.Errorf("failed to fetch pre-existing HelmRelease: %w", getErr)
		}
		// During a recreate the old child can outlive the cascade: its own
		// finalizers keep it terminating, or the best-effort delete failed.
		// Adopting it would resurrect the previous spec under the old id, so
		// surface an error and let the requeue retry once it is gone.
		if existing.GetDeletionTimestamp() != nil {
			return fmt.Errorf("previous HelmRelease %s is still terminating", existing.GetName())
		}
		adopted := existing.GetLabels()[correlation.LabelChildJobName]
		if adopted == "" {
			return fmt.Errorf("pre-existing HelmRelease %s has no correlation label", existing.GetName())
		}
		if adopted == job.Labels[correlation.LabelParentJobID] {
			return fmt.Errorf("previous HelmRelease %s has not been replaced yet", existing.GetName())
		}
		logger.Info("Child already exists, adopting its job id", "jobID", adopted)
		jobID = adopted
	}

	if err := r.recordJobID(ctx, job, jobID); err != nil {
		return err
	}

	monitoring.SetJobInfo(job.Name, job.Namespace, jobID)
	logger.Info("KalavaiJob deployed", "jobID", jobID, "chart", job.Spec.Template.Chart)
	return nil
}

// recordJobID mirrors the correlation id onto the parent: as a label for
// indexed selector lookup by the status feeds, and in status for users.
// Status sub-trees of previous children are dropped here; the feeds rebuild
// them as the new children report in.
func (r *KalavaiJobReconciler) recordJobID(
	ctx context.Context,
	job *kalavaiv1.KalavaiJob,
	jobID string,
) error {
	if job.Labels == nil {
		job.Labels = map[string]string{}
	}
	job.Labels[correlation.LabelParentJobID] = jobID
	if err := r.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to record job id label: %w", err)
	}

	job.Status.JobID = jobID
	job.Status.ObservedGeneration = job.Generation
	job.Status.Releases = nil
	job.Status.Pods = nil
	job.Status.Services = nil
	if err := r.Status().Update(ctx, job); err != nil {
		return fmt.Errorf("failed to record job id in status: %w", err)
	}
	return nil
}

// cascadeDelete removes every child matching the parent's correlation id.
// The cascade is best-effort, not transactional: one child failing to delete
// is logged and does not abort deletion of the remaining children. A parent
// without a correlation id has nothing to clean up.
func (r *KalavaiJobReconciler) cascadeDelete(
	ctx context.Context,
	job *kalavaiv1.KalavaiJob,
) error {
	logger := log.FromContext(ctx)

	jobID := job.Labels[correlation.LabelParentJobID]
	if jobID == "" {
		jobID = job.Status.JobID
	}
	if jobID == "" {
		logger.Info("No job id recorded, nothing to delete")
		return nil
	}

	releases := translator.NewHelmReleaseList()
	if err := r.List(ctx, releases,
		client.InNamespace(job.Namespace),
		correlation.ChildLabels(jobID),
	); err != nil {
		return fmt.Errorf("failed to list children for job id %s: %w", jobID, err)
	}

	for i := range releases.Items {
		release := &releases.Items[i]
		if err := r.Delete(ctx, release); err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			logger.Error(err, "Failed to delete child, continuing cascade",
				"child", release.GetName())
			continue
		}
		logger.Info("Deleted child", "child", release.GetName(), "jobID", jobID)
	}

	return nil
}
