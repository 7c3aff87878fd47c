package kalavaijob

import (
	"context"
	"slices"

	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/log"

	kalavaiv1 "github.com/kalavai-net/job-operator/api/v1"
	"github.com/kalavai-net/job-operator/pkg/correlation"
	"github.com/kalavai-net/job-operator/pkg/monitoring"
)

const (
	finalizerName = "kalavaijob.kalavai.net/finalizer"
)

// KalavaiJobReconciler reconciles a KalavaiJob object.
type KalavaiJobReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder

	// RecreateOnSpecChange controls whether a spec change replaces the
	// children under a new correlation id. When disabled the change is
	// acknowledged but loudly skipped, never silently dropped.
	RecreateOnSpecChange bool
}

// Reconcile drives a KalavaiJob to its desired state: children created under
// a live correlation id, and removed when the job goes away.
//
// +kubebuilder:rbac:groups=kalavai.net,resources=kalavaijobs,verbs=get;list;watch;update;patch
// +kubebuilder:rbac:groups=kalavai.net,resources=kalavaijobs/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=kalavai.net,resources=kalavaijobs/finalizers,verbs=update
// +kubebuilder:rbac:groups=helm.toolkit.fluxcd.io,resources=helmreleases,verbs=get;list;watch;create;delete
func (r *KalavaiJobReconciler) Reconcile(
	ctx context.Context,
	req ctrl.Request,
) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	job := &kalavaiv1.KalavaiJob{}
	if err := r.Get(ctx, req.NamespacedName, job); err != nil {
		if errors.IsNotFound(err) {
			logger.Info("KalavaiJob resource not found, ignoring")
			return ctrl.Result{}, nil
		}
		logger.Error(err, "Failed to get KalavaiJob")
		return ctrl.Result{}, err
	}

	ctx, span := monitoring.StartReconcileSpan(ctx,
		"KalavaiJob.Reconcile", job.Name, job.Namespace, "KalavaiJob")
	defer span.End()

	// Handle deletion
	if !job.DeletionTimestamp.IsZero() {
		return r.handleDeletion(ctx, job)
	}

	// Add finalizer if not present
	if !slices.Contains(job.Finalizers, finalizerName) {
		job.Finalizers = append(job.Finalizers, finalizerName)
		if err := r.Update(ctx, job); err != nil {
			logger.Error(err, "Failed to add finalizer")
			monitoring.RecordSpanError(span, err)
			return ctrl.Result{}, err
		}
		r.Recorder.Event(job, "Normal", "Finalizer", "Added finalizer")
	}

	jobID := job.Labels[correlation.LabelParentJobID]

	// First pass for this job: no correlation id recorded yet.
	if jobID == "" {
		if err := r.createChildren(ctx, job); err != nil {
			logger.Error(err, "Failed to create children")
			r.Recorder.Eventf(job, "Warning", "FailedCreate", "Failed to create children: %v", err)
			monitoring.RecordSpanError(span, err)
			return ctrl.Result{}, err
		}
		r.Recorder.Event(job, "Normal", "Synced", "Successfully deployed KalavaiJob")
		return ctrl.Result{}, nil
	}

	// A failure between the label write and the status write leaves the id
	// half recorded, which would disable spec-change detection for good.
	if job.Status.JobID != jobID {
		if err := r.recordJobID(ctx, job, jobID); err != nil {
			logger.Error(err, "Failed to repair job id record")
			monitoring.RecordSpanError(span, err)
			return ctrl.Result{}, err
		}
		logger.Info("Repaired partially recorded job id", "jobID", jobID)
		return ctrl.Result{}, nil
	}

	// Spec change: the recorded generation no longer matches.
	if job.Status.ObservedGeneration != 0 && job.Status.ObservedGeneration != job.Generation {
		return r.handleSpecChange(ctx, job, jobID)
	}

	return ctrl.Result{}, nil
}

// handleSpecChange replaces the children under a new correlation id, or
// acknowledges the change without acting when recreation is disabled.
func (r *KalavaiJobReconciler) handleSpecChange(
	ctx context.Context,
	job *kalavaiv1.KalavaiJob,
	oldJobID string,
) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	if !r.RecreateOnSpecChange {
		logger.Info("Spec changed but recreation is disabled, children left as-is",
			"jobID", oldJobID, "generation", job.Generation,
			"observedGeneration", job.Status.ObservedGeneration)
		r.Recorder.Event(job, "Warning", "SpecChangeSkipped",
			"Spec changed but recreate-on-spec-change is disabled")

		job.Status.ObservedGeneration = job.Generation
		if err := r.Status().Update(ctx, job); err != nil {
			logger.Error(err, "Failed to acknowledge spec change")
			return ctrl.Result{}, err
		}
		return ctrl.Result{}, nil
	}

	logger.Info("Spec changed, re-creating children", "oldJobID", oldJobID)

	if err := r.cascadeDelete(ctx, job); err != nil {
		logger.Error(err, "Failed to delete children of previous spec")
		r.Recorder.Eventf(job, "Warning", "FailedDelete",
			"Failed to delete children of previous spec: %v", err)
		return ctrl.Result{}, err
	}

	if err := r.createChildren(ctx, job); err != nil {
		logger.Error(err, "Failed to re-create children")
		r.Recorder.Eventf(job, "Warning", "FailedCreate", "Failed to re-create children: %v", err)
		return ctrl.Result{}, err
	}

	r.Recorder.Event(job, "Normal", "Recreated", "Children re-created for changed spec")
	return ctrl.Result{}, nil
}

// handleDeletion handles cleanup when a KalavaiJob is being deleted. The
// finalizer is only cleared once the cascade ran, signalling completion to
// the API server so it can release the object.
func (r *KalavaiJobReconciler) handleDeletion(
	ctx context.Context,
	job *kalavaiv1.KalavaiJob,
) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	if slices.Contains(job.Finalizers, finalizerName) {
		if err := r.cascadeDelete(ctx, job); err != nil {
			logger.Error(err, "Failed to cascade delete children")
			return ctrl.Result{}, err
		}

		job.Finalizers = slices.DeleteFunc(job.Finalizers, func(s string) bool {
			return s == finalizerName
		})
		if err := r.Update(ctx, job); err != nil {
			logger.Error(err, "Failed to remove finalizer")
			return ctrl.Result{}, err
		}
		monitoring.DeleteJob(job.Name, job.Namespace)
		r.Recorder.Event(job, "Normal", "Deleted", "Children removed and object finalized")
	}

	return ctrl.Result{}, nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *KalavaiJobReconciler) SetupWithManager(
	mgr ctrl.Manager,
	opts ...controller.Options,
) error {
	controllerOpts := controller.Options{}
	if len(opts) > 0 {
		controllerOpts = opts[0]
	}

	return ctrl.NewControllerManagedBy(mgr).
		For(&kalavaiv1.KalavaiJob{}).
		WithOptions(controllerOpts).
		Complete(r)
}
