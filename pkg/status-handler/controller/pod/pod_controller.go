package pod

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/equality"
	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	kalavaiv1 "github.com/kalavai-net/job-operator/api/v1"
	"github.com/kalavai-net/job-operator/pkg/correlation"
	"github.com/kalavai-net/job-operator/pkg/health"
	"github.com/kalavai-net/job-operator/pkg/monitoring"
	"github.com/kalavai-net/job-operator/pkg/resolver"
	"github.com/kalavai-net/job-operator/pkg/util/status"
)

// unassignedNode is recorded for pods the scheduler has not placed yet.
const unassignedNode = "Unassigned"

// PodReconciler folds the status of labeled pods into the parent KalavaiJob:
// phase, node assignment, conditions, restart counts, and the derived crash
// diagnostics of the health analyzer.
type PodReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Resolver *resolver.Resolver
}

// Reconcile recomputes status.pods[name] for one labeled pod. Like all
// status feeds, failures are logged and absorbed rather than returned.
//
// +kubebuilder:rbac:groups="",resources=pods,verbs=get;list;watch
// +kubebuilder:rbac:groups=kalavai.net,resources=kalavaijobs,verbs=get;list
// +kubebuilder:rbac:groups=kalavai.net,resources=kalavaijobs/status,verbs=patch
func (r *PodReconciler) Reconcile(
	ctx context.Context,
	req ctrl.Request,
) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	pod := &corev1.Pod{}
	if err := r.Get(ctx, req.NamespacedName, pod); err != nil {
		if !errors.IsNotFound(err) {
			logger.Error(err, "Failed to get Pod")
		}
		return ctrl.Result{}, nil
	}

	jobID := pod.Labels[correlation.LabelChildJobName]
	parent, err := r.Resolver.ForJobID(ctx, req.Namespace, jobID)
	if err != nil {
		logger.Error(err, "Failed to look up parent, skipping", "jobID", jobID)
		return ctrl.Result{}, nil
	}
	if parent == nil {
		logger.Info("No KalavaiJob for pod, skipping", "jobID", jobID)
		return ctrl.Result{}, nil
	}

	record := buildPodStatus(pod, parent)

	if err := status.PatchPod(ctx, r.Client, parent, pod.Name, record); err != nil {
		logger.Error(err, "Failed to sync pod status", "pod", pod.Name, "job", parent.Name)
		return ctrl.Result{}, nil
	}

	crashEvents := 0
	if record.Health != nil {
		crashEvents = len(record.Health.CrashEvents)
	}
	monitoring.SetPodHealth(parent.Name, parent.Namespace, pod.Name, record.Restarts, crashEvents)

	logger.Info("Synced pod status", "pod", pod.Name, "job", parent.Name,
		"phase", record.Phase, "restarts", record.Restarts)
	return ctrl.Result{}, nil
}

// buildPodStatus assembles the status.pods[name] record for one snapshot.
// The health block carries the parent's recorded crash history forward so
// bounded events survive across snapshots.
func buildPodStatus(pod *corev1.Pod, parent *kalavaiv1.KalavaiJob) kalavaiv1.PodStatus {
	nodeName := pod.Spec.NodeName
	if nodeName == "" {
		nodeName = unassignedNode
	}

	var previous *kalavaiv1.PodHealth
	if recorded, ok := parent.Status.Pods[pod.Name]; ok {
		previous = recorded.Health
	}

	return kalavaiv1.PodStatus{
		NodeName:   nodeName,
		Phase:      pod.Status.Phase,
		Restarts:   health.TotalRestarts(pod),
		Conditions: pod.Status.Conditions,
		Health:     health.Analyze(pod, previous, metav1.Now()),
	}
}

// statusChanged triggers on any observable pod status change of labeled
// pods. This is the (Pod, status) entry of the feed dispatch table.
func statusChanged() predicate.Predicate {
	return predicate.Funcs{
		CreateFunc: func(e event.CreateEvent) bool {
			return hasJobLabel(e.Object)
		},
		UpdateFunc: func(e event.UpdateEvent) bool {
			if !hasJobLabel(e.ObjectNew) {
				return false
			}
			oldPod, okOld := e.ObjectOld.(*corev1.Pod)
			newPod, okNew := e.ObjectNew.(*corev1.Pod)
			if !okOld || !okNew {
				return false
			}
			return !equality.Semantic.DeepEqual(oldPod.Status, newPod.Status)
		},
		DeleteFunc: func(event.DeleteEvent) bool {
			return false
		},
	}
}

func hasJobLabel(obj client.Object) bool {
	_, ok := obj.GetLabels()[correlation.LabelChildJobName]
	return ok
}

// SetupWithManager sets up the controller with the Manager.
func (r *PodReconciler) SetupWithManager(
	mgr ctrl.Manager,
	opts ...controller.Options,
) error {
	controllerOpts := controller.Options{}
	if len(opts) > 0 {
		controllerOpts = opts[0]
	}

	return ctrl.NewControllerManagedBy(mgr).
		Named("pod-status").
		For(&corev1.Pod{}, builder.WithPredicates(statusChanged())).
		WithOptions(controllerOpts).
		Complete(r)
}
