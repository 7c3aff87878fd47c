package helmrelease

import (
	"context"
	"reflect"

	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
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
	"github.com/kalavai-net/job-operator/pkg/resolver"
	"github.com/kalavai-net/job-operator/pkg/translator"
	"github.com/kalavai-net/job-operator/pkg/util/status"
)

// HelmReleaseReconciler replicates the condition list of a labeled
// HelmRelease into the status of its parent KalavaiJob.
type HelmReleaseReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Resolver *resolver.Resolver
}

// Reconcile folds one HelmRelease's conditions into the parent status.
// Status-sync failures are logged and absorbed: a dropped update is
// rewritten by the next condition change, and crashing here would wedge
// the whole feed.
//
// +kubebuilder:rbac:groups=helm.toolkit.fluxcd.io,resources=helmreleases,verbs=get;list;watch
// +kubebuilder:rbac:groups=kalavai.net,resources=kalavaijobs,verbs=get;list
// +kubebuilder:rbac:groups=kalavai.net,resources=kalavaijobs/status,verbs=patch
func (r *HelmReleaseReconciler) Reconcile(
	ctx context.Context,
	req ctrl.Request,
) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	release := translator.NewHelmRelease()
	if err := r.Get(ctx, req.NamespacedName, release); err != nil {
		if !errors.IsNotFound(err) {
			logger.Error(err, "Failed to get HelmRelease")
		}
		return ctrl.Result{}, nil
	}

	conditions := extractConditions(release)
	if len(conditions) == 0 {
		return ctrl.Result{}, nil
	}

	jobID := release.GetLabels()[correlation.LabelChildJobName]
	parent, err := r.Resolver.ForJobID(ctx, req.Namespace, jobID)
	if err != nil {
		logger.Error(err, "Failed to look up parent, skipping", "jobID", jobID)
		return ctrl.Result{}, nil
	}
	if parent == nil {
		logger.Info("No KalavaiJob for release, skipping", "jobID", jobID)
		return ctrl.Result{}, nil
	}

	if err := status.PatchRelease(ctx, r.Client, parent, release.GetName(),
		kalavaiv1.ReleaseStatus{Conditions: conditions},
	); err != nil {
		logger.Error(err, "Failed to replicate release conditions",
			"release", release.GetName(), "job", parent.Name)
		return ctrl.Result{}, nil
	}

	logger.V(1).Info("Replicated release conditions",
		"release", release.GetName(), "job", parent.Name, "conditions", len(conditions))
	return ctrl.Result{}, nil
}

// extractConditions copies the release's condition list verbatim, filtered
// to the fields the job status contract exposes. Malformed entries decode
// to their zero values rather than failing the feed.
func extractConditions(release *unstructured.Unstructured) []kalavaiv1.ReleaseCondition {
	raw, found, err := unstructured.NestedSlice(release.Object, "status", "conditions")
	if err != nil || !found {
		return nil
	}

	conditions := make([]kalavaiv1.ReleaseCondition, 0, len(raw))
	for _, item := range raw {
		cond, ok := item.(map[string]any)
		if !ok {
			continue
		}
		conditions = append(conditions, kalavaiv1.ReleaseCondition{
			Type:               stringField(cond, "type"),
			Status:             stringField(cond, "status"),
			Reason:             stringField(cond, "reason"),
			Message:            stringField(cond, "message"),
			LastTransitionTime: stringField(cond, "lastTransitionTime"),
		})
	}
	return conditions
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// conditionsChanged triggers only on condition-list changes of labeled
// releases. This is the (HelmRelease, status.conditions) entry of the feed
// dispatch table.
func conditionsChanged() predicate.Predicate {
	return predicate.Funcs{
		CreateFunc: func(e event.CreateEvent) bool {
			return hasJobLabel(e.Object)
		},
		UpdateFunc: func(e event.UpdateEvent) bool {
			if !hasJobLabel(e.ObjectNew) {
				return false
			}
			oldRelease, okOld := e.ObjectOld.(*unstructured.Unstructured)
			newRelease, okNew := e.ObjectNew.(*unstructured.Unstructured)
			if !okOld || !okNew {
				return false
			}
			oldConds, _, _ := unstructured.NestedSlice(oldRelease.Object, "status", "conditions")
			newConds, _, _ := unstructured.NestedSlice(newRelease.Object, "status", "conditions")
			return !reflect.DeepEqual(oldConds, newConds)
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
func (r *HelmReleaseReconciler) SetupWithManager(
	mgr ctrl.Manager,
	opts ...controller.Options,
) error {
	controllerOpts := controller.Options{}
	if len(opts) > 0 {
		controllerOpts = opts[0]
	}

	return ctrl.NewControllerManagedBy(mgr).
		Named("helmrelease-status").
		For(translator.NewHelmRelease(), builder.WithPredicates(conditionsChanged())).
		WithOptions(controllerOpts).
		Complete(r)
}
