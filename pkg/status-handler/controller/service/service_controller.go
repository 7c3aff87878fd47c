package service

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/equality"
	"k8s.io/apimachinery/pkg/api/errors"
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
	"github.com/kalavai-net/job-operator/pkg/util/status"
)

// ServiceReconciler folds the addressing of labeled services (cluster IP
// and port list) into the parent KalavaiJob status.
type ServiceReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Resolver *resolver.Resolver
}

// Reconcile writes status.services[name] for one labeled service. Like all
// status feeds, failures are logged and absorbed rather than returned.
//
// +kubebuilder:rbac:groups="",resources=services,verbs=get;list;watch
// +kubebuilder:rbac:groups=kalavai.net,resources=kalavaijobs,verbs=get;list
// +kubebuilder:rbac:groups=kalavai.net,resources=kalavaijobs/status,verbs=patch
func (r *ServiceReconciler) Reconcile(
	ctx context.Context,
	req ctrl.Request,
) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	svc := &corev1.Service{}
	if err := r.Get(ctx, req.NamespacedName, svc); err != nil {
		if !errors.IsNotFound(err) {
			logger.Error(err, "Failed to get Service")
		}
		return ctrl.Result{}, nil
	}

	jobID := svc.Labels[correlation.LabelChildJobName]
	parent, err := r.Resolver.ForJobID(ctx, req.Namespace, jobID)
	if err != nil {
		logger.Error(err, "Failed to look up parent, skipping", "jobID", jobID)
		return ctrl.Result{}, nil
	}
	if parent == nil {
		logger.Info("No KalavaiJob for service, skipping", "jobID", jobID)
		return ctrl.Result{}, nil
	}

	record := kalavaiv1.ServiceStatus{
		ClusterIP: svc.Spec.ClusterIP,
		Ports:     svc.Spec.Ports,
	}
	if err := status.PatchService(ctx, r.Client, parent, svc.Name, record); err != nil {
		logger.Error(err, "Failed to sync service status", "service", svc.Name, "job", parent.Name)
		return ctrl.Result{}, nil
	}

	logger.Info("Synced service status", "service", svc.Name, "job", parent.Name,
		"ports", len(record.Ports))
	return ctrl.Result{}, nil
}

// portsChanged triggers on port-list or cluster-IP changes of labeled
// services. This is the (Service, spec.ports) entry of the feed dispatch
// table.
func portsChanged() predicate.Predicate {
	return predicate.Funcs{
		CreateFunc: func(e event.CreateEvent) bool {
			return hasJobLabel(e.Object)
		},
		UpdateFunc: func(e event.UpdateEvent) bool {
			if !hasJobLabel(e.ObjectNew) {
				return false
			}
			oldSvc, okOld := e.ObjectOld.(*corev1.Service)
			newSvc, okNew := e.ObjectNew.(*corev1.Service)
			if !okOld || !okNew {
				return false
			}
			return oldSvc.Spec.ClusterIP != newSvc.Spec.ClusterIP ||
				!equality.Semantic.DeepEqual(oldSvc.Spec.Ports, newSvc.Spec.Ports)
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
func (r *ServiceReconciler) SetupWithManager(
	mgr ctrl.Manager,
	opts ...controller.Options,
) error {
	controllerOpts := controller.Options{}
	if len(opts) > 0 {
		controllerOpts = opts[0]
	}

	return ctrl.NewControllerManagedBy(mgr).
		Named("service-status").
		For(&corev1.Service{}, builder.WithPredicates(portsChanged())).
		WithOptions(controllerOpts).
		Complete(r)
}
