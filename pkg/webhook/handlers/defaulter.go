package handlers

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/webhook"

	kalavaiv1 "github.com/kalavai-net/job-operator/api/v1"
	"github.com/kalavai-net/job-operator/pkg/translator"
)

// +kubebuilder:webhook:path=/mutate-kalavai-net-v1-kalavaijob,mutating=true,failurePolicy=fail,sideEffects=None,groups=kalavai.net,resources=kalavaijobs,verbs=create;update,versions=v1,name=mkalavaijob.kb.io,admissionReviewVersions=v1

// KalavaiJobDefaulter applies defaults to KalavaiJob resources at admission
// time, so stored objects always carry explicit values rather than relying
// on the controller to fill gaps at translation time.
type KalavaiJobDefaulter struct{}

var _ webhook.CustomDefaulter = &KalavaiJobDefaulter{}

// NewKalavaiJobDefaulter creates a new defaulter handler.
func NewKalavaiJobDefaulter() *KalavaiJobDefaulter {
	return &KalavaiJobDefaulter{}
}

// Default implements webhook.CustomDefaulter.
func (d *KalavaiJobDefaulter) Default(ctx context.Context, obj runtime.Object) error {
	job, ok := obj.(*kalavaiv1.KalavaiJob)
	if !ok {
		return fmt.Errorf("expected KalavaiJob, got %T", obj)
	}

	if job.Spec.Template.Repo == "" {
		job.Spec.Template.Repo = translator.DefaultRepo
	}
	if job.Spec.NodeSelectorsOps == "" {
		job.Spec.NodeSelectorsOps = kalavaiv1.NodeSelectorsOpOr
	}

	return nil
}
