package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/webhook"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"

	kalavaiv1 "github.com/kalavai-net/job-operator/api/v1"
)

// +kubebuilder:webhook:path=/validate-kalavai-net-v1-kalavaijob,mutating=false,failurePolicy=fail,sideEffects=None,groups=kalavai.net,resources=kalavaijobs,verbs=create;update,versions=v1,name=vkalavaijob.kb.io,admissionReviewVersions=v1

// KalavaiJobValidator validates Create and Update events for KalavaiJobs.
// It enforces the semantic rules the OpenAPI schema cannot express: the
// chart reference must be set, the selector combination mode must be a
// known keyword, and the chart values must decode as a JSON object.
type KalavaiJobValidator struct{}

var _ webhook.CustomValidator = &KalavaiJobValidator{}

// NewKalavaiJobValidator creates a new validator for KalavaiJobs.
func NewKalavaiJobValidator() *KalavaiJobValidator {
	return &KalavaiJobValidator{}
}

func (v *KalavaiJobValidator) ValidateCreate(
	ctx context.Context,
	obj runtime.Object,
) (admission.Warnings, error) {
	return v.validate(obj)
}

func (v *KalavaiJobValidator) ValidateUpdate(
	ctx context.Context,
	oldObj, newObj runtime.Object,
) (admission.Warnings, error) {
	return v.validate(newObj)
}

func (v *KalavaiJobValidator) ValidateDelete(
	ctx context.Context,
	obj runtime.Object,
) (admission.Warnings, error) {
	return nil, nil
}

func (v *KalavaiJobValidator) validate(obj runtime.Object) (admission.Warnings, error) {
	job, ok := obj.(*kalavaiv1.KalavaiJob)
	if !ok {
		return nil, fmt.Errorf("expected KalavaiJob, got %T", obj)
	}

	if job.Spec.Template.Chart == "" {
		return nil, fmt.Errorf("spec.template.chart is required")
	}

	switch job.Spec.NodeSelectorsOps {
	case "", kalavaiv1.NodeSelectorsOpAnd, kalavaiv1.NodeSelectorsOpOr:
	default:
		return nil, fmt.Errorf(
			"spec.nodeSelectorsOps must be %q or %q, got %q",
			kalavaiv1.NodeSelectorsOpAnd, kalavaiv1.NodeSelectorsOpOr,
			job.Spec.NodeSelectorsOps,
		)
	}

	if raw := job.Spec.Template.Values; raw != nil && len(raw.Raw) > 0 {
		values := map[string]any{}
		if err := json.Unmarshal(raw.Raw, &values); err != nil {
			return nil, fmt.Errorf("spec.template.values must be a JSON object: %w", err)
		}
	}

	var warnings admission.Warnings
	if job.Spec.Template.Values == nil || len(job.Spec.Template.Values.Raw) == 0 {
		warnings = append(warnings, "spec.template.values is empty; the chart will be deployed with only operator-injected values")
	}

	return warnings, nil
}
