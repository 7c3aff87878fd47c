package translator

import (
	"encoding/json"
	"fmt"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	kalavaiv1 "github.com/kalavai-net/job-operator/api/v1"
	"github.com/kalavai-net/job-operator/pkg/util/metadata"
)

const (
	// DefaultRepo is the HelmRepository used when the job spec names none.
	DefaultRepo = "kalavai-templates"

	// DefaultRepoNamespace is where the HelmRepository sources live.
	DefaultRepoNamespace = "default"

	// ReconcileInterval is the interval written on every child release.
	ReconcileInterval = "10m"

	// SystemValuesKey is the values key reserved for operator-injected
	// fields. A user-supplied key of the same name is overwritten.
	SystemValuesKey = "system"
)

// GroupVersion of the child HelmRelease resource (Flux helm-controller).
var GroupVersion = schema.GroupVersion{Group: "helm.toolkit.fluxcd.io", Version: "v2"}

// NewHelmRelease returns an empty HelmRelease with its GVK set, ready for
// use with an unstructured-aware client.
func NewHelmRelease() *unstructured.Unstructured {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(GroupVersion.WithKind("HelmRelease"))
	return obj
}

// NewHelmReleaseList returns an empty HelmReleaseList with its GVK set.
func NewHelmReleaseList() *unstructured.UnstructuredList {
	list := &unstructured.UnstructuredList{}
	list.SetGroupVersionKind(GroupVersion.WithKind("HelmReleaseList"))
	return list
}

// Result is the translated child descriptor plus anything the caller
// should surface to the operator log.
type Result struct {
	// Release is the child HelmRelease carrying the correlation label.
	Release *unstructured.Unstructured

	// Warnings lists non-fatal findings (empty values, overwritten keys).
	Warnings []string
}

// Translate builds the child HelmRelease descriptor for a KalavaiJob.
//
// The chart values are deep-merged with an injected "system" object holding
// the priority class, node selectors, selector combination mode, and the
// correlation id. A version is only emitted when the spec pins one; an empty
// version field would be rejected by the HelmRelease validator.
//
// An empty values map is not an error: translation proceeds with only the
// system block, and the condition is reported as a warning.
func Translate(job *kalavaiv1.KalavaiJob, jobID string) (*Result, error) {
	res := &Result{}
	tmpl := job.Spec.Template

	values, err := decodeValues(tmpl.Values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode template values: %w", err)
	}
	if len(values) == 0 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("KalavaiJob %q created with empty template.values", job.Name))
	}
	if _, ok := values[SystemValuesKey]; ok {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%q property found in provided values, it will be overwritten", SystemValuesKey))
	}
	values[SystemValuesKey] = systemValues(&job.Spec, jobID)

	repo := tmpl.Repo
	if repo == "" {
		repo = DefaultRepo
	}

	chartSpec := map[string]any{
		"chart": tmpl.Chart,
		"sourceRef": map[string]any{
			"kind":      "HelmRepository",
			"name":      repo,
			"namespace": DefaultRepoNamespace,
		},
	}
	if tmpl.Version != "" {
		chartSpec["version"] = tmpl.Version
	}

	release := NewHelmRelease()
	release.SetName(job.Name)
	release.SetNamespace(job.Namespace)
	release.SetLabels(metadata.BuildChildLabels(job.Name, jobID))
	release.Object["spec"] = map[string]any{
		"interval": ReconcileInterval,
		"chart": map[string]any{
			"spec": chartSpec,
		},
		"values": values,
	}

	res.Release = release
	return res, nil
}

// systemValues builds the injected values.system block. Unset fields are
// emitted as explicit nulls so charts can test for their presence, matching
// the field contract of the job template charts.
func systemValues(spec *kalavaiv1.KalavaiJobSpec, jobID string) map[string]any {
	ops := spec.NodeSelectorsOps
	if ops == "" {
		ops = kalavaiv1.NodeSelectorsOpOr
	}

	var priorityClass any
	if spec.PriorityClassName != "" {
		priorityClass = spec.PriorityClassName
	}

	var selectors any
	if spec.NodeSelectors != nil {
		s := make([]any, 0, len(spec.NodeSelectors))
		for _, sel := range spec.NodeSelectors {
			s = append(s, sel)
		}
		selectors = s
	}

	return map[string]any{
		"priorityClassName": priorityClass,
		"nodeSelectors":     selectors,
		"nodeSelectorsOps":  string(ops),
		"jobId":             jobID,
	}
}

// decodeValues unmarshals the raw chart values into a plain map. A nil or
// empty document decodes to an empty, writable map.
func decodeValues(raw *apiextensionsv1.JSON) (map[string]any, error) {
	if raw == nil || len(raw.Raw) == 0 {
		return map[string]any{}, nil
	}
	values := map[string]any{}
	if err := json.Unmarshal(raw.Raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}
