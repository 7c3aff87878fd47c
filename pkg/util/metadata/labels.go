package metadata

import (
	"maps"

	"github.com/kalavai-net/job-operator/pkg/correlation"
)

// Standard Kubernetes label keys following kubernetes.io conventions.
//
// See: https://kubernetes.io/docs/concepts/overview/working-with-objects/common-labels/
const (
	// LabelAppName is the standard label key for the application name.
	LabelAppName = "app.kubernetes.io/name"

	// LabelAppInstance is the standard label key for the unique instance name.
	LabelAppInstance = "app.kubernetes.io/instance"

	// LabelAppManagedBy is the standard label key for the tool managing the
	// resource.
	LabelAppManagedBy = "app.kubernetes.io/managed-by"
)

const (
	// AppNameKalavai is the fixed application name for all Kalavai resources.
	AppNameKalavai = "kalavai"

	// ManagedByKalavai identifies the operator managing these resources.
	ManagedByKalavai = "kalavai-job-operator"
)

// BuildStandardLabels returns a map of standard kubernetes labels.
// jobName should be the name of the KalavaiJob CR (used for instance label).
func BuildStandardLabels(jobName string) map[string]string {
	return map[string]string{
		LabelAppName:      AppNameKalavai,
		LabelAppInstance:  jobName,
		LabelAppManagedBy: ManagedByKalavai,
	}
}

// BuildChildLabels returns the full label set stamped on a child resource:
// the standard labels plus the correlation label carrying the job id.
func BuildChildLabels(jobName, jobID string) map[string]string {
	labels := BuildStandardLabels(jobName)
	labels[correlation.LabelChildJobName] = jobID
	return labels
}

// MergeLabels merges the given label maps into a fresh map. Later maps win
// on key conflicts.
func MergeLabels(labelMaps ...map[string]string) map[string]string {
	merged := map[string]string{}
	for _, m := range labelMaps {
		maps.Copy(merged, m)
	}
	return merged
}
