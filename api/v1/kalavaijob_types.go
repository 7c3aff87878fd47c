/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1

import (
	corev1 "k8s.io/api/core/v1"
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ============================================================================
// KalavaiJob Spec (user-facing)
// ============================================================================

// NodeSelectorsOp defines how multiple node selectors are combined.
// +kubebuilder:validation:Enum=AND;OR
type NodeSelectorsOp string

const (
	// NodeSelectorsOpAnd requires all selectors to match.
	NodeSelectorsOpAnd NodeSelectorsOp = "AND"

	// NodeSelectorsOpOr requires any selector to match.
	NodeSelectorsOpOr NodeSelectorsOp = "OR"
)

// TemplateSpec identifies the Helm chart realizing the job and the values
// passed to it.
type TemplateSpec struct {
	// Chart is the name of the chart in the template repository.
	// +kubebuilder:validation:MinLength=1
	// +kubebuilder:validation:MaxLength=253
	Chart string `json:"chart"`

	// Version pins the chart version. When empty, the version field is left
	// off the child release entirely so the repository default is used.
	// +optional
	Version string `json:"version,omitempty"`

	// Repo is the name of the HelmRepository source holding the chart.
	// Defaults to "kalavai-templates".
	// +optional
	Repo string `json:"repo,omitempty"`

	// Values holds arbitrary chart values. The operator injects a "system"
	// block into this map; a user-supplied "system" key is overwritten.
	// +optional
	Values *apiextensionsv1.JSON `json:"values,omitempty"`
}

// KalavaiJobSpec defines the desired state of a KalavaiJob.
type KalavaiJobSpec struct {
	// Template describes the chart deployed for this job.
	Template TemplateSpec `json:"template"`

	// PriorityClassName is propagated to the chart via values.system.
	// +optional
	PriorityClassName string `json:"priorityClassName,omitempty"`

	// NodeSelectors restricts which nodes the job workloads may land on.
	// +optional
	NodeSelectors []string `json:"nodeSelectors,omitempty"`

	// NodeSelectorsOps sets how NodeSelectors are combined. Defaults to OR.
	// +kubebuilder:default=OR
	// +optional
	NodeSelectorsOps NodeSelectorsOp `json:"nodeSelectorsOps,omitempty"`
}

// ============================================================================
// KalavaiJob Status (operator-owned)
// ============================================================================
//
// The status document is written piecewise: each feed controller merge-patches
// exactly one named sub-key (releases[name], pods[name], services[name]) so
// that concurrent updates from unrelated children never clobber each other.

// ReleaseCondition is a single condition copied off the child HelmRelease,
// filtered to the fields the job status contract exposes.
type ReleaseCondition struct {
	// +optional
	Type string `json:"type,omitempty"`
	// +optional
	Status string `json:"status,omitempty"`
	// +optional
	Reason string `json:"reason,omitempty"`
	// +optional
	Message string `json:"message,omitempty"`
	// +optional
	LastTransitionTime string `json:"lastTransitionTime,omitempty"`
}

// ReleaseStatus mirrors the latest condition list of one child HelmRelease.
// No history is kept beyond the latest list.
type ReleaseStatus struct {
	// +optional
	Conditions []ReleaseCondition `json:"conditions,omitempty"`
}

// CrashReason classifies an abnormal container transition.
// +kubebuilder:validation:Enum=CrashLoopBackOff;Error;ImagePullBackOff;OOMKilled;Terminated;RestartDetected
type CrashReason string

const (
	CrashReasonCrashLoopBackOff CrashReason = "CrashLoopBackOff"
	CrashReasonError            CrashReason = "Error"
	CrashReasonImagePullBackOff CrashReason = "ImagePullBackOff"
	CrashReasonOOMKilled        CrashReason = "OOMKilled"
	CrashReasonTerminated       CrashReason = "Terminated"
	CrashReasonRestartDetected  CrashReason = "RestartDetected"
)

// CrashEvent records one abnormal container transition.
type CrashEvent struct {
	// Container is the name of the container the event belongs to.
	Container string `json:"container"`

	// Reason classifies the transition.
	Reason CrashReason `json:"reason"`

	// Message is the container-reported or synthesized description.
	// +optional
	Message string `json:"message,omitempty"`

	// ExitCode is set for terminated containers.
	// +optional
	ExitCode *int32 `json:"exitCode,omitempty"`

	// Timestamp is when the transition was observed on the container.
	Timestamp metav1.Time `json:"timestamp"`
}

// ContainerHealth summarizes the current state of one container.
type ContainerHealth struct {
	// +optional
	RestartCount int32 `json:"restartCount,omitempty"`
	// +optional
	Ready bool `json:"ready,omitempty"`
	// +optional
	Started bool `json:"started,omitempty"`
	// State names the current container state: Running, Waiting or Terminated.
	// +optional
	State string `json:"state,omitempty"`
}

// PodHealth is a sparse diagnostic block, present only when a pod has
// restarted or produced crash events.
type PodHealth struct {
	// TotalRestarts is the sum of all container restart counts at the
	// current snapshot. It is a live gauge, not a monotonic counter.
	TotalRestarts int32 `json:"totalRestarts"`

	// ContainerStatuses summarizes each container by name.
	// +optional
	ContainerStatuses map[string]ContainerHealth `json:"containerStatuses,omitempty"`

	// CrashEvents holds the most recent crash events, oldest dropped first.
	// +kubebuilder:validation:MaxItems=10
	// +optional
	CrashEvents []CrashEvent `json:"crashEvents,omitempty"`

	// LastUpdated is when this block was last recomputed.
	// +optional
	LastUpdated metav1.Time `json:"lastUpdated,omitempty"`
}

// PodStatus mirrors the observed state of one pod carrying the job label.
type PodStatus struct {
	// +optional
	NodeName string `json:"nodeName,omitempty"`
	// +optional
	Phase corev1.PodPhase `json:"phase,omitempty"`
	// Restarts is the summed restart count of all containers.
	// +optional
	Restarts int32 `json:"restarts,omitempty"`
	// +optional
	Conditions []corev1.PodCondition `json:"conditions,omitempty"`
	// Health is only present when restarts or crash events exist.
	// +optional
	Health *PodHealth `json:"health,omitempty"`
}

// ServiceStatus mirrors the addressing of one service carrying the job label.
type ServiceStatus struct {
	// +optional
	ClusterIP string `json:"clusterIP,omitempty"`
	// +optional
	Ports []corev1.ServicePort `json:"ports,omitempty"`
}

// KalavaiJobStatus defines the observed state of a KalavaiJob.
type KalavaiJobStatus struct {
	// JobID is the live correlation id binding children to this job.
	// +optional
	JobID string `json:"jobId,omitempty"`

	// ObservedGeneration is the spec generation last acted on.
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`

	// Releases holds per-HelmRelease condition mirrors, keyed by name.
	// +optional
	Releases map[string]ReleaseStatus `json:"releases,omitempty"`

	// Pods holds per-pod observations, keyed by pod name.
	// +optional
	Pods map[string]PodStatus `json:"pods,omitempty"`

	// Services holds per-service observations, keyed by service name.
	// +optional
	Services map[string]ServiceStatus `json:"services,omitempty"`
}

// ============================================================================
// KalavaiJob Root Object
// ============================================================================

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Chart",type=string,JSONPath=`.spec.template.chart`
// +kubebuilder:printcolumn:name="JobID",type=string,JSONPath=`.status.jobId`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// KalavaiJob is the Schema for the kalavaijobs API.
type KalavaiJob struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   KalavaiJobSpec   `json:"spec,omitempty"`
	Status KalavaiJobStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// KalavaiJobList contains a list of KalavaiJob.
type KalavaiJobList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []KalavaiJob `json:"items"`
}

func init() {
	SchemeBuilder.Register(&KalavaiJob{}, &KalavaiJobList{})
}
