package helmrelease

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/event"

	kalavaiv1 "github.com/kalavai-net/job-operator/api/v1"
	"github.com/kalavai-net/job-operator/pkg/resolver"
	"github.com/kalavai-net/job-operator/pkg/translator"
)

const testJobID = "3b241101-e2bb-4255-8caf-4136c566a962"

func newScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	if err := kalavaiv1.AddToScheme(scheme); err != nil {
		t.Fatalf("Failed to add kalavai scheme: %v", err)
	}
	scheme.AddKnownTypeWithName(
		translator.GroupVersion.WithKind("HelmRelease"), &unstructured.Unstructured{})
	scheme.AddKnownTypeWithName(
		translator.GroupVersion.WithKind("HelmReleaseList"), &unstructured.UnstructuredList{})
	return scheme
}

func labeledRelease(name string, conditions []any) *unstructured.Unstructured {
	release := translator.NewHelmRelease()
	release.SetName(name)
	release.SetNamespace("default")
	release.SetLabels(map[string]string{"kalavai.job.name": testJobID})
	if conditions != nil {
		if err := unstructured.SetNestedSlice(release.Object,
			conditions, "status", "conditions"); err != nil {
			panic(err)
		}
	}
	return release
}

func readyCondition(status, reason string) map[string]any {
	return map[string]any{
		"type":               "Ready",
		"status":             status,
		"reason":             reason,
		"message":            "release reconciled",
		"lastTransitionTime": "2026-02-01T10:00:00Z",
	}
}

func reconcileOnce(t *testing.T, c client.Client, releaseName string) {
	t.Helper()
	r := &HelmReleaseReconciler{
		Client:   c,
		Scheme:   newScheme(t),
		Resolver: resolver.NewResolver(c),
	}
	req := ctrl.Request{NamespacedName: types.NamespacedName{
		Name: releaseName, Namespace: "default",
	}}
	if _, err := r.Reconcile(t.Context(), req); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
}

func TestReconcileReplicatesConditions(t *testing.T) {
	t.Parallel()

	job := &kalavaiv1.KalavaiJob{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "test-job",
			Namespace: "default",
			Labels:    map[string]string{"jobId": testJobID},
		},
	}
	release := labeledRelease("test-job", []any{readyCondition("True", "ReconciliationSucceeded")})

	c := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithStatusSubresource(&kalavaiv1.KalavaiJob{}).
		WithObjects(job, release).
		Build()

	reconcileOnce(t, c, "test-job")

	got := &kalavaiv1.KalavaiJob{}
	if err := c.Get(t.Context(), types.NamespacedName{
		Name: "test-job", Namespace: "default",
	}, got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	want := kalavaiv1.ReleaseStatus{
		Conditions: []kalavaiv1.ReleaseCondition{{
			Type:               "Ready",
			Status:             "True",
			Reason:             "ReconciliationSucceeded",
			Message:            "release reconciled",
			LastTransitionTime: "2026-02-01T10:00:00Z",
		}},
	}
	if diff := cmp.Diff(want, got.Status.Releases["test-job"]); diff != "" {
		t.Errorf("releases[test-job] mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileSkipsReleaseWithoutConditions(t *testing.T) {
	t.Parallel()

	job := &kalavaiv1.KalavaiJob{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "test-job",
			Namespace: "default",
			Labels:    map[string]string{"jobId": testJobID},
		},
	}
	release := labeledRelease("test-job", nil)

	c := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithStatusSubresource(&kalavaiv1.KalavaiJob{}).
		WithObjects(job, release).
		Build()

	reconcileOnce(t, c, "test-job")

	got := &kalavaiv1.KalavaiJob{}
	if err := c.Get(t.Context(), types.NamespacedName{
		Name: "test-job", Namespace: "default",
	}, got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Status.Releases) != 0 {
		t.Errorf("status.releases = %+v, want empty for a release with no conditions", got.Status.Releases)
	}
}

func TestExtractConditions(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		conditions []any
		want       []kalavaiv1.ReleaseCondition
	}{
		"well-formed condition": {
			conditions: []any{readyCondition("False", "InstallFailed")},
			want: []kalavaiv1.ReleaseCondition{{
				Type:               "Ready",
				Status:             "False",
				Reason:             "InstallFailed",
				Message:            "release reconciled",
				LastTransitionTime: "2026-02-01T10:00:00Z",
			}},
		},
		"missing fields decode to zero values": {
			conditions: []any{map[string]any{"type": "Released"}},
			want:       []kalavaiv1.ReleaseCondition{{Type: "Released"}},
		},
		"malformed entry is dropped": {
			conditions: []any{"not-a-map", readyCondition("True", "Ok")},
			want: []kalavaiv1.ReleaseCondition{{
				Type:               "Ready",
				Status:             "True",
				Reason:             "Ok",
				Message:            "release reconciled",
				LastTransitionTime: "2026-02-01T10:00:00Z",
			}},
		},
		"no conditions": {
			conditions: nil,
			want:       nil,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := extractConditions(labeledRelease("rel", tt.conditions))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("extractConditions() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConditionsChangedPredicate(t *testing.T) {
	t.Parallel()

	base := labeledRelease("rel", []any{readyCondition("False", "Progressing")})
	flipped := labeledRelease("rel", []any{readyCondition("True", "ReconciliationSucceeded")})
	unlabeled := labeledRelease("rel", []any{readyCondition("True", "Ok")})
	unlabeled.SetLabels(nil)

	pred := conditionsChanged()

	tests := map[string]struct {
		got  bool
		want bool
	}{
		"create of labeled release passes": {
			got:  pred.Create(event.CreateEvent{Object: base}),
			want: true,
		},
		"create of unlabeled release filtered": {
			got:  pred.Create(event.CreateEvent{Object: unlabeled}),
			want: false,
		},
		"condition flip passes": {
			got:  pred.Update(event.UpdateEvent{ObjectOld: base, ObjectNew: flipped}),
			want: true,
		},
		"no-op update filtered": {
			got:  pred.Update(event.UpdateEvent{ObjectOld: base, ObjectNew: base.DeepCopy()}),
			want: false,
		},
		"delete filtered": {
			got:  pred.Delete(event.DeleteEvent{Object: base}),
			want: false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Errorf("predicate = %v, want %v", tt.got, tt.want)
			}
		})
	}
}
