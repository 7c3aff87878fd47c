package kalavaijob

import (
	"testing"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	kalavaiv1 "github.com/kalavai-net/job-operator/api/v1"
	"github.com/kalavai-net/job-operator/pkg/correlation"
	"github.com/kalavai-net/job-operator/pkg/envtestutil"
	"github.com/kalavai-net/job-operator/pkg/translator"
)

const existingJobID = "3b241101-e2bb-4255-8caf-4136c566a962"

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

func newJob(mutate func(*kalavaiv1.KalavaiJob)) *kalavaiv1.KalavaiJob {
	job := &kalavaiv1.KalavaiJob{
		ObjectMeta: metav1.ObjectMeta{
			Name:       "test-job",
			Namespace:  "default",
			Generation: 1,
		},
		Spec: kalavaiv1.KalavaiJobSpec{
			Template: kalavaiv1.TemplateSpec{Chart: "vllm"},
		},
	}
	if mutate != nil {
		mutate(job)
	}
	return job
}

func deployedJob(jobID string, mutate func(*kalavaiv1.KalavaiJob)) *kalavaiv1.KalavaiJob {
	return newJob(func(job *kalavaiv1.KalavaiJob) {
		job.Labels = map[string]string{"jobId": jobID}
		job.Finalizers = []string{finalizerName}
		job.Status.JobID = jobID
		job.Status.ObservedGeneration = 1
		if mutate != nil {
			mutate(job)
		}
	})
}

func childRelease(name, jobID string) *unstructured.Unstructured {
	release := translator.NewHelmRelease()
	release.SetName(name)
	release.SetNamespace("default")
	release.SetLabels(map[string]string{"kalavai.job.name": jobID})
	return release
}

func newReconciler(t *testing.T, c client.Client, recreate bool) *KalavaiJobReconciler {
	t.Helper()
	return &KalavaiJobReconciler{
		Client:               c,
		Scheme:               newScheme(t),
		Recorder:             record.NewFakeRecorder(16),
		RecreateOnSpecChange: recreate,
	}
}

func reconcileJob(t *testing.T, r *KalavaiJobReconciler) {
	t.Helper()
	req := ctrl.Request{NamespacedName: types.NamespacedName{
		Name: "test-job", Namespace: "default",
	}}
	if _, err := r.Reconcile(t.Context(), req); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
}

func getJob(t *testing.T, c client.Client) *kalavaiv1.KalavaiJob {
	t.Helper()
	job := &kalavaiv1.KalavaiJob{}
	if err := c.Get(t.Context(), types.NamespacedName{
		Name: "test-job", Namespace: "default",
	}, job); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	return job
}

func listReleases(t *testing.T, c client.Client) []unstructured.Unstructured {
	t.Helper()
	releases := translator.NewHelmReleaseList()
	if err := c.List(t.Context(), releases, client.InNamespace("default")); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	return releases.Items
}

func TestReconcileCreatesChildrenAndRecordsJobID(t *testing.T) {
	t.Parallel()

	c := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithStatusSubresource(&kalavaiv1.KalavaiJob{}).
		WithObjects(newJob(nil)).
		Build()

	reconcileJob(t, newReconciler(t, c, true))

	job := getJob(t, c)
	jobID := job.Labels["jobId"]
	if !correlation.IsValid(jobID) {
		t.Fatalf("jobId label = %q, want a valid UUID", jobID)
	}
	if job.Status.JobID != jobID {
		t.Errorf("status.jobId = %q, want label value %q", job.Status.JobID, jobID)
	}
	if job.Status.ObservedGeneration != job.Generation {
		t.Errorf("observedGeneration = %d, want %d", job.Status.ObservedGeneration, job.Generation)
	}
	if len(job.Finalizers) != 1 || job.Finalizers[0] != finalizerName {
		t.Errorf("finalizers = %v, want [%s]", job.Finalizers, finalizerName)
	}

	releases := listReleases(t, c)
	if len(releases) != 1 {
		t.Fatalf("child releases = %d, want 1", len(releases))
	}
	release := releases[0]
	if release.GetName() != "test-job" {
		t.Errorf("release name = %q, want test-job", release.GetName())
	}
	if got := release.GetLabels()["kalavai.job.name"]; got != jobID {
		t.Errorf("child correlation label = %q, want %q", got, jobID)
	}
	if len(release.GetOwnerReferences()) != 1 {
		t.Errorf("owner references = %v, want one pointing at the parent", release.GetOwnerReferences())
	}
}

func TestReconcileAdoptsPreExistingChildID(t *testing.T) {
	t.Parallel()

	// Simulates an earlier attempt that created the child but never recorded
	// the id on the parent.
	c := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithStatusSubresource(&kalavaiv1.KalavaiJob{}).
		WithObjects(newJob(nil), childRelease("test-job", existingJobID)).
		Build()

	reconcileJob(t, newReconciler(t, c, true))

	job := getJob(t, c)
	if job.Labels["jobId"] != existingJobID {
		t.Errorf("jobId label = %q, want adopted id %q", job.Labels["jobId"], existingJobID)
	}
	if job.Status.JobID != existingJobID {
		t.Errorf("status.jobId = %q, want adopted id %q", job.Status.JobID, existingJobID)
	}
	if got := listReleases(t, c); len(got) != 1 {
		t.Errorf("child releases = %d, want the pre-existing one only", len(got))
	}
}

func TestReconcileSteadyStateIsNoOp(t *testing.T) {
	t.Parallel()

	c := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithStatusSubresource(&kalavaiv1.KalavaiJob{}).
		WithObjects(
			deployedJob(existingJobID, nil),
			childRelease("test-job", existingJobID),
		).
		Build()

	reconcileJob(t, newReconciler(t, c, true))

	job := getJob(t, c)
	if job.Labels["jobId"] != existingJobID {
		t.Errorf("jobId label = %q, want unchanged %q", job.Labels["jobId"], existingJobID)
	}
	if got := listReleases(t, c); len(got) != 1 {
		t.Errorf("child releases = %d, want unchanged 1", len(got))
	}
}

func TestReconcileSpecChangeRecreatesChildren(t *testing.T) {
	t.Parallel()

	c := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithStatusSubresource(&kalavaiv1.KalavaiJob{}).
		WithObjects(
			deployedJob(existingJobID, func(job *kalavaiv1.KalavaiJob) {
				job.Generation = 2
			}),
			childRelease("test-job", existingJobID),
		).
		Build()

	reconcileJob(t, newReconciler(t, c, true))

	job := getJob(t, c)
	newID := job.Labels["jobId"]
	if newID == existingJobID {
		t.Error("jobId label unchanged, want a fresh id after spec change")
	}
	if !correlation.IsValid(newID) {
		t.Errorf("jobId label = %q, want a valid UUID", newID)
	}
	if job.Status.ObservedGeneration != job.Generation {
		t.Errorf("observedGeneration = %d, want caught up to generation %d",
			job.Status.ObservedGeneration, job.Generation)
	}

	releases := listReleases(t, c)
	if len(releases) != 1 {
		t.Fatalf("child releases = %d, want the replacement only", len(releases))
	}
	if got := releases[0].GetLabels()["kalavai.job.name"]; got != newID {
		t.Errorf("child correlation label = %q, want fresh id %q", got, newID)
	}
}

func TestReconcileSpecChangeWaitsForTerminatingChild(t *testing.T) {
	t.Parallel()

	// The old child carries its own finalizer, so the cascade leaves it
	// terminating and the replacement create collides with it.
	oldChild := childRelease("test-job", existingJobID)
	oldChild.SetFinalizers([]string{"finalizers.fluxcd.io"})

	c := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithStatusSubresource(&kalavaiv1.KalavaiJob{}).
		WithObjects(
			deployedJob(existingJobID, func(job *kalavaiv1.KalavaiJob) {
				job.Generation = 2
			}),
			oldChild,
		).
		Build()

	r := newReconciler(t, c, true)
	req := ctrl.Request{NamespacedName: types.NamespacedName{
		Name: "test-job", Namespace: "default",
	}}
	if _, err := r.Reconcile(t.Context(), req); err == nil {
		t.Fatal("Reconcile() error = nil, want requeue while the old child terminates")
	}

	job := getJob(t, c)
	if job.Labels["jobId"] != existingJobID {
		t.Errorf("jobId label = %q, want old id %q kept until the replacement lands",
			job.Labels["jobId"], existingJobID)
	}
	if job.Status.JobID != existingJobID {
		t.Errorf("status.jobId = %q, want unchanged %q", job.Status.JobID, existingJobID)
	}
	if job.Status.ObservedGeneration == job.Generation {
		t.Error("observedGeneration acknowledged, want spec change left pending")
	}
}

func TestReconcileSpecChangeDoesNotAdoptSurvivingChild(t *testing.T) {
	t.Parallel()

	// The cascade absorbs delete failures, so the old child can still be
	// live when the replacement create runs.
	base := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithStatusSubresource(&kalavaiv1.KalavaiJob{}).
		WithObjects(
			deployedJob(existingJobID, func(job *kalavaiv1.KalavaiJob) {
				job.Generation = 2
			}),
			childRelease("test-job", existingJobID),
		).
		Build()
	c := envtestutil.NewFakeClientWithFailures(base, &envtestutil.FailureConfig{
		OnDelete: envtestutil.FailOnObjectName("test-job", envtestutil.ErrInjected),
	})

	r := newReconciler(t, c, true)
	req := ctrl.Request{NamespacedName: types.NamespacedName{
		Name: "test-job", Namespace: "default",
	}}
	if _, err := r.Reconcile(t.Context(), req); err == nil {
		t.Fatal("Reconcile() error = nil, want the surviving child rejected")
	}

	job := getJob(t, base)
	if job.Labels["jobId"] != existingJobID {
		t.Errorf("jobId label = %q, want old id %q not re-adopted",
			job.Labels["jobId"], existingJobID)
	}
	if job.Status.ObservedGeneration == job.Generation {
		t.Error("observedGeneration acknowledged, want spec change left pending")
	}
}

func TestReconcileRepairsPartialJobIDRecord(t *testing.T) {
	t.Parallel()

	base := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithStatusSubresource(&kalavaiv1.KalavaiJob{}).
		WithObjects(newJob(nil)).
		Build()

	// Fail the status write once: the label lands but status.jobId and the
	// observed generation do not.
	failing := true
	c := envtestutil.NewFakeClientWithFailures(base, &envtestutil.FailureConfig{
		OnStatusUpdate: func(client.Object) error {
			if failing {
				return envtestutil.ErrInjected
			}
			return nil
		},
	})

	r := newReconciler(t, c, true)
	req := ctrl.Request{NamespacedName: types.NamespacedName{
		Name: "test-job", Namespace: "default",
	}}
	if _, err := r.Reconcile(t.Context(), req); err == nil {
		t.Fatal("Reconcile() error = nil, want the injected status failure surfaced")
	}

	job := getJob(t, base)
	jobID := job.Labels["jobId"]
	if jobID == "" {
		t.Fatal("jobId label not written before the status failure")
	}
	if job.Status.JobID != "" {
		t.Fatalf("status.jobId = %q, want empty after the failed update", job.Status.JobID)
	}

	failing = false
	reconcileJob(t, r)

	job = getJob(t, base)
	if job.Status.JobID != jobID {
		t.Errorf("status.jobId = %q, want repaired to %q", job.Status.JobID, jobID)
	}
	if job.Status.ObservedGeneration != job.Generation {
		t.Errorf("observedGeneration = %d, want repaired to %d",
			job.Status.ObservedGeneration, job.Generation)
	}
}

func TestReconcileSpecChangeSkippedWhenDisabled(t *testing.T) {
	t.Parallel()

	c := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithStatusSubresource(&kalavaiv1.KalavaiJob{}).
		WithObjects(
			deployedJob(existingJobID, func(job *kalavaiv1.KalavaiJob) {
				job.Generation = 2
			}),
			childRelease("test-job", existingJobID),
		).
		Build()

	recorder := record.NewFakeRecorder(16)
	r := newReconciler(t, c, false)
	r.Recorder = recorder
	reconcileJob(t, r)

	job := getJob(t, c)
	if job.Labels["jobId"] != existingJobID {
		t.Errorf("jobId label = %q, want unchanged %q", job.Labels["jobId"], existingJobID)
	}
	if job.Status.ObservedGeneration != job.Generation {
		t.Errorf("observedGeneration = %d, want acknowledged generation %d",
			job.Status.ObservedGeneration, job.Generation)
	}

	select {
	case ev := <-recorder.Events:
		if ev != "Warning SpecChangeSkipped Spec changed but recreate-on-spec-change is disabled" {
			t.Errorf("event = %q, want the skip warning", ev)
		}
	default:
		t.Error("no event recorded, want a skip warning")
	}
}

func TestReconcileDeletionCascades(t *testing.T) {
	t.Parallel()

	c := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithStatusSubresource(&kalavaiv1.KalavaiJob{}).
		WithObjects(
			deployedJob(existingJobID, func(job *kalavaiv1.KalavaiJob) {
				now := metav1.NewTime(time.Now())
				job.DeletionTimestamp = &now
			}),
			childRelease("test-job", existingJobID),
		).
		Build()

	reconcileJob(t, newReconciler(t, c, true))

	// Finalizer removed, so the object is released and the children are gone.
	job := &kalavaiv1.KalavaiJob{}
	err := c.Get(t.Context(), types.NamespacedName{Name: "test-job", Namespace: "default"}, job)
	if err == nil {
		t.Errorf("parent still present with finalizers %v, want released", job.Finalizers)
	}
	if got := listReleases(t, c); len(got) != 0 {
		t.Errorf("child releases = %d, want 0 after cascade", len(got))
	}
}

func TestCascadeDeleteIsBestEffort(t *testing.T) {
	t.Parallel()

	job := deployedJob(existingJobID, nil)
	base := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithStatusSubresource(&kalavaiv1.KalavaiJob{}).
		WithObjects(job,
			childRelease("child-a", existingJobID),
			childRelease("child-b", existingJobID),
		).
		Build()
	c := envtestutil.NewFakeClientWithFailures(base, &envtestutil.FailureConfig{
		OnDelete: envtestutil.FailOnObjectName("child-a", envtestutil.ErrInjected),
	})

	r := newReconciler(t, c, true)
	if err := r.cascadeDelete(t.Context(), job); err != nil {
		t.Fatalf("cascadeDelete() error = %v, want partial failure absorbed", err)
	}

	releases := listReleases(t, base)
	if len(releases) != 1 {
		t.Fatalf("child releases = %d, want the failed one only", len(releases))
	}
	if releases[0].GetName() != "child-a" {
		t.Errorf("surviving child = %q, want child-a", releases[0].GetName())
	}
}

func TestCascadeDeleteWithoutJobIDIsNoOp(t *testing.T) {
	t.Parallel()

	c := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithObjects(childRelease("unrelated", existingJobID)).
		Build()

	r := newReconciler(t, c, true)
	if err := r.cascadeDelete(t.Context(), newJob(nil)); err != nil {
		t.Fatalf("cascadeDelete() error = %v", err)
	}
	if got := listReleases(t, c); len(got) != 1 {
		t.Errorf("child releases = %d, want unrelated release untouched", len(got))
	}
}

func TestReconcileMissingJobIsNoOp(t *testing.T) {
	t.Parallel()

	c := fake.NewClientBuilder().WithScheme(newScheme(t)).Build()
	reconcileJob(t, newReconciler(t, c, true))
}
