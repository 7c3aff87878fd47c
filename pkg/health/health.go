package health

import (
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	kalavaiv1 "github.com/kalavai-net/job-operator/api/v1"
)

// MaxCrashEvents bounds the crash history retained per pod. Oldest events
// are dropped first.
const MaxCrashEvents = 10

// Waiting reasons treated as crash conditions.
var crashWaitingReasons = map[string]kalavaiv1.CrashReason{
	"CrashLoopBackOff": kalavaiv1.CrashReasonCrashLoopBackOff,
	"Error":            kalavaiv1.CrashReasonError,
	"ImagePullBackOff": kalavaiv1.CrashReasonImagePullBackOff,
}

// TotalRestarts sums the restart counts of all containers in the snapshot.
func TotalRestarts(pod *corev1.Pod) int32 {
	var total int32
	for _, cs := range pod.Status.ContainerStatuses {
		total += cs.RestartCount
	}
	return total
}

// Analyze folds a pod snapshot into a health block. previous is the block
// currently recorded on the parent status, or nil. The result is nil when
// the pod has no restarts and no crash history: the health block is a
// sparse, opt-in diagnostic, not kept in sync otherwise.
func Analyze(pod *corev1.Pod, previous *kalavaiv1.PodHealth, now metav1.Time) *kalavaiv1.PodHealth {
	fresh := classifyContainers(pod, now)

	var history []kalavaiv1.CrashEvent
	if previous != nil {
		history = previous.CrashEvents
	}
	fresh = append(fresh, syntheticRestartEvents(pod, history, fresh, now)...)
	events := mergeCrashEvents(history, fresh)

	total := TotalRestarts(pod)
	if total == 0 && len(events) == 0 {
		return nil
	}

	return &kalavaiv1.PodHealth{
		TotalRestarts:     total,
		ContainerStatuses: summarizeContainers(pod),
		CrashEvents:       events,
		LastUpdated:       now,
	}
}

// classifyContainers extracts crash events from the container statuses of
// one snapshot.
func classifyContainers(pod *corev1.Pod, now metav1.Time) []kalavaiv1.CrashEvent {
	var events []kalavaiv1.CrashEvent

	startTime := now
	if pod.Status.StartTime != nil {
		startTime = *pod.Status.StartTime
	}

	for _, cs := range pod.Status.ContainerStatuses {
		if ev, ok := classifyWaiting(cs, startTime); ok {
			events = append(events, ev)
		}
		if ev, ok := classifyTerminated(cs); ok {
			events = append(events, ev)
		}
	}

	return events
}

// syntheticRestartEvents marks restarted containers that no classified event
// (current or recorded) accounts for. Without this, a restart whose cause was
// never observed would be invisible in the crash history.
func syntheticRestartEvents(
	pod *corev1.Pod,
	history, fresh []kalavaiv1.CrashEvent,
	now metav1.Time,
) []kalavaiv1.CrashEvent {
	represented := map[string]bool{}
	for _, ev := range history {
		represented[ev.Container] = true
	}
	for _, ev := range fresh {
		represented[ev.Container] = true
	}

	var events []kalavaiv1.CrashEvent
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.RestartCount == 0 || represented[cs.Name] {
			continue
		}
		events = append(events, kalavaiv1.CrashEvent{
			Container: cs.Name,
			Reason:    kalavaiv1.CrashReasonRestartDetected,
			Message:   fmt.Sprintf("container restarted %d times", cs.RestartCount),
			Timestamp: now,
		})
	}
	return events
}

func classifyWaiting(cs corev1.ContainerStatus, startTime metav1.Time) (kalavaiv1.CrashEvent, bool) {
	waiting := cs.State.Waiting
	if waiting == nil {
		return kalavaiv1.CrashEvent{}, false
	}
	reason, ok := crashWaitingReasons[waiting.Reason]
	if !ok {
		return kalavaiv1.CrashEvent{}, false
	}
	return kalavaiv1.CrashEvent{
		Container: cs.Name,
		Reason:    reason,
		Message:   waiting.Message,
		Timestamp: startTime,
	}, true
}

func classifyTerminated(cs corev1.ContainerStatus) (kalavaiv1.CrashEvent, bool) {
	term := cs.State.Terminated
	if term == nil {
		term = cs.LastTerminationState.Terminated
	}
	if term == nil {
		return kalavaiv1.CrashEvent{}, false
	}

	exitCode := term.ExitCode
	ev := kalavaiv1.CrashEvent{
		Container: cs.Name,
		ExitCode:  &exitCode,
		Timestamp: term.FinishedAt,
	}

	switch {
	case term.Reason == "OOMKilled":
		ev.Reason = kalavaiv1.CrashReasonOOMKilled
		ev.Message = "container killed: out of memory"
	case term.ExitCode != 0:
		ev.Reason = kalavaiv1.CrashReasonTerminated
		ev.Message = term.Message
		if ev.Message == "" {
			ev.Message = fmt.Sprintf("container exited with code %d", term.ExitCode)
		}
	case cs.RestartCount > 0:
		ev.Reason = kalavaiv1.CrashReasonTerminated
		ev.Message = "container exited cleanly but was restarted"
	default:
		return kalavaiv1.CrashEvent{}, false
	}
	return ev, true
}

// mergeCrashEvents combines previously recorded events with fresh ones,
// deduplicating on container name + timestamp and keeping only the
// MaxCrashEvents most recent.
func mergeCrashEvents(history, fresh []kalavaiv1.CrashEvent) []kalavaiv1.CrashEvent {
	seen := map[string]bool{}
	merged := make([]kalavaiv1.CrashEvent, 0, len(history)+len(fresh))

	for _, ev := range append(append([]kalavaiv1.CrashEvent{}, history...), fresh...) {
		key := ev.Container + "/" + ev.Timestamp.UTC().String()
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, ev)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(&merged[j].Timestamp)
	})

	if len(merged) > MaxCrashEvents {
		merged = merged[len(merged)-MaxCrashEvents:]
	}
	return merged
}

// summarizeContainers builds the per-container summary block.
func summarizeContainers(pod *corev1.Pod) map[string]kalavaiv1.ContainerHealth {
	if len(pod.Status.ContainerStatuses) == 0 {
		return nil
	}
	summaries := make(map[string]kalavaiv1.ContainerHealth, len(pod.Status.ContainerStatuses))
	for _, cs := range pod.Status.ContainerStatuses {
		started := false
		if cs.Started != nil {
			started = *cs.Started
		}
		summaries[cs.Name] = kalavaiv1.ContainerHealth{
			RestartCount: cs.RestartCount,
			Ready:        cs.Ready,
			Started:      started,
			State:        stateName(cs.State),
		}
	}
	return summaries
}

func stateName(state corev1.ContainerState) string {
	switch {
	case state.Running != nil:
		return "Running"
	case state.Waiting != nil:
		return "Waiting"
	case state.Terminated != nil:
		return "Terminated"
	}
	return ""
}
