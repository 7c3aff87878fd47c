package monitoring

// SetJobInfo sets the info-style gauge for a KalavaiJob. Old job id labels
// are cleaned up via DeletePartialMatch so only the live id remains.
func SetJobInfo(name, namespace, jobID string) {
	jobInfo.DeletePartialMatch(map[string]string{
		"name":      name,
		"namespace": namespace,
	})
	jobInfo.WithLabelValues(name, namespace, jobID).Set(1)
}

// DeleteJob drops all metric series belonging to a KalavaiJob.
func DeleteJob(name, namespace string) {
	jobInfo.DeletePartialMatch(map[string]string{
		"name":      name,
		"namespace": namespace,
	})
	jobPodRestarts.DeletePartialMatch(map[string]string{
		"job":       name,
		"namespace": namespace,
	})
	jobPodCrashEvents.DeletePartialMatch(map[string]string{
		"job":       name,
		"namespace": namespace,
	})
}

// SetPodHealth sets the restart and crash-event gauges for one pod of a job.
func SetPodHealth(job, namespace, pod string, restarts int32, crashEvents int) {
	jobPodRestarts.WithLabelValues(job, namespace, pod).Set(float64(restarts))
	jobPodCrashEvents.WithLabelValues(job, namespace, pod).Set(float64(crashEvents))
}
