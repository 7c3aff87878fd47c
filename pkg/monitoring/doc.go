// Package monitoring provides Prometheus metrics, recording helpers, and
// OTel tracing for the Kalavai Job Operator. It exposes domain-specific
// gauges that complement the generic controller-runtime metrics already
// registered by the framework.
//
// All metrics are registered against controller-runtime's default
// Prometheus registry on import.
//
// Usage in controllers:
//
//	monitoring.SetJobInfo(job.Name, job.Namespace, jobID)
//	monitoring.SetPodHealth(job.Name, job.Namespace, pod.Name, restarts, crashEvents)
package monitoring
