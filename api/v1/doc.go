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

// Package v1 defines the API types for the Kalavai Job Operator.
//
// This package contains the Go type definitions for the kalavai.net API
// group. These types are used by kubebuilder to generate:
//   - CustomResourceDefinitions (CRDs)
//   - DeepCopy methods
//   - Client code
//
// # Custom Resources
//
//   - KalavaiJob: The user-facing resource describing a templated workload.
//     The spec carries a Helm chart reference plus arbitrary values; the
//     operator materializes it as a Flux HelmRelease and folds the observed
//     state of the release, its pods, and its services back into the status.
//
// # Resource Hierarchy
//
//	KalavaiJob
//	└── HelmRelease (helm.toolkit.fluxcd.io/v2, correlated by job id label)
//	    ├── Pods (observed, status.pods)
//	    └── Services (observed, status.services)
//
// The operator never owns the pods and services directly; they are created
// by the Helm chart and discovered through the correlation label.
package v1
