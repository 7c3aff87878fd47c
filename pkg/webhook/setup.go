// Package webhook provides the entry point for the job operator's admission
// control layer.
//
// This package orchestrates the setup of the controller-runtime webhook
// server, including:
//
//  1. Certificate management: it delegates to the 'cert' subpackage to
//     ensure TLS certificates are present (either self-signed or externally
//     provisioned) before the server starts.
//
//  2. Handler registration: it registers the admission handlers (from the
//     'handlers' subpackage) to their corresponding API paths.
//
// Usage:
//
//	if err := webhook.Setup(mgr, opts); err != nil {
//	    setupLog.Error(err, "unable to setup webhook")
//	    os.Exit(1)
//	}
package webhook

import (
	"context"
	"fmt"

	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"

	kalavaiv1 "github.com/kalavai-net/job-operator/api/v1"
	"github.com/kalavai-net/job-operator/pkg/webhook/cert"
	"github.com/kalavai-net/job-operator/pkg/webhook/handlers"
)

const (
	// MutatePath is where the KalavaiJob defaulter is served.
	MutatePath = "/mutate-kalavai-net-v1-kalavaijob"
	// ValidatePath is where the KalavaiJob validator is served.
	ValidatePath = "/validate-kalavai-net-v1-kalavaijob"
)

// Options contains the configuration required to set up the webhook server.
type Options struct {
	// Enable indicates whether to start the webhook server.
	Enable bool
	// CertStrategy defines how certificates are managed ("external" or "self-signed").
	CertStrategy string
	// CertDir is the directory where certificates should be read/written.
	CertDir string
	// Namespace is the operator's namespace (required for self-signed strategy).
	Namespace string
	// ServiceName is the operator's service name (required for self-signed strategy).
	ServiceName string
}

// Setup configures the webhook server, handles certificate generation (if
// requested), and registers the admission handlers with the manager.
func Setup(mgr ctrl.Manager, opts Options) error {
	if !opts.Enable {
		return nil
	}

	logger := mgr.GetLogger().WithName("webhook-setup")
	logger.Info("Setting up webhook server", "strategy", opts.CertStrategy)

	// With self-signed certs they must exist and the WebhookConfigurations
	// must carry the CA bundle before the manager starts the server.
	if opts.CertStrategy == "self-signed" {
		certMgr := cert.NewManager(mgr.GetClient(), cert.Options{
			Namespace:   opts.Namespace,
			ServiceName: opts.ServiceName,
			CertDir:     opts.CertDir,
		})

		// The manager's context isn't started yet, so bootstrap on a fresh one.
		if err := certMgr.EnsureCerts(context.Background()); err != nil {
			return fmt.Errorf("failed to bootstrap self-signed certificates: %w", err)
		}
	}

	server := mgr.GetWebhookServer()

	server.Register(MutatePath, admission.WithCustomDefaulter(
		mgr.GetScheme(), &kalavaiv1.KalavaiJob{}, handlers.NewKalavaiJobDefaulter()))
	server.Register(ValidatePath, admission.WithCustomValidator(
		mgr.GetScheme(), &kalavaiv1.KalavaiJob{}, handlers.NewKalavaiJobValidator()))

	return nil
}
