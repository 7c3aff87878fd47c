package cert

// +kubebuilder:rbac:groups="",resources=secrets,verbs=get;list;watch;create;update
// +kubebuilder:rbac:groups=admissionregistration.k8s.io,resources=mutatingwebhookconfigurations,verbs=get;list;watch;update;patch
// +kubebuilder:rbac:groups=admissionregistration.k8s.io,resources=validatingwebhookconfigurations,verbs=get;list;watch;update;patch

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"time"

	admissionregistrationv1 "k8s.io/api/admissionregistration/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	// SecretName is the name of the Secret where the generated certs live.
	SecretName = "kalavai-job-operator-webhook-certs" //nolint:gosec // Not a credential, just a name

	// CertFileName is the certificate file name expected by controller-runtime.
	CertFileName = "tls.crt"
	// KeyFileName is the key file name expected by controller-runtime.
	KeyFileName = "tls.key"

	// RotationThreshold is the buffer period before expiration when the cert
	// should be rotated.
	RotationThreshold = 30 * 24 * time.Hour
)

// Options configuration for the certificate manager.
type Options struct {
	// Namespace is the namespace where the operator (and Service) is running.
	Namespace string
	// ServiceName is the Service in front of the webhook server.
	ServiceName string
	// CertDir is where the certificates are written for the server to use.
	CertDir string
}

// Manager handles the lifecycle of the webhook certificates.
type Manager struct {
	Client  client.Client
	Options Options
}

// NewManager creates a new certificate manager.
func NewManager(c client.Client, opts Options) *Manager {
	return &Manager{Client: c, Options: opts}
}

// EnsureCerts checks for existing certificates, generates them if missing or
// close to expiry, writes them to disk, and injects the CA bundle into the
// WebhookConfigurations pointing at the webhook service.
func (m *Manager) EnsureCerts(ctx context.Context) error {
	logger := log.FromContext(ctx).WithName("webhook-cert-manager")
	logger.Info("ensuring webhook certificates exist and are valid")

	artifacts, err := m.ensureSecret(ctx)
	if err != nil {
		return fmt.Errorf("failed to ensure cert secret: %w", err)
	}

	if err := m.writeCertsToDisk(ctx, artifacts); err != nil {
		return fmt.Errorf("failed to write certs to disk: %w", err)
	}

	if err := m.patchWebhookConfigurations(ctx, artifacts.CACertPEM); err != nil {
		return fmt.Errorf("failed to patch webhook configurations: %w", err)
	}

	logger.Info("webhook certificates successfully configured")
	return nil
}

// ensureSecret fetches the cert secret, validating expiration and the
// covered service name. Missing, expiring, or mismatched certs are
// regenerated and the secret is created or updated accordingly.
func (m *Manager) ensureSecret(ctx context.Context) (*Artifacts, error) {
	logger := log.FromContext(ctx)

	secret := &corev1.Secret{}
	err := m.Client.Get(ctx,
		types.NamespacedName{Name: SecretName, Namespace: m.Options.Namespace},
		secret,
	)

	secretFound := false
	if err == nil {
		secretFound = true
		artifacts := &Artifacts{
			CACertPEM:     secret.Data["ca.crt"],
			CAKeyPEM:      secret.Data["ca.key"],
			ServerCertPEM: secret.Data["tls.crt"],
			ServerKeyPEM:  secret.Data["tls.key"],
		}
		if m.isValid(artifacts) {
			logger.Info("existing webhook certificates are valid")
			return artifacts, nil
		}
		logger.Info("existing webhook certificates are missing, expired, or stale; rotating")
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	commonName := fmt.Sprintf("%s.%s.svc", m.Options.ServiceName, m.Options.Namespace)
	dnsNames := []string{
		m.Options.ServiceName,
		fmt.Sprintf("%s.%s", m.Options.ServiceName, m.Options.Namespace),
		commonName,
		commonName + ".cluster.local",
	}

	logger.Info("generating new self-signed certificates", "commonName", commonName)
	artifacts, err := GenerateSelfSignedArtifacts(commonName, dnsNames)
	if err != nil {
		return nil, err
	}

	secret.ObjectMeta = metav1.ObjectMeta{
		Name:      SecretName,
		Namespace: m.Options.Namespace,
	}
	secret.Type = corev1.SecretTypeTLS
	secret.Data = map[string][]byte{
		"tls.crt": artifacts.ServerCertPEM,
		"tls.key": artifacts.ServerKeyPEM,
		"ca.crt":  artifacts.CACertPEM,
		"ca.key":  artifacts.CAKeyPEM,
	}

	if secretFound {
		if err := m.Client.Update(ctx, secret); err != nil {
			return nil, fmt.Errorf("failed to update cert secret: %w", err)
		}
	} else {
		if err := m.Client.Create(ctx, secret); err != nil {
			return nil, fmt.Errorf("failed to create cert secret: %w", err)
		}
	}

	return artifacts, nil
}

// isValid checks presence, expiration, and that the cert covers the
// configured service.
func (m *Manager) isValid(a *Artifacts) bool {
	if len(a.ServerCertPEM) == 0 || len(a.ServerKeyPEM) == 0 {
		return false
	}

	block, _ := pem.Decode(a.ServerCertPEM)
	if block == nil {
		return false
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return false
	}

	if time.Now().Add(RotationThreshold).After(cert.NotAfter) {
		return false
	}
	if len(cert.DNSNames) == 0 || cert.DNSNames[0] != m.Options.ServiceName {
		return false
	}
	return true
}

func (m *Manager) writeCertsToDisk(ctx context.Context, artifacts *Artifacts) error {
	logger := log.FromContext(ctx)

	if err := os.MkdirAll(m.Options.CertDir, 0o755); err != nil {
		return err
	}

	logger.Info("writing certificates to disk", "dir", m.Options.CertDir)

	certPath := filepath.Join(m.Options.CertDir, CertFileName)
	if err := os.WriteFile(certPath, artifacts.ServerCertPEM, 0o644); err != nil { //nolint:gosec // Cert is public
		return err
	}

	keyPath := filepath.Join(m.Options.CertDir, KeyFileName)
	return os.WriteFile(keyPath, artifacts.ServerKeyPEM, 0o600)
}

// patchWebhookConfigurations injects the CA bundle into every webhook
// configuration whose client config points at the operator's service.
func (m *Manager) patchWebhookConfigurations(ctx context.Context, caCert []byte) error {
	logger := log.FromContext(ctx)

	mutatingList := &admissionregistrationv1.MutatingWebhookConfigurationList{}
	if err := m.Client.List(ctx, mutatingList); err != nil {
		return err
	}
	for i := range mutatingList.Items {
		cfg := &mutatingList.Items[i]
		if !m.targetsService(mutatingClientConfigs(cfg)) {
			continue
		}
		if err := m.patchObject(ctx, cfg, caCert); err != nil {
			return err
		}
		logger.Info("patched CA bundle", "kind", "MutatingWebhookConfiguration", "name", cfg.Name)
	}

	validatingList := &admissionregistrationv1.ValidatingWebhookConfigurationList{}
	if err := m.Client.List(ctx, validatingList); err != nil {
		return err
	}
	for i := range validatingList.Items {
		cfg := &validatingList.Items[i]
		if !m.targetsService(validatingClientConfigs(cfg)) {
			continue
		}
		if err := m.patchObject(ctx, cfg, caCert); err != nil {
			return err
		}
		logger.Info("patched CA bundle", "kind", "ValidatingWebhookConfiguration", "name", cfg.Name)
	}

	return nil
}

func mutatingClientConfigs(
	cfg *admissionregistrationv1.MutatingWebhookConfiguration,
) []*admissionregistrationv1.WebhookClientConfig {
	configs := make([]*admissionregistrationv1.WebhookClientConfig, 0, len(cfg.Webhooks))
	for i := range cfg.Webhooks {
		configs = append(configs, &cfg.Webhooks[i].ClientConfig)
	}
	return configs
}

func validatingClientConfigs(
	cfg *admissionregistrationv1.ValidatingWebhookConfiguration,
) []*admissionregistrationv1.WebhookClientConfig {
	configs := make([]*admissionregistrationv1.WebhookClientConfig, 0, len(cfg.Webhooks))
	for i := range cfg.Webhooks {
		configs = append(configs, &cfg.Webhooks[i].ClientConfig)
	}
	return configs
}

func (m *Manager) targetsService(configs []*admissionregistrationv1.WebhookClientConfig) bool {
	for _, cc := range configs {
		if cc.Service != nil &&
			cc.Service.Name == m.Options.ServiceName &&
			cc.Service.Namespace == m.Options.Namespace {
			return true
		}
	}
	return false
}

func (m *Manager) patchObject(ctx context.Context, obj client.Object, caBundle []byte) error {
	base := obj.DeepCopyObject().(client.Object)
	updated := false

	switch r := obj.(type) {
	case *admissionregistrationv1.MutatingWebhookConfiguration:
		for i := range r.Webhooks {
			if string(r.Webhooks[i].ClientConfig.CABundle) != string(caBundle) {
				r.Webhooks[i].ClientConfig.CABundle = caBundle
				updated = true
			}
		}
	case *admissionregistrationv1.ValidatingWebhookConfiguration:
		for i := range r.Webhooks {
			if string(r.Webhooks[i].ClientConfig.CABundle) != string(caBundle) {
				r.Webhooks[i].ClientConfig.CABundle = caBundle
				updated = true
			}
		}
	}

	if updated {
		return m.Client.Patch(ctx, obj, client.MergeFrom(base))
	}
	return nil
}
