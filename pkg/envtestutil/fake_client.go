// Package envtestutil provides testing utilities for controller tests.
package envtestutil

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/api/meta"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// FailureConfig configures when the fake client should return errors.
// Each field is a function that receives the object/key and returns an error
// if the operation should fail. The cascade-delete and status-sync paths of
// the operator are specified to survive partial transport failures, so most
// controller tests exercise these hooks.
type FailureConfig struct {
	// OnGet is called before Get operations.
	OnGet func(key client.ObjectKey) error

	// OnList is called before List operations.
	OnList func(list client.ObjectList) error

	// OnCreate is called before Create operations.
	OnCreate func(obj client.Object) error

	// OnUpdate is called before Update operations.
	OnUpdate func(obj client.Object) error

	// OnDelete is called before Delete operations.
	OnDelete func(obj client.Object) error

	// OnStatusPatch is called before Status().Patch() operations.
	OnStatusPatch func(obj client.Object) error

	// OnStatusUpdate is called before Status().Update() operations.
	OnStatusUpdate func(obj client.Object) error
}

// fakeClientWithFailures wraps a real fake client and injects failures based
// on configuration.
type fakeClientWithFailures struct {
	client.Client
	config *FailureConfig
}

// NewFakeClientWithFailures creates a fake client that can be configured to
// fail operations. This is useful for testing error handling paths in
// controllers.
func NewFakeClientWithFailures(baseClient client.Client, config *FailureConfig) client.Client {
	if config == nil {
		config = &FailureConfig{}
	}
	return &fakeClientWithFailures{
		Client: baseClient,
		config: config,
	}
}

func (c *fakeClientWithFailures) Get(
	ctx context.Context,
	key client.ObjectKey,
	obj client.Object,
	opts ...client.GetOption,
) error {
	if c.config.OnGet != nil {
		if err := c.config.OnGet(key); err != nil {
			return err
		}
	}
	return c.Client.Get(ctx, key, obj, opts...)
}

func (c *fakeClientWithFailures) List(
	ctx context.Context,
	list client.ObjectList,
	opts ...client.ListOption,
) error {
	if c.config.OnList != nil {
		if err := c.config.OnList(list); err != nil {
			return err
		}
	}
	return c.Client.List(ctx, list, opts...)
}

func (c *fakeClientWithFailures) Create(
	ctx context.Context,
	obj client.Object,
	opts ...client.CreateOption,
) error {
	if c.config.OnCreate != nil {
		if err := c.config.OnCreate(obj); err != nil {
			return err
		}
	}
	return c.Client.Create(ctx, obj, opts...)
}

func (c *fakeClientWithFailures) Update(
	ctx context.Context,
	obj client.Object,
	opts ...client.UpdateOption,
) error {
	if c.config.OnUpdate != nil {
		if err := c.config.OnUpdate(obj); err != nil {
			return err
		}
	}
	return c.Client.Update(ctx, obj, opts...)
}

func (c *fakeClientWithFailures) Delete(
	ctx context.Context,
	obj client.Object,
	opts ...client.DeleteOption,
) error {
	if c.config.OnDelete != nil {
		if err := c.config.OnDelete(obj); err != nil {
			return err
		}
	}
	return c.Client.Delete(ctx, obj, opts...)
}

func (c *fakeClientWithFailures) Status() client.StatusWriter {
	return &statusWriterWithFailures{
		StatusWriter: c.Client.Status(),
		config:       c.config,
	}
}

type statusWriterWithFailures struct {
	client.StatusWriter
	config *FailureConfig
}

func (s *statusWriterWithFailures) Update(
	ctx context.Context,
	obj client.Object,
	opts ...client.SubResourceUpdateOption,
) error {
	if s.config.OnStatusUpdate != nil {
		if err := s.config.OnStatusUpdate(obj); err != nil {
			return err
		}
	}
	return s.StatusWriter.Update(ctx, obj, opts...)
}

func (s *statusWriterWithFailures) Patch(
	ctx context.Context,
	obj client.Object,
	patch client.Patch,
	opts ...client.SubResourcePatchOption,
) error {
	if s.config.OnStatusPatch != nil {
		if err := s.config.OnStatusPatch(obj); err != nil {
			return err
		}
	}
	return s.StatusWriter.Patch(ctx, obj, patch, opts...)
}

// Helper functions for common failure scenarios

// FailOnObjectName returns an error if the object name matches.
func FailOnObjectName(name string, err error) func(client.Object) error {
	return func(obj client.Object) error {
		accessor, metaErr := meta.Accessor(obj)
		if metaErr != nil {
			panic(fmt.Sprintf("meta.Accessor failed: %v", metaErr))
		}
		if accessor.GetName() == name {
			return err
		}
		return nil
	}
}

// AlwaysFailObj returns the given error for all object operations.
func AlwaysFailObj(err error) func(client.Object) error {
	return func(client.Object) error {
		return err
	}
}

// Common errors for testing
var (
	ErrInjected       = fmt.Errorf("injected test error")
	ErrNetworkTimeout = fmt.Errorf("network timeout")
)
