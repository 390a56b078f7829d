package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/bootsteps/errors"
)

func noopFactory(Host, Options) (Step, error) {
	b := NewBase("noop")
	return &b, nil
}

func TestRegisterDottedName(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Registration{Name: "worker.connection", Factory: noopFactory}))

	regs := r.Claim("worker")
	require.Len(t, regs, 1)
	assert.Equal(t, "connection", regs[0].Name)
	assert.Equal(t, "worker", regs[0].Namespace)
}

func TestRegisterExplicitNamespace(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Registration{Name: "connection", Namespace: "worker", Factory: noopFactory}))

	regs := r.Claim("worker")
	require.Len(t, regs, 1)
	assert.Equal(t, "connection", regs[0].Name)
}

func TestRegisterExplicitNamespaceWinsOverDotted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Registration{Name: "other.connection", Namespace: "worker", Factory: noopFactory}))

	regs := r.Claim("worker")
	require.Len(t, regs, 1)
	assert.Equal(t, "connection", regs[0].Name)
	assert.Empty(t, r.Claim("other"))
}

func TestRegisterDefinitionErrors(t *testing.T) {
	tests := []struct {
		name     string
		reg      Registration
		expected error
	}{
		{"missing name", Registration{Namespace: "worker", Factory: noopFactory}, errors.ErrMissingName},
		{"empty name after dot", Registration{Name: "worker.", Factory: noopFactory}, errors.ErrMissingName},
		{"missing namespace", Registration{Name: "connection", Factory: noopFactory}, errors.ErrMissingNamespace},
		{"missing factory", Registration{Name: "worker.connection"}, errors.ErrMissingFactory},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := NewRegistry().Register(test.reg)
			require.Error(t, err)
			assert.ErrorIs(t, err, test.expected)
			// Definition errors are fatal, not deferred to claim time.
			assert.True(t, errors.IsFatal(err))
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Registration{Name: "worker.connection", Factory: noopFactory}))

	err := r.Register(Registration{Name: "worker.connection", Factory: noopFactory})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAlreadyRegistered)
}

func TestClaimRemovesBucket(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Registration{Name: "worker.connection", Factory: noopFactory}))
	require.NoError(t, r.Register(Registration{Name: "other.thing", Factory: noopFactory}))

	first := r.Claim("worker")
	require.Len(t, first, 1)

	assert.Empty(t, r.Claim("worker"), "claiming twice yields an empty working set")
	assert.Len(t, r.Claim("other"), 1, "other namespaces are untouched")
}

func TestClaimPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	names := []string{"zeta", "alpha", "mid"}
	for _, name := range names {
		require.NoError(t, r.Register(Registration{Name: name, Namespace: "worker", Factory: noopFactory}))
	}

	assert.Equal(t, names, r.Names("worker"))

	regs := r.Claim("worker")
	require.Len(t, regs, len(names))
	for i, reg := range regs {
		assert.Equal(t, names[i], reg.Name)
	}
}

func TestDefaultRegistry(t *testing.T) {
	require.NoError(t, Register(Registration{Name: "registrytest.step", Factory: noopFactory}))
	regs := Default.Claim("registrytest")
	require.Len(t, regs, 1)
	assert.Equal(t, "step", regs[0].Name)
}
