package component

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService records lifecycle calls for delegation tests
type fakeService struct {
	calls    []string
	startErr error
	stopErr  error
}

func (f *fakeService) Start(context.Context) error {
	f.calls = append(f.calls, "start")
	return f.startErr
}

func (f *fakeService) Stop(context.Context) error {
	f.calls = append(f.calls, "stop")
	return f.stopErr
}

func TestBaseDefaults(t *testing.T) {
	b := NewBase("thing")

	assert.Equal(t, "thing", b.Name())
	assert.True(t, b.IncludeIf(nil), "steps are enabled by default")

	svc, err := b.Create(nil)
	require.NoError(t, err)
	assert.Nil(t, svc, "base steps create no service")

	b.Enabled = false
	assert.False(t, b.IncludeIf(nil))
}

func TestStartStopBaseDelegatesToService(t *testing.T) {
	s := NewStartStopBase("thing")
	svc := &fakeService{}
	s.SetService(svc)

	ctx := context.Background()
	require.NoError(t, s.Start(ctx, nil))
	require.NoError(t, s.Stop(ctx, nil))
	assert.Equal(t, []string{"start", "stop"}, svc.calls)
	assert.Same(t, svc, s.Service().(*fakeService))
}

func TestStartStopBaseServiceErrorsPropagate(t *testing.T) {
	s := NewStartStopBase("thing")
	svc := &fakeService{startErr: fmt.Errorf("start boom"), stopErr: fmt.Errorf("stop boom")}
	s.SetService(svc)

	ctx := context.Background()
	assert.ErrorIs(t, s.Start(ctx, nil), svc.startErr)
	assert.ErrorIs(t, s.Stop(ctx, nil), svc.stopErr)
}

func TestStartStopBaseWithoutServiceNoOps(t *testing.T) {
	s := NewStartStopBase("thing")
	ctx := context.Background()

	require.NoError(t, s.Start(ctx, nil))
	require.NoError(t, s.Stop(ctx, nil))
	require.NoError(t, s.Close(nil))
	require.NoError(t, s.Terminate(ctx, nil))
	assert.Nil(t, s.Service())
}

func TestStartStopBaseTerminateDefaultsToStop(t *testing.T) {
	s := NewStartStopBase("thing")
	svc := &fakeService{}
	s.SetService(svc)

	require.NoError(t, s.Terminate(context.Background(), nil))
	assert.Equal(t, []string{"stop"}, svc.calls)
}

type fakeOwner struct{ name string }

func (f *fakeOwner) Name() string { return f.name }

func TestBaseOwnerBackReference(t *testing.T) {
	b := NewBase("thing")
	assert.Nil(t, b.Owner())

	owner := &fakeOwner{name: "worker"}
	b.SetOwner(owner)
	require.NotNil(t, b.Owner())
	assert.Equal(t, "worker", b.Owner().Name())
}
