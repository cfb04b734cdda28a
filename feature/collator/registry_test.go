package collator_test

import (
	"os"
	"path/filepath"
	"testing"

	"dialog-collator/feature/collator"
	"dialog-collator/feature/collator/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// bareProvider declares neither Init nor Destroy.
type bareProvider struct {
	handle collator.Handle
}

func (p *bareProvider) Name() string                        { return "bare" }
func (p *bareProvider) NewHandle() (collator.Handle, error) { return p.handle, nil }

func TestRegistry_Open(t *testing.T) {
	handle := new(mocks.Handle)
	provider := new(mocks.Provider)
	provider.On("Name").Return("fake")
	provider.On("Init", map[string]string{"log-level": "debug", "plugin-path": "/opt/collator"}).Return(nil).Once()
	provider.On("NewHandle").Return(handle, nil).Once()

	reg := collator.NewRegistry()
	reg.Register("fake", func(*zap.Logger) collator.Provider { return provider })

	b, err := reg.Open(collator.Config{Name: "fake", Path: "/opt/collator", LogLevel: "debug"}, zap.NewNop())
	require.NoError(t, err)
	assert.Same(t, handle, b.Handle)
	provider.AssertExpectations(t)

	handle.On("Close").Return(nil).Once()
	provider.On("Destroy").Return(nil).Once()
	assert.NoError(t, b.Close())
	handle.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestRegistry_OpenWithoutInit(t *testing.T) {
	handle := new(mocks.Handle)
	reg := collator.NewRegistry()
	reg.Register("bare", func(*zap.Logger) collator.Provider { return &bareProvider{handle: handle} })

	b, err := reg.Open(collator.Config{Name: "bare", ParamsFile: "/does/not/matter"}, zap.NewNop())
	require.NoError(t, err)

	handle.On("Close").Return(nil).Once()
	assert.NoError(t, b.Close())
}

func TestRegistry_OpenFailures(t *testing.T) {
	reg := collator.NewRegistry()
	reg.Register("nil", func(*zap.Logger) collator.Provider { return nil })
	reg.Register("nohandle", func(*zap.Logger) collator.Provider { return &bareProvider{} })

	failing := new(mocks.Provider)
	failing.On("Init", mock.Anything).Return(assert.AnError)
	reg.Register("failing", func(*zap.Logger) collator.Provider { return failing })

	tests := []struct {
		name string
		want error
	}{
		{"missing", collator.ErrUnknownProvider},
		{"nil", collator.ErrMissingEntryPoint},
		{"nohandle", collator.ErrMissingEntryPoint},
		{"failing", assert.AnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := reg.Open(collator.Config{Name: tt.name}, zap.NewNop())
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, b)
		})
	}
}

func TestRegistry_OpenDestroysOnHandleFailure(t *testing.T) {
	tests := []struct {
		name   string
		handle collator.Handle
		err    error
		want   error
	}{
		{"Handle error", nil, assert.AnError, assert.AnError},
		{"Nil handle", nil, nil, collator.ErrMissingEntryPoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(mocks.Provider)
			provider.On("Init", mock.Anything).Return(nil).Once()
			provider.On("NewHandle").Return(tt.handle, tt.err).Once()
			provider.On("Destroy").Return(nil).Once()

			reg := collator.NewRegistry()
			reg.Register("fake", func(*zap.Logger) collator.Provider { return provider })

			b, err := reg.Open(collator.Config{Name: "fake"}, zap.NewNop())
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, b)
			provider.AssertExpectations(t)
		})
	}
}

func TestParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log-level: warn\nbackend: redis\n"), 0o644))

	params, err := collator.Params(collator.Config{
		ParamsFile:        path,
		LogFile:           "/var/log/collator.log",
		LogLevel:          "debug",
		ForceSingleDialog: true,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"backend":             "redis",
		"log-path":            "/var/log/collator.log",
		"log-level":           "debug",
		"force-single-dialog": "true",
	}, params)

	_, err = collator.Params(collator.Config{ParamsFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestRegistry_Names(t *testing.T) {
	reg := collator.NewRegistry()
	reg.Register("b", nil)
	reg.Register("a", nil)
	assert.Equal(t, []string{"a", "b"}, reg.Names())
}

func TestBinding_CloseNil(t *testing.T) {
	var b *collator.Binding
	assert.NoError(t, b.Close())
}
