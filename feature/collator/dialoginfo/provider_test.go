package dialoginfo

import (
	"path/filepath"
	"testing"

	"dialog-collator/feature/collator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProvider_Init(t *testing.T) {
	tests := []struct {
		name       string
		params     map[string]string
		wantErr    bool
		wantSingle bool
		wantDummy  bool
	}{
		{"Defaults", map[string]string{}, false, false, false},
		{"Flags", map[string]string{"force-single-dialog": "true", "force-dummy-dialog": "1"}, false, true, true},
		{"Bad flag", map[string]string{"force-single-dialog": "maybe"}, true, false, false},
		{"Bad log level", map[string]string{"log-path": "/tmp/x.log", "log-level": "loud"}, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(zap.NewNop()).(*Provider)
			err := p.Init(tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSingle, p.opts.forceSingleDialog)
			assert.Equal(t, tt.wantDummy, p.opts.forceDummyDialog)
		})
	}
}

func TestProvider_OwnLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dialoginfo.log")
	p := New(zap.NewNop()).(*Provider)
	require.NoError(t, p.Init(map[string]string{"log-path": path, "log-level": "info"}))
	assert.True(t, p.ownsLog)
	assert.NoError(t, p.Destroy())
}

func TestProvider_ThroughRegistry(t *testing.T) {
	reg := collator.NewRegistry()
	reg.Register(Name, New)

	b, err := reg.Open(collator.Config{Name: Name, ForceDummyDialog: true}, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, Name, b.Provider.Name())
	require.NoError(t, b.Handle.QueueDialog("dave", "example.com", nil))
	doc, err := b.Handle.BuildFromQueue("dave", "example.com")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Contains(t, string(doc.Body), `id="dummy"`)
	b.Handle.Release(doc)
}
