package collator

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Factory creates a fresh, uninitialized provider.
type Factory func(logger *zap.Logger) Provider

// Registry maps provider names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name, replacing any previous one.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Open resolves the configured provider, initializes it and creates the
// process handle. Any failure here is fatal for the caller.
func (r *Registry) Open(cfg Config, logger *zap.Logger) (*Binding, error) {
	factory, ok := r.factories[cfg.Name]
	if !ok || factory == nil {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownProvider, cfg.Name, r.Names())
	}

	provider := factory(logger.Named("collator"))
	if provider == nil {
		return nil, fmt.Errorf("%w: %s factory returned nil", ErrMissingEntryPoint, cfg.Name)
	}

	if init, ok := provider.(Initializer); ok {
		params, err := Params(cfg)
		if err != nil {
			return nil, err
		}
		if err := init.Init(params); err != nil {
			return nil, fmt.Errorf("init collation provider %s: %w", cfg.Name, err)
		}
	}

	handle, err := provider.NewHandle()
	if err == nil && handle == nil {
		err = fmt.Errorf("%w: %s returned no handle", ErrMissingEntryPoint, cfg.Name)
	}
	if err != nil {
		destroy(provider, logger)
		return nil, fmt.Errorf("create collation handle: %w", err)
	}

	logger.Info("Collation provider loaded", zap.String("provider", provider.Name()))
	return &Binding{Provider: provider, Handle: handle}, nil
}

// destroy releases an initialized provider whose handle could not be created.
func destroy(provider Provider, logger *zap.Logger) {
	d, ok := provider.(Destroyer)
	if !ok {
		return
	}
	if err := d.Destroy(); err != nil {
		logger.Warn("Failed to destroy collation provider", zap.String("provider", provider.Name()), zap.Error(err))
	}
}

// Params builds the provider init parameters. Entries from the params file
// are applied first; explicit configuration keys win.
func Params(cfg Config) (map[string]string, error) {
	params := make(map[string]string)

	if cfg.ParamsFile != "" {
		data, err := os.ReadFile(cfg.ParamsFile)
		if err != nil {
			return nil, fmt.Errorf("read collator params file: %w", err)
		}
		var extra map[string]string
		if err := yaml.Unmarshal(data, &extra); err != nil {
			return nil, fmt.Errorf("parse collator params file: %w", err)
		}
		for k, v := range extra {
			params[k] = v
		}
	}

	if cfg.Path != "" {
		params["plugin-path"] = cfg.Path
	}
	if cfg.LogFile != "" {
		params["log-path"] = cfg.LogFile
	}
	if cfg.LogLevel != "" {
		params["log-level"] = cfg.LogLevel
	}
	if cfg.ForceSingleDialog {
		params["force-single-dialog"] = strconv.FormatBool(true)
	}
	if cfg.ForceDummyDialog {
		params["force-dummy-dialog"] = strconv.FormatBool(true)
	}
	return params, nil
}
