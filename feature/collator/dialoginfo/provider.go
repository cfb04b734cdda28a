package dialoginfo

import (
	"fmt"
	"strconv"

	"dialog-collator/core/logger"
	"dialog-collator/feature/collator"

	"go.uber.org/zap"
)

// Name is the registry name of this provider.
const Name = "dialoginfo"

type options struct {
	forceSingleDialog bool
	forceDummyDialog  bool
}

// Provider merges RFC 4235 dialog-info fragments per identity.
type Provider struct {
	logger  *zap.Logger
	ownsLog bool
	opts    options
}

// New is the collator.Factory of this provider.
func New(log *zap.Logger) collator.Provider {
	return &Provider{logger: log}
}

// Name implements collator.Provider.
func (p *Provider) Name() string {
	return Name
}

// Init reads log-path, log-level, force-single-dialog and force-dummy-dialog.
// Unknown parameters are ignored.
func (p *Provider) Init(params map[string]string) error {
	if path := params["log-path"]; path != "" {
		l, err := logger.New(&logger.Config{Level: params["log-level"], Format: "json", Output: path})
		if err != nil {
			return fmt.Errorf("dialoginfo logger: %w", err)
		}
		p.logger = l
		p.ownsLog = true
	}

	var err error
	if p.opts.forceSingleDialog, err = boolParam(params, "force-single-dialog"); err != nil {
		return err
	}
	if p.opts.forceDummyDialog, err = boolParam(params, "force-dummy-dialog"); err != nil {
		return err
	}
	return nil
}

// NewHandle implements collator.Provider.
func (p *Provider) NewHandle() (collator.Handle, error) {
	return newHandle(p.opts, p.logger), nil
}

// Destroy flushes a provider-owned log file.
func (p *Provider) Destroy() error {
	if p.ownsLog {
		_ = p.logger.Sync()
	}
	return nil
}

func boolParam(params map[string]string, key string) (bool, error) {
	v, ok := params[key]
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parameter %s: %w", key, err)
	}
	return b, nil
}
