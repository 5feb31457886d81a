package core

import (
	"fmt"
	"log/slog"
)

// NewProvider builds the calendar backend selected by cfg.
func NewProvider(cfg Config, logger *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderGraph:
		return NewGraphClient(cfg.Credentials,
			WithGraphBaseURL(cfg.Graph.BaseURL),
			WithAuthorityURL(cfg.Graph.AuthorityURL),
			WithPageSize(cfg.PageSize),
			WithLogger(logger),
		), nil
	case ProviderGoogle:
		b, err := LoadServiceAccount(cfg.Google)
		if err != nil {
			return nil, err
		}
		c, err := NewGoogleClient(b, WithGooglePageSize(cfg.PageSize), WithGoogleLogger(logger))
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
}
