package authcore

import (
	"errors"
	"fmt"

	"github.com/rafaelpmaio/authcore/password"
	"github.com/rafaelpmaio/authcore/refreshstore"
	"github.com/rafaelpmaio/authcore/token"
	"github.com/rafaelpmaio/authcore/userstore"
)

// Builder assembles an Engine from configuration and injected stores.
// A Builder is single use: Build can be called once.
type Builder struct {
	config Config

	users     userstore.Store
	tokens    refreshstore.Store
	hasher    password.Hasher
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with DefaultConfig. Secrets and stores
// must still be supplied before Build.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithUserStore sets the backing store for user records. Required.
func (b *Builder) WithUserStore(s userstore.Store) *Builder {
	b.users = s
	return b
}

// WithTokenStore sets the backing store for refresh token records.
// Required.
func (b *Builder) WithTokenStore(s refreshstore.Store) *Builder {
	b.tokens = s
	return b
}

// WithHasher overrides the password hasher. When unset, Build
// constructs one from Config.Password.
func (b *Builder) WithHasher(h password.Hasher) *Builder {
	b.hasher = h
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires the collaborators, and
// returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.users == nil {
		return nil, errors.New("user store required")
	}
	if b.tokens == nil {
		return nil, errors.New("token store required")
	}

	jwtManager, err := token.NewManager(token.Config{
		AccessSecret:  []byte(cfg.JWT.AccessSecret),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	hasher := b.hasher
	if hasher == nil {
		switch cfg.Password.Algorithm {
		case AlgorithmArgon2id:
			hasher, err = password.NewArgon2(cfg.Password.Argon2)
		default:
			hasher, err = password.NewBcrypt(cfg.Password.BcryptCost)
		}
		if err != nil {
			return nil, fmt.Errorf("password hasher: %w", err)
		}
	}

	b.built = true

	return &Engine{
		config:  cfg,
		users:   b.users,
		tokens:  b.tokens,
		hasher:  hasher,
		jwt:     jwtManager,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}, nil
}
