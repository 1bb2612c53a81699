// Package portfolio resolves the per-user inputs of the relevance
// predictor: preferences and the portfolio context derived from holdings.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/alert-relevance-service/internal/models"
	"github.com/trogers1052/alert-relevance-service/internal/redis"
)

// Store defines the database operations used by the provider
type Store interface {
	GetHoldings(userID string) ([]*models.Holding, error)
	ReplaceHoldings(userID string, holdings []*models.Holding) error
	GetPreferences(userID string) (models.Preferences, error)
	SavePreferences(userID string, prefs models.Preferences) error
}

// Cache defines the cache operations used by the provider
type Cache interface {
	GetPortfolioContext(ctx context.Context, userID string) (*models.PortfolioContext, error)
	SetPortfolioContext(ctx context.Context, userID string, pc models.PortfolioContext, ttl time.Duration) error
	DeletePortfolioContext(ctx context.Context, userID string) error
	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
	SetPreferences(ctx context.Context, userID string, prefs models.Preferences, ttl time.Duration) error
	DeletePreferences(ctx context.Context, userID string) error
}

// Provider reads through an optional cache to the store. Cache failures
// never fail a call.
type Provider struct {
	store Store
	cache Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewProvider creates a provider. cache may be nil.
func NewProvider(store Store, cache Cache, ttl time.Duration, log zerolog.Logger) *Provider {
	return &Provider{
		store: store,
		cache: cache,
		ttl:   ttl,
		log:   log.With().Str("component", "portfolio").Logger(),
	}
}

// Context returns the user's portfolio context.
func (p *Provider) Context(ctx context.Context, userID string) (models.PortfolioContext, error) {
	if p.cache != nil {
		cached, err := p.cache.GetPortfolioContext(ctx, userID)
		if err == nil {
			return *cached, nil
		}
		p.logCacheError(err, userID, "portfolio context read")
	}

	holdings, err := p.store.GetHoldings(userID)
	if err != nil {
		return models.PortfolioContext{}, fmt.Errorf("failed to load holdings for %s: %w", userID, err)
	}
	pc := models.NewPortfolioContext(holdings)

	if p.cache != nil {
		if err := p.cache.SetPortfolioContext(ctx, userID, pc, p.ttl); err != nil {
			p.logCacheError(err, userID, "portfolio context write")
		}
	}
	return pc, nil
}

// Preferences returns the user's preferences, defaults when none are stored.
func (p *Provider) Preferences(ctx context.Context, userID string) (models.Preferences, error) {
	if p.cache != nil {
		cached, err := p.cache.GetPreferences(ctx, userID)
		if err == nil {
			return cached.WithDefaults(), nil
		}
		p.logCacheError(err, userID, "preferences read")
	}

	prefs, err := p.store.GetPreferences(userID)
	if err != nil {
		return models.Preferences{}, fmt.Errorf("failed to load preferences for %s: %w", userID, err)
	}

	if p.cache != nil {
		if err := p.cache.SetPreferences(ctx, userID, prefs, p.ttl); err != nil {
			p.logCacheError(err, userID, "preferences write")
		}
	}
	return prefs, nil
}

// SavePreferences stores preferences and drops the cached copy.
func (p *Provider) SavePreferences(ctx context.Context, userID string, prefs models.Preferences) error {
	if err := p.store.SavePreferences(userID, prefs); err != nil {
		return err
	}
	if p.cache != nil {
		if err := p.cache.DeletePreferences(ctx, userID); err != nil {
			p.logCacheError(err, userID, "preferences invalidate")
		}
	}
	return nil
}

// ReplaceHoldings stores a holdings snapshot and drops the cached context.
func (p *Provider) ReplaceHoldings(ctx context.Context, userID string, holdings []*models.Holding) error {
	if userID == "" {
		return models.ErrMissingUserID
	}
	if err := p.store.ReplaceHoldings(userID, holdings); err != nil {
		return err
	}
	if p.cache != nil {
		if err := p.cache.DeletePortfolioContext(ctx, userID); err != nil {
			p.logCacheError(err, userID, "portfolio context invalidate")
		}
	}
	return nil
}

func (p *Provider) logCacheError(err error, userID, op string) {
	if errors.Is(err, redis.ErrCacheMiss) {
		p.log.Debug().Str("user_id", userID).Msgf("Cache miss on %s", op)
		return
	}
	p.log.Warn().Err(err).Str("user_id", userID).Msgf("Cache %s failed", op)
}
