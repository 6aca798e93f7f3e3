package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-app-kit/internal/config"
	"github.com/samvad-hq/samvad-app-kit/internal/domain"
	"github.com/samvad-hq/samvad-app-kit/internal/logger"
	"github.com/samvad-hq/samvad-app-kit/internal/storage"
	"github.com/samvad-hq/samvad-app-kit/pkg/httpclient"
	"github.com/samvad-hq/samvad-app-kit/pkg/publishers"
)

// notifyTimeout bounds delivery of a single auth-expired event to all publishers.
const notifyTimeout = 5 * time.Second

// Kit owns the credential store, the auth-expiry publishers and the
// authenticated API client built on top of them.
type Kit struct {
	cfg    *config.Config
	store  storage.Store
	fanout *publishers.Fanout
	client *httpclient.AuthClient
	log    logger.Logger

	// deliveries tracks in-flight auth-expired notifications.
	deliveries sync.WaitGroup
}

// NewKit builds the runtime from cfg: store first, then publishers, then the client.
func NewKit(ctx context.Context, cfg *config.Config, log logger.Logger) (*Kit, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.NewStore(cfg.CredentialStoreType, cfg.CredentialStorePath, storage.Options{
		Secret:          []byte(cfg.CredentialSecret),
		TTL:             cfg.CredentialTTL,
		CleanupInterval: cfg.CredentialCleanupPeriod,
	})
	if err != nil {
		return nil, fmt.Errorf("init credential store: %w", err)
	}
	log.InfoObj("credential store initialized", "storage_config", map[string]any{
		"type":                     cfg.CredentialStoreType,
		"path":                     cfg.CredentialStorePath,
		"ttl_seconds":              int(cfg.CredentialTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.CredentialCleanupPeriod.Seconds()),
	})

	fanout, err := loadPublishers(ctx, cfg.PublishersFile, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	k := &Kit{
		cfg:    cfg,
		store:  store,
		fanout: fanout,
		log:    log,
	}

	client, err := httpclient.New(httpclient.Options{
		BaseURL:       cfg.APIBaseURL,
		Timeout:       cfg.RequestTimeout,
		Store:         store,
		TokenKey:      cfg.AuthTokenKey,
		OnAuthExpired: k.handleAuthExpired,
		Logger:        log,
	})
	if err != nil {
		_ = k.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	k.client = client
	log.InfoObj("api client initialized", "client_config", map[string]any{
		"base_url":        cfg.APIBaseURL,
		"timeout_seconds": int(cfg.RequestTimeout.Seconds()),
	})

	return k, nil
}

// loadPublishers builds the fan-out for auth-expired events. An empty path
// yields an empty fan-out so expiries are only logged.
func loadPublishers(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		log.InfoObj("no publishers file configured; auth expiry will only be logged", "publishers_meta", map[string]any{"count": 0})
		return publishers.NewFanout(nil), nil
	}

	set, err := publishers.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers file: %w", err)
	}
	enabled := set.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Client returns the authenticated API client.
func (k *Kit) Client() *httpclient.AuthClient { return k.client }

// Store returns the credential store backing the client.
func (k *Kit) Store() storage.Store { return k.store }

// SetToken stores the bearer token used by subsequent requests.
func (k *Kit) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token must not be empty")
	}
	if err := k.store.Set(ctx, k.cfg.AuthTokenKey, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	k.log.InfoObj("auth token stored", "token_meta", map[string]any{"key": k.cfg.AuthTokenKey})
	return nil
}

// ClearToken removes the stored bearer token.
func (k *Kit) ClearToken(ctx context.Context) error {
	if err := k.store.Delete(ctx, k.cfg.AuthTokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	k.log.InfoObj("auth token cleared", "token_meta", map[string]any{"key": k.cfg.AuthTokenKey})
	return nil
}

// HasToken reports whether a non-empty token is stored.
func (k *Kit) HasToken(ctx context.Context) (bool, error) {
	token, ok, err := k.store.Get(ctx, k.cfg.AuthTokenKey)
	if err != nil {
		return false, fmt.Errorf("read token: %w", err)
	}
	return ok && token != "", nil
}

// handleAuthExpired reports a rejected credential to every publisher. It runs
// inside the client's response hook, so delivery happens on its own goroutine:
// the 401 reaches the caller without waiting for the sinks. Delivery outlives
// the request context but is bounded by notifyTimeout; Close waits for it.
func (k *Kit) handleAuthExpired(ctx context.Context, resp httpclient.Response) {
	method, url, authenticated := httpclient.RequestOf(resp)
	evt := publishers.NewAuthExpiredEvent(k.cfg.AppName, domain.AuthEvent{
		Method:        method,
		URL:           url,
		StatusCode:    resp.StatusCode(),
		Authenticated: authenticated,
	})

	if k.fanout.Size() == 0 {
		k.log.WarnObj("auth expired", "auth_event", evt.Auth)
		return
	}

	detached := context.WithoutCancel(ctx)
	k.deliveries.Add(1)
	go func() {
		defer k.deliveries.Done()
		k.publish(detached, evt)
	}()
}

func (k *Kit) publish(ctx context.Context, evt publishers.Event) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	delivered, err := k.fanout.Publish(ctx, evt)
	if err != nil {
		k.log.ErrorObj("auth expired event delivery failed", "publish_result", map[string]any{
			"delivered": delivered,
			"total":     k.fanout.Size(),
			"error":     err.Error(),
		})
		return
	}
	k.log.InfoObj("auth expired event published", "publish_result", map[string]any{
		"delivered": delivered,
		"auth":      evt.Auth,
	})
}

// Close waits for pending auth-expired deliveries, then releases publishers and
// the credential store. Call it after the last request has returned.
func (k *Kit) Close() error {
	if k == nil {
		return nil
	}
	k.deliveries.Wait()

	var errs []error
	if err := k.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publishers: %w", err))
	}
	if k.store != nil {
		if err := k.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close credential store: %w", err))
		}
	}
	return errors.Join(errs...)
}
