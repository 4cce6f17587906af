package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/devicehub/internal/config"
	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	dashboardViewKeyPrefix = "dashboard:view"
	dashboardViewIndex     = dashboardViewKeyPrefix + ":keys"
)

// DashboardCache holds the last composed dashboard view. Callers treat every
// error as a miss.
type DashboardCache interface {
	GetDashboard(ctx context.Context) (*domain.DashboardView, bool, error)
	SetDashboard(ctx context.Context, view *domain.DashboardView) error
	InvalidateAll(ctx context.Context) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
	key    string
}

type noopDashboardCache struct{}

// NewDashboardCache connects to redis when caching is enabled. variant
// distinguishes deployments sharing one redis (timezone, window, ...).
func NewDashboardCache(cfg config.CacheConfig, variant map[string]string) (DashboardCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	client, err := connectRedis(cfg)
	if err != nil {
		return nil, err
	}

	return &redisDashboardCache{
		client: client,
		ttl:    cacheTTL(cfg.DashboardTTLSeconds),
		key:    buildDashboardViewKey(variant),
	}, nil
}

func NewNoopDashboardCache() DashboardCache {
	return &noopDashboardCache{}
}

func (c *redisDashboardCache) GetDashboard(ctx context.Context) (*domain.DashboardView, bool, error) {
	payload, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var view domain.DashboardView
	if err := json.Unmarshal(payload, &view); err != nil {
		return nil, false, fmt.Errorf("decode dashboard view cache: %w", err)
	}

	return &view, true, nil
}

func (c *redisDashboardCache) SetDashboard(ctx context.Context, view *domain.DashboardView) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("encode dashboard view cache: %w", err)
	}

	return setTracked(ctx, c.client, dashboardViewIndex, c.key, payload, c.ttl)
}

func (c *redisDashboardCache) InvalidateAll(ctx context.Context) error {
	return deleteTracked(ctx, c.client, dashboardViewIndex)
}

func (n *noopDashboardCache) GetDashboard(ctx context.Context) (*domain.DashboardView, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) SetDashboard(ctx context.Context, view *domain.DashboardView) error {
	return nil
}

func (n *noopDashboardCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildDashboardViewKey(variant map[string]string) string {
	var parts []string
	for k, v := range variant {
		if v == "" {
			continue
		}
		parts = append(parts, strings.ToLower(k)+"="+v)
	}

	if len(parts) == 0 {
		return dashboardViewKeyPrefix + ":default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", dashboardViewKeyPrefix, hex.EncodeToString(hash[:]))
}
