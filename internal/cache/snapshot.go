package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

// SnapshotCache keeps the latest fetched directory snapshot in redis so
// list reads stay fast and degrade instead of blocking when the backend is
// slow. Snapshots are advisory only; writes always re-validate against the
// authoritative store.
type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSnapshotCache(rdb *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{rdb: rdb, ttl: ttl}
}

func agentKey(id int64) string {
	return fmt.Sprintf("agents:detail:%d", id)
}

const listKey = "agents:list"

// GetAgent returns the cached agent or nil on miss. Cache errors are
// logged, never surfaced: a broken cache degrades to a backend read.
func (c *SnapshotCache) GetAgent(ctx context.Context, id int64) *domain.Agent {
	if c == nil || c.rdb == nil {
		return nil
	}
	data, err := c.rdb.Get(ctx, agentKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Agent cache read failed", "agent_id", id, "error", err)
		}
		return nil
	}
	var agent domain.Agent
	if err := json.Unmarshal(data, &agent); err != nil {
		logger.Warn("Agent cache entry corrupt", "agent_id", id, "error", err)
		return nil
	}
	return &agent
}

func (c *SnapshotCache) PutAgent(ctx context.Context, agent *domain.Agent) {
	if c == nil || c.rdb == nil || agent == nil {
		return
	}
	data, err := json.Marshal(agent)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, agentKey(agent.ID), data, c.ttl).Err(); err != nil {
		logger.Warn("Agent cache write failed", "agent_id", agent.ID, "error", err)
	}
}

// InvalidateAgent drops one agent's snapshot plus the listing, after any
// write that changes what readers would see.
func (c *SnapshotCache) InvalidateAgent(ctx context.Context, id int64) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, agentKey(id), listKey).Err(); err != nil {
		logger.Warn("Agent cache invalidation failed", "agent_id", id, "error", err)
	}
}

type cachedList struct {
	Agents []domain.Agent `json:"agents"`
	Total  int64          `json:"total"`
}

func (c *SnapshotCache) GetListing(ctx context.Context) ([]domain.Agent, int64, bool) {
	if c == nil || c.rdb == nil {
		return nil, 0, false
	}
	data, err := c.rdb.Get(ctx, listKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Listing cache read failed", "error", err)
		}
		return nil, 0, false
	}
	var list cachedList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, 0, false
	}
	return list.Agents, list.Total, true
}

func (c *SnapshotCache) PutListing(ctx context.Context, agents []domain.Agent, total int64) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(cachedList{Agents: agents, Total: total})
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, listKey, data, c.ttl).Err(); err != nil {
		logger.Warn("Listing cache write failed", "error", err)
	}
}
