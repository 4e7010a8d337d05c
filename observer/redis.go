package observer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"monopoly/protocol"
)

// Publisher pushes events and snapshots onto redis pub/sub channels so
// dashboards outside this process can follow a run. Publishing is best
// effort: a redis outage is logged and the run continues.
type Publisher struct {
	pool   *redis.Pool
	runID  string
	logger zerolog.Logger
}

// NewPublisher connects a pool to the given address and verifies it with a
// ping.
func NewPublisher(addr, runID string) (*Publisher, error) {
	pool := &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 60 * time.Second,
		Dial:        func() (redis.Conn, error) { return redis.Dial("tcp", addr) },
	}
	conn := pool.Get()
	defer conn.Close()
	if _, err := conn.Do("PING"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return &Publisher{pool: pool, runID: runID, logger: log.Logger}, nil
}

func (p *Publisher) channel(kind string) string {
	return fmt.Sprintf("monopoly:run:%s:%s", p.runID, kind)
}

func (p *Publisher) publish(kind string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	conn := p.pool.Get()
	defer conn.Close()
	if _, err := conn.Do("PUBLISH", p.channel(kind), data); err != nil {
		p.logger.Warn().Msgf("redis publish %s: %v", kind, err)
	}
}

// BroadcastEvent implements the engine broadcaster contract.
func (p *Publisher) BroadcastEvent(ev protocol.Event) {
	p.publish("events", ev)
}

// BroadcastSnapshot implements the engine broadcaster contract.
func (p *Publisher) BroadcastSnapshot(snap protocol.Snapshot) {
	p.publish("snapshots", snap)
}

// Close releases the pool.
func (p *Publisher) Close() error {
	if p == nil || p.pool == nil {
		return nil
	}
	return p.pool.Close()
}
