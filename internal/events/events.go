// Package events publishes domain events to other services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/localnerve/agrilearn/internal/logger"
	goredis "github.com/redis/go-redis/v9"
)

// Event types
const (
	CourseCompleted   = "course.completed"
	CertificateIssued = "certificate.issued"
	EnrollmentCreated = "enrollment.created"
	PostCreated       = "post.created"
	DonationReviewed  = "donation.reviewed"
)

// Event is one domain event
type Event struct {
	Type string                 `json:"type"`
	At   time.Time              `json:"at"`
	Data map[string]interface{} `json:"data"`
}

// New stamps an event of the given type
func New(eventType string, data map[string]interface{}) Event {
	return Event{Type: eventType, At: time.Now().UTC(), Data: data}
}

// Publisher delivers events. Publishing is best effort; callers log failures and continue.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Ping(ctx context.Context) error
	Close() error
}

type redisPublisher struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisPublisher connects to redis at addr and publishes on channel
func NewRedisPublisher(addr, channel string, log *logger.Logger) (Publisher, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if channel == "" {
		channel = "agrilearn.events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisPublisher{
		log:     log.With("service", "RedisPublisher"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (p *redisPublisher) Publish(ctx context.Context, e Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, raw).Err()
}

func (p *redisPublisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func (p *redisPublisher) Close() error {
	return p.rdb.Close()
}

type logPublisher struct {
	log *logger.Logger
}

// NewLogPublisher writes events to the log. Used when no redis is configured.
func NewLogPublisher(log *logger.Logger) Publisher {
	return &logPublisher{log: log.With("service", "LogPublisher")}
}

func (p *logPublisher) Publish(_ context.Context, e Event) error {
	p.log.Info("event", "type", e.Type, "data", e.Data)
	return nil
}

func (p *logPublisher) Ping(context.Context) error { return nil }

func (p *logPublisher) Close() error { return nil }

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Ping(context.Context) error { return nil }

func (r *Recorder) Close() error { return nil }

// Events returns a copy of what was published, in order
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the types of what was published, in order
func (r *Recorder) Types() []string {
	var out []string
	for _, e := range r.Events() {
		out = append(out, e.Type)
	}
	return out
}
