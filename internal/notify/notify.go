// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/recommend"
	"github.com/tomtom215/curator/internal/resilience"
)

// Backends.
const (
	BackendGoChannel = "gochannel"
	BackendNATS      = "nats"
)

// DefaultTopic is the run-completed topic.
const DefaultTopic = "curator.run.completed"

// ErrClosed is returned after Close.
var ErrClosed = errors.New("notifier is closed")

// RunCompleted is the payload of a run-completed message.
type RunCompleted struct {
	RunID       string    `json:"run_id"`
	Algorithm   string    `json:"algorithm"`
	Items       int       `json:"items"`
	Clusters    int       `json:"clusters"`
	ArtifactDir string    `json:"artifact_dir"`
	CompletedAt time.Time `json:"completed_at"`
}

// Config configures a Publisher.
type Config struct {
	// Backend is gochannel or nats.
	Backend string

	// URL is the NATS server URL.
	URL string

	// Topic defaults to DefaultTopic.
	Topic string

	// ArtifactDir is reported in every payload.
	ArtifactDir string

	MaxReconnects int
	ReconnectWait time.Duration
	CloseTimeout  time.Duration
}

// Publisher publishes run-completed messages and lets other components
// subscribe to them. The gochannel backend only reaches subscribers in the
// same process; the NATS backend uses core NATS subjects.
type Publisher struct {
	cfg     Config
	pub     message.Publisher
	sub     message.Subscriber
	shared  bool
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// New creates a publisher for cfg.Backend.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cfg Config, logger zerolog.Logger) (*Publisher, error) {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = -1
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 10 * time.Second
	}

	logger = logger.With().Str("component", "notify").Str("backend", cfg.Backend).Logger()
	wmLogger := logging.NewWatermillLogger(logger)

	p := &Publisher{
		cfg:     cfg,
		breaker: resilience.NewBreaker[struct{}]("notify", resilience.DefaultBreakerSettings()),
		logger:  logger,
	}

	switch cfg.Backend {
	case BackendGoChannel, "":
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, wmLogger)
		p.pub, p.sub, p.shared = ch, ch, true
	case BackendNATS:
		if err := p.openNATS(wmLogger); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Backend)
	}
	return p, nil
}

func (p *Publisher) openNATS(wmLogger watermill.LoggerAdapter) error {
	natsOpts := []natsgo.Option{
		natsgo.Name("curator"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(p.cfg.MaxReconnects),
		natsgo.ReconnectWait(p.cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				p.logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			p.logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}
	core := wmNats.JetStreamConfig{Disabled: true}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         p.cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   core,
	}, wmLogger)
	if err != nil {
		return fmt.Errorf("create NATS publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              p.cfg.URL,
		SubscribersCount: 1,
		CloseTimeout:     p.cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        core,
	}, wmLogger)
	if err != nil {
		_ = pub.Close() //nolint:errcheck // subscriber error takes precedence
		return fmt.Errorf("create NATS subscriber: %w", err)
	}

	p.pub, p.sub = pub, sub
	return nil
}

// Topic returns the run-completed topic.
func (p *Publisher) Topic() string {
	return p.cfg.Topic
}

// NewRunCompleted builds the payload for a run.
func NewRunCompleted(res *recommend.RunResult, artifactDir string) RunCompleted {
	ev := RunCompleted{
		RunID:       res.RunID,
		Clusters:    len(res.Clusters),
		ArtifactDir: artifactDir,
		CompletedAt: res.CompletedAt,
	}
	if res.Ranking != nil {
		ev.Algorithm = res.Ranking.Algorithm()
		ev.Items = res.Ranking.Table.Len()
	}
	return ev
}

// NotifyRunCompleted implements recommend.Notifier.
func (p *Publisher) NotifyRunCompleted(ctx context.Context, res *recommend.RunResult) error {
	if res == nil {
		return errors.New("nil run result")
	}
	return p.Publish(ctx, NewRunCompleted(res, p.cfg.ArtifactDir))
}

// Publish sends ev on the run-completed topic through the circuit breaker.
func (p *Publisher) Publish(ctx context.Context, ev RunCompleted) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode run completed: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("run_id", ev.RunID)
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	msg.SetContext(ctx)

	_, err = resilience.Execute(p.breaker, func() (struct{}, error) {
		return struct{}{}, p.pub.Publish(p.cfg.Topic, msg)
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", p.cfg.Topic, err)
	}

	p.logger.Debug().Str("run_id", ev.RunID).Str("topic", p.cfg.Topic).Msg("Run completion published")
	return nil
}

// Subscribe delivers decoded run-completed messages until ctx is done or
// the publisher is closed. Undecodable messages are logged and dropped.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan RunCompleted, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}

	msgs, err := p.sub.Subscribe(ctx, p.cfg.Topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", p.cfg.Topic, err)
	}

	out := make(chan RunCompleted)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev RunCompleted
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				p.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed run completion")
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close shuts down the publisher and its subscriptions.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if err := p.pub.Close(); err != nil {
		errs = append(errs, err)
	}
	if !p.shared {
		if err := p.sub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
