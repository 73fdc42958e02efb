package kafka

import (
	"context"
	"errors"
	"strconv"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"airport-service/internal/service"
)

type Config struct {
	Brokers     []string
	GroupID     string
	Topic       string
	DLQ         string
	MaxRetries  int
	BaseBackoff time.Duration
}

// Consumer feeds mutation events of other replicas into an EventHandler.
// Messages that still fail after the retries are copied to the DLQ topic
// and committed.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader  *kafka.Reader
	dlq     messageWriter
	handler service.EventHandler
	cfg     Config
}

func NewConsumer(cfg Config, handler service.EventHandler) *Consumer {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 200 * time.Millisecond
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        100 * time.Millisecond,
		CommitInterval: 0,
	})

	c := &Consumer{reader: r, handler: handler, cfg: cfg}
	if cfg.DLQ != "" {
		c.dlq = &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.DLQ,
			RequiredAcks:           kafka.RequireAll,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		}
	}

	return c
}

func (c *Consumer) Subscribe(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			logrus.WithError(err).Warn("kafka fetch failed")
			select {
			case <-time.After(300 * time.Millisecond):
				continue
			case <-ctx.Done():
				return nil
			}
		}

		log := logrus.WithFields(logrus.Fields{
			"topic":     m.Topic,
			"partition": m.Partition,
			"offset":    m.Offset,
			"key":       string(m.Key),
		})
		log.Debug("event fetched")

		attempts, last := c.process(ctx, m.Value)
		if last != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !c.deadLetter(ctx, m, last, attempts, log) {
				// Left uncommitted; redelivered after restart.
				return nil
			}
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.WithError(err).Error("commit failed")
		}
	}
}

// process hands the payload to the handler, retrying with exponential
// backoff unless the failure can never succeed. It returns the number of
// attempts made and the last error, nil on success.
func (c *Consumer) process(ctx context.Context, payload []byte) (int, error) {
	var last error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff(attempt, c.cfg.BaseBackoff)):
			case <-ctx.Done():
				return attempt, ctx.Err()
			}
		}
		last = c.handler.HandleMessage(ctx, payload)
		if last == nil {
			return attempt + 1, nil
		}
		if isNonRetryable(last) {
			return attempt + 1, last
		}
	}
	return c.cfg.MaxRetries + 1, last
}

// deadLetter copies the message to the DLQ, retrying until the write
// succeeds or ctx ends. It reports whether the message may be committed.
func (c *Consumer) deadLetter(ctx context.Context, m kafka.Message, cause error, attempts int, log *logrus.Entry) bool {
	if c.dlq == nil {
		log.WithError(cause).Error("DLQ disabled, dropping event")
		return true
	}

	dlqMsg := kafka.Message{
		Key:   m.Key,
		Value: m.Value,
		Headers: append(m.Headers,
			kafka.Header{Key: "x-dlq-reason", Value: []byte(trimErr(cause))},
			kafka.Header{Key: "x-dlq-attempts", Value: []byte(strconv.Itoa(attempts))},
			kafka.Header{Key: "x-dlq-ts", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
			kafka.Header{Key: "x-dlq-source-topic", Value: []byte(c.cfg.Topic)},
			kafka.Header{Key: "x-dlq-group", Value: []byte(c.cfg.GroupID)},
		),
	}
	for try := 1; ; try++ {
		err := c.dlq.WriteMessages(ctx, dlqMsg)
		if err == nil {
			log.WithError(cause).Warn("event moved to DLQ")
			return true
		}
		log.WithError(err).WithField("try", try).Error("write to DLQ failed")
		select {
		case <-time.After(backoff(try, c.cfg.BaseBackoff)):
		case <-ctx.Done():
			return false
		}
	}
}

func (c *Consumer) Close() error {
	var first error
	if c.reader != nil {
		if err := c.reader.Close(); err != nil {
			first = err
		}
	}
	if c.dlq != nil {
		if err := c.dlq.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func backoff(n int, base time.Duration) time.Duration {
	if n <= 0 {
		return 0
	}
	if n > 16 {
		n = 16
	}
	d := base * (1 << (n - 1))
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func trimErr(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	if len(s) > 1000 {
		return s[:1000]
	}
	return s
}

func isNonRetryable(err error) bool {
	return errors.Is(err, service.ErrDecode)
}
