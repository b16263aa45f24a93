package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"incident-verifier/internal/logger"
)

// Config holds Kafka connection settings
type Config struct {
	BootstrapServers string
	Topic            string
}

// VerificationJobMessage is the payload queued for the verification worker
type VerificationJobMessage struct {
	JobID         string    `json:"job_id"`
	IncidentID    string    `json:"incident_id"`
	CorrelationID string    `json:"correlation_id"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// Service publishes verification jobs to the queue
type Service struct {
	writer *kafka.Writer
	config Config
	logger *logrus.Logger
}

// NewService creates a Kafka producer service
func NewService(cfg Config) *Service {
	return &Service{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(strings.Split(cfg.BootstrapServers, ",")...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
		config: cfg,
		logger: logger.Log,
	}
}

// PublishVerificationJob enqueues one verification job
func (s *Service) PublishVerificationJob(ctx context.Context, msg VerificationJobMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal job message: %w", err)
	}

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.JobID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"job_id":         msg.JobID,
		"incident_id":    msg.IncidentID,
		"correlation_id": msg.CorrelationID,
		"topic":          s.config.Topic,
	}).Info("Verification job published")

	return nil
}

// Close flushes and closes the producer
func (s *Service) Close() error {
	return s.writer.Close()
}

// Consumer reads verification jobs from the queue
type Consumer struct {
	reader *kafka.Reader
	logger *logrus.Logger
}

// CreateConsumer creates a consumer bound to a consumer group
func (s *Service) CreateConsumer(groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  strings.Split(s.config.BootstrapServers, ","),
			GroupID:  groupID,
			Topic:    s.config.Topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		logger: logger.Log,
	}
}

// ReadVerificationJob blocks until the next job message arrives
func (c *Consumer) ReadVerificationJob(ctx context.Context) (*VerificationJobMessage, error) {
	message, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read job message: %w", err)
	}

	var job VerificationJobMessage
	if err := json.Unmarshal(message.Value, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job message: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"job_id":         job.JobID,
		"correlation_id": job.CorrelationID,
		"partition":      message.Partition,
		"offset":         message.Offset,
	}).Info("Verification job received")

	return &job, nil
}

// Close closes the consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
