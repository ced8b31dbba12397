package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"floresya-images/internal/config"
	"floresya-images/internal/domain"

	wbkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

// ProducerClient publishes image lifecycle events. Publishing is
// best-effort: the pipeline treats a failed send as a log line, never as a
// pipeline failure.
type ProducerClient struct {
	producer *wbkafka.Producer
}

func NewProducerClient(cfg *config.Config) *ProducerClient {
	return &ProducerClient{
		producer: wbkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic),
	}
}

func (p *ProducerClient) SendEvent(ctx context.Context, strategy retry.Strategy, event domain.ImageEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	key := []byte(event.SiteType)
	if event.ProductID != 0 {
		key = []byte(strconv.FormatInt(event.ProductID, 10))
	}

	return p.producer.SendWithRetry(ctx, strategy, key, value)
}

func (p *ProducerClient) Close() error {
	return p.producer.Close()
}
