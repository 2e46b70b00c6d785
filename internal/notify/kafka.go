package notify

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/IBM/sarama"

	"signaltracker/internal/config"
)

// KafkaNotifier publishes events as JSON to one topic, keyed by signal
// id so per-signal ordering survives partitioning.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaNotifier(cfg config.KafkaConfig) (*KafkaNotifier, error) {
	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForLocal
	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, err
	}
	return &KafkaNotifier{producer: producer, topic: cfg.Topic}, nil
}

func (n *KafkaNotifier) Close() error {
	if n == nil || n.producer == nil {
		return nil
	}
	return n.producer.Close()
}

func (n *KafkaNotifier) SignalCreated(_ context.Context, event CreationEvent) error {
	return n.publish(event.SignalID, "signal_created", event)
}

func (n *KafkaNotifier) SignalClosed(_ context.Context, event OutcomeEvent) error {
	return n.publish(event.SignalID, "signal_closed", event)
}

func (n *KafkaNotifier) publish(signalID uint64, kind string, payload any) error {
	if n == nil || n.producer == nil {
		return nil
	}
	body, err := json.Marshal(map[string]any{
		"type":  kind,
		"event": payload,
	})
	if err != nil {
		return err
	}
	_, _, err = n.producer.SendMessage(&sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(signalID, 10)),
		Value: sarama.ByteEncoder(body),
	})
	return err
}
