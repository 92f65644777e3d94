package kafka

import "github.com/IBM/sarama"

// NewGroup builds a consumer group with offsets starting at the oldest
// unconsumed message, so payment events survive service restarts.
func NewGroup(brokers []string, groupID string) (sarama.ConsumerGroup, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_8_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true
	return sarama.NewConsumerGroup(brokers, groupID, cfg)
}
