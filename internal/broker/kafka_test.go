package broker

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	p := NewProducer(&Config{Brokers: []string{"k1:9092", "k2:9092"}, Topic: "salesinsight.actions"})
	t.Cleanup(func() { _ = p.Close() })

	assert.Equal(t, "salesinsight.actions", p.writer.Topic)
	assert.Equal(t, "tcp", p.writer.Addr.Network())
	assert.IsType(t, &kafka.Hash{}, p.writer.Balancer)
	assert.Equal(t, kafka.RequireOne, p.writer.RequiredAcks)
}

func TestNewConsumer(t *testing.T) {
	c := NewConsumer(&Config{Brokers: []string{"k1:9092"}, Topic: "salesinsight.actions", GroupID: "insight-cli"})
	t.Cleanup(func() { _ = c.Close() })

	cfg := c.reader.Config()
	require.Equal(t, []string{"k1:9092"}, cfg.Brokers)
	assert.Equal(t, "salesinsight.actions", cfg.Topic)
	assert.Equal(t, "insight-cli", cfg.GroupID)
}
