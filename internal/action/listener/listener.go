package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/internal/action/dto"
	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// ActionListener follows the action event topic and hands each decoded event to handle.
type ActionListener struct {
	consumer MessageReader
	handle   func(dto.ActionEvent)
	backoff  time.Duration
	logger   logger.ZapLogger
}

func NewActionListener(consumer MessageReader, handle func(dto.ActionEvent), logger logger.ZapLogger) *ActionListener {
	return &ActionListener{
		consumer: consumer,
		handle:   handle,
		backoff:  time.Second,
		logger:   logger,
	}
}

func (l *ActionListener) Start(ctx context.Context) {
	l.logger.Info("Starting action event listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping action event listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.backoff):
				}
				continue
			}
			l.processMessage(msg.Value)
		}
	}
}

func (l *ActionListener) processMessage(value []byte) {
	var event dto.ActionEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal action event", zap.Error(err))
		return
	}

	switch event.EventType {
	case dto.EventActionCreated, dto.EventActionStatusChanged, dto.EventActionDeleted:
	default:
		l.logger.Debug("Ignoring unknown event type", zap.String("event_type", event.EventType))
		return
	}
	l.handle(event)
}
