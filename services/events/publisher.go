package events

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"time"

	// Local Packages
	errors "tx-pipeline/errors"
	models "tx-pipeline/models"

	// External Packages
	"go.uber.org/zap"
)

// Outcome channels, one per (type, outcome) pair.
const (
	ChannelDepositSuccess  = "deposit:success"
	ChannelDepositFailed   = "deposit:failed"
	ChannelWithdrawSuccess = "withdraw:success"
	ChannelWithdrawFailed  = "withdraw:failed"
)

type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type StreamProducer interface {
	Produce(ctx context.Context, key string, payload []byte) error
}

// Publisher announces the outcome of a concluded transaction attempt
// on the matching named channel, and mirrors the payload to the audit
// stream when one is configured. The channel publish is the contract;
// the mirror is best effort.
type Publisher struct {
	channels ChannelPublisher
	stream   StreamProducer
	logger   *zap.Logger
}

// NewPublisher builds a Publisher. stream may be nil to disable the
// audit mirror.
func NewPublisher(channels ChannelPublisher, stream StreamProducer, logger *zap.Logger) *Publisher {
	return &Publisher{channels: channels, stream: stream, logger: logger}
}

// Publish emits a NotificationEvent for the given outcome (1 success,
// 0 failure) and transaction type. Unknown types have no channel and
// fail with an unsupported-type error.
func (p *Publisher) Publish(ctx context.Context, outcome int, txType string) error {
	success := outcome == models.OutcomeSuccess

	var channel string
	switch txType {
	case models.TypeDeposit:
		channel = ChannelDepositFailed
		if success {
			channel = ChannelDepositSuccess
		}
	case models.TypeWithdraw:
		channel = ChannelWithdrawFailed
		if success {
			channel = ChannelWithdrawSuccess
		}
	default:
		return errors.UnsupportedTypeErr(txType)
	}

	event := models.NotificationEvent{
		Event:     "failed",
		Type:      txType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if success {
		event.Event = "success"
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.E(errors.Internal, "failed to serialize event", err)
	}

	if err := p.channels.Publish(ctx, channel, payload); err != nil {
		return err
	}

	if p.stream != nil {
		if err := p.stream.Produce(ctx, channel, payload); err != nil {
			p.logger.Warn("failed to mirror event to audit stream",
				zap.String("channel", channel), zap.Error(err))
		}
	}
	return nil
}
