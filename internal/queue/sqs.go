// Package queue fans stored alerts out to downstream consumers over SQS or
// Kafka.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"disasterwatch/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSAlertPublisher sends each alert as a JSON message to one queue.
type SQSAlertPublisher struct {
	client   SQSSender
	queueURL string
	logger   *slog.Logger
}

var _ types.AlertPublisher = (*SQSAlertPublisher)(nil)

func NewSQSAlertPublisher(client SQSSender, queueURL string, logger *slog.Logger) *SQSAlertPublisher {
	return &SQSAlertPublisher{client: client, queueURL: queueURL, logger: logger}
}

// PublishAlert serializes the alert and sends it. Risk level and city travel
// as message attributes so consumers can filter without decoding the body.
func (p *SQSAlertPublisher) PublishAlert(ctx context.Context, alert *types.Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("queue: failed to marshal alert: %w", err)
	}

	attrs := map[string]sqsTypes.MessageAttributeValue{
		"risk_level": stringAttr(string(alert.RiskLevel)),
		"city":       stringAttr(alert.City),
	}
	if id := types.GetRequestID(ctx); id != "" {
		attrs["request_id"] = stringAttr(id)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("queue: failed to send alert %s to %s: %w", alert.ID, p.queueURL, err)
	}

	p.logger.InfoContext(ctx, "alert message sent",
		"queue_url", p.queueURL,
		"alert_id", alert.ID,
		"city", alert.City,
		"risk_level", string(alert.RiskLevel),
	)
	return nil
}

func stringAttr(v string) sqsTypes.MessageAttributeValue {
	return sqsTypes.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(v),
	}
}
