package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TurnNotice asks the external messaging worker to tell a patient it is their turn
type TurnNotice struct {
	ClinicID    uuid.UUID `json:"clinic_id"`
	EntryID     uuid.UUID `json:"entry_id"`
	PatientName string    `json:"patient_name"`
	Phone       string    `json:"phone"`
	DoctorName  string    `json:"doctor_name"`
	TokenNumber int       `json:"token_number"`
}

type Notifier interface {
	NotifyTurn(ctx context.Context, notice TurnNotice) error
}

type messageSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type sqsNotifier struct {
	client   messageSender
	queueURL string
	log      *logrus.Logger
}

// NewNotifier falls back to a no-op notifier when SQS is not configured
func NewNotifier(client *sqs.Client, queueURL string, log *logrus.Logger) Notifier {
	if client == nil || queueURL == "" {
		return noopNotifier{}
	}
	return &sqsNotifier{client: client, queueURL: queueURL, log: log}
}

func (n *sqsNotifier) NotifyTurn(ctx context.Context, notice TurnNotice) error {
	// patients without a phone cannot be reached
	if notice.Phone == "" {
		return nil
	}

	body, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("encode turn notice: %w", err)
	}

	_, err = n.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(n.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"clinic_id": {DataType: aws.String("String"), StringValue: aws.String(notice.ClinicID.String())},
		},
	})
	if err != nil {
		n.log.Warnf("Failed to enqueue turn notice for entry %s: %+v", notice.EntryID, err)
		return fmt.Errorf("send turn notice: %w", err)
	}
	return nil
}

type noopNotifier struct{}

func (noopNotifier) NotifyTurn(context.Context, TurnNotice) error { return nil }
