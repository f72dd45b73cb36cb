package cloud

import (
	"context"
	"fmt"

	"clinic-frontdesk/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/sirupsen/logrus"
)

// Clients bundles the AWS integrations. Either field is nil when the
// matching bucket or queue is not configured.
type Clients struct {
	S3       *s3.Client
	SQS      *sqs.Client
	QueueURL string
}

func NewAWSClients(ctx context.Context, cfg config.AWSConfig) (*Clients, error) {
	clients := &Clients{}
	if cfg.ReportBucket == "" && cfg.NotificationQueue == "" {
		logrus.Info("AWS integrations not configured")
		return clients, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	var endpoint *string
	if cfg.Endpoint != "" {
		endpoint = aws.String(cfg.Endpoint)
	} else {
		endpoint = awsCfg.BaseEndpoint
	}

	if cfg.ReportBucket != "" {
		clients.S3 = s3.New(s3.Options{
			Region:       awsCfg.Region,
			Credentials:  awsCfg.Credentials,
			HTTPClient:   awsCfg.HTTPClient,
			BaseEndpoint: endpoint,
			UsePathStyle: true,
		})
	}

	if cfg.NotificationQueue != "" {
		clients.SQS = sqs.New(sqs.Options{
			Region:       awsCfg.Region,
			Credentials:  awsCfg.Credentials,
			HTTPClient:   awsCfg.HTTPClient,
			BaseEndpoint: endpoint,
		})

		resp, err := clients.SQS.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(cfg.NotificationQueue)})
		if err != nil {
			return nil, fmt.Errorf("failed to get SQS queue URL: %w", err)
		}
		clients.QueueURL = aws.ToString(resp.QueueUrl)
	}

	logrus.Info("AWS clients initialized")
	return clients, nil
}
