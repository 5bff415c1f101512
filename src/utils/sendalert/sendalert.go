package sendalert

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sns"
)

const (
	env_alert_sns_arn = "USER_CREATED_ALERT_SNS_ARN"
)

type PublishClient interface {
	PublishWithContext(ctx aws.Context, input *sns.PublishInput, opts ...request.Option) (*sns.PublishOutput, error)
}

var _ PublishClient = (*sns.SNS)(nil)

// Send publishes a notification to the configured topic. An unset topic ARN
// means alerts are disabled and Send is a no-op.
func Send(ctx context.Context, client PublishClient, subject string, message string) error {
	snsArn := os.Getenv(env_alert_sns_arn)
	if snsArn == "" {
		return nil
	}
	_, err := client.PublishWithContext(ctx, &sns.PublishInput{
		Message:  &message,
		TopicArn: &snsArn,
		Subject:  &subject,
	})
	return err
}
