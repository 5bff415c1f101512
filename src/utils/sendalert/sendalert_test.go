package sendalert

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/stretchr/testify/assert"
)

type mockPublisher struct {
	calls int
	input *sns.PublishInput
}

func (m *mockPublisher) PublishWithContext(ctx aws.Context, input *sns.PublishInput, opts ...request.Option) (*sns.PublishOutput, error) {
	m.calls++
	m.input = input
	return &sns.PublishOutput{}, nil
}

func TestSendWithoutTopicArn(t *testing.T) {
	t.Setenv("USER_CREATED_ALERT_SNS_ARN", "")

	client := &mockPublisher{}
	err := Send(context.Background(), client, "subject", "message")
	assert.Nil(t, err)
	assert.EqualValues(t, 0, client.calls)
}

func TestSend(t *testing.T) {
	t.Setenv("USER_CREATED_ALERT_SNS_ARN", "arn:aws:sns:us-west-2:123456789012:user-created")

	client := &mockPublisher{}
	err := Send(context.Background(), client, "IAM user created", "New IAM user created: s3-user")
	assert.Nil(t, err)
	assert.EqualValues(t, 1, client.calls)
	assert.EqualValues(t, "arn:aws:sns:us-west-2:123456789012:user-created", aws.StringValue(client.input.TopicArn))
	assert.EqualValues(t, "IAM user created", aws.StringValue(client.input.Subject))
	assert.EqualValues(t, "New IAM user created: s3-user", aws.StringValue(client.input.Message))
}
