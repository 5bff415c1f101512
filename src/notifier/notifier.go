// Package notifier processes CloudTrail CreateUser events: it resolves the
// new user's email from tags or the parameter store, fetches the shared
// temporary password and logs the onboarding record.
package notifier

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/ssm"
	"go.uber.org/zap"

	"github.com/clouddeck/iam-user-notifier/src/utils/sendalert"
)

const (
	email_tag_key          = "Email"
	email_parameter_format = "/IAM/Users/%s/Email"
	temp_password_secret   = "IAMUsersTemporaryPassword"
)

type UserClient interface {
	GetUserWithContext(ctx aws.Context, input *iam.GetUserInput, opts ...request.Option) (*iam.GetUserOutput, error)
}

type ParameterClient interface {
	GetParameterWithContext(ctx aws.Context, input *ssm.GetParameterInput, opts ...request.Option) (*ssm.GetParameterOutput, error)
}

type SecretClient interface {
	GetSecretValueWithContext(ctx aws.Context, input *secretsmanager.GetSecretValueInput, opts ...request.Option) (*secretsmanager.GetSecretValueOutput, error)
}

var (
	_ UserClient      = (*iam.IAM)(nil)
	_ ParameterClient = (*ssm.SSM)(nil)
	_ SecretClient    = (*secretsmanager.SecretsManager)(nil)
)

// Response is the structured invocation result. Failures are folded into a
// 500 response, never surfaced as a returned error.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Notifier holds the service clients and logger for one Lambda lifetime.
// Alerts may be nil, which disables the SNS notification.
type Notifier struct {
	IAM     UserClient
	SSM     ParameterClient
	Secrets SecretClient
	Alerts  sendalert.PublishClient
	Logger  *zap.Logger
}

func (n *Notifier) Handle(ctx context.Context, event events.CloudWatchEvent) (Response, error) {

	// An event without a user name is a no-op, not an error
	userName := userNameFromDetail(event.Detail)
	if userName == "" {
		n.Logger.Warn("no user name found in event, nothing to do")
		return Response{StatusCode: 200, Body: "No user name found in event"}, nil
	}

	if err := n.process(ctx, userName); err != nil {
		n.Logger.Error("failed to process user creation",
			zap.String("user", userName),
			zap.Error(err))
		return Response{
			StatusCode: 500,
			Body:       fmt.Sprintf("Error processing user creation for %s: %s", userName, err),
		}, nil
	}

	return Response{
		StatusCode: 200,
		Body:       fmt.Sprintf("Successfully processed user creation for %s", userName),
	}, nil
}

func (n *Notifier) process(ctx context.Context, userName string) error {

	// Fetch the user record
	user, err := n.IAM.GetUserWithContext(ctx, &iam.GetUserInput{
		UserName: aws.String(userName),
	})
	if err != nil {
		return &LookupError{User: userName, Err: err}
	}

	// Resolve email, tag first then parameter store
	email := emailFromTags(user.User.Tags)
	if email == "" {
		email = n.emailFromParameter(ctx, userName)
	}

	// Fetch the shared temporary password
	secret, err := n.Secrets.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(temp_password_secret),
	})
	if err != nil {
		return &SecretAccessError{SecretID: temp_password_secret, Err: err}
	}

	n.Logger.Info(fmt.Sprintf("New IAM user created: %s", userName))
	if email != "" {
		n.Logger.Info(fmt.Sprintf("User Email: %s", email))
	} else {
		n.Logger.Warn(fmt.Sprintf("No email found for user %s", userName))
	}
	n.Logger.Info(fmt.Sprintf("Temporary Password: %s", aws.StringValue(secret.SecretString)))

	// Send out alert, best effort
	if n.Alerts != nil {
		message := fmt.Sprintf("New IAM user created: %s", userName)
		if err := sendalert.Send(ctx, n.Alerts, "IAM user created", message); err != nil {
			n.Logger.Warn("failed to publish user created alert", zap.Error(err))
		}
	}

	return nil
}

func emailFromTags(tags []*iam.Tag) string {
	for _, tag := range tags {
		if aws.StringValue(tag.Key) == email_tag_key {
			return aws.StringValue(tag.Value)
		}
	}
	return ""
}

// emailFromParameter reads /IAM/Users/{name}/Email with decryption. A missing
// or inaccessible parameter is non-fatal, the user just has no email on file.
func (n *Notifier) emailFromParameter(ctx context.Context, userName string) string {
	param, err := n.SSM.GetParameterWithContext(ctx, &ssm.GetParameterInput{
		Name:           aws.String(fmt.Sprintf(email_parameter_format, userName)),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		n.Logger.Warn("could not read email parameter",
			zap.String("user", userName),
			zap.Error(err))
		return ""
	}
	return aws.StringValue(param.Parameter.Value)
}
