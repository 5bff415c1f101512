package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/ssm"
	"go.uber.org/zap"

	"github.com/clouddeck/iam-user-notifier/src/notifier"
)

func main() {

	// Set up logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalln(err)
	}
	defer logger.Sync()

	// Build shared session and service clients
	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))

	n := &notifier.Notifier{
		IAM:     iam.New(sess),
		SSM:     ssm.New(sess),
		Secrets: secretsmanager.New(sess),
		Alerts:  sns.New(sess),
		Logger:  logger,
	}

	lambda.Start(n.Handle)
}
