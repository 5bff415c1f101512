package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/ssm"
	"go.uber.org/zap"

	"github.com/clouddeck/iam-user-notifier/src/notifier"
)

const (
	default_config_file = "config.toml"
)

type config struct {
	Region   string
	UserName string
}

func main() {

	// Check for config file path
	var configFile string
	if len(os.Args) == 2 {
		configFile = os.Args[1]
	} else {
		configFile = default_config_file
	}

	// Load configuration
	var conf config
	if _, err := toml.DecodeFile(configFile, &conf); err != nil {
		log.Fatalln(err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalln(err)
	}
	defer logger.Sync()

	sess := session.Must(session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(conf.Region)},
		SharedConfigState: session.SharedConfigEnable,
	}))

	n := &notifier.Notifier{
		IAM:     iam.New(sess),
		SSM:     ssm.New(sess),
		Secrets: secretsmanager.New(sess),
		Logger:  logger,
	}

	// Synthesize a CreateUser event for the configured user
	detail, err := json.Marshal(map[string]interface{}{
		"eventSource": "iam.amazonaws.com",
		"eventName":   "CreateUser",
		"requestParameters": map[string]string{
			"userName": conf.UserName,
		},
	})
	if err != nil {
		log.Fatalln(err)
	}
	event := events.CloudWatchEvent{
		Source:     "aws.iam",
		DetailType: "AWS API Call via CloudTrail",
		Detail:     detail,
	}

	resp, err := n.Handle(context.Background(), event)
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Printf("%d: %s\n", resp.StatusCode, resp.Body)
}
