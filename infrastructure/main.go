package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/cloudwatch"
	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/iam"
	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/lambda"
	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/secretsmanager"
	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/sns"
	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/ssm"
	"github.com/pulumi/pulumi-random/sdk/v4/go/random"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

const (
	temp_password_secret_name = "IAMUsersTemporaryPassword"
	email_parameter_format    = "/IAM/Users/%s/Email"
	notifier_archive_path     = "../build/notifier.zip"
)

type User struct {
	Name  string
	Email string
}

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {

		//
		// Config Setup
		//

		conf := config.New(ctx, "")
		var users []User
		conf.RequireObject("users", &users)

		//
		// Users, group and policy
		//

		group, err := iam.NewGroup(ctx, "users", &iam.GroupArgs{
			Name: pulumi.String(fmt.Sprintf("%s-%s-users", ctx.Project(), ctx.Stack())),
		})
		if err != nil {
			log.Fatal(err)
		}

		groupPolicyJson, err := json.Marshal(map[string]interface{}{
			"Version": "2012-10-17",
			"Statement": []map[string]interface{}{
				{
					"Effect": "Allow",
					"Action": []string{
						"s3:ListAllMyBuckets",
						"s3:GetBucketLocation",
					},
					"Resource": "*",
				},
			},
		})
		if err != nil {
			log.Fatal(err)
		}
		groupPolicy, err := iam.NewPolicy(ctx, "users-base", &iam.PolicyArgs{
			Policy: pulumi.String(groupPolicyJson),
		})
		if err != nil {
			log.Fatal(err)
		}
		_, err = iam.NewGroupPolicyAttachment(ctx, "users-base", &iam.GroupPolicyAttachmentArgs{
			Group:     group.Name,
			PolicyArn: groupPolicy.Arn,
		})
		if err != nil {
			log.Fatal(err)
		}

		userNames := pulumi.StringArray{}
		for _, user := range users {
			tags := pulumi.StringMap{}
			if user.Email != "" {
				tags["Email"] = pulumi.String(user.Email)
			}
			created, err := iam.NewUser(ctx, user.Name, &iam.UserArgs{
				Name:         pulumi.String(user.Name),
				ForceDestroy: pulumi.Bool(true),
				Tags:         tags,
			})
			if err != nil {
				log.Fatal(err)
			}
			userNames = append(userNames, created.Name)

			// Parameter store fallback, read by the notifier when the tag is absent
			if user.Email != "" {
				_, err = ssm.NewParameter(ctx, fmt.Sprintf("%s-email", user.Name), &ssm.ParameterArgs{
					Name:  pulumi.String(fmt.Sprintf(email_parameter_format, user.Name)),
					Type:  pulumi.String("SecureString"),
					Value: pulumi.String(user.Email),
				})
				if err != nil {
					log.Fatal(err)
				}
			}
		}
		_, err = iam.NewGroupMembership(ctx, "users", &iam.GroupMembershipArgs{
			Group: group.Name,
			Users: userNames,
		})
		if err != nil {
			log.Fatal(err)
		}

		//
		// Shared temporary password
		//
		// One secret shared by every created user. A single disclosure exposes
		// all of them; accounts are short lived and rotate on first login.
		//

		tempPassword, err := random.NewRandomPassword(ctx, "temporary-password", &random.RandomPasswordArgs{
			Length:  pulumi.Int(20),
			Special: pulumi.Bool(true),
		})
		if err != nil {
			log.Fatal(err)
		}
		secret, err := secretsmanager.NewSecret(ctx, "temporary-password", &secretsmanager.SecretArgs{
			Name: pulumi.String(temp_password_secret_name),
		})
		if err != nil {
			log.Fatal(err)
		}
		_, err = secretsmanager.NewSecretVersion(ctx, "temporary-password", &secretsmanager.SecretVersionArgs{
			SecretId:     secret.ID(),
			SecretString: tempPassword.Result,
		})
		if err != nil {
			log.Fatal(err)
		}

		//
		// Alert topic
		//

		alertTopic, err := sns.NewTopic(ctx, "user-created-alerts", &sns.TopicArgs{})
		if err != nil {
			log.Fatal(err)
		}

		//
		// Notifier function
		//

		assumeRolePolicyJson, err := json.Marshal(map[string]interface{}{
			"Version": "2012-10-17",
			"Statement": []map[string]interface{}{
				{
					"Effect": "Allow",
					"Action": "sts:AssumeRole",
					"Principal": map[string]interface{}{
						"Service": "lambda.amazonaws.com",
					},
				},
			},
		})
		if err != nil {
			log.Fatal(err)
		}
		notifierRole, err := iam.NewRole(ctx, "notifier", &iam.RoleArgs{
			AssumeRolePolicy: pulumi.String(assumeRolePolicyJson),
		})
		if err != nil {
			log.Fatal(err)
		}
		notifierPolicyJson, err := json.Marshal(map[string]interface{}{
			"Version": "2012-10-17",
			"Statement": []map[string]interface{}{
				{
					"Effect": "Allow",
					"Action": []string{
						"iam:GetUser",
						"ssm:GetParameter",
						"secretsmanager:GetSecretValue",
						"sns:Publish",
					},
					"Resource": "*",
				},
			},
		})
		if err != nil {
			log.Fatal(err)
		}
		_, err = iam.NewRolePolicy(ctx, "notifier-reads", &iam.RolePolicyArgs{
			Role:   notifierRole.ID(),
			Policy: pulumi.String(notifierPolicyJson),
		})
		if err != nil {
			log.Fatal(err)
		}
		_, err = iam.NewRolePolicyAttachment(ctx, "notifier-logs", &iam.RolePolicyAttachmentArgs{
			Role:      notifierRole.Name,
			PolicyArn: pulumi.String("arn:aws:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole"),
		})
		if err != nil {
			log.Fatal(err)
		}
		notifier, err := lambda.NewFunction(ctx, "user-created-notifier", &lambda.FunctionArgs{
			Code:    pulumi.NewFileArchive(notifier_archive_path),
			Handler: pulumi.String("bootstrap"),
			Runtime: pulumi.String("provided.al2"),
			Role:    notifierRole.Arn,
			Timeout: pulumi.Int(60),
			Environment: &lambda.FunctionEnvironmentArgs{
				Variables: pulumi.StringMap{
					"USER_CREATED_ALERT_SNS_ARN": alertTopic.Arn,
				},
			},
		})
		if err != nil {
			log.Fatal(err)
		}

		//
		// CreateUser event wiring
		//

		eventPatternJson, err := json.Marshal(map[string]interface{}{
			"source":      []string{"aws.iam"},
			"detail-type": []string{"AWS API Call via CloudTrail"},
			"detail": map[string]interface{}{
				"eventSource": []string{"iam.amazonaws.com"},
				"eventName":   []string{"CreateUser"},
			},
		})
		if err != nil {
			log.Fatal(err)
		}
		createUserRule, err := cloudwatch.NewEventRule(ctx, "user-created", &cloudwatch.EventRuleArgs{
			EventPattern: pulumi.String(eventPatternJson),
		})
		if err != nil {
			log.Fatal(err)
		}
		_, err = cloudwatch.NewEventTarget(ctx, "user-created-notifier", &cloudwatch.EventTargetArgs{
			Rule: createUserRule.Name,
			Arn:  notifier.Arn,
		})
		if err != nil {
			log.Fatal(err)
		}
		_, err = lambda.NewPermission(ctx, "user-created-notifier", &lambda.PermissionArgs{
			Action:    pulumi.String("lambda:InvokeFunction"),
			Function:  notifier.Name,
			Principal: pulumi.String("events.amazonaws.com"),
			SourceArn: createUserRule.Arn,
		})
		if err != nil {
			log.Fatal(err)
		}

		ctx.Export("notifier-function", notifier.Name)
		ctx.Export("alert-topic-arn", alertTopic.Arn)
		return nil
	})
}
