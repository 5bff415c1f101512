package notifier

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserNameFromDetail(t *testing.T) {

	// Test full CloudTrail detail with extra fields
	detail := json.RawMessage(`{
		"eventSource": "iam.amazonaws.com",
		"eventName": "CreateUser",
		"awsRegion": "us-west-2",
		"requestParameters": {"userName": "s3-user", "path": "/"},
		"responseElements": {"user": {"arn": "arn:aws:iam::123456789012:user/s3-user"}}
	}`)
	assert.EqualValues(t, "s3-user", userNameFromDetail(detail))

	// Test missing requestParameters
	assert.EqualValues(t, "", userNameFromDetail(json.RawMessage(`{"eventName": "CreateUser"}`)))

	// Test empty userName
	assert.EqualValues(t, "", userNameFromDetail(json.RawMessage(`{"requestParameters": {"userName": ""}}`)))

	// Test invalid JSON
	assert.EqualValues(t, "", userNameFromDetail(json.RawMessage(`{`)))
	assert.EqualValues(t, "", userNameFromDetail(nil))
}
