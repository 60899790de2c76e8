// internal/common/aws/aws_test.go
package aws

import (
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextEmail(t *testing.T) {
	input := TextEmail("risk@bank.test", "review@bank.test", "HIGH RISK", "body")

	assert.Equal(t, "risk@bank.test", awssdk.ToString(input.Source))
	assert.Equal(t, []string{"review@bank.test"}, input.Destination.ToAddresses)
	assert.Equal(t, "HIGH RISK", awssdk.ToString(input.Message.Subject.Data))
	assert.Equal(t, "body", awssdk.ToString(input.Message.Body.Text.Data))
	assert.Nil(t, input.Message.Body.Html)
}

func TestTopicMessage(t *testing.T) {
	input := TopicMessage("arn:aws:sns:eu-west-1:000000000000:risk-review", "subject", "msg",
		map[string]string{"verdict": "HIGH_RISK"})

	assert.Equal(t, "arn:aws:sns:eu-west-1:000000000000:risk-review", awssdk.ToString(input.TopicArn))
	require.Contains(t, input.MessageAttributes, "verdict")
	assert.Equal(t, "String", awssdk.ToString(input.MessageAttributes["verdict"].DataType))
	assert.Equal(t, "HIGH_RISK", awssdk.ToString(input.MessageAttributes["verdict"].StringValue))

	bare := TopicMessage("arn", "s", "m", nil)
	assert.Nil(t, bare.MessageAttributes)
}
