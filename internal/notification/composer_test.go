package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderInterviewInvite(t *testing.T) {
	msg, err := RenderInterviewInvite("Jane Citizen", "https://calendly.example/jane", "Alex Admin")
	require.NoError(t, err)

	assert.Equal(t, "Interview invitation", msg.Subject)
	assert.Contains(t, msg.Body, "Dear Dr Jane Citizen")
	assert.Contains(t, msg.Body, "https://calendly.example/jane")
	assert.Contains(t, msg.Body, "Alex Admin")
}

func TestRenderTemporaryCredential(t *testing.T) {
	msg, err := RenderTemporaryCredential("Xy7kQmT2nRp4")
	require.NoError(t, err)

	assert.Equal(t, "Confirm your email address", msg.Subject)
	assert.Contains(t, msg.Body, "Xy7kQmT2nRp4")
	assert.Contains(t, msg.Body, "only be used once")
}

func TestRenderDecisionWithReason(t *testing.T) {
	msg, err := RenderDecision("Jane Citizen", "Your application has been approved.", "Welcome aboard")
	require.NoError(t, err)

	assert.Contains(t, msg.Body, "Your application has been approved.")
	assert.Contains(t, msg.Body, "Notes from our team:")
	assert.Contains(t, msg.Body, "Welcome aboard")
}

func TestRenderDecisionWithoutReason(t *testing.T) {
	msg, err := RenderDecision("Jane Citizen", "Your application has been rejected.", "")
	require.NoError(t, err)

	assert.NotContains(t, msg.Body, "Notes from our team:")
}
