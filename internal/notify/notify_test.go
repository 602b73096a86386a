package notify

import (
	"testing"

	"github.com/kisumu-dev/referral-dispatch/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestSMTPNotifier_Unconfigured(t *testing.T) {
	n := NewSMTPNotifier(config.Config{})
	err := n.Notify("ops@jootrh.go.ke", "test", "body")
	assert.Error(t, err)
}

func TestLogNotifier_AlwaysSucceeds(t *testing.T) {
	var n LogNotifier
	assert.NoError(t, n.Notify("ops@jootrh.go.ke", "test", "body"))
}
