package notification_log

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kisancoop/dairyops/internal/models"
)

func TestOutcomeStatus(t *testing.T) {
	require.Equal(t, models.WebhookEventLogStatusHandled, outcomeStatus(nil))
	require.Equal(t, models.WebhookEventLogStatusHandleFailed, outcomeStatus(errors.New("row locked")))
}

func TestSave_NilEventIgnored(t *testing.T) {
	s := New(nil, zap.NewNop().Sugar())
	require.NotPanics(t, func() { s.Save(context.Background(), nil) })
}
