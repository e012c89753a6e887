package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindStepsAPI/internal/badge"
	"mindStepsAPI/internal/logger"
	"mindStepsAPI/internal/notification"
)

type memDevices struct {
	tokens map[uuid.UUID][]notification.DeviceToken
	err    error
}

func (m *memDevices) DeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tokens[userID], nil
}

func (m *memDevices) PruneStaleDevices(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type sentPush struct {
	tokens []notification.DeviceToken
	title  string
	data   map[string]string
}

type capturePush struct {
	mu   sync.Mutex
	sent chan sentPush
}

func newCapturePush() *capturePush {
	return &capturePush{sent: make(chan sentPush, 10)}
}

func (c *capturePush) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent <- sentPush{tokens: tokens, title: title, data: data}
	return nil
}

func waitForPush(t *testing.T, c *capturePush) sentPush {
	t.Helper()
	select {
	case p := <-c.sent:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("push was not delivered")
	}
	return sentPush{}
}

func TestDispatcherDeliversBadgePush(t *testing.T) {
	userID := uuid.New()
	devices := &memDevices{tokens: map[uuid.UUID][]notification.DeviceToken{
		userID: {{UserID: userID, Token: "device-token-1", Platform: "ios"}},
	}}
	push := newCapturePush()

	d := NewNotificationDispatcher(devices, 2, logger.Nop())
	defer d.Stop()
	d.SetPushProvider(push)

	d.NotifyBadgesEarned(context.Background(), userID, []badge.Badge{
		{ID: "first_check_in", Name: "First Check-In", Rarity: badge.RarityCommon},
	})

	got := waitForPush(t, push)
	require.Len(t, got.tokens, 1)
	assert.Equal(t, "device-token-1", got.tokens[0].Token)
	assert.Equal(t, "Badge unlocked: First Check-In", got.title)
	assert.Equal(t, "first_check_in", got.data["badge_id"])
	assert.Equal(t, "badge_earned", got.data["type"])
}

func TestDispatcherSkipsUsersWithoutDevices(t *testing.T) {
	push := newCapturePush()
	d := NewNotificationDispatcher(&memDevices{}, 1, logger.Nop())
	defer d.Stop()
	d.SetPushProvider(push)

	assert.True(t, d.Dispatch(context.Background(), notification.Message{UserID: uuid.New(), Title: "hi"}))

	select {
	case <-push.sent:
		t.Fatal("push sent to a user with no devices")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherSurvivesDeviceStoreFailure(t *testing.T) {
	userID := uuid.New()
	devices := &memDevices{err: errors.New("db unavailable")}
	push := newCapturePush()
	d := NewNotificationDispatcher(devices, 1, logger.Nop())
	defer d.Stop()
	d.SetPushProvider(push)

	assert.True(t, d.Dispatch(context.Background(), notification.Message{UserID: userID}))

	devices2 := &memDevices{tokens: map[uuid.UUID][]notification.DeviceToken{userID: {{Token: "t"}}}}
	d2 := NewNotificationDispatcher(devices2, 1, logger.Nop())
	defer d2.Stop()
	d2.SetPushProvider(push)
	assert.True(t, d2.Dispatch(context.Background(), notification.Message{UserID: userID, Title: "after"}))
	assert.Equal(t, "after", waitForPush(t, push).title)
}

func TestDispatchAfterStopIsRejected(t *testing.T) {
	d := NewNotificationDispatcher(&memDevices{}, 1, logger.Nop())
	d.Stop()
	d.Stop()

	assert.False(t, d.Dispatch(context.Background(), notification.Message{UserID: uuid.New()}))
}

func TestNormalizeDevice(t *testing.T) {
	userID := uuid.New()
	tests := []struct {
		name     string
		req      notification.RegisterDeviceRequest
		platform string
		wantErr  bool
	}{
		{"defaults to android", notification.RegisterDeviceRequest{Token: " abc "}, "android", false},
		{"lowercases platform", notification.RegisterDeviceRequest{Token: "abc", Platform: "iOS"}, "ios", false},
		{"missing token", notification.RegisterDeviceRequest{Platform: "ios"}, "", true},
		{"unknown platform", notification.RegisterDeviceRequest{Token: "abc", Platform: "fax"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeDevice(userID, tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDevice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "abc", got.Token)
			assert.Equal(t, tt.platform, got.Platform)
			assert.Equal(t, userID, got.UserID)
		})
	}
}
