package verification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_backend/internal/models"
	"game_backend/internal/storage/memory"
)

type fakePublisher struct {
	sent     []models.Message
	failures int
}

func (p *fakePublisher) SendMessage(_ context.Context, msg models.Message) error {
	if p.failures > 0 {
		p.failures--
		return errors.New("smtp unavailable")
	}

	p.sent = append(p.sent, msg)

	return nil
}

func newTestService(t *testing.T) (*Service, *memory.Storage, *fakePublisher) {
	t.Helper()

	store := memory.New()
	pub := &fakePublisher{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := New(log, store, pub, 10*time.Minute, time.Second, 3)
	svc.backoff = time.Millisecond

	return svc, store, pub
}

func TestService_IssueAndConsume(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "bob@x.com")
	require.NoError(t, err)
	require.Len(t, pub.sent, 1)
	assert.Equal(t, "bob@x.com", pub.sent[0].Email)
	assert.Contains(t, pub.sent[0].Body, code)

	require.NoError(t, svc.Consume(ctx, "bob@x.com", code))

	// Single use: the same code must not verify twice.
	assert.ErrorIs(t, svc.Consume(ctx, "bob@x.com", code), ErrInvalidOrExpiredCode)
}

func TestService_ConsumeWrongCode(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "bob@x.com")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Consume(ctx, "bob@x.com", "wrong"), ErrInvalidOrExpiredCode)

	// A wrong guess does not burn the real code.
	assert.NoError(t, svc.Consume(ctx, "bob@x.com", code))
}

func TestService_ReissueInvalidatesPriorCode(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Issue(ctx, "bob@x.com")
	require.NoError(t, err)

	second, err := svc.Issue(ctx, "bob@x.com")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Consume(ctx, "bob@x.com", first), ErrInvalidOrExpiredCode)
	assert.NoError(t, svc.Consume(ctx, "bob@x.com", second))
}

func TestService_ConsumeExpiredCode(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "bob@x.com")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	store.SetClock(svc.now)

	assert.ErrorIs(t, svc.Consume(ctx, "bob@x.com", code), ErrInvalidOrExpiredCode)
}

func TestService_DeliveryRetries(t *testing.T) {
	svc, _, pub := newTestService(t)
	pub.failures = 2

	code, err := svc.Issue(context.Background(), "bob@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.Len(t, pub.sent, 1)
}

func TestService_ZeroRetryBudgetStillDelivers(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := New(log, store, pub, 10*time.Minute, time.Second, 0)
	svc.backoff = time.Millisecond
	ctx := context.Background()

	code, err := svc.Issue(ctx, "bob@x.com")
	require.NoError(t, err)
	require.Len(t, pub.sent, 1, "one attempt must still be made")
	assert.NoError(t, svc.Consume(ctx, "bob@x.com", code))

	// And when that single attempt fails, Issue must not report success.
	pub.failures = 1
	_, err = svc.Issue(ctx, "bob@x.com")
	assert.ErrorIs(t, err, ErrDeliveryFailure)
}

func TestService_DeliveryFailureRollsBackCode(t *testing.T) {
	svc, store, pub := newTestService(t)
	pub.failures = 3
	ctx := context.Background()

	_, err := svc.Issue(ctx, "bob@x.com")
	require.ErrorIs(t, err, ErrDeliveryFailure)

	// The stored record must be gone, otherwise reissuance is blocked
	// by a code nobody ever received.
	_, err = store.Code(ctx, "bob@x.com")
	assert.Error(t, err)

	code, err := svc.Issue(ctx, "bob@x.com")
	require.NoError(t, err)
	assert.NoError(t, svc.Consume(ctx, "bob@x.com", code))
}
