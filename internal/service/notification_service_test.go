package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/pkg/notify"
)

type sinkStub struct {
	mu       sync.Mutex
	fail     int
	attempts int
	sent     []notify.Message
}

func (s *sinkStub) Name() string { return "stub" }

func (s *sinkStub) Send(_ context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.attempts <= s.fail {
		return errors.New("smtp timeout")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *sinkStub) snapshot() (int, []notify.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts, append([]notify.Message(nil), s.sent...)
}

type outcomeCounter struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *outcomeCounter) RecordNotification(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = make(map[string]int)
	}
	c.outcomes[outcome]++
}

func (c *outcomeCounter) count(outcome string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcomes[outcome]
}

func TestNotificationServiceDeliversAsync(t *testing.T) {
	sink := &sinkStub{fail: 1}
	counter := &outcomeCounter{}
	svc := NewNotificationService(sink, NotificationConfig{Workers: 1, Retries: 2, RetryDelay: time.Millisecond}, counter, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Notify(context.Background(), models.NotificationEvent{
		Kind:      models.NotificationTrainerAbsent,
		Message:   "Trainer t-1 was absent",
		TrainerID: "t-1",
	})

	require.Eventually(t, func() bool {
		return counter.count("delivered") == 1
	}, time.Second, 5*time.Millisecond)

	attempts, sent := sink.snapshot()
	assert.Equal(t, 2, attempts)
	assert.Equal(t, "TRAINER_ABSENT", sent[0].Kind)
	assert.Equal(t, "Trainer absent from class", sent[0].Subject)
	assert.Equal(t, 1, counter.count("failed"))
	assert.Equal(t, 1, counter.count("delivered"))
}

type stallingSink struct {
	once    sync.Once
	started chan struct{}
}

func (s *stallingSink) Name() string { return "stalling" }

func (s *stallingSink) Send(ctx context.Context, _ notify.Message) error {
	s.once.Do(func() { close(s.started) })
	<-ctx.Done()
	return ctx.Err()
}

func TestNotificationServiceCountsAlertsDiscardedOnStop(t *testing.T) {
	sink := &stallingSink{started: make(chan struct{})}
	counter := &outcomeCounter{}
	svc := NewNotificationService(sink, NotificationConfig{Workers: 1, BufferSize: 4}, counter, nil)
	svc.Start(context.Background())

	event := models.NotificationEvent{Kind: models.NotificationAbsence, StudentID: "s-1"}
	svc.Notify(context.Background(), event)
	<-sink.started
	svc.Notify(context.Background(), event)
	svc.Notify(context.Background(), event)

	svc.Stop()
	assert.Equal(t, 2, counter.count("dropped"))
}

func TestNotificationServiceNeverBlocksCaller(t *testing.T) {
	counter := &outcomeCounter{}
	svc := NewNotificationService(&sinkStub{}, NotificationConfig{Workers: 1}, counter, nil)

	// not started: the event is dropped without error
	svc.Notify(context.Background(), models.NotificationEvent{Kind: models.NotificationAbsence})
	assert.Equal(t, 1, counter.count("dropped"))

	noSinks := NewNotificationService(nil, NotificationConfig{}, counter, nil)
	noSinks.Notify(context.Background(), models.NotificationEvent{Kind: models.NotificationAbsence})
	assert.Equal(t, 2, counter.count("dropped"))
}

func TestNotificationFailureDoesNotFailAttendanceUpdate(t *testing.T) {
	sink := &sinkStub{fail: 100}
	notifier := NewNotificationService(sink, NotificationConfig{Workers: 1, Retries: 1, RetryDelay: time.Millisecond}, nil, nil)
	notifier.Start(context.Background())
	defer notifier.Stop()

	f := newAttendanceFixture()
	f.svc.notifier = notifier
	rec := f.mark(t, models.AttendanceStatusPresent)

	updated, err := f.svc.ChangeStatus(context.Background(), rec.ID, models.AttendanceStatusTrainerAbsent, adminActor)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusTrainerAbsent, updated.Status)

	require.Eventually(t, func() bool {
		attempts, _ := sink.snapshot()
		return attempts == 2
	}, time.Second, 5*time.Millisecond)
}
