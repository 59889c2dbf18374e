package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type testConfig struct {
	redisURL string
}

func (c testConfig) GetRedisURL() string       { return c.redisURL }
func (c testConfig) GetRedisTLSInsecure() bool { return false }
func (c testConfig) GetAsynqQueueName() string { return "reminders" }
func (c testConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testConfig{}); err == nil {
		t.Fatal("expected an error without a redis url")
	}
}

func TestScheduleFollowUpReminderEnqueues(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	err = client.ScheduleFollowUpReminder(context.Background(), uuid.New(), uuid.New(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ScheduleFollowUpReminder() error = %v", err)
	}

	if len(mr.Keys()) == 0 {
		t.Error("expected the scheduled task to be written to redis")
	}
}

func TestFollowUpReminderPayloadRoundTrip(t *testing.T) {
	want := FollowUpReminderPayload{
		FollowUpID: uuid.NewString(),
		LeadID:     uuid.NewString(),
	}

	task, err := NewFollowUpReminderTask(want)
	if err != nil {
		t.Fatalf("NewFollowUpReminderTask() error = %v", err)
	}
	if task.Type() != TaskFollowUpReminder {
		t.Errorf("task type = %q, want %q", task.Type(), TaskFollowUpReminder)
	}

	got, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		t.Fatalf("ParseFollowUpReminderPayload() error = %v", err)
	}
	if got != want {
		t.Errorf("payload = %+v, want %+v", got, want)
	}
}
