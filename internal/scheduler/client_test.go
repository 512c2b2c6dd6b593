package scheduler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testConfig struct {
	redisURL string
}

func (c testConfig) GetRedisURL() string       { return c.redisURL }
func (c testConfig) GetAsynqQueueName() string { return "taller" }
func (c testConfig) GetAsynqConcurrency() int  { return 1 }

func newTestClient(t *testing.T) (*Client, testConfig) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := testConfig{redisURL: "redis://" + mr.Addr()}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return client, cfg
}

func listScheduled(t *testing.T, cfg testConfig) []*asynq.TaskInfo {
	t.Helper()

	opt, err := redisClientOpt(cfg)
	if err != nil {
		t.Fatalf("redisClientOpt: %v", err)
	}
	inspector := asynq.NewInspector(opt)
	defer inspector.Close()

	tasks, err := inspector.ListScheduledTasks("taller")
	if err != nil {
		t.Fatalf("ListScheduledTasks: %v", err)
	}
	return tasks
}

func TestClient_ScheduleFollowUp(t *testing.T) {
	client, cfg := newTestClient(t)

	oportunidadID := uuid.New()
	runAt := time.Now().Add(48 * time.Hour)

	if err := client.ScheduleFollowUp(context.Background(), oportunidadID, runAt); err != nil {
		t.Fatalf("ScheduleFollowUp: %v", err)
	}

	tasks := listScheduled(t, cfg)
	if len(tasks) != 1 {
		t.Fatalf("scheduled tasks = %d, want 1", len(tasks))
	}
	if tasks[0].Type != TaskSeguimientoDue {
		t.Errorf("task type = %q, want %q", tasks[0].Type, TaskSeguimientoDue)
	}

	var payload SeguimientoDuePayload
	if err := json.Unmarshal(tasks[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.OportunidadID != oportunidadID.String() {
		t.Errorf("payload oportunidad id = %q, want %q", payload.OportunidadID, oportunidadID)
	}
}

func TestClient_ScheduleFollowUp_SameDayIsIdempotent(t *testing.T) {
	client, cfg := newTestClient(t)

	oportunidadID := uuid.New()
	runAt := time.Now().Add(48 * time.Hour)

	for i := 0; i < 3; i++ {
		if err := client.ScheduleFollowUp(context.Background(), oportunidadID, runAt); err != nil {
			t.Fatalf("ScheduleFollowUp #%d: %v", i+1, err)
		}
	}

	if tasks := listScheduled(t, cfg); len(tasks) != 1 {
		t.Fatalf("scheduled tasks = %d, want 1", len(tasks))
	}
}

func TestParseSeguimientoDuePayload_RejectsGarbage(t *testing.T) {
	task := asynq.NewTask(TaskSeguimientoDue, []byte("not json"))
	if _, err := ParseSeguimientoDuePayload(task); err == nil {
		t.Fatal("expected an error for a malformed payload")
	}
}
