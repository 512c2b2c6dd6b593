// Package scheduler schedules and processes opportunity follow-up reminders
// through asynq.
package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskSeguimientoDue = "oportunidades.seguimiento.due"

type SeguimientoDuePayload struct {
	OportunidadID string `json:"oportunidadId"`
}

func NewSeguimientoDueTask(payload SeguimientoDuePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSeguimientoDue, data), nil
}

func ParseSeguimientoDuePayload(task *asynq.Task) (SeguimientoDuePayload, error) {
	var payload SeguimientoDuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SeguimientoDuePayload{}, err
	}
	return payload, nil
}

// seguimientoTaskID dedupes the scheduled enqueue and the sweeper enqueue for
// the same opportunity and day.
func seguimientoTaskID(oportunidadID string, on time.Time) string {
	return "seguimiento:" + oportunidadID + ":" + on.Format("2006-01-02")
}
