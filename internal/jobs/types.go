package jobs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/briangreenhill/weatherinsight/internal/weather"
)

const (
	TaskWarmCity = "weather:warm"
	QueueWarm    = "warm"
)

type WarmPayload struct {
	City  string        `json:"city"`
	Units weather.Units `json:"units"`
}

// NewWarmTask builds a task that refreshes the weather and insight cache
// entries for one city
func NewWarmTask(city string, units weather.Units) (*asynq.Task, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("warm task: city required")
	}
	if units == "" {
		units = weather.Metric
	}
	payload, err := json.Marshal(WarmPayload{City: city, Units: units})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWarmCity, payload), nil
}
