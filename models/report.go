// ABOUTME: Report history entity
// ABOUTME: One row per generated timesheet
package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is a persisted timesheet generation run.
type Report struct {
	ID              uuid.UUID `json:"id"`
	RunID           string    `json:"run_id"`
	FromDay         string    `json:"from_day"`
	ToDay           string    `json:"to_day"`
	Mode            string    `json:"mode"`
	GapDays         int       `json:"gap_days"`
	DistributedDays int       `json:"distributed_days"`
	Body            string    `json:"body"`
	CreatedAt       time.Time `json:"created_at"`
}
