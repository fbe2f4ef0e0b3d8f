package model

import (
	"fmt"
	"time"
)

// Reminder fires at a specific UTC instant, optionally repeating (spec §3.2).
type Reminder struct {
	ID             string         `json:"id"`
	Message        string         `json:"message"`
	TriggerAt      time.Time      `json:"trigger_at"`
	Priority       Priority       `json:"priority"`
	Status         ReminderStatus `json:"status"`
	RepeatInterval *time.Duration `json:"repeat_interval,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	Timestamps
}

// NewReminder constructs a Reminder defaulting Status to Pending (spec §3.2).
func NewReminder(message string, triggerAt time.Time, priority Priority, now time.Time) (*Reminder, error) {
	if message == "" {
		return nil, fmt.Errorf("reminder message must be non-empty")
	}
	return &Reminder{
		ID:         NewID(),
		Message:    message,
		TriggerAt:  triggerAt.UTC(),
		Priority:   priority,
		Status:     ReminderStatusPending,
		Timestamps: NewTimestamps(now),
	}, nil
}

// IsDue reports whether the reminder's trigger instant has passed and it is
// still Pending.
func (r *Reminder) IsDue(now time.Time) bool {
	return r.Status == ReminderStatusPending && !now.UTC().Before(r.TriggerAt)
}

// Activate transitions Pending -> Active. It does not schedule the next
// occurrence of a repeating reminder; Reschedule does that.
func (r *Reminder) Activate(now time.Time) {
	r.Status = ReminderStatusActive
	r.Touch(now)
}

// Reschedule advances TriggerAt by RepeatInterval and returns to Pending,
// used by repeating reminders once acknowledged.
func (r *Reminder) Reschedule(now time.Time) bool {
	if r.RepeatInterval == nil {
		return false
	}
	r.TriggerAt = r.TriggerAt.Add(*r.RepeatInterval)
	r.Status = ReminderStatusPending
	r.Touch(now)
	return true
}
