package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverdueAt(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name        string
		isReceived  bool
		dueDate     time.Time
		wantOverdue bool
	}{
		{"active and past due", false, past, true},
		{"active and due right now", false, now, true},
		{"active and not yet due", false, future, false},
		{"received and past due", true, past, false},
		{"received and not yet due", true, future, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Reservation{IsReceived: tt.isReceived, DueDate: tt.dueDate}
			assert.Equal(t, tt.wantOverdue, r.OverdueAt(now))
		})
	}
}

func TestActive(t *testing.T) {
	assert.True(t, (&Reservation{}).Active())
	assert.False(t, (&Reservation{IsReceived: true}).Active())
}
