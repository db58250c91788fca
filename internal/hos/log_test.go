package hos

import (
	"testing"

	"dispatchai-pro/internal/apperr"
	"dispatchai-pro/internal/models"
	"dispatchai-pro/internal/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededLog(t *testing.T) models.DailyLog {
	t.Helper()
	f, err := seed.Default()
	require.NoError(t, err)
	require.NotEmpty(t, f.DailyLogs)
	return f.DailyLogs[0]
}

func ev(id string, status models.DutyStatus, start, end string, duration int) models.ELDEvent {
	return models.ELDEvent{ID: id, Status: status, StartTime: start, EndTime: end, Duration: duration, Origin: models.EventOriginAuto}
}

func TestValidateLog_SeededLogPartitionsTheDay(t *testing.T) {
	assert.NoError(t, ValidateLog(seededLog(t)))
}

func TestValidateLog_ClosedDay(t *testing.T) {
	lg := models.DailyLog{ID: "L", Events: []models.ELDEvent{
		ev("E1", models.DutyOff, "00:00", "08:00", 480),
		ev("E2", models.DutyDriving, "08:00", "24:00", 960),
	}}
	assert.NoError(t, ValidateLog(lg))
}

func TestValidateLog_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		events []models.ELDEvent
		msg    string
	}{
		{"empty", nil, "no events"},
		{"late first start", []models.ELDEvent{
			ev("E1", models.DutyOff, "01:00", models.EndOngoing, 0),
		}, "expected 00:00"},
		{"gap", []models.ELDEvent{
			ev("E1", models.DutyOff, "00:00", "06:00", 360),
			ev("E2", models.DutyOnDuty, "06:30", models.EndOngoing, 0),
		}, "expected 06:00"},
		{"overlap", []models.ELDEvent{
			ev("E1", models.DutyOff, "00:00", "06:00", 360),
			ev("E2", models.DutyOnDuty, "05:00", models.EndOngoing, 0),
		}, "expected 06:00"},
		{"open event in the middle", []models.ELDEvent{
			ev("E1", models.DutyOff, "00:00", models.EndOngoing, 0),
			ev("E2", models.DutyOnDuty, "06:00", models.EndOngoing, 0),
		}, "not the final event"},
		{"duration mismatch", []models.ELDEvent{
			ev("E1", models.DutyOff, "00:00", "06:00", 300),
			ev("E2", models.DutyOnDuty, "06:00", models.EndOngoing, 0),
		}, "does not match"},
		{"closed day short of midnight", []models.ELDEvent{
			ev("E1", models.DutyOff, "00:00", "23:00", 1380),
		}, "expected 24:00"},
		{"unknown status", []models.ELDEvent{
			ev("E1", models.DutyStatus("YM"), "00:00", models.EndOngoing, 0),
		}, "unknown duty status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLog(models.DailyLog{ID: "L", Events: tt.events})
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestRecompute_SeededLogHasNoViolations(t *testing.T) {
	lg := seededLog(t)
	Recompute(&lg)
	assert.Empty(t, lg.Violations)
	assert.NotNil(t, lg.Violations)
	assert.Equal(t, 450, lg.MilesDriven, "miles kept when no event records them")
}

func TestRecompute_Violations(t *testing.T) {
	tests := []struct {
		name   string
		events []models.ELDEvent
		want   []string
	}{
		{
			name: "eleven hours of driving with breaks",
			events: []models.ELDEvent{
				ev("E1", models.DutyOff, "00:00", "04:00", 240),
				ev("E2", models.DutyDriving, "04:00", "10:00", 360),
				ev("E3", models.DutyOff, "10:00", "10:30", 30),
				ev("E4", models.DutyDriving, "10:30", "16:30", 360),
				ev("E5", models.DutyOff, "16:30", "24:00", 450),
			},
			want: []string{ViolationDrive11},
		},
		{
			name: "driving past the fourteen hour window",
			events: []models.ELDEvent{
				ev("E1", models.DutyOnDuty, "00:00", "02:00", 120),
				ev("E2", models.DutyOff, "02:00", "12:00", 600),
				ev("E3", models.DutyDriving, "12:00", "16:00", 240),
				ev("E4", models.DutyOff, "16:00", "24:00", 480),
			},
			want: []string{ViolationWindow14},
		},
		{
			name: "nine hours without a break",
			events: []models.ELDEvent{
				ev("E1", models.DutyOff, "00:00", "06:00", 360),
				ev("E2", models.DutyDriving, "06:00", "11:00", 300),
				ev("E3", models.DutyOnDuty, "11:00", "11:15", 15),
				ev("E4", models.DutyDriving, "11:15", "15:15", 240),
				ev("E5", models.DutyOff, "15:15", "24:00", 525),
			},
			want: []string{ViolationBreak30},
		},
		{
			name: "short stops add up to a break",
			events: []models.ELDEvent{
				ev("E1", models.DutyOff, "00:00", "06:00", 360),
				ev("E2", models.DutyDriving, "06:00", "11:00", 300),
				ev("E3", models.DutyOnDuty, "11:00", "11:15", 15),
				ev("E4", models.DutyOff, "11:15", "11:30", 15),
				ev("E5", models.DutyDriving, "11:30", "15:30", 240),
				ev("E6", models.DutyOff, "15:30", "24:00", 510),
			},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg := models.DailyLog{Events: tt.events, Violations: []string{"stale"}}
			require.NoError(t, ValidateLog(lg))
			Recompute(&lg)
			assert.Equal(t, tt.want, lg.Violations)
		})
	}
}

func TestRecompute_MilesFromEvents(t *testing.T) {
	lg := seededLog(t)
	m1, m2 := 200, 75
	lg.Events[2].Miles = &m1
	lg.Events[4].Miles = &m2

	Recompute(&lg)
	assert.Equal(t, 275, lg.MilesDriven)
}
