package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dispatchai-pro/internal/apperr"
	"dispatchai-pro/internal/dispatch"
	"dispatchai-pro/internal/hos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRank_Text(t *testing.T) {
	out, err := execute(t, "rank", "L-5002")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Atlanta, GA -> Miami, FL")
	assert.Contains(t, lines[2], "D-104")
	assert.Contains(t, lines[2], "100")
	assert.Contains(t, lines[3], "D-101")
}

func TestRank_JSONFlagsHazmatDisqualification(t *testing.T) {
	// L-5003 carries class 3 hazmat; only endorsed drivers are eligible
	out, err := execute(t, "--format", "json", "rank", "L-5003")
	require.NoError(t, err)

	var candidates []dispatch.Candidate
	require.NoError(t, json.Unmarshal([]byte(out), &candidates))
	require.Len(t, candidates, 2)
	assert.Equal(t, "D-101", candidates[0].Driver.ID)
	assert.True(t, candidates[0].Eligible)
	assert.Equal(t, "D-104", candidates[1].Driver.ID)
	assert.False(t, candidates[1].Eligible)
	assert.Equal(t, 0, candidates[1].Score)
	assert.NotEmpty(t, candidates[1].Reason)
}

func TestRank_UnknownLoad(t *testing.T) {
	_, err := execute(t, "rank", "L-9999")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGrid_Text(t *testing.T) {
	out, err := execute(t, "grid", "LOG-20231026-D102")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "driver D-102")
	assert.True(t, strings.HasPrefix(lines[1], "OFF |"))
	assert.True(t, strings.HasPrefix(lines[3], "D   |"))

	// 00:00-06:00 off duty fills the first quarter of the day
	off := strings.TrimPrefix(lines[1], "OFF |")
	assert.Equal(t, strings.Repeat("#", 24), off[:24])
	assert.Equal(t, byte(' '), off[24])
}

func TestGrid_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "grid", "LOG-20231026-D102")
	require.NoError(t, err)

	var grid hos.DutyGrid
	require.NoError(t, json.Unmarshal([]byte(out), &grid))
	assert.Equal(t, "D-102", grid.DriverID)
	require.Len(t, grid.Lanes, 4)
}

func TestGrid_UnknownLog(t *testing.T) {
	_, err := execute(t, "grid", "LOG-NOPE")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestValidate_EmbeddedFixture(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Fixture valid")
}

func TestValidate_ReportsBrokenPartition(t *testing.T) {
	path := writeFixture(t, `
drivers:
  - id: D-1
    name: Test Driver
    status: Available
    hos: { status: "OFF", drive_time_remaining: 600, on_duty_remaining: 700, cycle_remaining: 3000 }
daily_logs:
  - id: LOG-1
    driver_id: D-1
    date: "2023-10-26"
    events:
      - { id: E1, status: "OFF", start_time: "00:00", end_time: "06:00", duration: 360 }
      - { id: E2, status: "D", start_time: "07:00", end_time: "Now", duration: 0 }
`)

	out, err := execute(t, "--fixture", path, "--format", "json", "validate")
	require.Error(t, err)

	var result ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "LOG-1")
}

func TestValidate_UnreadableFixture(t *testing.T) {
	out, err := execute(t, "--fixture", filepath.Join(t.TempDir(), "missing.yaml"), "validate")
	require.Error(t, err)
	assert.Contains(t, out, "✗")
}
