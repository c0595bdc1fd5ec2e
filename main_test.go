package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := fmt.Sprintf(`{
  "athlete": {"id": "ath-1", "ftp_watts": 250},
  "storage": {"db_path": %q},
  "logging": {"level": "error"}
}`, filepath.Join(dir, "data.db"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func runCLI(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, cfgPath, args...)
	require.NoError(t, err, "args: %v", args)
	return out
}

func TestWellnessAndReadiness(t *testing.T) {
	cfg := writeConfig(t)

	out := mustRun(t, cfg, "wellness", "--date", "2026-03-02",
		"--hrv", "50", "--rhr", "60", "--sleep-hours", "8", "--sleep-quality", "10",
		"--fatigue", "3", "--stress", "3", "--sleep-score", "8", "--motivation", "8", "--soreness", "2")
	assert.Contains(t, out, "Readiness 2026-03-02:")

	out = mustRun(t, cfg, "readiness", "--date", "2026-03-02")
	assert.Contains(t, out, "Readiness 2026-03-02:")
	assert.Contains(t, out, "Trends over 7 days")
}

func TestWellnessRequiresInput(t *testing.T) {
	_, err := runCLI(t, writeConfig(t), "wellness", "--date", "2026-03-02")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to submit")
}

func TestReadinessWithoutCheckIn(t *testing.T) {
	_, err := runCLI(t, writeConfig(t), "readiness", "--date", "2026-03-02")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no check-in on 2026-03-02")
}

func TestBadDate(t *testing.T) {
	_, err := runCLI(t, writeConfig(t), "readiness", "--date", "03/02/2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestLoadAdd(t *testing.T) {
	cfg := writeConfig(t)

	out := mustRun(t, cfg, "load", "add", "--date", "2026-03-01", "--tss", "100", "--minutes", "60")
	// CTL 100/42, ATL 100/7
	assert.Contains(t, out, "2026-03-01")
	assert.Contains(t, out, "2.4")
	assert.Contains(t, out, "14.3")
	assert.Contains(t, out, "-11.9")

	out = mustRun(t, cfg, "load", "show", "--from", "2026-03-01", "--to", "2026-03-02")
	assert.Contains(t, out, "2026-03-01")
	assert.Contains(t, out, "2026-03-02")
}

func TestGuardrailCheckOverrideAudit(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "wellness", "--date", "2026-03-02",
		"--fatigue", "8", "--stress", "4", "--sleep-score", "6", "--motivation", "5", "--soreness", "3")

	out := mustRun(t, cfg, "guardrail", "check", "--date", "2026-03-02", "--type", "INTERVALS")
	assert.Contains(t, out, "BLOCKED [SG-FATIGUE-001]")

	_, err := runCLI(t, cfg, "guardrail", "override", "--date", "2026-03-02", "--type", "INTERVALS")
	require.Error(t, err)

	out = mustRun(t, cfg, "guardrail", "override", "--date", "2026-03-02", "--type", "INTERVALS",
		"--admin", "coach-anna", "--justification", "race simulation")
	assert.Contains(t, out, "GUARDRAIL OVERRIDE: SG-FATIGUE-001")

	out = mustRun(t, cfg, "guardrail", "audit")
	assert.Contains(t, out, "BLOCKED")
	assert.Contains(t, out, "OVERRIDDEN")
	assert.Contains(t, out, "coach-anna")
	assert.Contains(t, out, "race simulation")
}

func TestThresholdsSetAndShow(t *testing.T) {
	cfg := writeConfig(t)

	out := mustRun(t, cfg, "thresholds", "set", "--ftp", "250", "--test", "field_ramp", "--date", "2026-03-01")
	assert.Contains(t, out, "LT1 205 W, LT2 250 W (FIELD_PROXY, confidence 0.85)")

	out = mustRun(t, cfg, "thresholds", "show")
	assert.Contains(t, out, "Z1 up to 205 W, Z2 up to 250 W, Z3 up to 410 W")
	assert.Contains(t, out, "Z1  0-205 W")
}

func TestThresholdsShowEmpty(t *testing.T) {
	_, err := runCLI(t, writeConfig(t), "thresholds", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no thresholds recorded")
}

func TestPlanAndCompliance(t *testing.T) {
	cfg := writeConfig(t)

	out := mustRun(t, cfg, "plan", "add", "--id", "w-1", "--date", "2026-03-02", "--type", "intervals",
		"--minutes", "60", "--z1", "70", "--z2", "10", "--z3", "20")
	assert.Contains(t, out, "Planned w-1 INTERVALS on 2026-03-02")

	out = mustRun(t, cfg, "plan", "list", "--from", "2026-03-02", "--to", "2026-03-02")
	assert.Contains(t, out, "INTERVALS")
	assert.Contains(t, out, "w-1")

	out = mustRun(t, cfg, "compliance", "--from", "2026-03-02", "--to", "2026-03-08")
	assert.Contains(t, out, "Compliance 2026-03-02 to 2026-03-08")
	assert.Contains(t, out, "MISSED_KEY_SESSION")
}

func TestReportUsesFallbackWithoutCoach(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "wellness", "--date", "2026-03-02", "--hrv", "48", "--rhr", "58")

	out := mustRun(t, cfg, "report", "--from", "2026-03-02", "--to", "2026-03-08")
	assert.Contains(t, out, "Report for ath-1")
	assert.Contains(t, out, "Coach: AI recommendations temporarily unavailable.")
}

func TestAthleteOverride(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "--athlete", "ath-2", "wellness", "--date", "2026-03-02", "--hrv", "50")

	_, err := runCLI(t, cfg, "readiness", "--date", "2026-03-02")
	require.Error(t, err)
	out := mustRun(t, cfg, "--athlete", "ath-2", "readiness", "--date", "2026-03-02")
	assert.Contains(t, out, "Readiness 2026-03-02:")
}

func TestImportFitMissingFile(t *testing.T) {
	_, err := runCLI(t, writeConfig(t), "import-fit", filepath.Join(t.TempDir(), "missing.fit"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.fit")
}

func TestTeardownStopsMetricsAndJoinsErrors(t *testing.T) {
	a := &app{metricsAddr: "127.0.0.1:0", log: zerolog.Nop()}
	a.serveMetrics(prometheus.NewRegistry())
	require.NotNil(t, a.metricsServer)

	errStore := errors.New("store close failed")
	errCache := errors.New("cache close failed")
	a.closers = []func() error{
		func() error { return errStore },
		func() error { return nil },
		func() error { return errCache },
	}

	err := a.teardown()
	require.Error(t, err)
	assert.ErrorIs(t, err, errStore)
	assert.ErrorIs(t, err, errCache)
	assert.Nil(t, a.metricsServer)
	assert.Empty(t, a.closers)

	assert.NoError(t, a.teardown())
}
