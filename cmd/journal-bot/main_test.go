package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestReportInvalidPeriod(t *testing.T) {
	_, err := execute(t, "report", "--period", "year")
	assert.Error(t, err)
}

func TestReportPrintEmpty(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", filepath.Join(dir, "journal.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("TIMEZONE", "Asia/Seoul")

	out, err := execute(t, "--env", filepath.Join(dir, "none.env"), "report", "--period", "month", "--print")
	require.NoError(t, err)

	assert.Contains(t, out, "MONTH report")
	assert.Contains(t, out, "No records for this period.")
}

func TestReportPublishRequiresToken(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	require.NoError(t, os.Unsetenv("TELEGRAM_BOT_TOKEN"))
	t.Setenv("DB_DSN", filepath.Join(dir, "journal.db"))

	_, err := execute(t, "--env", filepath.Join(dir, "none.env"), "report")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}
