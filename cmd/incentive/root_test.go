package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/incentive-engine/api"
	"github.com/warp/incentive-engine/config"
	"github.com/warp/incentive-engine/incentive"
	"github.com/warp/incentive-engine/store"
)

var fixedTime = time.Date(2026, 3, 31, 18, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store: config.StoreConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "data", "incentive.db")},
		Log:   config.LogConfig{Level: "info", Format: "json"},
	}
}

func writeScenarioFile(t *testing.T, id string) string {
	t.Helper()
	s, err := api.BuildScenario(nil, id)
	require.NoError(t, err)
	data, err := json.Marshal(s)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "payouts", "sanitize", "scenario", "snapshots"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "incentive", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestCommandFlags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)

	flag = payoutsCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "table", flag.DefValue)

	for _, name := range []string{"in", "out"} {
		flag := sanitizeCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "sanitize should have --%s flag", name)
		assert.Equal(t, "-", flag.DefValue)
	}

	assert.NotNil(t, scenarioCmd.Flags().Lookup("load"))
	assert.NotNil(t, snapshotsCreateCmd.Flags().Lookup("label"))
}

func TestOpenStore(t *testing.T) {
	c := testConfig(t)

	st, err := openStore(c, nil)
	require.NoError(t, err)
	require.NoError(t, st.Close())
	assert.FileExists(t, c.Store.Path)

	c.Store.Driver = "memory"
	st, err = openStore(c, nil)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	c.Store.Driver = "postgres"
	_, err = openStore(c, nil)
	assert.Error(t, err)
}

func TestLoadDefaults_AppliesEngineConfig(t *testing.T) {
	c := testConfig(t)
	capPct := 100.0
	c.Engine.CapPct = &capPct

	d, err := loadDefaults(c)
	require.NoError(t, err)
	assert.Equal(t, 100.0, d.Settings.CapPct)

	c.Engine.PresetsPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = loadDefaults(c)
	assert.Error(t, err)
}

func TestReadState(t *testing.T) {
	c := testConfig(t)

	t.Run("from file", func(t *testing.T) {
		s, err := readState(context.Background(), c, writeScenarioFile(t, "all-pillars"))
		require.NoError(t, err)
		require.Len(t, s.Employees, 1)
	})

	t.Run("from empty store", func(t *testing.T) {
		s, err := readState(context.Background(), c, "")
		require.NoError(t, err)
		assert.Empty(t, s.Employees)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readState(context.Background(), c, filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}

func TestWritePayoutTable(t *testing.T) {
	s, err := api.BuildScenario(nil, "override-capped")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writePayoutTable(&buf, s))

	out := buf.String()
	assert.Contains(t, out, "PAYOUT")
	assert.Contains(t, out, "emp-001")
	assert.Contains(t, out, "7200.00")
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "TOTAL")

	buf.Reset()
	require.NoError(t, writePayoutTable(&buf, incentive.StandardDefaults().State()))
	assert.Equal(t, "No employees.\n", buf.String())
}

func TestWritePayoutJSON(t *testing.T) {
	s, err := api.BuildScenario(nil, "all-pillars")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writePayoutJSON(&buf, s))

	var out struct {
		Results []incentive.Result `json:"results"`
		Totals  incentive.Summary  `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, "5478.00", out.Totals.Payout.StringFixed(2))
}

func TestSanitizeDocument(t *testing.T) {
	in := strings.NewReader(`{"employees":[{"id":"a","department":"HQ","factors":{"office":3}}],"settings":{"capPct":-1}}`)

	var out bytes.Buffer
	require.NoError(t, sanitizeDocument(in, &out, nil))

	var s incentive.State
	require.NoError(t, json.Unmarshal(out.Bytes(), &s))
	assert.Equal(t, incentive.DeptOffice, s.Employees[0].Department)
	assert.Equal(t, 1.2, s.Employees[0].Factors.Office)
	assert.Zero(t, s.Settings.CapPct)
	assert.Len(t, s.Departments, 3)

	out.Reset()
	require.NoError(t, sanitizeDocument(strings.NewReader("garbage"), &out, nil))
	assert.Contains(t, out.String(), `"departments"`)
}

func TestWriteScenarioList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeScenarioList(&buf))

	for _, s := range api.Scenarios() {
		assert.Contains(t, buf.String(), s.ID)
	}
}

func TestWriteSnapshot(t *testing.T) {
	s, err := api.BuildScenario(nil, "restaurant-team")
	require.NoError(t, err)
	snap, err := store.NewSnapshot("March", incentive.Roster(s), fixedTime)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeSnapshot(&buf, snap))
	assert.Contains(t, buf.String(), "March (2026-03-31T18:00:00Z)")
	assert.Contains(t, buf.String(), "emp-003")

	buf.Reset()
	require.NoError(t, writeSnapshotList(&buf, []store.Snapshot{snap}))
	assert.Contains(t, buf.String(), snap.ID)

	buf.Reset()
	require.NoError(t, writeSnapshotList(&buf, nil))
	assert.Equal(t, "No snapshots found.\n", buf.String())
}
