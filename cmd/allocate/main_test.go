package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arnavshah/housekeeping-api-go/pkg/allocator"
	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shiftYAML = `
rooms:
  - {number: 301, twin: true}
  - {number: 302}
  - {number: 303}
  - {number: 304}
  - {number: 401, twin: true}
  - {number: 402}
  - {number: 403}
  - {number: 404}
  - {number: 305, eco: true}
housekeepers:
  - {id: 1, name: Ana, room_quota: 4, twin_quota: auto}
  - {id: 2, name: Ben, room_quota: 4, twin_quota: auto}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func baseOptions() options {
	return options{format: "json", attempts: 4, logLevel: "error"}
}

func TestRun_YAMLToJSON(t *testing.T) {
	o := baseOptions()
	o.in = writeFile(t, "shift.yaml", shiftYAML)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, &out))

	var resp models.AllocationResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Len(t, resp.Assignments, 9)
	assert.Len(t, resp.Housekeepers, 2)
	assert.NotEmpty(t, resp.RunID)
}

func TestRun_CSVFiles(t *testing.T) {
	o := baseOptions()
	o.format = "csv"
	o.rooms = writeFile(t, "rooms.csv", "room,type,clean\n301,T,\n302,S,\n401,T,\n402,S,\n")
	o.roster = writeFile(t, "roster.csv", "id,name,room_quota,twin_quota,has_bath\n1,Ana,2,,no\n2,Ben,2,,no\n")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "room,floor,kind,twin,housekeeper_id,housekeeper_name", lines[0])
}

func TestRun_XLSXNeedsOut(t *testing.T) {
	o := baseOptions()
	o.format = "xlsx"
	o.in = writeFile(t, "shift.yaml", shiftYAML)
	assert.Error(t, run(context.Background(), o, &bytes.Buffer{}))

	o.out = filepath.Join(t.TempDir(), "shift.xlsx")
	require.NoError(t, run(context.Background(), o, &bytes.Buffer{}))
	info, err := os.Stat(o.out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRun_StrictAndRelaxed(t *testing.T) {
	// eco-out on floor 9, where nobody works
	shift := strings.Replace(shiftYAML, "  - {number: 305, eco: true}", "  - {number: 305, eco: true}\n  - {number: 901, eco_out: true}", 1)
	o := baseOptions()
	o.in = writeFile(t, "shift.yaml", shift)

	err := run(context.Background(), o, &bytes.Buffer{})
	assert.True(t, errors.Is(err, allocator.ErrInfeasible), "got %v", err)

	o.relaxed = true
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), o, &out))
	var resp models.AllocationResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.NotEmpty(t, resp.Relaxations)
	assert.Equal(t, allocator.RuleEcoOutLocality, resp.Relaxations[0].Rule)
}

func TestLoadInput_Errors(t *testing.T) {
	o := baseOptions()
	_, err := loadInput(o)
	assert.Error(t, err)

	o.in = writeFile(t, "shift.toml", "rooms = []")
	_, err = loadInput(o)
	assert.Error(t, err)

	o.rooms = "rooms.csv"
	_, err = loadInput(o)
	assert.Error(t, err)
}
