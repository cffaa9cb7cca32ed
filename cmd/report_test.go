package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/saxchart/fingering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeAltoTable(t *testing.T) {
	r := analyzeTable(fingering.Alto())

	assert := assert.New(t)
	assert.Equal("alto-sax", r.instrument)
	assert.Equal(58, r.lowest)
	assert.Equal(89, r.highest)
	assert.Empty(r.gaps)
	assert.Equal(r.highest-r.lowest+1, r.numEntries)
	assert.Equal([]registerReport{
		{name: "low", lowest: 58, highest: 61, covered: 4},
		{name: "middle", lowest: 62, highest: 73, covered: 12},
		{name: "upper", lowest: 74, highest: 85, covered: 12},
		{name: "palm", lowest: 86, highest: 89, covered: 4},
	}, r.registers)
	assert.Empty(r.unregistered)
}

func TestAnalyzeTableFindsGaps(t *testing.T) {
	table, err := fingering.ParseTable([]byte(`
instrument: test
keys: [a, b]
fingerings:
  - {midi: 60, name: C4, pressed: [a]}
  - {midi: 63, name: D#4, pressed: [a]}
`))
	require.NoError(t, err)

	r := analyzeTable(table)
	assert := assert.New(t)
	assert.Equal([]int{61, 62}, r.gaps)
	assert.Equal(map[string]int{"a": 2}, r.keyUsage)
	assert.Equal([]string{"b"}, r.unusedKeys)
	assert.Empty(r.registers)
	assert.Equal([]int{60, 63}, r.unregistered)
}

func TestAnalyzeTableRegisterCoverage(t *testing.T) {
	table, err := fingering.ParseTable([]byte(`
keys: [a]
registers:
  - {name: low, lowest: 60, highest: 62}
fingerings:
  - {midi: 60, name: C4, pressed: [a]}
  - {midi: 62, name: D4, pressed: [a]}
  - {midi: 70, name: A#4, pressed: []}
`))
	require.NoError(t, err)

	r := analyzeTable(table)
	assert.Equal(t, []registerReport{{name: "low", lowest: 60, highest: 62, covered: 2}}, r.registers)
	assert.Equal(t, []int{70}, r.unregistered)
}

func TestLoadTable(t *testing.T) {
	table, err := loadTable("")
	require.NoError(t, err)
	assert.Same(t, fingering.Alto(), table)

	_, err = loadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("keys: []"), 0644))
	_, err = loadTable(bad)
	assert.Error(t, err)
}
