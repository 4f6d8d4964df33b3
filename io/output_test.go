package io

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/porelab/poreflow/metrics"
)

func TestWriteRowRoundTrip(t *testing.T) {
	dir := t.TempDir()

	assert.False(t, RowExists(dir, 4))

	m := &metrics.Metrics{
		Tort1: 1.25, CellCount: 42, Porosity: 0.31, Vel: 1.5e-3,
		InPres: 1.0, OutPres: 0.0, PresDrop: 1.0,
	}
	if err := WriteRow(dir, 4, m); err != nil {
		t.Fatal(err.Error())
	}

	assert.True(t, RowExists(dir, 4))
	assert.False(t, RowExists(dir, 5))

	f, err := os.Open(RowPath(dir, 4))
	if err != nil {
		t.Fatal(err.Error())
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err.Error())
	}
	if len(records) != 2 {
		t.Fatalf("got %d lines, want header + one row", len(records))
	}

	assert.Equal(t, metrics.Columns(), records[0])
	assert.Equal(t, len(metrics.Columns()), len(records[1]))

	for i, col := range metrics.Columns() {
		switch col {
		case "Tort1":
			assert.Equal(t, "1.25", records[1][i])
		case "CellCount":
			assert.Equal(t, "42", records[1][i])
		case "Porosity":
			assert.Equal(t, "0.31", records[1][i])
		}
	}
}

func TestWriteRowLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	if err := WriteRow(dir, 1, &metrics.Metrics{}); err != nil {
		t.Fatal(err.Error())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err.Error())
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("stray temp file %s", e.Name())
		}
	}
	assert.Equal(t, 1, len(entries))
}

func TestWriteRowCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	if err := WriteRow(dir, 9, &metrics.Metrics{}); err != nil {
		t.Fatal(err.Error())
	}
	assert.True(t, RowExists(dir, 9))
}
