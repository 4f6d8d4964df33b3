package io

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/porelab/poreflow/metrics"
)

// RowPath returns the result row path for sample n.
func RowPath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("simulation_%d.csv", n))
}

// RowExists reports whether sample n already has a result row. Because
// rows are renamed into place, an existing file is always complete; this
// check is the sole resumability signal and also the only synchronization
// needed between concurrent invocations over disjoint ranges.
func RowExists(dir string, n int) bool {
	_, err := os.Stat(RowPath(dir, n))
	return err == nil
}

// WriteRow writes the result row for sample n: a header line followed by
// one value line in the fixed column order. The row is written to a
// temporary file and renamed into place, so a crash mid-write never
// leaves an artifact that a later invocation would skip as done.
func WriteRow(dir string, n int, m *metrics.Metrics) error {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, fmt.Sprintf("simulation_%d_*.tmp", n))
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	record := make([]string, 0, len(metrics.Columns()))
	if err := w.Write(metrics.Columns()); err != nil {
		tmp.Close()
		return err
	}
	for _, v := range m.Values() {
		record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
	}
	if err := w.Write(record); err != nil {
		tmp.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), RowPath(dir, n))
}
