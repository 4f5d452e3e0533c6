package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true)

	table := w.NewTable("Rate", "Qty")
	table.AddRow("week", "1")
	table.AddRow("base", "12", "ignored")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Rate │ Qty", lines[0])
	assert.Equal(t, "─────┼────", lines[1])
	assert.Equal(t, "week │ 1", lines[2])
	assert.Equal(t, "base │ 12", lines[3])
}

func TestNoColorStripsEscapes(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true)
	w.Success("done")
	w.Header("Quote")
	assert.NotContains(t, buf.String(), "\033[")

	buf.Reset()
	w = NewWriter(&buf, false)
	w.Success("done")
	assert.Contains(t, buf.String(), Green)
}

func TestVerbosity(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true)

	w.Debug("hidden")
	assert.Empty(t, buf.String())

	w.SetVerbosity(2)
	w.Debug("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	w.SetVerbosity(0)
	w.Info("quiet")
	assert.Empty(t, buf.String())
}

func TestQuoteSummary(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true)

	s := w.NewQuoteSummary()
	s.Subtotal = "595.00"
	s.Original = "700.00"
	s.Savings = "105.00"
	s.SavingsPercent = 15
	s.Deposit = "50.00"
	s.DueNow = "645.00"
	s.Available = false
	s.Render()

	out := buf.String()
	assert.Contains(t, out, "105.00 (15%)")
	assert.Contains(t, out, "645.00")
	assert.Contains(t, out, "Not enough stock")
}
