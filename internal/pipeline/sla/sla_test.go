package sla_test

import (
	"testing"
	"time"

	"github.com/SergioST90/document-processing-system/internal/pipeline/sla"
	"github.com/stretchr/testify/assert"
)

var anchor = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCalculateDeadline(t *testing.T) {
	deadline := sla.CalculateDeadline(60, anchor)
	assert.Equal(t, anchor.Add(time.Minute), deadline)
}

func TestRemainingSeconds(t *testing.T) {
	deadline := anchor.Add(30 * time.Second)

	assert.InDelta(t, 30, sla.RemainingSeconds(deadline, anchor), 1e-9)
	assert.InDelta(t, -10, sla.RemainingSeconds(deadline, anchor.Add(40*time.Second)), 1e-9)
}

func TestIsAtRisk(t *testing.T) {
	// 60s budget, warn at 70% elapsed: at risk once fewer than 18s remain.
	deadline := anchor.Add(60 * time.Second)

	assert.False(t, sla.IsAtRisk(deadline, anchor, 70, 60))
	assert.False(t, sla.IsAtRisk(deadline, anchor.Add(40*time.Second), 70, 60))
	assert.True(t, sla.IsAtRisk(deadline, anchor.Add(45*time.Second), 70, 60))
	assert.True(t, sla.IsAtRisk(deadline, anchor.Add(70*time.Second), 70, 60))
}

func TestIsBreached(t *testing.T) {
	deadline := anchor.Add(time.Second)

	assert.False(t, sla.IsBreached(deadline, anchor))
	assert.True(t, sla.IsBreached(deadline, anchor.Add(time.Second)))
	assert.True(t, sla.IsBreached(deadline, anchor.Add(2*time.Second)))
}
