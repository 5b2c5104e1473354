package orders

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNumberingCountsWithinDay(t *testing.T) {
	n := NewNumbering()
	day := time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "REQ-07152024-001", n.Next(day))
	assert.Equal(t, "REQ-07152024-002", n.Next(day.Add(3*time.Hour)))
	assert.Equal(t, "REQ-07152024-003", n.Next(day.Add(10*time.Hour)))
}

func TestNumberingResetsAcrossDays(t *testing.T) {
	n := NewNumbering()
	day1 := time.Date(2024, 12, 31, 23, 50, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 1, 0, 5, 0, 0, time.UTC)

	assert.Equal(t, "REQ-12312024-001", n.Next(day1))
	assert.Equal(t, "REQ-01012025-001", n.Next(day2))
	assert.Equal(t, "REQ-01012025-002", n.Next(day2))
}

func TestNumberingPadsToThreeDigits(t *testing.T) {
	n := NewNumbering()
	day := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	var last string
	for i := 0; i < 120; i++ {
		last = n.Next(day)
	}
	assert.Equal(t, fmt.Sprintf("REQ-02022024-%03d", 120), last)
}
