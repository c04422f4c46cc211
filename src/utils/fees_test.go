package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeFeesTwoHourSession(t *testing.T) {
	fees := ComputeFees(decimal.NewFromInt(100), 2)

	assert.Equal(t, "200", fees.BaseAmount.String())
	assert.Equal(t, "20", fees.CustomerServiceFee.String())
	assert.Equal(t, "220", fees.TotalAmount.String())
	assert.Equal(t, "40", fees.PlatformFee.String())
	assert.Equal(t, "160", fees.PayeeEarnings.String())
}

func TestComputeFeesFractionalRate(t *testing.T) {
	rate, err := decimal.NewFromString("33.33")
	assert.NoError(t, err)
	fees := ComputeFees(rate, 3)

	assert.Equal(t, "99.99", fees.BaseAmount.String())
	assert.Equal(t, "10", fees.CustomerServiceFee.String())
	assert.Equal(t, "109.99", fees.TotalAmount.String())
	assert.Equal(t, "20", fees.PlatformFee.String())
	assert.Equal(t, "79.99", fees.PayeeEarnings.String())
}

func TestComputeFeesInvariants(t *testing.T) {
	rates := []string{"0.01", "12.50", "85", "149.99", "1000"}
	for _, r := range rates {
		rate, err := decimal.NewFromString(r)
		assert.NoError(t, err)
		for q := int64(1); q <= 12; q++ {
			fees := ComputeFees(rate, q)
			assert.True(t, fees.TotalAmount.Sub(fees.CustomerServiceFee).Equal(fees.BaseAmount),
				"total - service fee must equal base for rate=%s qty=%d", r, q)
			assert.True(t, fees.BaseAmount.Sub(fees.PlatformFee).Equal(fees.PayeeEarnings),
				"base - platform fee must equal earnings for rate=%s qty=%d", r, q)
			assert.True(t, fees.PayeeEarnings.LessThanOrEqual(fees.TotalAmount))
		}
	}
}

func TestMinorUnits(t *testing.T) {
	amount, _ := decimal.NewFromString("219.99")
	assert.Equal(t, int64(21999), MinorUnits(amount))
	assert.Equal(t, int64(0), MinorUnits(decimal.Zero))
}

func TestResponseDeadlineTiers(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)

	cases := []struct {
		lead   time.Duration
		window time.Duration
	}{
		{30 * time.Minute, 30 * time.Minute},
		{2 * time.Hour, 30 * time.Minute},
		{3 * time.Hour, time.Hour},
		{6 * time.Hour, time.Hour},
		{10 * time.Hour, 4 * time.Hour},
		{24 * time.Hour, 4 * time.Hour},
		{30 * time.Hour, 24 * time.Hour},
		{7 * 24 * time.Hour, 24 * time.Hour},
	}
	for _, c := range cases {
		deadline := ResponseDeadline(now, now.Add(c.lead))
		assert.Equal(t, now.Add(c.window), deadline, "lead %s should give a %s window", c.lead, c.window)
	}
}

func TestSessionWindow(t *testing.T) {
	start, end, err := SessionWindow("2026-03-14", "14:30", 3)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 14, 30, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2026, 3, 14, 17, 30, 0, 0, time.Local), end)

	_, _, err = SessionWindow("14/03/2026", "14:30", 1)
	assert.Error(t, err)
	_, _, err = SessionWindow("2026-03-14", "2pm", 1)
	assert.Error(t, err)
}
