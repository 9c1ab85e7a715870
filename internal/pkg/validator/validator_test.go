package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidDate(t *testing.T) {
	date, ok := IsValidDate("2026-03-02")
	assert.True(t, ok)
	assert.Equal(t, 2026, date.Year())

	_, ok = IsValidDate("02-03-2026")
	assert.False(t, ok)
	_, ok = IsValidDate("")
	assert.False(t, ok)
}

func TestIsValidDateTime(t *testing.T) {
	_, ok := IsValidDateTime("2026-03-02T09:00:00Z")
	assert.True(t, ok)
	_, ok = IsValidDateTime("2026-03-02T09:00:00+07:00")
	assert.True(t, ok)
	_, ok = IsValidDateTime("2026-03-02 09:00")
	assert.False(t, ok)
}

func TestCoordinateValidation(t *testing.T) {
	assert.True(t, IsValidLatitude(-6.2))
	assert.True(t, IsValidLatitude(90))
	assert.False(t, IsValidLatitude(90.1))
	assert.False(t, IsValidLatitude(-91))

	assert.True(t, IsValidLongitude(106.8))
	assert.True(t, IsValidLongitude(-180))
	assert.False(t, IsValidLongitude(180.5))
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("0195c5b3-8e1a-7cc6-9f5a-3d2b1a0c9e8f"))
	assert.True(t, IsValidUUID("550E8400-E29B-41D4-A716-446655440000"))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID(""))
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "latitude", Message: "out of range"},
		{Field: "status", Message: "unknown value"},
	}

	assert.Contains(t, errs.Error(), "latitude: out of range")
	assert.Equal(t, "unknown value", errs.ToMap()["status"])
}

func TestIsValidClockTime(t *testing.T) {
	_, ok := IsValidClockTime("09:00")
	assert.True(t, ok)
	_, ok = IsValidClockTime("24:00")
	assert.False(t, ok)
	_, ok = IsValidClockTime("9am")
	assert.False(t, ok)
}
