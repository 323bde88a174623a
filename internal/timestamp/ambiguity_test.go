package timestamp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectAmbiguity_DayMonthOrder(t *testing.T) {
	rec := DetectAmbiguity("05-06-2024.jpg")
	require.NotNil(t, rec)

	assert.Equal(t, DayMonthOrder, rec.Kind)
	assert.Equal(t, "05-06-2024", rec.Match)
	assert.Equal(t, 5, rec.First)
	assert.Equal(t, 6, rec.Second)

	dmy, mdy := rec.Options[0], rec.Options[1]
	assert.Equal(t, "dmy", dmy.Label)
	assert.Equal(t, 5, dmy.Timestamp.Day)
	assert.Equal(t, 6, dmy.Timestamp.Month)
	assert.Equal(t, "mdy", mdy.Label)
	assert.Equal(t, 6, mdy.Timestamp.Day)
	assert.Equal(t, 5, mdy.Timestamp.Month)
}

func TestDetectAmbiguity_Compact(t *testing.T) {
	rec := DetectAmbiguity("scan_03042024.pdf")
	require.NotNil(t, rec)

	assert.Equal(t, DayMonthOrder, rec.Kind)
	assert.Equal(t, "03042024", rec.Match)
	assert.Equal(t, 3, rec.First)
	assert.Equal(t, 4, rec.Second)
}

func TestDetectAmbiguity_TwoDigitYear(t *testing.T) {
	rec := DetectAmbiguity("photo_850315.jpg")
	require.NotNil(t, rec)

	assert.Equal(t, TwoDigitYear, rec.Kind)
	assert.Equal(t, "850315", rec.Match)
	assert.Equal(t, 1985, rec.Options[0].Timestamp.Year)
	assert.Equal(t, 2085, rec.Options[1].Timestamp.Year)
	assert.NoError(t, rec.Options[1].Timestamp.Validate())
}

func TestDetectAmbiguity_None(t *testing.T) {
	inputs := []string{
		"",
		"15-06-2024.jpg",
		"05-05-2024.jpg",
		"IMG_20240315.jpg",
		"notes_110214.txt",
		"12:05:2024",
	}
	for _, in := range inputs {
		assert.Nil(t, DetectAmbiguity(in), in)
	}
}

// The ambiguity is reported whatever convention Detect would apply.
func TestDetectAmbiguity_IndependentOfDefault(t *testing.T) {
	in := "holiday 07.08.2023.png"
	require.NotNil(t, Detect(in, Options{DateFormat: MDY}))
	rec := DetectAmbiguity(in)
	require.NotNil(t, rec)
	assert.Equal(t, "07.08.2023", rec.Match)
}
