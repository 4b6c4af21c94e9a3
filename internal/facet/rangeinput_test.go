package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeDraftCommitsFiniteNumbers(t *testing.T) {
	d := NewRangeDraft()
	s := Initial()

	a, ok := d.Input(RatingField, SideMin, "7")
	require.True(t, ok)
	s = Apply(s, a)
	assert.Equal(t, 7.0, *s.Rating.Min)

	a, ok = d.Input(RatingField, SideMax, " 8,5 ")
	require.True(t, ok)
	s = Apply(s, a)
	assert.Equal(t, 7.0, *s.Rating.Min, "other bound untouched")
	assert.Equal(t, 8.5, *s.Rating.Max)
}

func TestRangeDraftHoldsPartialInput(t *testing.T) {
	d := NewRangeDraft()
	s := Apply(Initial(), SetRange(RatingField, To(7), Keep()))

	for _, text := range []string{"7.", "-", "abc", "1e", "Inf"} {
		_, ok := d.Input(RatingField, SideMin, text)
		assert.False(t, ok, text)
		assert.Equal(t, text, d.Text(RatingField, SideMin))
	}
	assert.Equal(t, 7.0, *s.Rating.Min)

	a, ok := d.Input(RatingField, SideMin, "7.5")
	require.True(t, ok)
	s = Apply(s, a)
	assert.Equal(t, 7.5, *s.Rating.Min)
}

func TestRangeDraftEmptyTextClears(t *testing.T) {
	d := NewRangeDraft()
	s := Apply(Initial(), SetRange(ChapterCountField, To(10), To(50)))

	a, ok := d.Input(ChapterCountField, SideMax, "  ")
	require.True(t, ok)
	s = Apply(s, a)
	assert.Nil(t, s.ChapterCount.Max)
	assert.Equal(t, 10.0, *s.ChapterCount.Min)
}

func TestRangeDraftSync(t *testing.T) {
	d := NewRangeDraft()
	d.Input(ReleaseYearField, SideMin, "19")
	s := Apply(Initial(), SetRange(ReleaseYearField, To(1999), Keep()))

	d.Sync(s)
	assert.Equal(t, "1999", d.Text(ReleaseYearField, SideMin))
	assert.Equal(t, "", d.Text(ReleaseYearField, SideMax))

	d.Sync(Initial())
	assert.Equal(t, "", d.Text(ReleaseYearField, SideMin))
}
