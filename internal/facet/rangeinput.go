package facet

import (
	"math"
	"strconv"
	"strings"
)

// Side selects the lower or upper bound of a range.
type Side string

const (
	SideMin Side = "min"
	SideMax Side = "max"
)

// RangeDraft keeps what the user has typed into range inputs, so that text like
// "4." or "-" can sit in the box without disturbing the committed bound.
type RangeDraft struct {
	text map[RangeField]map[Side]string
}

func NewRangeDraft() *RangeDraft {
	return &RangeDraft{text: map[RangeField]map[Side]string{}}
}

// Text returns the held text for a bound.
func (d *RangeDraft) Text(field RangeField, side Side) string {
	return d.text[field][side]
}

// Input records text for one bound. It returns the action to dispatch and true
// when the text commits: empty text clears the bound, a finite number sets it.
// Anything else is held and no action is produced.
func (d *RangeDraft) Input(field RangeField, side Side, text string) (Action, bool) {
	if d.text[field] == nil {
		d.text[field] = map[Side]string{}
	}
	d.text[field][side] = text

	var b Bound
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		b = Clear()
	} else {
		v, err := strconv.ParseFloat(strings.Replace(trimmed, ",", ".", 1), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || strings.HasSuffix(trimmed, ".") {
			return Action{}, false
		}
		b = To(v)
	}
	if side == SideMin {
		return SetRange(field, b, Keep()), true
	}
	return SetRange(field, Keep(), b), true
}

// Sync overwrites the held text with the committed bounds, e.g. after a reset.
func (d *RangeDraft) Sync(s State) {
	for _, f := range rangeFields {
		r := s.rangeOf(f)
		d.text[f] = map[Side]string{SideMin: formatBound(r.Min), SideMax: formatBound(r.Max)}
	}
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
