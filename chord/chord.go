package chord

import (
	"fmt"
	"sort"

	"github.com/jsphweid/saxchart/model"
)

// CreateChordKey renders a chord as its ascending MIDI numbers, e.g. "60-64-67".
// pitches is not reordered.
func CreateChordKey(pitches []model.Pitch) string {
	notes := make([]int, 0, len(pitches))
	for _, p := range pitches {
		notes = append(notes, p.MIDI)
	}
	sort.Ints(notes)
	var res string
	for i, note := range notes {
		res += fmt.Sprintf("%v", note)
		if i < len(notes)-1 {
			res += "-"
		}
	}
	return res
}

// TopIndex returns the position of the highest member by MIDI number.
// Members that share the highest MIDI number resolve to the first one
// listed, so the source spelling of that member wins.
func TopIndex(pitches []model.Pitch) (int, bool) {
	if len(pitches) == 0 {
		return 0, false
	}
	top := 0
	for i, p := range pitches {
		if p.MIDI > pitches[top].MIDI {
			top = i
		}
	}
	return top, true
}

func Top(pitches []model.Pitch) (model.Pitch, bool) {
	i, ok := TopIndex(pitches)
	if !ok {
		return model.Pitch{}, false
	}
	return pitches[i], true
}

// Collapse turns a chord element into a single-pitch note element carrying
// the chord's duration and tie. ok is false for chords without members.
func Collapse(el model.Element) (model.Element, bool) {
	top, ok := Top(el.Chord)
	if !ok {
		return el, false
	}
	return model.Element{
		Kind:          model.KindNote,
		QuarterLength: el.QuarterLength,
		Tie:           el.Tie,
		Pitch:         top,
	}, true
}
