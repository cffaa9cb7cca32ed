// Package extract turns a flattened part timeline into timed note events.
//
// The walk is a fold: Step maps a State and one element to the next State
// plus the outcomes (events or warnings) the element produced. Extract runs
// the fold over a whole part and closes any tie still open at the end.
package extract

import (
	"fmt"

	"github.com/jsphweid/saxchart/chord"
	"github.com/jsphweid/saxchart/constants"
	"github.com/jsphweid/saxchart/model"
	"github.com/jsphweid/saxchart/util"
)

const WarnChordCollapsed = "Chords detected; using top note only."

var WarnDurationClamped = fmt.Sprintf(
	"Non-positive note durations clamped to %g quarter notes.", constants.MinQuarterLength)

type Options struct {
	SecondsPerQuarter  float64
	TransposeSemitones int
}

// PendingTie is a tied note still being accumulated. Pitch is fixed by the
// first fragment.
type PendingTie struct {
	Pitch         model.Pitch
	QuarterLength float64
}

type State struct {
	CursorSeconds float64
	NextIndex     int
	Pending       *PendingTie
}

// Outcome is either an emitted event or a warning, never both.
type Outcome struct {
	Event   *model.NoteEvent
	Warning string
}

// Step applies one element. Elements of unknown kind and chords without
// members leave the state untouched.
func (o Options) Step(st State, el model.Element) (State, []Outcome) {
	var out []Outcome

	switch el.Kind {
	case model.KindRest, model.KindNote:
	case model.KindChord:
		note, ok := chord.Collapse(el)
		if !ok {
			return st, nil
		}
		out = append(out, Outcome{Warning: WarnChordCollapsed})
		el = note
	default:
		return st, nil
	}

	if el.Kind == model.KindRest {
		st, out = o.flush(st, out)
		if el.QuarterLength > 0 {
			st.CursorSeconds += el.QuarterLength * o.SecondsPerQuarter
		}
		return st, out
	}

	ql := el.QuarterLength
	if ql <= 0 {
		ql = constants.MinQuarterLength
		out = append(out, Outcome{Warning: WarnDurationClamped})
	}

	switch el.Tie {
	case model.TieStart, model.TieContinue:
		return accumulate(st, el.Pitch, ql), out
	case model.TieStop:
		// a stop without a pending tie starts one, so it closes as a plain note
		return o.flush(accumulate(st, el.Pitch, ql), out)
	}

	st, out = o.flush(st, out)
	return o.emit(st, el.Pitch, ql, out)
}

// Finish closes a tie left open by a start/continue without a stop. The
// note is kept rather than dropped.
func (o Options) Finish(st State) (State, []Outcome) {
	return o.flush(st, nil)
}

func accumulate(st State, p model.Pitch, ql float64) State {
	if st.Pending == nil {
		st.Pending = &PendingTie{Pitch: p, QuarterLength: ql}
		return st
	}
	st.Pending = &PendingTie{
		Pitch:         st.Pending.Pitch,
		QuarterLength: st.Pending.QuarterLength + ql,
	}
	return st
}

func (o Options) flush(st State, out []Outcome) (State, []Outcome) {
	if st.Pending == nil {
		return st, out
	}
	p := st.Pending
	st.Pending = nil
	return o.emit(st, p.Pitch, p.QuarterLength, out)
}

func (o Options) emit(st State, p model.Pitch, ql float64, out []Outcome) (State, []Outcome) {
	dur := ql * o.SecondsPerQuarter
	ev := &model.NoteEvent{
		Index:         st.NextIndex,
		OnsetSeconds:  st.CursorSeconds,
		DurSeconds:    dur,
		QuarterLength: ql,
		WrittenMIDI:   p.MIDI,
		SoundingMIDI:  p.MIDI + o.TransposeSemitones,
		Spelling:      p.Name,
	}
	st.NextIndex++
	st.CursorSeconds += dur
	return st, append(out, Outcome{Event: ev})
}

// Extract walks elements in order and returns the events plus warnings.
// A warning text is reported once per call no matter how often it occurs.
func Extract(elements []model.Element, opts Options) ([]model.NoteEvent, []string) {
	events := make([]model.NoteEvent, 0, len(elements))
	warnings := []string{}

	collect := func(out []Outcome) {
		for _, o := range out {
			if o.Event != nil {
				events = append(events, *o.Event)
			} else if o.Warning != "" {
				warnings = util.AppendUnique(warnings, o.Warning)
			}
		}
	}

	var st State
	var out []Outcome
	for _, el := range elements {
		st, out = opts.Step(st, el)
		collect(out)
	}
	_, out = opts.Finish(st)
	collect(out)

	return events, warnings
}
