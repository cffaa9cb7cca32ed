package extract

import (
	"testing"

	"github.com/jsphweid/saxchart/constants"
	"github.com/jsphweid/saxchart/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-9

var altoAt100 = Options{SecondsPerQuarter: 0.6, TransposeSemitones: -9}

func note(midi int, name string, ql float64, tie model.Tie) model.Element {
	return model.Element{
		Kind:          model.KindNote,
		QuarterLength: ql,
		Tie:           tie,
		Pitch:         model.Pitch{MIDI: midi, Name: name},
	}
}

func rest(ql float64) model.Element {
	return model.Element{Kind: model.KindRest, QuarterLength: ql}
}

func assertWellFormed(t *testing.T, events []model.NoteEvent) {
	t.Helper()
	for i, ev := range events {
		assert.Equal(t, i, ev.Index)
		assert.Greater(t, ev.DurSeconds, 0.0)
		assert.GreaterOrEqual(t, ev.OnsetSeconds, 0.0)
		if i+1 < len(events) {
			assert.LessOrEqual(t, ev.End(), events[i+1].OnsetSeconds+delta)
		}
	}
}

func TestAscendingScale(t *testing.T) {
	names := []string{"C4", "D4", "E4", "F4", "G4", "A4", "B4", "C5"}
	midis := []int{60, 62, 64, 65, 67, 69, 71, 72}
	var elements []model.Element
	for i := range names {
		elements = append(elements, note(midis[i], names[i], 1, model.TieNone))
	}

	events, warnings := Extract(elements, altoAt100)

	assert := assert.New(t)
	require.Len(t, events, 8)
	assert.Empty(warnings)
	assert.Equal("C4", events[0].Spelling)
	assert.Equal("C5", events[7].Spelling)
	for i, ev := range events {
		assert.InDelta(float64(i)*0.6, ev.OnsetSeconds, delta)
		assert.InDelta(0.6, ev.DurSeconds, delta)
		assert.Equal(1.0, ev.QuarterLength)
		assert.Equal(midis[i], ev.WrittenMIDI)
		assert.Equal(midis[i]-9, ev.SoundingMIDI)
	}
	assertWellFormed(t, events)
}

func TestRestsLeaveGaps(t *testing.T) {
	opts := Options{SecondsPerQuarter: 0.5}
	elements := []model.Element{
		note(64, "E4", 1, model.TieNone),
		rest(1),
		note(65, "F4", 1, model.TieNone),
		rest(2),
		note(67, "G4", 1, model.TieNone),
	}

	events, _ := Extract(elements, opts)

	assert := assert.New(t)
	require.Len(t, events, 3)
	assert.Greater(events[1].OnsetSeconds, events[0].End())
	assert.InDelta(1.0, events[1].OnsetSeconds, delta)
	assert.InDelta(2.5, events[2].OnsetSeconds, delta)
	assertWellFormed(t, events)
}

func TestRestDelaysNextOnsetByItsLength(t *testing.T) {
	without, _ := Extract([]model.Element{
		note(60, "C4", 1, model.TieNone),
		note(62, "D4", 1, model.TieNone),
	}, altoAt100)
	with, _ := Extract([]model.Element{
		note(60, "C4", 1, model.TieNone),
		rest(1.5),
		note(62, "D4", 1, model.TieNone),
	}, altoAt100)

	assert.InDelta(t, 1.5*0.6, with[1].OnsetSeconds-without[1].OnsetSeconds, delta)
}

func TestTieChains(t *testing.T) {
	elements := []model.Element{
		note(60, "C4", 1, model.TieStart),
		note(60, "C4", 1, model.TieStop),
		note(62, "D4", 1, model.TieNone),
		note(64, "E4", 2, model.TieStart),
		note(64, "E4", 1, model.TieStop),
		note(65, "F4", 2, model.TieNone),
	}

	events, warnings := Extract(elements, altoAt100)

	assert := assert.New(t)
	require.Len(t, events, 4)
	assert.Empty(warnings)
	var qls []float64
	var spellings []string
	for _, ev := range events {
		qls = append(qls, ev.QuarterLength)
		spellings = append(spellings, ev.Spelling)
	}
	assert.Equal([]float64{2, 1, 3, 2}, qls)
	assert.Equal([]string{"C4", "D4", "E4", "F4"}, spellings)
	assert.InDelta(3*0.6, events[2].OnsetSeconds, delta)
	assert.InDelta(3*0.6, events[2].DurSeconds, delta)
	assertWellFormed(t, events)
}

func TestTieMergeSumsFragmentsAndKeepsFirstPitch(t *testing.T) {
	qls := []float64{0.5, 0.25, 1.25, 2}
	elements := []model.Element{
		note(70, "B-4", qls[0], model.TieStart),
		note(70, "A#4", qls[1], model.TieContinue),
		note(70, "B-4", qls[2], model.TieContinue),
		note(70, "B-4", qls[3], model.TieStop),
	}

	events, _ := Extract(elements, altoAt100)

	require.Len(t, events, 1)
	assert.Equal(t, 4.0, events[0].QuarterLength)
	assert.Equal(t, "B-4", events[0].Spelling)
	assert.InDelta(t, 4*0.6, events[0].DurSeconds, delta)
}

func TestUnterminatedTieIsClosedAtEnd(t *testing.T) {
	elements := []model.Element{
		note(60, "C4", 1, model.TieNone),
		note(67, "G4", 2, model.TieStart),
		note(67, "G4", 1, model.TieContinue),
	}

	events, _ := Extract(elements, altoAt100)

	require.Len(t, events, 2)
	assert.Equal(t, "G4", events[1].Spelling)
	assert.Equal(t, 3.0, events[1].QuarterLength)
	assert.InDelta(t, 0.6, events[1].OnsetSeconds, delta)
}

func TestPendingTieFlushedByRestAndUntiedNote(t *testing.T) {
	elements := []model.Element{
		note(60, "C4", 1, model.TieStart),
		rest(1),
		note(62, "D4", 1, model.TieStart),
		note(64, "E4", 1, model.TieNone),
	}

	events, _ := Extract(elements, altoAt100)

	assert := assert.New(t)
	require.Len(t, events, 3)
	assert.Equal("C4", events[0].Spelling)
	assert.InDelta(0.0, events[0].OnsetSeconds, delta)
	assert.Equal("D4", events[1].Spelling)
	assert.InDelta(1.2, events[1].OnsetSeconds, delta)
	assert.Equal("E4", events[2].Spelling)
	assert.InDelta(1.8, events[2].OnsetSeconds, delta)
}

func TestUnmatchedTieStopIsPlainNote(t *testing.T) {
	elements := []model.Element{
		note(60, "C4", 1, model.TieNone),
		note(62, "D4", 1.5, model.TieStop),
		note(64, "E4", 1, model.TieNone),
	}

	events, warnings := Extract(elements, altoAt100)

	require.Len(t, events, 3)
	assert.Empty(t, warnings)
	assert.Equal(t, "D4", events[1].Spelling)
	assert.Equal(t, 1.5, events[1].QuarterLength)
	assert.InDelta(t, 0.6, events[1].OnsetSeconds, delta)
	assertWellFormed(t, events)
}

func TestChordCollapsesToTopWithSingleWarning(t *testing.T) {
	chordEl := func(ql float64) model.Element {
		return model.Element{
			Kind:          model.KindChord,
			QuarterLength: ql,
			Chord: []model.Pitch{
				{MIDI: 60, Name: "C4"},
				{MIDI: 76, Name: "E5"},
				{MIDI: 67, Name: "G4"},
			},
		}
	}
	elements := []model.Element{chordEl(1), note(62, "D4", 1, model.TieNone), chordEl(2)}

	events, warnings := Extract(elements, altoAt100)

	assert := assert.New(t)
	require.Len(t, events, 3)
	assert.Equal([]string{WarnChordCollapsed}, warnings)
	assert.Equal(76, events[0].WrittenMIDI)
	assert.Equal("E5", events[0].Spelling)
	assert.Equal(2.0, events[2].QuarterLength)
}

func TestTiedChordsMergeOnTopPitch(t *testing.T) {
	pitches := []model.Pitch{{MIDI: 65, Name: "F4"}, {MIDI: 69, Name: "A4"}}
	elements := []model.Element{
		{Kind: model.KindChord, QuarterLength: 1, Tie: model.TieStart, Chord: pitches},
		{Kind: model.KindChord, QuarterLength: 1, Tie: model.TieStop, Chord: pitches},
	}

	events, _ := Extract(elements, altoAt100)

	require.Len(t, events, 1)
	assert.Equal(t, 69, events[0].WrittenMIDI)
	assert.Equal(t, 2.0, events[0].QuarterLength)
}

func TestMalformedElementsAreSkipped(t *testing.T) {
	elements := []model.Element{
		note(60, "C4", 1, model.TieNone),
		{Kind: model.KindUnknown, QuarterLength: 4},
		{Kind: model.KindChord, QuarterLength: 4},
		note(62, "D4", 1, model.TieNone),
	}

	events, warnings := Extract(elements, altoAt100)

	require.Len(t, events, 2)
	assert.Empty(t, warnings)
	assert.InDelta(t, 0.6, events[1].OnsetSeconds, delta)
}

func TestNonPositiveDurations(t *testing.T) {
	elements := []model.Element{
		note(60, "C4", 0, model.TieNone),
		rest(-2),
		note(62, "D4", -1, model.TieNone),
		note(64, "E4", 1, model.TieNone),
	}

	events, warnings := Extract(elements, altoAt100)

	assert := assert.New(t)
	require.Len(t, events, 3)
	assert.Equal([]string{WarnDurationClamped}, warnings)
	assert.Equal(constants.MinQuarterLength, events[0].QuarterLength)
	assert.InDelta(constants.MinQuarterLength*0.6, events[1].OnsetSeconds, delta)
	assert.InDelta(2*constants.MinQuarterLength*0.6, events[2].OnsetSeconds, delta)
	assertWellFormed(t, events)
}

func TestEmptyInput(t *testing.T) {
	events, warnings := Extract(nil, altoAt100)
	assert.NotNil(t, events)
	assert.Empty(t, events)
	assert.NotNil(t, warnings)
	assert.Empty(t, warnings)

	events, _ = Extract([]model.Element{rest(4), rest(4)}, altoAt100)
	assert.Empty(t, events)
}

func TestStepTransitions(t *testing.T) {
	assert := assert.New(t)
	var st State

	st, out := altoAt100.Step(st, note(60, "C4", 1, model.TieStart))
	assert.Empty(out)
	require.NotNil(t, st.Pending)
	assert.Equal(1.0, st.Pending.QuarterLength)
	assert.Equal(0.0, st.CursorSeconds)

	before := st
	st, out = altoAt100.Step(st, note(60, "C4", 0.5, model.TieContinue))
	assert.Empty(out)
	assert.Equal(1.5, st.Pending.QuarterLength)
	assert.Equal(1.0, before.Pending.QuarterLength, "earlier states are not mutated")

	st, out = altoAt100.Step(st, note(60, "C4", 0.5, model.TieStop))
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Event)
	assert.Equal(2.0, out[0].Event.QuarterLength)
	assert.Nil(st.Pending)
	assert.Equal(1, st.NextIndex)
	assert.InDelta(1.2, st.CursorSeconds, delta)

	st, out = altoAt100.Step(st, rest(1))
	assert.Empty(out)
	assert.InDelta(1.8, st.CursorSeconds, delta)

	st, out = altoAt100.Finish(st)
	assert.Empty(out)
	assert.Equal(1, st.NextIndex)
}
