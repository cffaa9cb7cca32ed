// Package musicxml reads score-partwise MusicXML documents, plain or
// zipped as .mxl, into the score model.
package musicxml

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jsphweid/saxchart/chord"
	"github.com/jsphweid/saxchart/model"
	"github.com/pkg/errors"
)

var (
	ErrEmpty           = errors.New("empty document")
	ErrNotMusicXML     = errors.New("not a MusicXML document")
	ErrUnsupportedRoot = errors.New("unsupported root element, expected score-partwise")
)

var stepSemitones = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// quarters per beat unit, before dots
var beatUnits = map[string]float64{
	"maxima": 32, "long": 16, "breve": 8, "whole": 4, "half": 2,
	"quarter": 1, "eighth": 0.5, "16th": 0.25, "32nd": 0.125,
	"64th": 0.0625, "128th": 0.03125,
}

// Parse decodes raw MusicXML or .mxl bytes into a Score.
func Parse(raw []byte) (*model.Score, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmpty
	}

	if isArchive(raw) {
		inner, err := extractRootFile(raw)
		if err != nil {
			return nil, err
		}
		raw = inner
	}

	doc, err := decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return build(doc), nil
}

func build(doc *scorePartwise) *model.Score {
	score := &model.Score{Title: doc.Work.Title}
	if score.Title == "" {
		score.Title = strings.TrimSpace(doc.MovementTitle)
	}

	names := map[string]string{}
	for _, sp := range doc.PartList.ScoreParts {
		names[sp.ID] = strings.TrimSpace(sp.Name)
	}

	for _, p := range doc.Parts {
		b := partBuilder{divisions: 1}
		for _, m := range p.Measures {
			for _, entry := range m.Entries {
				b.add(entry)
			}
		}
		score.Parts = append(score.Parts, model.Part{
			ID:       p.ID,
			Name:     names[p.ID],
			Elements: b.elements,
		})
		score.Tempos = append(score.Tempos, b.tempos...)
		if b.droppedVoices {
			score.Warnings = append(score.Warnings, fmt.Sprintf(
				"Multiple voices detected in part %s; using voice %s only.", p.ID, b.voice))
		}
	}
	return score
}

type partBuilder struct {
	divisions     float64
	voice         string
	droppedVoices bool
	elements      []model.Element
	// tie of each member of the last element when it is a chord
	memberTies []model.Tie
	tempos     []model.TempoMark
}

func (b *partBuilder) add(entry interface{}) {
	switch e := entry.(type) {
	case *attributes:
		if e.Divisions > 0 {
			b.divisions = e.Divisions
		}
	case *note:
		b.addNote(e)
	case *forward:
		if b.inVoice(e.Voice) {
			b.elements = append(b.elements, model.Element{
				Kind:          model.KindRest,
				QuarterLength: e.Duration / b.divisions,
			})
			b.memberTies = nil
		}
	case *sound:
		b.addTempo(e.Tempo)
	case *direction:
		if e.Sound != nil && e.Sound.Tempo > 0 {
			b.addTempo(e.Sound.Tempo)
			return
		}
		for _, t := range e.Types {
			if t.Metronome != nil {
				b.addTempo(t.Metronome.quarterBPM())
				return
			}
		}
	}
}

func (b *partBuilder) addTempo(qpm float64) {
	if qpm > 0 {
		b.tempos = append(b.tempos, model.TempoMark{QPM: qpm})
	}
}

// inVoice reports whether a note in voice v belongs to the melody line. The
// first voice seen in a part becomes its melody voice.
func (b *partBuilder) inVoice(v string) bool {
	if v == "" {
		v = "1"
	}
	if b.voice == "" {
		b.voice = v
	}
	if v != b.voice {
		b.droppedVoices = true
		return false
	}
	return true
}

func (b *partBuilder) addNote(n *note) {
	if n.Grace != nil || !b.inVoice(n.Voice) {
		return
	}

	ql := n.Duration / b.divisions
	t := n.tie()

	if n.Chord != nil && n.Pitch != nil && n.Rest == nil && b.extendChord(n.Pitch.model(), t) {
		return
	}

	switch {
	case n.Rest != nil:
		b.elements = append(b.elements, model.Element{Kind: model.KindRest, QuarterLength: ql})
		b.memberTies = nil
	case n.Pitch != nil:
		b.elements = append(b.elements, model.Element{
			Kind:          model.KindNote,
			QuarterLength: ql,
			Tie:           t,
			Pitch:         n.Pitch.model(),
		})
		b.memberTies = []model.Tie{t}
	default:
		// unpitched
		b.elements = append(b.elements, model.Element{Kind: model.KindUnknown, QuarterLength: ql})
		b.memberTies = nil
	}
}

// extendChord adds p to the previous note or chord. The chord's tie is the
// tie of its highest member.
func (b *partBuilder) extendChord(p model.Pitch, t model.Tie) bool {
	if len(b.elements) == 0 || b.memberTies == nil {
		return false
	}
	last := &b.elements[len(b.elements)-1]
	if last.Kind == model.KindNote {
		last.Kind = model.KindChord
		last.Chord = []model.Pitch{last.Pitch}
		last.Pitch = model.Pitch{}
	}
	last.Chord = append(last.Chord, p)
	b.memberTies = append(b.memberTies, t)

	top, _ := chord.TopIndex(last.Chord)
	last.Tie = b.memberTies[top]
	return true
}

func (n *note) tie() model.Tie {
	ties := n.Ties
	if len(ties) == 0 {
		for _, nt := range n.Notations {
			ties = append(ties, nt.Tied...)
		}
	}

	var start, stop, cont bool
	for _, t := range ties {
		switch model.ParseTie(strings.TrimSpace(t.Type)) {
		case model.TieStart:
			start = true
		case model.TieStop:
			stop = true
		case model.TieContinue:
			cont = true
		}
	}
	switch {
	case cont || (start && stop):
		return model.TieContinue
	case start:
		return model.TieStart
	case stop:
		return model.TieStop
	}
	return model.TieNone
}

func (p *pitch) model() model.Pitch {
	step := strings.ToUpper(strings.TrimSpace(p.Step))
	alter := int(math.Round(p.Alter))
	return model.Pitch{
		MIDI: stepSemitones[step] + (p.Octave+1)*12 + alter,
		Name: Spell(step, alter, p.Octave),
	}
}

// Spell names a pitch with '#' for sharps and '-' for flats, e.g. "B-4".
func Spell(step string, alter, octave int) string {
	accidental := ""
	switch {
	case alter > 0:
		accidental = strings.Repeat("#", alter)
	case alter < 0:
		accidental = strings.Repeat("-", -alter)
	}
	return step + accidental + strconv.Itoa(octave)
}

func (m *metronome) quarterBPM() float64 {
	bpm := leadingNumber(m.PerMinute)
	unit, ok := beatUnits[strings.TrimSpace(m.BeatUnit)]
	if bpm <= 0 || !ok {
		return 0
	}
	unit *= 2 - math.Pow(0.5, float64(len(m.Dots)))
	return bpm * unit
}

// leadingNumber reads the first number in text such as "c. 96".
func leadingNumber(text string) float64 {
	start := strings.IndexAny(text, "0123456789")
	if start < 0 {
		return 0
	}
	end := start
	for end < len(text) && (text[end] == '.' || (text[end] >= '0' && text[end] <= '9')) {
		end++
	}
	v, err := strconv.ParseFloat(strings.TrimRight(text[start:end], "."), 64)
	if err != nil {
		return 0
	}
	return v
}
