package model

type Kind uint8

const (
	KindUnknown Kind = iota
	KindRest
	KindNote
	KindChord
)

func (k Kind) String() string {
	switch k {
	case KindRest:
		return "rest"
	case KindNote:
		return "note"
	case KindChord:
		return "chord"
	}
	return "unknown"
}

type Tie uint8

const (
	TieNone Tie = iota
	TieStart
	TieContinue
	TieStop
)

func (t Tie) String() string {
	switch t {
	case TieStart:
		return "start"
	case TieContinue:
		return "continue"
	case TieStop:
		return "stop"
	}
	return ""
}

// ParseTie maps a notation tie type to a Tie. Unknown values are TieNone.
func ParseTie(s string) Tie {
	switch s {
	case "start":
		return TieStart
	case "continue":
		return TieContinue
	case "stop":
		return TieStop
	}
	return TieNone
}

// Pitch is a notated pitch. Name keeps the source spelling with octave, e.g. "B-4".
type Pitch struct {
	MIDI int
	Name string
}

// Element is one entry of a flattened part timeline.
type Element struct {
	Kind          Kind
	QuarterLength float64
	Tie           Tie

	// Pitch is set for KindNote
	Pitch Pitch
	// Chord is set for KindChord
	Chord []Pitch
}

type TempoMark struct {
	QPM float64
}

type Part struct {
	ID       string
	Name     string
	Elements []Element
}

func (p *Part) HasNotes() bool {
	for _, el := range p.Elements {
		if el.Kind == KindNote || el.Kind == KindChord {
			return true
		}
	}
	return false
}

type Score struct {
	Title  string
	Parts  []Part
	Tempos []TempoMark

	// NOTE: reader anomalies that did not stop the parse
	Warnings []string
}

// MelodyPart picks the first part with at least one note, falling back to
// the first part. Returns nil for a score without parts.
func (s *Score) MelodyPart() *Part {
	if len(s.Parts) == 0 {
		return nil
	}
	for i := range s.Parts {
		if s.Parts[i].HasNotes() {
			return &s.Parts[i]
		}
	}
	return &s.Parts[0]
}
