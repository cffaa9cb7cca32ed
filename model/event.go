package model

type NoteEvent struct {
	Index         int     `json:"idx"`
	OnsetSeconds  float64 `json:"t0_sec"`
	DurSeconds    float64 `json:"dur_sec"`
	QuarterLength float64 `json:"ql"`
	WrittenMIDI   int     `json:"midi_written"`
	SoundingMIDI  int     `json:"midi_sounding"`
	Spelling      string  `json:"spelling"`
}

// End is the absolute time at which the event stops sounding.
func (e NoteEvent) End() float64 {
	return e.OnsetSeconds + e.DurSeconds
}

type Metadata struct {
	QPM                float64  `json:"qpm"`
	SecondsPerQuarter  float64  `json:"secondsPerQuarter"`
	TransposeSemitones int      `json:"transposeSemitonesSounding"`
	Warnings           []string `json:"warnings"`
}
