package model

type Fingering struct {
	EventIndex int             `json:"eventIndex"`
	KeyStates  map[string]bool `json:"keyStates"`
}

type Payload struct {
	Metadata   Metadata    `json:"metadata"`
	Events     []NoteEvent `json:"events"`
	Fingerings []Fingering `json:"fingerings"`
	MidiBase64 string      `json:"midiBase64"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
