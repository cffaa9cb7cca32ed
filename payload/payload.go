// Package payload assembles the response for one score: events, a key-state
// vector per event, and the playable MIDI rendition.
package payload

import (
	"github.com/jsphweid/saxchart/chord"
	"github.com/jsphweid/saxchart/constants"
	"github.com/jsphweid/saxchart/extract"
	"github.com/jsphweid/saxchart/fingering"
	"github.com/jsphweid/saxchart/logger"
	"github.com/jsphweid/saxchart/midi"
	"github.com/jsphweid/saxchart/model"
	"github.com/jsphweid/saxchart/musicxml"
	"github.com/jsphweid/saxchart/tempo"
	"github.com/pkg/errors"
)

type Options struct {
	TransposeSemitones int
	// DefaultQPM applies when the score has no usable tempo mark
	DefaultQPM float64
	// Table defaults to the alto sax table
	Table *fingering.Table
}

func DefaultOptions() Options {
	return Options{
		TransposeSemitones: constants.AltoSaxTransposeSemitones,
		DefaultQPM:         constants.DefaultQPM,
	}
}

// FromMusicXML parses raw MusicXML (or .mxl) bytes and builds the payload.
func FromMusicXML(raw []byte, opts Options) (*model.Payload, error) {
	score, err := musicxml.Parse(raw)
	if err != nil {
		return nil, err
	}
	return Build(score, opts)
}

// Build converts a score. A nil score is treated as one without parts.
func Build(score *model.Score, opts Options) (*model.Payload, error) {
	if score == nil {
		score = &model.Score{}
	}
	table := opts.Table
	if table == nil {
		table = fingering.Alto()
	}

	qpm := tempo.Select(score, opts.DefaultQPM)
	spq := tempo.SecondsPerQuarter(qpm)

	var elements []model.Element
	if part := score.MelodyPart(); part != nil {
		elements = part.Elements
		logCollapsedChords(part)
	}

	events, warnings := extract.Extract(elements, extract.Options{
		SecondsPerQuarter:  spq,
		TransposeSemitones: opts.TransposeSemitones,
	})

	written := make([]int, 0, len(events))
	fingerings := make([]model.Fingering, 0, len(events))
	for _, ev := range events {
		keys, _ := table.Resolve(ev.WrittenMIDI)
		fingerings = append(fingerings, model.Fingering{EventIndex: ev.Index, KeyStates: keys})
		written = append(written, ev.WrittenMIDI)
	}

	all := make([]string, 0, len(score.Warnings)+len(warnings)+1)
	all = append(all, score.Warnings...)
	all = append(all, warnings...)
	if w := table.UnsupportedWarning(written); w != "" {
		all = append(all, w)
	}

	encoded, err := midi.EncodeBase64(events, qpm)
	if err != nil {
		return nil, errors.Wrap(err, "encoding midi")
	}

	return &model.Payload{
		Metadata: model.Metadata{
			QPM:                qpm,
			SecondsPerQuarter:  spq,
			TransposeSemitones: opts.TransposeSemitones,
			Warnings:           all,
		},
		Events:     events,
		Fingerings: fingerings,
		MidiBase64: encoded,
	}, nil
}

func logCollapsedChords(part *model.Part) {
	for i, el := range part.Elements {
		if el.Kind != model.KindChord {
			continue
		}
		top, ok := chord.Top(el.Chord)
		if !ok {
			continue
		}
		logger.Debug("Collapsed chord to top note", logger.Fields{
			"part":    part.ID,
			"element": i,
			"chord":   chord.CreateChordKey(el.Chord),
			"top":     top.Name,
		})
	}
}
