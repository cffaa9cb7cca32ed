package midi

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(filepath string) (*smf.SMF, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return &smf.SMF{}, errors.Wrap(err, "Error reading midi file")
	}
	return Read(bytes.NewReader(dat))
}

func Read(r io.Reader) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if rec := recover(); rec != nil {
			s = &smf.SMF{}
			e = fmt.Errorf("Error parsing midi file... %v", rec)
		}
	}()

	res, err := smf.ReadFrom(r)
	if err != nil {
		return &smf.SMF{}, errors.Wrap(err, "Error parsing midi file")
	}
	return res, nil
}

type Note struct {
	StartTick int64
	EndTick   int64
	Key       uint8
}

// Summary is what a decoded file says about timing and notes.
type Summary struct {
	Resolution  uint16
	QPM         float64
	Numerator   uint8
	Denominator uint8
	Notes       []Note
}

// Summarize pairs note on/off messages per key across all tracks. Notes are
// in note-off order.
func Summarize(s *smf.SMF) Summary {
	var res Summary
	if tf, ok := s.TimeFormat.(smf.MetricTicks); ok {
		res.Resolution = uint16(tf)
	}

	for _, track := range s.Tracks {
		var absTicks int64
		open := make(map[uint8]int64)
		for _, event := range track {
			absTicks += int64(event.Delta)
			var bpm float64
			var num, denom uint8
			var channel, key, velocity uint8
			switch {
			case event.Message.GetMetaTempo(&bpm):
				if res.QPM == 0 {
					res.QPM = bpm
				}
			case event.Message.GetMetaMeter(&num, &denom):
				res.Numerator, res.Denominator = num, denom
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				if velocity > 0 {
					open[key] = absTicks
					break
				}
				res.Notes = closeNote(res.Notes, open, key, absTicks)
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				res.Notes = closeNote(res.Notes, open, key, absTicks)
			}
		}
	}
	return res
}

func closeNote(notes []Note, open map[uint8]int64, key uint8, tick int64) []Note {
	start, ok := open[key]
	if !ok {
		return notes
	}
	delete(open, key)
	return append(notes, Note{StartTick: start, EndTick: tick, Key: key})
}
