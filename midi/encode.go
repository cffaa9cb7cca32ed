package midi

import (
	"bytes"
	"encoding/base64"
	"math"
	"sort"

	"github.com/jsphweid/saxchart/constants"
	"github.com/jsphweid/saxchart/model"
	"github.com/jsphweid/saxchart/util"
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type timedMessage struct {
	tick int
	msg  gomidi.Message
}

// Track builds the single note track for events at the sounding pitch.
// Each event turns into an on at its onset tick and an off at least one
// tick later; messages are ordered by tick, keeping emission order on ties.
func Track(events []model.NoteEvent, qpm float64) smf.Track {
	secondsPerQuarter := 60.0 / qpm

	msgs := make([]timedMessage, 0, 2*len(events))
	for _, ev := range events {
		key := uint8(util.Clamp(ev.SoundingMIDI, 0, 127))
		startTick := int(math.Round(ev.OnsetSeconds / secondsPerQuarter * constants.TicksPerQuarter))
		durTick := util.Max(int(math.Round(ev.QuarterLength*constants.TicksPerQuarter)), 1)
		msgs = append(msgs,
			timedMessage{startTick, gomidi.NoteOn(constants.MidiChannel, key, constants.NoteVelocity)},
			timedMessage{startTick + durTick, gomidi.NoteOff(constants.MidiChannel, key)},
		)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].tick < msgs[j].tick
	})

	var track smf.Track
	track.Add(0, smf.MetaTempo(qpm))
	track.Add(0, smf.MetaMeter(constants.MeterNumerator, constants.MeterDenominator))

	var lastTick int
	for _, m := range msgs {
		delta := util.Max(m.tick-lastTick, 0)
		track.Add(uint32(delta), m.msg)
		lastTick = m.tick
	}
	track.Close(0)
	return track
}

// Encode renders events as a single-track standard MIDI file.
func Encode(events []model.NoteEvent, qpm float64) ([]byte, error) {
	res := smf.New()
	res.TimeFormat = smf.MetricTicks(constants.TicksPerQuarter)
	if err := res.Add(Track(events, qpm)); err != nil {
		return nil, errors.Wrap(err, "adding note track")
	}

	buf := new(bytes.Buffer)
	if _, err := res.WriteTo(buf); err != nil {
		return nil, errors.Wrap(err, "writing midi file")
	}
	return buf.Bytes(), nil
}

func EncodeBase64(events []model.NoteEvent, qpm float64) (string, error) {
	dat, err := Encode(events, qpm)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(dat), nil
}
