package musicxml

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

// scorePartwise holds the parts of a MusicXML document this reader uses
type scorePartwise struct {
	XMLName       xml.Name `xml:"score-partwise"`
	Work          work     `xml:"work"`
	MovementTitle string   `xml:"movement-title"`
	PartList      partList `xml:"part-list"`
	Parts         []part   `xml:"part"`
}

type work struct {
	Title string `xml:"work-title"`
}

type partList struct {
	ScoreParts []scorePart `xml:"score-part"`
}

type scorePart struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"part-name"`
}

type part struct {
	ID       string    `xml:"id,attr"`
	Measures []measure `xml:"measure"`
}

// measure keeps its children in document order; only the ones that affect
// timing, pitch or tempo are kept.
type measure struct {
	Number  string
	Entries []interface{}
}

func (m *measure) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "number" {
			m.Number = attr.Value
		}
	}

	for {
		token, err := d.Token()
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			var entry interface{}
			switch t.Name.Local {
			case "attributes":
				entry = &attributes{}
			case "note":
				entry = &note{}
			case "forward":
				entry = &forward{}
			case "backup":
				entry = &backup{}
			case "sound":
				entry = &sound{}
			case "direction":
				entry = &direction{}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			if err := d.DecodeElement(entry, &t); err != nil {
				return err
			}
			m.Entries = append(m.Entries, entry)
		}
	}
}

type attributes struct {
	Divisions float64 `xml:"divisions"`
}

type note struct {
	Grace     *struct{}   `xml:"grace"`
	Chord     *struct{}   `xml:"chord"`
	Rest      *struct{}   `xml:"rest"`
	Pitch     *pitch      `xml:"pitch"`
	Duration  float64     `xml:"duration"`
	Voice     string      `xml:"voice"`
	Ties      []tie       `xml:"tie"`
	Notations []notations `xml:"notations"`
}

type tie struct {
	Type string `xml:"type,attr"`
}

type notations struct {
	Tied []tie `xml:"tied"`
}

type pitch struct {
	Step   string  `xml:"step"`
	Alter  float64 `xml:"alter"`
	Octave int     `xml:"octave"`
}

type forward struct {
	Duration float64 `xml:"duration"`
	Voice    string  `xml:"voice"`
}

type backup struct {
	Duration float64 `xml:"duration"`
}

type sound struct {
	Tempo float64 `xml:"tempo,attr"`
}

type direction struct {
	Types []directionType `xml:"direction-type"`
	Sound *sound          `xml:"sound"`
}

type directionType struct {
	Metronome *metronome `xml:"metronome"`
}

type metronome struct {
	BeatUnit  string     `xml:"beat-unit"`
	Dots      []struct{} `xml:"beat-unit-dot"`
	PerMinute string     `xml:"per-minute"`
}

func decode(r io.Reader) (*scorePartwise, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	for {
		token, err := dec.Token()
		if err == io.EOF {
			return nil, errors.Wrap(ErrNotMusicXML, "no root element")
		}
		if err != nil {
			return nil, errors.Wrap(ErrNotMusicXML, err.Error())
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "score-partwise" {
			return nil, errors.Wrapf(ErrUnsupportedRoot, "<%s>", start.Name.Local)
		}
		var doc scorePartwise
		if err := dec.DecodeElement(&doc, &start); err != nil {
			return nil, errors.Wrap(err, "decoding score-partwise")
		}
		return &doc, nil
	}
}
