// Package fingering maps written alto sax pitches to key states.
//
// The table is parsed once from alto.yaml when the package is initialized
// and is read-only afterwards, so lookups need no locking.
package fingering

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jsphweid/saxchart/util"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed alto.yaml
var altoYAML []byte

// KeyStates has an entry for every key of the instrument, true when pressed.
type KeyStates map[string]bool

type Entry struct {
	MIDI    int      `yaml:"midi"`
	Name    string   `yaml:"name"`
	Pressed []string `yaml:"pressed"`
}

// Register is an inclusive range of written pitches, e.g. the palm keys.
type Register struct {
	Name    string `yaml:"name"`
	Lowest  int    `yaml:"lowest"`
	Highest int    `yaml:"highest"`
}

type tableFile struct {
	Instrument string     `yaml:"instrument"`
	Keys       []string   `yaml:"keys"`
	Registers  []Register `yaml:"registers"`
	Fingerings []Entry    `yaml:"fingerings"`
}

type Table struct {
	Instrument string
	keys       []string
	registers  []Register
	entries    map[int]Entry
}

var alto *Table

func init() {
	t, err := ParseTable(altoYAML)
	if err != nil {
		panic("Could not load alto fingering table: " + err.Error())
	}
	alto = t
}

// ParseTable builds a table from its YAML form. Every pressed key must be
// declared and every pitch may appear only once.
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decoding fingering table")
	}
	if len(f.Keys) == 0 {
		return nil, errors.New("fingering table declares no keys")
	}

	declared := make(map[string]bool, len(f.Keys))
	for _, k := range f.Keys {
		if declared[k] {
			return nil, errors.Errorf("key %q declared twice", k)
		}
		declared[k] = true
	}

	entries := make(map[int]Entry, len(f.Fingerings))
	for _, e := range f.Fingerings {
		if _, dup := entries[e.MIDI]; dup {
			return nil, errors.Errorf("pitch %d has more than one fingering", e.MIDI)
		}
		for _, k := range e.Pressed {
			if !declared[k] {
				return nil, errors.Errorf("pitch %d presses unknown key %q", e.MIDI, k)
			}
		}
		entries[e.MIDI] = e
	}

	for i, r := range f.Registers {
		if r.Lowest > r.Highest {
			return nil, errors.Errorf("register %q ends below its start", r.Name)
		}
		if i > 0 && r.Lowest <= f.Registers[i-1].Highest {
			return nil, errors.Errorf("register %q overlaps %q", r.Name, f.Registers[i-1].Name)
		}
	}

	return &Table{Instrument: f.Instrument, keys: f.Keys, registers: f.Registers, entries: entries}, nil
}

// Registers lists the table's registers from low to high.
func (t *Table) Registers() []Register {
	return append([]Register(nil), t.registers...)
}

// Register names the register a written pitch falls in, or "" for none.
func (t *Table) Register(writtenMIDI int) string {
	for _, r := range t.registers {
		if writtenMIDI >= r.Lowest && writtenMIDI <= r.Highest {
			return r.Name
		}
	}
	return ""
}

// Keys lists the key set in table order.
func (t *Table) Keys() []string {
	return append([]string(nil), t.keys...)
}

func (t *Table) Empty() KeyStates {
	res := make(KeyStates, len(t.keys))
	for _, k := range t.keys {
		res[k] = false
	}
	return res
}

// Resolve returns a fresh key-state vector for a written pitch. Unmapped
// pitches get all keys up and supported=false.
func (t *Table) Resolve(writtenMIDI int) (KeyStates, bool) {
	res := t.Empty()
	e, ok := t.entries[writtenMIDI]
	if !ok {
		return res, false
	}
	for _, k := range e.Pressed {
		res[k] = true
	}
	return res, true
}

func (t *Table) IsSupported(writtenMIDI int) bool {
	_, ok := t.entries[writtenMIDI]
	return ok
}

// Entries returns the table sorted by pitch.
func (t *Table) Entries() []Entry {
	res := make([]Entry, 0, len(t.entries))
	for _, midi := range util.GetKeysSorted(t.entries) {
		res = append(res, t.entries[midi])
	}
	return res
}

// UnsupportedWarning lists every distinct unmapped pitch in pitches, sorted,
// in a single message. Returns "" when all pitches are mapped.
func (t *Table) UnsupportedWarning(pitches []int) string {
	var unsupported []int
	for _, p := range pitches {
		if !t.IsSupported(p) {
			unsupported = append(unsupported, p)
		}
	}
	if len(unsupported) == 0 {
		return ""
	}

	var nums []string
	for _, p := range util.SortedUnique(unsupported) {
		nums = append(nums, fmt.Sprint(p))
	}
	return fmt.Sprintf("Unsupported written MIDI notes (no fingering mapping): [%s]. "+
		"Visualization will show all keys up for these notes.", strings.Join(nums, ", "))
}

// Alto is the process-wide alto sax table.
func Alto() *Table {
	return alto
}

func Keys() []string {
	return alto.Keys()
}

func Resolve(writtenMIDI int) (KeyStates, bool) {
	return alto.Resolve(writtenMIDI)
}

func IsSupported(writtenMIDI int) bool {
	return alto.IsSupported(writtenMIDI)
}

func UnsupportedWarning(pitches []int) string {
	return alto.UnsupportedWarning(pitches)
}

// Range reports the lowest and highest mapped pitch.
func (t *Table) Range() (int, int) {
	midis := util.GetKeys(t.entries)
	if len(midis) == 0 {
		return 0, 0
	}
	sort.Ints(midis)
	return midis[0], midis[len(midis)-1]
}
