package constants

const ServiceName = "saxchart"

// Alto sax sounds a major sixth below written pitch
const AltoSaxTransposeSemitones = -9

const DefaultQPM = 120.0

// MinQuarterLength is what non-positive note durations are clamped to (a 256th note)
const MinQuarterLength = 1.0 / 64

const (
	TicksPerQuarter  = 480
	NoteVelocity     = 90
	MidiChannel      = 0
	MeterNumerator   = 4
	MeterDenominator = 4
)

const DefaultMaxUploadBytes = 10 * 1024 * 1024

var DefaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}
