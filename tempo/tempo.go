package tempo

import (
	"github.com/jsphweid/saxchart/constants"
	"github.com/jsphweid/saxchart/model"
)

// Select returns the first usable tempo marking of the score in quarter
// notes per minute, or fallback when there is none.
func Select(s *model.Score, fallback float64) float64 {
	if fallback <= 0 {
		fallback = constants.DefaultQPM
	}
	if s == nil {
		return fallback
	}
	for _, mark := range s.Tempos {
		if mark.QPM > 0 {
			return mark.QPM
		}
	}
	return fallback
}

func SecondsPerQuarter(qpm float64) float64 {
	return 60.0 / qpm
}
