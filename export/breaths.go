package export

import (
	"strconv"

	"github.com/cwbudde/algo-resp/analysis"
)

// BreathHeader is the header of the breath table.
var BreathHeader = []string{
	"breath_index",
	"inspiration_start", "inspiration_end", "expiration_start", "expiration_end",
	"inspiration_start_time", "inspiration_end_time", "expiration_start_time", "expiration_end_time",
	"inspiration_duration", "expiration_duration", "total_duration",
	"inspiration_volume", "expiration_volume", "total_volume",
	"inspiration_amplitude", "expiration_amplitude", "total_amplitude",
}

// Breaths returns the breath table with the segmentation features.
func Breaths(res *analysis.Result) ([]string, [][]string, error) {
	if err := requireTable(res); err != nil {
		return nil, nil, err
	}

	rows := make([][]string, 0, res.Table.Len())
	for _, b := range res.Table.Breaths {
		rows = append(rows, []string{
			strconv.Itoa(b.Index),
			strconv.Itoa(b.InspirationStart),
			strconv.Itoa(b.InspirationEnd),
			strconv.Itoa(b.ExpirationStart),
			strconv.Itoa(b.ExpirationEnd),
			formatFloat(b.InspirationStartTime),
			formatFloat(b.InspirationEndTime),
			formatFloat(b.ExpirationStartTime),
			formatFloat(b.ExpirationEndTime),
			formatFloat(b.InspirationDuration),
			formatFloat(b.ExpirationDuration),
			formatFloat(b.TotalDuration),
			formatFloat(b.InspirationVolume),
			formatFloat(b.ExpirationVolume),
			formatFloat(b.TotalVolume),
			formatFloat(b.InspirationAmplitude),
			formatFloat(b.ExpirationAmplitude),
			formatFloat(b.TotalAmplitude),
		})
	}

	return BreathHeader, rows, nil
}
