package export

import (
	"math"
	"strconv"

	"github.com/cwbudde/algo-resp/analysis"
	"github.com/cwbudde/algo-resp/measure/impedance"
)

// Breath timing columns appended to the wide table.
var breathColumns = []string{
	"inspiration_start", "inspiration_end", "expiration_start", "expiration_end",
	"inspiration_start_time", "inspiration_end_time", "expiration_start_time", "expiration_end_time",
	"inspiration_duration", "expiration_duration", "total_duration",
}

// WideHeader returns the wide table header for the given channels.
func WideHeader(columns []string) []string {
	header := []string{"breath_index"}
	for _, c := range columns {
		for _, s := range Stats {
			header = append(header, c+"_"+s)
		}
	}
	header = append(header, "INSP_Volume", "EXP_Volume")
	return append(header, breathColumns...)
}

// Wide returns one row per breath. Breaths without features have empty
// feature cells.
func Wide(res *analysis.Result) ([]string, [][]string, error) {
	if err := requireTable(res); err != nil {
		return nil, nil, err
	}

	header := WideHeader(res.Columns)
	rows := make([][]string, 0, len(res.Entries))

	for _, e := range res.Entries {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(e.Breath.Index))

		for _, c := range res.Columns {
			row = append(row, statCells(e.Features, c)...)
		}

		if e.Features != nil {
			row = append(row, formatFloat(e.Features.InspVolume), formatFloat(e.Features.ExpVolume))
		} else {
			row = append(row, "", "")
		}

		b := e.Breath
		row = append(row,
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
		)

		rows = append(rows, row)
	}

	return header, rows, nil
}

func statCells(row *impedance.Row, channel string) []string {
	cells := make([]string, len(Stats))
	if row == nil {
		return cells
	}

	cs, ok := row.Channels[channel]
	if !ok {
		return cells
	}

	for i, s := range Stats {
		cells[i] = formatFloat(statValue(cs, s))
	}

	return cells
}

func statValue(cs impedance.ChannelStats, stat string) float64 {
	switch stat {
	case StatInsp:
		return cs.Insp
	case StatExp:
		return cs.Exp
	case StatTotal:
		return cs.Total
	case StatMin:
		return cs.Min
	case StatMax:
		return cs.Max
	case StatRange:
		return cs.Range
	case StatInspMinusExp:
		return cs.InspMinusExp
	default:
		return math.NaN()
	}
}
