package export

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-resp/analysis"
)

// TallChannels are the channel columns of the tall table.
var TallChannels = []string{"R5-19", "R5", "R19", "X5"}

// TallSegments are the rows written per breath, in order.
var TallSegments = []string{StatInsp, StatExp, StatInspMinusExp, StatTotal, StatMax, StatMin, StatRange}

// TallHeader is the header of the tall table.
func TallHeader() []string {
	header := []string{"BREATH_INDEX", "SEGMENT"}
	header = append(header, TallChannels...)
	return append(header,
		"INSP_VOLUME", "EXP_VOLUME",
		"INSPIRATION_START", "INSPIRATION_END", "EXPIRATION_START", "EXPIRATION_END",
	)
}

// Reshape returns the tall table: one row per breath and segment, with a
// blank row between breaths. Volumes and boundaries appear only on the
// INSP row of each breath.
func Reshape(res *analysis.Result) ([]string, [][]string, error) {
	if err := requireTable(res); err != nil {
		return nil, nil, err
	}

	var missing []string
	for _, c := range TallChannels {
		if !slices.Contains(res.Columns, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	header := TallHeader()
	rows := make([][]string, 0, len(res.Entries)*(len(TallSegments)+1))

	for i, e := range res.Entries {
		if i > 0 {
			rows = append(rows, make([]string, len(header)))
		}

		for _, seg := range TallSegments {
			row := make([]string, 0, len(header))
			row = append(row, strconv.Itoa(e.Breath.Index), seg)

			for _, c := range TallChannels {
				cell := ""
				if e.Features != nil {
					if cs, ok := e.Features.Channels[c]; ok {
						cell = formatFloat(statValue(cs, seg))
					}
				}
				row = append(row, cell)
			}

			if seg == StatInsp {
				b := e.Breath
				insp, exp := "", ""
				if e.Features != nil {
					insp, exp = formatFloat(e.Features.InspVolume), formatFloat(e.Features.ExpVolume)
				}
				row = append(row, insp, exp,
					strconv.Itoa(b.InspirationStart),
					strconv.Itoa(b.InspirationEnd),
					strconv.Itoa(b.ExpirationStart),
					strconv.Itoa(b.ExpirationEnd),
				)
			} else {
				row = append(row, make([]string, 6)...)
			}

			rows = append(rows, row)
		}
	}

	return header, rows, nil
}
