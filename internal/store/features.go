package store

import (
	"math"

	"github.com/cwbudde/algo-resp/measure/impedance"
)

// channelJSON is the stored form of impedance.ChannelStats. Non-finite
// values are null.
type channelJSON struct {
	Insp         *float64 `json:"insp"`
	Exp          *float64 `json:"exp"`
	Total        *float64 `json:"total"`
	Min          *float64 `json:"min"`
	Max          *float64 `json:"max"`
	Range        *float64 `json:"max_min"`
	InspMinusExp *float64 `json:"insp_exp"`
}

func encodeFeatures(channels map[string]impedance.ChannelStats) map[string]channelJSON {
	out := make(map[string]channelJSON, len(channels))
	for name, cs := range channels {
		out[name] = channelJSON{
			Insp:         finite(cs.Insp),
			Exp:          finite(cs.Exp),
			Total:        finite(cs.Total),
			Min:          finite(cs.Min),
			Max:          finite(cs.Max),
			Range:        finite(cs.Range),
			InspMinusExp: finite(cs.InspMinusExp),
		}
	}
	return out
}

func decodeFeatures(stored map[string]channelJSON) map[string]impedance.ChannelStats {
	out := make(map[string]impedance.ChannelStats, len(stored))
	for name, c := range stored {
		out[name] = impedance.ChannelStats{
			Insp:         orNaN(c.Insp),
			Exp:          orNaN(c.Exp),
			Total:        orNaN(c.Total),
			Min:          orNaN(c.Min),
			Max:          orNaN(c.Max),
			Range:        orNaN(c.Range),
			InspMinusExp: orNaN(c.InspMinusExp),
		}
	}
	return out
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
