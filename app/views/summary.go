package views

// Summary is reported after a run. Synthetic is always true for values
// produced by this package.
type Summary struct {
	Count     int     `json:"count"`
	Min       int     `json:"min"`
	Max       int     `json:"max"`
	Mean      float64 `json:"mean"`
	Synthetic bool    `json:"synthetic"`
}

func Summarize(values []int) Summary {
	s := Summary{Count: len(values), Synthetic: true}
	if len(values) == 0 {
		return s
	}

	s.Min, s.Max = values[0], values[0]
	total := 0
	for _, v := range values {
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
		total += v
	}
	s.Mean = float64(total) / float64(len(values))
	return s
}
