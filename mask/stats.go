package mask

// Stats summarizes a difference field.
type Stats struct {
	MeanAbs      float64 // mean absolute difference
	MaxAbs       int     // largest absolute difference
	NonzeroRatio float64 // fraction of nonzero values
	Min          int     // smallest signed value
	Max          int     // largest signed value
}

// DiffStats computes summary statistics for a difference field. An empty
// field yields the zero Stats.
func DiffStats(diff []int16) Stats {
	if len(diff) == 0 {
		return Stats{}
	}

	var s Stats
	s.Min, s.Max = int(diff[0]), int(diff[0])
	var sumAbs, nonzero int64
	for _, d := range diff {
		v := int(d)
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		abs := v
		if abs < 0 {
			abs = -abs
		}
		if abs > s.MaxAbs {
			s.MaxAbs = abs
		}
		if abs != 0 {
			nonzero++
		}
		sumAbs += int64(abs)
	}
	s.MeanAbs = float64(sumAbs) / float64(len(diff))
	s.NonzeroRatio = float64(nonzero) / float64(len(diff))
	return s
}
