package optimizer

// Stats counts bytes before and after optimization. Values are summed by
// the caller, nothing is accumulated globally.
type Stats struct {
	Original  int64
	Optimized int64
}

func (s Stats) Add(o Stats) Stats {
	return Stats{Original: s.Original + o.Original, Optimized: s.Optimized + o.Optimized}
}

// Sum adds up a list of stats.
func Sum(stats ...Stats) Stats {
	var total Stats
	for _, s := range stats {
		total = total.Add(s)
	}
	return total
}
