package ratings

// Summary is the aggregate shown above the rated list. Averages skip items
// with no value for that field and are zero when nothing contributes.
type Summary struct {
	Count            int
	AvgCatalogRating float64
	AvgUserRating    float64
	AvgRuntime       float64
}

// Summarize computes a Summary over items.
func Summarize(items []Item) Summary {
	sum := Summary{Count: len(items)}

	var catalogTotal, runtimeTotal float64
	var catalogN, runtimeN, userTotal int
	for _, it := range items {
		userTotal += it.UserRating
		if it.AverageRating != nil {
			catalogTotal += *it.AverageRating
			catalogN++
		}
		if it.RuntimeMinutes != nil {
			runtimeTotal += float64(*it.RuntimeMinutes)
			runtimeN++
		}
	}

	if len(items) > 0 {
		sum.AvgUserRating = float64(userTotal) / float64(len(items))
	}
	if catalogN > 0 {
		sum.AvgCatalogRating = catalogTotal / float64(catalogN)
	}
	if runtimeN > 0 {
		sum.AvgRuntime = runtimeTotal / float64(runtimeN)
	}
	return sum
}
