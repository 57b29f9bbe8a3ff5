package scoring

// Frontier returns the IDs of the destinations not dominated on the given
// criteria, in dataset order. Higher values are treated as better.
// A destination is dominated if another one is >= on every criterion and
// strictly better on at least one.
// O(n^2) dominance check, fine for destination lists.
func Frontier(ds Dataset, criteria []string) ([]string, error) {
	for _, c := range criteria {
		if _, err := ds.Column(c); err != nil {
			return nil, err
		}
	}
	if ds.Len() <= 1 {
		ids := make([]string, 0, ds.Len())
		for _, r := range ds.Records {
			ids = append(ids, r.ID)
		}
		return ids, nil
	}

	var frontier []string
	for i := range ds.Records {
		dominated := false
		for j := range ds.Records {
			if i == j {
				continue
			}
			if dominates(ds.Records[j], ds.Records[i], criteria) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, ds.Records[i].ID)
		}
	}
	return frontier, nil
}

// dominates returns true if a dominates b.
func dominates(a, b Record, criteria []string) bool {
	strictly := false
	for _, c := range criteria {
		if a.Values[c] < b.Values[c] {
			return false
		}
		if a.Values[c] > b.Values[c] {
			strictly = true
		}
	}
	return strictly
}
