package pkg

import "sort"

// SortByDate returns a copy of records ordered by ResolvedDate, oldest first.
// Records with equal dates keep their relative order.
func SortByDate(records []ImageRecord) []ImageRecord {
	sorted := make([]ImageRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ResolvedDate.Before(sorted[j].ResolvedDate)
	})
	return sorted
}

// PartitionDated splits records into those with a resolved date and those without.
func PartitionDated(records []ImageRecord) (dated, undated []ImageRecord) {
	dated = make([]ImageRecord, 0, len(records))
	for _, r := range records {
		if r.Dated() {
			dated = append(dated, r)
		} else {
			undated = append(undated, r)
		}
	}
	return dated, undated
}
