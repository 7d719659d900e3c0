package pkg

import (
	"fmt"
)

// Duplicate holds information about a discarded record and the record kept in its place.
type Duplicate struct {
	Kept      ImageRecord
	Discarded ImageRecord
	Reason    string
}

type dedupKey struct {
	name string
	size int64
}

// Deduplicate removes records sharing the same file name and byte size. The record
// with the earliest ResolvedDate survives; on a tie the one seen first wins. Records
// without a known size are never considered duplicates. The returned slice keeps
// input order and the input is left untouched.
func Deduplicate(records []ImageRecord) ([]ImageRecord, []Duplicate) {
	keptIndex := make(map[dedupKey]int)
	winner := make([]bool, len(records))

	for i, rec := range records {
		if rec.Attributes.Size == nil {
			winner[i] = true
			continue
		}
		key := dedupKey{name: rec.FileName, size: *rec.Attributes.Size}
		j, seen := keptIndex[key]
		if !seen {
			keptIndex[key] = i
			winner[i] = true
			continue
		}
		if rec.ResolvedDate.Before(records[j].ResolvedDate) {
			winner[j] = false
			winner[i] = true
			keptIndex[key] = i
		}
	}

	unique := make([]ImageRecord, 0, len(records))
	duplicates := []Duplicate{}
	for i, rec := range records {
		if winner[i] {
			unique = append(unique, rec)
			continue
		}
		kept := records[keptIndex[dedupKey{name: rec.FileName, size: *rec.Attributes.Size}]]
		duplicates = append(duplicates, Duplicate{
			Kept:      kept,
			Discarded: rec,
			Reason:    duplicateReason(kept, rec),
		})
	}
	return unique, duplicates
}

func duplicateReason(kept, discarded ImageRecord) string {
	base := fmt.Sprintf("Same file name and size (%d bytes)", *kept.Attributes.Size)
	switch {
	case kept.ResolvedDate.Before(discarded.ResolvedDate):
		return base + ", earlier date kept"
	default:
		return base + ", first occurrence kept"
	}
}
