package core

// DateRange is an inclusive calendar-day interval.
type DateRange struct {
	Start Date
	End   Date
}

// Inverted reports whether Start is after End.
func (r DateRange) Inverted() bool {
	return r.Start.After(r.End)
}

// Contains reports whether d lies in [Start, End].
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Key identifies the range in caches and logs.
func (r DateRange) Key() string {
	return r.Start.String() + "|" + r.End.String()
}

func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// FilterByDate returns the records whose date lies in r, in input order.
// An inverted range yields an empty result.
func FilterByDate(records []UsageRecord, r DateRange) []UsageRecord {
	out := make([]UsageRecord, 0)
	if r.Inverted() {
		return out
	}
	for _, rec := range records {
		if r.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out
}
