package domain

// ExportRow is a single row in the itinerary export.
// It is a flat, denormalized view: one row per activity, with the trip fields
// repeated for every activity. A day with no activities yields one row with
// Position 0 and an empty Activity so the day still appears.
type ExportRow struct {
	// Trip fields, repeated on every row.
	Destination string
	StartDate   string
	EndDate     string

	// Day fields.
	Day      int
	Position int // 1-based index of the activity within its day
	Activity string
}
