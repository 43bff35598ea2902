package service

import (
	"context"
	"fmt"

	"github.com/pkordes/trip-planner/web/internal/domain"
	"github.com/pkordes/trip-planner/web/internal/repo"
)

// ExportService flattens a session's itinerary for download.
type ExportService struct {
	sessions repo.SessionRepo
}

// NewExportService constructs an ExportService backed by the provided repo.
func NewExportService(sessions repo.SessionRepo) *ExportService {
	return &ExportService{sessions: sessions}
}

// Export returns one ExportRow per activity of the session's itinerary, in
// day order then activity order. Days with no activities contribute one row
// with an empty activity. The itinerary's review is returned alongside, nil
// when there is none.
//
// Returns domain.ErrNotFound when the session holds no itinerary.
func (s *ExportService) Export(ctx context.Context, sessionID string) ([]domain.ExportRow, *domain.Review, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	it, ok := state.Itinerary()
	if !ok {
		return nil, nil, fmt.Errorf("service.ExportService.Export: itinerary: %w", domain.ErrNotFound)
	}

	rows := make([]domain.ExportRow, 0, len(it.Days))
	base := domain.ExportRow{
		Destination: it.Destination,
		StartDate:   it.StartDate,
		EndDate:     it.EndDate,
	}
	for _, day := range it.Days {
		row := base
		row.Day = day.Day
		if len(day.Activities) == 0 {
			rows = append(rows, row)
			continue
		}
		for i, activity := range day.Activities {
			row.Position = i + 1
			row.Activity = activity
			rows = append(rows, row)
		}
	}
	return rows, it.Review, nil
}
