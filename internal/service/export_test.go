package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/web/internal/domain"
	"github.com/pkordes/trip-planner/web/internal/repo"
	"github.com/pkordes/trip-planner/web/internal/service"
)

// seedItinerary stores it as the session's successful outcome.
func seedItinerary(t *testing.T, sessions repo.SessionRepo, it domain.Itinerary) {
	t.Helper()
	_, err := sessions.Update(context.Background(), sessionID, func(s domain.ViewState) domain.ViewState {
		return s.BeginSubmit().ReceiveResult(it)
	})
	require.NoError(t, err)
}

func TestExportService_Export_OneRowPerActivity(t *testing.T) {
	sessions := repo.NewMemorySessionRepo(0)
	seedItinerary(t, sessions, domain.Itinerary{
		Destination: "Paris",
		StartDate:   "2024-06-01",
		EndDate:     "2024-06-02",
		Days: []domain.DayPlan{
			{Day: 1, Activities: []string{"Louvre", "Seine cruise"}},
			{Day: 2, Activities: []string{"Versailles"}},
		},
	})
	svc := service.NewExportService(sessions)

	rows, review, err := svc.Export(context.Background(), sessionID)

	require.NoError(t, err)
	assert.Nil(t, review)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.ExportRow{
		Destination: "Paris", StartDate: "2024-06-01", EndDate: "2024-06-02",
		Day: 1, Position: 1, Activity: "Louvre",
	}, rows[0])
	assert.Equal(t, 2, rows[1].Position)
	assert.Equal(t, "Seine cruise", rows[1].Activity)
	assert.Equal(t, 2, rows[2].Day)
	assert.Equal(t, 1, rows[2].Position)
}

func TestExportService_Export_DayWithoutActivities(t *testing.T) {
	sessions := repo.NewMemorySessionRepo(0)
	seedItinerary(t, sessions, domain.Itinerary{
		Destination: "Paris",
		Days:        []domain.DayPlan{{Day: 1, Activities: []string{}}},
	})
	svc := service.NewExportService(sessions)

	rows, _, err := svc.Export(context.Background(), sessionID)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Day)
	assert.Zero(t, rows[0].Position)
	assert.Empty(t, rows[0].Activity)
}

func TestExportService_Export_EmptyItinerary(t *testing.T) {
	sessions := repo.NewMemorySessionRepo(0)
	seedItinerary(t, sessions, domain.Itinerary{Destination: "Paris", Days: []domain.DayPlan{}})
	svc := service.NewExportService(sessions)

	rows, _, err := svc.Export(context.Background(), sessionID)

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestExportService_Export_ReturnsReview(t *testing.T) {
	sessions := repo.NewMemorySessionRepo(0)
	seedItinerary(t, sessions, domain.Itinerary{
		Destination: "Paris",
		Days:        []domain.DayPlan{},
		Review:      &domain.Review{Review: "Great plan", Suggestions: []string{"Add Versailles"}},
	})
	svc := service.NewExportService(sessions)

	_, review, err := svc.Export(context.Background(), sessionID)

	require.NoError(t, err)
	require.NotNil(t, review)
	assert.Equal(t, "Great plan", review.Review)
}

func TestExportService_Export_NoItinerary(t *testing.T) {
	cases := map[string]func(domain.ViewState) domain.ViewState{
		"idle":    func(s domain.ViewState) domain.ViewState { return s },
		"pending": func(s domain.ViewState) domain.ViewState { return s.BeginSubmit() },
		"failure": func(s domain.ViewState) domain.ViewState { return s.ReceiveFailure("down") },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			sessions := repo.NewMemorySessionRepo(0)
			_, err := sessions.Update(context.Background(), sessionID, fn)
			require.NoError(t, err)

			_, _, err = service.NewExportService(sessions).Export(context.Background(), sessionID)

			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}
