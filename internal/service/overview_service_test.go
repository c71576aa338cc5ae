package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bit2byte/mentorhub-api/internal/models"
)

func TestOverviewCounters(t *testing.T) {
	assignments := newStubAssignmentRepo(
		models.Assignment{ID: 1, Title: "Binary Search"},
		models.Assignment{ID: 2, Title: "Linked Lists"},
		models.Assignment{ID: 3, Title: "Graphs"},
	)
	require.NoError(t, assignments.UpsertResponse(context.Background(), &models.Response{
		AssignmentID: 1, StudentID: student.ID, Status: models.ResponseStatusSolved,
	}))
	require.NoError(t, assignments.UpsertResponse(context.Background(), &models.Response{
		AssignmentID: 2, StudentID: student.ID, Status: models.ResponseStatusHavingDoubt,
	}))

	doubts := newMemDoubtRepo()
	require.NoError(t, doubts.Create(context.Background(), &models.Doubt{AssignmentID: 2, StudentID: student.ID}))
	require.NoError(t, doubts.Create(context.Background(), &models.Doubt{AssignmentID: 3, StudentID: student.ID, Resolved: true}))

	svc := NewOverviewService(assignments, doubts, nil, time.Minute, zerolog.Nop())

	overview, err := svc.GetOverview(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), overview.TotalAssignments)
	require.Equal(t, int64(1), overview.Solved)
	require.Equal(t, int64(2), overview.Pending)
	require.Equal(t, int64(1), overview.OpenDoubts)
	require.Equal(t, int64(1), overview.ResolvedDoubts)
}

func TestOverviewCache(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	assignments := newStubAssignmentRepo(models.Assignment{ID: 1, Title: "Binary Search"})
	doubts := newMemDoubtRepo()

	svc := NewOverviewService(assignments, doubts, redisClient, time.Minute, zerolog.Nop())

	first, err := svc.GetOverview(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), first.TotalAssignments)

	// mutate the store; the cached counters keep the previous answer
	require.NoError(t, assignments.Create(context.Background(), &models.Assignment{Title: "Linked Lists"}))

	cached, err := svc.GetOverview(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), cached.TotalAssignments)

	// after the cache expires the new counts surface
	server.FastForward(2 * time.Minute)

	fresh, err := svc.GetOverview(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), fresh.TotalAssignments)
}
