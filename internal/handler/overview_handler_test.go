package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestStudentOverviewHTTP(t *testing.T) {
	app, db := setupApp(t)
	assignment := seedAssignment(t, db)

	req := jsonRequest(t, http.MethodPut, fmt.Sprintf("/api/v1/assignments/%d/status", assignment.ID), fiber.Map{
		"responseStatus": "not understanding",
		"learningNotes":  "lost",
	})
	asStudent(req)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = jsonRequest(t, http.MethodGet, "/api/v1/student/overview", nil)
	asStudent(req)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var overview struct {
		TotalAssignments int64 `json:"totalAssignments"`
		Solved           int64 `json:"solved"`
		Pending          int64 `json:"pending"`
		OpenDoubts       int64 `json:"openDoubts"`
	}
	decodeEnvelope(t, resp, &overview)
	require.Equal(t, int64(1), overview.TotalAssignments)
	require.Equal(t, int64(0), overview.Solved)
	require.Equal(t, int64(1), overview.Pending)
	require.Equal(t, int64(1), overview.OpenDoubts)

	// the overview is a student surface
	req = jsonRequest(t, http.MethodGet, "/api/v1/student/overview", nil)
	asMentor(req)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
