package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackhub/internal/judging/models"
	"hackhub/internal/judging/service"
	judgingstore "hackhub/internal/judging/store"
	projectmodels "hackhub/internal/project/models"
	projectstore "hackhub/internal/project/store"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/tx"
)

func TestEvaluate_TwentyFirstEvaluationRejected(t *testing.T) {
	ctx := context.Background()
	assignments := judgingstore.NewInMemory()
	projects := projectstore.NewInMemory()
	svc := service.New(assignments, projects, nil, nil, service.WithTx(tx.NewInMemory()))

	eventID := id.NewEventID()
	judge := id.Actor{ID: id.NewUserID(), Role: id.RoleJudge}
	a, err := models.NewAssignment(id.NewAssignmentID(), judge.ID, eventID, "", time.Now())
	require.NoError(t, err)
	require.NoError(t, assignments.Create(ctx, a))

	var last *projectmodels.Project
	for i := 0; i <= models.WorkloadCap; i++ {
		p, err := projectmodels.NewProject(id.NewProjectID(), eventID, id.NewUserID(),
			projectmodels.Fields{Title: "Project Number"}, time.Now())
		require.NoError(t, err)
		require.NoError(t, projects.Create(ctx, p))
		last = p

		_, err = svc.Evaluate(ctx, judge, service.Evaluation{ProjectID: p.ID, EventID: eventID, Score: 65})
		if i < models.WorkloadCap {
			require.NoError(t, err, "evaluation %d", i+1)
		} else {
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
			assert.Equal(t, dErrors.ReasonWorkloadCap, dErrors.ReasonOf(err))
		}
	}

	stored, err := assignments.FindByUserAndEvent(ctx, judge.ID, eventID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkloadCap, stored.EvaluationsPerformed, "rejected evaluation must not move the counter")

	untouched, err := projects.FindByID(ctx, last.ID)
	require.NoError(t, err)
	assert.Equal(t, projectmodels.StatusSubmitted, untouched.Status)
	assert.Nil(t, untouched.EvaluatedAt)
}

func TestEvaluate_ReevaluationOverwritesAndCounts(t *testing.T) {
	ctx := context.Background()
	assignments := judgingstore.NewInMemory()
	projects := projectstore.NewInMemory()
	svc := service.New(assignments, projects, nil, nil)

	eventID := id.NewEventID()
	judge := id.Actor{ID: id.NewUserID(), Role: id.RoleJudge}
	a, err := models.NewAssignment(id.NewAssignmentID(), judge.ID, eventID, "", time.Now())
	require.NoError(t, err)
	require.NoError(t, assignments.Create(ctx, a))

	p, err := projectmodels.NewProject(id.NewProjectID(), eventID, id.NewUserID(), projectmodels.Fields{Title: "Twice Judged"}, time.Now())
	require.NoError(t, err)
	require.NoError(t, projects.Create(ctx, p))

	_, err = svc.Evaluate(ctx, judge, service.Evaluation{ProjectID: p.ID, Score: 90})
	require.NoError(t, err)
	second, err := svc.Evaluate(ctx, judge, service.Evaluation{ProjectID: p.ID, Score: 30, Feedback: "revised"})
	require.NoError(t, err)
	assert.Equal(t, projectmodels.StatusRejected, second.Status)
	assert.Equal(t, "revised", second.Feedback)

	stored, err := assignments.FindByUserAndEvent(ctx, judge.ID, eventID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.EvaluationsPerformed)
}
