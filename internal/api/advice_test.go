package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/RichardoC/parentpal/internal/llm/llmtest"
	"github.com/RichardoC/parentpal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAdvice(t *testing.T) {
	h := newHarness(t, llmtest.Text(`{
		"title": "Gentle sleep training",
		"summary": "Small consistent steps.",
		"tips": ["Same bedtime", "Dark room", "Short routine"],
		"recommendations": ["Ask your pediatrician", "Track sleep for a week"],
		"warningSignals": ["Loud snoring"]
	}`))

	rec := h.do(http.MethodPost, "/api/advice", AdviceRequest{ChildAge: "infant", Topic: "sleep"}, "user-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var advice models.ParentingAdvice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &advice))
	assert.Equal(t, "Gentle sleep training", advice.Title)
	assert.Equal(t, []string{"Loud snoring"}, advice.WarningSignals)
}

func TestGenerateMilestonesChallengesRoutine(t *testing.T) {
	h := newHarness(t,
		llmtest.Text(`{"physical":["Rolls over"],"cognitive":["Tracks objects"],"social":["Smiles"],"language":["Coos"]}`),
		llmtest.Text(`{"challenges":[{"issue":"Biting","solution":"Redirect","tips":["Offer a teether"]}]}`),
		llmtest.Text(`{"routineName":"Morning","timeEstimate":"45 minutes","steps":[{"step":"Breakfast","duration":"20 minutes","tips":"Sit together"}],"notes":["Be flexible"]}`),
	)

	rec := h.do(http.MethodPost, "/api/milestones", MilestonesRequest{AgeGroup: "infant"}, "user-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rolls over")

	rec = h.do(http.MethodPost, "/api/challenges", ChallengesRequest{AgeGroup: "toddler", Topic: "behavior"}, "user-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Biting")

	rec = h.do(http.MethodPost, "/api/routines", RoutineRequest{AgeGroup: "preschool", ActivityType: "morning"}, "user-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Breakfast")
}

func TestGenerateAdviceErrors(t *testing.T) {
	h := newHarness(t,
		llmtest.Text(`{"title":"Too short"}`),
		llmtest.Response{Err: errors.New("quota exceeded")},
	)

	assert.Equal(t, http.StatusUnauthorized,
		h.do(http.MethodPost, "/api/advice", AdviceRequest{ChildAge: "infant", Topic: "sleep"}, "").Code)

	assert.Equal(t, http.StatusBadRequest,
		h.do(http.MethodPost, "/api/advice", AdviceRequest{ChildAge: "infant"}, "user-1").Code)

	assert.Equal(t, http.StatusBadGateway,
		h.do(http.MethodPost, "/api/advice", AdviceRequest{ChildAge: "infant", Topic: "sleep"}, "user-1").Code)

	assert.Equal(t, http.StatusBadGateway,
		h.do(http.MethodPost, "/api/routines", RoutineRequest{AgeGroup: "teen", ActivityType: "homework"}, "user-1").Code)

	assert.Len(t, h.model.Calls(), 2)
}
