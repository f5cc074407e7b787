package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage-service/internal/domain"
)

func TestMessagePrefersCatalogOverride(t *testing.T) {
	ped := builtin(t, "pediatria")
	assert.Contains(t, Message(ped, domain.LevelA), "urgencias pediátricas")
	assert.Equal(t, baseMessages[domain.LevelC], Message(ped, domain.LevelC))

	mental := builtin(t, "salut-mental")
	assert.Contains(t, Message(mental, domain.LevelA), "024")

	assert.Equal(t, baseMessages[domain.LevelD], Message(nil, domain.LevelD))
}

func TestSummarizeDropsUnknownQuestions(t *testing.T) {
	cat := smallCatalog(t)

	summary := Summarize(cat, answers("b_fever", "Sí", "ghost", "Sí", "c_cough", "No"))
	require.Len(t, summary, 2)
	assert.Equal(t, "b_fever", summary[0].QuestionID)
	assert.True(t, summary[0].Triggered)
	assert.Equal(t, domain.LevelB, summary[0].Level)
	assert.False(t, summary[1].Triggered)
}

func TestMissingAnswer(t *testing.T) {
	cat := smallCatalog(t)

	missing, ok := MissingAnswer(cat, answers("info", "40"))
	require.True(t, ok)
	assert.Equal(t, "a_chest_pain", missing.ID)

	_, ok = MissingAnswer(cat, answers("a_chest_pain", "Sí"))
	assert.False(t, ok, "an early stop completes the triage")

	all := answers("a_chest_pain", "No", "a_soft", "No", "b_fever", "No", "b_resp", "20",
		"c_cough", "No", "c_notes", "", "d_refill", "No")
	_, ok = MissingAnswer(cat, all)
	assert.False(t, ok, "INFO questions are optional")
}

func TestResult(t *testing.T) {
	cat := smallCatalog(t)

	result := Result(cat, answers("b_fever", "Sí", "c_cough", "Sí"))
	assert.Equal(t, "small", result.Specialty)
	assert.Equal(t, domain.LevelB, result.Level)
	assert.Empty(t, result.TriggeringQuestionID)
	assert.Equal(t, "Urgencia", result.Classification)
	assert.Equal(t, "Hoy", result.Destination)
	assert.Equal(t, baseMessages[domain.LevelB], result.Message)
	assert.Len(t, result.Summary, 2)

	result = Result(cat, answers("a_chest_pain", "Sí"))
	assert.Equal(t, domain.LevelA, result.Level)
	assert.Equal(t, "a_chest_pain", result.TriggeringQuestionID)
}
