package triage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"triage-service/internal/catalog"
	"triage-service/internal/domain"
)

func builtin(t *testing.T, id string) *domain.Catalog {
	t.Helper()
	docs, err := catalog.BuiltinByID()
	require.NoError(t, err)
	doc, ok := docs[id]
	require.True(t, ok, "builtin catalog %s", id)
	cat, err := catalog.Compile(doc)
	require.NoError(t, err)
	return cat
}

func answers(pairs ...string) []domain.AnsweredQuestion {
	out := make([]domain.AnsweredQuestion, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.AnsweredQuestion{QuestionID: pairs[i], Response: domain.Response(pairs[i+1])})
	}
	return out
}

func ids(qs []domain.QuestionDefinition) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}

// smallCatalog has one question per level plus a gated follow-up.
func smallCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	yes := catalog.Single("Sí")
	cat, err := catalog.Compile(catalog.Document{
		ID:   "small",
		Name: "Small",
		Levels: map[string]catalog.LevelDocument{
			"A": {Classification: "Emergencia", Destination: "112"},
			"B": {Classification: "Urgencia", Destination: "Hoy"},
			"C": {Classification: "Diferida", Destination: "Días"},
			"D": {Classification: "No urgente", Destination: "Programada"},
		},
		Questions: []catalog.QuestionDocument{
			{ID: "info", Text: "Edad", Type: "number", Level: "INFO"},
			{ID: "a_chest_pain", Text: "¿Dolor torácico?", Type: "boolean", Level: "A", Condition: yes, StopOnTrigger: true},
			{ID: "a_soft", Text: "¿Confusión?", Type: "boolean", Level: "A", Condition: yes},
			{ID: "b_fever", Text: "¿Fiebre alta?", Type: "boolean", Level: "B", Condition: yes},
			{ID: "b_resp", Text: "Respiraciones por minuto", Type: "number", Level: "B", Condition: catalog.Single(">60")},
			{ID: "b_follow", Text: "¿Más de 3 días?", Type: "boolean", Level: "B", Condition: yes, DependsOn: "b_fever", ShowIf: yes},
			{ID: "c_cough", Text: "¿Tos?", Type: "boolean", Level: "C", Condition: yes},
			{ID: "c_notes", Text: "Otros síntomas", Type: "text", Level: "C", Condition: catalog.Single("any_text")},
			{ID: "d_refill", Text: "¿Receta?", Type: "boolean", Level: "D", Condition: yes},
		},
	})
	require.NoError(t, err)
	return cat
}
