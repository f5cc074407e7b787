package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelA.MoreSevere(LevelB))
	assert.True(t, LevelB.MoreSevere(LevelC))
	assert.True(t, LevelC.MoreSevere(LevelD))
	assert.False(t, LevelD.MoreSevere(LevelD))
	assert.False(t, LevelC.MoreSevere(LevelB))
	assert.False(t, LevelInfo.MoreSevere(LevelD))
	assert.True(t, LevelD.MoreSevere(LevelInfo))

	assert.Less(t, LevelBranch.Rank(), LevelA.Rank())
	assert.True(t, LevelBranch.Valid())
	assert.False(t, LevelBranch.Scored())
	assert.False(t, Level("E").Valid())
}

func TestConditionMarshalsDocumentForm(t *testing.T) {
	cases := []struct {
		condition Condition
		want      string
	}{
		{Condition{}, `null`},
		{ExactMatch("Sí"), `"Sí"`},
		{AnyOf("Sí", "No lo sé"), `["Sí","No lo sé"]`},
		{NonEmptyText(), `"any_text"`},
		{NumericThreshold(60), `">60"`},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.condition)
		require.NoError(t, err)
		assert.JSONEq(t, tc.want, string(data))
	}
}

func TestResponseAcceptsStringsAndNumbers(t *testing.T) {
	var got []AnsweredQuestion
	body := `[{"questionId":"a","response":"Sí"},{"questionId":"b","response":75},{"questionId":"c","response":null}]`
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Len(t, got, 3)
	assert.Equal(t, Response("Sí"), got[0].Response)
	assert.Equal(t, Response("75"), got[1].Response)
	assert.Equal(t, Response(""), got[2].Response)

	err := json.Unmarshal([]byte(`[{"questionId":"a","response":true}]`), &got)
	assert.Error(t, err)
}

func TestVisibilityRuleAllows(t *testing.T) {
	rule := VisibilityRule{DependsOn: "ped_info_1", ShowIf: []string{"3-6 meses", "3 - 12 años"}}
	assert.True(t, rule.Allows("3-6 meses"))
	assert.False(t, rule.Allows("Menos de 3 meses"))
}

func TestNewCatalogRejectsDuplicateIDs(t *testing.T) {
	questions := []QuestionDefinition{
		{ID: "q1", Level: LevelC, Condition: ExactMatch("Sí")},
		{ID: "q1", Level: LevelB, Condition: ExactMatch("Sí")},
	}
	_, err := NewCatalog(Specialty{ID: "x"}, questions, nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidCatalog))
}

func TestCatalogQuestionsReturnsCopy(t *testing.T) {
	cat, err := NewCatalog(Specialty{ID: "x"}, []QuestionDefinition{{ID: "q1", Level: LevelC, Condition: ExactMatch("Sí")}}, nil, nil)
	require.NoError(t, err)

	qs := cat.Questions()
	qs[0].ID = "changed"
	q, ok := cat.Question("q1")
	require.True(t, ok)
	assert.Equal(t, "q1", q.ID)
	assert.NotNil(t, cat.Levels)
	assert.False(t, cat.Forked())
}

func TestCatalogKeepsLevelWording(t *testing.T) {
	questions := []QuestionDefinition{
		{ID: "info", Level: LevelInfo},
		{ID: "a1", Level: LevelA, Condition: ExactMatch("Sí"), StopOnTrigger: true},
	}
	levels := map[Level]LevelText{
		LevelA: {Classification: "Emergencia crítica", Destination: "Llamar 112"},
	}
	cat, err := NewCatalog(Specialty{ID: "x"}, questions, nil, levels)
	require.NoError(t, err)

	assert.Equal(t, "Emergencia crítica", cat.Levels[LevelA].Classification)
	_, ok := cat.Levels[LevelInfo]
	assert.False(t, ok)
	q, ok := cat.Question("info")
	require.True(t, ok)
	assert.Equal(t, LevelInfo, q.Level)
}
