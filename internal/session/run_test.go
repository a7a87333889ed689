package session

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMarshalsStringKeyedMaps(t *testing.T) {
	run := NewRun(3)
	run.Set(1, 1, true)
	run.Set(5, 3, false)

	data, err := json.Marshal(run)
	require.NoError(t, err)

	var wire struct {
		ExamID         int64           `json:"exam_id"`
		QuestionSelect map[string]int  `json:"question_select"`
		AnswerCorrect  map[string]bool `json:"answer_correct"`
	}
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, int64(3), wire.ExamID)
	assert.Equal(t, map[string]int{"1": 1, "5": 3}, wire.QuestionSelect)
	assert.Equal(t, map[string]bool{"1": true, "5": false}, wire.AnswerCorrect)
}

func TestRunRoundTripKeepsGaps(t *testing.T) {
	run := NewRun(1)
	run.Set(2, 4, false)

	data, err := json.Marshal(run)
	require.NoError(t, err)

	var decoded Run
	require.NoError(t, json.Unmarshal(data, &decoded))

	_, _, ok := decoded.Get(1)
	assert.False(t, ok)
	selected, correct, ok := decoded.Get(2)
	assert.True(t, ok)
	assert.Equal(t, 4, selected)
	assert.False(t, correct)
	assert.Equal(t, 1, decoded.Answered())
}

func TestRunSetOverwrites(t *testing.T) {
	run := NewRun(1)
	run.Set(1, 2, false)
	run.Set(1, 1, true)

	selected, correct, ok := run.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 1, selected)
	assert.True(t, correct)
}

func TestRunRejectsMapsOutOfStep(t *testing.T) {
	raw := []byte(`{"exam_id":1,"question_select":{"1":1,"2":2},"answer_correct":{"1":true,"3":false}}`)

	var run Run
	err := json.Unmarshal(raw, &run)
	assert.True(t, errors.Is(err, ErrCorruptRun))
}
