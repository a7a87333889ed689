package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrCorruptRun is returned when a stored run breaks the lockstep rule
// between its selection and correctness maps.
var ErrCorruptRun = errors.New("corrupt exam run")

type slot struct {
	selected int
	correct  bool
	recorded bool
}

// Run is an anonymous visitor's progress through one exam. Positions are
// 1-based; the selection and correctness for a position live in the same
// slot so they can never diverge.
type Run struct {
	ExamID int64
	slots  []slot
}

// NewRun starts an empty run for the exam.
func NewRun(examID int64) *Run {
	return &Run{ExamID: examID}
}

// Set records (overwriting) the answer at position.
func (r *Run) Set(position, selected int, correct bool) {
	if position < 1 {
		return
	}
	for len(r.slots) < position {
		r.slots = append(r.slots, slot{})
	}
	r.slots[position-1] = slot{selected: selected, correct: correct, recorded: true}
}

// Get returns the answer at position, if one was recorded.
func (r *Run) Get(position int) (selected int, correct bool, ok bool) {
	if position < 1 || position > len(r.slots) {
		return 0, false, false
	}
	s := r.slots[position-1]
	return s.selected, s.correct, s.recorded
}

// Answered counts recorded positions.
func (r *Run) Answered() int {
	n := 0
	for _, s := range r.slots {
		if s.recorded {
			n++
		}
	}
	return n
}

// wireRun is the stored layout: map keys are decimal positions.
type wireRun struct {
	ExamID         int64           `json:"exam_id"`
	QuestionSelect map[string]int  `json:"question_select"`
	AnswerCorrect  map[string]bool `json:"answer_correct"`
}

func (r *Run) MarshalJSON() ([]byte, error) {
	w := wireRun{
		ExamID:         r.ExamID,
		QuestionSelect: make(map[string]int),
		AnswerCorrect:  make(map[string]bool),
	}
	for i, s := range r.slots {
		if !s.recorded {
			continue
		}
		key := strconv.Itoa(i + 1)
		w.QuestionSelect[key] = s.selected
		w.AnswerCorrect[key] = s.correct
	}
	return json.Marshal(w)
}

func (r *Run) UnmarshalJSON(data []byte) error {
	var w wireRun
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if len(w.QuestionSelect) != len(w.AnswerCorrect) {
		return ErrCorruptRun
	}

	out := Run{ExamID: w.ExamID}
	for key, selected := range w.QuestionSelect {
		correct, ok := w.AnswerCorrect[key]
		if !ok {
			return fmt.Errorf("%w: position %q has no correctness flag", ErrCorruptRun, key)
		}
		position, err := strconv.Atoi(key)
		if err != nil || position < 1 {
			return fmt.Errorf("%w: bad position %q", ErrCorruptRun, key)
		}
		out.Set(position, selected, correct)
	}
	*r = out
	return nil
}
