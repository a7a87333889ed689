package catalog

import "errors"

// Grade constants for categories.
const (
	GradeElementary = "elementary"
	GradeJunior     = "junior"
	GradeHigh       = "high"
)

// ErrExamNotFound is returned when no exam matches the requested id.
var ErrExamNotFound = errors.New("exam not found")

// Exam is the read-only exam header shown in listings.
type Exam struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	Grade         string `json:"grade"`
	QuestionCount int    `json:"question_count"`
}

// Question is one numbered multiple-choice question of an exam.
type Question struct {
	ID            int64    `json:"id"`
	ExamID        int64    `json:"exam_id"`
	Position      int      `json:"position"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	Explanation   string   `json:"explanation"`
}

// Pack bundles an exam with its questions ordered by position.
type Pack struct {
	Exam      Exam       `json:"exam"`
	Questions []Question `json:"questions"`
}
