package dto

// QuestionCreateDTO is used within TestCreateDTO for admin test creation.
type QuestionCreateDTO struct {
	QuestionNumber int      `json:"question_number" binding:"required,min=1"`
	QuestionText   string   `json:"question_text" binding:"required"`
	Options        []string `json:"options" binding:"required,min=2"`
	CorrectOption  string   `json:"correct_option" binding:"required"`
	Section        string   `json:"section" binding:"required,oneof=ENGLISH GK_CA LEGAL_REASONING LOGICAL_REASONING QUANTITATIVE_TECHNIQUES"`
	PositiveMarks  float64  `json:"positive_marks" binding:"required,gt=0"`
	NegativeMarks  float64  `json:"negative_marks" binding:"gte=0"`
	Explanation    string   `json:"explanation,omitempty"`
}

// TestCreateDTO is for admin to create a new test with all its questions.
type TestCreateDTO struct {
	Title             string              `json:"title" binding:"required"`
	Description       string              `json:"description,omitempty"`
	DurationInMinutes int                 `json:"duration_in_minutes" binding:"required,gt=0"`
	Questions         []QuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}
