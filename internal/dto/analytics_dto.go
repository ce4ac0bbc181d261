package dto

import "github.com/clatprep/backend/internal/model"

// DailySectionStats is the per-section slice of a single day bucket.
type DailySectionStats struct {
	QuestionsAnswered int `json:"questions_answered"`
	Correct           int `json:"correct"`
	Wrong             int `json:"wrong"`
	TimeSpent         int `json:"time_spent"`
}

// DailyStats is one bucket per distinct completion date (YYYY-MM-DD).
type DailyStats struct {
	Date              string                               `json:"date"`
	TestsAttempted    int                                  `json:"tests_attempted"`
	QuestionsAnswered int                                  `json:"questions_answered"`
	CorrectAnswers    int                                  `json:"correct_answers"`
	WrongAnswers      int                                  `json:"wrong_answers"`
	TimeSpent         int                                  `json:"time_spent"`
	AverageScore      float64                              `json:"average_score"`
	Sections          map[model.Section]*DailySectionStats `json:"sections"`
}

// SectionStats aggregates all answers of one exam section across attempts.
type SectionStats struct {
	Total       int     `json:"total"`
	Correct     int     `json:"correct"`
	Wrong       int     `json:"wrong"`
	TimeSpent   int     `json:"time_spent"`
	Accuracy    float64 `json:"accuracy"`
	AverageTime float64 `json:"average_time"`
	// Attempts is question exposure normalized to average questions per
	// test: ceil(questions seen / tests taken).
	Attempts int `json:"attempts"`
}

type Overview struct {
	TotalTests       int     `json:"total_tests"`
	TotalQuestions   int     `json:"total_questions"`
	TotalCorrect     int     `json:"total_correct"`
	TotalWrong       int     `json:"total_wrong"`
	TotalTimeSpent   int     `json:"total_time_spent"`
	AverageScore     float64 `json:"average_score"`
	BestScore        float64 `json:"best_score"`
	WorstScore       float64 `json:"worst_score"`
	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"`
	ImprovementTrend float64 `json:"improvement_trend"`
}

type RecentActivity struct {
	Last7Days  []*DailyStats `json:"last_7_days"`
	Last30Days []*DailyStats `json:"last_30_days"`
}

type Insights struct {
	MostActiveSection      model.Section `json:"most_active_section"`
	BestPerformingSection  model.Section `json:"best_performing_section"`
	NeedsImprovement       model.Section `json:"needs_improvement"`
	AverageTimePerQuestion float64       `json:"average_time_per_question"`
	ConsistencyScore       float64       `json:"consistency_score"`
}

// AnalyticsReport is the full computed report returned to the caller.
type AnalyticsReport struct {
	Overview         Overview                        `json:"overview"`
	DailyAnalytics   []*DailyStats                   `json:"daily_analytics"`
	SectionAnalytics map[model.Section]*SectionStats `json:"section_analytics"`
	RecentActivity   RecentActivity                  `json:"recent_activity"`
	Insights         Insights                        `json:"insights"`
}
