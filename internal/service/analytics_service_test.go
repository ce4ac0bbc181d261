package service

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/clatprep/backend/internal/apperror"
	"github.com/clatprep/backend/internal/model"
)

func newAnalyticsService(t *testing.T) AnalyticsService {
	t.Helper()
	return NewAnalyticsService(nil)
}

func boolPtr(b bool) *bool { return &b }

func completedAt(year int, month time.Month, day int) *time.Time {
	ts := time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
	return &ts
}

// completedAttempt builds an attempt whose stored score fields are derived
// from the given answer correctness, with one test question per answer.
func completedAttempt(t *testing.T, at *time.Time, percentage float64, answers []model.Answer) model.TestAttempt {
	t.Helper()
	correct, wrong := 0, 0
	var questions []model.Question
	totalTime := 0
	for _, a := range answers {
		if a.IsCorrect != nil {
			if *a.IsCorrect {
				correct++
			} else {
				wrong++
			}
		}
		totalTime += a.TimeTakenSec
		questions = append(questions, model.Question{Section: a.Question.Section})
	}
	return model.TestAttempt{
		Completed:      true,
		CompletedAt:    at,
		Percentage:     percentage,
		CorrectAnswers: correct,
		WrongAnswers:   wrong,
		TotalTimeSec:   totalTime,
		Answers:        answers,
		Test:           model.Test{Questions: questions},
	}
}

func englishAnswer(correct *bool, timeSec int) model.Answer {
	return model.Answer{
		IsCorrect:    correct,
		TimeTakenSec: timeSec,
		Question:     model.Question{Section: model.SectionEnglish},
	}
}

func sectionAnswer(sec model.Section, correct *bool, timeSec int) model.Answer {
	return model.Answer{
		IsCorrect:    correct,
		TimeTakenSec: timeSec,
		Question:     model.Question{Section: sec},
	}
}

func TestComputeAnalytics_EmptyInput(t *testing.T) {
	s := newAnalyticsService(t)

	report, err := s.ComputeAnalytics(nil, "2025-01-03", "2025-01-02")
	if err != nil {
		t.Fatalf("ComputeAnalytics: %v", err)
	}

	ov := report.Overview
	if ov.TotalTests != 0 {
		t.Errorf("expected 0 total tests, got %d", ov.TotalTests)
	}
	if ov.AverageScore != 0 {
		t.Errorf("expected average score 0, got %f", ov.AverageScore)
	}
	if ov.BestScore != 0 {
		t.Errorf("expected best score 0, got %f", ov.BestScore)
	}
	if ov.WorstScore != 100 {
		t.Errorf("expected worst score seeded at 100, got %f", ov.WorstScore)
	}
	if ov.CurrentStreak != 0 || ov.LongestStreak != 0 {
		t.Errorf("expected zero streaks, got current=%d longest=%d", ov.CurrentStreak, ov.LongestStreak)
	}
	if len(report.DailyAnalytics) != 0 {
		t.Errorf("expected no daily buckets, got %d", len(report.DailyAnalytics))
	}
	for _, sec := range model.AllSections {
		stats := report.SectionAnalytics[sec]
		if stats == nil {
			t.Fatalf("missing section stats for %s", sec)
		}
		if stats.Accuracy != 0 || stats.AverageTime != 0 || stats.Attempts != 0 {
			t.Errorf("section %s: expected zeroed stats, got %+v", sec, stats)
		}
	}
}

func TestComputeAnalytics_DailyIncrementalMean(t *testing.T) {
	s := newAnalyticsService(t)
	day := completedAt(2025, time.January, 3)

	attempts := []model.TestAttempt{
		completedAttempt(t, day, 90, []model.Answer{englishAnswer(boolPtr(true), 10)}),
		completedAttempt(t, day, 60, []model.Answer{englishAnswer(boolPtr(true), 10)}),
		completedAttempt(t, day, 30, []model.Answer{englishAnswer(boolPtr(false), 10)}),
	}

	report, err := s.ComputeAnalytics(attempts, "2025-01-03", "2025-01-02")
	if err != nil {
		t.Fatalf("ComputeAnalytics: %v", err)
	}
	if len(report.DailyAnalytics) != 1 {
		t.Fatalf("expected 1 daily bucket, got %d", len(report.DailyAnalytics))
	}
	bucket := report.DailyAnalytics[0]
	if bucket.TestsAttempted != 3 {
		t.Errorf("expected 3 tests in bucket, got %d", bucket.TestsAttempted)
	}
	// The incremental formula must converge to the arithmetic mean.
	if math.Abs(bucket.AverageScore-60) > 1e-9 {
		t.Errorf("expected day average 60, got %f", bucket.AverageScore)
	}
}

func TestComputeAnalytics_DailyMeanTwoAttempts(t *testing.T) {
	s := newAnalyticsService(t)
	day := completedAt(2025, time.January, 3)

	attempts := []model.TestAttempt{
		completedAttempt(t, day, 80, []model.Answer{englishAnswer(boolPtr(true), 5)}),
		completedAttempt(t, day, 60, []model.Answer{englishAnswer(boolPtr(true), 5)}),
	}

	report, err := s.ComputeAnalytics(attempts, "2025-01-03", "2025-01-02")
	if err != nil {
		t.Fatalf("ComputeAnalytics: %v", err)
	}
	if got := report.DailyAnalytics[0].AverageScore; math.Abs(got-70) > 1e-9 {
		t.Errorf("expected day average 70, got %f", got)
	}
}

func TestComputeAnalytics_Streaks(t *testing.T) {
	s := newAnalyticsService(t)

	t.Run("three consecutive days ending today", func(t *testing.T) {
		attempts := []model.TestAttempt{
			completedAttempt(t, completedAt(2025, time.January, 3), 50, []model.Answer{englishAnswer(boolPtr(true), 1)}),
			completedAttempt(t, completedAt(2025, time.January, 2), 50, []model.Answer{englishAnswer(boolPtr(true), 1)}),
			completedAttempt(t, completedAt(2025, time.January, 1), 50, []model.Answer{englishAnswer(boolPtr(true), 1)}),
		}
		report, err := s.ComputeAnalytics(attempts, "2025-01-03", "2025-01-02")
		if err != nil {
			t.Fatalf("ComputeAnalytics: %v", err)
		}
		if report.Overview.CurrentStreak != 3 {
			t.Errorf("expected current streak 3, got %d", report.Overview.CurrentStreak)
		}
		if report.Overview.LongestStreak != 3 {
			t.Errorf("expected longest streak 3, got %d", report.Overview.LongestStreak)
		}
	})

	t.Run("gap breaks the current streak", func(t *testing.T) {
		attempts := []model.TestAttempt{
			completedAttempt(t, completedAt(2025, time.January, 3), 50, []model.Answer{englishAnswer(boolPtr(true), 1)}),
			completedAttempt(t, completedAt(2025, time.January, 1), 50, []model.Answer{englishAnswer(boolPtr(true), 1)}),
		}
		report, err := s.ComputeAnalytics(attempts, "2025-01-03", "2025-01-02")
		if err != nil {
			t.Fatalf("ComputeAnalytics: %v", err)
		}
		if report.Overview.CurrentStreak != 1 {
			t.Errorf("expected current streak 1, got %d", report.Overview.CurrentStreak)
		}
		if report.Overview.LongestStreak != 1 {
			t.Errorf("expected longest streak 1, got %d", report.Overview.LongestStreak)
		}
	})

	t.Run("single recent day", func(t *testing.T) {
		attempts := []model.TestAttempt{
			completedAttempt(t, completedAt(2025, time.January, 3), 50, []model.Answer{englishAnswer(boolPtr(true), 1)}),
		}
		report, err := s.ComputeAnalytics(attempts, "2025-01-03", "2025-01-02")
		if err != nil {
			t.Fatalf("ComputeAnalytics: %v", err)
		}
		if report.Overview.CurrentStreak != 1 || report.Overview.LongestStreak != 1 {
			t.Errorf("expected streaks 1/1, got %d/%d", report.Overview.CurrentStreak, report.Overview.LongestStreak)
		}
	})

	t.Run("single stale day", func(t *testing.T) {
		attempts := []model.TestAttempt{
			completedAttempt(t, completedAt(2024, time.December, 1), 50, []model.Answer{englishAnswer(boolPtr(true), 1)}),
		}
		report, err := s.ComputeAnalytics(attempts, "2025-01-03", "2025-01-02")
		if err != nil {
			t.Fatalf("ComputeAnalytics: %v", err)
		}
		if report.Overview.CurrentStreak != 0 {
			t.Errorf("expected current streak 0 for stale activity, got %d", report.Overview.CurrentStreak)
		}
		if report.Overview.LongestStreak != 1 {
			t.Errorf("expected longest streak 1, got %d", report.Overview.LongestStreak)
		}
	})
}

func TestComputeAnalytics_SectionRollup(t *testing.T) {
	s := newAnalyticsService(t)
	day := completedAt(2025, time.January, 3)

	// Three answer rows in LEGAL_REASONING: correct, wrong, unanswered.
	attempts := []model.TestAttempt{
		completedAttempt(t, day, 25, []model.Answer{
			sectionAnswer(model.SectionLegalReasoning, boolPtr(true), 30),
			sectionAnswer(model.SectionLegalReasoning, boolPtr(false), 60),
			sectionAnswer(model.SectionLegalReasoning, nil, 0),
		}),
	}

	report, err := s.ComputeAnalytics(attempts, "2025-01-03", "2025-01-02")
	if err != nil {
		t.Fatalf("ComputeAnalytics: %v", err)
	}

	legal := report.SectionAnalytics[model.SectionLegalReasoning]
	if legal.Total != 3 {
		t.Errorf("expected total 3 (unanswered rows count), got %d", legal.Total)
	}
	if legal.Correct != 1 || legal.Wrong != 1 {
		t.Errorf("expected correct=1 wrong=1, got correct=%d wrong=%d", legal.Correct, legal.Wrong)
	}
	if math.Abs(legal.Accuracy-100.0/3.0) > 1e-9 {
		t.Errorf("expected accuracy 33.33, got %f", legal.Accuracy)
	}
	if math.Abs(legal.AverageTime-30) > 1e-9 {
		t.Errorf("expected average time 30, got %f", legal.AverageTime)
	}
	// Question exposure: 3 questions over 1 test.
	if legal.Attempts != 3 {
		t.Errorf("expected attempts (questions per test) 3, got %d", legal.Attempts)
	}

	// Sections without any answers stay at zero, never NaN.
	quant := report.SectionAnalytics[model.SectionQuantitativeTechniques]
	if quant.Accuracy != 0 || quant.AverageTime != 0 {
		t.Errorf("expected zero accuracy/time for untouched section, got %+v", quant)
	}
}

func TestComputeAnalytics_InsightTieBreak(t *testing.T) {
	s := newAnalyticsService(t)
	day := completedAt(2025, time.January, 3)

	// GK_CA and LOGICAL_REASONING end with identical totals and accuracy;
	// the first-declared of the tied sections must win.
	attempts := []model.TestAttempt{
		completedAttempt(t, day, 50, []model.Answer{
			sectionAnswer(model.SectionGKCA, boolPtr(true), 10),
			sectionAnswer(model.SectionLogicalReasoning, boolPtr(true), 10),
		}),
	}

	report, err := s.ComputeAnalytics(attempts, "2025-01-03", "2025-01-02")
	if err != nil {
		t.Fatalf("ComputeAnalytics: %v", err)
	}
	if report.Insights.MostActiveSection != model.SectionGKCA {
		t.Errorf("expected GK_CA to win the tie, got %s", report.Insights.MostActiveSection)
	}
	if report.Insights.BestPerformingSection != model.SectionGKCA {
		t.Errorf("expected GK_CA as best performing on tie, got %s", report.Insights.BestPerformingSection)
	}
	// All untouched sections have accuracy 0, ENGLISH is declared first.
	if report.Insights.NeedsImprovement != model.SectionEnglish {
		t.Errorf("expected ENGLISH as needs-improvement tie winner, got %s", report.Insights.NeedsImprovement)
	}
}

func TestComputeAnalytics_StoredVsDerivedCounts(t *testing.T) {
	s := newAnalyticsService(t)
	day := completedAt(2025, time.January, 3)

	// Stored fields say 7 correct / 3 wrong while the nested answers array
	// carries 9 rows with a different mix. Overview must trust the stored
	// fields; section analytics must derive from the rows.
	answers := []model.Answer{
		englishAnswer(boolPtr(true), 10),
		englishAnswer(boolPtr(true), 10),
		englishAnswer(boolPtr(true), 10),
		englishAnswer(boolPtr(false), 10),
		englishAnswer(boolPtr(false), 10),
		englishAnswer(nil, 0),
		englishAnswer(nil, 0),
		englishAnswer(nil, 0),
		englishAnswer(nil, 0),
	}
	attempt := completedAttempt(t, day, 55, answers)
	attempt.CorrectAnswers = 7
	attempt.WrongAnswers = 3

	report, err := s.ComputeAnalytics([]model.TestAttempt{attempt}, "2025-01-03", "2025-01-02")
	if err != nil {
		t.Fatalf("ComputeAnalytics: %v", err)
	}

	if report.Overview.TotalCorrect != 7 || report.Overview.TotalWrong != 3 {
		t.Errorf("overview must use stored fields: got correct=%d wrong=%d",
			report.Overview.TotalCorrect, report.Overview.TotalWrong)
	}
	english := report.SectionAnalytics[model.SectionEnglish]
	if english.Total != 9 {
		t.Errorf("section total must count answer rows: got %d", english.Total)
	}
	if english.Correct != 3 || english.Wrong != 2 {
		t.Errorf("section counts must derive from rows: got correct=%d wrong=%d",
			english.Correct, english.Wrong)
	}
}

func TestComputeAnalytics_ImprovementTrendAndWindows(t *testing.T) {
	s := newAnalyticsService(t)

	// Nine distinct days, newest scoring 90, oldest scoring 10.
	var attempts []model.TestAttempt
	for i := 0; i < 9; i++ {
		pct := 90 - float64(i)*10
		attempts = append(attempts, completedAttempt(t,
			completedAt(2025, time.January, 9-i), pct,
			[]model.Answer{englishAnswer(boolPtr(true), 10)}))
	}

	report, err := s.ComputeAnalytics(attempts, "2025-01-09", "2025-01-08")
	if err != nil {
		t.Fatalf("ComputeAnalytics: %v", err)
	}

	if len(report.DailyAnalytics) != 9 {
		t.Fatalf("expected 9 daily buckets, got %d", len(report.DailyAnalytics))
	}
	if len(report.RecentActivity.Last7Days) != 7 {
		t.Errorf("expected last7Days window of 7, got %d", len(report.RecentActivity.Last7Days))
	}
	if len(report.RecentActivity.Last30Days) != 9 {
		t.Errorf("expected last30Days window of 9, got %d", len(report.RecentActivity.Last30Days))
	}
	// Trend: newest bucket (90) minus oldest of the 7-day window (30).
	if math.Abs(report.Overview.ImprovementTrend-60) > 1e-9 {
		t.Errorf("expected improvement trend 60, got %f", report.Overview.ImprovementTrend)
	}
	if report.Insights.ConsistencyScore != 100 {
		t.Errorf("expected consistency 100 when every tracked day has activity, got %f", report.Insights.ConsistencyScore)
	}
}

func TestComputeAnalytics_BestAndWorstScores(t *testing.T) {
	s := newAnalyticsService(t)
	day := completedAt(2025, time.January, 3)

	attempts := []model.TestAttempt{
		completedAttempt(t, day, 82.5, []model.Answer{englishAnswer(boolPtr(true), 1)}),
		completedAttempt(t, day, 41.25, []model.Answer{englishAnswer(boolPtr(false), 1)}),
	}

	report, err := s.ComputeAnalytics(attempts, "2025-01-03", "2025-01-02")
	if err != nil {
		t.Fatalf("ComputeAnalytics: %v", err)
	}
	if report.Overview.BestScore != 82.5 {
		t.Errorf("expected best 82.5, got %f", report.Overview.BestScore)
	}
	if report.Overview.WorstScore != 41.25 {
		t.Errorf("expected worst 41.25, got %f", report.Overview.WorstScore)
	}
	if math.Abs(report.Overview.AverageScore-61.875) > 1e-9 {
		t.Errorf("expected average 61.875, got %f", report.Overview.AverageScore)
	}
}

func TestComputeAnalytics_MalformedAttemptFailsWhole(t *testing.T) {
	s := newAnalyticsService(t)

	good := completedAttempt(t, completedAt(2025, time.January, 3), 50,
		[]model.Answer{englishAnswer(boolPtr(true), 1)})
	bad := model.TestAttempt{Completed: true, CompletedAt: nil}

	_, err := s.ComputeAnalytics([]model.TestAttempt{good, bad}, "2025-01-03", "2025-01-02")
	if err == nil {
		t.Fatal("expected error for attempt without completion time")
	}
	if !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}

	notCompleted := model.TestAttempt{Completed: false, CompletedAt: completedAt(2025, time.January, 3)}
	_, err = s.ComputeAnalytics([]model.TestAttempt{notCompleted}, "2025-01-03", "2025-01-02")
	if !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for incomplete attempt, got %v", err)
	}
}

func TestComputeAnalytics_ExposureNormalization(t *testing.T) {
	s := newAnalyticsService(t)

	// Two tests, 3 English questions each: exposure 6 over 2 tests -> 3.
	day1 := completedAt(2025, time.January, 2)
	day2 := completedAt(2025, time.January, 3)
	mk := func(at *time.Time) model.TestAttempt {
		return completedAttempt(t, at, 50, []model.Answer{
			englishAnswer(boolPtr(true), 10),
			englishAnswer(boolPtr(false), 10),
			englishAnswer(nil, 0),
		})
	}

	report, err := s.ComputeAnalytics([]model.TestAttempt{mk(day2), mk(day1)}, "2025-01-03", "2025-01-02")
	if err != nil {
		t.Fatalf("ComputeAnalytics: %v", err)
	}
	if got := report.SectionAnalytics[model.SectionEnglish].Attempts; got != 3 {
		t.Errorf("expected exposure 3 questions per test, got %d", got)
	}
}
