package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/clatprep/backend/internal/apperror"
	"github.com/clatprep/backend/internal/dto"
	"github.com/clatprep/backend/internal/model"
	"github.com/clatprep/backend/internal/repository"
	"github.com/rs/zerolog/log"
)

const dateLayout = "2006-01-02"

// AnalyticsService turns a user's history of completed attempts into the
// analytics report: daily rollups, per-section accuracy and timing, activity
// streaks, and derived insights.
type AnalyticsService interface {
	// GetUserAnalytics fetches the user's completed attempts and computes
	// the report relative to the current UTC date.
	GetUserAnalytics(userID uint) (*dto.AnalyticsReport, error)

	// ComputeAnalytics is the pure aggregation over already-fetched
	// attempts. today and yesterday are YYYY-MM-DD strings injected by the
	// caller so streak computation is deterministic under test.
	ComputeAnalytics(attempts []model.TestAttempt, today, yesterday string) (*dto.AnalyticsReport, error)
}

type analyticsService struct {
	attemptRepo repository.TestAttemptRepository
}

func NewAnalyticsService(attemptRepo repository.TestAttemptRepository) AnalyticsService {
	return &analyticsService{attemptRepo: attemptRepo}
}

func (s *analyticsService) GetUserAnalytics(userID uint) (*dto.AnalyticsReport, error) {
	attempts, err := s.attemptRepo.FindCompletedByUser(userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Failed to fetch completed attempts for analytics")
		return nil, fmt.Errorf("fetching attempts for user %d: %w", userID, err)
	}

	now := time.Now().UTC()
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	return s.ComputeAnalytics(attempts, today, yesterday)
}

func (s *analyticsService) ComputeAnalytics(attempts []model.TestAttempt, today, yesterday string) (*dto.AnalyticsReport, error) {
	daily := make(map[string]*dto.DailyStats)
	var dailyDates []string // insertion order of bucket creation

	sectionStats := make(map[model.Section]*dto.SectionStats, len(model.AllSections))
	for _, sec := range model.AllSections {
		sectionStats[sec] = &dto.SectionStats{}
	}

	var (
		totalTests     int
		totalQuestions int
		totalCorrect   int
		totalWrong     int
		totalTimeSpent int
		scoreSum       float64
	)
	bestScore := 0.0
	worstScore := 100.0

	for i := range attempts {
		attempt := &attempts[i]
		if !attempt.Completed || attempt.CompletedAt == nil {
			return nil, fmt.Errorf("attempt %d is not completed or has no completion time: %w",
				attempt.ID, apperror.ErrInvalidArgument)
		}

		date := attempt.CompletedAt.UTC().Format(dateLayout)
		bucket, ok := daily[date]
		if !ok {
			bucket = &dto.DailyStats{
				Date:     date,
				Sections: make(map[model.Section]*dto.DailySectionStats),
			}
			daily[date] = bucket
			dailyDates = append(dailyDates, date)
		}

		bucket.TestsAttempted++
		bucket.QuestionsAnswered += len(attempt.Answers)
		bucket.CorrectAnswers += attempt.CorrectAnswers
		bucket.WrongAnswers += attempt.WrongAnswers
		bucket.TimeSpent += attempt.TotalTimeSec
		// Incremental mean: per-attempt percentages are not retained per
		// bucket, so the running average folds each one in as it arrives.
		n := float64(bucket.TestsAttempted)
		bucket.AverageScore = (bucket.AverageScore*(n-1) + attempt.Percentage) / n

		for j := range attempt.Answers {
			answer := &attempt.Answers[j]
			section := answer.Question.Section
			stats, recognized := sectionStats[section]
			if !recognized {
				continue
			}
			// Total counts every recorded answer row, including
			// unanswered ones (is_correct nil).
			stats.Total++
			stats.TimeSpent += answer.TimeTakenSec

			daySec, ok := bucket.Sections[section]
			if !ok {
				daySec = &dto.DailySectionStats{}
				bucket.Sections[section] = daySec
			}
			daySec.QuestionsAnswered++
			daySec.TimeSpent += answer.TimeTakenSec

			if answer.IsCorrect != nil {
				if *answer.IsCorrect {
					stats.Correct++
					daySec.Correct++
				} else {
					stats.Wrong++
					daySec.Wrong++
				}
			}
		}

		// Question exposure: every question of the attempted test counts,
		// answered or not.
		for j := range attempt.Test.Questions {
			if stats, recognized := sectionStats[attempt.Test.Questions[j].Section]; recognized {
				stats.Attempts++
			}
		}

		totalTests++
		totalQuestions += len(attempt.Answers)
		totalCorrect += attempt.CorrectAnswers
		totalWrong += attempt.WrongAnswers
		totalTimeSpent += attempt.TotalTimeSec

		score := attempt.Percentage
		scoreSum += score
		bestScore = math.Max(bestScore, score)
		worstScore = math.Min(worstScore, score)
	}

	for _, sec := range model.AllSections {
		stats := sectionStats[sec]
		if stats.Total > 0 {
			stats.Accuracy = float64(stats.Correct) / float64(stats.Total) * 100
			stats.AverageTime = float64(stats.TimeSpent) / float64(stats.Total)
		}
		// Normalize exposure to average questions per test.
		if totalTests > 0 {
			stats.Attempts = int(math.Ceil(float64(stats.Attempts) / float64(totalTests)))
		} else {
			stats.Attempts = 0
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(dailyDates)))
	dailyArray := make([]*dto.DailyStats, 0, len(dailyDates))
	for _, date := range dailyDates {
		dailyArray = append(dailyArray, daily[date])
	}

	currentStreak, longestStreak := computeStreaks(daily, dailyDates, today, yesterday)

	last7Days := dailyArray
	if len(last7Days) > 7 {
		last7Days = last7Days[:7]
	}
	last30Days := dailyArray
	if len(last30Days) > 30 {
		last30Days = last30Days[:30]
	}

	improvementTrend := 0.0
	if len(last7Days) >= 2 {
		improvementTrend = last7Days[0].AverageScore - last7Days[len(last7Days)-1].AverageScore
	}

	averageScore := 0.0
	if totalTests > 0 {
		averageScore = scoreSum / float64(totalTests)
	}

	averageTimePerQuestion := 0.0
	if totalQuestions > 0 {
		averageTimePerQuestion = float64(totalTimeSpent) / float64(totalQuestions)
	}

	consistencyScore := 0.0
	if len(dailyArray) > 0 {
		activeDays := 0
		for _, day := range dailyArray {
			if day.TestsAttempted > 0 {
				activeDays++
			}
		}
		consistencyScore = float64(activeDays) / float64(len(dailyArray)) * 100
	}

	return &dto.AnalyticsReport{
		Overview: dto.Overview{
			TotalTests:       totalTests,
			TotalQuestions:   totalQuestions,
			TotalCorrect:     totalCorrect,
			TotalWrong:       totalWrong,
			TotalTimeSpent:   totalTimeSpent,
			AverageScore:     averageScore,
			BestScore:        bestScore,
			WorstScore:       worstScore,
			CurrentStreak:    currentStreak,
			LongestStreak:    longestStreak,
			ImprovementTrend: improvementTrend,
		},
		DailyAnalytics:   dailyArray,
		SectionAnalytics: sectionStats,
		RecentActivity: dto.RecentActivity{
			Last7Days:  last7Days,
			Last30Days: last30Days,
		},
		Insights: dto.Insights{
			MostActiveSection:      pickSection(sectionStats, func(s *dto.SectionStats) float64 { return float64(s.Total) }, true),
			BestPerformingSection:  pickSection(sectionStats, func(s *dto.SectionStats) float64 { return s.Accuracy }, true),
			NeedsImprovement:       pickSection(sectionStats, func(s *dto.SectionStats) float64 { return s.Accuracy }, false),
			AverageTimePerQuestion: averageTimePerQuestion,
			ConsistencyScore:       consistencyScore,
		},
	}, nil
}

// computeStreaks walks the distinct activity dates newest-first. The current
// streak only counts when the most recent activity was today or yesterday;
// the longest streak considers every consecutive run in the history.
func computeStreaks(daily map[string]*dto.DailyStats, sortedDesc []string, today, yesterday string) (current, longest int) {
	_, hasToday := daily[today]
	_, hasYesterday := daily[yesterday]
	if hasToday || hasYesterday {
		current = 1
	}

	running := 0
	if len(sortedDesc) > 0 {
		running = 1
	}
	inCurrentRun := current > 0

	for i := 1; i < len(sortedDesc); i++ {
		if dayDiff(sortedDesc[i-1], sortedDesc[i]) == 1 {
			running++
			if inCurrentRun {
				current = running
			}
		} else {
			if running > longest {
				longest = running
			}
			running = 1
			inCurrentRun = false
		}
	}
	if running > longest {
		longest = running
	}
	return current, longest
}

// dayDiff returns newer minus older in whole calendar days.
func dayDiff(newer, older string) int {
	a, errA := time.Parse(dateLayout, newer)
	b, errB := time.Parse(dateLayout, older)
	if errA != nil || errB != nil {
		return -1
	}
	return int(a.Sub(b).Hours() / 24)
}

// pickSection scans sections in declaration order; strict comparison means
// the first-declared section wins ties.
func pickSection(stats map[model.Section]*dto.SectionStats, value func(*dto.SectionStats) float64, highest bool) model.Section {
	best := model.AllSections[0]
	bestVal := value(stats[best])
	for _, sec := range model.AllSections[1:] {
		v := value(stats[sec])
		if (highest && v > bestVal) || (!highest && v < bestVal) {
			best = sec
			bestVal = v
		}
	}
	return best
}
