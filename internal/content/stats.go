package content

// DashboardStats aggregates quiz history across all materials.
type DashboardStats struct {
	Materials      int     `json:"materials"`
	QuizzesTaken   int     `json:"quizzes_taken"`
	TotalCorrect   int     `json:"total_correct"`
	TotalQuestions int     `json:"total_questions"`
	AveragePercent float64 `json:"average_percent"`
}

// AverageScore is total correct over total questions across every quiz,
// as a percentage. Scores of 3/5 and 4/4 average to 7/9, not (60+100)/2.
func AverageScore(quizzes []Quiz) float64 {
	correct, total := 0, 0
	for _, q := range quizzes {
		correct += q.Score
		total += len(q.Questions)
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

func ComputeStats(materials []MaterialSummary, quizzes []Quiz) DashboardStats {
	correct, total := 0, 0
	for _, q := range quizzes {
		correct += q.Score
		total += len(q.Questions)
	}
	return DashboardStats{
		Materials:      len(materials),
		QuizzesTaken:   len(quizzes),
		TotalCorrect:   correct,
		TotalQuestions: total,
		AveragePercent: AverageScore(quizzes),
	}
}
