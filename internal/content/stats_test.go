package content

import (
	"math"
	"testing"
)

func TestAverageScoreWeighsByQuestions(t *testing.T) {
	quizzes := []Quiz{
		{ID: "q1", ContentID: "m1", Score: 3, Questions: make([]QuizQuestion, 5)},
		{ID: "q2", ContentID: "m2", Score: 4, Questions: make([]QuizQuestion, 4)},
	}
	// 7 correct of 9 total, not the mean of 60% and 100%.
	got := AverageScore(quizzes)
	want := 7.0 / 9.0 * 100
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("AverageScore = %v, want %v", got, want)
	}
	if math.Abs(got-77.8) > 0.1 {
		t.Errorf("AverageScore = %v, want ~77.8", got)
	}
}

func TestAverageScoreEmpty(t *testing.T) {
	if got := AverageScore(nil); got != 0 {
		t.Errorf("AverageScore(nil) = %v", got)
	}
}

func TestComputeStats(t *testing.T) {
	ms := []MaterialSummary{{ID: "m1"}, {ID: "m2"}}
	qs := []Quiz{{Score: 2, Questions: make([]QuizQuestion, 4)}}
	st := ComputeStats(ms, qs)
	if st.Materials != 2 || st.QuizzesTaken != 1 || st.TotalCorrect != 2 || st.TotalQuestions != 4 {
		t.Errorf("stats = %+v", st)
	}
	if st.AveragePercent != 50 {
		t.Errorf("AveragePercent = %v", st.AveragePercent)
	}
}
