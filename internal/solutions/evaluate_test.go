package solutions

import (
	"testing"
	"time"

	"github.com/Vovadm/exammath.ru/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "42", "42"},
		{"surrounding whitespace", "  42  ", "42"},
		{"decimal comma", "0,5", "0.5"},
		{"decimal point unchanged", "0.5", "0.5"},
		{"uppercase folded", "ABC", "abc"},
		{"mixed", "  -1,25E3  ", "-1.25e3"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
		{"multiple commas", "1,2,3", "1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func strPtr(s string) *string { return &s }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		answer      *string
		submitted   string
		wantCorrect bool
		wantReveal  bool
	}{
		{"exact match", strPtr("0.5"), "0.5", true, false},
		{"comma matches point", strPtr("0.5"), "0,5", true, false},
		{"whitespace ignored", strPtr("abc"), "  ABC  ", true, false},
		{"wrong reveals", strPtr("0.5"), "7", false, true},
		{"empty submission reveals", strPtr("0.5"), "", false, true},
		{"no canonical answer", nil, "anything", false, false},
		{"empty canonical answer", strPtr(""), "anything", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &models.Task{ID: 1, TaskType: 3, Answer: tt.answer}
			got := Evaluate(task, tt.submitted)
			if got.Correct != tt.wantCorrect {
				t.Errorf("Correct = %v, want %v", got.Correct, tt.wantCorrect)
			}
			if (got.CorrectAnswer != nil) != tt.wantReveal {
				t.Errorf("CorrectAnswer revealed = %v, want %v", got.CorrectAnswer != nil, tt.wantReveal)
			}
		})
	}
}

func TestApplyCheckCorrect(t *testing.T) {
	st := &models.UserStats{}
	now := time.Now()

	ApplyCheck(st, 5, true, true, now)

	if st.TotalAttempts != 1 || st.CorrectAttempts != 1 || st.TasksSolved != 1 {
		t.Errorf("got totals %d/%d/%d, want 1/1/1",
			st.TotalAttempts, st.CorrectAttempts, st.TasksSolved)
	}
	if st.StreakCurrent != 1 || st.StreakMax != 1 {
		t.Errorf("got streak %d/%d, want 1/1", st.StreakCurrent, st.StreakMax)
	}
	if st.LastActivity == nil || !st.LastActivity.Equal(now) {
		t.Errorf("LastActivity not set to %v", now)
	}
	if ts := st.StatsByType["5"]; ts.Attempts != 1 || ts.Correct != 1 {
		t.Errorf("type bucket = %+v, want 1/1", ts)
	}
}

func TestApplyCheckIncorrectResetsStreak(t *testing.T) {
	st := &models.UserStats{}
	now := time.Now()

	ApplyCheck(st, 2, true, true, now)
	ApplyCheck(st, 2, true, true, now)
	ApplyCheck(st, 2, false, false, now)

	if st.StreakCurrent != 0 {
		t.Errorf("StreakCurrent = %d, want 0 after a miss", st.StreakCurrent)
	}
	if st.StreakMax != 2 {
		t.Errorf("StreakMax = %d, want high-water 2", st.StreakMax)
	}
	if st.TotalAttempts != 3 || st.CorrectAttempts != 2 {
		t.Errorf("totals = %d/%d, want 3/2", st.TotalAttempts, st.CorrectAttempts)
	}
	if ts := st.StatsByType["2"]; ts.Attempts != 3 || ts.Correct != 2 {
		t.Errorf("type bucket = %+v, want 3/2", ts)
	}
}

func TestApplyCheckRepeatSolveNoExtraCredit(t *testing.T) {
	st := &models.UserStats{}
	now := time.Now()

	ApplyCheck(st, 1, true, true, now)
	ApplyCheck(st, 1, true, false, now)

	if st.TasksSolved != 1 {
		t.Errorf("TasksSolved = %d, want 1 for repeat solves", st.TasksSolved)
	}
	if st.CorrectAttempts != 2 {
		t.Errorf("CorrectAttempts = %d, want 2", st.CorrectAttempts)
	}
}

func TestApplyCheckInvariants(t *testing.T) {
	st := &models.UserStats{}
	now := time.Now()

	seq := []struct {
		taskType   int
		correct    bool
		firstSolve bool
	}{
		{1, true, true}, {1, false, false}, {2, true, true},
		{2, true, false}, {0, false, false}, {3, true, true},
		{3, false, false}, {1, true, false},
	}
	for _, s := range seq {
		ApplyCheck(st, s.taskType, s.correct, s.firstSolve, now)
	}

	if st.CorrectAttempts > st.TotalAttempts {
		t.Errorf("correct %d exceeds total %d", st.CorrectAttempts, st.TotalAttempts)
	}
	if st.TasksSolved > st.CorrectAttempts {
		t.Errorf("solved %d exceeds correct %d", st.TasksSolved, st.CorrectAttempts)
	}
	if st.StreakMax < st.StreakCurrent {
		t.Errorf("streak max %d below current %d", st.StreakMax, st.StreakCurrent)
	}

	var attempts, correct int
	for _, ts := range st.StatsByType {
		attempts += ts.Attempts
		correct += ts.Correct
	}
	if attempts != st.TotalAttempts || correct != st.CorrectAttempts {
		t.Errorf("per-type sums %d/%d disagree with totals %d/%d",
			attempts, correct, st.TotalAttempts, st.CorrectAttempts)
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		correct, total int
		want           float64
	}{
		{0, 0, 0},
		{1, 2, 50},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{3, 3, 100},
	}
	for _, tt := range tests {
		if got := Accuracy(tt.correct, tt.total); got != tt.want {
			t.Errorf("Accuracy(%d, %d) = %v, want %v", tt.correct, tt.total, got, tt.want)
		}
	}
}
