package solutions

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Vovadm/exammath.ru/internal/models"
)

// Normalize canonicalizes a free-form answer for comparison: trim
// surrounding whitespace, treat the decimal comma as a decimal point,
// and fold to lower case. "0,5" and " 0.5 " compare equal.
func Normalize(answer string) string {
	s := strings.TrimSpace(answer)
	s = strings.ReplaceAll(s, ",", ".")
	return strings.ToLower(s)
}

// Evaluate grades a submitted answer against a task. A task with no
// canonical answer is never correct and never reveals anything.
func Evaluate(task *models.Task, submitted string) models.CheckAnswerResponse {
	if !task.HasAnswer() {
		return models.CheckAnswerResponse{Correct: false}
	}
	if Normalize(submitted) == Normalize(*task.Answer) {
		return models.CheckAnswerResponse{Correct: true}
	}
	return models.CheckAnswerResponse{CorrectAnswer: task.Answer}
}

// ApplyCheck folds one graded attempt into the user's statistics.
// firstSolve must be true only when the attempt is correct and the
// user had no earlier correct solution for this task. Callers run
// this inside whatever locking their store provides; the function
// itself is pure state transition.
func ApplyCheck(st *models.UserStats, taskType int, correct, firstSolve bool, now time.Time) {
	st.TotalAttempts++
	st.LastActivity = &now

	if st.StatsByType == nil {
		st.StatsByType = make(map[string]models.TypeStat)
	}
	key := strconv.Itoa(taskType)
	ts := st.StatsByType[key]
	ts.Attempts++

	if correct {
		st.CorrectAttempts++
		st.StreakCurrent++
		if st.StreakCurrent > st.StreakMax {
			st.StreakMax = st.StreakCurrent
		}
		if firstSolve {
			st.TasksSolved++
		}
		ts.Correct++
	} else {
		st.StreakCurrent = 0
	}

	st.StatsByType[key] = ts
}

// Accuracy returns the correct/total percentage rounded to one
// decimal place, 0 when there are no attempts.
func Accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*1000) / 10
}
