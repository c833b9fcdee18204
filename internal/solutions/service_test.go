package solutions

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/Vovadm/exammath.ru/internal/models"
)

func newTestService(tasks ...*models.Task) (*Service, *memoryStore) {
	store := newMemoryStore(tasks...)
	return NewService(store), store
}

func TestCheckAnswerUnknownTask(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CheckAnswer(context.Background(), 1, 999, "42")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}

	stats, err := svc.Stats(context.Background(), 1)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalAttempts != 0 {
		t.Errorf("TotalAttempts = %d, failed check must not count", stats.TotalAttempts)
	}
}

func TestCheckAnswerCorrect(t *testing.T) {
	svc, _ := newTestService(&models.Task{ID: 1, TaskType: 4, Answer: strPtr("0.5")})

	res, err := svc.CheckAnswer(context.Background(), 1, 1, " 0,5 ")
	if err != nil {
		t.Fatalf("CheckAnswer: %v", err)
	}
	if !res.Correct {
		t.Error("expected correct verdict for equivalent notation")
	}
	if res.CorrectAnswer != nil {
		t.Error("correct verdict must not reveal the answer")
	}

	stats, _ := svc.Stats(context.Background(), 1)
	if stats.TotalAttempts != 1 || stats.CorrectAttempts != 1 || stats.TasksSolved != 1 {
		t.Errorf("stats = %d/%d/%d, want 1/1/1",
			stats.TotalAttempts, stats.CorrectAttempts, stats.TasksSolved)
	}
	if stats.Accuracy != 100 {
		t.Errorf("Accuracy = %v, want 100", stats.Accuracy)
	}
}

func TestCheckAnswerIncorrectReveals(t *testing.T) {
	svc, _ := newTestService(&models.Task{ID: 1, TaskType: 4, Answer: strPtr("12")})

	res, err := svc.CheckAnswer(context.Background(), 1, 1, "13")
	if err != nil {
		t.Fatalf("CheckAnswer: %v", err)
	}
	if res.Correct {
		t.Error("expected incorrect verdict")
	}
	if res.CorrectAnswer == nil || *res.CorrectAnswer != "12" {
		t.Errorf("CorrectAnswer = %v, want the canonical answer", res.CorrectAnswer)
	}

	stats, _ := svc.Stats(context.Background(), 1)
	if stats.StreakCurrent != 0 {
		t.Errorf("StreakCurrent = %d, want 0", stats.StreakCurrent)
	}
}

func TestCheckAnswerUnanswerableTask(t *testing.T) {
	svc, _ := newTestService(&models.Task{ID: 1, TaskType: 15})

	res, err := svc.CheckAnswer(context.Background(), 1, 1, "whatever")
	if err != nil {
		t.Fatalf("CheckAnswer: %v", err)
	}
	if res.Correct {
		t.Error("task without canonical answer can never be correct")
	}
	if res.CorrectAnswer != nil {
		t.Error("task without canonical answer must reveal nothing")
	}

	// The attempt still counts.
	stats, _ := svc.Stats(context.Background(), 1)
	if stats.TotalAttempts != 1 || stats.CorrectAttempts != 0 {
		t.Errorf("stats = %d/%d, want 1/0", stats.TotalAttempts, stats.CorrectAttempts)
	}
}

func TestRepeatCorrectNoDoubleCredit(t *testing.T) {
	svc, _ := newTestService(&models.Task{ID: 1, TaskType: 1, Answer: strPtr("7")})

	for i := 0; i < 3; i++ {
		if _, err := svc.CheckAnswer(context.Background(), 1, 1, "7"); err != nil {
			t.Fatalf("CheckAnswer: %v", err)
		}
	}

	stats, _ := svc.Stats(context.Background(), 1)
	if stats.TasksSolved != 1 {
		t.Errorf("TasksSolved = %d, want 1 regardless of repeats", stats.TasksSolved)
	}
	if stats.CorrectAttempts != 3 {
		t.Errorf("CorrectAttempts = %d, want 3", stats.CorrectAttempts)
	}
}

func TestStatsNoActivity(t *testing.T) {
	svc, _ := newTestService()

	stats, err := svc.Stats(context.Background(), 42)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalAttempts != 0 || stats.Accuracy != 0 {
		t.Errorf("expected zero summary, got %+v", stats)
	}
	if stats.StatsByType == nil {
		t.Error("StatsByType must be an empty map, not nil")
	}
	if stats.LastActivity != nil {
		t.Error("LastActivity must be unset with no attempts")
	}
}

func TestStatsAccuracyRounding(t *testing.T) {
	svc, _ := newTestService(&models.Task{ID: 1, TaskType: 1, Answer: strPtr("1")})

	svc.CheckAnswer(context.Background(), 1, 1, "1")
	svc.CheckAnswer(context.Background(), 1, 1, "2")
	svc.CheckAnswer(context.Background(), 1, 1, "3")

	stats, _ := svc.Stats(context.Background(), 1)
	if stats.Accuracy != 33.3 {
		t.Errorf("Accuracy = %v, want 33.3", stats.Accuracy)
	}
}

func TestHistoryOrderAndLimit(t *testing.T) {
	task := &models.Task{ID: 1, TaskType: 1, Answer: strPtr("1")}
	svc, _ := newTestService(task)

	for i := 0; i < historyLimit+10; i++ {
		if _, err := svc.CheckAnswer(context.Background(), 1, 1, "1"); err != nil {
			t.Fatalf("CheckAnswer: %v", err)
		}
	}

	history, err := svc.History(context.Background(), 1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != historyLimit {
		t.Fatalf("len(history) = %d, want %d", len(history), historyLimit)
	}
	for i := 1; i < len(history); i++ {
		if history[i-1].ID < history[i].ID {
			t.Fatalf("history not newest-first at index %d", i)
		}
	}
}

func TestHistoryScopedToUser(t *testing.T) {
	task := &models.Task{ID: 1, TaskType: 1, Answer: strPtr("1")}
	svc, _ := newTestService(task)

	svc.CheckAnswer(context.Background(), 1, 1, "1")
	svc.CheckAnswer(context.Background(), 2, 1, "1")

	history, err := svc.History(context.Background(), 1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("len(history) = %d, want only user 1's attempt", len(history))
	}
}

func TestConcurrentCorrectChecksBothCount(t *testing.T) {
	taskA := &models.Task{ID: 1, TaskType: 1, Answer: strPtr("1")}
	taskB := &models.Task{ID: 2, TaskType: 2, Answer: strPtr("2")}
	svc, _ := newTestService(taskA, taskB)

	var g errgroup.Group
	g.Go(func() error {
		_, err := svc.CheckAnswer(context.Background(), 1, 1, "1")
		return err
	})
	g.Go(func() error {
		_, err := svc.CheckAnswer(context.Background(), 1, 2, "2")
		return err
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent checks: %v", err)
	}

	stats, _ := svc.Stats(context.Background(), 1)
	if stats.TotalAttempts != 2 || stats.CorrectAttempts != 2 || stats.TasksSolved != 2 {
		t.Errorf("stats = %d/%d/%d, want 2/2/2 with no lost update",
			stats.TotalAttempts, stats.CorrectAttempts, stats.TasksSolved)
	}
}

func TestConcurrentChecksNoLostUpdates(t *testing.T) {
	taskA := &models.Task{ID: 1, TaskType: 1, Answer: strPtr("1")}
	taskB := &models.Task{ID: 2, TaskType: 2, Answer: strPtr("2")}
	svc, _ := newTestService(taskA, taskB)

	const perTask = 25

	var g errgroup.Group
	for i := 0; i < perTask; i++ {
		g.Go(func() error {
			_, err := svc.CheckAnswer(context.Background(), 1, 1, "1")
			return err
		})
		g.Go(func() error {
			_, err := svc.CheckAnswer(context.Background(), 1, 2, "wrong")
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent checks: %v", err)
	}

	stats, _ := svc.Stats(context.Background(), 1)
	if stats.TotalAttempts != 2*perTask {
		t.Errorf("TotalAttempts = %d, want %d", stats.TotalAttempts, 2*perTask)
	}
	if stats.CorrectAttempts != perTask {
		t.Errorf("CorrectAttempts = %d, want %d", stats.CorrectAttempts, perTask)
	}
	if stats.TasksSolved != 1 {
		t.Errorf("TasksSolved = %d, want 1", stats.TasksSolved)
	}

	ts1 := stats.StatsByType["1"]
	ts2 := stats.StatsByType["2"]
	if ts1.Attempts != perTask || ts1.Correct != perTask {
		t.Errorf("type 1 bucket = %+v, want %d/%d", ts1, perTask, perTask)
	}
	if ts2.Attempts != perTask || ts2.Correct != 0 {
		t.Errorf("type 2 bucket = %+v, want %d/0", ts2, perTask)
	}
}
