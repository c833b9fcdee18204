package solutions

import (
	"context"
	"fmt"

	"github.com/Vovadm/exammath.ru/internal/models"
)

// historyLimit caps the profile history endpoint.
const historyLimit = 50

// Service holds the answer-checking and statistics read paths. The
// grading rules live in Evaluate/ApplyCheck; the store provides
// atomicity.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CheckAnswer grades a submission and records it. On any storage
// failure nothing is recorded and the error is returned, so a client
// retry sees consistent stats.
func (s *Service) CheckAnswer(ctx context.Context, userID, taskID int64, answer string) (*models.CheckAnswerResponse, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	result := Evaluate(task, answer)

	if err := s.store.RecordCheck(ctx, userID, task, answer, result.Correct); err != nil {
		return nil, fmt.Errorf("record check: %w", err)
	}
	return &result, nil
}

// Stats returns the user's aggregate with derived accuracy. Users with
// no attempts get an all-zero summary.
func (s *Service) Stats(ctx context.Context, userID int64) (*models.StatsResponse, error) {
	st, err := s.store.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st.StatsByType == nil {
		st.StatsByType = map[string]models.TypeStat{}
	}
	return &models.StatsResponse{
		TotalAttempts:   st.TotalAttempts,
		CorrectAttempts: st.CorrectAttempts,
		TasksSolved:     st.TasksSolved,
		Accuracy:        Accuracy(st.CorrectAttempts, st.TotalAttempts),
		StreakCurrent:   st.StreakCurrent,
		StreakMax:       st.StreakMax,
		LastActivity:    st.LastActivity,
		StatsByType:     st.StatsByType,
	}, nil
}

// History returns the user's latest attempts, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	return s.store.History(ctx, userID, historyLimit)
}
