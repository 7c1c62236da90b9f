package handlers

import (
	"context"

	"github.com/markusmuilu/Predicting-Nba/internal/logic"
)

type MockPredictor struct {
	PredictFunc func(ctx context.Context, home, away, date string) (float64, error)
}

func (m *MockPredictor) Predict(ctx context.Context, home, away, date string) (float64, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, home, away, date)
	}
	return 0.5, nil
}

type MockCycle struct {
	RunFunc func(ctx context.Context) (logic.CycleReport, error)
}

func (m *MockCycle) Run(ctx context.Context) (logic.CycleReport, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return logic.CycleReport{}, nil
}

type MockChecker struct {
	ExistsFunc func(ctx context.Context, key string) (bool, error)
}

func (m *MockChecker) Exists(ctx context.Context, key string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, key)
	}
	return true, nil
}
