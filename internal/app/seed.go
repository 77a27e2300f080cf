package app

import (
	"assessment_backend/internal/model"

	"github.com/shopspring/decimal"
)

func demoAssignment() *model.Assignment {
	return &model.Assignment{
		ClassroomID:     1,
		CreatorID:       1,
		Title:           "Go 基础小测",
		Description:     "两道选择题和一道简答题",
		DurationMinutes: 30,
		MaxAttempts:     2,
		Questions: []model.Question{
			{
				Kind:   model.QuestionMcq,
				Prompt: "Which keyword starts a goroutine?",
				Points: decimal.NewFromInt(1),
				Order:  1,
				Choices: []model.Choice{
					{Text: "go", IsCorrect: true, Order: 1},
					{Text: "async", Order: 2},
					{Text: "spawn", Order: 3},
				},
			},
			{
				Kind:   model.QuestionMcq,
				Prompt: "What is the zero value of a map?",
				Points: decimal.NewFromInt(1),
				Order:  2,
				Choices: []model.Choice{
					{Text: "an empty map", Order: 1},
					{Text: "nil", IsCorrect: true, Order: 2},
				},
			},
			{
				Kind:   model.QuestionEssay,
				Prompt: "Explain when you would use a buffered channel.",
				Points: decimal.NewFromInt(2),
				Order:  3,
			},
		},
	}
}
