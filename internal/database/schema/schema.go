// Package schema owns the full table set so the API and the migrate command
// agree on it.
package schema

import (
	"gorm.io/gorm"

	"propcare/internal/database"
	"propcare/internal/domain/cases"
	"propcare/internal/domain/notification"
	"propcare/internal/domain/policy"
	"propcare/internal/domain/quote"
	"propcare/internal/domain/roster"
	"propcare/internal/domain/timeline"
)

func Models() []any {
	var models []any
	models = append(models, cases.Models()...)
	models = append(models, &timeline.CaseEvent{})
	models = append(models, policy.Models()...)
	models = append(models, roster.Models()...)
	models = append(models, quote.Models()...)
	models = append(models, notification.Models()...)
	return models
}

func Indexes() []string {
	var stmts []string
	stmts = append(stmts, policy.Indexes...)
	stmts = append(stmts, quote.Indexes...)
	return stmts
}

func Migrate(db *gorm.DB) error {
	return database.Migrate(db, Models(), Indexes())
}
