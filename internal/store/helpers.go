package store

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

func uniq(ids []uuid.UUID) []uuid.UUID { return lo.Uniq(ids) }

func anys(ids []uuid.UUID) []any {
	return lo.Map(uniq(ids), func(id uuid.UUID, _ int) any { return id })
}
