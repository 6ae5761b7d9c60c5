package core

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type (
	DBExecutor interface {
		sqlx.ExecerContext
		sqlx.QueryerContext
	}

	DB interface {
		DBExecutor

		PingContext(ctx context.Context) error
		Close() error
	}
)

var _ DB = (*sqlx.DB)(nil)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
