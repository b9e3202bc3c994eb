package sqlite

import (
	"context"
	"database/sql"

	"github.com/sirupsen/logrus"

	"message-board/internal/repository/sqlite/migrations"
)

// Migrate brings the schema up to date. It is safe to call repeatedly.
func Migrate(ctx context.Context, db *sql.DB, logger logrus.FieldLogger) error {
	return migrations.Run(ctx, db, logger)
}
