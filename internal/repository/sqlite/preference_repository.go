package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const preferencesTable = "preferences"

type preferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new PreferenceRepository implementation
func NewPreferenceRepository(db *sql.DB) repository.PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("preference_repo")
	log.Debug("getting preference: %s", key)

	query, args, err := sqlBuilder.
		Select("value").
		From(preferencesTable).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", false, err
	}

	var value string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("preference %s not set", key)
		return "", false, nil
	}
	if err != nil {
		log.Error("failed to get preference %s: %v", key, err)
		return "", false, err
	}
	return value, true, nil
}

func (r *preferenceRepository) Set(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx).WithPrefix("preference_repo")
	log.Debug("setting preference %s=%s", key, value)

	query, args, err := sqlBuilder.
		Insert(preferencesTable).
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP").
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to set preference %s: %v", key, err)
		return err
	}
	return nil
}

func (r *preferenceRepository) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx).WithPrefix("preference_repo")
	log.Debug("deleting preference: %s", key)

	query, args, err := sqlBuilder.
		Delete(preferencesTable).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to delete preference %s: %v", key, err)
		return err
	}
	return nil
}
