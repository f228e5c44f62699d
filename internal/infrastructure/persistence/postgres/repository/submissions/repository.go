// internal/infrastructure/persistence/postgres/repository/submissions/repository.go
package submissions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"trading-journal-bot/internal/core/domain/journal"
)

// SubmissionRow - строка архива сабмитов
type SubmissionRow struct {
	ID        int64     `db:"id"`
	Key       string    `db:"key"`
	Identity  string    `db:"identity"`
	PageID    string    `db:"page_id"`
	Seq       int       `db:"seq"`
	Fields    []byte    `db:"fields"`
	CreatedAt time.Time `db:"created_at"`
}

// Repository - локальный архив отправленных трейдов. Архив вторичен
// относительно Notion: запись сюда не влияет на ответ пользователю.
type Repository struct {
	db *sqlx.DB
}

// NewRepository создает репозиторий архива
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SaveSubmission пишет отправленный трейд в архив. Повторная запись
// с тем же клиентским ключом игнорируется.
func (r *Repository) SaveSubmission(ctx context.Context, identity string, rec journal.Record) error {
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO submissions (key, identity, page_id, seq, fields, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, rec.Key, identity, rec.PageID, rec.Seq, fields, rec.CreatedAt); err != nil {
		return fmt.Errorf("архив сабмита: %w", err)
	}
	return nil
}

// Recent возвращает последние сабмиты пользователя из архива
func (r *Repository) Recent(ctx context.Context, identity string, limit int) ([]journal.Record, error) {
	var rows []SubmissionRow
	query := `
		SELECT id, key, identity, page_id, seq, fields, created_at
		FROM submissions
		WHERE identity = $1
		ORDER BY created_at DESC
		LIMIT $2`
	if err := r.db.SelectContext(ctx, &rows, query, identity, limit); err != nil {
		return nil, fmt.Errorf("чтение архива: %w", err)
	}

	records := make([]journal.Record, 0, len(rows))
	for _, row := range rows {
		rec := journal.Record{
			Key:       row.Key,
			PageID:    row.PageID,
			Seq:       row.Seq,
			CreatedAt: row.CreatedAt,
		}
		if err := json.Unmarshal(row.Fields, &rec.Fields); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
