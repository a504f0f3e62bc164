// Package storage реализует хранилище данных на основе PostgreSQL
// для двух логических коллекций подписок: одиночных и семейных.
// Предоставляет методы создания, чтения, обновления, продления,
// удаления и пакетной вставки записей.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с коллекциями подписок.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'single_subscriptions'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table single_subscriptions missing or query error: %w", err)
	}
	return nil
}

// ===== SINGLE SUBSCRIPTION METHODS =====

// CreateSingle вставляет новую одиночную подписку и возвращает её ID.
func (s *Storage) CreateSingle(ctx context.Context, sub models.Subscription) (string, error) {
	const op = "storage.CreateSingle"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO single_subscriptions (email, start_date, start_time,
			      duration_days, duration_hours, end_date, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		sub.Email, sub.StartDate, sub.StartTime, sub.DurationDays, sub.DurationHours,
		sub.EndDate, sub.CreatedAt).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSingle возвращает одиночную подписку по её ID.
func (s *Storage) GetSingle(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	const op = "storage.GetSingle"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, start_date, start_time, duration_days, duration_hours,
				  end_date, created_at, renewed_at
			  FROM single_subscriptions WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Subscription
	var renewedAt sql.NullTime
	if err := row.Scan(&result.ID, &result.Email, &result.StartDate, &result.StartTime,
		&result.DurationDays, &result.DurationHours, &result.EndDate,
		&result.CreatedAt, &renewedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if renewedAt.Valid {
		result.RenewedAt = &renewedAt.Time
	}
	return &result, nil
}

// ListSingle возвращает все одиночные подписки в порядке создания.
func (s *Storage) ListSingle(ctx context.Context) ([]*models.Subscription, error) {
	const op = "storage.ListSingle"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, start_date, start_time, duration_days, duration_hours,
				  end_date, created_at, renewed_at
			  FROM single_subscriptions
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		var item models.Subscription
		var renewedAt sql.NullTime
		if err := rows.Scan(&item.ID, &item.Email, &item.StartDate, &item.StartTime,
			&item.DurationDays, &item.DurationHours, &item.EndDate,
			&item.CreatedAt, &renewedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if renewedAt.Valid {
			item.RenewedAt = &renewedAt.Time
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateSingle перезаписывает данные одиночной подписки по её ID
// и возвращает количество изменённых строк.
func (s *Storage) UpdateSingle(ctx context.Context, id uuid.UUID, sub models.Subscription) (int, error) {
	const op = "storage.UpdateSingle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE single_subscriptions
			  SET email = $1, start_date = $2, start_time = $3,
			      duration_days = $4, duration_hours = $5, end_date = $6
			  WHERE id = $7`
	result, err := s.DB.ExecContext(ctx, query,
		sub.Email, sub.StartDate, sub.StartTime, sub.DurationDays, sub.DurationHours,
		sub.EndDate, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RenewSingle безусловно перезаписывает временные поля одиночной подписки
// и проставляет renewed_at. Возвращает количество изменённых строк.
func (s *Storage) RenewSingle(ctx context.Context, id uuid.UUID, fields models.RenewFields) (int, error) {
	const op = "storage.RenewSingle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE single_subscriptions
			  SET start_date = $1, start_time = $2, duration_days = $3,
			      duration_hours = $4, end_date = $5, renewed_at = $6
			  WHERE id = $7`
	result, err := s.DB.ExecContext(ctx, query,
		fields.StartDate, fields.StartTime, fields.DurationDays, fields.DurationHours,
		fields.EndDate, fields.RenewedAt, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveSingle удаляет одиночную подписку по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveSingle(ctx context.Context, id uuid.UUID) (int, error) {
	const op = "storage.RemoveSingle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM single_subscriptions WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// InsertManySingle вставляет пакет одиночных подписок в одной транзакции
// и возвращает количество вставленных строк.
func (s *Storage) InsertManySingle(ctx context.Context, subs []models.Subscription) (int, error) {
	const op = "storage.InsertManySingle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO single_subscriptions (email, start_date, start_time,
			      duration_days, duration_hours, end_date, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	var count int
	for _, sub := range subs {
		if _, err := tx.ExecContext(ctx, query,
			sub.Email, sub.StartDate, sub.StartTime, sub.DurationDays, sub.DurationHours,
			sub.EndDate, sub.CreatedAt); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ===== FAMILY GROUP METHODS =====

// CreateFamily вставляет новую семейную группу и возвращает её ID.
func (s *Storage) CreateFamily(ctx context.Context, group models.FamilyGroup) (string, error) {
	const op = "storage.CreateFamily"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	members, err := json.Marshal(group.MemberEmails)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO family_subscriptions (manager_email, member_emails, type,
			      start_date, start_time, duration_days, duration_hours, end_date, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var newID string
	err = s.DB.QueryRowContext(ctx, query,
		group.ManagerEmail, members, group.Type, group.StartDate, group.StartTime,
		group.DurationDays, group.DurationHours, group.EndDate, group.CreatedAt).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetFamily возвращает семейную группу по её ID.
func (s *Storage) GetFamily(ctx context.Context, id uuid.UUID) (*models.FamilyGroup, error) {
	const op = "storage.GetFamily"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, manager_email, member_emails, type, start_date, start_time,
				  duration_days, duration_hours, end_date, created_at, renewed_at
			  FROM family_subscriptions WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.FamilyGroup
	var members []byte
	var renewedAt sql.NullTime
	if err := row.Scan(&result.ID, &result.ManagerEmail, &members, &result.Type,
		&result.StartDate, &result.StartTime, &result.DurationDays, &result.DurationHours,
		&result.EndDate, &result.CreatedAt, &renewedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(members, &result.MemberEmails); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if renewedAt.Valid {
		result.RenewedAt = &renewedAt.Time
	}
	return &result, nil
}

// ListFamily возвращает все семейные группы в порядке создания.
func (s *Storage) ListFamily(ctx context.Context) ([]*models.FamilyGroup, error) {
	const op = "storage.ListFamily"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, manager_email, member_emails, type, start_date, start_time,
				  duration_days, duration_hours, end_date, created_at, renewed_at
			  FROM family_subscriptions
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.FamilyGroup
	for rows.Next() {
		var item models.FamilyGroup
		var members []byte
		var renewedAt sql.NullTime
		if err := rows.Scan(&item.ID, &item.ManagerEmail, &members, &item.Type,
			&item.StartDate, &item.StartTime, &item.DurationDays, &item.DurationHours,
			&item.EndDate, &item.CreatedAt, &renewedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := json.Unmarshal(members, &item.MemberEmails); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if renewedAt.Valid {
			item.RenewedAt = &renewedAt.Time
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateFamily перезаписывает данные семейной группы по её ID
// и возвращает количество изменённых строк.
func (s *Storage) UpdateFamily(ctx context.Context, id uuid.UUID, group models.FamilyGroup) (int, error) {
	const op = "storage.UpdateFamily"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	members, err := json.Marshal(group.MemberEmails)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE family_subscriptions
			  SET manager_email = $1, member_emails = $2, type = $3, start_date = $4,
			      start_time = $5, duration_days = $6, duration_hours = $7, end_date = $8
			  WHERE id = $9`
	result, err := s.DB.ExecContext(ctx, query,
		group.ManagerEmail, members, group.Type, group.StartDate, group.StartTime,
		group.DurationDays, group.DurationHours, group.EndDate, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RenewFamily безусловно перезаписывает временные поля семейной группы
// и проставляет renewed_at. Возвращает количество изменённых строк.
func (s *Storage) RenewFamily(ctx context.Context, id uuid.UUID, fields models.RenewFields) (int, error) {
	const op = "storage.RenewFamily"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE family_subscriptions
			  SET start_date = $1, start_time = $2, duration_days = $3,
			      duration_hours = $4, end_date = $5, renewed_at = $6
			  WHERE id = $7`
	result, err := s.DB.ExecContext(ctx, query,
		fields.StartDate, fields.StartTime, fields.DurationDays, fields.DurationHours,
		fields.EndDate, fields.RenewedAt, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveFamily удаляет семейную группу по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveFamily(ctx context.Context, id uuid.UUID) (int, error) {
	const op = "storage.RemoveFamily"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM family_subscriptions WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// InsertManyFamily вставляет пакет семейных групп в одной транзакции
// и возвращает количество вставленных строк.
func (s *Storage) InsertManyFamily(ctx context.Context, groups []models.FamilyGroup) (int, error) {
	const op = "storage.InsertManyFamily"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO family_subscriptions (manager_email, member_emails, type,
			      start_date, start_time, duration_days, duration_hours, end_date, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	var count int
	for _, group := range groups {
		members, err := json.Marshal(group.MemberEmails)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		if _, err := tx.ExecContext(ctx, query,
			group.ManagerEmail, members, group.Type, group.StartDate, group.StartTime,
			group.DurationDays, group.DurationHours, group.EndDate, group.CreatedAt); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
