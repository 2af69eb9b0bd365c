package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"calendar-service/internal/models"
	"calendar-service/pkg/response"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// #### users ####

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	const op = "storage.postgres.CreateUser"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, timezone) VALUES ($1, $2, $3, $4)`,
		user.ID,
		user.Name,
		user.Email,
		user.Timezone,
	)
	if err != nil {
		sqlErr, ok := err.(*pq.Error)
		if ok && sqlErr.Code == "23505" {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.postgres.GetUser"

	var user models.User

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, timezone FROM users WHERE id=$1`, id).
		Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Timezone,
		)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

// #### availability windows ####

func (s *Storage) GetWindowsByDate(ctx context.Context, ownerID string, date time.Time) ([]*models.AvailabilityWindow, error) {
	const op = "storage.postgres.GetWindowsByDate"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, day_of_week, specific_date, start_time, end_time
		FROM availability_windows
		WHERE owner_id=$1 AND specific_date=$2
		ORDER BY id`,
		ownerID,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	return scanWindows(op, rows)
}

func (s *Storage) GetWindowsByWeekday(ctx context.Context, ownerID string, dayOfWeek int) ([]*models.AvailabilityWindow, error) {
	const op = "storage.postgres.GetWindowsByWeekday"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, day_of_week, specific_date, start_time, end_time
		FROM availability_windows
		WHERE owner_id=$1 AND specific_date IS NULL AND day_of_week=$2
		ORDER BY id`,
		ownerID,
		dayOfWeek,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	return scanWindows(op, rows)
}

func scanWindows(op string, rows *sql.Rows) ([]*models.AvailabilityWindow, error) {
	var windows []*models.AvailabilityWindow

	for rows.Next() {
		var w models.AvailabilityWindow

		err := rows.Scan(&w.ID, &w.OwnerID, &w.DayOfWeek, &w.SpecificDate, &w.Start, &w.End)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		windows = append(windows, &w)
	}

	return windows, nil
}

// ReplaceWindows removes, per window, the prior windows sharing that window's
// weekday (recurring) or specific date, then inserts the replacements. The
// whole replacement runs in one transaction so readers never observe a
// half-replaced day.
func (s *Storage) ReplaceWindows(ctx context.Context, ownerID string, windows []*models.AvailabilityWindow) error {
	const op = "storage.postgres.ReplaceWindows"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	for _, window := range windows {
		if window.DayOfWeek != nil {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM availability_windows
				WHERE owner_id=$1 AND specific_date IS NULL AND day_of_week=$2`,
				ownerID,
				*window.DayOfWeek,
			)
		} else {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM availability_windows WHERE owner_id=$1 AND specific_date=$2`,
				ownerID,
				*window.SpecificDate,
			)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO availability_windows
			(id, owner_id, day_of_week, specific_date, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			window.ID,
			window.OwnerID,
			window.DayOfWeek,
			window.SpecificDate,
			window.Start,
			window.End,
		)
		if err != nil {
			sqlErr, ok := err.(*pq.Error)
			if ok && sqlErr.Code == "23503" {
				return fmt.Errorf("%s: %w", op, response.ErrNotFound)
			}

			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

// #### commitments ####

// ListOccupying returns the commitments that block time for the owner on the
// given date, i.e. those with status booked or rescheduled.
func (s *Storage) ListOccupying(ctx context.Context, ownerID string, date time.Time) ([]*models.Commitment, error) {
	const op = "storage.postgres.ListOccupying"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, invitee_name, invitee_email, date, start_time, end_time, status
		FROM commitments
		WHERE owner_id=$1 AND date=$2 AND status IN ($3, $4)
		ORDER BY start_time`,
		ownerID,
		date,
		string(models.StatusBooked),
		string(models.StatusRescheduled),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	return scanCommitments(op, rows)
}

// HasOverlapping reports whether any occupying commitment for the owner on the
// date strictly overlaps [start, end). excludeID skips one commitment, used
// when rescheduling it.
func (s *Storage) HasOverlapping(ctx context.Context, ownerID string, date time.Time, start, end models.ClockTime, excludeID string) (bool, error) {
	const op = "storage.postgres.HasOverlapping"

	var exists bool

	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM commitments
			WHERE owner_id=$1 AND date=$2
			AND start_time < $3 AND end_time > $4
			AND status IN ($5, $6)
			AND id != $7
		)`,
		ownerID,
		date,
		end,
		start,
		string(models.StatusBooked),
		string(models.StatusRescheduled),
		excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

func (s *Storage) CreateCommitment(ctx context.Context, c *models.Commitment) error {
	const op = "storage.postgres.CreateCommitment"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO commitments
		(id, owner_id, invitee_name, invitee_email, date, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID,
		c.OwnerID,
		c.InviteeName,
		c.InviteeEmail,
		c.Date,
		c.Start,
		c.End,
		string(c.Status),
	)
	if err != nil {
		sqlErr, ok := err.(*pq.Error)
		if ok && sqlErr.Code == "23503" {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetCommitment(ctx context.Context, id string) (*models.Commitment, error) {
	const op = "storage.postgres.GetCommitment"

	var c models.Commitment

	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, invitee_name, invitee_email, date, start_time, end_time, status
		FROM commitments WHERE id=$1`, id).
		Scan(
			&c.ID,
			&c.OwnerID,
			&c.InviteeName,
			&c.InviteeEmail,
			&c.Date,
			&c.Start,
			&c.End,
			&c.Status,
		)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &c, nil
}

// ListCommitments returns the owner's commitments excluding cancelled ones,
// optionally bounded by a date range.
func (s *Storage) ListCommitments(ctx context.Context, ownerID string, from, to *time.Time) ([]*models.Commitment, error) {
	const op = "storage.postgres.ListCommitments"

	query := `SELECT id, owner_id, invitee_name, invitee_email, date, start_time, end_time, status
		FROM commitments
		WHERE owner_id=$1 AND status != $2`
	args := []any{ownerID, string(models.StatusCancelled)}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}

	query += " ORDER BY date, start_time"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	return scanCommitments(op, rows)
}

func scanCommitments(op string, rows *sql.Rows) ([]*models.Commitment, error) {
	var commitments []*models.Commitment

	for rows.Next() {
		var c models.Commitment

		err := rows.Scan(&c.ID, &c.OwnerID, &c.InviteeName, &c.InviteeEmail, &c.Date, &c.Start, &c.End, &c.Status)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		commitments = append(commitments, &c)
	}

	return commitments, nil
}

func (s *Storage) UpdateCommitmentStatus(ctx context.Context, id string, status models.CommitmentStatus) error {
	const op = "storage.postgres.UpdateCommitmentStatus"

	res, err := s.db.ExecContext(ctx,
		`UPDATE commitments SET status=$1, last_modified=now() WHERE id=$2`,
		string(status),
		id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) RescheduleCommitment(ctx context.Context, id string, date time.Time, start, end models.ClockTime) error {
	const op = "storage.postgres.RescheduleCommitment"

	res, err := s.db.ExecContext(ctx,
		`UPDATE commitments
		SET date=$1, start_time=$2, end_time=$3, status=$4, last_modified=now()
		WHERE id=$5`,
		date,
		start,
		end,
		string(models.StatusRescheduled),
		id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}
