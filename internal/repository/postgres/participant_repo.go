package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"eventmanager/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const participantColumns = `id, event_id, email, name, status, invitation_token, qr_code_data, created_at, updated_at`

type participantRepository struct {
	DB *sql.DB
}

func NewParticipantRepository(db *sql.DB) domain.ParticipantRepository {
	return &participantRepository{DB: db}
}

func scanParticipant(row rowScanner) (*domain.Participant, error) {
	p := &domain.Participant{}
	var name, qr sql.NullString
	var status string
	if err := row.Scan(&p.ID, &p.EventID, &p.Email, &name, &status, &p.InvitationToken, &qr, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Name = name.String
	p.QRCodeData = qr.String
	p.Status = domain.Status(status)
	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateBatch inserts every participant in a single statement, so either all rows
// are stored or none.
func (r *participantRepository) CreateBatch(ctx context.Context, ps []*domain.Participant) error {
	if len(ps) == 0 {
		return nil
	}
	const cols = 8
	values := make([]string, 0, len(ps))
	args := make([]any, 0, len(ps)*cols)
	for i, p := range ps {
		base := i * cols
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, p.EventID, p.Email, nullString(p.Name), string(p.Status), p.InvitationToken, nullString(p.QRCodeData), p.CreatedAt, p.UpdatedAt)
	}
	query := `
		INSERT INTO participants (event_id, email, name, status, invitation_token, qr_code_data, created_at, updated_at)
		VALUES ` + strings.Join(values, ", ") + `
		RETURNING id, invitation_token
	`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	defer rows.Close()

	byToken := make(map[string]*domain.Participant, len(ps))
	for _, p := range ps {
		byToken[p.InvitationToken] = p
	}
	for rows.Next() {
		var id, token string
		if err := rows.Scan(&id, &token); err != nil {
			return err
		}
		if p, ok := byToken[token]; ok {
			p.ID = id
		}
	}
	if err := rows.Err(); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

func (r *participantRepository) get(ctx context.Context, where string, arg any) (*domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE ` + where
	p, err := scanParticipant(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if isNoRow(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *participantRepository) GetByToken(ctx context.Context, token string) (*domain.Participant, error) {
	return r.get(ctx, "invitation_token = $1", token)
}

func (r *participantRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Participant, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *participantRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	query := `SELECT ` + participantColumns + `
		FROM participants
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, eventID)
}

// ListPage returns one page of the event's participants matching filter, plus the
// total number of matches.
func (r *participantRepository) ListPage(ctx context.Context, eventID string, filter domain.ParticipantFilter, params domain.PaginationParams) ([]*domain.Participant, int, error) {
	where := []string{"event_id = $1"}
	args := []any{eventID}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		where = append(where, fmt.Sprintf(`(email ILIKE $%d ESCAPE '\' OR name ILIKE $%d ESCAPE '\')`, len(args), len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s
		FROM participants
		WHERE %s
		ORDER BY created_at ASC
		LIMIT $%d OFFSET $%d
	`, participantColumns, cond, len(args)+1, len(args)+2)
	list, err := r.list(ctx, query, append(args, params.PageSize, params.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByIDs ignores ids that are not uuids; they cannot match a row.
func (r *participantRepository) ListByIDs(ctx context.Context, eventID string, ids []string) ([]*domain.Participant, error) {
	ids = validUUIDs(ids)
	event, err := uuid.Parse(eventID)
	if err != nil || len(ids) == 0 {
		return []*domain.Participant{}, nil
	}
	query := `SELECT ` + participantColumns + `
		FROM participants
		WHERE event_id = $1 AND id = ANY($2)
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, event.String(), pq.Array(ids))
}

func (r *participantRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, updatedAt time.Time) (*domain.Participant, error) {
	query := `
		UPDATE participants SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + participantColumns
	p, err := scanParticipant(r.DB.QueryRowContext(ctx, query, string(status), updatedAt, id))
	if err != nil {
		if isNoRow(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participantRepository) UpdateQRCodeData(ctx context.Context, id, qrCodeData string, updatedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE participants SET qr_code_data = $1, updated_at = $2 WHERE id = $3`, qrCodeData, updatedAt, id)
	if err != nil {
		if isNoRow(err) {
			return domain.ErrNotFound
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *participantRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		if isNoRow(err) {
			return domain.ErrNotFound
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
