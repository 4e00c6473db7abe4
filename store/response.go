package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/quickform/quickform/model"
)

// CreateResponse persists one normalized submission. The insert is a
// single transaction: a rejected or failed submission never leaves a
// partial record behind.
func (s *Store) CreateResponse(ctx context.Context, formID int, answers []model.FieldAnswer) (*model.Response, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var responseID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO response (form_id, created_at) VALUES (?, ?)
		RETURNING id`,
		formID,
		now,
	).Scan(&responseID)
	if err != nil {
		return nil, errors.Wrap(err, "insert response")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO response_field (response_id, pos, label, value)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, errors.Wrap(err, "prepare answers")
	}
	defer stmt.Close()

	for i, a := range answers {
		valueJson, err := json.Marshal(a.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "marshal answer %q", a.Label)
		}
		_, err = stmt.ExecContext(ctx, responseID, i, a.Label, string(valueJson))
		if err != nil {
			return nil, errors.Wrapf(err, "insert answer %q", a.Label)
		}
	}

	err = tx.Commit()
	if err != nil {
		return nil, errors.Wrap(err, "commit response")
	}

	return &model.Response{
		ID:        responseID,
		FormID:    formID,
		Responses: answers,
		CreatedAt: now,
	}, nil
}

// ListResponses returns a form's responses most recent first. The
// descending order is a contract the export and the dashboard table
// both rely on; ids break ties between equal timestamps.
func (s *Store) ListResponses(ctx context.Context, formID int) ([]model.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			r.id, r.form_id, r.created_at,
			rf.label, rf.value
		FROM response r
		LEFT OUTER JOIN response_field rf ON (r.id = rf.response_id)
		WHERE r.form_id = ?
		ORDER BY r.created_at DESC, r.id DESC, rf.pos`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get responses")
	}
	defer rows.Close()

	responses := []model.Response{}
	for rows.Next() {
		r := model.Response{}
		var label, value sql.NullString
		err = rows.Scan(&r.ID, &r.FormID, &r.CreatedAt, &label, &value)
		if err != nil {
			return nil, errors.Wrap(err, "scan response")
		}

		last := len(responses) - 1
		if last < 0 || responses[last].ID != r.ID {
			r.Responses = []model.FieldAnswer{}
			responses = append(responses, r)
			last++
		}

		if label.Valid {
			a := model.FieldAnswer{Label: label.String}
			err = json.Unmarshal([]byte(value.String), &a.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "parse answer %q", label.String)
			}
			responses[last].Responses = append(responses[last].Responses, a)
		}
	}
	return responses, rows.Err()
}

// CountResponses never fails on zero matches; it just counts zero.
func (s *Store) CountResponses(ctx context.Context, formID int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM response
		WHERE form_id = ?`,
		formID,
	).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "count responses")
	}
	return count, nil
}

// DeleteResponses clears every response for a form and reports how
// many were removed.
func (s *Store) DeleteResponses(ctx context.Context, formID int) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM response_field
		WHERE response_id IN (SELECT id FROM response WHERE form_id = ?)`,
		formID,
	)
	if err != nil {
		return 0, errors.Wrap(err, "delete answers")
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM response
		WHERE form_id = ?`,
		formID,
	)
	if err != nil {
		return 0, errors.Wrap(err, "delete responses")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "delete responses verify")
	}

	err = tx.Commit()
	if err != nil {
		return 0, errors.Wrap(err, "commit delete")
	}
	return n, nil
}
