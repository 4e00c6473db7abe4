package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/quickform/quickform/model"
)

const defaultColor = "#FFBF00"

func (s *Store) CreateForm(ctx context.Context, form *model.Form) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if form.Color == "" {
		form.Color = defaultColor
	}

	now := time.Now().UTC()
	var formID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO form (user_id, title, description, color, cover, logo, published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		form.UserID,
		form.Title,
		form.Description,
		form.Color,
		nullifyEmptyPtr(form.Cover),
		nullifyEmptyPtr(form.Logo),
		form.Published,
		now,
		now,
	).Scan(&formID)
	if err != nil {
		return 0, errors.Wrap(err, "insert form")
	}

	err = saveFields(ctx, tx, formID, form.Fields)
	if err != nil {
		return 0, err
	}

	err = tx.Commit()
	if err != nil {
		return 0, errors.Wrap(err, "commit form")
	}
	return formID, nil
}

// saveFields replaces a form's field rows. Field ids supplied by the
// client are kept verbatim so existing responses stay resolvable;
// fields without an id get one here, exactly once.
func saveFields(ctx context.Context, tx *sql.Tx, formID int, fields []model.FormField) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM form_field
		WHERE form_id = ?`,
		formID,
	)
	if err != nil {
		return errors.Wrap(err, "delete fields")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO form_field (form_id, pos, field_id, type, label, required, options)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare fields")
	}
	defer stmt.Close()

	seen := make(map[string]bool, len(fields))
	for i := range fields {
		f := &fields[i]
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if seen[f.ID] {
			return errors.Wrapf(ErrDuplicateField, "field %q", f.ID)
		}
		seen[f.ID] = true

		var optionsJson []byte
		if f.Options != nil {
			optionsJson, err = json.Marshal(f.Options)
			if err != nil {
				return errors.Wrap(err, "marshal options")
			}
		}
		_, err = stmt.ExecContext(ctx, formID, i, f.ID, f.Type, f.Label, f.Required, string(optionsJson))
		if err != nil {
			return errors.Wrapf(err, "insert field %q", f.ID)
		}
	}
	return nil
}

func (s *Store) GetForm(ctx context.Context, id int) (*model.Form, error) {
	form := &model.Form{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, version, user_id, title, description, color, cover, logo, published, published_at, created_at, updated_at
		FROM form
		WHERE id = ?`,
		id,
	).Scan(
		&form.ID, &form.Version, &form.UserID, &form.Title, &form.Description,
		&form.Color, &form.Cover, &form.Logo, &form.Published, &form.PublishedAt,
		&form.CreatedAt, &form.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get form")
	}

	form.Fields, err = s.formFields(ctx, id)
	if err != nil {
		return nil, err
	}
	return form, nil
}

func (s *Store) formFields(ctx context.Context, formID int) ([]model.FormField, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT field_id, type, label, required, options
		FROM form_field
		WHERE form_id = ?
		ORDER BY pos`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get fields")
	}
	defer rows.Close()

	fields := []model.FormField{}
	for rows.Next() {
		f := model.FormField{}
		var opts string
		err = rows.Scan(&f.ID, &f.Type, &f.Label, &f.Required, &opts)
		if err != nil {
			return nil, errors.Wrap(err, "scan field")
		}
		if opts != "" {
			err = json.Unmarshal([]byte(opts), &f.Options)
			if err != nil {
				return nil, errors.Wrap(err, "parse options")
			}
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// ListFormsByOwner returns the owner's forms, newest first, with their
// field lists loaded.
func (s *Store) ListFormsByOwner(ctx context.Context, userID string) ([]model.Form, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			f.id, f.version, f.user_id, f.title, f.description,
			f.color, f.cover, f.logo, f.published, f.published_at,
			f.created_at, f.updated_at,
			ff.field_id, ff.type, ff.label, ff.required, ff.options
		FROM form f
		LEFT OUTER JOIN form_field ff ON (f.id = ff.form_id)
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC, f.id DESC, ff.pos`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get forms")
	}
	defer rows.Close()

	forms := []model.Form{}
	for rows.Next() {
		form := model.Form{}
		var fieldID, fieldType, label, opts sql.NullString
		var required sql.NullBool
		err = rows.Scan(
			&form.ID, &form.Version, &form.UserID, &form.Title, &form.Description,
			&form.Color, &form.Cover, &form.Logo, &form.Published, &form.PublishedAt,
			&form.CreatedAt, &form.UpdatedAt,
			&fieldID, &fieldType, &label, &required, &opts,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan form")
		}

		last := len(forms) - 1
		if last < 0 || forms[last].ID != form.ID {
			form.Fields = []model.FormField{}
			forms = append(forms, form)
			last++
		}

		if fieldID.Valid {
			f := model.FormField{
				ID:       fieldID.String,
				Type:     fieldType.String,
				Label:    label.String,
				Required: required.Bool,
			}
			if opts.String != "" {
				err = json.Unmarshal([]byte(opts.String), &f.Options)
				if err != nil {
					return nil, errors.Wrap(err, "parse options")
				}
			}
			forms[last].Fields = append(forms[last].Fields, f)
		}
	}
	return forms, rows.Err()
}

// UpdateForm applies a partial edit. The field list, when present,
// replaces the stored one wholesale (supplied field ids survive). The
// whole update is rejected with ErrConflict if the stored version
// moved past patch.Version.
func (s *Store) UpdateForm(ctx context.Context, id int, patch model.FormPatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if patch.Fields != nil {
		err = saveFields(ctx, tx, id, *patch.Fields)
		if err != nil {
			return err
		}
	}

	set := []string{"version = version+1", "updated_at = ?"}
	args := []any{time.Now().UTC()}
	if patch.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Color != nil {
		set = append(set, "color = ?")
		args = append(args, *patch.Color)
	}
	if patch.Cover != nil {
		set = append(set, "cover = ?")
		args = append(args, nullifyEmpty(*patch.Cover))
	}
	if patch.Logo != nil {
		set = append(set, "logo = ?")
		args = append(args, nullifyEmpty(*patch.Logo))
	}
	args = append(args, id, patch.Version)

	res, err := tx.ExecContext(ctx, fmt.Sprintf(`
		UPDATE form
		SET %s
		WHERE id = ?
			AND version = ?`,
		strings.Join(set, ", ")),
		args...,
	)
	if err != nil {
		return errors.Wrap(err, "update form")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update form verify")
	}
	if n < 1 {
		exists, err := formExists(ctx, tx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}

	return errors.Wrap(tx.Commit(), "commit update")
}

func nullifyEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullifyEmptyPtr(p *string) any {
	if p == nil {
		return nil
	}
	return nullifyEmpty(*p)
}

func formExists(ctx context.Context, tx *sql.Tx, id int) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM form WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "check form")
	}
	return true, nil
}

// DeleteForm removes a form and cascades over its fields and every
// persisted response, all in one transaction.
func (s *Store) DeleteForm(ctx context.Context, id int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM response_field
		WHERE response_id IN (SELECT id FROM response WHERE form_id = ?)`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "delete response fields")
	}
	_, err = tx.ExecContext(ctx, `
		DELETE FROM response
		WHERE form_id = ?`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "delete responses")
	}
	_, err = tx.ExecContext(ctx, `
		DELETE FROM form_field
		WHERE form_id = ?`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "delete fields")
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM form
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "delete form")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete form verify")
	}
	if n < 1 {
		return ErrNotFound
	}

	return errors.Wrap(tx.Commit(), "commit delete")
}
