package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// TogglePublish flips a form between draft and published. The public
// path is computed once, on the first transition into published, and
// never changes afterwards: unpublishing keeps it so re-publishing
// serves the same URL.
func (s *Store) TogglePublish(ctx context.Context, id int) (published bool, publishedAt string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, "", errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	var title string
	var path sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT title, published, published_at
		FROM form
		WHERE id = ?`,
		id,
	).Scan(&title, &published, &path)
	if errors.Is(err, sql.ErrNoRows) {
		return false, "", ErrNotFound
	}
	if err != nil {
		return false, "", errors.Wrap(err, "get form")
	}

	published = !published
	if published && !path.Valid {
		path = sql.NullString{String: PublicPath(title, id), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE form
		SET
			published = ?,
			published_at = ?,
			updated_at = ?
		WHERE id = ?`,
		published,
		path,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return false, "", errors.Wrap(err, "update form")
	}

	err = tx.Commit()
	if err != nil {
		return false, "", errors.Wrap(err, "commit publish")
	}
	return published, path.String, nil
}

// PublicPath builds the permanent public path for a form: the title
// slugified (trimmed, whitespace runs collapsed to hyphens, escaped)
// plus the form's own id for uniqueness.
func PublicPath(title string, id int) string {
	slug := strings.Join(strings.Fields(title), "-")
	if slug == "" {
		slug = "form"
	}
	return fmt.Sprintf("/publishedForm/%s/%d", url.PathEscape(slug), id)
}
