package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
)

const bookmarkColumns = `id::text, user_id, article_id, article_title, article_url, article_image_url, created_at`

// ListBookmarks returns every bookmark owned by userID, newest first.
func (s *Storage) ListBookmarks(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	const op = "storage.postgres.ListBookmarks"

	query := `
		SELECT ` + bookmarkColumns + `
		FROM bookmarks
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	defer rows.Close()

	bookmarks := make([]domain.Bookmark, 0)
	for rows.Next() {
		var b domain.Bookmark
		if err := scanBookmark(rows, &b); err != nil {
			return nil, domain.NewStorageError(op, err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError(op, err)
	}

	return bookmarks, nil
}

// CreateBookmark inserts a bookmark for userID. id and created_at are
// assigned by the database. A second bookmark for the same article
// violates bookmarks_user_article_key and yields domain.ErrConflict.
func (s *Storage) CreateBookmark(ctx context.Context, userID string, nb domain.NewBookmark) (*domain.Bookmark, error) {
	const op = "storage.postgres.CreateBookmark"

	query := `
		INSERT INTO bookmarks (user_id, article_id, article_title, article_url, article_image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at
	`

	b := domain.Bookmark{
		UserID:          userID,
		ArticleID:       nb.ArticleID,
		ArticleTitle:    nb.ArticleTitle,
		ArticleURL:      nb.ArticleURL,
		ArticleImageURL: nb.ArticleImageURL,
	}

	err := s.db.QueryRow(ctx, query,
		b.UserID,
		b.ArticleID,
		b.ArticleTitle,
		b.ArticleURL,
		b.ArticleImageURL,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrConflict
		}
		return nil, domain.NewStorageError(op, err)
	}

	return &b, nil
}

// FindBookmark returns the bookmark for (userID, articleID) or domain.ErrNotFound.
func (s *Storage) FindBookmark(ctx context.Context, userID, articleID string) (*domain.Bookmark, error) {
	const op = "storage.postgres.FindBookmark"

	query := `
		SELECT ` + bookmarkColumns + `
		FROM bookmarks
		WHERE user_id = $1 AND article_id = $2
	`

	var b domain.Bookmark
	if err := scanBookmark(s.db.QueryRow(ctx, query, userID, articleID), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewStorageError(op, err)
	}

	return &b, nil
}

// DeleteBookmark removes the bookmark for (userID, articleID) and reports
// whether a row was actually deleted.
func (s *Storage) DeleteBookmark(ctx context.Context, userID, articleID string) (bool, error) {
	const op = "storage.postgres.DeleteBookmark"

	tag, err := s.db.Exec(ctx,
		`DELETE FROM bookmarks WHERE user_id = $1 AND article_id = $2`,
		userID, articleID,
	)
	if err != nil {
		return false, domain.NewStorageError(op, err)
	}

	return tag.RowsAffected() > 0, nil
}

// BookmarkedArticleIDs returns the article ids userID has bookmarked.
func (s *Storage) BookmarkedArticleIDs(ctx context.Context, userID string) ([]string, error) {
	const op = "storage.postgres.BookmarkedArticleIDs"

	rows, err := s.db.Query(ctx, `SELECT article_id FROM bookmarks WHERE user_id = $1`, userID)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domain.NewStorageError(op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError(op, err)
	}

	return ids, nil
}

func scanBookmark(row pgx.Row, b *domain.Bookmark) error {
	return row.Scan(
		&b.ID,
		&b.UserID,
		&b.ArticleID,
		&b.ArticleTitle,
		&b.ArticleURL,
		&b.ArticleImageURL,
		&b.CreatedAt,
	)
}
