package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectReview = `SELECT r.id, r.member_id, m.nickname, r.title, r.content, r.place,
	       r.rating, r.image_urls, r.hits, r.created_at, r.updated_at
	FROM reviews r
	JOIN members m ON m.id = r.member_id`

// orderBy maps sort orders to their ORDER BY clause.
var orderBy = map[string]string{
	SortLatest: "r.created_at DESC, r.id DESC",
	SortHits:   "r.hits DESC, r.id DESC",
	SortRating: "r.rating DESC, r.created_at DESC, r.id DESC",
}

// Repository handles all review database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a review and returns its ID.
func (r *Repository) Create(ctx context.Context, rv *Review) (int, error) {
	var id int
	err := r.db.QueryRow(ctx,
		`INSERT INTO reviews (member_id, title, content, place, rating, image_urls)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		rv.MemberID, rv.Title, rv.Content, rv.Place, rv.Rating, rv.ImageURLs,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("create review: unknown member %s: %w", rv.MemberID, err)
		}
		return 0, fmt.Errorf("create review: %w", err)
	}
	return id, nil
}

// GetByID fetches a review with its writer's nickname.
func (r *Repository) GetByID(ctx context.Context, id int) (*Review, error) {
	rv, err := scanReview(r.db.QueryRow(ctx, selectReview+` WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review by id: %w", err)
	}
	return rv, nil
}

// List returns one page of reviews matching q and the total match count.
// q must already be normalized.
func (r *Repository) List(ctx context.Context, q ListRequest) ([]Review, int, error) {
	where, args := listFilter(q)

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews r`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	args = append(args, q.Size, (q.Page-1)*q.Size)
	query := fmt.Sprintf("%s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		selectReview, where, orderBy[q.Sort], len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

// Update saves the editable fields of rv and returns the stored review.
// The write only applies while updated_at still equals rv.UpdatedAt;
// otherwise ErrConflict is returned.
func (r *Repository) Update(ctx context.Context, rv *Review) (*Review, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE reviews
		 SET title = $2, content = $3, place = $4, rating = $5, image_urls = $6, updated_at = NOW()
		 WHERE id = $1 AND updated_at = $7`,
		rv.ID, rv.Title, rv.Content, rv.Place, rv.Rating, rv.ImageURLs, rv.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM reviews WHERE id = $1)`, rv.ID,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("update review: %w", err)
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, ErrConflict
	}
	return r.GetByID(ctx, rv.ID)
}

// Delete removes a review.
func (r *Repository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementHits adds one to the review's hit count.
func (r *Repository) IncrementHits(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `UPDATE reviews SET hits = hits + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment hits: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ImageReferenced reports whether a review other than excludeID lists url.
func (r *Repository) ImageReferenced(ctx context.Context, url string, excludeID int) (bool, error) {
	var referenced bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE image_urls @> ARRAY[$1]::TEXT[] AND id <> $2)`,
		url, excludeID,
	).Scan(&referenced)
	if err != nil {
		return false, fmt.Errorf("image referenced: %w", err)
	}
	return referenced, nil
}

// listFilter builds the WHERE clause for q with positional arguments.
func listFilter(q ListRequest) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if q.Keyword != "" {
		args = append(args, "%"+escapeLike(q.Keyword)+"%")
		conds = append(conds, fmt.Sprintf("(r.title ILIKE $%d OR r.content ILIKE $%d)", len(args), len(args)))
	}
	if q.MemberID != "" {
		args = append(args, q.MemberID)
		conds = append(conds, fmt.Sprintf("r.member_id = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanReview(row pgx.Row) (*Review, error) {
	rv := &Review{}
	err := row.Scan(&rv.ID, &rv.MemberID, &rv.Writer, &rv.Title, &rv.Content, &rv.Place,
		&rv.Rating, &rv.ImageURLs, &rv.Hits, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// isForeignKeyViolation checks whether an error is a PostgreSQL foreign_key_violation (code 23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
