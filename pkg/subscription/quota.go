package subscription

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// QuotaSource supplies the live usage figures the quota gate evaluates
// against a tier's limits. Product CRUD and page-view counting live outside
// this package; this is the narrow interface through which their numbers
// come in.
type QuotaSource interface {
	CurrentProductCount(ctx context.Context, userID string) (int64, error)
	CurrentMonthlyViews(ctx context.Context, userID string) (int64, error)
}

// PgQuotaSource reads usage counts straight from the product tables.
type PgQuotaSource struct {
	pool *pgxpool.Pool
}

func NewPgQuotaSource(pool *pgxpool.Pool) *PgQuotaSource {
	if pool == nil {
		panic("subscription: pgx pool is required")
	}
	return &PgQuotaSource{pool: pool}
}

func (q *PgQuotaSource) CurrentProductCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := q.pool.QueryRow(ctx,
		`SELECT count(*) FROM products WHERE user_id = $1`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// CurrentMonthlyViews counts banner views across the user's products for the
// current calendar month.
func (q *PgQuotaSource) CurrentMonthlyViews(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := q.pool.QueryRow(ctx,
		`SELECT count(*)
		 FROM product_views v
		 JOIN products p ON p.id = v.product_id
		 WHERE p.user_id = $1 AND v.visited_at >= date_trunc('month', now())`,
		userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count monthly views: %w", err)
	}
	return n, nil
}
