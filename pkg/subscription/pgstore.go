package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/easyppp/easyppp/pkg/pg"
	"github.com/easyppp/easyppp/pkg/tier"
)

// PgStore implements Store on top of a pgx connection pool.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore returns a Postgres-backed subscription store.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	if pool == nil {
		panic("subscription: pgx pool is required")
	}
	return &PgStore{pool: pool}
}

func (s *PgStore) Create(ctx context.Context, userID string) error {
	// ON CONFLICT DO NOTHING makes redelivered user-created events no-ops.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_subscriptions (user_id, tier) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, string(tier.TierFree),
	)
	if err != nil {
		return fmt.Errorf("insert subscription record: %w", err)
	}
	return nil
}

const recordColumns = `user_id, tier,
	COALESCE(billing_customer_id, ''),
	COALESCE(billing_subscription_id, ''),
	COALESCE(billing_item_id, ''),
	created_at, updated_at`

func (s *PgStore) FindByUser(ctx context.Context, userID string) (*Record, error) {
	return s.findBy(ctx, "user_id", userID)
}

func (s *PgStore) FindByBillingCustomer(ctx context.Context, customerID string) (*Record, error) {
	return s.findBy(ctx, "billing_customer_id", customerID)
}

func (s *PgStore) findBy(ctx context.Context, column, value string) (*Record, error) {
	var (
		rec      Record
		tierName string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM user_subscriptions WHERE `+column+` = $1`,
		value,
	).Scan(&rec.UserID, &tierName, &rec.BillingCustomerID,
		&rec.BillingSubscriptionID, &rec.BillingItemID,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("query subscription record: %w", err)
	}
	rec.Tier = tier.Tier(tierName)
	return &rec, nil
}

func (s *PgStore) ApplyBillingUpdate(ctx context.Context, match Match, change BillingChange) error {
	if change.IsEmpty() {
		return ErrNoFieldsToUpdate
	}
	if match.UserID == "" && match.BillingCustomerID == "" {
		return errors.New("billing update match key is empty")
	}

	// A single conditional UPDATE serializes concurrent webhook deliveries
	// on the row lock; only the fields present in the change appear in the
	// statement. Empty strings are stored as NULL.
	set := make([]string, 0, 5)
	args := make([]any, 0, 5)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if change.Tier != nil {
		set = append(set, "tier = "+arg(string(*change.Tier)))
	}
	if change.BillingCustomerID != nil {
		set = append(set, "billing_customer_id = NULLIF("+arg(*change.BillingCustomerID)+", '')")
	}
	if change.BillingSubscriptionID != nil {
		set = append(set, "billing_subscription_id = NULLIF("+arg(*change.BillingSubscriptionID)+", '')")
	}
	if change.BillingItemID != nil {
		set = append(set, "billing_item_id = NULLIF("+arg(*change.BillingItemID)+", '')")
	}
	set = append(set, "updated_at = now()")

	var where string
	if match.UserID != "" {
		where = "user_id = " + arg(match.UserID)
	} else {
		where = "billing_customer_id = " + arg(match.BillingCustomerID)
	}

	tag, err := s.pool.Exec(ctx,
		"UPDATE user_subscriptions SET "+strings.Join(set, ", ")+" WHERE "+where,
		args...,
	)
	if err != nil {
		return fmt.Errorf("apply billing update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *PgStore) DeleteWithOwnedResources(ctx context.Context, userID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	// Views cascade from products via FK; products and the record itself go
	// here. Partial deletion must not commit.
	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete owned products: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM user_subscriptions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete subscription record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete transaction: %w", err)
	}
	return nil
}
