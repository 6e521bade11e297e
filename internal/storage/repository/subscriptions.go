package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tsmartminds/smartminds/internal/errs"
	"github.com/tsmartminds/smartminds/internal/models"
)

// CreateSubscription вставляет новую запись подписки и возвращает её UID.
// Список предметов сериализуется в JSONB.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	subjects, err := json.Marshal(sub.Subjects)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO subscriptions (user_uid, stripe_subscription_id, status,
			      subjects, current_period_start, current_period_end)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid`
	var newUID string
	err = s.DB.QueryRowContext(ctx, query,
		sub.UserUID, sub.StripeSubscriptionID, sub.Status, subjects,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd).Scan(&newUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetSubscriptionByUser возвращает последнюю подписку пользователя
// или errs.ErrNotFound, если подписок ещё не было.
func (s *Storage) GetSubscriptionByUser(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, user_uid, stripe_subscription_id, status, subjects,
			      current_period_start, current_period_end, created_at
			  FROM subscriptions
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	sub := &models.Subscription{}
	var stripeSubscriptionID sql.NullString
	var subjects []byte
	var periodStart, periodEnd sql.NullTime
	if err := row.Scan(&sub.UID, &sub.UserUID, &stripeSubscriptionID, &sub.Status,
		&subjects, &periodStart, &periodEnd, &sub.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if stripeSubscriptionID.Valid {
		sub.StripeSubscriptionID = &stripeSubscriptionID.String
	}
	if len(subjects) > 0 {
		if err := json.Unmarshal(subjects, &sub.Subjects); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if periodStart.Valid {
		sub.CurrentPeriodStart = &periodStart.Time
	}
	if periodEnd.Valid {
		sub.CurrentPeriodEnd = &periodEnd.Time
	}
	return sub, nil
}

// UpdateSubscriptionStatusByUser переводит все подписки пользователя
// в указанный статус. Используется при отмене подписки провайдером.
func (s *Storage) UpdateSubscriptionStatusByUser(ctx context.Context, userUID, status string) (int, error) {
	const op = "storage.UpdateSubscriptionStatusByUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
		      SET status = $1
		      WHERE user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, status, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CountActiveSubscriptions возвращает количество активных подписок
// пользователя. Инвариант системы: не больше одной.
func (s *Storage) CountActiveSubscriptions(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountActiveSubscriptions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM subscriptions WHERE user_uid = $1 AND status = $2`
	if err := s.DB.QueryRowContext(ctx, query, userUID, models.SubscriptionActive).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
