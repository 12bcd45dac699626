package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"delivery-pricing/internal/apperror"
	"delivery-pricing/internal/database"
	"delivery-pricing/internal/logger"
	"delivery-pricing/internal/models"
	"delivery-pricing/internal/pricing"
)

// VenueStore читает каталог заведений из PostgreSQL (только чтение)
type VenueStore struct {
	db  *database.DB
	log *logger.Logger
}

// NewVenueStore создает источник данных заведений на базе PostgreSQL
func NewVenueStore(db *database.DB, log *logger.Logger) *VenueStore {
	return &VenueStore{db: db, log: log}
}

// Static возвращает координаты заведения
func (s *VenueStore) Static(ctx context.Context, slug string) (*models.VenueStatic, error) {
	query := `SELECT latitude, longitude FROM venues WHERE slug = $1`

	var static models.VenueStatic
	err := s.db.QueryRowContext(ctx, query, slug).Scan(&static.Location.Latitude, &static.Location.Longitude)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound(fmt.Sprintf("venue %q not found", slug), err)
		}
		return nil, apperror.Upstream("venue catalog is unavailable", fmt.Errorf("failed to get venue location: %w", err))
	}

	return &static, nil
}

// Dynamic возвращает тарифы заведения; диапазоны в порядке position
func (s *VenueStore) Dynamic(ctx context.Context, slug string) (*models.VenueDynamic, error) {
	query := `SELECT base_price, order_minimum_no_surcharge FROM venues WHERE slug = $1`

	var dynamic models.VenueDynamic
	err := s.db.QueryRowContext(ctx, query, slug).Scan(&dynamic.Pricing.BasePrice, &dynamic.Pricing.OrderMinimumNoSurcharge)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound(fmt.Sprintf("venue %q not found", slug), err)
		}
		return nil, apperror.Upstream("venue catalog is unavailable", fmt.Errorf("failed to get venue pricing: %w", err))
	}

	rangesQuery := `
		SELECT min_distance, max_distance, a, b, flag
		FROM venue_distance_ranges
		WHERE venue_slug = $1
		ORDER BY position
	`
	rows, err := s.db.QueryContext(ctx, rangesQuery, slug)
	if err != nil {
		return nil, apperror.Upstream("venue catalog is unavailable", fmt.Errorf("failed to get distance ranges: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r    pricing.DistanceRange
			flag sql.NullString
		)
		if err := rows.Scan(&r.Min, &r.Max, &r.A, &r.B, &flag); err != nil {
			return nil, apperror.Upstream("venue catalog is unavailable", fmt.Errorf("failed to scan distance range: %w", err))
		}
		if flag.Valid {
			f := flag.String
			r.Flag = &f
		}
		dynamic.Pricing.DistanceRanges = append(dynamic.Pricing.DistanceRanges, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Upstream("venue catalog is unavailable", fmt.Errorf("failed to iterate distance ranges: %w", err))
	}

	s.log.WithFields(map[string]interface{}{
		"venue":  slug,
		"ranges": len(dynamic.Pricing.DistanceRanges),
	}).Debug("Venue pricing loaded from database")

	return &dynamic, nil
}
