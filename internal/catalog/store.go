package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/1Welcorn/Estilista-Virtual/internal/infra"
	"github.com/1Welcorn/Estilista-Virtual/internal/sqlinline"
)

// ErrOutfitNotFound is returned when a trend id matches no stored document.
var ErrOutfitNotFound = errors.New("catalog: outfit not found")

// DocumentStore persists preset outfits.
type DocumentStore interface {
	List(ctx context.Context) ([]PresetOutfit, error)
	Get(ctx context.Context, id string) (PresetOutfit, error)
	Insert(ctx context.Context, outfit PresetOutfit) error
	Update(ctx context.Context, outfit PresetOutfit) error
	Delete(ctx context.Context, id string) error
}

// PGStore keeps outfits in Postgres with the image list as a JSONB column.
type PGStore struct {
	sql infra.SQLExecutor
}

func NewPGStore(sql infra.SQLExecutor) *PGStore {
	return &PGStore{sql: sql}
}

func (s *PGStore) List(ctx context.Context) ([]PresetOutfit, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListTrends)
	if err != nil {
		return nil, fmt.Errorf("catalog: list trends: %w", err)
	}
	defer rows.Close()

	var outfits []PresetOutfit
	for rows.Next() {
		var (
			outfit PresetOutfit
			raw    []byte
		)
		if err := rows.Scan(&outfit.ID, &outfit.Name, &raw, &outfit.MainImageIndex); err != nil {
			return nil, fmt.Errorf("catalog: scan trend: %w", err)
		}
		if err := json.Unmarshal(raw, &outfit.Images); err != nil {
			return nil, fmt.Errorf("catalog: decode trend images: %w", err)
		}
		outfits = append(outfits, outfit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate trends: %w", err)
	}
	return outfits, nil
}

func (s *PGStore) Get(ctx context.Context, id string) (PresetOutfit, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectTrend, id)
	var (
		outfit PresetOutfit
		raw    []byte
	)
	if err := row.Scan(&outfit.ID, &outfit.Name, &raw, &outfit.MainImageIndex); err != nil {
		if infra.IsNoRows(err) {
			return PresetOutfit{}, ErrOutfitNotFound
		}
		return PresetOutfit{}, fmt.Errorf("catalog: get trend: %w", err)
	}
	if err := json.Unmarshal(raw, &outfit.Images); err != nil {
		return PresetOutfit{}, fmt.Errorf("catalog: decode trend images: %w", err)
	}
	return outfit, nil
}

func (s *PGStore) Insert(ctx context.Context, outfit PresetOutfit) error {
	raw, err := json.Marshal(outfit.Images)
	if err != nil {
		return fmt.Errorf("catalog: encode trend images: %w", err)
	}
	_, err = s.sql.Exec(ctx, sqlinline.QInsertTrend, outfit.ID, outfit.Name, raw, outfit.MainImageIndex)
	if err != nil {
		return fmt.Errorf("catalog: insert trend: %w", err)
	}
	return nil
}

func (s *PGStore) Update(ctx context.Context, outfit PresetOutfit) error {
	raw, err := json.Marshal(outfit.Images)
	if err != nil {
		return fmt.Errorf("catalog: encode trend images: %w", err)
	}
	tag, err := s.sql.Exec(ctx, sqlinline.QUpdateTrend, outfit.ID, outfit.Name, raw, outfit.MainImageIndex)
	if err != nil {
		return fmt.Errorf("catalog: update trend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOutfitNotFound
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	if _, err := s.sql.Exec(ctx, sqlinline.QDeleteTrend, id); err != nil {
		return fmt.Errorf("catalog: delete trend: %w", err)
	}
	return nil
}

var _ DocumentStore = (*PGStore)(nil)
