package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"barberqueue-backend/models"
	"barberqueue-backend/queue"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrHaircutTypeNotFound = errors.New("haircut type not found")

// CatalogService manages haircut types. Entries are deactivated, never
// deleted, and price edits never touch queued entries.
type CatalogService struct {
	db *gorm.DB
}

type CreateHaircutTypeInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

type UpdateHaircutTypeInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Active      *bool            `json:"active"`
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// List returns the catalog ordered by name; inactive entries only on request.
func (s *CatalogService) List(ctx context.Context, includeInactive bool) ([]models.HaircutType, error) {
	var types []models.HaircutType
	q := s.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&types).Error; err != nil {
		return nil, fmt.Errorf("list haircut types: %w", err)
	}
	return types, nil
}

func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (models.HaircutType, error) {
	var ht models.HaircutType
	if err := s.db.WithContext(ctx).First(&ht, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.HaircutType{}, ErrHaircutTypeNotFound
		}
		return models.HaircutType{}, fmt.Errorf("get haircut type: %w", err)
	}
	return ht, nil
}

// FindByName matches case-insensitively, preferring active entries.
func (s *CatalogService) FindByName(ctx context.Context, name string) (models.HaircutType, error) {
	var ht models.HaircutType
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("active DESC").
		First(&ht).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.HaircutType{}, ErrHaircutTypeNotFound
		}
		return models.HaircutType{}, fmt.Errorf("find haircut type: %w", err)
	}
	return ht, nil
}

// Resolve accepts either an id or a name.
func (s *CatalogService) Resolve(ctx context.Context, ref string) (models.HaircutType, error) {
	if id, err := uuid.Parse(strings.TrimSpace(ref)); err == nil {
		return s.Get(ctx, id)
	}
	return s.FindByName(ctx, ref)
}

func (s *CatalogService) Create(ctx context.Context, in CreateHaircutTypeInput) (models.HaircutType, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.HaircutType{}, queue.ValidationError{Message: "name is required"}
	}
	if in.Price.IsNegative() {
		return models.HaircutType{}, queue.ValidationError{Message: "price must not be negative"}
	}

	ht := models.HaircutType{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Active:      true,
	}
	if err := s.db.WithContext(ctx).Create(&ht).Error; err != nil {
		return models.HaircutType{}, fmt.Errorf("create haircut type: %w", err)
	}
	return ht, nil
}

// Update applies the provided fields only.
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, in UpdateHaircutTypeInput) (models.HaircutType, error) {
	ht, err := s.Get(ctx, id)
	if err != nil {
		return models.HaircutType{}, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return models.HaircutType{}, queue.ValidationError{Message: "name is required"}
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return models.HaircutType{}, queue.ValidationError{Message: "price must not be negative"}
		}
		updates["price"] = *in.Price
	}
	if in.Active != nil {
		updates["active"] = *in.Active
	}
	if len(updates) == 0 {
		return ht, nil
	}

	if err := s.db.WithContext(ctx).Model(&ht).Updates(updates).Error; err != nil {
		return models.HaircutType{}, fmt.Errorf("update haircut type: %w", err)
	}
	return s.Get(ctx, id)
}

// Deactivate hides the entry from enrollment.
func (s *CatalogService) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.HaircutType{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate haircut type: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrHaircutTypeNotFound
	}
	return nil
}

// Seed inserts the default catalog when it is empty.
func (s *CatalogService) Seed(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.HaircutType{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	defaults := []CreateHaircutTypeInput{
		{Name: "Social", Description: "Classic scissor cut", Price: decimal.NewFromInt(30)},
		{Name: "Degradê", Description: "Skin or low fade", Price: decimal.NewFromInt(35)},
		{Name: "Barba", Description: "Beard trim and shape", Price: decimal.NewFromInt(20)},
		{Name: "Corte + Barba", Description: "Haircut and beard", Price: decimal.NewFromInt(50)},
		{Name: "Infantil", Description: "Kids cut", Price: decimal.NewFromInt(25)},
	}
	for _, in := range defaults {
		if _, err := s.Create(ctx, in); err != nil {
			return 0, err
		}
	}
	return len(defaults), nil
}
