package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/go-commandes/internal/models"
)

// GormStore implements Store on a gorm connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Models lists the tables owned by the catalog, for AutoMigrate.
func Models() []any {
	return []any{&models.Category{}, &models.Dish{}, &models.Article{}, &models.RecipeLine{}, &models.Reservation{}}
}

func (s *GormStore) LoadAll(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	db := s.db.WithContext(ctx)
	steps := []struct {
		name string
		dest any
	}{
		{"categories", &snap.Categories},
		{"dishes", &snap.Dishes},
		{"articles", &snap.Articles},
		{"recipes", &snap.Recipes},
		{"reservations", &snap.Reservations},
	}
	for _, st := range steps {
		if err := db.Order("id").Find(st.dest).Error; err != nil {
			return Snapshot{}, fmt.Errorf("load %s: %w", st.name, err)
		}
	}
	return snap, nil
}

// updateRow writes every column of model, which must carry its primary key.
func updateRow(db *gorm.DB, model any) error {
	res := db.Model(model).Select("*").Updates(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateCategory(ctx context.Context, c *models.Category) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *GormStore) DeleteCategory(ctx context.Context, name, fallback string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Dish{}).Where("category = ?", name).Update("category", fallback).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", name).Delete(&models.Category{}).Error
	})
}

func (s *GormStore) CreateDish(ctx context.Context, d *models.Dish) error {
	return s.db.WithContext(ctx).Create(d).Error
}

func (s *GormStore) UpdateDish(ctx context.Context, d models.Dish, oldName string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if oldName != "" && oldName != d.Name {
			if err := tx.Model(&models.Reservation{}).Where("dish = ?", oldName).Update("dish", d.Name).Error; err != nil {
				return err
			}
		}
		return updateRow(tx, &d)
	})
}

func (s *GormStore) DeleteDish(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dish_id = ?", id).Delete(&models.RecipeLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Dish{}, id).Error
	})
}

func (s *GormStore) CreateArticle(ctx context.Context, a *models.Article) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *GormStore) CreateArticles(ctx context.Context, as []models.Article) error {
	if len(as) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&as, 100).Error
	})
}

func (s *GormStore) UpdateArticle(ctx context.Context, a models.Article) error {
	return updateRow(s.db.WithContext(ctx), &a)
}

func (s *GormStore) DeleteArticle(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&models.RecipeLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Article{}, id).Error
	})
}

func (s *GormStore) CreateRecipe(ctx context.Context, r *models.RecipeLine) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *GormStore) UpdateRecipe(ctx context.Context, r models.RecipeLine) error {
	return updateRow(s.db.WithContext(ctx), &r)
}

func (s *GormStore) DeleteRecipe(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.RecipeLine{}, id).Error
}

func (s *GormStore) CreateReservation(ctx context.Context, r *models.Reservation) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *GormStore) UpdateReservation(ctx context.Context, r models.Reservation) error {
	return updateRow(s.db.WithContext(ctx), &r)
}

func (s *GormStore) DeleteReservation(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Reservation{}, id).Error
}
