package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// CategoryService manages user categories and seeds the defaults.
type CategoryService struct {
	store store.CategoryStore
	log   *log.StructuredLogger
	seed  singleflight.Group
}

func NewCategoryService(st store.CategoryStore, logger *log.Logger) *CategoryService {
	if logger == nil {
		logger = log.Default(log.ComponentCategory)
	}
	return &CategoryService{store: st, log: log.NewStructuredLogger(logger)}
}

func (s *CategoryService) Create(ctx context.Context, sess core.Session, c core.Category) (string, error) {
	if !sess.Valid() {
		return "", core.ErrUnauthenticated
	}
	c.UserID = sess.UserID
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return "", err
	}
	ids, err := s.store.CreateCategories(ctx, []core.Category{c})
	if err != nil {
		s.log.LogStoreFailure(ctx, log.OpCreate, store.CollectionCategories, sess.UserID, err)
		return "", fmt.Errorf("create category: %w", err)
	}
	return ids[0], nil
}

// List returns the caller's categories. With a kind, a user who has none of
// that kind gets the default set seeded first.
func (s *CategoryService) List(ctx context.Context, sess core.Session, kind *core.Kind) ([]core.Category, error) {
	if !sess.Valid() {
		return nil, core.ErrUnauthenticated
	}
	if kind != nil {
		if !kind.Valid() {
			return nil, core.ErrInvalidKind
		}
		if _, err := s.EnsureSeeded(ctx, sess, *kind); err != nil {
			return nil, err
		}
	}
	cats, err := s.store.ListCategories(ctx, sess.UserID, kind)
	if err != nil {
		s.log.LogStoreFailure(ctx, log.OpList, store.CollectionCategories, sess.UserID, err)
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// EnsureSeeded inserts the default categories of kind when the caller has
// none and reports whether it did. Concurrent calls for the same user and
// kind share one seeding run.
func (s *CategoryService) EnsureSeeded(ctx context.Context, sess core.Session, kind core.Kind) (bool, error) {
	if !sess.Valid() {
		return false, core.ErrUnauthenticated
	}
	if !kind.Valid() {
		return false, core.ErrInvalidKind
	}

	v, err, _ := s.seed.Do(sess.UserID+"/"+kind.String(), func() (any, error) {
		existing, err := s.store.ListCategories(ctx, sess.UserID, &kind)
		if err != nil {
			s.log.LogStoreFailure(ctx, log.OpSeed, store.CollectionCategories, sess.UserID, err)
			return false, fmt.Errorf("check categories: %w", err)
		}
		if len(existing) > 0 {
			return false, nil
		}

		seeds := core.DefaultCategories(kind)
		cats := make([]core.Category, len(seeds))
		for i, sd := range seeds {
			cats[i] = core.Category{UserID: sess.UserID, Name: sd.Name, Icon: sd.Icon, Kind: sd.Kind}
		}
		if _, err := s.store.CreateCategories(ctx, cats); err != nil {
			s.log.LogStoreFailure(ctx, log.OpSeed, store.CollectionCategories, sess.UserID, err)
			return false, fmt.Errorf("seed %s categories: %w", kind, err)
		}
		s.log.Logger().InfoContext(ctx, "Seeded default categories",
			log.FieldUserID, sess.UserID,
			"kind", kind,
			"count", len(cats))
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Get returns the category with id if it belongs to the caller.
func (s *CategoryService) Get(ctx context.Context, sess core.Session, id string) (core.Category, error) {
	if !sess.Valid() {
		return core.Category{}, core.ErrUnauthenticated
	}
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	if c.UserID != sess.UserID {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, patch core.CategoryPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateCategory(ctx, id, patch); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		s.log.LogStoreFailure(ctx, log.OpUpdate, store.CollectionCategories, "", err)
		return fmt.Errorf("update category %s: %w", id, err)
	}
	return nil
}

// Delete removes the category. Records already filed under its name keep it.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		s.log.LogStoreFailure(ctx, log.OpDelete, store.CollectionCategories, "", err)
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return nil
}
