package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/diewo77/nats-backoffice/internal/cache"
	"github.com/diewo77/nats-backoffice/internal/models"
	"github.com/diewo77/nats-backoffice/internal/patch"
	"github.com/diewo77/nats-backoffice/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

type PortfolioService struct {
	db       *gorm.DB
	cache    cache.Store
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewPortfolioService(db *gorm.DB) *PortfolioService {
	return &PortfolioService{db: db, log: zap.NewNop()}
}

// WithCache enables caching of public listings. A ttl of zero or less leaves
// caching off.
func (s *PortfolioService) WithCache(c cache.Store, ttl time.Duration, log *zap.Logger) *PortfolioService {
	if log != nil {
		s.log = log
	}
	if ttl <= 0 {
		s.cache = nil
		return s
	}
	s.cache = c
	s.cacheTTL = ttl
	return s
}

type PortfolioInput struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Featured    bool   `json:"featured"`
	Order       int    `json:"order"`
}

// PortfolioPatch is a partial update. Empty strings are ignored; Featured and
// Order apply whenever sent, false and 0 included.
type PortfolioPatch struct {
	Title       patch.Field[string] `json:"title"`
	Category    patch.Field[string] `json:"category"`
	Description patch.Field[string] `json:"description"`
	Image       patch.Field[string] `json:"image"`
	Featured    patch.Field[bool]   `json:"featured"`
	Order       patch.Field[int]    `json:"order"`
}

type PortfolioFilter struct {
	Category     string
	FeaturedOnly bool
}

// generationKey holds the listing generation. Every write moves it, so a
// listing computed before the write is stored under a key no reader uses.
const generationKey = "portfolio:gen"

func listKey(gen string, f PortfolioFilter) string {
	return "portfolio:list:" + gen + ":" + f.Category + ":" + strconv.FormatBool(f.FeaturedOnly)
}

// allListKeys enumerates every cacheable listing of one generation.
func allListKeys(gen string) []string {
	keys := make([]string, 0, 2*(len(models.PortfolioCategories)+1))
	for _, c := range append([]string{""}, models.PortfolioCategories...) {
		for _, featured := range []bool{false, true} {
			keys = append(keys, listKey(gen, PortfolioFilter{Category: c, FeaturedOnly: featured}))
		}
	}
	return keys
}

func (s *PortfolioService) generation(ctx context.Context) (string, error) {
	b, ok, err := s.cache.Get(ctx, generationKey)
	if err != nil {
		return "", err
	}
	if !ok {
		return "0", nil
	}
	return string(b), nil
}

// invalidate moves the generation forward and drops the listings of the
// previous one.
func (s *PortfolioService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	prev, err := s.generation(ctx)
	if err != nil {
		s.log.Warn("portfolio cache generation read failed", zap.Error(err))
	}
	if err := s.cache.Set(ctx, generationKey, []byte(uuid.NewString()), 0); err != nil {
		s.log.Warn("portfolio cache generation bump failed", zap.Error(err))
	}
	if prev == "" {
		return
	}
	if err := s.cache.Del(ctx, allListKeys(prev)...); err != nil {
		s.log.Warn("portfolio cache invalidation failed", zap.Error(err))
	}
}

// ListPortfolio is public. Items are sorted by order ascending, newest first
// on ties.
func (s *PortfolioService) ListPortfolio(ctx context.Context, f PortfolioFilter) ([]models.Portfolio, error) {
	if f.Category == CategoryAll {
		f.Category = ""
	}
	v := validation.Violations{}
	validation.OneOf("category", f.Category, models.PortfolioCategories, v)
	if !v.Empty() {
		return nil, newValidationError("Invalid filter", v)
	}

	// The generation is read before the store so a write landing in between
	// leaves this listing under a stale key.
	key := ""
	if s.cache != nil {
		if gen, err := s.generation(ctx); err != nil {
			s.log.Warn("portfolio cache generation read failed", zap.Error(err))
		} else {
			key = listKey(gen, f)
		}
	}
	if key != "" {
		if b, ok, err := s.cache.Get(ctx, key); err != nil {
			s.log.Warn("portfolio cache read failed", zap.Error(err))
		} else if ok {
			var items []models.Portfolio
			if err := json.Unmarshal(b, &items); err == nil {
				return items, nil
			}
		}
	}

	q := s.db.WithContext(ctx)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.FeaturedOnly {
		q = q.Where("featured = ?", true)
	}
	items := []models.Portfolio{}
	if err := q.Order("display_order ASC").Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, storeErr("list portfolio", err)
	}

	if key != "" {
		if b, err := json.Marshal(items); err == nil {
			if err := s.cache.Set(ctx, key, b, s.cacheTTL); err != nil {
				s.log.Warn("portfolio cache write failed", zap.Error(err))
			}
		}
	}
	return items, nil
}

func (s *PortfolioService) GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error) {
	var item models.Portfolio
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Portfolio item")
	}
	if err != nil {
		return nil, storeErr("get portfolio", err)
	}
	return &item, nil
}

func (s *PortfolioService) CreatePortfolio(ctx context.Context, in PortfolioInput) (*models.Portfolio, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.Required("category", in.Category, v)
	validation.Required("description", in.Description, v)
	validation.Required("image", in.Image, v)
	if !v.Empty() {
		return nil, missingFields(v, "title", "category", "description", "image")
	}
	validation.OneOf("category", in.Category, models.PortfolioCategories, v)
	if !v.Empty() {
		return nil, newValidationError("Invalid field values", v)
	}

	item := models.Portfolio{
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		Image:       in.Image,
		Featured:    in.Featured,
		Order:       in.Order,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, storeErr("create portfolio", err)
	}
	s.invalidate(ctx)
	return &item, nil
}

func (s *PortfolioService) UpdatePortfolio(ctx context.Context, id string, p PortfolioPatch) (*models.Portfolio, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var item models.Portfolio
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Portfolio item")
		}
		return nil, storeErr("get portfolio", err)
	}

	updates := map[string]any{}
	if patch.NonEmpty(p.Title) {
		updates["title"] = p.Title.Value
	}
	if patch.NonEmpty(p.Category) {
		v := validation.Violations{}
		validation.OneOf("category", p.Category.Value, models.PortfolioCategories, v)
		if !v.Empty() {
			return nil, newValidationError("Invalid field values", v)
		}
		updates["category"] = p.Category.Value
	}
	if patch.NonEmpty(p.Description) {
		updates["description"] = p.Description.Value
	}
	if patch.NonEmpty(p.Image) {
		updates["image"] = p.Image.Value
	}
	if p.Featured.HasValue() {
		updates["featured"] = p.Featured.Value
	}
	if p.Order.HasValue() {
		updates["display_order"] = p.Order.Value
	}
	if len(updates) == 0 {
		return &item, nil
	}
	if err := db.Model(&item).Updates(updates).Error; err != nil {
		return nil, storeErr("update portfolio", err)
	}
	s.invalidate(ctx)
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		return nil, storeErr("reload portfolio", err)
	}
	return &item, nil
}

func (s *PortfolioService) DeletePortfolio(ctx context.Context, id string) error {
	if _, err := requireSession(ctx); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&models.Portfolio{}, "id = ?", id)
	if res.Error != nil {
		return storeErr("delete portfolio", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("Portfolio item")
	}
	s.invalidate(ctx)
	return nil
}
