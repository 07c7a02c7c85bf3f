package services

import (
	"context"
	"log"

	"rewards/src/models"
	"rewards/src/realtime"
	"rewards/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const SlidesTable = "slides"

type SlideService struct {
	db   *gorm.DB
	feed realtime.Publisher
}

func NewSlideService(db *gorm.DB, feed realtime.Publisher) *SlideService {
	return &SlideService{db: db, feed: feed}
}

func (s *SlideService) Create(ctx context.Context, body *types.CreateSlideRequestBody) (models.Slide, error) {
	slide := models.Slide{
		Image: body.Image,
		Link:  body.Link,
	}
	if err := s.db.WithContext(ctx).Create(&slide).Error; err != nil {
		return models.Slide{}, err
	}
	s.announce(ctx, types.CHANGE_INSERT)
	return slide, nil
}

func (s *SlideService) Update(ctx context.Context, id uuid.UUID, body *types.UpdateSlideRequestBody) (models.Slide, error) {
	patch := map[string]any{}
	if body.Image.Set {
		patch["image"] = body.Image.Val
	}
	if body.Link.Set {
		patch["link"] = body.Link.Val
	}
	if len(patch) > 0 {
		if err := s.db.WithContext(ctx).
			Model(&models.Slide{}).
			Where("id = ?", id).
			Updates(patch).
			Error; err != nil {
			return models.Slide{}, err
		}
	}
	var slide models.Slide
	if err := s.db.WithContext(ctx).
		Model(&models.Slide{}).
		Where("id = ?", id).
		First(&slide).
		Error; err != nil {
		return models.Slide{}, err
	}
	s.announce(ctx, types.CHANGE_UPDATE)
	return slide, nil
}

func (s *SlideService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Slide{}).
		Error; err != nil {
		return err
	}
	s.announce(ctx, types.CHANGE_DELETE)
	return nil
}

func (s *SlideService) List(ctx context.Context) ([]models.Slide, error) {
	var slides []models.Slide
	err := s.db.WithContext(ctx).
		Model(&models.Slide{}).
		Order("created_at desc").
		Find(&slides).
		Error
	return slides, err
}

func (s *SlideService) Watch(ctx context.Context, sub realtime.Subscriber, onData func([]models.Slide), onError func(error)) (stop func()) {
	return realtime.Watch(ctx, sub, SlidesTable, "", func(ctx context.Context) ([]models.Slide, error) {
		return s.List(ctx)
	}, onData, onError)
}

func (s *SlideService) announce(ctx context.Context, op types.ChangeOp) {
	if s.feed == nil {
		return
	}
	if err := s.feed.Publish(ctx, types.Change{Table: SlidesTable, Op: op}); err != nil {
		log.Printf("[slides] Error publishing change notification: %s\n", err.Error())
	}
}
