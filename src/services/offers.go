package services

import (
	"context"
	"log"

	"rewards/src/models"
	"rewards/src/realtime"
	"rewards/src/types"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const OffersTable = "offers"

// OfferService is a thin CRUD wrapper plus the realtime subscribe hook.
// No business rules here beyond the visibility flag.
type OfferService struct {
	db   *gorm.DB
	feed realtime.Publisher
}

func NewOfferService(db *gorm.DB, feed realtime.Publisher) *OfferService {
	return &OfferService{db: db, feed: feed}
}

func (s *OfferService) Create(ctx context.Context, body *types.CreateOfferRequestBody) (models.Offer, error) {
	offer := models.Offer{
		Title:         body.Title,
		Slug:          slug.Make(body.Title),
		Amount:        body.Amount,
		Icon:          body.Icon,
		Label:         body.Label,
		Description:   body.Description,
		Steps:         types.StringList(body.Steps),
		StoreURL:      body.StoreURL,
		Active:        true,
		RequiresProof: body.RequiresProof,
	}
	if body.Active != nil {
		offer.Active = *body.Active
	}
	if err := s.db.WithContext(ctx).Create(&offer).Error; err != nil {
		return models.Offer{}, err
	}
	s.announce(ctx, types.CHANGE_INSERT)
	return offer, nil
}

// Update applies only the fields the patch explicitly carries. A field set
// to null clears the column; a field left out of the body is untouched.
func (s *OfferService) Update(ctx context.Context, id uuid.UUID, body *types.UpdateOfferRequestBody) (models.Offer, error) {
	patch := map[string]any{}
	if body.Title.Set {
		patch["title"] = body.Title.Val
		patch["slug"] = slug.Make(body.Title.Val)
	}
	if body.Amount.Set {
		patch["amount"] = body.Amount.Val
	}
	if body.Icon.Set {
		patch["icon"] = body.Icon.Val
	}
	if body.Label.Set {
		patch["label"] = body.Label.Val
	}
	if body.Description.Set {
		patch["description"] = body.Description.Val
	}
	if body.Steps.Set {
		patch["steps"] = types.StringList(body.Steps.Val)
	}
	if body.StoreURL.Set {
		patch["store_url"] = body.StoreURL.Val
	}
	if body.Active.Set {
		patch["active"] = body.Active.Val
	}
	if body.RequiresProof.Set {
		patch["requires_proof"] = body.RequiresProof.Val
	}
	if len(patch) > 0 {
		if err := s.db.WithContext(ctx).
			Model(&models.Offer{}).
			Where("id = ?", id).
			Updates(patch).
			Error; err != nil {
			return models.Offer{}, err
		}
	}
	var offer models.Offer
	if err := s.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ?", id).
		First(&offer).
		Error; err != nil {
		return models.Offer{}, err
	}
	s.announce(ctx, types.CHANGE_UPDATE)
	return offer, nil
}

// SetVisibility is sugar for Update with only the active flag.
func (s *OfferService) SetVisibility(ctx context.Context, id uuid.UUID, active bool) (models.Offer, error) {
	return s.Update(ctx, id, &types.UpdateOfferRequestBody{Active: types.Some(active)})
}

func (s *OfferService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Offer{}).
		Error; err != nil {
		return err
	}
	s.announce(ctx, types.CHANGE_DELETE)
	return nil
}

func (s *OfferService) Get(ctx context.Context, id uuid.UUID) (models.Offer, error) {
	var offer models.Offer
	err := s.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ?", id).
		First(&offer).
		Error
	return offer, err
}

// List returns offers newest first. Non-admin callers only see active ones.
func (s *OfferService) List(ctx context.Context, activeOnly bool) ([]models.Offer, error) {
	var offers []models.Offer
	q := s.db.WithContext(ctx).Model(&models.Offer{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	err := q.Order("created_at desc").Find(&offers).Error
	return offers, err
}

func (s *OfferService) Watch(ctx context.Context, sub realtime.Subscriber, activeOnly bool, onData func([]models.Offer), onError func(error)) (stop func()) {
	return realtime.Watch(ctx, sub, OffersTable, "", func(ctx context.Context) ([]models.Offer, error) {
		return s.List(ctx, activeOnly)
	}, onData, onError)
}

func (s *OfferService) announce(ctx context.Context, op types.ChangeOp) {
	if s.feed == nil {
		return
	}
	if err := s.feed.Publish(ctx, types.Change{Table: OffersTable, Op: op}); err != nil {
		log.Printf("[offers] Error publishing change notification: %s\n", err.Error())
	}
}
