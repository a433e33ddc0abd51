package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/acme/product-importer/internal/store/model"
)

type Webhook interface {
	Create(ctx context.Context, webhook model.Webhook) (*model.Webhook, error)
	List(ctx context.Context) (model.WebhookList, error)
	Get(ctx context.Context, id uint) (*model.Webhook, error)
	ListActiveByEvent(ctx context.Context, event string) (model.WebhookList, error)
	InitialMigration() error
}

type WebhookStore struct {
	db *gorm.DB
}

// Make sure we conform to Webhook interface
var _ Webhook = (*WebhookStore)(nil)

func NewWebhookStore(db *gorm.DB) Webhook {
	return &WebhookStore{db: db}
}

func (s *WebhookStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.Webhook{})
}

func (s *WebhookStore) Create(ctx context.Context, webhook model.Webhook) (*model.Webhook, error) {
	result := s.getDB(ctx).Create(&webhook)
	if result.Error != nil {
		return nil, result.Error
	}
	return &webhook, nil
}

func (s *WebhookStore) List(ctx context.Context) (model.WebhookList, error) {
	var webhooks model.WebhookList
	result := s.getDB(ctx).Model(&webhooks).Order("id").Find(&webhooks)
	if result.Error != nil {
		return nil, result.Error
	}
	return webhooks, nil
}

func (s *WebhookStore) Get(ctx context.Context, id uint) (*model.Webhook, error) {
	webhook := model.Webhook{ID: id}
	result := s.getDB(ctx).First(&webhook)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &webhook, nil
}

func (s *WebhookStore) ListActiveByEvent(ctx context.Context, event string) (model.WebhookList, error) {
	var webhooks model.WebhookList
	result := s.getDB(ctx).
		Where("event = ? AND active = ?", event, true).
		Order("id").
		Find(&webhooks)
	if result.Error != nil {
		return nil, result.Error
	}
	return webhooks, nil
}

func (s *WebhookStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}
