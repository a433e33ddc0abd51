package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/acme/product-importer/internal/notifier"
	"github.com/acme/product-importer/internal/store"
	"github.com/acme/product-importer/internal/store/model"
)

type WebhookCreateForm struct {
	Url    string `validate:"required,url"`
	Event  string `validate:"required"`
	Active *bool
}

type WebhookService struct {
	store    store.Store
	notifier *notifier.WebhookNotifier
	validate *validator.Validate
}

func NewWebhookService(s store.Store, n *notifier.WebhookNotifier) *WebhookService {
	return &WebhookService{
		store:    s,
		notifier: n,
		validate: validator.New(),
	}
}

func (s *WebhookService) CreateWebhook(ctx context.Context, form WebhookCreateForm) (*model.Webhook, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, NewErrInvalidRequest(err)
	}

	active := true
	if form.Active != nil {
		active = *form.Active
	}

	return s.store.Webhook().Create(ctx, model.Webhook{
		Url:    form.Url,
		Event:  form.Event,
		Active: active,
	})
}

func (s *WebhookService) ListWebhooks(ctx context.Context) (model.WebhookList, error) {
	return s.store.Webhook().List(ctx)
}

// TestWebhook fires a synchronous test delivery at one registration and
// reports the upstream status code.
func (s *WebhookService) TestWebhook(ctx context.Context, id uint) (int, error) {
	webhook, err := s.store.Webhook().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return 0, NewErrWebhookNotFound(id)
		}
		return 0, err
	}

	payload := map[string]string{"event": "test", "msg": "Hello from server"}
	return s.notifier.Deliver(ctx, webhook.Url, payload)
}
