package v1alpha1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	api "github.com/acme/product-importer/api/v1alpha1"
	"github.com/acme/product-importer/internal/service"
	"github.com/acme/product-importer/internal/store/model"
)

func (h *ServiceHandler) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	var payload api.WebhookCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	webhook, err := h.webhookSrv.CreateWebhook(r.Context(), service.WebhookCreateForm{
		Url:    payload.Url,
		Event:  payload.Event,
		Active: payload.Active,
	})
	if err != nil {
		var invalid *service.ErrInvalidRequest
		if errors.As(err, &invalid) {
			renderError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		zap.S().Named("webhook_handler").Errorw("failed to create webhook", "error", err)
		renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	render.Status(r, http.StatusCreated)
	_ = render.Render(w, r, webhookToApi(*webhook))
}

func (h *ServiceHandler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	webhooks, err := h.webhookSrv.ListWebhooks(r.Context())
	if err != nil {
		zap.S().Named("webhook_handler").Errorw("failed to list webhooks", "error", err)
		renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	out := make(api.WebhookList, 0, len(webhooks))
	for _, webhook := range webhooks {
		out = append(out, webhookToApi(webhook))
	}
	render.JSON(w, r, out)
}

func (h *ServiceHandler) TestWebhook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid webhook id")
		return
	}

	statusCode, err := h.webhookSrv.TestWebhook(r.Context(), uint(id))
	if err != nil {
		var notFound *service.ErrResourceNotFound
		if errors.As(err, &notFound) {
			renderError(w, r, http.StatusNotFound, err.Error())
			return
		}
		renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	_ = render.Render(w, r, api.WebhookTestReply{StatusCode: statusCode})
}

func webhookToApi(webhook model.Webhook) api.Webhook {
	return api.Webhook{
		ID:        webhook.ID,
		Url:       webhook.Url,
		Event:     webhook.Event,
		Active:    webhook.Active,
		CreatedAt: webhook.CreatedAt.Format(time.RFC3339),
	}
}
