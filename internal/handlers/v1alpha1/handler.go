package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	api "github.com/acme/product-importer/api/v1alpha1"
	"github.com/acme/product-importer/internal/service"
)

type ServiceHandler struct {
	productSrv *service.ProductService
	importSrv  *service.ImportService
	webhookSrv *service.WebhookService
}

func NewServiceHandler(
	productSrv *service.ProductService,
	importSrv *service.ImportService,
	webhookSrv *service.WebhookService,
) *ServiceHandler {
	return &ServiceHandler{
		productSrv: productSrv,
		importSrv:  importSrv,
		webhookSrv: webhookSrv,
	}
}

func (h *ServiceHandler) RegisterRoutes(router chi.Router) {
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Post("/products/import", h.ImportProducts)

		r.Post("/imports", h.CreateImportJob)
		r.Get("/imports/{id}", h.GetImportStatus)

		r.Post("/webhooks", h.CreateWebhook)
		r.Get("/webhooks", h.ListWebhooks)
		r.Post("/webhooks/{id}/test", h.TestWebhook)
	})
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	_ = render.Render(w, r, api.Error{Message: message})
}
