package v1alpha1

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	api "github.com/acme/product-importer/api/v1alpha1"
	"github.com/acme/product-importer/internal/service"
	"github.com/acme/product-importer/internal/store/model"
)

func (h *ServiceHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productSrv.ListProducts(r.Context())
	if err != nil {
		zap.S().Named("product_handler").Errorw("failed to list products", "error", err)
		renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	render.JSON(w, r, productListToApi(products))
}

// ImportProducts is the direct synchronous path: the file is processed
// within the request and the row count returned to the caller.
func (h *ServiceHandler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	logger := zap.S().Named("product_handler")

	file, err := formFile(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	imported, err := h.productSrv.ImportProducts(r.Context(), file)
	if err != nil {
		var missing *service.ErrMissingColumns
		var corrupted *service.ErrFileCorrupted
		switch {
		case errors.As(err, &missing), errors.As(err, &corrupted):
			renderError(w, r, http.StatusBadRequest, err.Error())
		default:
			logger.Errorw("import failed", "error", err)
			renderError(w, r, http.StatusInternalServerError, err.Error())
		}
		return
	}

	_ = render.Render(w, r, api.ImportResultReply{Status: "done", RowsImported: imported})
}

// formFile returns the "file" part of a multipart body as a stream.
func formFile(r *http.Request) (io.Reader, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("failed to read multipart form: %w", err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read multipart form: %w", err)
		}
		if part.FormName() == "file" {
			return part, nil
		}
	}
	return nil, errors.New("file is required")
}

func productListToApi(products model.ProductList) api.ProductList {
	out := make(api.ProductList, 0, len(products))
	for _, p := range products {
		out = append(out, api.Product{
			ID:          p.ID,
			Sku:         p.Sku,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Active:      p.Active,
		})
	}
	return out
}
