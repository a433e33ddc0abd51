package v1alpha1

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	api "github.com/acme/product-importer/api/v1alpha1"
	"github.com/acme/product-importer/internal/service"
)

// CreateImportJob terminates a chunked upload and queues it for
// background import. The multipart body is streamed straight into the
// upload folder, so memory use stays flat regardless of file size.
func (h *ServiceHandler) CreateImportJob(w http.ResponseWriter, r *http.Request) {
	logger := zap.S().Named("import_handler")

	mr, err := r.MultipartReader()
	if err != nil {
		renderError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to read multipart form: %v", err))
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			renderError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to read multipart form: %v", err))
			return
		}

		if part.FormName() != "file" {
			continue
		}

		info, err := h.importSrv.CreateImportJob(r.Context(), part.FileName(), part)
		if err != nil {
			var invalidType *service.ErrInvalidFileType
			if errors.As(err, &invalidType) {
				renderError(w, r, http.StatusBadRequest, err.Error())
				return
			}
			logger.Errorw("failed to create import job", "error", err)
			renderError(w, r, http.StatusInternalServerError, err.Error())
			return
		}

		render.Status(r, http.StatusCreated)
		_ = render.Render(w, r, api.UploadReply{
			JobID:     info.JobID,
			Message:   info.Message,
			StatusURL: info.StatusURL,
		})
		return
	}

	renderError(w, r, http.StatusBadRequest, "file is required")
}

func (h *ServiceHandler) GetImportStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	progress, err := h.importSrv.GetImportStatus(r.Context(), jobID)
	if err != nil {
		zap.S().Named("import_handler").Errorw("failed to read status", "job_id", jobID, "error", err)
		renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	_ = render.Render(w, r, api.StatusReply{Percent: progress.Percent, Message: progress.Message})
}
