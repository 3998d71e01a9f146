package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bookkeeping-ledger/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

// ExportHandler streams the transaction export as a download
type ExportHandler struct {
	exportService service.ExportService
	logger        *slog.Logger
	now           func() time.Time
}

func NewExportHandler(logger *slog.Logger, exportService service.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Transactions handles GET /export/transactions?format=json|csv|xlsx. The
// file is built in memory first so a failed export still gets an error status.
func (h *ExportHandler) Transactions(c *gin.Context) {
	format, err := service.ParseExportFormat(c.DefaultQuery("format", string(service.FormatJSON)))
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.Export(c.Request.Context(), actorFrom(c), format, &buf); err != nil {
		respondError(c, h.logger, "Export transactions", err)
		return
	}

	filename := fmt.Sprintf("transactions_%s.%s", h.now().Format("20060102_150405"), format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
