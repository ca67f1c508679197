package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/heartmarshall/pricewatch-backend/internal/service/ingest"
)

const (
	msgNoFile           = "No se subió ningún archivo"
	msgFileTooLarge     = "El archivo excede el tamaño máximo permitido"
	msgDuplicateReceipt = "Este recibo ya ha sido procesado anteriormente."

	// multipartSlack covers boundaries and part headers around the file.
	multipartSlack = 64 << 10
)

// uploadFields are the accepted multipart field names, in lookup order.
var uploadFields = []string{"factura", "file"}

type invoiceIngester interface {
	Ingest(ctx context.Context, raw []byte) (*ingest.Result, error)
}

// InvoiceHandler accepts electronic invoice uploads.
type InvoiceHandler struct {
	svc      invoiceIngester
	maxBytes int64
	log      *slog.Logger
}

// NewInvoiceHandler creates an InvoiceHandler that rejects files larger than maxBytes.
func NewInvoiceHandler(svc invoiceIngester, maxBytes int64, logger *slog.Logger) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, maxBytes: maxBytes, log: logger.With("handler", "invoice")}
}

type uploadResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Establishment string `json:"establishment"`
}

// Upload handles POST /api/upload-xml.
func (h *InvoiceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	raw, err := h.readUpload(w, r)
	if err != nil {
		switch {
		case errors.Is(err, errFileTooLarge):
			writeError(w, http.StatusBadRequest, msgFileTooLarge)
		default:
			writeError(w, http.StatusBadRequest, msgNoFile)
		}
		return
	}

	res, err := h.svc.Ingest(r.Context(), raw)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:       true,
		Message:       fmt.Sprintf("XML procesado con éxito. Se añadieron precios para %d productos.", res.PriceCount),
		Establishment: res.Establishment,
	})
}

var (
	errFileTooLarge = errors.New("file too large")
	errNoFile       = errors.New("no file")
)

func (h *InvoiceHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := h.maxBytes + multipartSlack
	if r.ContentLength > limit {
		return nil, errFileTooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, errFileTooLarge
		}
		return nil, errNoFile
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	var (
		file   multipart.File
		header *multipart.FileHeader
		err    error
	)
	for _, field := range uploadFields {
		file, header, err = r.FormFile(field)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		return nil, errFileTooLarge
	}
	raw, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(raw)) > h.maxBytes {
		return nil, errFileTooLarge
	}
	if len(raw) == 0 {
		return nil, errNoFile
	}
	return raw, nil
}
