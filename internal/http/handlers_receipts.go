package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"payperless/internal/amqp"
	"payperless/internal/core"
	"payperless/internal/log"
	"payperless/internal/receipts"
)

const maxUploadSize = 10 << 20

type receiptListResponse struct {
	Receipts []core.Receipt `json:"receipts"`
	Count    int            `json:"count"`
}

type receiptDetailResponse struct {
	Receipt         core.Receipt    `json:"receipt"`
	Subtotal        float64         `json:"subtotal"`
	SubtotalDisplay string          `json:"subtotal_display"`
	TotalDisplay    string          `json:"total_display"`
	Breakdown       []core.KeyTotal `json:"breakdown"`
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	order := receipts.ParseOrder(r.URL.Query().Get("order"))
	list, err := s.receipts.List(r.Context(), order)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "failed to list receipts",
			log.FieldOperation, log.OpList, log.FieldError, err.Error())
		writeError(w, r, http.StatusBadGateway, msgLoadFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, receiptListResponse{Receipts: list, Count: len(list)})
}

func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := s.receipts.Get(r.Context(), id)
	switch {
	case errors.Is(err, receipts.ErrNotFound), errors.Is(err, receipts.ErrInvalidReceipt):
		writeError(w, r, http.StatusNotFound, msgNotFound)
		return
	case err != nil:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "failed to get receipt",
			log.FieldOperation, log.OpGet, log.FieldReceiptID, id, log.FieldError, err.Error())
		writeError(w, r, http.StatusBadGateway, msgLoadFailed)
		return
	}

	subtotal := core.Round2(core.DetailSubtotal(rec))
	writeJSON(w, r, http.StatusOK, receiptDetailResponse{
		Receipt:         rec,
		Subtotal:        subtotal,
		SubtotalDisplay: core.FormatCurrency(subtotal, s.currency),
		TotalDisplay:    core.FormatCurrency(rec.TotalAmount, s.currency),
		Breakdown:       core.ItemBreakdown(rec),
	})
}

// handleReceiptImage fails on its own: a broken image never affects the
// receipt it belongs to.
func (s *Server) handleReceiptImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	img, err := s.images.Image(r.Context(), id)
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "receipt image unavailable",
			log.FieldOperation, log.OpImage, log.FieldReceiptID, id, log.FieldError, err.Error())
		writeError(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid upload form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "image is required")
		return
	}
	defer file.Close()

	label := sanitizeInput(r.FormValue("name"))
	if label == "" {
		label = header.Filename
	}

	res, err := s.uploader.Upload(ctx, label, header.Filename, file)
	if err != nil {
		logger.ErrorContext(ctx, "upload failed", log.FieldOperation, log.OpUpload, log.FieldError, err.Error())
		writeError(w, r, http.StatusBadGateway, "Could not upload receipt, please try again")
		return
	}
	if res.Timestamp.IsZero() {
		res.Timestamp = time.Now().UTC()
	}
	logger.InfoContext(ctx, "receipt uploaded", log.FieldOperation, log.OpUpload, log.FieldReceiptID, res.ID)

	// the upload has already succeeded; a broker problem only delays ingestion
	if s.publisher == nil {
		logger.WarnContext(ctx, "AMQP not configured, skipping ingestion message", log.FieldReceiptID, res.ID)
	} else if err := s.publisher.PublishReceiptUploaded(ctx, amqp.NewReceiptUploadedMessage(res.ID, res.Label)); err != nil {
		logger.WarnContext(ctx, "failed to publish receipt.uploaded", log.FieldReceiptID, res.ID, log.FieldError, err.Error())
	}

	writeJSON(w, r, http.StatusCreated, res)
}
