package api

import (
	"io"
	"net/http"
)

// maxDocumentBytes caps a single uploaded evidence document.
const maxDocumentBytes = 20 << 20 // 20 MiB

// handleUploadDocument stores one Hard-KO evidence blob (a business
// licence PDF and the like) in blob storage. The document metadata
// still goes through the hard-gate submission; this only holds bytes.
func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "document storage unavailable")
		return
	}
	shopID := r.PathValue("shopID")
	docID := r.PathValue("docID")

	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty document")
		return
	}
	if len(data) > maxDocumentBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "document exceeds size limit")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if err := h.storage.PutDocument(r.Context(), shopID, docID, contentType, data); err != nil {
		writeError(w, http.StatusInternalServerError, "store document: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"shop_id":     shopID,
		"document_id": docID,
	})
}

// handleGetDocument streams one stored evidence blob back.
func (h *Handler) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "document storage unavailable")
		return
	}
	shopID := r.PathValue("shopID")
	docID := r.PathValue("docID")

	data, err := h.storage.GetDocument(r.Context(), shopID, docID)
	if err != nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
