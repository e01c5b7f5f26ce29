package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jihoonbyun/loandraft/internal/agreement"
	"github.com/jihoonbyun/loandraft/internal/parser"
)

// handleUploadAgreement parses an uploaded reference agreement into its
// article/clause structure and persists it.
func (s *Server) handleUploadAgreement(w http.ResponseWriter, r *http.Request) {
	// Limit total request size, with extra room for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	doc, err := s.parseUpload(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if name := r.FormValue("name"); name != "" {
		doc.Name = name
	}

	id, err := s.st.SaveAgreement(r.Context(), doc)
	if err != nil {
		s.log.Error("save agreement failed", "filename", filename, "error", err)
		jsonError(w, "failed to save agreement", http.StatusInternalServerError)
		return
	}

	s.log.Info("agreement uploaded", "id", id, "filename", filename, "articles", len(doc.Articles))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"id":            id,
		"name":          doc.Name,
		"file_name":     doc.FileName,
		"article_count": len(doc.Articles),
	})
}

func (s *Server) handleListAgreements(w http.ResponseWriter, r *http.Request) {
	metas, err := s.st.ListAgreements(r.Context())
	if err != nil {
		jsonError(w, "failed to list agreements: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"agreements": metas})
}

func (s *Server) handleGetAgreement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "agreementID")
	if !ok {
		return
	}
	meta, err := s.st.GetAgreement(r.Context(), id)
	if err != nil {
		jsonError(w, "failed to get agreement: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if meta == nil {
		jsonError(w, "agreement not found", http.StatusNotFound)
		return
	}
	writeJSON(w, meta)
}

func (s *Server) handleDeleteAgreement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "agreementID")
	if !ok {
		return
	}
	deleted, err := s.st.DeleteAgreement(r.Context(), id)
	if err != nil {
		jsonError(w, "failed to delete agreement: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		jsonError(w, "agreement not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"deleted": true})
}

func (s *Server) handleGetArticles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "agreementID")
	if !ok {
		return
	}
	meta, err := s.st.GetAgreement(r.Context(), id)
	if err != nil {
		jsonError(w, "failed to get agreement: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if meta == nil {
		jsonError(w, "agreement not found", http.StatusNotFound)
		return
	}
	articles, err := s.st.GetArticles(r.Context(), id)
	if err != nil {
		jsonError(w, "failed to get articles: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"articles": articles})
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "articleID")
	if !ok {
		return
	}
	article, err := s.st.GetArticle(r.Context(), id)
	if err != nil {
		jsonError(w, "failed to get article: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if article == nil {
		jsonError(w, "article not found", http.StatusNotFound)
		return
	}
	clauses, err := s.st.GetClauses(r.Context(), id)
	if err != nil {
		jsonError(w, "failed to get clauses: "+err.Error(), http.StatusInternalServerError)
		return
	}
	article.Clauses = clauses
	writeJSON(w, article)
}

func (s *Server) handleSearchArticles(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		jsonError(w, "q query parameter is required", http.StatusBadRequest)
		return
	}
	articles, err := s.st.SearchArticles(r.Context(), q)
	if err != nil {
		jsonError(w, "search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"articles": articles})
}

func (s *Server) handleSearchClauses(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		jsonError(w, "q query parameter is required", http.StatusBadRequest)
		return
	}
	clauses, err := s.st.SearchClauses(r.Context(), q)
	if err != nil {
		jsonError(w, "search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"clauses": clauses})
}

// parseUpload runs the structural parse with the server's PDF settings.
func (s *Server) parseUpload(r io.Reader, filename string) (*agreement.Document, error) {
	ex, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	if pdfEx, ok := ex.(*parser.PDFExtractor); ok {
		pdfEx.FallbackPdftotext = s.cfg.PDFFallbackPdftotext
	}
	return parser.ParseWith(ex, r, filename)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
