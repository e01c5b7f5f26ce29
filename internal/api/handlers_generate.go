package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jihoonbyun/loandraft/internal/pipeline"
	"github.com/jihoonbyun/loandraft/internal/prompt"
)

// handleBuildPrompt previews the drafting prompt for a reference article
// and term sheet without calling the model.
func (s *Server) handleBuildPrompt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefArticleID  int64  `json:"ref_article_id"`
		TermSheetText string `json:"term_sheet_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.RefArticleID <= 0 {
		jsonError(w, "ref_article_id is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.TermSheetText) == "" {
		jsonError(w, "term_sheet_text is required", http.StatusBadRequest)
		return
	}

	article, err := s.st.GetArticle(r.Context(), req.RefArticleID)
	if err != nil {
		jsonError(w, "failed to get article: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if article == nil {
		jsonError(w, "article not found", http.StatusNotFound)
		return
	}
	clauses, err := s.st.GetClauses(r.Context(), article.ID)
	if err != nil {
		jsonError(w, "failed to get clauses: "+err.Error(), http.StatusInternalServerError)
		return
	}

	meta, err := s.st.GetAgreement(r.Context(), article.AgreementID)
	if err != nil {
		jsonError(w, "failed to get agreement: "+err.Error(), http.StatusInternalServerError)
		return
	}
	name := "대출약정서"
	if meta != nil {
		name = meta.Name
	}

	inputs := make([]prompt.ClauseInput, len(clauses))
	for i, cl := range clauses {
		inputs[i] = prompt.ClauseInput{
			Number:  strconv.Itoa(cl.Number),
			Title:   cl.Title,
			Content: cl.Content,
		}
	}
	text, err := prompt.BuildGenerationPrompt(req.TermSheetText, name, inputs)
	if err != nil {
		jsonError(w, "failed to build prompt: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"system_message": prompt.SystemMessage,
		"prompt":         text,
		"clause_count":   len(clauses),
	})
}

func (s *Server) handleCreateGenerated(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		Description     string `json:"description"`
		BaseAgreementID int64  `json:"base_agreement_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		jsonError(w, "name is required", http.StatusBadRequest)
		return
	}

	id, err := s.st.CreateGeneratedAgreement(r.Context(), req.Name, req.Description, req.BaseAgreementID)
	if err != nil {
		jsonError(w, "failed to create agreement: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"id": id, "name": req.Name})
}

func (s *Server) handleListGenerated(w http.ResponseWriter, r *http.Request) {
	metas, err := s.st.ListGeneratedAgreements(r.Context())
	if err != nil {
		jsonError(w, "failed to list agreements: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"agreements": metas})
}

func (s *Server) handleGetGenerated(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "agreementID")
	if !ok {
		return
	}
	meta, err := s.st.GetGeneratedAgreement(r.Context(), id)
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

func (s *Server) handleDeleteGenerated(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "agreementID")
	if !ok {
		return
	}
	deleted, err := s.st.DeleteGeneratedAgreement(r.Context(), id)
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

func (s *Server) handleGetGeneratedArticles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "agreementID")
	if !ok {
		return
	}
	meta, err := s.st.GetGeneratedAgreement(r.Context(), id)
	if err != nil {
		jsonError(w, "failed to get agreement: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if meta == nil {
		jsonError(w, "agreement not found", http.StatusNotFound)
		return
	}
	articles, err := s.st.GetGeneratedArticles(r.Context(), id)
	if err != nil {
		jsonError(w, "failed to get articles: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"articles": articles})
}

// handleGenerateArticle queues a drafting job: one reference article plus a
// term sheet, drafted into the working agreement. Returns 202 with a poll URL.
func (s *Server) handleGenerateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "agreementID")
	if !ok {
		return
	}

	var req struct {
		RefAgreementID int64  `json:"ref_agreement_id"`
		RefArticleID   int64  `json:"ref_article_id"`
		TermSheetText  string `json:"term_sheet_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.RefArticleID <= 0 {
		jsonError(w, "ref_article_id is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.TermSheetText) == "" {
		jsonError(w, "term_sheet_text is required", http.StatusBadRequest)
		return
	}
	if !s.llm.Configured() {
		jsonError(w, "drafting model is not configured", http.StatusServiceUnavailable)
		return
	}

	meta, err := s.st.GetGeneratedAgreement(r.Context(), id)
	if err != nil {
		jsonError(w, "failed to get agreement: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if meta == nil {
		jsonError(w, "agreement not found", http.StatusNotFound)
		return
	}

	job := pipeline.NewJob(id, req.RefAgreementID, req.RefArticleID, req.TermSheetText)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/generate/%s/status", job.ID),
	})
}

func (s *Server) handleGenerateStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, job.Snapshot())
}

func (s *Server) handleUpdateGeneratedClause(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "clauseID")
	if !ok {
		return
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := s.st.UpdateGeneratedClause(r.Context(), id, req.Title, req.Content)
	if err != nil {
		jsonError(w, "failed to update clause: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if !updated {
		jsonError(w, "clause not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"updated": true})
}
