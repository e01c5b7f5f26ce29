package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jihoonbyun/loandraft/internal/agreement"
	"github.com/jihoonbyun/loandraft/internal/prompt"
	"github.com/jihoonbyun/loandraft/internal/reconcile"
	"github.com/jihoonbyun/loandraft/internal/store"
)

// Worker drafts a single article per job: it loads the reference article,
// builds the drafting prompt, calls the model, reconciles the response into
// clause records, and saves the result.
type Worker struct {
	gen Generator
	st  *store.Store
	log *slog.Logger
}

func NewWorker(gen Generator, st *store.Store, log *slog.Logger) *Worker {
	return &Worker{gen: gen, st: st, log: log}
}

// Process runs the full drafting pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID,
		"generated_agreement_id", job.GeneratedAgreementID,
		"ref_article_id", job.RefArticleID)

	// Phase 1: Load the reference article and its clauses.
	job.SetStatus(StatusGenerating, "loading_reference")
	refArticle, err := w.st.GetArticle(ctx, job.RefArticleID)
	if err != nil {
		log.Error("load reference article failed", "error", err)
		job.AddError(fmt.Sprintf("load reference: %s", err))
		job.SetStatus(StatusFailed, "loading_reference")
		return
	}
	if refArticle == nil {
		job.AddError(fmt.Sprintf("reference article %d not found", job.RefArticleID))
		job.SetStatus(StatusFailed, "loading_reference")
		return
	}
	refClauses, err := w.st.GetClauses(ctx, refArticle.ID)
	if err != nil {
		log.Error("load reference clauses failed", "error", err)
		job.AddError(fmt.Sprintf("load clauses: %s", err))
		job.SetStatus(StatusFailed, "loading_reference")
		return
	}

	refMeta, err := w.st.GetAgreement(ctx, job.RefAgreementID)
	if err != nil || refMeta == nil {
		if err != nil {
			log.Warn("load reference agreement failed", "error", err)
		}
		refMeta = &store.AgreementMeta{Name: "대출약정서"}
	}

	// Phase 2: Build the prompt and call the model with retries.
	job.SetStatus(StatusGenerating, "generating")
	inputs := make([]prompt.ClauseInput, len(refClauses))
	for i, cl := range refClauses {
		inputs[i] = prompt.ClauseInput{
			Number:  strconv.Itoa(cl.Number),
			Title:   cl.Title,
			Content: cl.Content,
		}
	}
	draftingPrompt, err := prompt.BuildGenerationPrompt(job.TermSheetText, refMeta.Name, inputs)
	if err != nil {
		job.AddError(fmt.Sprintf("build prompt: %s", err))
		job.SetStatus(StatusFailed, "generating")
		return
	}

	var responseText string
	var lastErr error
	for attempt := range MaxRetries {
		responseText, lastErr = w.gen.Generate(ctx, prompt.SystemMessage, draftingPrompt)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable generation error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			job.AddError(ctx.Err().Error())
			job.SetStatus(StatusFailed, "generating")
			return
		}
	}
	if lastErr != nil {
		log.Error("generation failed", "error", lastErr)
		job.AddError(fmt.Sprintf("generate: %s", lastErr))
		job.SetStatus(StatusFailed, "generating")
		return
	}

	// Phase 3: Reconcile the response back into clause records.
	job.SetStatus(StatusReconciling, "reconciling")
	clauses, tier := reconcile.Reconcile(responseText)
	log.Info("reconciled response", "tier", tier.String(), "clauses", len(clauses))

	if len(clauses) != len(refClauses) {
		warn := fmt.Sprintf("clause count mismatch: drafted %d, reference has %d",
			len(clauses), len(refClauses))
		log.Warn("clause count mismatch",
			"drafted", len(clauses), "expected", len(refClauses), "tier", tier.String())
		job.AddWarning(warn)
	}

	// Phase 4: Save the drafted article.
	job.SetStatus(StatusSaving, "saving")
	art := store.GeneratedArticle{
		Number:         refArticle.Number,
		Display:        refArticle.Display,
		Title:          refArticle.Title,
		RefAgreementID: job.RefAgreementID,
		RefArticleID:   refArticle.ID,
		TermSheetText:  job.TermSheetText,
		ReconcileTier:  tier.String(),
		Clauses:        make([]store.GeneratedClause, len(clauses)),
	}
	for i, cl := range clauses {
		gc := store.GeneratedClause{
			Number:  cl.Number,
			Display: strconv.Itoa(cl.Number),
			Title:   cl.Title,
			Content: cl.Content,
		}
		if cl.Number == 0 {
			gc.Display = agreement.BodyClauseTitle
		}
		// Carry provenance when positions line up with the reference.
		if i < len(refClauses) {
			gc.RefClauseID = refClauses[i].ID
		}
		art.Clauses[i] = gc
	}

	articleID, err := w.st.SaveGeneratedArticle(ctx, job.GeneratedAgreementID, art)
	if err != nil {
		log.Error("save drafted article failed", "error", err)
		job.AddError(fmt.Sprintf("save: %s", err))
		job.SetStatus(StatusFailed, "saving")
		return
	}

	job.SetResult(articleID, len(clauses), tier.String())
	job.SetStatus(StatusCompleted, "done")
	log.Info("drafting complete", "article_id", articleID, "clauses", len(clauses))
}
