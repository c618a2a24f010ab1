package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/dadkeeper/internal/common"
	"github.com/dmitrijs2005/dadkeeper/internal/server/services"
	"github.com/dmitrijs2005/dadkeeper/internal/server/toolkit"
	"github.com/go-chi/chi/v5"
)

type success struct {
	Success bool `json:"success"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.svc.Users.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	pair, err := h.svc.Users.Login(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	pair, err := h.svc.Users.RefreshToken(r.Context(), in.RefreshToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Users.Me(r.Context(), callerFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Users.DeleteAccount(r.Context(), callerFromContext(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success{Success: true})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Profiles.Get(r.Context(), callerFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": p})
}

func (h *Handler) upsertProfile(w http.ResponseWriter, r *http.Request) {
	var in services.UpsertProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.svc.Profiles.Upsert(r.Context(), callerFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": p})
}

func (h *Handler) listJournals(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Journals.List(r.Context(), callerFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) getJournal(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.Journals.Get(r.Context(), callerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entry})
}

func (h *Handler) createJournal(w http.ResponseWriter, r *http.Request) {
	var in services.CreateJournalInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := h.svc.Journals.Create(r.Context(), callerFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entry})
}

func (h *Handler) updateJournal(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateJournalInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := h.svc.Journals.Update(r.Context(), callerFromContext(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entry})
}

func (h *Handler) deleteJournal(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Journals.Delete(r.Context(), callerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, success{Success: true})
}

func (h *Handler) listDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.svc.Drafts.List(r.Context(), callerFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"drafts": drafts})
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.svc.Drafts.Get(r.Context(), callerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"draft": draft})
}

func (h *Handler) createDraft(w http.ResponseWriter, r *http.Request) {
	var in services.CreateDraftInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	draft, err := h.svc.Drafts.Create(r.Context(), callerFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"draft": draft})
}

func (h *Handler) updateDraft(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateDraftInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	draft, err := h.svc.Drafts.Update(r.Context(), callerFromContext(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"draft": draft})
}

func (h *Handler) rewrite(w http.ResponseWriter, r *http.Request) {
	var in services.RewriteInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.svc.Rewrite.Rewrite(r.Context(), callerFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) listPhases(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"phases": toolkit.Phases()})
}

func (h *Handler) getPhase(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "phase"))
	if err != nil {
		h.fail(w, r, common.ErrorNotFound)
		return
	}
	phase, ok := toolkit.FindPhase(n)
	if !ok {
		h.fail(w, r, common.ErrorNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"phase": phase})
}

func (h *Handler) listPrompts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"prompts": toolkit.Prompts()})
}

// listDisclaimers serves the rewrite disclaimers unless ?kind=templates.
func (h *Handler) listDisclaimers(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = toolkit.DisclaimerRewrite
	}
	d := toolkit.Disclaimers(kind)
	if d == nil {
		h.fail(w, r, fmt.Errorf("%w: unknown disclaimer kind %q", common.ErrorValidation, kind))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"disclaimers": d})
}

func (h *Handler) listTemplateCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"templates": toolkit.Templates()})
}

func (h *Handler) listTemplateUses(w http.ResponseWriter, r *http.Request) {
	uses, err := h.svc.Templates.List(r.Context(), callerFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": uses})
}

func (h *Handler) recordTemplateUse(w http.ResponseWriter, r *http.Request) {
	var in services.RecordTemplateInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.svc.Templates.Record(r.Context(), callerFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}
