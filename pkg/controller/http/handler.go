package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/incidex/pkg/domain/interfaces"
	"github.com/secmon-lab/incidex/pkg/domain/model"
	"github.com/secmon-lab/incidex/pkg/domain/types"
	"github.com/secmon-lab/incidex/pkg/service/backend"
	"github.com/secmon-lab/incidex/pkg/usecase"
)

type handler struct {
	store *usecase.Store
	api   interfaces.IncidentAPI
	views *views
}

func (h *handler) backendHealth(w http.ResponseWriter, r *http.Request) {
	health, err := h.api.Health(r.Context())
	if err != nil {
		writeError(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, r, http.StatusOK, health)
}

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.Filter{
		Query:    strings.TrimSpace(q.Get("q")),
		Severity: q.Get("severity"),
		Category: q.Get("category"),
	}

	state := h.store.Snapshot()
	page := dashboardPage{
		base:      base{Title: "Dashboard", Nav: "dashboard", Flash: popFlash(w, r)},
		Filter:    filter,
		Options:   model.NewFilterOptions(state.Incidents),
		Stats:     model.NewStats(state.Incidents),
		Incidents: filter.Apply(state.Incidents),
	}
	if state.ListFailed() {
		page.Error = &errorPanel{
			Heading:     "Error Loading Incidents",
			Message:     state.Error,
			RetryAction: "/refresh",
		}
	}

	h.views.render(w, r, http.StatusOK, pageDashboard, page)
}

// refresh reloads the list. A failure is left in the store and shown by
// the dashboard's error panel.
func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Refresh(r.Context()); err != nil {
		ctxlog.From(r.Context()).Warn("refresh failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handler) newIncident(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, r, http.StatusOK, pageForm, newIncidentForm(popFlash(w, r), model.Draft{}, nil))
}

func newIncidentForm(flash *model.Notice, values model.Draft, errs model.FormErrors) formPage {
	return formPage{
		base:    base{Title: "Create Incident", Nav: "new", Flash: flash},
		Heading: "Create New Incident",
		Action:  "/incidents",
		Cancel:  "/",
		Submit:  "Create Incident",
		Values:  values,
		Errors:  errs,
	}
}

func draftFromForm(r *http.Request) model.Draft {
	return model.Draft{
		Title:           r.PostFormValue(model.FieldTitle),
		Description:     r.PostFormValue(model.FieldDescription),
		AffectedService: r.PostFormValue(model.FieldAffectedService),
	}
}

func (h *handler) createIncident(w http.ResponseWriter, r *http.Request) {
	draft := draftFromForm(r)

	if errs := model.ValidateDraft(draft); errs.HasErrors() {
		h.views.render(w, r, http.StatusUnprocessableEntity, pageForm, newIncidentForm(nil, draft, errs))
		return
	}

	created, err := h.store.Create(r.Context(), draft)
	if err != nil {
		flash := &model.Notice{Level: model.NoticeError, Message: usecase.NoticeCreateFailed, Detail: err.Error()}
		h.views.render(w, r, failureStatus(err), pageForm, newIncidentForm(flash, draft, nil))
		return
	}

	setFlash(w, r, model.Notice{Level: model.NoticeSuccess, Message: usecase.NoticeCreated})
	if created.ID.IsEmpty() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, incidentURL(created.ID), http.StatusSeeOther)
}

// incidentIDParam decodes the {id} segment. chi routes on the raw path, so
// the segment is still percent-encoded when the ID contains a slash.
func incidentIDParam(r *http.Request) types.IncidentID {
	id := chi.URLParam(r, "id")
	if v, err := url.PathUnescape(id); err == nil {
		return types.IncidentID(v)
	}
	return types.IncidentID(id)
}

// incidentURL is the detail page path of id, escaped as a single segment
func incidentURL(id types.IncidentID) string {
	return "/incidents/" + url.PathEscape(id.String())
}

func (h *handler) showIncident(w http.ResponseWriter, r *http.Request) {
	id := incidentIDParam(r)
	page := detailPage{
		base:          base{Title: "Incident #" + id.String(), Flash: popFlash(w, r)},
		ConfirmDelete: r.URL.Query().Get("confirm") == "delete",
	}

	x, err := h.store.Load(r.Context(), id)
	if err != nil {
		page.Error = &errorPanel{
			Heading:     "Error Loading Incident",
			Message:     err.Error(),
			RetryAction: incidentURL(id) + "/reload",
		}
		h.views.render(w, r, failureStatus(err), pageDetail, page)
		return
	}

	page.Incident = x
	h.views.render(w, r, http.StatusOK, pageDetail, page)
}

// reloadIncident is the retry target of the detail error panel
func (h *handler) reloadIncident(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, incidentURL(incidentIDParam(r)), http.StatusSeeOther)
}

func (h *handler) editIncident(w http.ResponseWriter, r *http.Request) {
	id := incidentIDParam(r)

	x, err := h.store.Load(r.Context(), id)
	if err != nil {
		setFlash(w, r, model.Notice{Level: model.NoticeError, Message: usecase.NoticeLoadFailed, Detail: err.Error()})
		http.Redirect(w, r, incidentURL(id), http.StatusSeeOther)
		return
	}

	values := model.Draft{Title: x.Title, Description: x.Description, AffectedService: x.AffectedService}
	h.views.render(w, r, http.StatusOK, pageForm, editIncidentForm(popFlash(w, r), id, values, nil))
}

func editIncidentForm(flash *model.Notice, id types.IncidentID, values model.Draft, errs model.FormErrors) formPage {
	return formPage{
		base:    base{Title: "Edit Incident", Flash: flash},
		Heading: "Edit Incident",
		Editing: true,
		ID:      id.String(),
		Action:  incidentURL(id) + "/edit",
		Cancel:  incidentURL(id),
		Submit:  "Save Changes",
		Values:  values,
		Errors:  errs,
	}
}

// patchFromForm sets only the fields whose submitted value differs from
// current, so unchanged fields are not resent
func patchFromForm(current *model.Incident, values model.Draft) model.Patch {
	var patch model.Patch
	if values.Title != current.Title {
		patch.Title = &values.Title
	}
	if values.Description != current.Description {
		patch.Description = &values.Description
	}
	if values.AffectedService != current.AffectedService {
		patch.AffectedService = &values.AffectedService
	}
	return patch
}

func (h *handler) updateIncident(w http.ResponseWriter, r *http.Request) {
	id := incidentIDParam(r)
	values := draftFromForm(r)

	current := h.store.Snapshot().Selected
	if current == nil || current.ID != id {
		x, err := h.store.Load(r.Context(), id)
		if err != nil {
			flash := &model.Notice{Level: model.NoticeError, Message: usecase.NoticeUpdateFailed, Detail: err.Error()}
			h.views.render(w, r, failureStatus(err), pageForm, editIncidentForm(flash, id, values, nil))
			return
		}
		current = x
	}

	patch := patchFromForm(current, values)
	if errs := model.ValidatePatch(patch); errs.HasErrors() {
		h.views.render(w, r, http.StatusUnprocessableEntity, pageForm, editIncidentForm(nil, id, values, errs))
		return
	}
	if patch.IsEmpty() {
		http.Redirect(w, r, incidentURL(id), http.StatusSeeOther)
		return
	}

	if _, err := h.store.Update(r.Context(), id, patch); err != nil {
		flash := &model.Notice{Level: model.NoticeError, Message: usecase.NoticeUpdateFailed, Detail: err.Error()}
		h.views.render(w, r, failureStatus(err), pageForm, editIncidentForm(flash, id, values, nil))
		return
	}

	setFlash(w, r, model.Notice{Level: model.NoticeSuccess, Message: usecase.NoticeUpdated})
	http.Redirect(w, r, incidentURL(id), http.StatusSeeOther)
}

func (h *handler) deleteIncident(w http.ResponseWriter, r *http.Request) {
	id := incidentIDParam(r)

	if err := h.store.Remove(r.Context(), id); err != nil {
		setFlash(w, r, model.Notice{Level: model.NoticeError, Message: usecase.NoticeDeleteFailed, Detail: err.Error()})
		http.Redirect(w, r, incidentURL(id), http.StatusSeeOther)
		return
	}

	setFlash(w, r, model.Notice{Level: model.NoticeSuccess, Message: usecase.NoticeDeleted})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// failureStatus maps a store error to the status of the page reporting it
func failureStatus(err error) int {
	switch backend.KindOf(err) {
	case backend.KindNotFound:
		return http.StatusNotFound
	case backend.KindInvalidRequest:
		return http.StatusUnprocessableEntity
	case backend.KindNetworkUnavailable:
		return http.StatusServiceUnavailable
	case backend.KindClientError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
