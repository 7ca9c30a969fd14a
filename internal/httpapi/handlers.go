package httpapi

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"infinicanvas/internal/canvas"
	"infinicanvas/internal/domain"
	mcpserver "infinicanvas/internal/mcp"
	"infinicanvas/internal/service"
	"infinicanvas/internal/viewport"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, canvas.ErrPageNotFound),
		errors.Is(err, sql.ErrNoRows),
		errors.Is(err, mcpserver.ErrUnknownAction):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRowMaxWidth),
		errors.Is(err, service.ErrInvalidCount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeError(w, status, err)
}

func (a *api) session(w http.ResponseWriter, r *http.Request) (*canvas.Session, bool) {
	sess, err := a.Registry.Get(chi.URLParam(r, "pageID"))
	if err != nil {
		a.fail(w, r, err)
		return nil, false
	}
	return sess, true
}

// ── Pages ──────────────────────────────────────────────────

type pageInput struct {
	Name string `json:"name"`
}

func (a *api) listPages(w http.ResponseWriter, r *http.Request) {
	pages, err := a.Pages.ListPages()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if pages == nil {
		pages = []domain.Page{}
	}
	writeJSON(w, http.StatusOK, pages)
}

func (a *api) createPage(w http.ResponseWriter, r *http.Request) {
	var in pageInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	page, err := a.Pages.CreatePage(in.Name)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

func (a *api) renamePage(w http.ResponseWriter, r *http.Request) {
	var in pageInput
	if err := decodeBody(r, &in); err != nil || in.Name == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("name is required"))
		return
	}
	if err := a.Pages.RenamePage(chi.URLParam(r, "pageID"), in.Name); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) deletePage(w http.ResponseWriter, r *http.Request) {
	if err := a.Pages.DeletePage(chi.URLParam(r, "pageID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// activatePage makes the page the default target for MCP tools.
func (a *api) activatePage(w http.ResponseWriter, r *http.Request) {
	if _, err := a.Registry.SetActive(chi.URLParam(r, "pageID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) pageState(w http.ResponseWriter, r *http.Request) {
	state, err := a.Pages.GetPageState(chi.URLParam(r, "pageID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (a *api) listMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := a.Pages.ListMessages(chi.URLParam(r, "pageID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// ── Generation & layout ────────────────────────────────────

type generateInput struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio"`
	Quality     string `json:"quality"`
	Count       int    `json:"count"`
}

func (in generateInput) settings() domain.GenerationSettings {
	return domain.GenerationSettings{
		AspectRatio: in.AspectRatio,
		Quality:     in.Quality,
		Count:       max(in.Count, 1),
	}
}

func (a *api) generate(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var in generateInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	batch, err := a.Generation.Generate(sess, in.Prompt, in.settings())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, batch)
}

func (a *api) preview(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var in generateInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	preview, err := a.Generation.Preview(sess, in.settings())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (a *api) arrange(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	boards, err := a.Generation.Arrange(sess)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if boards == nil {
		boards = []domain.Board{}
	}
	writeJSON(w, http.StatusOK, boards)
}

type selectionInput struct {
	BoardIDs []string `json:"boardIds"`
}

func (a *api) setSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var in selectionInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess.Select(in.BoardIDs...)
	writeJSON(w, http.StatusOK, selectionInput{BoardIDs: sess.Selection()})
}

func (a *api) frameBoard(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	d, err := a.Generation.FrameBoard(sess, chi.URLParam(r, "boardID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *api) deleteBoard(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := sess.DeleteBoard(chi.URLParam(r, "boardID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Viewport ───────────────────────────────────────────────

type viewportView struct {
	Camera   viewport.Camera   `json:"camera"`
	Screen   [2]float64        `json:"screen"`
	SafeArea viewport.SafeArea `json:"safeArea"`
	MinZoom  float64           `json:"minZoom"`
}

func describeViewport(sess *canvas.Session) viewportView {
	screen := sess.Viewport().Screen
	return viewportView{
		Camera:   sess.Camera(),
		Screen:   [2]float64{screen.Width(), screen.Height()},
		SafeArea: sess.SafeArea(),
		MinZoom:  sess.MinZoom(),
	}
}

// viewportInput reports client state; every field is optional.
type viewportInput struct {
	Width     *float64         `json:"width"`
	Height    *float64         `json:"height"`
	PanelOpen *bool            `json:"panelOpen"`
	Camera    *viewport.Camera `json:"camera"`
}

func (a *api) getViewport(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, describeViewport(sess))
}

func (a *api) setViewport(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var in viewportInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if in.Width != nil || in.Height != nil {
		screen := sess.Viewport().Screen
		width, height := screen.Width(), screen.Height()
		if in.Width != nil {
			width = *in.Width
		}
		if in.Height != nil {
			height = *in.Height
		}
		if err := sess.SetScreen(width, height); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if in.PanelOpen != nil {
		sess.SetPanelOpen(*in.PanelOpen)
	}
	if in.Width != nil || in.Height != nil || in.PanelOpen != nil {
		a.rememberScreen(sess)
	}
	// A camera from the client is a user pan or zoom; it wins over any
	// programmatic move in flight.
	if in.Camera != nil {
		if err := sess.Jump(*in.Camera); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, describeViewport(sess))
}

// rememberScreen persists the reported screen and makes it the default for
// pages opened later.
func (a *api) rememberScreen(sess *canvas.Session) {
	screen := sess.Viewport().Screen
	sc := service.Screen{Width: screen.Width(), Height: screen.Height(), PanelOpen: sess.PanelOpen()}
	a.Registry.SetDefaultScreen(sc.Width, sc.Height, sc.PanelOpen)
	if a.Screen == nil {
		return
	}
	if err := a.Screen.Save(sc); err != nil {
		a.logger.Warn("save screen", "err", err)
	}
}

// ── Settings ───────────────────────────────────────────────

type rowWidthView struct {
	Width      float64 `json:"width"`
	Overridden bool    `json:"overridden"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
}

func (a *api) rowWidth() rowWidthView {
	width, overridden := a.Layout.RowMaxWidth()
	return rowWidthView{
		Width:      width,
		Overridden: overridden,
		Min:        service.MinRowMaxWidth,
		Max:        service.MaxRowMaxWidth,
	}
}

func (a *api) getRowMaxWidth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.rowWidth())
}

func (a *api) setRowMaxWidth(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Width float64 `json:"width"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.Layout.SetRowMaxWidth(in.Width); err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.rowWidth())
}

func (a *api) resetRowMaxWidth(w http.ResponseWriter, r *http.Request) {
	if err := a.Layout.ResetRowMaxWidth(); err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.rowWidth())
}

// ── Approvals ──────────────────────────────────────────────

func (a *api) listApprovals(w http.ResponseWriter, r *http.Request) {
	if a.Approvals == nil {
		writeJSON(w, http.StatusOK, []mcpserver.PendingAction{})
		return
	}
	pending, err := a.Approvals.Pending()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

func (a *api) approve(w http.ResponseWriter, r *http.Request) {
	a.resolveApproval(w, r, true)
}

func (a *api) reject(w http.ResponseWriter, r *http.Request) {
	a.resolveApproval(w, r, false)
}

func (a *api) resolveApproval(w http.ResponseWriter, r *http.Request, approve bool) {
	if a.Approvals == nil {
		writeError(w, http.StatusNotFound, mcpserver.ErrUnknownAction)
		return
	}
	id := chi.URLParam(r, "approvalID")
	var err error
	if approve {
		err = a.Approvals.Approve(id)
	} else {
		err = a.Approvals.Reject(id)
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
