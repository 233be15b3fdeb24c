package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"

	"mandalart/internal/grid"
	"mandalart/internal/model"
	"mandalart/internal/mutate"
	"mandalart/internal/perm"
	"mandalart/internal/render"
	"mandalart/internal/store"
)

type pageVM struct {
	Title   string
	BaseURL string
	Admin   bool
	Meta    *shareMeta
}

// shareMeta feeds the OGP and Twitter card tags.
type shareMeta struct {
	Title       string
	Description string
	URL         string
	Image       string
}

func (s *Server) page(r *http.Request, title string) pageVM {
	return pageVM{Title: title, BaseURL: s.cfg.BaseURL, Admin: s.isAdmin(r)}
}

type homeVM struct {
	pageVM
	Total int
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	total, err := s.cfg.Store.CountMandalarts(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeHTMLTemplate(w, http.StatusOK, "home.html", homeVM{pageVM: s.page(r, "Mandalart"), Total: total})
}

// editCell is one input of the 81-cell editor form.
type editCell struct {
	grid.Cell
	Name      string
	Signal    string
	MaxLen    int
	ReadOnly  bool
	Class     string
	Autofocus bool
}

type createVM struct {
	pageVM
	Cells       []editCell
	Signals     string
	Errors      []grid.ValidationError
	IsPublic    bool
	DisplayName string
	Tags        string
}

func cellInputName(index int) string { return "c" + strconv.Itoa(index) }

func themeSignal(t int) string { return "t" + strconv.Itoa(t) }

func (s *Server) createView(r *http.Request, g grid.Grid, isPublic bool, name, tags string, errs []grid.ValidationError) createVM {
	cells := g.Cells()
	out := make([]editCell, 0, len(cells))
	signals := make(map[string]string, grid.ThemeCount)
	for _, c := range cells {
		ec := editCell{Cell: c, Name: cellInputName(c.Index), Class: cellClass(c), MaxLen: grid.MaxDetailRunes}
		switch c.Address.Kind {
		case grid.KindCenter:
			ec.MaxLen = grid.MaxTitleRunes
			ec.Autofocus = true
		case grid.KindTheme:
			ec.MaxLen = grid.MaxTitleRunes
			ec.Signal = themeSignal(c.Address.Theme)
			// The block header mirrors the copy typed next to the center goal.
			ec.ReadOnly = !c.Address.InCenterBlock
		}
		out = append(out, ec)
	}
	for t, th := range g.Themes {
		signals[themeSignal(t)] = th.Title
	}
	sig, _ := json.Marshal(signals)
	return createVM{
		pageVM:      s.page(r, "New Mandalart"),
		Cells:       out,
		Signals:     string(sig),
		Errors:      errs,
		IsPublic:    isPublic,
		DisplayName: name,
		Tags:        tags,
	}
}

func (s *Server) handleCreateGet(w http.ResponseWriter, r *http.Request) {
	s.writeHTMLTemplate(w, http.StatusOK, "create.html", s.createView(r, grid.Grid{}, true, "", "", nil))
}

// parseGridForm reads the c<index> inputs. Theme titles prefer the copy next
// to the center goal and fall back to the block header.
func parseGridForm(form url.Values) grid.Grid {
	var g grid.Grid
	for i := 0; i < grid.CellCount; i++ {
		a := grid.MustClassify(i)
		v := grid.CleanText(form.Get(cellInputName(i)))
		if a.Kind == grid.KindTheme && !a.InCenterBlock {
			if cur, _ := g.Get(a); cur != "" {
				continue
			}
		}
		if a.Kind == grid.KindTheme && a.InCenterBlock && v == "" {
			continue
		}
		_ = g.Set(a, v)
	}
	return g
}

func parseTags(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	g := parseGridForm(r.Form)
	isPublic := r.Form.Get("is_public") != ""
	name := strings.TrimSpace(r.Form.Get("user_display_name"))
	tags := r.Form.Get("tags")

	if errs := grid.Validate(g); len(errs) > 0 {
		s.writeHTMLTemplate(w, http.StatusBadRequest, "create.html", s.createView(r, g, isPublic, name, tags, errs))
		return
	}
	userID, err := s.ensureUser(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	m, err := s.cfg.Service.CreateMandalart(r.Context(), mutate.CreateInput{
		UserID:      userID,
		Grid:        g,
		IsPublic:    isPublic,
		DisplayName: name,
		Tags:        parseTags(tags),
	})
	if err != nil {
		var ve grid.ValidationErrors
		if errors.As(err, &ve) {
			s.writeHTMLTemplate(w, http.StatusBadRequest, "create.html", s.createView(r, g, isPublic, name, tags, ve))
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/view/"+m.ID, http.StatusSeeOther)
}

type listCardVM struct {
	model.MandalartSummary
	Thumb string
}

type listVM struct {
	pageVM
	Cards      []listCardVM
	NextOffset int
	HasMore    bool
}

// publicPage returns one page of public mandalarts and whether more follow.
func (s *Server) publicPage(r *http.Request, offset int) ([]listCardVM, bool, error) {
	limit := s.cfg.PageSize
	ms, err := s.cfg.Store.ListPublic(r.Context(), limit+1, offset)
	if err != nil {
		return nil, false, err
	}
	more := len(ms) > limit
	if more {
		ms = ms[:limit]
	}
	cards := make([]listCardVM, 0, len(ms))
	for _, m := range ms {
		cards = append(cards, listCardVM{MandalartSummary: m.Summary(), Thumb: "/m/" + m.ID + "/thumb.png"})
	}
	return cards, more, nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	cards, more, err := s.publicPage(r, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeHTMLTemplate(w, http.StatusOK, "list.html", listVM{
		pageVM:     s.page(r, render.SiteTitle),
		Cards:      cards,
		NextOffset: len(cards),
		HasMore:    more,
	})
}

// handleListMore appends the next page to the list over SSE.
func (s *Server) handleListMore(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	cards, more, err := s.publicPage(r, offset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	vm := listVM{Cards: cards, NextOffset: offset + len(cards), HasMore: more}
	items, err := s.renderTemplate("list_items", vm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	button, err := s.renderTemplate("load_more", vm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	if strings.TrimSpace(items) != "" {
		_ = sse.PatchElements(items, datastar.WithSelector("#mandalart-list"), datastar.WithMode(datastar.ElementPatchModeAppend))
	}
	_ = sse.PatchElements(button, datastar.WithSelector("#load-more"), datastar.WithMode(datastar.ElementPatchModeOuter))
}

type viewVM struct {
	pageVM
	Mandalart model.Mandalart
	Cells     [grid.CellCount]grid.Cell
	Outline   template.HTML
	Requested bool
	Owner     bool
}

// loadVisible fetches id and hides private mandalarts from everyone but
// their owner and admins.
func (s *Server) loadVisible(r *http.Request, id string) (model.Mandalart, error) {
	m, err := s.cfg.Service.GetMandalart(r.Context(), id)
	if err != nil {
		return model.Mandalart{}, err
	}
	if !perm.CanViewMandalart(s.userForRequest(r), &m, s.isAdmin(r)) {
		return model.Mandalart{}, mutate.NotFoundError{Kind: "mandalart", ID: id}
	}
	return m, nil
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("id"))
	}
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	m, err := s.loadVisible(r, id)
	if err != nil {
		s.writePageError(w, err)
		return
	}
	if viewed, err := s.cfg.Store.RecordView(r.Context(), id); err != nil {
		s.log.Warn("record view failed", zap.String("mandalart", id), zap.Error(err))
	} else {
		m.ViewCount = viewed.ViewCount
	}

	vm := viewVM{
		pageVM:    s.page(r, m.Center),
		Mandalart: m,
		Cells:     m.Cells(),
		Outline:   outlineHTML(m.Grid),
		Requested: r.URL.Query().Get("requested") != "",
		Owner:     perm.CanEditMandalart(s.userForRequest(r), &m),
	}
	image := m.OGImageURL
	if image == "" {
		image = "/m/" + m.ID + "/thumb.png"
	}
	vm.Meta = &shareMeta{
		Title:       m.Center + " | " + render.SiteTitle,
		Description: shareDescription(m),
		URL:         s.cfg.BaseURL + "/view/" + m.ID,
		Image:       absoluteURL(s.cfg.BaseURL, image),
	}
	s.writeHTMLTemplate(w, http.StatusOK, "view.html", vm)
}

func shareDescription(m model.Mandalart) string {
	var titles []string
	for _, th := range m.Themes {
		if t := strings.TrimSpace(th.Title); t != "" {
			titles = append(titles, t)
		}
	}
	if len(titles) == 0 {
		return "A Mandalart by " + m.DisplayName()
	}
	return "A Mandalart by " + m.DisplayName() + ": " + strings.Join(titles, " / ")
}

// writePageError answers HTML routes; a missing mandalart is a plain 404.
func (s *Server) writePageError(w http.ResponseWriter, err error) {
	var nf mutate.NotFoundError
	if errors.As(err, &nf) {
		http.Error(w, "Mandalart not found", http.StatusNotFound)
		return
	}
	s.log.Error("request failed", zap.Error(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	s.servePNG(w, r, render.FullOptions, true)
}

func (s *Server) handleThumb(w http.ResponseWriter, r *http.Request) {
	s.servePNG(w, r, render.ThumbnailOptions, false)
}

func (s *Server) servePNG(w http.ResponseWriter, r *http.Request, o render.Options, download bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	m, err := s.loadVisible(r, id)
	if err != nil {
		s.writePageError(w, err)
		return
	}
	b, err := render.GridPNG(m.Grid, o)
	if err != nil {
		s.writePageError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if download {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "mandalart-"+m.ID+".png"))
	} else {
		w.Header().Set("Cache-Control", "public, max-age=300")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_, err := s.cfg.Service.RequestDelete(r.Context(), id, r.Form.Get("reason"))
	switch {
	case errors.Is(err, mutate.ErrReasonRequired):
		http.Error(w, "Please enter a reason for the delete request", http.StatusBadRequest)
		return
	case err != nil:
		s.writePageError(w, err)
		return
	}
	http.Redirect(w, r, "/view/"+id+"?requested=1", http.StatusSeeOther)
}

func (s *Server) handleOGImage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	f, err := s.cfg.Store.OpenObject(store.OGImagesBucket, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, name, st.ModTime(), f)
}
