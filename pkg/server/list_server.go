package server

import (
	"embed"
	"fmt"
	"html/template"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/matst80/slask-list/pkg/common"
	"github.com/matst80/slask-list/pkg/common/jsoncompat"
	"github.com/matst80/slask-list/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// BrokenCategory makes the list endpoint fail, for exercising failure handling in clients.
const BrokenCategory = "broken"

var limits = []int{10, 20, 50}

// ListServer renders the item list as a full page or, for XMLHttpRequest
// requests, as the fragment that goes inside the list container.
type ListServer struct {
	Catalog *Catalog
	Names   types.QueryParameterNames
	tmpl    *template.Template
}

func NewListServer(catalog *Catalog, names types.QueryParameterNames) (*ListServer, error) {
	if names.Page == "" || names.Sort == "" || names.Limit == "" {
		return nil, types.NewValidationError("query parameter names must not be empty: %+v", names)
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse list templates: %w", err)
	}
	return &ListServer{Catalog: catalog, Names: names, tmpl: tmpl}, nil
}

// DefaultNames are the parameter names the server uses unless configured otherwise.
func DefaultNames() types.QueryParameterNames {
	return types.QueryParameterNames{Page: "page", Sort: "sort", Limit: "limit"}
}

func (s *ListServer) Handle(mux *http.ServeMux) {
	mux.HandleFunc("/items", common.Handler(s.Items))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/items", http.StatusFound)
	})
}

func (s *ListServer) Items(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET, OPTIONS")
		return common.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
	req, err := ListRequestFromQuery(r.URL.Query(), s.Names)
	if err != nil {
		return common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if req.Category == BrokenCategory {
		return common.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": fmt.Sprintf("category %q is not available", req.Category),
		})
	}

	list := s.listView(req)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Vary", "X-Requested-With")
	if common.IsFragmentRequest(r) {
		return s.tmpl.ExecuteTemplate(w, "list", list)
	}
	names, err := jsoncompat.Marshal(map[string]string{
		"page":  s.Names.Page,
		"sort":  s.Names.Sort,
		"limit": s.Names.Limit,
	})
	if err != nil {
		return err
	}
	page := pageView{
		NamesJSON:  string(names),
		Query:      req.Query,
		Categories: []option{{Value: "", Label: "All", Selected: req.Category == ""}},
		List:       list,
	}
	for _, c := range s.Catalog.Categories {
		page.Categories = append(page.Categories, option{Value: c, Label: c, Selected: c == req.Category})
	}
	return s.tmpl.ExecuteTemplate(w, "page.html", page)
}

type field struct {
	Name  string
	Value string
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type link struct {
	Label   string
	Href    string
	Current bool
}

type listView struct {
	Items       []Item
	Total       int
	Page        int
	Pages       int
	LimitName   string
	SortName    string
	LimitHidden []field
	SortHidden  []field
	Limits      []option
	Sorts       []option
	PageLinks   []link
	SortLinks   []link
}

type pageView struct {
	NamesJSON  string
	Query      string
	Categories []option
	List       listView
}

func (s *ListServer) listView(req *ListRequest) listView {
	items, total := s.Catalog.Find(req)
	v := listView{
		Items:     items,
		Total:     total,
		Page:      req.Page,
		Pages:     Pages(total, req.Limit),
		LimitName: s.Names.Limit,
		SortName:  s.Names.Sort,
	}
	current := req.Values(s.Names)
	current.Del(s.Names.Page)

	v.LimitHidden = hidden(current, s.Names.Limit)
	v.SortHidden = hidden(current, s.Names.Sort)
	for _, l := range limits {
		v.Limits = append(v.Limits, option{Value: strconv.Itoa(l), Label: strconv.Itoa(l), Selected: l == req.Limit})
	}
	for _, sort := range []string{"name", "price"} {
		v.Sorts = append(v.Sorts, option{Value: sort, Label: sort, Selected: sort == req.Sort})
		q := maps.Clone(current)
		q.Set(s.Names.Sort, sort)
		v.SortLinks = append(v.SortLinks, link{Label: sort, Href: "/items?" + q.Encode(), Current: sort == req.Sort})
	}
	for p := 1; p <= v.Pages; p++ {
		q := maps.Clone(current)
		q.Set(s.Names.Page, strconv.Itoa(p))
		v.PageLinks = append(v.PageLinks, link{Label: strconv.Itoa(p), Href: "/items?" + q.Encode(), Current: p == req.Page})
	}
	return v
}

// hidden returns the fields a list form must carry to keep the current state, except skip.
func hidden(values url.Values, skip string) []field {
	var fields []field
	for _, name := range slices.Sorted(maps.Keys(values)) {
		if name == skip {
			continue
		}
		for _, value := range values[name] {
			fields = append(fields, field{Name: name, Value: value})
		}
	}
	return fields
}
