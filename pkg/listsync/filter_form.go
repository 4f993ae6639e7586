package listsync

import (
	"fmt"
	"log"
	"net/url"
	"slices"
	"strings"

	"github.com/matst80/slask-list/pkg/dom"
	"github.com/matst80/slask-list/pkg/events"
	"github.com/matst80/slask-list/pkg/form"
	"github.com/matst80/slask-list/pkg/params"
	"github.com/matst80/slask-list/pkg/types"
)

// ResetSortingInput is the embedded input overriding FilterFormConfig.ResetSorting,
// formatted with the form name. Its value is "1" or "0".
const ResetSortingInput = "list__filter-form__reset-sorting[%s]"

const filterOwner = "filter-form"

// FilterForm turns a filter form into list update requests. Pagination, sort
// and limit fields never take part in filtering: they are removed from the form
// and the page parameter is dropped from every request.
type FilterForm struct {
	page         Page
	target       dom.Target
	form         *form.Form
	names        types.QueryParameterNames
	config       FilterFormConfig
	resetSorting bool
	// servedQuery is the query of the last URL shown in the list. When nil the
	// address bar query is used; it is only set when history tracking is off.
	servedQuery *string
}

func NewFilterForm(page Page, registry *params.Registry, target dom.Target, config FilterFormConfig) (*FilterForm, error) {
	if target == nil {
		return nil, types.NewValidationError(`missing "formSelector" argument`)
	}
	f, err := form.New(page.Document(), target)
	if err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, params.ErrNamesNotSet
	}
	names, err := registry.Get()
	if err != nil {
		return nil, err
	}
	ff := &FilterForm{
		page:         page,
		target:       target,
		form:         f,
		names:        names,
		config:       config,
		resetSorting: config.ResetSorting,
	}
	if v, ok := page.Document().InputValue(fmt.Sprintf(ResetSortingInput, f.Name())); ok {
		ff.resetSorting = v == "1"
	}
	ff.Rebind()
	return ff, nil
}

func (f *FilterForm) Form() *form.Form {
	return f.form
}

func (f *FilterForm) ResetsSorting() bool {
	return f.resetSorting
}

// Rebind strips the reserved fields and binds the form interactions again.
// It re-resolves the form when the previous element left the document.
func (f *FilterForm) Rebind() {
	doc := f.page.Document()
	if !doc.Contains(f.form.Selection()) {
		target := f.target
		if !dom.IsSelector(target) {
			target = dom.Selector(fmt.Sprintf("form[name=%q]", f.form.Name()))
		}
		nf, err := form.New(doc, target)
		if err != nil {
			log.Printf("filter form %s is no longer in the document: %v", f.target, err)
			return
		}
		f.form = nf
	}
	for _, name := range f.names.All() {
		f.form.RemoveElement(name)
	}
	f.bind()
}

func (f *FilterForm) bind() {
	filter := func(e *dom.Event) {
		if err := f.Filter(); err != nil {
			log.Printf("failed to filter list: %v", err)
		}
	}
	f.form.
		AddElementListener("change", "select:not([multiple])", filterOwner, filter).
		AddElementListener("change", `input[type="radio"]`, filterOwner, filter).
		AddSubmitListener(filterOwner, filter)
	if f.config.ResetButtonSelector != "" {
		f.form.AddElementListener("click", f.config.ResetButtonSelector, filterOwner, func(e *dom.Event) {
			if err := f.Reset(); err != nil {
				log.Printf("failed to reset filter form: %v", err)
			}
		})
	}
	if f.config.FilterButtonSelector != "" {
		f.form.AddElementListener("click", f.config.FilterButtonSelector, filterOwner, filter)
	}
}

// SetCurrentURL records the URL whose list is displayed.
func (f *FilterForm) SetCurrentURL(rawURL string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		log.Printf("ignoring invalid served url %q: %v", rawURL, err)
		return
	}
	q := u.RawQuery
	f.servedQuery = &q
}

// CurrentQuery returns the recorded served query, if any.
func (f *FilterForm) CurrentQuery() (string, bool) {
	if f.servedQuery == nil {
		return "", false
	}
	return *f.servedQuery, true
}

// RequestURL builds the list URL for the current form values.
func (f *FilterForm) RequestURL() (string, error) {
	base := f.page.Location().RawQuery
	if f.servedQuery != nil {
		base = *f.servedQuery
	}
	query, err := url.ParseQuery(strings.TrimPrefix(base, "?"))
	if err != nil {
		log.Printf("ignoring malformed parts of query %q: %v", base, err)
	}
	query.Del(f.form.Name())
	query.Del(f.names.Page)
	if f.resetSorting {
		query.Del(f.names.Sort)
	}
	return f.form.RequestURL(f.page.Location(), query)
}

// Filter publishes a list update for the current form values.
func (f *FilterForm) Filter() error {
	target, err := f.RequestURL()
	if err != nil {
		return err
	}
	f.page.Bus().Publish(events.ListUpdate, target)
	return nil
}

// Reset restores the configured reset data, leaving NoResetFields untouched.
func (f *FilterForm) Reset() error {
	f.form.ResetData(f.config.NoResetFields)
	data := url.Values{}
	for name, values := range f.config.ResetData {
		if slices.Contains(f.config.NoResetFields, name) {
			continue
		}
		data[name] = values
	}
	f.form.SetData(data)
	if f.config.FilterAfterReset {
		return f.Filter()
	}
	return nil
}

// Submit is the native form submission, which a filter form never allows.
func (f *FilterForm) Submit() error {
	return types.NewValidationError(`calling the "submit" method of a filter form is not allowed`)
}
