package form

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/schema"
	"github.com/matst80/slask-list/pkg/dom"
	"github.com/matst80/slask-list/pkg/types"
)

const fieldSelector = "input[name], select[name], textarea[name]"

var encoder = schema.NewEncoder()

// Form wraps a form element of a document.
type Form struct {
	doc *dom.Document
	sel *goquery.Selection
}

// New resolves target to a form element. It fails when nothing matches.
func New(doc *dom.Document, target dom.Target) (*Form, error) {
	if target == nil {
		return nil, types.NewValidationError("missing form target")
	}
	sel := target.Resolve(doc)
	if sel == nil || sel.Length() == 0 {
		if dom.IsSelector(target) {
			return nil, types.NewValidationError("form with selector %q does not exist", target.String())
		}
		return nil, types.NewValidationError("invalid form target %s", target.String())
	}
	sel = sel.First()
	if goquery.NodeName(sel) != "form" {
		inner := sel.Find("form").First()
		if inner.Length() == 0 {
			return nil, types.NewValidationError("%s is not a form element", target.String())
		}
		sel = inner
	}
	return &Form{doc: doc, sel: sel}, nil
}

func (f *Form) Selection() *goquery.Selection {
	return f.sel
}

func (f *Form) Document() *dom.Document {
	return f.doc
}

// Name returns the form name attribute, falling back to its id.
func (f *Form) Name() string {
	if name, ok := f.sel.Attr("name"); ok && name != "" {
		return name
	}
	return f.sel.AttrOr("id", "")
}

func (f *Form) Action() string {
	return f.sel.AttrOr("action", "")
}

func (f *Form) Method() string {
	m := strings.ToUpper(f.sel.AttrOr("method", "GET"))
	if m == "" {
		return "GET"
	}
	return m
}

func (f *Form) fields(name string) *goquery.Selection {
	if name == "" {
		return f.sel.Find(fieldSelector)
	}
	return f.sel.Find(fmt.Sprintf(`input[name=%q], select[name=%q], textarea[name=%q]`, name, name, name))
}

// Names returns the distinct field names in document order.
func (f *Form) Names() []string {
	var names []string
	f.fields("").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("name", "")
		if name != "" && !slices.Contains(names, name) {
			names = append(names, name)
		}
	})
	return names
}

// Values serializes the successful controls of the form.
func (f *Form) Values() url.Values {
	values := url.Values{}
	f.fields("").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("name", "")
		if _, disabled := s.Attr("disabled"); disabled || name == "" {
			return
		}
		for _, v := range fieldValues(s) {
			values.Add(name, v)
		}
	})
	return values
}

// Get returns the serialized values of one field.
func (f *Form) Get(name string) []string {
	return f.Values()[name]
}

func (f *Form) Value(name string) string {
	return f.Values().Get(name)
}

func fieldValues(s *goquery.Selection) []string {
	switch goquery.NodeName(s) {
	case "select":
		options := s.Find("option")
		selected := options.Filter("[selected]")
		_, multiple := s.Attr("multiple")
		if selected.Length() == 0 {
			if multiple || options.Length() == 0 {
				return nil
			}
			selected = options.First()
		}
		if !multiple {
			selected = selected.Last()
		}
		var out []string
		selected.Each(func(_ int, o *goquery.Selection) {
			out = append(out, optionValue(o))
		})
		return out
	case "textarea":
		return []string{s.Text()}
	}
	switch strings.ToLower(s.AttrOr("type", "text")) {
	case "submit", "button", "reset", "image", "file":
		return nil
	case "checkbox", "radio":
		if _, checked := s.Attr("checked"); !checked {
			return nil
		}
		return []string{s.AttrOr("value", "on")}
	}
	return []string{s.AttrOr("value", "")}
}

func optionValue(o *goquery.Selection) string {
	if v, ok := o.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(o.Text())
}

// SetValue writes values to a field. Checkboxes, radios and options are
// checked or selected when their value is listed; without values the field is cleared.
func (f *Form) SetValue(name string, values ...string) {
	first := ""
	if len(values) > 0 {
		first = values[0]
	}
	f.fields(name).Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "select":
			_, multiple := s.Attr("multiple")
			found := false
			s.Find("option").Each(func(_ int, o *goquery.Selection) {
				v := optionValue(o)
				if slices.Contains(values, v) && (multiple || !found) {
					o.SetAttr("selected", "selected")
					found = true
				} else {
					o.RemoveAttr("selected")
				}
			})
			return
		case "textarea":
			s.SetText(first)
			return
		}
		switch strings.ToLower(s.AttrOr("type", "text")) {
		case "submit", "button", "reset", "image", "file":
		case "checkbox", "radio":
			if slices.Contains(values, s.AttrOr("value", "on")) {
				s.SetAttr("checked", "checked")
			} else {
				s.RemoveAttr("checked")
			}
		default:
			s.SetAttr("value", first)
		}
	})
}

// SetData writes every field present in data.
func (f *Form) SetData(data url.Values) {
	for name, values := range data {
		f.SetValue(name, values...)
	}
}

// ResetData clears every field except those listed in keep.
func (f *Form) ResetData(keep []string) {
	for _, name := range f.Names() {
		if slices.Contains(keep, name) {
			continue
		}
		f.SetValue(name)
	}
}

// RemoveElement removes the fields named name from the form.
func (f *Form) RemoveElement(name string) {
	if name == "" {
		return
	}
	f.fields(name).Remove()
}

// RequestURL builds the URL the form would request, resolved against base.
// Form values replace same named entries of query; empty values are skipped.
func (f *Form) RequestURL(base *url.URL, query url.Values) (string, error) {
	action, err := url.Parse(f.Action())
	if err != nil {
		return "", fmt.Errorf("invalid form action %q: %w", f.Action(), err)
	}
	target := action
	if base != nil {
		target = base.ResolveReference(action)
	}
	merged := url.Values{}
	for k, v := range query {
		merged[k] = append([]string(nil), v...)
	}
	values := f.Values()
	for _, name := range f.Names() {
		merged.Del(name)
		for _, v := range values[name] {
			if v != "" {
				merged.Add(name, v)
			}
		}
	}
	u := *target
	u.RawQuery = merged.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// AddElementListener binds fn to events of descendants matching selector.
// The default action of the event is prevented.
func (f *Form) AddElementListener(event, selector, owner string, fn func(e *dom.Event)) *Form {
	f.doc.On(f.sel, event, selector, owner, func(e *dom.Event) {
		e.PreventDefault()
		fn(e)
	})
	return f
}

// AddSubmitListener binds fn to the form submission and suppresses the native submission.
func (f *Form) AddSubmitListener(owner string, fn func(e *dom.Event)) *Form {
	f.doc.On(f.sel, "submit", "", owner, func(e *dom.Event) {
		e.PreventDefault()
		fn(e)
	})
	return f
}

// EncodeData converts a struct with schema tags to form data.
func EncodeData(v any) (url.Values, error) {
	data := map[string][]string{}
	if err := encoder.Encode(v, data); err != nil {
		return nil, err
	}
	return url.Values(data), nil
}
