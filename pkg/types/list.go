package types

// QueryParameterNames maps the reserved list roles to the query parameter names
// used by the backend.
type QueryParameterNames struct {
	Page  string `json:"page" yaml:"page"`
	Sort  string `json:"sort" yaml:"sort"`
	Limit string `json:"limit" yaml:"limit"`
}

func (n QueryParameterNames) All() []string {
	return []string{n.Page, n.Sort, n.Limit}
}

// HistoryEntry is a session history record pairing a URL with the fragment shown for it.
type HistoryEntry struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}
