package server

import (
	"net/url"
	"strconv"

	"github.com/gorilla/schema"
	"github.com/matst80/slask-list/pkg/types"
)

const maxLimit = 100

// ListRequest is the decoded query of a list page or fragment request.
type ListRequest struct {
	Query    string `schema:"q"`
	Category string `schema:"category"`
	Sort     string `schema:"sort,default:name"`
	Page     int    `schema:"page,default:1"`
	Limit    int    `schema:"limit,default:10"`
}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// ListRequestFromQuery decodes query using the configured parameter names for
// page, sort and limit.
func ListRequestFromQuery(query url.Values, names types.QueryParameterNames) (*ListRequest, error) {
	canonical := url.Values{}
	for k, v := range query {
		switch k {
		case names.Page:
			canonical["page"] = v
		case names.Sort:
			canonical["sort"] = v
		case names.Limit:
			canonical["limit"] = v
		case "page", "sort", "limit":
		default:
			canonical[k] = v
		}
	}
	req := &ListRequest{}
	if err := decoder.Decode(req, canonical); err != nil {
		return nil, err
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 10
	}
	req.Limit = min(req.Limit, maxLimit)
	if req.Sort != "price" {
		req.Sort = "name"
	}
	return req, nil
}

// Values encodes the request with the configured parameter names. Defaults are omitted.
func (r *ListRequest) Values(names types.QueryParameterNames) url.Values {
	v := url.Values{}
	if r.Query != "" {
		v.Set("q", r.Query)
	}
	if r.Category != "" {
		v.Set("category", r.Category)
	}
	if r.Sort != "name" {
		v.Set(names.Sort, r.Sort)
	}
	if r.Page > 1 {
		v.Set(names.Page, strconv.Itoa(r.Page))
	}
	if r.Limit != 10 {
		v.Set(names.Limit, strconv.Itoa(r.Limit))
	}
	return v
}
