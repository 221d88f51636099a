package patient

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// sortColumns is the whitelist of sortable columns. Input never reaches the
// query verbatim; it is resolved through this map first.
var sortColumns = map[string]string{
	"mr_number":       "mr_number",
	"name":            "name",
	"scheduled_at":    "scheduled_at",
	"approval_status": "approval_status",
	"created_at":      "created_at",
}

const defaultSortColumn = "created_at"

// ListParams describes one page of the patient listing. Build it with
// ParseListParams or call Normalize before use.
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	Status    string
	SortBy    string
	SortOrder string
}

// ParseListParams reads the listing query parameters, applying the
// documented fallbacks: non-numeric or non-positive page/limit become 1/20.
func ParseListParams(q url.Values) ListParams {
	p := ListParams{
		Page:      parsePositive(q.Get("page"), DefaultPage),
		Limit:     parsePositive(q.Get("limit"), DefaultLimit),
		Search:    strings.TrimSpace(q.Get("search")),
		Status:    q.Get("filterStatus"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	return p.Normalize()
}

// Normalize clamps paging values and drops a status filter that is not one
// of the two enumerated values.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Status != StatusPending && p.Status != StatusApproved {
		p.Status = ""
	}
	return p
}

// SortColumn resolves the requested sort column through the whitelist,
// falling back to the creation timestamp.
func (p ListParams) SortColumn() string {
	if col, ok := sortColumns[p.SortBy]; ok {
		return col
	}
	return defaultSortColumn
}

// SortDirection is ASC only when requested exactly; anything else is DESC.
func (p ListParams) SortDirection() string {
	if p.SortOrder == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// OrderClause returns the full ORDER BY expression, with the creation
// timestamp descending appended as a deterministic tie-break.
func (p ListParams) OrderClause() string {
	return p.SortColumn() + " " + p.SortDirection() + ", created_at DESC"
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

func parsePositive(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
