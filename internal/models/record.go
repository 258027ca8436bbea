package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Resource names served by the remote API.
const (
	ResourceProjects     = "projects"
	ResourceBarangays    = "barangays"
	ResourceOfficials    = "officials"
	ResourceContractors  = "contractors"
	ResourceDocuments    = "documents"
	ResourceTransactions = "transactions"
)

// Resources lists every remote collection in sidebar order.
var Resources = []string{
	ResourceProjects,
	ResourceBarangays,
	ResourceOfficials,
	ResourceContractors,
	ResourceDocuments,
	ResourceTransactions,
}

// IsResource reports whether name is a known remote collection.
func IsResource(name string) bool {
	for _, r := range Resources {
		if r == name {
			return true
		}
	}
	return false
}

// Record is one remote-owned row, kept as decoded JSON.
type Record map[string]any

// ID returns the record's "id" field as text, or "" when absent.
func (r Record) ID() string {
	return Text(r["id"])
}

// Lookup follows a dotted path such as "barangay.name" through nested objects.
func (r Record) Lookup(path string) any {
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[part]
		if !ok {
			return nil
		}
	}
	return cur
}

// Text renders a decoded JSON value for a table cell.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// Stats is the dashboard summary from GET /dashboard/stats.
type Stats struct {
	Projects     int `json:"projects"`
	Barangays    int `json:"barangays"`
	Contractors  int `json:"contractors"`
	Officials    int `json:"officials"`
	Transactions int `json:"transactions,omitempty"`
}
