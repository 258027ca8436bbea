package handlers

import (
	"embed"
	"html/template"
	"net/url"
	"strings"

	"traceper/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page templates, by destination.
const (
	tmplWelcome   = "welcome.html"
	tmplLogin     = "login.html"
	tmplRegister  = "register.html"
	tmplDashboard = "dashboard.html"
	tmplRecords   = "records.html"
)

type navItem struct {
	Label string
	Path  string
}

var sidebar = []navItem{
	{"Dashboard", "/dashboard"},
	{"Projects", "/projects"},
	{"Barangays", "/barangays"},
	{"Officials", "/officials"},
	{"Contractors", "/contractors"},
	{"Documents", "/documents"},
	{"Transactions", "/transactions"},
}

// column is one table column; Path is a dotted lookup into the record.
type column struct {
	Label    string
	Path     string
	Fallback string
}

var resourceColumns = map[string][]column{
	models.ResourceProjects: {
		{"Title", "title", ""},
		{"Barangay", "barangay.name", "N/A"},
		{"Contractor", "contractor.name", "N/A"},
		{"Budget", "budget_allocated", ""},
		{"Status", "status", ""},
	},
	models.ResourceBarangays: {
		{"Name", "name", ""},
		{"Captain", "captain", "Not Assigned"},
		{"Population", "population", "N/A"},
	},
	models.ResourceOfficials: {
		{"Name", "name", ""},
		{"Position", "position", ""},
		{"Contact", "contact", ""},
		{"Barangay", "barangay.name", "N/A"},
	},
	models.ResourceContractors: {
		{"Name", "name", ""},
		{"Company", "company_name", ""},
		{"Contact", "contact_number", ""},
		{"Address", "address", ""},
	},
	models.ResourceDocuments: {
		{"Title", "title", ""},
		{"File", "file_path", ""},
		{"Uploaded At", "created_at", ""},
	},
	models.ResourceTransactions: {
		{"Project", "project.title", "N/A"},
		{"Type", "type", ""},
		{"Amount", "amount", ""},
		{"Description", "description", ""},
		{"Date", "created_at", ""},
	},
}

type tableRow struct {
	ID    string
	Cells []string
}

func buildRows(cols []column, recs []models.Record) []tableRow {
	rows := make([]tableRow, 0, len(recs))
	for _, rec := range recs {
		row := tableRow{ID: rec.ID(), Cells: make([]string, len(cols))}
		for i, col := range cols {
			v := models.Text(rec.Lookup(col.Path))
			if v == "" {
				v = col.Fallback
			}
			row.Cells[i] = v
		}
		rows = append(rows, row)
	}
	return rows
}

// pageData feeds every template; fields a page does not use stay zero.
type pageData struct {
	TabID       string
	Title       string
	Location    string
	DisplayName string
	Nav         []navItem
	Error       string
	Notice      string

	Name  string
	Email string

	Stats    models.Stats
	Resource string
	Columns  []column
	Rows     []tableRow
}

func tabURL(tabID, path string) string {
	return "/t/" + tabID + path
}

func title(location string) string {
	for _, item := range sidebar {
		if item.Path == location {
			return item.Label
		}
	}
	switch location {
	case "/login":
		return "Login"
	case "/register":
		return "Register"
	}
	return "Welcome"
}

// publicTemplate picks the template for a public destination.
func publicTemplate(location string) string {
	switch location {
	case "/login":
		return tmplLogin
	case "/register":
		return tmplRegister
	default:
		return tmplWelcome
	}
}

func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"tabURL":     tabURL,
		"pathEscape": url.PathEscape,
		"inc":        func(i int) int { return i + 1 },
	}
	return template.Must(template.New("pages").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))
}

// resourceOf maps a protected location such as "/projects" to its resource.
func resourceOf(location string) (string, bool) {
	name := strings.TrimPrefix(location, "/")
	return name, models.IsResource(name)
}
