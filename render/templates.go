package render

import (
	"bytes"
	"fmt"
	"html/template"

	"giveaway-grid/models"
)

// Fragment templates for the grid container. Markup and class names are what
// the page stylesheet targets, so keep them stable.
const fragmentTemplates = `
{{define "loading"}}<div class="no-entries" aria-busy="true"><i class="fa-solid fa-spinner fa-pulse"></i></div>{{end}}

{{define "empty"}}<div class="no-entries">No entries found.</div>{{end}}

{{define "error"}}<div class="no-entries error" role="alert">{{.}}</div>{{end}}

{{define "items"}}{{range .}}<div class="giveawayItem">
  <img src="{{.ImageURL}}" alt="{{.Name}}" />
  <div class="giveawayDesc">
    <a href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.Name}}</a>
    <span>expires on {{.ExpirationDate}}</span>
  </div>
</div>
{{end}}{{end}}
`

var fragments = template.Must(template.New("fragments").Parse(fragmentTemplates))

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s fragment: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// LoadingHTML renders the loading indicator
func LoadingHTML() (template.HTML, error) {
	return execute("loading", nil)
}

// EmptyHTML renders the "no results" indicator
func EmptyHTML() (template.HTML, error) {
	return execute("empty", nil)
}

// ErrorHTML renders a user-facing error message
func ErrorHTML(message string) (template.HTML, error) {
	return execute("error", message)
}

// ItemsHTML renders one grid element per item, in order
func ItemsHTML(items []models.DisplayItem) (template.HTML, error) {
	return execute("items", items)
}
