package render

import (
	"fmt"
	"html/template"
	"io"
)

// PageData feeds the full results page
type PageData struct {
	Title    string
	MaxPages int
	Grid     template.HTML
}

// DOM ids the page script relies on
const (
	InputID  = "numberOfPages"
	ButtonID = "fetchResultsBtn"
	GridID   = "giveawayGrid"
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.1/css/all.min.css">
  <link rel="stylesheet" href="/static/style.css">
  <script src="/static/index.js" defer></script>
</head>
<body>
  <main>
    <h1>{{.Title}}</h1>
    <form class="controls" method="GET" action="/results">
      <label for="numberOfPages">Pages to scrape</label>
      <input type="number" id="numberOfPages" name="numpages" min="1" max="{{.MaxPages}}" value="1" required>
      <button type="submit" id="fetchResultsBtn">Fetch results</button>
    </form>
    <div id="giveawayGrid" aria-live="polite">{{.Grid}}</div>
  </main>
</body>
</html>
`))

// Page writes the full results page
func Page(w io.Writer, data PageData) error {
	if data.Title == "" {
		data.Title = "Giveaways"
	}
	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
