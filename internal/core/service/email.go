package service

import (
	"html/template"
	"strings"

	"github.com/nkollections/notifier/internal/core/domain"
)

// Fixed template, substitution only. Links are made absolute so they
// survive being opened from a mail client.
var emailTemplate = template.Must(template.New("notification").Parse(`<div style="font-family: sans-serif; color: #333;">
  <h2>{{.Title}}</h2>
  <p>{{.Message}}</p>
  {{if .Link}}<p><a href="{{.Link}}" style="color: #D4AF37;">View Details</a></p>{{end}}
  <hr />
  <p style="font-size: 12px; color: #666;">Store Operations</p>
</div>`))

func renderEmail(n domain.Notification, baseURL string) string {
	link := ""
	if n.Link != "" {
		link = absoluteLink(baseURL, n.Link)
	}

	var b strings.Builder
	if err := emailTemplate.Execute(&b, struct {
		Title   string
		Message string
		Link    string
	}{n.Title, n.Message, link}); err != nil {
		// The template is fixed and the data is plain strings; an
		// execute error here means a programming bug.
		panic(err)
	}

	return b.String()
}

func absoluteLink(baseURL, path string) string {
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return base + path
}
