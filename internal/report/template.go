package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const emailTemplate = `<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #1c1917; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    h1 { color: #b45309; margin-bottom: 8px; }
    h2 { color: #78350f; margin-top: 24px; }
    .subtitle { color: #78716c; margin-bottom: 20px; }
    .event-card { border: 1px solid #fde68a; border-radius: 8px; padding: 16px; margin: 12px 0; background: #fffbeb; }
    .event-name { font-size: 18px; font-weight: bold; color: #92400e; margin-bottom: 4px; }
    .event-type { display: inline-block; background: #fef3c7; color: #92400e; padding: 2px 8px; border-radius: 4px; font-size: 12px; font-weight: 600; margin-bottom: 8px; }
    .event-meta { color: #78716c; font-size: 14px; margin: 8px 0; }
    .event-link { display: inline-block; color: #b45309; text-decoration: none; margin-top: 8px; font-weight: 500; }
    .stats { background: #f5f5f4; padding: 16px; border-radius: 8px; margin: 20px 0; }
    .stat-row { display: flex; justify-content: space-between; padding: 4px 0; }
    .stat-label { color: #78716c; }
    .stat-value { font-weight: 600; }
    .stat-value.success { color: #16a34a; }
    .stat-value.warning { color: #ca8a04; }
    .stat-value.error { color: #dc2626; }
    .error-item { background: #fef2f2; border-left: 3px solid #dc2626; padding: 8px 12px; margin: 8px 0; font-size: 14px; }
    .footer { margin-top: 32px; padding-top: 16px; border-top: 1px solid #e7e5e4; color: #a8a29e; font-size: 12px; }
    .no-events { text-align: center; padding: 32px; color: #78716c; background: #fafaf9; border-radius: 8px; }
  </style>
</head>
<body>
  <div class="container">
    <h1>Raw Honey Guide Event Discovery</h1>
    <p class="subtitle">Weekly Report - {{formatDate .GeneratedAt}}</p>

    <div class="stats">
      <div class="stat-row">
        <span class="stat-label">New events added</span>
        <span class="stat-value{{if .NewEvents}} success{{end}}">{{len .NewEvents}}</span>
      </div>
      <div class="stat-row">
        <span class="stat-label">Duplicates skipped</span>
        <span class="stat-value{{if gt .Duplicates 0}} warning{{end}}">{{.Duplicates}}</span>
      </div>
      <div class="stat-row">
        <span class="stat-label">Validation errors</span>
        <span class="stat-value{{if .ValidationErrors}} error{{end}}">{{len .ValidationErrors}}</span>
      </div>
      {{- if .SystemErrors}}
      <div class="stat-row">
        <span class="stat-label">System errors</span>
        <span class="stat-value error">{{len .SystemErrors}}</span>
      </div>
      {{- end}}
    </div>

    <h2>New Events</h2>
    {{- if not .NewEvents}}
    <div class="no-events">No new events discovered this week.</div>
    {{- end}}
    {{- range .NewEvents}}
    <div class="event-card">
      <div class="event-name">{{.Name}}</div>
      <span class="event-type">{{.EventType}}</span>
      <div class="event-meta">
        <strong>{{.City}}{{if and .City .State}}, {{end}}{{.State}}</strong><br>
        {{.StartDate}}{{if .EndDate}} - {{.EndDate}}{{end}}
      </div>
      <p style="margin: 8px 0;">{{if .Description}}{{.Description}}{{else}}No description available.{{end}}</p>
      {{- if .Link}}
      <a href="{{.Link}}" class="event-link">View Event Details &rarr;</a>
      {{- end}}
    </div>
    {{- end}}

    {{- if .ValidationErrors}}
    <h2>Validation Errors</h2>
    {{- range .ValidationErrors}}
    <div class="error-item">{{.}}</div>
    {{- end}}
    {{- end}}

    {{- if .SystemErrors}}
    <h2>System Errors</h2>
    {{- range .SystemErrors}}
    <div class="error-item">{{.}}</div>
    {{- end}}
    {{- end}}

    <div class="footer">
      <p>This is an automated report from Raw Honey Guide event discovery.</p>
      <p>Events added via AI discovery require manual verification before being marked as verified.</p>
      <p>View all events: <a href="https://rawhoneyguide.com/events">rawhoneyguide.com/events</a></p>
    </div>
  </div>
</body>
</html>
`

// SubtitleDateLayout renders the report date as "Friday, October 16, 2026".
const SubtitleDateLayout = "Monday, January 2, 2006"

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			t = time.Now()
		}
		return t.Format(SubtitleDateLayout)
	},
}).Parse(emailTemplate))

// Render produces the HTML body for summary. Every interpolated value is
// escaped by html/template.
func Render(summary Summary) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, summary); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}
