package webgen

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; padding-top: 20px; }
        .container-main { max-width: 1400px; }
        .updates-column { max-height: 90vh; overflow-y: auto; }
        .event-card { border-left-width: 5px; border-left-style: solid; }
        del { color: #dc3545; }
    </style>
</head>
<body>
    <div class="container container-main">
        <div class="d-flex justify-content-between align-items-center mb-4">
            <h1>{{.Title}}</h1>
            <p class="text-muted mb-0">Last updated: {{.GeneratedAt}}</p>
        </div>

        <div class="row">
            <div class="col-md-4 updates-column">
                <h4>Updates</h4>
                <div id="updates-content">
{{- if .Updates}}
{{- range .Updates}}
                    <div class="card event-card mb-3"><div class="card-body">
{{- if eq .Kind "new"}}
                        <h5 class="card-title text-success">{{.Heading}}</h5>
                        <p class="card-text"><strong>Date:</strong> {{.Date}}</p>
                        <p class="card-text"><strong>Time:</strong> {{.Time}}</p>
{{- else if eq .Kind "rescheduled_new"}}
                        <h5 class="card-title text-primary">{{.Heading}}</h5>
                        <p class="card-text"><strong>Date: {{.Date}}</strong></p>
                        <p class="card-text"><strong>Time: {{.Time}}</strong></p>
                        <p class="card-text"><small>(Rescheduled from {{.OriginalDate}} {{.OriginalTime}})</small></p>
{{- else if eq .Kind "rescheduled_original"}}
                        <h5 class="card-title text-info">{{.Heading}}</h5>
                        <p class="card-text"><del>Original: {{.Date}} {{.Time}}</del></p>
                        <p class="card-text"><strong>New Date: {{.NewDate}} {{.NewTime}}</strong> (See Upcoming Hearings)</p>
{{- else if eq .Kind "deferred_nomatch"}}
                        <h5 class="card-title text-secondary">{{.Heading}}</h5>
                        <p class="card-text">Original: {{.Date}} {{.Time}}</p>
                        <p class="card-text"><em>Reschedule: None found after grace period</em></p>
{{- else}}
                        <h5 class="card-title text-warning">{{.Heading}}</h5>
                        <p class="card-text">Original: {{.Date}} {{.Time}}</p>
                        <p class="card-text"><em>Reschedule: Awaiting information</em></p>
{{- end}}
{{- if .Location}}
                        <p class="card-text"><small>Location: {{.Location}}</small></p>
{{- end}}
{{- if .Agenda}}
                        <p class="card-text"><a href="{{.Agenda}}" target="_blank" class="btn btn-sm btn-outline-secondary mt-1">View Agenda</a></p>
{{- end}}
                    </div></div>
{{- end}}
{{- else}}
                    <p class="text-muted">No updates since last check.</p>
{{- end}}
                </div>
            </div>

            <div class="col-md-8">
                <h4>Upcoming Hearings ({{.TotalUpcoming}} total)</h4>
                <div id="upcoming-hearings-content">
{{- if .Upcoming}}
{{- range .Upcoming}}
                    <div class="card event-card mb-3"><div class="card-body">
                        <h5 class="card-title">{{.BodyName}}</h5>
{{- if or .New .Rescheduled .Deferred}}
                        <p class="card-text small">
{{- if .New}}<span class="badge bg-success me-1">NEW</span>{{end}}
{{- if .Rescheduled}}<span class="badge bg-info me-1">RESCHEDULED (was {{.RescheduledFrom}})</span>{{end}}
{{- if .Deferred}}<span class="badge bg-warning me-1">DEFERRED</span>{{end}}
                        </p>
{{- end}}
{{- if .Deferred}}
                        <p class="card-text"><strong>Original Date:</strong> <del>{{.Date}}</del> {{.Time}}</p>
                        <p class="card-text"><em>Reschedule: {{.RescheduleNote}}</em></p>
{{- else}}
                        <p class="card-text"><strong>Date:</strong> {{.Date}}</p>
                        <p class="card-text"><strong>Time:</strong> {{.Time}}</p>
{{- end}}
                        <p class="card-text"><strong>Location:</strong> {{.Location}}</p>
{{- if .Comment}}
                        <p class="card-text fst-italic"><small>Comment: {{.Comment}}</small></p>
{{- end}}
{{- if .Agenda}}
                        <p class="card-text"><a href="{{.Agenda}}" target="_blank" class="btn btn-sm btn-outline-primary">View Agenda</a></p>
{{- else}}
                        <p class="card-text"><small>Agenda not yet available</small></p>
{{- end}}
                    </div></div>
{{- end}}
{{- else}}
                    <p class="text-muted">No upcoming hearings found.</p>
{{- end}}
                </div>
{{- if gt .Pagination.Total 1}}
                <nav aria-label="Page navigation"><ul class="pagination justify-content-center">
{{- if .Pagination.PrevHref}}
                    <li class="page-item"><a class="page-link" href="{{.Pagination.PrevHref}}">Previous</a></li>
{{- else}}
                    <li class="page-item disabled"><span class="page-link">Previous</span></li>
{{- end}}
{{- range .Pagination.Items}}
{{- if .Gap}}
                    <li class="page-item disabled"><span class="page-link">...</span></li>
{{- else if .Active}}
                    <li class="page-item active"><span class="page-link">{{.Label}}</span></li>
{{- else}}
                    <li class="page-item"><a class="page-link" href="{{.Href}}">{{.Label}}</a></li>
{{- end}}
{{- end}}
{{- if .Pagination.NextHref}}
                    <li class="page-item"><a class="page-link" href="{{.Pagination.NextHref}}">Next</a></li>
{{- else}}
                    <li class="page-item disabled"><span class="page-link">Next</span></li>
{{- end}}
                </ul></nav>
{{- end}}
            </div>
        </div>
    </div>
</body>
</html>
`
