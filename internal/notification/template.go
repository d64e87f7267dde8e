package notification

import (
	"html/template"
	"strings"

	"github.com/pkg/errors"

	"github.com/citewatch/citewatch/internal/domain"
)

var emailTmpl = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="margin:0;padding:0;background-color:#f5f5f5;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;">
  <div style="max-width:600px;margin:0 auto;padding:20px;">
    <div style="background:linear-gradient(135deg,#667eea 0%,#764ba2 100%);border-radius:12px 12px 0 0;padding:30px;text-align:center;">
      <h1 style="color:#fff;margin:0;font-size:24px;">🎉 New Citations Alert!</h1>
      <p style="color:rgba(255,255,255,0.9);margin:10px 0 0 0;font-size:16px;">Congratulations, {{.Name}}!</p>
    </div>
    <div style="background:#fff;padding:30px;border-radius:0 0 12px 12px;">
      <p style="font-size:16px;color:#333;line-height:1.6;">
        Your Google Scholar profile has received
        <strong style="color:#667eea;">+{{.Gained}} new citation{{if ne .Gained 1}}s{{end}}</strong>
        since the last check.
      </p>
      <div style="display:flex;gap:10px;margin:20px 0;">
        <div style="flex:1;background:#f8f9ff;border-radius:8px;padding:15px;text-align:center;">
          <div style="font-size:28px;font-weight:bold;color:#667eea;">{{.Total}}</div>
          <div style="font-size:12px;color:#888;">Total Citations</div>
        </div>
        <div style="flex:1;background:#f8f9ff;border-radius:8px;padding:15px;text-align:center;">
          <div style="font-size:28px;font-weight:bold;color:#667eea;">{{.HIndex}}</div>
          <div style="font-size:12px;color:#888;">h-index</div>
        </div>
        <div style="flex:1;background:#f8f9ff;border-radius:8px;padding:15px;text-align:center;">
          <div style="font-size:28px;font-weight:bold;color:#667eea;">{{.I10Index}}</div>
          <div style="font-size:12px;color:#888;">i10-index</div>
        </div>
      </div>
      {{if .Publications}}
      <h3 style="color:#333;margin-top:25px;">Papers with New Citations</h3>
      <table style="width:100%;border-collapse:collapse;margin-top:10px;">
        <thead>
          <tr style="background:#f8f9ff;">
            <th style="padding:10px 15px;text-align:left;font-size:13px;color:#666;">Paper</th>
            <th style="padding:10px 15px;text-align:center;font-size:13px;color:#666;">Before</th>
            <th style="padding:10px 15px;text-align:center;font-size:13px;color:#666;">After</th>
            <th style="padding:10px 15px;text-align:center;font-size:13px;color:#666;">New</th>
          </tr>
        </thead>
        <tbody>
          {{range .Publications}}
          <tr>
            <td style="padding:10px 15px;border-bottom:1px solid #eee;font-size:14px;color:#333;">
              {{.Title}}{{if .Year}} <span style="color:#888;font-size:12px;">({{.Year}})</span>{{end}}
            </td>
            <td style="padding:10px 15px;border-bottom:1px solid #eee;text-align:center;font-size:14px;color:#333;">{{.PreviousCount}}</td>
            <td style="padding:10px 15px;border-bottom:1px solid #eee;text-align:center;font-size:14px;color:#333;">{{.CurrentCount}}</td>
            <td style="padding:10px 15px;border-bottom:1px solid #eee;text-align:center;font-size:14px;">
              <span style="background:#e8f5e9;color:#2e7d32;padding:2px 8px;border-radius:12px;font-weight:bold;">+{{.Gained}}</span>
            </td>
          </tr>
          {{end}}
        </tbody>
      </table>
      {{end}}
      <div style="margin-top:30px;padding-top:20px;border-top:1px solid #eee;text-align:center;">
        <a href="{{.ScholarURL}}" style="display:inline-block;background:linear-gradient(135deg,#667eea 0%,#764ba2 100%);color:#fff;text-decoration:none;padding:12px 30px;border-radius:25px;font-weight:bold;font-size:14px;">View Google Scholar Profile</a>
        <p style="font-size:12px;color:#999;margin-top:15px;">This notification was sent by citewatch.<br>Checked at {{.CheckedAt}}</p>
      </div>
    </div>
  </div>
</body>
</html>
`))

type emailData struct {
	Name         string
	Gained       int
	Total        int
	HIndex       int
	I10Index     int
	Publications []domain.PublicationDelta
	ScholarURL   string
	CheckedAt    string
}

func (s *EmailService) buildHTMLBody(delta domain.Delta, current *domain.Snapshot) (string, error) {
	pubs := delta.Publications
	if len(pubs) > maxEmailPublications {
		pubs = pubs[:maxEmailPublications]
	}

	data := emailData{
		Name:         current.Name,
		Gained:       delta.TotalDelta,
		Total:        current.TotalCitations,
		HIndex:       current.HIndex,
		I10Index:     current.I10Index,
		Publications: pubs,
		ScholarURL:   s.config.ScholarURL(),
		CheckedAt:    current.ObservedAt.UTC().Format("2006-01-02 15:04 UTC"),
	}

	var b strings.Builder
	if err := emailTmpl.Execute(&b, &data); err != nil {
		return "", errors.Wrap(err, "failed to execute email template")
	}
	return b.String(), nil
}
