package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/insightpipe/scout/internal/config"
	"github.com/insightpipe/scout/internal/models"
)

// Service sends report summaries to a generic JSON webhook and/or via email.
type Service struct {
	cfg    config.NotificationsConfig
	client *resty.Client
	log    *logrus.Entry
}

// Ensure Service implements Notifier
var _ Notifier = (*Service)(nil)

// webhookPayload is the JSON body posted to the configured webhook. It
// carries the run summary, not the full item lists.
type webhookPayload struct {
	Title            string         `json:"title"`
	GeneratedAt      time.Time      `json:"generated_at"`
	Keywords         []string       `json:"keywords"`
	Websites         []string       `json:"websites,omitempty"`
	TotalItems       int            `json:"total_items"`
	PlatformStats    map[string]int `json:"platform_stats,omitempty"`
	AverageSentiment *float64       `json:"average_sentiment,omitempty"`
	TopPainPoints    map[string]int `json:"top_pain_points,omitempty"`
}

// NewService creates a new notification service
func NewService(cfg config.NotificationsConfig, log *logrus.Entry) *Service {
	return &Service{
		cfg:    cfg,
		client: resty.New().SetTimeout(30 * time.Second),
		log:    log,
	}
}

// SendReport delivers the report summary over every configured channel.
// Channel failures are collected so one broken channel does not silence
// the others.
func (s *Service) SendReport(report *models.Report) error {
	var failures []string

	if s.cfg.WebhookURL != "" {
		if err := s.sendWebhook(report); err != nil {
			s.log.Errorf("Failed to send webhook notification: %v", err)
			failures = append(failures, fmt.Sprintf("webhook: %v", err))
		} else {
			s.log.Info("Sent report summary to webhook")
		}
	}

	if s.cfg.NotificationEmail != "" {
		if err := s.sendEmail(report); err != nil {
			s.log.Errorf("Failed to send email notification: %v", err)
			failures = append(failures, fmt.Sprintf("email: %v", err))
		} else {
			s.log.Infof("Sent report summary to %s", s.cfg.NotificationEmail)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(failures, "; "))
	}

	return nil
}

func (s *Service) sendWebhook(report *models.Report) error {
	payload := webhookPayload{
		Title:       fmt.Sprintf("Research report: %s", strings.Join(report.Metadata.Keywords, ", ")),
		GeneratedAt: report.Metadata.Timestamp,
		Keywords:    report.Metadata.Keywords,
		Websites:    report.Metadata.Websites,
		TotalItems:  report.Metadata.TotalItems,
	}
	if report.Analytics != nil {
		payload.PlatformStats = report.Analytics.PlatformStats
		compound := report.Analytics.AverageSentiment.Compound
		payload.AverageSentiment = &compound
		payload.TopPainPoints = report.Analytics.PainPoints
	}

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(s.cfg.WebhookURL)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) sendEmail(report *models.Report) error {
	subject := fmt.Sprintf("Research Report - %s (%d items)",
		strings.Join(report.Metadata.Keywords, ", "), report.Metadata.TotalItems)

	htmlBody, err := s.buildEmailHTML(report)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.SMTPUsername)
	m.SetHeader("To", s.cfg.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", s.buildEmailText(report))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.SMTPUsername, s.cfg.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *Service) buildEmailHTML(report *models.Report) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Research Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #2b5797; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        table { border-collapse: collapse; }
        td, th { border: 1px solid #ddd; padding: 6px 12px; text-align: left; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Research Report</h1>
        <p>Generated {{.Metadata.Timestamp.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    <div class="summary">
        <h2>Summary</h2>
        <p><strong>Keywords:</strong> {{join .Metadata.Keywords ", "}}</p>
        {{if .Metadata.Websites}}<p><strong>Websites:</strong> {{join .Metadata.Websites ", "}}</p>{{end}}
        <p><strong>Window:</strong> last {{.Metadata.DaysBack}} days</p>
        <p><strong>Total Items:</strong> {{.Metadata.TotalItems}}</p>
    </div>

    {{if .Analytics}}
    <h2>Items by Platform</h2>
    <table>
        <tr><th>Platform</th><th>Items</th></tr>
        {{range $platform, $count := .Analytics.PlatformStats}}
        <tr><td>{{$platform}}</td><td>{{$count}}</td></tr>
        {{end}}
    </table>
    <p><strong>Average compound sentiment:</strong> {{printf "%.3f" .Analytics.AverageSentiment.Compound}}</p>
    {{if .Analytics.PainPoints}}
    <h2>Pain Points</h2>
    <table>
        <tr><th>Category</th><th>Count</th></tr>
        {{range $category, $count := .Analytics.PainPoints}}
        <tr><td>{{$category}}</td><td>{{$count}}</td></tr>
        {{end}}
    </table>
    {{end}}
    {{end}}

    <hr>
    <p><small>This report was generated automatically by Scout.</small></p>
</body>
</html>
`

	t, err := template.New("email").Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, report); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Service) buildEmailText(report *models.Report) string {
	var text strings.Builder

	text.WriteString("Research Report\n")
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", report.Metadata.Timestamp.Format("2006-01-02 15:04:05 UTC")))

	text.WriteString("SUMMARY\n")
	text.WriteString("=======\n")
	text.WriteString(fmt.Sprintf("Keywords: %s\n", strings.Join(report.Metadata.Keywords, ", ")))
	if len(report.Metadata.Websites) > 0 {
		text.WriteString(fmt.Sprintf("Websites: %s\n", strings.Join(report.Metadata.Websites, ", ")))
	}
	text.WriteString(fmt.Sprintf("Window: last %d days\n", report.Metadata.DaysBack))
	text.WriteString(fmt.Sprintf("Total Items: %d\n", report.Metadata.TotalItems))

	if report.Analytics != nil {
		text.WriteString("\nITEMS BY PLATFORM\n")
		text.WriteString("=================\n")
		for platform, count := range report.Analytics.PlatformStats {
			text.WriteString(fmt.Sprintf("%s: %d\n", platform, count))
		}
		text.WriteString(fmt.Sprintf("\nAverage compound sentiment: %.3f\n", report.Analytics.AverageSentiment.Compound))

		if len(report.Analytics.PainPoints) > 0 {
			text.WriteString("\nPAIN POINTS\n")
			text.WriteString("===========\n")
			for category, count := range report.Analytics.PainPoints {
				text.WriteString(fmt.Sprintf("%s: %d\n", category, count))
			}
		}
	}

	text.WriteString("\n---\nThis report was generated automatically by Scout.\n")

	return text.String()
}
