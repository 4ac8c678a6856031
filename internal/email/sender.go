package email

import (
	"log/slog"
	"strings"
	"time"

	"rowforge/internal/i18n"
)

// Sender delivers conversion outcomes to the requesting user. The report
// is the rendered processing report, stats a short summary line.
type Sender interface {
	SendDownloadLink(email, lang, downloadURL string, report []string, stats string)
	SendWithAttachment(email, lang, filename string, content []byte, report []string, stats string)
}

type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

// SendDownloadLink sends an email asynchronously.
// In a real implementation, this would use an SMTP server or SES.
// Here we log it and simulate non-blocking behavior.
func (s *LogSender) SendDownloadLink(email, lang, downloadURL string, report []string, stats string) {
	go func() {
		// Simulate network latency and retry logic
		time.Sleep(100 * time.Millisecond)
		slog.Info("EMAIL SENT",
			"to", email,
			"lang", lang,
			"url", downloadURL,
			"report_lines", len(report),
			"stats", stats,
		)
	}()
}

func (s *LogSender) SendWithAttachment(email, lang, filename string, content []byte, report []string, stats string) {
	go func() {
		time.Sleep(100 * time.Millisecond)
		slog.Info("EMAIL SENT WITH ATTACHMENT",
			"to", email,
			"lang", lang,
			"filename", filename,
			"size", len(content),
			"report_lines", len(report),
			"stats", stats,
		)
	}()
}

// reportBlock renders the processing report section of an email body.
func reportBlock(lang string, report []string) string {
	var b strings.Builder
	b.WriteString(i18n.T(lang, "report.title"))
	b.WriteString("\n")
	if len(report) == 0 {
		b.WriteString(i18n.T(lang, "report.no_warnings"))
		b.WriteString("\n")
	}
	for _, line := range report {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
