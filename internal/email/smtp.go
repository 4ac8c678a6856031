package email

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"rowforge/internal/i18n"
)

type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return &SMTPSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

func (s *SMTPSender) SendDownloadLink(emailAddr, lang, downloadURL string, report []string, stats string) {
	// Run in background to not block worker
	go func() {
		addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

		// Setup Authentication
		// Note: Simply using PlainAuth. For modern services use appropriate auth (e.g., App Passwords for Gmail).
		var auth smtp.Auth
		if s.User != "" && s.Password != "" {
			auth = smtp.PlainAuth("", s.User, s.Password, s.Host)
		}

		subject := encodeSubject(i18n.T(lang, "email.subject"))
		body := i18n.T(lang, "email.intro") + "\n\n" +
			stats + "\n\n" +
			reportBlock(lang, report) + "\n" +
			i18n.Tf(lang, "email.download", downloadURL) + "\n\n" +
			i18n.T(lang, "email.outro") + "\n"

		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"utf-8\"\r\n"+
			"\r\n"+
			"%s\r\n", emailAddr, subject, body))

		slog.Info("Sending email via SMTP", "to", emailAddr, "host", s.Host)

		err := smtp.SendMail(addr, auth, s.From, []string{emailAddr}, msg)
		if err != nil {
			// Often local dev servers (like MailHog) don't need auth.
			slog.Error("Failed to send email", "error", err, "to", emailAddr)
		} else {
			slog.Info("Email sent successfully", "to", emailAddr)
		}
	}()
}

func (s *SMTPSender) SendWithAttachment(emailAddr, lang, filename string, content []byte, report []string, stats string) {
	go func() {
		addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

		var auth smtp.Auth
		if s.User != "" && s.Password != "" {
			auth = smtp.PlainAuth("", s.User, s.Password, s.Host)
		}

		boundary := "MyBoundarySeparator"
		subject := encodeSubject(i18n.T(lang, "email.subject"))
		bodyText := i18n.T(lang, "email.intro") + "\n\n" +
			stats + "\n\n" +
			reportBlock(lang, report) + "\n" +
			i18n.T(lang, "email.attached") + "\n"

		// Headers
		headers := make(map[string]string)
		headers["To"] = emailAddr
		headers["Subject"] = subject
		headers["MIME-Version"] = "1.0"
		headers["Content-Type"] = "multipart/mixed; boundary=\"" + boundary + "\""

		headerStr := ""
		for k, v := range headers {
			headerStr += fmt.Sprintf("%s: %s\r\n", k, v)
		}
		headerStr += "\r\n"

		// Body Part
		msg := headerStr
		msg += fmt.Sprintf("--%s\r\n", boundary)
		msg += "Content-Type: text/plain; charset=\"utf-8\"\r\n"
		msg += "\r\n" + bodyText + "\r\n"

		// Attachment Part
		encoded := base64.StdEncoding.EncodeToString(content)

		msg += fmt.Sprintf("--%s\r\n", boundary)
		msg += fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", contentTypeFor(filename), filename)
		msg += "Content-Transfer-Encoding: base64\r\n"
		msg += fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", filename)
		msg += "\r\n"

		// Split Base64 lines (RFC 2045 limit 76 chars)
		for i := 0; i < len(encoded); i += 76 {
			end := i + 76
			if end > len(encoded) {
				end = len(encoded)
			}
			msg += encoded[i:end] + "\r\n"
		}

		msg += fmt.Sprintf("\r\n--%s--", boundary)

		slog.Info("Sending email with attachment via SMTP", "to", emailAddr, "size", len(content))

		err := smtp.SendMail(addr, auth, s.From, []string{emailAddr}, []byte(msg))
		if err != nil {
			slog.Error("Failed to send email", "error", err, "to", emailAddr)
		} else {
			slog.Info("Email sent successfully", "to", emailAddr)
		}
	}()
}

// encodeSubject applies RFC 2047 encoding when the subject leaves ASCII.
func encodeSubject(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return "=?UTF-8?B?" + base64.StdEncoding.EncodeToString([]byte(s)) + "?="
		}
	}
	return s
}

func contentTypeFor(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".xlsx"):
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case strings.HasSuffix(filename, ".csv"):
		return "text/csv"
	case strings.HasSuffix(filename, ".json"):
		return "application/json"
	case strings.HasSuffix(filename, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(filename, ".gz"):
		return "application/gzip"
	}
	return "application/octet-stream"
}
