package i18n

var englishTranslations = map[string]string{
	// Processing Report
	"report.title":       "--- Processing Report ---",
	"report.success":     "Data processing complete!",
	"report.failure":     "Processing failed.",
	"report.records":     "Records processed: %d",
	"report.no_warnings": "No issues found.",

	// Email Notifications
	"email.subject":  "Your conversion report",
	"email.intro":    "Hello,\n\nYour file has been converted successfully.",
	"email.download": "Download link:\n%s",
	"email.attached": "The converted file is attached.",
	"email.outro":    "This link may expire depending on the storage policy.",
}
