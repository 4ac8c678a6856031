package i18n

var persianTranslations = map[string]string{
	// Processing Report
	"report.title":       "--- گزارش پردازش ---",
	"report.success":     "پردازش داده‌ها کامل شد!",
	"report.failure":     "پردازش ناموفق بود.",
	"report.records":     "تعداد رکوردهای پردازش‌شده: %d",
	"report.no_warnings": "موردی یافت نشد.",

	// Email Notifications
	"email.subject":  "گزارش تبدیل شما",
	"email.intro":    "سلام،\n\nفایل شما با موفقیت تبدیل شد.",
	"email.download": "پیوند دانلود:\n%s",
	"email.attached": "فایل تبدیل‌شده پیوست شده است.",
	"email.outro":    "این پیوند ممکن است بسته به سیاست ذخیره‌سازی منقضی شود.",
}
