package i18n

var spanishTranslations = map[string]string{
	// Processing Report
	"report.title":       "--- Informe de procesamiento ---",
	"report.success":     "¡Procesamiento de datos completado!",
	"report.failure":     "El procesamiento ha fallado.",
	"report.records":     "Registros procesados: %d",
	"report.no_warnings": "No se encontraron incidencias.",

	// Email Notifications
	"email.subject":  "Su informe de conversión",
	"email.intro":    "Hola:\n\nSu archivo se ha convertido correctamente.",
	"email.download": "Enlace de descarga:\n%s",
	"email.attached": "Se adjunta el archivo convertido.",
	"email.outro":    "Este enlace puede caducar según la política de almacenamiento.",
}
