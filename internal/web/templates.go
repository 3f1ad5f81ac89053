package web

import (
	"embed"
	"fmt"
	"html/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templatesFS embed.FS

var printer = message.NewPrinter(language.English)

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"number":  formatNumber,
	"money":   formatMoney,
	"percent": formatPercent,
	"fixed":   func(v float64) string { return printer.Sprintf("%.2f", v) },
	"corr":    func(v float64) string { return fmt.Sprintf("%+.2f", v) },
}).ParseFS(templatesFS, "templates/*.html"))

func formatNumber(n int) string {
	return printer.Sprintf("%d", n)
}

func formatMoney(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// formatPercent renders a fraction in [0,1] as a percentage.
func formatPercent(fraction float64) string {
	return printer.Sprintf("%.1f%%", fraction*100)
}
