package menu

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"ajou-menu/internal/observability/logging"
)

var pageTemplate = template.Must(template.New("menu").Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>아주대 식당 메뉴 - {{.Date}}</title>
<style>
body { font-family: 'Malgun Gothic', sans-serif; line-height: 1.6; margin: 20px; background-color: #f5f5f5; }
.container { max-width: 800px; margin: 0 auto; background: white; padding: 20px; border-radius: 10px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
.header { text-align: center; margin-bottom: 20px; padding-bottom: 10px; border-bottom: 2px solid #FEE500; }
.menu-content { white-space: pre-line; font-size: 14px; line-height: 1.8; }
.notice { color: #a15c00; font-size: 13px; }
.refresh-btn { background: #FEE500; color: #000; padding: 10px 20px; border: none; border-radius: 5px; cursor: pointer; font-size: 14px; margin-bottom: 20px; }
.footer { text-align: center; color: #666; font-size: 12px; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1>아주대 식당 메뉴</h1>
<p>{{.Date}}</p>
</div>
<button class="refresh-btn" onclick="location.reload()">새로고침</button>
{{if .Unavailable}}<p class="notice">조회 실패: {{range $i, $s := .Unavailable}}{{if $i}}, {{end}}{{$s}}{{end}}</p>{{end}}
<div class="menu-content">{{.Menu}}</div>
<hr>
<p class="footer">
API: <a href="/menu?date={{.Date}}">/menu?date={{.Date}}</a><br>
다른 날짜: /menu-web?date=YYYY-MM-DD
</p>
</div>
</body>
</html>
`))

type pageData struct {
	Date        string
	Menu        string
	Unavailable []string
}

// PageHandler serves GET /menu-web?date=YYYY-MM-DD as an HTML page.
type PageHandler struct {
	Svc   Builder
	Dates DateParser
}

// ServeHTTP implements http.Handler. All menu text is HTML-escaped by the
// template, so markup scraped from the dining site cannot reach the page.
func (h PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	date, err := h.Dates.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writePage(w, r, http.StatusBadRequest, errorTemplate, err.Error())
		return
	}

	m := h.Svc.BuildDailyMenu(r.Context(), date)
	data := pageData{Date: m.DateString(), Menu: m.RenderedText()}
	for _, src := range m.Unavailable() {
		data.Unavailable = append(data.Unavailable, src.Label())
	}
	writePage(w, r, http.StatusOK, pageTemplate, data)
}

var errorTemplate = template.Must(template.New("error").Parse(
	`<!DOCTYPE html><html lang="ko"><head><meta charset="UTF-8"><title>오류</title></head>` +
		`<body><h1>오류</h1><p>{{.}}</p><p>날짜 형식: YYYY-MM-DD</p></body></html>`))

// writePage renders into a buffer first so that a template failure can
// still become a clean 500.
func writePage(w http.ResponseWriter, r *http.Request, code int, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		logging.FromContext(r.Context()).Error("failed to render menu page", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}
