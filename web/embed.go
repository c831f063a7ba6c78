package web

import "embed"

// TemplatesFS embeds the dashboard page and its HTMX partial.
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet and the chart script.
//go:embed static/*
var StaticFS embed.FS
