package web

import "embed"

// StaticFS holds the embedded gallery assets (HTML, CSS, JS).
//
//go:embed static/*
var StaticFS embed.FS
