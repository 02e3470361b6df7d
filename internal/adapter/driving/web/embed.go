package web

import "embed"

// StaticFS holds the embedded stylesheet and help page.
//
//go:embed static/*
var StaticFS embed.FS
