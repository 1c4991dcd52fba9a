// Package web carries the embedded UI assets for Pemira.
package web

import "embed"

// Templates holds the page, layout, and partial templates.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds stylesheets and other public assets served under /static.
//
//go:embed static/**/*
var Static embed.FS
