// Package web embeds the chat page served by the studymate server.
package web

import "embed"

//go:embed static
var Static embed.FS
