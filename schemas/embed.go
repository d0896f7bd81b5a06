// Package schemas holds the JSON Schemas for the data-folder documents.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names
const (
	Resume = "resume.schema.json"
	Config = "config.schema.json"
)
