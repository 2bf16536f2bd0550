// Package api embeds the server's OpenAPI document.
package api

import _ "embed"

// OpenAPISpec is the OpenAPI 3 document for the server, in YAML.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
