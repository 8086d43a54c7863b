// Package api embeds the OpenAPI document for the /usuarios REST surface.
package api

import _ "embed"

// SwaggerJSON is the OpenAPI 2.0 document served at /openapi/usuarios.json.
//
//go:embed swagger/usuarios.swagger.json
var SwaggerJSON []byte
