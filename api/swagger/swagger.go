// Package swagger embeds the OpenAPI document for the users API.
package swagger

import _ "embed"

// Document is the OpenAPI 2.0 document served at /swagger/users.swagger.json.
//
//go:embed users.swagger.json
var Document []byte
