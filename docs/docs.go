// Package docs registers the OpenAPI description served under /swagger. It
// follows the layout swag init emits; keep it in step with the handler
// annotations when routes change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "https://github.com/guttosm/b3view",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/guttosm/b3view",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/assets/{ticker}": {
            "post": {
                "description": "Loads the history of a ticker and draws it in the active display mode",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Select a ticker",
                "parameters": [
                    {"type": "string", "example": "PETR4", "description": "Ticker", "name": "ticker", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Unknown ticker", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Superseded by a newer selection", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "422": {"description": "Records cannot be charted", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "502": {"description": "Market API failure", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/chart": {
            "get": {
                "description": "Returns the Chart.js configuration of the chart on screen, 204 when there is none",
                "produces": ["application/json"],
                "tags": ["chart"],
                "summary": "Current chart",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/chart.Config"}},
                    "204": {"description": "No chart"}
                }
            }
        },
        "/api/v1/chart/export": {
            "get": {
                "description": "Renders the visible window of the current chart as PNG",
                "produces": ["image/png", "application/json"],
                "tags": ["chart"],
                "summary": "Export chart",
                "parameters": [
                    {"enum": ["png", "dataurl"], "type": "string", "description": "dataurl to get a JSON data URL instead of a file", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ExportDataURLResponse"}},
                    "404": {"description": "No chart", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Render failure", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/chart/reset-zoom": {
            "post": {
                "description": "Shows every point of the current chart again",
                "produces": ["application/json"],
                "tags": ["chart"],
                "summary": "Reset zoom",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ViewportResponse"}},
                    "404": {"description": "No chart", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/chart/viewport": {
            "post": {
                "description": "Stores the visible label window after a pan or zoom on the page",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chart"],
                "summary": "Sync chart viewport",
                "parameters": [
                    {"description": "Visible window", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ViewportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ViewportResponse"}},
                    "400": {"description": "Invalid window", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "No chart", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/directory": {
            "get": {
                "description": "Returns the ticker directory filtered by a case-insensitive substring",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "List tickers",
                "parameters": [
                    {"type": "string", "example": "ETR", "description": "Search text", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DirectoryResponse"}}
                }
            }
        },
        "/api/v1/mode/{mode}": {
            "post": {
                "description": "Redraws the current asset from cached records in another mode",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Switch display mode",
                "parameters": [
                    {"enum": ["fechamento", "abertura", "maximo", "minimo", "volume"], "type": "string", "description": "Display mode", "name": "mode", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StateResponse"}},
                    "400": {"description": "Unknown mode", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "422": {"description": "Records lack the field", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/state": {
            "get": {
                "description": "Returns the view state of the caller's session",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dashboard state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StateResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "description": "Always returns OK if the service is running",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Returns ready once the ticker directory was loaded from the market API",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "chart.Config": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "example": "line"},
                "data": {"type": "object"},
                "options": {"type": "object"}
            }
        },
        "dto.DirectoryResponse": {
            "type": "object",
            "properties": {
                "total": {"type": "integer", "example": 3},
                "query": {"type": "string", "example": "ETR"},
                "tickers": {"type": "array", "items": {"type": "string"}, "example": ["PETR4"]}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "failed to load asset"},
                "error": {"type": "string", "example": "market api: status 404"},
                "timestamp": {"type": "string", "example": "2025-01-02T15:04:05Z"}
            }
        },
        "dto.ExportDataURLResponse": {
            "type": "object",
            "properties": {
                "filename": {"type": "string", "example": "grafico_PETR4_fechamento.png"},
                "data_url": {"type": "string", "example": "data:image/png;base64,iVBORw0KGgo="}
            }
        },
        "dto.ModeButton": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "example": "fechamento"},
                "label": {"type": "string", "example": "Preço de Fechamento"},
                "active": {"type": "boolean", "example": true}
            }
        },
        "dto.StateResponse": {
            "type": "object",
            "properties": {
                "view": {"type": "string", "example": "dashboard"},
                "ticker": {"type": "string", "example": "PETR4"},
                "mode": {"type": "string", "example": "fechamento"},
                "modes": {"type": "array", "items": {"$ref": "#/definitions/dto.ModeButton"}},
                "records": {"type": "integer", "example": 250},
                "has_chart": {"type": "boolean", "example": true},
                "viewport": {"$ref": "#/definitions/dto.ViewportResponse"},
                "generation": {"type": "integer", "example": 2}
            }
        },
        "dto.ViewportRequest": {
            "type": "object",
            "required": ["max", "min"],
            "properties": {
                "min": {"type": "integer", "example": 10},
                "max": {"type": "integer", "example": 60}
            }
        },
        "dto.ViewportResponse": {
            "type": "object",
            "properties": {
                "min": {"type": "integer", "example": 0},
                "max": {"type": "integer", "example": 249}
            }
        }
    },
    "tags": [
        {"description": "Ticker directory, asset selection and display modes", "name": "dashboard"},
        {"description": "Chart configuration, viewport and PNG export", "name": "chart"},
        {"description": "Liveness and readiness probes", "name": "health"}
    ]
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "b3view API",
	Description:      "B3 ticker dashboard: directory search, asset charts, display modes and PNG export.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
