// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with `swag init -g cmd/solarweather/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/dataajax/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dashboard snapshot",
                "parameters": [
                    {"enum": ["weather", "solar"], "type": "string", "name": "dashboard", "in": "query"},
                    {"type": "string", "name": "history", "in": "query"},
                    {"type": "integer", "name": "timestamp", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "500": {"description": "Internal Server Error"}
                }
            }
        },
        "/weatherstation/updateweatherstation.php": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["station"],
                "summary": "Weather station upload",
                "parameters": [
                    {"type": "string", "name": "ID", "in": "query"},
                    {"type": "string", "name": "PASSWORD", "in": "query"},
                    {"type": "string", "name": "dateutc", "in": "query", "required": true},
                    {"type": "number", "name": "tempf", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "success"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"},
                    "429": {"description": "Too Many Requests"}
                }
            }
        },
        "/ws": {
            "get": {
                "tags": ["dashboard"],
                "summary": "Stream dashboard snapshots",
                "parameters": [
                    {"type": "string", "name": "dashboard", "in": "query"},
                    {"type": "string", "name": "interval", "in": "query"},
                    {"type": "integer", "name": "interval_ms", "in": "query"}
                ],
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        },
        "/auth/sign-up": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register an operator",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/auth/sign-in": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/v1/readings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["readings"],
                "summary": "List raw readings",
                "parameters": [
                    {"type": "string", "name": "metric", "in": "query", "required": true},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/v1/admin/cache/rebuild": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Rebuild caches",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}
            }
        },
        "/api/v1/admin/backup": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Back up database",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.BackupRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}
            }
        }
    },
    "definitions": {
        "credentials": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "handlers.BackupRequest": {
            "type": "object",
            "properties": {"path": {"type": "string", "example": "/var/backups/solarweather.db"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "SolarWeather API",
	Description:      "Weather station ingest, solar inverter statistics and dashboard data.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
