// Package docs holds the Swagger description of the shop's JSON API.
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
        "/api/healthcheck": {
            "get": {
                "description": "Reports that the process is serving. Does not contact the game server.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HealthResponse"}}
                }
            }
        },
        "/api/register": {
            "post": {
                "description": "Checks the player exists on the game server and issues a new access token. A previous token for the same player stops being valid. Requires the site session cookie.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["shop"],
                "summary": "Register a player",
                "parameters": [
                    {"description": "Player", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TokenResponse"}},
                    "400": {"description": "Invalid username", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "401": {"description": "No site session", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Player not found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Game server unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/buy_xp": {
            "post": {
                "description": "Withdraws amount from the player's balance and grants floor(amount * rate) XP in skill. If the grant fails after the withdrawal a single refund is issued. Requires the site session cookie.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["shop"],
                "summary": "Buy XP",
                "parameters": [
                    {"type": "string", "description": "In-game username", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "description": "Access token from registration", "name": "token", "in": "formData", "required": true},
                    {"type": "string", "description": "Skill id", "name": "skill", "in": "formData", "required": true},
                    {"type": "number", "description": "Currency to spend", "name": "amount", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "XP granted", "schema": {"$ref": "#/definitions/types.PurchaseResponse"}},
                    "400": {"description": "Invalid skill, invalid amount or insufficient funds. Nothing was withdrawn", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "401": {"description": "Invalid session. Nothing was withdrawn", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "402": {"description": "Withdrawal not confirmed. No refund was issued", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Balance could not be read. Nothing was withdrawn", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Game server unavailable. If the withdrawal succeeded a refund was issued", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "debug_message": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "types.PurchaseResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "new_balance": {"type": "number"},
                "success": {"type": "boolean"}
            }
        },
        "types.RegisterRequest": {
            "type": "object",
            "required": ["username"],
            "properties": {
                "username": {"type": "string"}
            }
        },
        "types.TokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "XP Shop API",
	Description:      "Spend in-game currency on skill XP.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
