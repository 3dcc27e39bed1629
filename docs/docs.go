// Package docs registers the OpenAPI document served under /swagger/.
// Regenerate with `swag init -g cmd/api/main.go` after changing controller annotations.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/api/events": {
            "get": {"tags": ["events"], "summary": "List events", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["events"], "summary": "Create an event", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "bad_request"}}}
        },
        "/api/events/{eventID}": {
            "get": {"tags": ["events"], "summary": "Get an event", "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "not_found"}}}
        },
        "/api/events/{eventID}/sessions": {
            "get": {"tags": ["sessions"], "summary": "List the sessions of an event", "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}, {"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "page_size", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["sessions"], "summary": "Create a session", "security": [{"BearerAuth": []}], "parameters": [{"type": "integer", "name": "eventID", "in": "path", "required": true}, {"type": "string", "name": "Idempotency-Key", "in": "header"}], "responses": {"201": {"description": "Created"}, "200": {"description": "Replayed"}, "400": {"description": "bad_request"}, "409": {"description": "conflict"}, "500": {"description": "internal_error"}}}
        },
        "/api/events/{eventID}/sessions/draft": {
            "get": {"tags": ["sessions"], "summary": "Get the default session draft", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/events/{eventID}/calendar": {
            "get": {"tags": ["sessions"], "summary": "Event calendar", "responses": {"200": {"description": "OK"}}}
        },
        "/api/sessions/{sessionID}": {
            "get": {"tags": ["sessions"], "summary": "Get a session", "responses": {"200": {"description": "OK"}, "404": {"description": "not_found"}}}
        },
        "/api/createSession": {
            "post": {"tags": ["sessions"], "summary": "Insert a session directly", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Event created"}, "401": {"description": "unauthorized"}, "500": {"description": "internal_error"}}}
        },
        "/api/sessions/{sessionID}/rsvps": {
            "post": {"tags": ["rsvps"], "summary": "RSVP to a session", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/api/sessions/{sessionID}/rsvp": {
            "get": {"tags": ["rsvps"], "summary": "The viewer's RSVP for a session", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/rsvps/{rsvpID}": {
            "delete": {"tags": ["rsvps"], "summary": "Cancel an RSVP", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "forbidden"}}}
        },
        "/api/rsvps/{rsvpID}/qr": {
            "get": {"tags": ["rsvps"], "summary": "RSVP check-in badge", "produces": ["image/png"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "PNG"}}}
        },
        "/api/rsvps/check-in": {
            "post": {"tags": ["rsvps"], "summary": "Check in a scanned badge", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "bad_request"}, "403": {"description": "forbidden"}, "404": {"description": "not_found"}}}
        },
        "/api/sessions/{sessionID}/favorite": {
            "post": {"tags": ["favorites"], "summary": "Favorite a session", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["favorites"], "summary": "Unfavorite a session", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/favorites": {
            "get": {"tags": ["favorites"], "summary": "The viewer's favorite sessions", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/pretix-create-event": {
            "post": {"tags": ["ticketing"], "summary": "Create a ticketing vendor event", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Vendor JSON"}, "500": {"description": "Internal server error"}}}
        },
        "/api/pretix-create-subevent": {
            "post": {"tags": ["ticketing"], "summary": "Create a ticketing vendor sub-event", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Vendor JSON"}, "500": {"description": "Internal server error"}}}
        },
        "/api/pretix-create-quota": {
            "post": {"tags": ["ticketing"], "summary": "Create a ticketing vendor quota", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Vendor JSON"}, "500": {"description": "Internal server error"}}}
        },
        "/auth/signup": {
            "post": {"tags": ["auth"], "summary": "Sign up an organizer", "responses": {"201": {"description": "Created"}, "409": {"description": "conflict"}}}
        },
        "/auth/login": {
            "post": {"tags": ["auth"], "summary": "Log in", "responses": {"200": {"description": "OK"}, "401": {"description": "unauthorized"}}}
        },
        "/auth/passport/requests": {
            "post": {"tags": ["auth"], "summary": "Start a passport login", "responses": {"201": {"description": "Created"}}}
        },
        "/auth/passport/login": {
            "post": {"tags": ["auth"], "summary": "Log in with a passport proof", "responses": {"200": {"description": "OK"}, "401": {"description": "unauthorized"}, "403": {"description": "forbidden"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Conference Sessions API",
	Description:      "Sessions, RSVPs and ticketing for conference events.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
