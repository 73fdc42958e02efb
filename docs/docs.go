// Package docs is generated by swaggo/swag from the handler annotations.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/airports": {
            "get": {"tags": ["airports"], "summary": "List airports", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["airports"], "summary": "Create an airport", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/airports/{id}": {
            "get": {"tags": ["airports"], "summary": "Get an airport", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["airports"], "summary": "Replace an airport (staff)", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["airports"], "summary": "Patch an airport (staff)", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/airplane-types": {
            "get": {"tags": ["airplane-types"], "summary": "List airplane types", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["airplane-types"], "summary": "Create an airplane type", "responses": {"201": {"description": "Created"}}}
        },
        "/api/airplanes": {
            "get": {"tags": ["airplanes"], "summary": "List airplanes", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["airplanes"], "summary": "Create an airplane", "responses": {"201": {"description": "Created"}}}
        },
        "/api/airplanes/{id}/upload-image": {
            "post": {"security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"], "tags": ["airplanes"], "summary": "Upload an airplane image (staff)", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}, {"type": "file", "name": "image", "in": "formData", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/crew": {
            "get": {"tags": ["crew"], "summary": "List crew", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["crew"], "summary": "Create a crew member", "responses": {"201": {"description": "Created"}}}
        },
        "/api/routes": {
            "get": {"tags": ["routes"], "summary": "List routes", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["routes"], "summary": "Create a route", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/api/flights": {
            "get": {"tags": ["flights"], "summary": "List flights", "parameters": [{"type": "string", "name": "source_airport", "in": "query"}, {"type": "string", "name": "destination_airport", "in": "query"}, {"type": "string", "name": "departure_date", "in": "query"}, {"type": "string", "name": "crew", "in": "query"}, {"type": "string", "name": "airplane_type", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["flights"], "summary": "Create a flight (staff)", "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}}}
        },
        "/api/flights/{id}": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["flights"], "summary": "Delete a flight (staff)", "parameters": [{"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}}}
        },
        "/api/orders": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["orders"], "summary": "List own orders", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["orders"], "summary": "Book an order with its tickets", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/api/tickets": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tickets"], "summary": "List tickets", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["tickets"], "summary": "Book a ticket on an own order", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/api/user/register": {
            "post": {"tags": ["user"], "summary": "Register a user", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/api/user/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["user"], "summary": "Current user", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/user/token": {
            "post": {"tags": ["user"], "summary": "Obtain an access/refresh token pair", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/user/token/refresh": {
            "post": {"tags": ["user"], "summary": "Exchange a refresh token for a new access token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/user/token/verify": {
            "post": {"tags": ["user"], "summary": "Verify a token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/user/token/logout": {
            "post": {"tags": ["user"], "summary": "Blacklist a refresh token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "airport service",
	Description:      "Airline ticket booking API: airports, airplanes, crew, routes, flights, orders and tickets.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
