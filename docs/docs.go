// Package docs holds the generated swagger spec. Regenerate with:
//
//	swag init -g cmd/server/main.go
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
        "/auth/check": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Whether any users exist",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/clients": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "List active clients",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/clients/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Search clients by name",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/clients/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Client details",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/payments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Payments"],
                "summary": "List payments",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/payments/process": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Payments"],
                "summary": "Process a payment",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"},
                    "409": {"description": "Conflict"},
                    "500": {"description": "Internal Server Error"}
                }
            }
        },
        "/payments/total-last": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Payments"],
                "summary": "Total of all payments",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/receipt/by-id/{payment_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Receipts"],
                "summary": "Receipt by payment id",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/receipt/by-id/{payment_id}/pdf": {
            "get": {
                "produces": ["application/pdf"],
                "tags": ["Receipts"],
                "summary": "Printable receipt PDF",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/settings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Settings"],
                "summary": "Instance settings",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/create": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Create an operator account",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/users/list": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "List users",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Generator Payments API",
	Description:      "Multi-tenant billing backend for utility-generator operators.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
