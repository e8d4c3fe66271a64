// Package docs registers the API description served at /swagger/index.html
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
        "/ticks": {
            "get": {
                "description": "Counts ticks between start and end in the unit.",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "RFC3339, date, epoch, now, or an integer as epoch milliseconds (1997 is 1970-01-01T00:00:01.997Z, not a year)", "name": "start", "in": "query"},
                    {"type": "string", "description": "as start, now if omitted", "name": "end", "in": "query"},
                    {"type": "string", "description": "years|months|days|hours|minutes|seconds|milliseconds|microseconds|nanoseconds", "name": "unit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ticks"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/breakdown": {
            "get": {
                "description": "Splits elapsed time into calendar years, months, days, hours, minutes, seconds.",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "start", "in": "query"},
                    {"type": "string", "name": "end", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/breakdown/all": {
            "get": {
                "description": "Counts elapsed time at every scale from millennia to nanoseconds.",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "start", "in": "query"},
                    {"type": "string", "name": "end", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/pretty": {
            "get": {
                "description": "Renders elapsed time as \"2 years, 3 months, 1 day\".",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "start", "in": "query"},
                    {"type": "string", "name": "end", "in": "query"},
                    {"type": "integer", "description": "units to keep, 0 keeps all", "name": "maxUnits", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/report": {
            "get": {
                "description": "Renders all sections at once.",
                "produces": ["application/json", "text/plain"],
                "parameters": [
                    {"type": "string", "name": "start", "in": "query"},
                    {"type": "string", "name": "end", "in": "query"},
                    {"type": "string", "name": "unit", "in": "query"},
                    {"type": "integer", "name": "maxUnits", "in": "query"},
                    {"type": "string", "description": "text|json", "name": "format", "in": "query"},
                    {"type": "string", "description": "comma separated: ticks,breakdown,all,pretty", "name": "sections", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/version": {
            "get": {
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/stats": {
            "get": {
                "description": "Returns build info and the last logged errors.",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "error": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "ticks": {
            "type": "object",
            "properties": {
                "start": {"type": "string"},
                "end": {"type": "string"},
                "unit": {"type": "string"},
                "ticks": {"type": "number"},
                "wholeTicks": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "TDT API",
	Description:      "Elapsed time between two instants.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
