// Package docs registers the OpenAPI description of the manufacturing API.
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/catalog/uoms": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "List units of measure",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/catalog.UomResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "Create a unit of measure",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Unit",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/catalog.CreateUomRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/catalog.UomResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/catalog/products": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "List products",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Code or name",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "page_size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/catalog.ProductResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "Create a product",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Product",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/catalog.CreateProductRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/catalog.ProductResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/catalog/products/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "Get a product",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Product ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/catalog.ProductResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/catalog/products/{id}/boms": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "List the BOMs of a product",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Product ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/catalog.ProductBomResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "Attach a BOM to a product",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Product ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "BOM link",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/catalog.AddProductBomRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/catalog.ProductBomResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/production/boms": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "production"
                ],
                "summary": "Create a bill of materials",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "BOM",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/production.CreateBomRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/production.BomResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/production/boms/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "production"
                ],
                "summary": "Get a bill of materials",
                "parameters": [
                    {
                        "type": "string",
                        "description": "BOM ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/production.BomResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/production/routes": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "production"
                ],
                "summary": "Create a route",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Route",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/production.CreateRouteRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/production.RouteResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/production/routes/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "production"
                ],
                "summary": "Get a route",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Route ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/production.RouteResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/production/processes": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "production"
                ],
                "summary": "List production processes",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Name",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "page_size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/production.ProcessResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/production/processes/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "production"
                ],
                "summary": "Get a production process",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Process ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/production.ProcessResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/cost-plans": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "cost-plans"
                ],
                "summary": "List cost plans",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Number or name",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Product ID",
                        "name": "product_id",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "State",
                        "name": "state",
                        "in": "query",
                        "enum": [
                            "draft",
                            "computed",
                            "done"
                        ]
                    },
                    {
                        "type": "integer",
                        "description": "Page",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "page_size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/costplan.PlanListItemResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "cost-plans"
                ],
                "summary": "Create a cost plan",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Cost plan",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/costplan.CreatePlanRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/costplan.PlanResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/cost-plans/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "cost-plans"
                ],
                "summary": "Get a cost plan with its lines",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Cost plan ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/costplan.PlanResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "cost-plans"
                ],
                "summary": "Update a cost plan",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Cost plan ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Changes",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/costplan.UpdatePlanRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/costplan.PlanResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "cost-plans"
                ],
                "summary": "Delete a cost plan",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Cost plan ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/cost-plans/{id}/compute": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "cost-plans"
                ],
                "summary": "Recompute the cost of a plan",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Cost plan ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/costplan.PlanResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/cost-plans/copy": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "cost-plans"
                ],
                "summary": "Duplicate cost plans",
                "description": "The copies get new numbers and never keep the source process.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Plans to copy",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/costplan.CopyPlansRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/costplan.PlanResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/cost-plans/on-change/product": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "cost-plans"
                ],
                "summary": "Recompute the form after the product changed",
                "description": "Clears the process field when the product changes.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Form state",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/costplan.PlanForm"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/costplan.PlanFormResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/cost-plans/on-change/process": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "cost-plans"
                ],
                "summary": "Recompute the form after the process changed",
                "description": "Copies the process BOM and route into the plan and rebuilds the derived BOM lines.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Form state",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/costplan.PlanForm"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/costplan.PlanFormResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/cost-plans/{id}/create-process": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "cost-plans"
                ],
                "summary": "Convert a cost plan into a production process",
                "description": "Returns 409 with a warning_key when the plan already has a process.\nAcknowledge the key through POST /warnings and retry to create another one.",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Cost plan ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Process name",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/costplan.CreateProcessRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/production.ProcessResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/wizards/create-process/start": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wizards"
                ],
                "summary": "Open the create-process wizard",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Active cost plan",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.WizardStartRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/costplan.WizardView"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/wizards/create-process/process": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "wizards"
                ],
                "summary": "Submit the create-process wizard",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Wizard values",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.WizardProcessRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/costplan.WizardResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/warnings": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "warnings"
                ],
                "summary": "Acknowledge a user warning",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Warning key",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/warning.AcknowledgeRequest"
                        }
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/system/ping": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "system"
                ],
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/handler.PingResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "handler.APIResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {},
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                }
            }
        },
        "dto.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "request_id": {
                    "type": "string"
                },
                "warning_key": {
                    "type": "string"
                },
                "details": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.ValidationDetail"
                    }
                }
            }
        },
        "dto.ValidationDetail": {
            "type": "object",
            "properties": {
                "field": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "dto.Meta": {
            "type": "object",
            "properties": {
                "total": {
                    "type": "integer"
                },
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_pages": {
                    "type": "integer"
                }
            }
        },
        "handler.PingResponse": {
            "type": "object",
            "properties": {
                "message": {
                    "type": "string"
                },
                "timestamp": {
                    "type": "string"
                }
            }
        },
        "handler.WizardStartRequest": {
            "type": "object",
            "properties": {
                "plan_id": {
                    "type": "string",
                    "format": "uuid"
                }
            }
        },
        "handler.WizardProcessRequest": {
            "type": "object",
            "properties": {
                "plan_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                }
            }
        },
        "warning.AcknowledgeRequest": {
            "type": "object",
            "properties": {
                "key": {
                    "type": "string"
                },
                "always": {
                    "type": "boolean"
                }
            },
            "required": [
                "key"
            ]
        },
        "catalog.CreateUomRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "symbol": {
                    "type": "string"
                },
                "category": {
                    "type": "string"
                }
            },
            "required": [
                "name",
                "symbol"
            ]
        },
        "catalog.UomResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "symbol": {
                    "type": "string"
                },
                "category": {
                    "type": "string"
                }
            }
        },
        "catalog.CreateProductRequest": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "default_uom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "producible": {
                    "type": "boolean"
                },
                "cost_price": {
                    "type": "string",
                    "example": "10.5"
                }
            },
            "required": [
                "name",
                "default_uom_id"
            ]
        },
        "catalog.ProductResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "tenant_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "code": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "rec_name": {
                    "type": "string"
                },
                "default_uom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "producible": {
                    "type": "boolean"
                },
                "cost_price": {
                    "type": "string",
                    "example": "10.5"
                }
            }
        },
        "catalog.AddProductBomRequest": {
            "type": "object",
            "properties": {
                "bom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "route_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "sequence": {
                    "type": "integer"
                }
            },
            "required": [
                "bom_id"
            ]
        },
        "catalog.ProductBomResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "sequence": {
                    "type": "integer"
                },
                "bom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "route_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "process_id": {
                    "type": "string",
                    "format": "uuid"
                }
            }
        },
        "production.BomLineRequest": {
            "type": "object",
            "properties": {
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "string",
                    "example": "10.5"
                },
                "uom_id": {
                    "type": "string",
                    "format": "uuid"
                }
            },
            "required": [
                "product_id",
                "uom_id"
            ]
        },
        "production.CreateBomRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "inputs": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/production.BomLineRequest"
                    }
                },
                "outputs": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/production.BomLineRequest"
                    }
                }
            },
            "required": [
                "name"
            ]
        },
        "production.BomLineResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "string",
                    "example": "10.5"
                },
                "uom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "step_id": {
                    "type": "string",
                    "format": "uuid"
                }
            }
        },
        "production.BomResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "inputs": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/production.BomLineResponse"
                    }
                },
                "outputs": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/production.BomLineResponse"
                    }
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "production.RouteOperationRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "work_center_category": {
                    "type": "string"
                },
                "time": {
                    "type": "string",
                    "example": "10.5"
                },
                "time_uom": {
                    "type": "string"
                },
                "quantity": {
                    "type": "string",
                    "example": "10.5"
                }
            },
            "required": [
                "name"
            ]
        },
        "production.CreateRouteRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "uom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "operations": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/production.RouteOperationRequest"
                    }
                }
            },
            "required": [
                "name",
                "uom_id"
            ]
        },
        "production.RouteOperationResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "sequence": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "work_center_category": {
                    "type": "string"
                },
                "time": {
                    "type": "string",
                    "example": "10.5"
                },
                "time_uom": {
                    "type": "string"
                },
                "quantity": {
                    "type": "string",
                    "example": "10.5"
                },
                "step_id": {
                    "type": "string",
                    "format": "uuid"
                }
            }
        },
        "production.RouteResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "uom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "operations": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/production.RouteOperationResponse"
                    }
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "production.StepResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "sequence": {
                    "type": "integer"
                },
                "inputs": {
                    "type": "array",
                    "items": {
                        "type": "string",
                        "format": "uuid"
                    }
                },
                "outputs": {
                    "type": "array",
                    "items": {
                        "type": "string",
                        "format": "uuid"
                    }
                },
                "operations": {
                    "type": "array",
                    "items": {
                        "type": "string",
                        "format": "uuid"
                    }
                }
            }
        },
        "production.ProcessResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "tenant_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "uom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "bom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "route_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "active": {
                    "type": "boolean"
                },
                "steps": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/production.StepResponse"
                    }
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "version": {
                    "type": "integer"
                }
            }
        },
        "costplan.ProductLineRequest": {
            "type": "object",
            "properties": {
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "quantity": {
                    "type": "string",
                    "example": "10.5"
                },
                "uom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "cost_price": {
                    "type": "string",
                    "example": "10.5"
                },
                "children": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/costplan.ProductLineRequest"
                    }
                }
            },
            "required": [
                "product_id",
                "uom_id"
            ]
        },
        "costplan.OperationLineRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "work_center_category": {
                    "type": "string"
                },
                "time": {
                    "type": "string",
                    "example": "10.5"
                },
                "time_uom": {
                    "type": "string"
                },
                "quantity": {
                    "type": "string",
                    "example": "10.5"
                },
                "cost_per_hour": {
                    "type": "string",
                    "example": "10.5"
                }
            },
            "required": [
                "name"
            ]
        },
        "costplan.CreatePlanRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "string",
                    "example": "10.5"
                },
                "bom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "route_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "products": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/costplan.ProductLineRequest"
                    }
                },
                "operations": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/costplan.OperationLineRequest"
                    }
                }
            }
        },
        "costplan.UpdatePlanRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "string",
                    "example": "10.5"
                },
                "bom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "route_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "process_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "clear_process": {
                    "type": "boolean"
                },
                "products": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/costplan.ProductLineRequest"
                    }
                },
                "operations": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/costplan.OperationLineRequest"
                    }
                }
            }
        },
        "costplan.CopyPlansRequest": {
            "type": "object",
            "properties": {
                "ids": {
                    "type": "array",
                    "items": {
                        "type": "string",
                        "format": "uuid"
                    }
                }
            },
            "required": [
                "ids"
            ]
        },
        "costplan.CreateProcessRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                }
            },
            "required": [
                "name"
            ]
        },
        "costplan.PlanBomLineDTO": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "bom_id": {
                    "type": "string",
                    "format": "uuid"
                }
            }
        },
        "costplan.FieldState": {
            "type": "object",
            "properties": {
                "readonly": {
                    "type": "boolean"
                }
            }
        },
        "costplan.PlanProductLineResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "quantity": {
                    "type": "string",
                    "example": "10.5"
                },
                "uom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "cost_price": {
                    "type": "string",
                    "example": "10.5"
                },
                "parent_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "sequence": {
                    "type": "integer"
                }
            }
        },
        "costplan.PlanOperationLineResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "work_center_category": {
                    "type": "string"
                },
                "time": {
                    "type": "string",
                    "example": "10.5"
                },
                "time_uom": {
                    "type": "string"
                },
                "quantity": {
                    "type": "string",
                    "example": "10.5"
                },
                "cost_per_hour": {
                    "type": "string",
                    "example": "10.5"
                },
                "sequence": {
                    "type": "integer"
                }
            }
        },
        "costplan.PlanResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "tenant_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "number": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "rec_name": {
                    "type": "string"
                },
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "string",
                    "example": "10.5"
                },
                "uom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "bom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "route_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "process_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "state": {
                    "type": "string",
                    "enum": [
                        "draft",
                        "computed",
                        "done"
                    ]
                },
                "products": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/costplan.PlanProductLineResponse"
                    }
                },
                "operations": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/costplan.PlanOperationLineResponse"
                    }
                },
                "boms": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/costplan.PlanBomLineDTO"
                    }
                },
                "material_cost": {
                    "type": "string",
                    "example": "10.5"
                },
                "operation_cost": {
                    "type": "string",
                    "example": "10.5"
                },
                "total_cost": {
                    "type": "string",
                    "example": "10.5"
                },
                "unit_cost": {
                    "type": "string",
                    "example": "10.5"
                },
                "field_states": {
                    "type": "object",
                    "additionalProperties": {
                        "$ref": "#/definitions/costplan.FieldState"
                    }
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "version": {
                    "type": "integer"
                }
            }
        },
        "costplan.PlanListItemResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "number": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "process_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "state": {
                    "type": "string"
                },
                "total_cost": {
                    "type": "string",
                    "example": "10.5"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "costplan.PlanForm": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "string",
                    "example": "10.5"
                },
                "uom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "bom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "route_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "process_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "boms": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/costplan.PlanBomLineDTO"
                    }
                }
            }
        },
        "costplan.PlanFormResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "product_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "string",
                    "example": "10.5"
                },
                "uom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "bom_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "route_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "process_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "boms": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/costplan.PlanBomLineDTO"
                    }
                },
                "field_states": {
                    "type": "object",
                    "additionalProperties": {
                        "$ref": "#/definitions/costplan.FieldState"
                    }
                },
                "deleted_bom_lines": {
                    "type": "integer"
                }
            }
        },
        "costplan.WizardButton": {
            "type": "object",
            "properties": {
                "label": {
                    "type": "string"
                },
                "state": {
                    "type": "string"
                },
                "icon": {
                    "type": "string"
                },
                "default": {
                    "type": "boolean"
                }
            }
        },
        "costplan.WizardField": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "label": {
                    "type": "string"
                },
                "required": {
                    "type": "boolean"
                }
            }
        },
        "costplan.WizardView": {
            "type": "object",
            "properties": {
                "state": {
                    "type": "string"
                },
                "fields": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/costplan.WizardField"
                    }
                },
                "buttons": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/costplan.WizardButton"
                    }
                },
                "defaults": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                }
            }
        },
        "costplan.ActionView": {
            "type": "object",
            "properties": {
                "type": {
                    "type": "string"
                }
            }
        },
        "costplan.WizardAction": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "model": {
                    "type": "string"
                },
                "views": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/costplan.ActionView"
                    }
                },
                "res_id": {
                    "type": "array",
                    "items": {
                        "type": "string",
                        "format": "uuid"
                    }
                }
            }
        },
        "costplan.WizardResult": {
            "type": "object",
            "properties": {
                "state": {
                    "type": "string"
                },
                "action": {
                    "$ref": "#/definitions/costplan.WizardAction"
                },
                "process": {
                    "$ref": "#/definitions/production.ProcessResponse"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer token authentication. Format: \"Bearer {token}\"",
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Manufacturing API",
	Description:      "Cost plans and their conversion into production processes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
