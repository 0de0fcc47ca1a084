package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/books": {
            "get": {
                "tags": ["books"],
                "summary": "List books",
                "description": "List every book in the catalog in insertion order",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/entities.Book"}
                        }
                    }
                }
            },
            "post": {
                "tags": ["books"],
                "summary": "Add a book",
                "description": "Add a book to the catalog. The ID is assigned when omitted or unparsable.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "description": "Book data",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.AddBookRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/ports.AddBookResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            },
            "delete": {
                "tags": ["books"],
                "summary": "Delete a book",
                "description": "Delete the book with the given ID",
                "produces": ["application/json"],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Book ID",
                        "name": "id",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/http.MessageResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            }
        },
        "/settings": {
            "get": {
                "tags": ["settings"],
                "summary": "Get settings",
                "description": "Get the display settings and the selectable backgrounds",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/ports.SettingsResponse"}
                    }
                }
            },
            "post": {
                "tags": ["settings"],
                "summary": "Save settings",
                "description": "Replace the display settings",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "description": "Settings",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.SaveSettingsRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/http.SaveSettingsResponse"}
                    }
                }
            }
        },
        "/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "description": "Credentials",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.RegisterRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/http.MessageResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            }
        },
        "/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "description": "Check credentials against the configured users, then the registered ones",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "description": "Credentials",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/ports.LoginResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["auth"],
                "summary": "List users",
                "description": "List configured and registered usernames. Passwords are never returned.",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/entities.DirectoryEntry"}
                        }
                    }
                }
            }
        },
        "/check-admin": {
            "get": {
                "tags": ["auth"],
                "summary": "Check admin",
                "produces": ["application/json"],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Username",
                        "name": "username",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/http.CheckAdminResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "entities.Book": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "author": {"type": "string"},
                "genre": {"type": "string"},
                "description": {"type": "string"},
                "cover": {"type": "string"},
                "addedBy": {"type": "string"}
            }
        },
        "entities.Settings": {
            "type": "object",
            "properties": {
                "background": {"type": "string", "x-nullable": true},
                "backgroundType": {"type": "string"}
            }
        },
        "entities.Background": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "entities.DirectoryEntry": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "source": {"type": "string", "enum": ["env", "database"]},
                "created_at": {"type": "integer"}
            }
        },
        "ports.AddBookRequest": {
            "type": "object",
            "required": ["title", "author", "genre"],
            "properties": {
                "title": {"type": "string"},
                "author": {"type": "string"},
                "genre": {"type": "string"},
                "id": {"type": "string"},
                "description": {"type": "string"},
                "cover": {"type": "string"},
                "added_by": {"type": "string"}
            }
        },
        "ports.AddBookResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "id": {"type": "integer"}
            }
        },
        "ports.SaveSettingsRequest": {
            "type": "object",
            "properties": {
                "background": {"type": "string"},
                "backgroundType": {"type": "string"}
            }
        },
        "ports.SettingsResponse": {
            "type": "object",
            "properties": {
                "settings": {"$ref": "#/definitions/entities.Settings"},
                "availableBackgrounds": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/entities.Background"}
                }
            }
        },
        "ports.RegisterRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ports.LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ports.LoginResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "username": {"type": "string"},
                "source": {"type": "string", "enum": ["env", "database"]}
            }
        },
        "http.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "http.SaveSettingsResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "settings": {"$ref": "#/definitions/entities.Settings"}
            }
        },
        "http.CheckAdminResponse": {
            "type": "object",
            "properties": {
                "isAdmin": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "Cosmic Library API",
	Description:      "Book catalog, display settings and user registration for the Cosmic Library.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
