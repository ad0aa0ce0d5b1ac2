package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "QC Report API",
        "description": "Inspection records, supplier statistics and account administration",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Records", "description": "QC inspection records"},
        {"name": "Statistics", "description": "Per-supplier quality summaries"},
        {"name": "Admin", "description": "Account provisioning"},
        {"name": "SQL Server", "description": "Warehouse product lookups"},
        {"name": "QC2", "description": "Read-only spreadsheet view"},
        {"name": "System", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Health check with a metrics snapshot",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["System"],
                "summary": "Readiness check against the record store",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Record store unavailable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "Exposition text"}}
            }
        },
        "/api/admin-check": {
            "get": {
                "tags": ["Admin"],
                "summary": "Report whether the caller is an admin",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/users": {
            "get": {
                "tags": ["Admin"],
                "summary": "List provider accounts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/api/create-user": {
            "post": {
                "tags": ["Admin"],
                "summary": "Create an account and email a setup link",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}],
                "responses": {
                    "200": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request"}
                }
            }
        },
        "/api/update-user": {
            "put": {
                "tags": ["Admin"],
                "summary": "Update an account's email, password or display name",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid request"}}
            }
        },
        "/api/delete-user": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete an account",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "userId", "type": "string"}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid request"}}
            }
        },
        "/api/send-credentials": {
            "post": {
                "tags": ["Admin"],
                "summary": "Email credentials to an existing account",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "500": {"description": "Failed to send email"}}
            }
        },
        "/api/statistics/suppliers": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Supplier statistics",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "search", "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Only admins can view statistics"}
                }
            }
        },
        "/api/records/save": {
            "post": {
                "tags": ["Records"],
                "summary": "Save an inspection record",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SaveRecordRequest"}}],
                "responses": {"200": {"description": "Saved"}, "400": {"description": "Invalid request"}}
            }
        },
        "/api/records": {
            "get": {
                "tags": ["Records"],
                "summary": "List records visible to the caller",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "limit", "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Records"],
                "summary": "Delete a record",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "id", "type": "integer"}],
                "responses": {"200": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/api/records/update": {
            "patch": {
                "tags": ["Records"],
                "summary": "Partially update a record",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Updated"}, "404": {"description": "Not found"}}
            }
        },
        "/api/records/export": {
            "get": {
                "tags": ["Records"],
                "summary": "Export visible records as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]},
                    {"in": "query", "name": "limit", "type": "integer"}
                ],
                "responses": {"200": {"description": "File"}, "400": {"description": "Invalid format"}}
            }
        },
        "/api/sql-server/product": {
            "get": {
                "tags": ["SQL Server"],
                "summary": "Look up shipment products by barcode",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "barcode", "type": "string", "required": true},
                    {"in": "query", "name": "mock", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Barcode is required"}}
            }
        },
        "/api/sql-server/inspection-records": {
            "get": {
                "tags": ["SQL Server"],
                "summary": "Inspection records from the warehouse",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/sql-server/test": {
            "get": {
                "tags": ["SQL Server"],
                "summary": "Probe the warehouse connection",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Connected"}, "500": {"description": "Connection failed"}}
            }
        },
        "/api/excel": {
            "get": {
                "tags": ["QC2"],
                "summary": "Parsed workbooks from the QC2 directory",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "500": {"description": "Unable to load Excel files."}}
            }
        }
    },
    "definitions": {
        "CreateUserRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "SaveRecordRequest": {
            "type": "object",
            "properties": {
                "partscode": {"type": "string"},
                "supplier": {"type": "string"},
                "poNumber": {"type": "string"},
                "deliveryDate": {"type": "string"},
                "inspectionDate": {"type": "string"},
                "deliveryQuantity": {"type": "string"},
                "returnQuantity": {"type": "string"},
                "lotNumber": {"type": "string"},
                "lotQuantity": {"type": "string"},
                "inspector": {"type": "string"},
                "sampleSize": {"type": "string"},
                "defectiveCount": {"type": "string"},
                "judgement": {"type": "string"},
                "strictnessAdjustment": {"type": "string"},
                "destination": {"type": "string"},
                "groupLeaderConfirmation": {"type": "string"},
                "qualitySummary": {"type": "string"},
                "remarks": {"type": "string"},
                "selections": {"type": "object", "properties": {"A": {"type": "boolean"}, "B": {"type": "boolean"}, "C": {"type": "boolean"}, "D": {"type": "boolean"}}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "count": {"type": "integer"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
