package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Coaching Center API",
        "description": "Multi-tenant student, payment and results management for coaching centers",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Students", "description": "Student roster, unpaid list and export"},
        {"name": "Payments", "description": "Per-period payment status and dues"},
        {"name": "Results", "description": "Marks entry with guardian SMS"},
        {"name": "Batches", "description": "Class groups and their fee"},
        {"name": "Attendance", "description": "Batch-day absence sheets"},
        {"name": "Auth", "description": "Owner profile"},
        {"name": "Guardians", "description": "Guardian portal access"}
    ],
    "paths": {
        "/students": {
            "get": {
                "tags": ["Students"], "summary": "List students", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "headers": {"X-Cache": {"type": "string"}}, "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"], "summary": "Admit a student", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid payload"}, "404": {"description": "Batch not found"}}
            }
        },
        "/students/unpaid": {
            "get": {
                "tags": ["Students"], "summary": "Students whose current period is unpaid", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/students/export": {
            "get": {
                "tags": ["Students"], "summary": "Download the export and close the billing period", "security": [{"BearerAuth": []}],
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "text/csv", "application/pdf"],
                "parameters": [{"in": "query", "name": "format", "type": "string", "enum": ["xlsx", "csv", "pdf"]}],
                "responses": {"200": {"description": "File"}, "404": {"description": "No students"}, "409": {"description": "Rollover in progress"}}
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"], "summary": "Get student", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "patch": {
                "tags": ["Students"], "summary": "Edit student", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Students"], "summary": "Delete student", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/students/{id}/toggle-payment": {
            "patch": {
                "tags": ["Payments"], "summary": "Flip the current period payment status", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/students/{id}/remove-due": {
            "patch": {
                "tags": ["Payments"], "summary": "Clear due months", "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"type": "object", "properties": {"months": {"type": "array", "items": {"type": "string"}}}}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/results": {
            "post": {
                "tags": ["Results"], "summary": "Append marks and notify guardians", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/ResultEntry"}}}],
                "responses": {"200": {"description": "Per-entry outcomes"}, "400": {"description": "Body is not an array"}}
            }
        },
        "/batches": {
            "get": {"tags": ["Batches"], "summary": "List batches", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Batches"], "summary": "Open a batch", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid payload"}}}
        },
        "/attendance": {
            "get": {
                "tags": ["Attendance"], "summary": "List attendance", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "date", "type": "string"}, {"in": "query", "name": "batch_id", "type": "string"}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid filter"}}
            },
            "post": {"tags": ["Attendance"], "summary": "Record attendance", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "404": {"description": "Unknown batch or student"}}}
        },
        "/auth/me": {
            "get": {"tags": ["Auth"], "summary": "Owner profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/guardians": {
            "post": {"tags": ["Guardians"], "summary": "Grant guardian access", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Passkey already used for this phone"}}}
        },
        "/guardian/login": {
            "post": {"tags": ["Guardians"], "summary": "Guardian sign-in", "responses": {"200": {"description": "Token"}, "401": {"description": "Invalid credentials"}}}
        },
        "/guardian/students": {
            "get": {"tags": ["Guardians"], "summary": "Children registered under the guardian", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Not a guardian session"}}}
        }
    },
    "definitions": {
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "phone_number": {"type": "string"},
                "batch_id": {"type": "string"},
                "payment_amount": {"type": "number"},
                "admission_date": {"type": "string"},
                "due_months": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ResultEntry": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "student_name": {"type": "string"},
                "phone_number": {"type": "string"},
                "marks": {"type": "array", "items": {"type": "object"}}
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
