package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Leave Planner API",
        "description": "Recommends leave windows that keep every subject above its attendance threshold.",
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
        {"name": "Planner", "description": "Leave window recommendations"},
        {"name": "Ops", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Readiness check against Postgres and Redis",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unreachable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Ops"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "Metrics exposition"}
                }
            }
        },
        "/api/v1/planner/recommendations": {
            "post": {
                "tags": ["Planner"],
                "summary": "Recommend safe leave windows from stored attendance",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": false, "schema": {"$ref": "#/definitions/RecommendRequest"}}
                ],
                "responses": {
                    "200": {"description": "Ranked options", "schema": {"$ref": "#/definitions/RecommendationEnvelope"}},
                    "400": {"description": "Invalid parameters", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planner/simulate": {
            "post": {
                "tags": ["Planner"],
                "summary": "Recommend leave windows for an inline snapshot",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SimulateRequest"}}
                ],
                "responses": {
                    "200": {"description": "Ranked options", "schema": {"$ref": "#/definitions/RecommendationEnvelope"}},
                    "400": {"description": "Invalid snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planner/recommendations/export": {
            "get": {
                "tags": ["Planner"],
                "summary": "Download recommended options",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf", "text/html"],
                "parameters": [
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf", "html"], "default": "csv"},
                    {"in": "query", "name": "start_date", "type": "string", "format": "date"},
                    {"in": "query", "name": "search_days", "type": "integer"},
                    {"in": "query", "name": "min_window", "type": "integer"},
                    {"in": "query", "name": "max_window", "type": "integer"},
                    {"in": "query", "name": "top_n", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "File attachment", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planner/runs": {
            "get": {
                "tags": ["Planner"],
                "summary": "List recorded planner runs",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "query", "name": "page", "type": "integer", "default": 1},
                    {"in": "query", "name": "page_size", "type": "integer", "default": 20}
                ],
                "responses": {
                    "200": {"description": "Runs, newest first", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SearchParams": {
            "type": "object",
            "properties": {
                "start_date": {"type": "string", "format": "date"},
                "search_days": {"type": "integer", "minimum": 1, "maximum": 366},
                "min_window": {"type": "integer", "minimum": 1, "maximum": 31},
                "max_window": {"type": "integer", "minimum": 1, "maximum": 31},
                "top_n": {"type": "integer", "minimum": 1, "maximum": 20}
            }
        },
        "RecommendRequest": {
            "allOf": [
                {"$ref": "#/definitions/SearchParams"},
                {"type": "object", "properties": {"narrate": {"type": "boolean"}}}
            ]
        },
        "SnapshotSubject": {
            "type": "object",
            "required": ["id", "name"],
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "attended": {"type": "integer"},
                "total": {"type": "integer"},
                "threshold": {"type": "number"}
            }
        },
        "HolidayRange": {
            "type": "object",
            "required": ["start_date"],
            "properties": {
                "name": {"type": "string"},
                "start_date": {"type": "string", "format": "date"},
                "end_date": {"type": "string", "format": "date"}
            }
        },
        "SimulateRequest": {
            "allOf": [
                {"$ref": "#/definitions/SearchParams"},
                {
                    "type": "object",
                    "properties": {
                        "narrate": {"type": "boolean"},
                        "global_threshold": {"type": "number"},
                        "subjects": {"type": "array", "items": {"$ref": "#/definitions/SnapshotSubject"}},
                        "weekly_schedule": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}},
                        "calendar": {"type": "object", "additionalProperties": {"type": "string", "enum": ["weekday", "weekend", "holiday"]}},
                        "holidays": {"type": "array", "items": {"$ref": "#/definitions/HolidayRange"}}
                    }
                }
            ]
        },
        "SubjectImpact": {
            "type": "object",
            "properties": {
                "subject_name": {"type": "string"},
                "current_attendance": {"type": "number"},
                "current_buffer": {"type": "number"},
                "missed_lectures": {"type": "integer"},
                "projected_attendance": {"type": "number"},
                "projected_buffer": {"type": "number"},
                "threshold": {"type": "number"},
                "is_safe": {"type": "boolean"}
            }
        },
        "DayBreakdown": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date"},
                "day_name": {"type": "string"},
                "type": {"type": "string", "enum": ["weekday", "weekend", "holiday"]}
            }
        },
        "VacationOption": {
            "type": "object",
            "properties": {
                "rank": {"type": "integer"},
                "start_date": {"type": "string", "format": "date"},
                "end_date": {"type": "string", "format": "date"},
                "total_days": {"type": "integer"},
                "leave_days": {"type": "integer"},
                "holidays": {"type": "integer"},
                "score": {"type": "number"},
                "day_breakdown": {"type": "array", "items": {"$ref": "#/definitions/DayBreakdown"}},
                "subject_projections": {"type": "object", "additionalProperties": {"$ref": "#/definitions/SubjectImpact"}}
            }
        },
        "Recommendation": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "vacation_options": {"type": "array", "items": {"$ref": "#/definitions/VacationOption"}},
                "ai_advice": {"type": "string"}
            }
        },
        "RecommendationEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Recommendation"},
                "meta": {
                    "type": "object",
                    "properties": {
                        "summary_text": {"type": "string"},
                        "start_date": {"type": "string", "format": "date"},
                        "cached": {"type": "boolean"},
                        "narrated": {"type": "boolean"}
                    }
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
