// Package docs registers the OpenAPI document for the prediction API.
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
        "/predictions": {
            "post": {
                "description": "Competitor A is treated as the side playing at its own venue",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Predictions"],
                "summary": "Predict a match",
                "parameters": [
                    {
                        "description": "Prediction request",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.PredictionRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PredictionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Statistics source unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/predictions/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Predictions"],
                "summary": "Prediction history",
                "parameters": [
                    {"type": "integer", "default": 50, "description": "Rows to return (max 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.PredictionHistory"}}}
                }
            }
        },
        "/admin/model/reload": {
            "post": {
                "security": [{"AdminToken": []}],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Reload model artifact",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Reload failed, previous model kept", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "models.PredictionRequest": {
            "type": "object",
            "required": ["competitor_a_id", "competitor_b_id"],
            "properties": {
                "competitor_a_id": {"type": "integer"},
                "competitor_b_id": {"type": "integer"},
                "as_of_date": {"type": "string", "example": "2024-06-01"},
                "matchday": {"type": "integer"},
                "competitor_a_name": {"type": "string"},
                "competitor_b_name": {"type": "string"},
                "match_id": {"type": "integer"}
            }
        },
        "models.PredictionResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "predicted_outcome": {"type": "string"},
                "predicted_winner": {"type": "string"},
                "goals_a": {"type": "number"},
                "goals_b": {"type": "number"},
                "confidence_score": {"type": "number"},
                "prob_a": {"type": "number"},
                "prob_draw": {"type": "number"},
                "prob_b": {"type": "number"},
                "model_version": {"type": "string"},
                "insights": {"type": "array", "items": {"type": "string"}},
                "key_features": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "models.PredictionHistory": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "match_id": {"type": "integer"},
                "predicted_at": {"type": "string"},
                "team_a_name": {"type": "string"},
                "team_b_name": {"type": "string"},
                "predicted_goals_a": {"type": "number"},
                "predicted_goals_b": {"type": "number"},
                "predicted_outcome": {"type": "string"},
                "predicted_winner": {"type": "string"},
                "confidence_score": {"type": "number"},
                "model_version": {"type": "string"},
                "insights": {"type": "array", "items": {"type": "string"}},
                "actual_goals_a": {"type": "integer"},
                "actual_goals_b": {"type": "integer"},
                "prediction_correct": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "AdminToken": {"type": "apiKey", "name": "X-Admin-Token", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Match Predictor API",
	Description:      "Symmetric goal predictions with a rating fallback for teams without history.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// ReadDoc renders the registered document.
func ReadDoc() (string, error) {
	return swag.ReadDoc(SwaggerInfo.InstanceName())
}
