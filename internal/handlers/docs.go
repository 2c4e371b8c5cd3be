package handlers

import (
	"encoding/json"
	"net/http"
)

func jsonResponse(description string, schema interface{}) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{"schema": schema},
		},
	}
}

func ref(name string) map[string]string {
	return map[string]string{"$ref": "#/components/schemas/" + name}
}

var errorResponses = map[string]interface{}{
	"400": jsonResponse("Invalid slider positions", ref("Error")),
	"404": jsonResponse("Unknown panel, source or day", ref("Error")),
}

func withErrors(ok map[string]interface{}, codes ...string) map[string]interface{} {
	responses := map[string]interface{}{"200": ok}
	for _, c := range codes {
		responses[c] = errorResponses[c]
	}
	return responses
}

var nullableNumberArray = map[string]interface{}{
	"type":  "array",
	"items": map[string]interface{}{"type": "number", "nullable": true},
}

var windowSchema = map[string]interface{}{
	"type":     "object",
	"nullable": true,
	"properties": map[string]interface{}{
		"start_index": map[string]string{"type": "integer"},
		"end_index":   map[string]string{"type": "integer"},
		"start":       map[string]string{"type": "string", "format": "date-time"},
		"end":         map[string]string{"type": "string", "format": "date-time"},
	},
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the Dwelling Dashboard API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Dwelling Dashboard API",
			"description": "Hourly indoor and outdoor climate and electricity consumption of a monitored dwelling, with a day by hour consumption heatmap and a shared time window slider",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8050", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/dwelling": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":   "Dwelling profile",
					"responses": withErrors(jsonResponse("House description", ref("Dwelling"))),
				},
			},
			"/api/panels": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "List panels",
					"responses": withErrors(jsonResponse("Panel descriptors", map[string]interface{}{
						"type":  "array",
						"items": ref("PanelDescriptor"),
					})),
				},
			},
			"/api/panels/{panel}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Panel data",
					"description": "Line panels return one trace per series; the heatmap returns day keys (x), hours 0-23 (y) and z[hour][day] in kWh",
					"parameters": []map[string]interface{}{
						{
							"name":     "panel",
							"in":       "path",
							"required": true,
							"schema": map[string]interface{}{
								"type": "string",
								"enum": []string{"electricity", "heatmap", "temperature", "humidity"},
							},
						},
					},
					"responses": withErrors(jsonResponse("Panel data", map[string]string{"type": "object"}), "404"),
				},
			},
			"/api/series/{source}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Normalized hourly series",
					"description": "Indoor and outdoor are hourly means (null for hours without readings); electricity is hourly sums",
					"parameters": []map[string]interface{}{
						{
							"name":     "source",
							"in":       "path",
							"required": true,
							"schema": map[string]interface{}{
								"type": "string",
								"enum": []string{"indoor", "outdoor", "electricity"},
							},
						},
					},
					"responses": withErrors(jsonResponse("Series", ref("Series")), "404"),
				},
			},
			"/api/heatmap": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Day by hour electricity matrix",
					"parameters": []map[string]interface{}{
						{
							"name":        "day",
							"in":          "query",
							"description": "Unpadded day key, e.g. 2019-1-5",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
					},
					"responses": withErrors(jsonResponse("Matrix, or a single day when day is given", map[string]string{"type": "object"}), "404"),
				},
			},
			"/api/slider": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":   "Slider descriptor",
					"responses": withErrors(jsonResponse("Slider bounds and end marks", ref("Slider"))),
				},
			},
			"/api/window": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Resolve a slider event",
					"description": "Returns the visible window of every panel for slider positions [low, high)",
					"parameters": []map[string]interface{}{
						{"name": "low", "in": "query", "required": true, "schema": map[string]string{"type": "integer"}},
						{"name": "high", "in": "query", "required": true, "schema": map[string]string{"type": "integer"}},
					},
					"responses": withErrors(jsonResponse("View state", ref("ViewState")), "400"),
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the API is running and, for database sources, reachable",
					"responses": map[string]interface{}{
						"200": jsonResponse("API is healthy", map[string]string{"type": "object"}),
						"503": jsonResponse("Database unreachable", map[string]string{"type": "object"}),
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Error": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error":   map[string]string{"type": "string"},
						"message": map[string]string{"type": "string"},
						"code":    map[string]string{"type": "integer"},
					},
				},
				"Dwelling": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name":            map[string]string{"type": "string"},
						"title":           map[string]string{"type": "string"},
						"location":        map[string]string{"type": "string"},
						"orientation":     map[string]string{"type": "string"},
						"occupants":       map[string]string{"type": "string"},
						"typology":        map[string]string{"type": "string"},
						"masonry":         map[string]string{"type": "string"},
						"living_space_m2": map[string]string{"type": "number"},
						"heating_presets": map[string]string{"type": "string"},
						"heating":         map[string]string{"type": "string"},
						"hot_water":       map[string]string{"type": "string"},
					},
				},
				"PanelDescriptor": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"id":             map[string]string{"type": "string"},
						"kind":           map[string]string{"type": "string"},
						"y_axis_title":   map[string]string{"type": "string"},
						"colorbar_title": map[string]string{"type": "string"},
						"traces":         map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}},
					},
				},
				"Series": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"source":      map[string]string{"type": "string"},
						"aggregation": map[string]interface{}{"type": "string", "enum": []string{"MEAN", "SUM"}},
						"cadence":     map[string]string{"type": "string"},
						"index":       map[string]interface{}{"type": "array", "items": map[string]string{"type": "string", "format": "date-time"}},
						"fields":      map[string]interface{}{"type": "object", "additionalProperties": nullableNumberArray},
					},
				},
				"Slider": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"min":   map[string]string{"type": "integer"},
						"max":   map[string]string{"type": "integer"},
						"step":  map[string]string{"type": "integer"},
						"value": map[string]interface{}{"type": "array", "items": map[string]string{"type": "integer"}},
						"marks": map[string]interface{}{"type": "object", "additionalProperties": map[string]string{"type": "string"}},
					},
				},
				"ViewState": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"low":         map[string]string{"type": "integer"},
						"high":        map[string]string{"type": "integer"},
						"electricity": windowSchema,
						"temperature": windowSchema,
						"humidity":    windowSchema,
						"heatmap": map[string]interface{}{
							"type":     "object",
							"nullable": true,
							"properties": map[string]interface{}{
								"start_index": map[string]string{"type": "integer"},
								"end_index":   map[string]string{"type": "integer"},
								"start":       map[string]string{"type": "string"},
								"end":         map[string]string{"type": "string"},
							},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
