package classifier

// outputSchemaJSON is the strict schema for classifier output. It is sent to
// the provider as a structured-output constraint and re-checked locally;
// providers that ignore response formats still get validated.
const outputSchemaJSON = `{
	"type": "object",
	"properties": {
		"category": {
			"type": "string",
			"enum": [
				"GENERAL_QUESTION",
				"ORDER_ITEM",
				"ORDER_SUBMIT",
				"RESERVATION_REQUEST",
				"RESERVATION_CONFIRM",
				"ESCALATION_REQUEST",
				"UNKNOWN"
			]
		},
		"language": {"type": "string"},
		"confidence": {"type": "number"},
		"department_hint": {"type": "string"},
		"items": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string"},
					"quantity": {"type": "integer"},
					"notes": {"type": "string"}
				},
				"required": ["name", "quantity", "notes"],
				"additionalProperties": false
			}
		},
		"reservation_date": {"type": "string"},
		"reservation_time": {"type": "string"},
		"party_size": {"type": "integer"},
		"guest_name": {"type": "string"},
		"room_number": {"type": "string"},
		"table_number": {"type": "string"}
	},
	"required": [
		"category", "language", "confidence", "department_hint", "items",
		"reservation_date", "reservation_time", "party_size", "guest_name",
		"room_number", "table_number"
	],
	"additionalProperties": false
}`
