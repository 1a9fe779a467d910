package validators

import "go.mongodb.org/mongo-driver/bson"

var DisputeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"booking", "raisedBy", "reason", "status", "statusHistory", "createdAt"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":      bson.M{"bsonType": "objectId"},
			"booking":  objectIDHex,
			"raisedBy": objectIDHex,
			"against":  objectIDHex,

			"reason": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"status": bson.M{"enum": []string{"Open", "Resolved", "Rejected"}},

			"statusHistory": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"status", "updatedBy", "timestamp"},
				},
			},

			"attachments": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"url", "uploadedBy"},
				},
			},

			"escalationLevel": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  5,
			},
		},
	},
}
