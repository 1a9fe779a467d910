package validators

import "go.mongodb.org/mongo-driver/bson"

var objectIDHex = bson.M{
	"bsonType":  "string",
	"minLength": 24,
	"maxLength": 24,
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"customer",
			"worker",
			"service",
			"date",
			"location",
			"status",
			"isPaid",
			"version",
			"createdAt",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":      bson.M{"bsonType": "objectId"},
			"customer": objectIDHex,
			"worker":   objectIDHex,
			"service":  objectIDHex,
			"date":     bson.M{"bsonType": "date"},

			"time": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"location": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 300,
			},

			"status": bson.M{
				"enum": []string{"Pending", "In-progress", "Completed", "Cancelled"},
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"review": bson.M{
				"bsonType": "object",
				"required": []string{"rating"},
				"properties": bson.M{
					"rating": bson.M{
						"bsonType": []string{"int", "long"},
						"minimum":  1,
						"maximum":  5,
					},
				},
			},

			"dispute": objectIDHex,
			"isPaid":  bson.M{"bsonType": "bool"},
			"version": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
		},
	},
}
