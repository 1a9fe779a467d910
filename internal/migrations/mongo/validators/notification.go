package validators

import "go.mongodb.org/mongo-driver/bson"

var NotificationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"receiver", "type", "title", "message", "status", "createdAt"},
		"additionalProperties": true,

		"properties": bson.M{
			"receiver": bson.M{
				"bsonType": "object",
				"required": []string{"id", "role"},
				"properties": bson.M{
					"id":   bson.M{"bsonType": "string"},
					"role": bson.M{"enum": []string{"customer", "worker", "admin"}},
				},
			},

			"type": bson.M{
				"enum": []string{"job", "rating", "system", "payment", "promo", "alert", "reminder", "other"},
			},

			"title":   bson.M{"bsonType": "string", "maxLength": 200},
			"message": bson.M{"bsonType": "string", "maxLength": 2000},
			"status":  bson.M{"enum": []string{"unread", "read", "archived"}},
		},
	},
}
