package validators

import "go.mongodb.org/mongo-driver/bson"

var PaymentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"booking", "customer", "worker", "amount", "status", "method", "createdAt"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":      bson.M{"bsonType": "objectId"},
			"booking":  objectIDHex,
			"customer": objectIDHex,
			"worker":   objectIDHex,

			"amount": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"status": bson.M{"enum": []string{"Pending", "Paid", "Refunded", "Failed"}},
			"method": bson.M{"enum": []string{"Cash", "Card", "UPI", "NetBanking", "Wallet", "Other"}},

			"transactionId": bson.M{
				"bsonType":  "string",
				"maxLength": 128,
			},
		},
	},
}
