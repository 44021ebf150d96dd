package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"resource_type",
			"date",
			"time_slot",
			"duration",
			"party_size",
			"customer_name",
			"price",
			"total_price",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"resource_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"ps4_standard",
					"ps4_pro",
					"racing_wheel",
				},
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"time_slot": bson.M{
				"bsonType": "string",
				"pattern":  `^([1-9]|1[0-2]):00 (AM|PM)$`,
			},

			"duration": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"duration_unit": bson.M{
				"bsonType": "string",
				"enum":     []string{"hours", "minutes"},
			},

			"party_size": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"customer_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"phone": bson.M{
				"bsonType": "string",
			},

			"email": bson.M{
				"bsonType": "string",
			},

			"price": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"total_price": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"confirmed",
					"reserved_for_racing_wheel",
					"reserved_for_ps4",
				},
			},

			"linked_booking_id": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var SlotLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "owner", "expires_at", "created_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
				"pattern":  "^slot_lock_",
			},
			"owner": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
