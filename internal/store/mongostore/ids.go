package mongostore

import (
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Documents written by this service use UUID strings as ids. Older documents
// in the same collections carry ObjectIds; those are surfaced as UUIDs whose
// first four bytes are zero and whose remaining twelve bytes are the
// ObjectId, so they round-trip through tokens and URLs.

func fromObjectID(oid primitive.ObjectID) uuid.UUID {
	var id uuid.UUID
	copy(id[4:], oid[:])
	return id
}

func toObjectID(id uuid.UUID) (primitive.ObjectID, bool) {
	if id[0]|id[1]|id[2]|id[3] != 0 {
		return primitive.NilObjectID, false
	}
	var oid primitive.ObjectID
	copy(oid[:], id[4:])
	return oid, true
}

// parseID decodes an _id or reference field that may hold either form.
func parseID(v any) (uuid.UUID, error) {
	switch x := v.(type) {
	case primitive.ObjectID:
		return fromObjectID(x), nil
	case string:
		if id, err := uuid.Parse(x); err == nil {
			return id, nil
		}
		if oid, err := primitive.ObjectIDFromHex(x); err == nil {
			return fromObjectID(oid), nil
		}
		return uuid.Nil, fmt.Errorf("mongostore: unrecognised id %q", x)
	default:
		return uuid.Nil, fmt.Errorf("mongostore: unsupported id type %T", v)
	}
}

// matchID is the filter value selecting id in whichever form it was stored.
func matchID(id uuid.UUID) any {
	if oid, ok := toObjectID(id); ok {
		return bson.M{"$in": bson.A{id.String(), oid}}
	}
	return id.String()
}
