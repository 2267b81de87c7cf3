package mongodb

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

func decode(t *testing.T, m bson.M) txDoc {
	t.Helper()
	raw, err := bson.Marshal(m)
	require.NoError(t, err)
	var doc txDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func TestToTransaction_TiposNumericos(t *testing.T) {
	oid := primitive.NewObjectID()
	d128, err := primitive.ParseDecimal128("125.50")
	require.NoError(t, err)
	at := time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC)

	doc := decode(t, bson.M{
		"_id":        oid,
		"total":      d128,
		"amountPaid": 130.0,
		"tenders": bson.A{
			bson.M{"tenderName": "cash", "amount": int32(100)},
			bson.M{"tenderName": "card", "amount": "25.50"},
		},
		"location":  "Sales Floor",
		"status":    "completed",
		"createdAt": at,
	})
	tx, err := toTransaction(doc)
	require.NoError(t, err)
	assert.Equal(t, oid.Hex(), tx.ID)
	assert.True(t, tx.Total.Equal(decimal.RequireFromString("125.50")))
	assert.True(t, tx.AmountPaid.Equal(decimal.NewFromInt(130)))
	require.Len(t, tx.Tenders, 2)
	assert.True(t, tx.Tenders[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, tx.Tenders[1].Amount.Equal(decimal.RequireFromString("25.50")))
	assert.Equal(t, "", tx.LocationID)
	assert.Equal(t, at, tx.CreatedAt.UTC())
}

func TestToTransaction_SinImportes(t *testing.T) {
	tx, err := toTransaction(decode(t, bson.M{"_id": "t-1", "status": "completed", "tenderType": "cash"}))
	require.NoError(t, err)
	assert.Equal(t, "t-1", tx.ID)
	assert.True(t, tx.Total.IsZero())

	_, err = toTransaction(decode(t, bson.M{"_id": "t-2", "total": true}))
	assert.Error(t, err)
}

func TestCompletedFilter(t *testing.T) {
	assert.Nil(t, completedFilter(entity.TransactionQuery{}))

	since := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	f := completedFilter(entity.TransactionQuery{LocationID: "loc-1", LocationName: "Sales Floor (2)", Since: since})
	or, ok := f["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 3)
	assert.Equal(t, "loc-1", or[0]["locationId"])
	assert.Equal(t, primitive.Regex{Pattern: `^Sales Floor \(2\)$`, Options: "i"}, or[1]["location"])
	assert.Equal(t, bson.M{"$gte": since}, f["createdAt"])
}
