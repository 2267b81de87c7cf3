package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.TransactionLog = (*TransactionLog)(nil)

// TransactionLog lee las ventas del punto de venta desde una colección de MongoDB.
type TransactionLog struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewTransactionLog conecta y verifica el servidor.
func NewTransactionLog(ctx context.Context, uri, dbName, collName string) (*TransactionLog, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("conectar mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &TransactionLog{client: client, dbName: dbName, collName: collName}, nil
}

// Close cierra la conexión.
func (l *TransactionLog) Close(ctx context.Context) error {
	return l.client.Disconnect(ctx)
}

// txDoc forma del documento. Los importes pueden llegar como double, int o Decimal128.
type txDoc struct {
	ID         bson.RawValue `bson:"_id"`
	Total      bson.RawValue `bson:"total"`
	AmountPaid bson.RawValue `bson:"amountPaid"`
	TenderType string        `bson:"tenderType"`
	Tenders    []tenderDoc   `bson:"tenders"`
	LocationID string        `bson:"locationId"`
	Location   string        `bson:"location"`
	Status     string        `bson:"status"`
	CreatedAt  time.Time     `bson:"createdAt"`
}

type tenderDoc struct {
	TenderName string        `bson:"tenderName"`
	Amount     bson.RawValue `bson:"amount"`
}

// FindCompleted ventas completadas de la ubicación en [Since, Until], unidas por locationId
// o, para documentos sin locationId, por nombre.
func (l *TransactionLog) FindCompleted(ctx context.Context, q entity.TransactionQuery) ([]*entity.Transaction, error) {
	filter := completedFilter(q)
	if filter == nil {
		return []*entity.Transaction{}, nil
	}
	coll := l.client.Database(l.dbName).Collection(l.collName)
	cur, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, domain.Storage("buscar transacciones", err)
	}
	defer cur.Close(ctx)

	out := make([]*entity.Transaction, 0)
	for cur.Next(ctx) {
		var doc txDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, domain.Storage("decodificar transacción", err)
		}
		tx, err := toTransaction(doc)
		if err != nil {
			return nil, domain.Storage("decodificar transacción", err)
		}
		out = append(out, tx)
	}
	if err := cur.Err(); err != nil {
		return nil, domain.Storage("buscar transacciones", err)
	}
	return out, nil
}

// completedFilter nil si la consulta no identifica ninguna ubicación.
func completedFilter(q entity.TransactionQuery) bson.M {
	var byLocation []bson.M
	if q.LocationID != "" {
		byLocation = append(byLocation, bson.M{"locationId": q.LocationID})
	}
	noID := bson.M{"$in": bson.A{nil, ""}}
	for _, name := range []string{q.LocationName, q.LocationID} {
		if name == "" {
			continue
		}
		byLocation = append(byLocation, bson.M{
			"locationId": noID,
			"location":   exactFold(name),
		})
	}
	if len(byLocation) == 0 {
		return nil
	}
	created := bson.M{"$gte": q.Since}
	if !q.Until.IsZero() {
		created["$lte"] = q.Until
	}
	return bson.M{
		"status":    exactFold(entity.TransactionStatusCompleted),
		"createdAt": created,
		"$or":       byLocation,
	}
}

func exactFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}

func toTransaction(doc txDoc) (*entity.Transaction, error) {
	total, err := toDecimal(doc.Total)
	if err != nil {
		return nil, fmt.Errorf("total: %w", err)
	}
	paid, err := toDecimal(doc.AmountPaid)
	if err != nil {
		return nil, fmt.Errorf("amountPaid: %w", err)
	}
	tx := &entity.Transaction{
		ID:         idString(doc.ID),
		Total:      total,
		AmountPaid: paid,
		TenderType: doc.TenderType,
		LocationID: doc.LocationID,
		Location:   doc.Location,
		Status:     doc.Status,
		CreatedAt:  doc.CreatedAt,
	}
	for _, t := range doc.Tenders {
		amount, err := toDecimal(t.Amount)
		if err != nil {
			return nil, fmt.Errorf("tenders.amount: %w", err)
		}
		tx.Tenders = append(tx.Tenders, entity.TenderSplit{TenderName: t.TenderName, Amount: amount})
	}
	return tx, nil
}

// toDecimal acepta los tipos numéricos de BSON; un campo ausente o null vale cero.
func toDecimal(v bson.RawValue) (decimal.Decimal, error) {
	switch v.Type {
	case 0, bsontype.Null, bsontype.Undefined:
		return decimal.Zero, nil
	case bsontype.Double:
		return decimal.NewFromFloat(v.Double()), nil
	case bsontype.Int32:
		return decimal.NewFromInt32(v.Int32()), nil
	case bsontype.Int64:
		return decimal.NewFromInt(v.Int64()), nil
	case bsontype.Decimal128:
		return decimal.NewFromString(v.Decimal128().String())
	case bsontype.String:
		return decimal.NewFromString(v.StringValue())
	}
	return decimal.Zero, fmt.Errorf("tipo BSON no numérico: %s", v.Type)
}

func idString(v bson.RawValue) string {
	switch v.Type {
	case bsontype.ObjectID:
		return v.ObjectID().Hex()
	case bsontype.String:
		return v.StringValue()
	case 0:
		return ""
	}
	return v.String()
}
