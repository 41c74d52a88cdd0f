package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spoonhq/accounts-api/internal/core/domain"
	"github.com/spoonhq/accounts-api/internal/core/ports"
)

const (
	usersCollection     = "users"
	operatorsCollection = "operators"
)

// MongoAccountRepository persists both principal populations, one collection
// per kind.
type MongoAccountRepository struct {
	users     *mongo.Collection
	operators *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *MongoAccountRepository {
	return &MongoAccountRepository{
		users:     db.Collection(usersCollection),
		operators: db.Collection(operatorsCollection),
	}
}

type mongoAccount struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UserName        string             `bson:"user_name,omitempty"`
	Email           string             `bson:"email"`
	PhoneNumber     string             `bson:"phone_number,omitempty"`
	Address         string             `bson:"address,omitempty"`
	PasswordHash    string             `bson:"password_hash"`
	IsAdministrator bool               `bson:"is_administrator,omitempty"`
	IsOperator      bool               `bson:"is_operator,omitempty"`
	AvatarURL       string             `bson:"avatar_url,omitempty"`
	AvatarName      string             `bson:"avatar_name,omitempty"`
	LastLoginAt     int64              `bson:"last_login_at,omitempty"`
	CreatedAt       int64              `bson:"created_at"`
	UpdatedAt       int64              `bson:"updated_at"`
}

func (r *MongoAccountRepository) coll(kind domain.Kind) *mongo.Collection {
	if kind == domain.KindOperator {
		return r.operators
	}
	return r.users
}

// EnsureIndexes creates the per-kind unique constraints. The service still
// checks-then-inserts; the index closes the race window at the store.
func (r *MongoAccountRepository) EnsureIndexes(ctx context.Context) error {
	emailIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.users.Indexes().CreateOne(ctx, emailIdx); err != nil {
		return fmt.Errorf("users email index: %w", err)
	}
	if _, err := r.operators.Indexes().CreateOne(ctx, emailIdx); err != nil {
		return fmt.Errorf("operators email index: %w", err)
	}
	phoneIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "phone_number", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	}
	if _, err := r.users.Indexes().CreateOne(ctx, phoneIdx); err != nil {
		return fmt.Errorf("users phone index: %w", err)
	}
	return nil
}

func (r *MongoAccountRepository) FindByID(ctx context.Context, kind domain.Kind, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, kind, bson.M{"_id": oid})
}

func (r *MongoAccountRepository) FindByEmail(ctx context.Context, kind domain.Kind, email string) (*domain.Account, error) {
	return r.findOne(ctx, kind, bson.M{"email": email})
}

func (r *MongoAccountRepository) FindByPhoneNumber(ctx context.Context, phone string) (*domain.Account, error) {
	return r.findOne(ctx, domain.KindUser, bson.M{"phone_number": phone})
}

func (r *MongoAccountRepository) findOne(ctx context.Context, kind domain.Kind, filter bson.M) (*domain.Account, error) {
	var ma mongoAccount
	if err := r.coll(kind).FindOne(ctx, filter).Decode(&ma); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return toDomain(kind, &ma), nil
}

func (r *MongoAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	doc := mongoAccount{
		UserName:        account.UserName,
		Email:           account.Email,
		PhoneNumber:     account.PhoneNumber,
		Address:         account.Address,
		PasswordHash:    account.PasswordHash,
		IsAdministrator: account.Roles.IsAdministrator,
		IsOperator:      account.Roles.IsOperator,
		CreatedAt:       account.CreatedAt.Unix(),
		UpdatedAt:       account.UpdatedAt.Unix(),
	}

	res, err := r.coll(account.Kind).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	created := *account
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *MongoAccountRepository) UpdatePasswordHash(ctx context.Context, kind domain.Kind, id, hash string) error {
	return r.updateByID(ctx, kind, id, bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC().Unix(),
	})
}

func (r *MongoAccountRepository) UpdateLastLogin(ctx context.Context, kind domain.Kind, id string, at time.Time) error {
	return r.updateByID(ctx, kind, id, bson.M{"last_login_at": at.Unix()})
}

func (r *MongoAccountRepository) UpdateProfile(ctx context.Context, kind domain.Kind, id string, update ports.ProfileUpdate) (*domain.Account, error) {
	fields := bson.M{
		"user_name":    update.UserName,
		"email":        update.Email,
		"phone_number": update.PhoneNumber,
		"address":      update.Address,
		"updated_at":   time.Now().UTC().Unix(),
	}
	if update.AvatarURL != "" {
		fields["avatar_url"] = update.AvatarURL
		fields["avatar_name"] = update.AvatarName
	}
	if err := r.updateByID(ctx, kind, id, fields); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, kind, id)
}

func (r *MongoAccountRepository) updateByID(ctx context.Context, kind domain.Kind, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}
	res, err := r.coll(kind).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *MongoAccountRepository) ListOperators(ctx context.Context) ([]domain.Account, error) {
	cur, err := r.operators.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list operators: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.Account
	for cur.Next(ctx) {
		var ma mongoAccount
		if err := cur.Decode(&ma); err != nil {
			return nil, fmt.Errorf("decode operator: %w", err)
		}
		out = append(out, *toDomain(domain.KindOperator, &ma))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate operators: %w", err)
	}
	return out, nil
}

func (r *MongoAccountRepository) Delete(ctx context.Context, kind domain.Kind, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}
	res, err := r.coll(kind).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func toDomain(kind domain.Kind, ma *mongoAccount) *domain.Account {
	return &domain.Account{
		ID:           ma.ID.Hex(),
		Kind:         kind,
		UserName:     ma.UserName,
		Email:        ma.Email,
		PhoneNumber:  ma.PhoneNumber,
		Address:      ma.Address,
		PasswordHash: ma.PasswordHash,
		Roles: domain.RoleFlags{
			IsAdministrator: ma.IsAdministrator,
			IsOperator:      ma.IsOperator,
		},
		AvatarURL:   ma.AvatarURL,
		AvatarName:  ma.AvatarName,
		LastLoginAt: unixToTime(ma.LastLoginAt),
		CreatedAt:   unixToTime(ma.CreatedAt),
		UpdatedAt:   unixToTime(ma.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
