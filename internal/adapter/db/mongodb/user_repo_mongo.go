package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"usuarios-api/internal/domain/user"
	pkgerrors "usuarios-api/pkg/errors"
)

// UserRepoMongo implements the Repository interface on a MongoDB collection.
type UserRepoMongo struct {
	coll *mongo.Collection // users collection
	log  *zap.Logger       // Structured logger for database operations
	now  func() time.Time
}

// NewUserRepoMongo creates a new instance of UserRepoMongo.
func NewUserRepoMongo(coll *mongo.Collection, log *zap.Logger) *UserRepoMongo {
	return &UserRepoMongo{coll: coll, log: log, now: time.Now}
}

// addressDocument is the embedded address sub-document.
type addressDocument struct {
	Street     string `bson:"street"`
	City       string `bson:"city"`
	Country    string `bson:"country"`
	PostalCode string `bson:"postal_code"`
}

// userDocument represents the stored shape of a user.
type userDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Age       *int               `bson:"age,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	Addresses []addressDocument  `bson:"addresses"`
}

func toDocument(u *user.User) (userDocument, error) {
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return userDocument{}, pkgerrors.ErrInvalidID
	}
	addresses := make([]addressDocument, len(u.Addresses))
	for i, a := range u.Addresses {
		addresses[i] = addressDocument(a)
	}
	return userDocument{
		ID:        oid,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
		Addresses: addresses,
	}, nil
}

func (d userDocument) toDomain() user.User {
	addresses := make([]user.Address, len(d.Addresses))
	for i, a := range d.Addresses {
		addresses[i] = user.Address(a)
	}
	return user.User{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Age:       d.Age,
		CreatedAt: d.CreatedAt.UTC(),
		Addresses: addresses,
	}
}

// EnsureIndexes creates the unique email index and the address city index.
func (r *UserRepoMongo) EnsureIndexes(ctx context.Context) error {
	names, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "addresses.city", Value: 1}},
			Options: options.Index().SetName("addresses_city"),
		},
	})
	if err != nil {
		r.log.Error("failed to create indexes", zap.Error(err))
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	r.log.Info("indexes ensured", zap.Strings("indexes", names))
	return nil
}

// Ping checks that the deployment is reachable.
func (r *UserRepoMongo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

// Create validates and inserts a new user, assigning its ID and creation time.
func (r *UserRepoMongo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	created := *u
	created.PrepareForInsert(r.now())
	doc, err := toDocument(&created)
	if err != nil {
		return nil, err
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.log.Warn("duplicate email on insert", zap.String("email", u.Email))
			return nil, pkgerrors.ErrEmailTaken
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.String("id", created.ID))
	return &created, nil
}

// GetByID retrieves a user by its ID.
func (r *UserRepoMongo) GetByID(ctx context.Context, id string) (*user.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, pkgerrors.ErrInvalidID
	}

	var doc userDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Debug("user not found", zap.String("id", id))
			return nil, pkgerrors.ErrUserNotFound
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u := doc.toDomain()
	return &u, nil
}

// GetByEmail retrieves a user by exact email. A miss returns nil, nil.
func (r *UserRepoMongo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	u := doc.toDomain()
	return &u, nil
}

// Update replaces name, email, age and addresses of an existing user.
// A nil age removes the field.
func (r *UserRepoMongo) Update(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return nil, pkgerrors.ErrInvalidID
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	addresses := make([]addressDocument, len(u.Addresses))
	for i, a := range u.Addresses {
		addresses[i] = addressDocument(a)
	}
	set := bson.M{
		"name":      u.Name,
		"email":     u.Email,
		"addresses": addresses,
	}
	update := bson.M{"$set": set}
	if u.Age != nil {
		set["age"] = *u.Age
	} else {
		update["$unset"] = bson.M{"age": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, pkgerrors.ErrUserNotFound
		case mongo.IsDuplicateKeyError(err):
			r.log.Warn("duplicate email on update", zap.String("id", u.ID), zap.String("email", u.Email))
			return nil, pkgerrors.ErrEmailTaken
		}
		r.log.Error("failed to update user in db", zap.Error(err), zap.String("id", u.ID))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	r.log.Info("user updated in db", zap.String("id", u.ID))
	updated := doc.toDomain()
	return &updated, nil
}

// Delete removes a user by ID.
func (r *UserRepoMongo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return pkgerrors.ErrInvalidID
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.log.Error("failed to delete user in db", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return pkgerrors.ErrUserNotFound
	}

	r.log.Info("user deleted in db", zap.String("id", id))
	return nil
}

// List returns one page of users in insertion order together with the total count.
func (r *UserRepoMongo) List(ctx context.Context, page, limit int64) ([]user.User, int64, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(user.Skip(page, limit)).
		SetLimit(limit)

	users, err := r.find(ctx, bson.M{}, opts)
	if err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.Int64("page", page), zap.Int64("limit", limit))
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		r.log.Error("failed to count users", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	return users, total, nil
}

// FindByCity returns users with at least one address whose city equals city, ignoring case.
func (r *UserRepoMongo) FindByCity(ctx context.Context, city string) ([]user.User, error) {
	filter := bson.M{"addresses.city": primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(city) + "$",
		Options: "i",
	}}

	users, err := r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		r.log.Error("failed to search users by city", zap.Error(err), zap.String("city", city))
		return nil, fmt.Errorf("failed to search users by city: %w", err)
	}
	return users, nil
}

func (r *UserRepoMongo) find(ctx context.Context, filter any, opts *options.FindOptions) ([]user.User, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]user.User, len(docs))
	for i, d := range docs {
		users[i] = d.toDomain()
	}
	return users, nil
}
