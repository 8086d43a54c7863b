package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap/zaptest"

	"usuarios-api/internal/domain/user"
	pkgerrors "usuarios-api/pkg/errors"
)

const testHexID = "65f1c2a9b1e4c3d2a1b0c9d8"

func intPtr(v int) *int { return &v }

func newRepo(mt *mtest.T) *UserRepoMongo {
	repo := NewUserRepoMongo(mt.Coll, zaptest.NewLogger(mt))
	repo.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return repo
}

func namespace(mt *mtest.T) string {
	return mt.DB.Name() + "." + mt.Coll.Name()
}

func userDoc(id primitive.ObjectID, name, email, city string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "email", Value: email},
		{Key: "age", Value: int32(30)},
		{Key: "created_at", Value: primitive.NewDateTimeFromTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))},
		{Key: "addresses", Value: bson.A{
			bson.D{
				{Key: "street", Value: "Av. Arequipa 123"},
				{Key: "city", Value: city},
				{Key: "country", Value: "Peru"},
				{Key: "postal_code", Value: "15001"},
			},
		}},
	}
}

func newUser() *user.User {
	return &user.User{
		Name:  "Ana Torres",
		Email: "ana@example.com",
		Age:   intPtr(30),
		Addresses: []user.Address{
			{Street: "Av. Arequipa 123", City: "Lima", Country: "Peru", PostalCode: "15001"},
		},
	}
}

func TestUserRepoMongo_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := newRepo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		created, err := repo.Create(context.Background(), newUser())

		require.NoError(mt, err)
		assert.True(mt, user.IsValidID(created.ID))
		assert.Equal(mt, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), created.CreatedAt)
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := newRepo(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: usuarios.users index: email_unique",
		}))

		_, err := repo.Create(context.Background(), newUser())

		assert.ErrorIs(mt, err, pkgerrors.ErrEmailTaken)
	})

	mt.Run("entity constraints are checked before insert", func(mt *mtest.T) {
		repo := newRepo(mt)
		u := newUser()
		u.Email = "not-an-email"
		u.Addresses = nil

		_, err := repo.Create(context.Background(), u)

		var verr *pkgerrors.ValidationError
		require.ErrorAs(mt, err, &verr)
		assert.Equal(mt, []string{user.MsgEmailInvalid, user.MsgAddressesMissing}, verr.Messages)
	})
}

func TestUserRepoMongo_GetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := newRepo(mt)
		oid, _ := primitive.ObjectIDFromHex(testHexID)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			userDoc(oid, "Ana Torres", "ana@example.com", "Lima")))

		u, err := repo.GetByID(context.Background(), testHexID)

		require.NoError(mt, err)
		assert.Equal(mt, testHexID, u.ID)
		assert.Equal(mt, "Ana Torres", u.Name)
		require.NotNil(mt, u.Age)
		assert.Equal(mt, 30, *u.Age)
		require.Len(mt, u.Addresses, 1)
		assert.Equal(mt, "15001", u.Addresses[0].PostalCode)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := newRepo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), testHexID)

		assert.ErrorIs(mt, err, pkgerrors.ErrUserNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := newRepo(mt)

		_, err := repo.GetByID(context.Background(), "123")

		assert.ErrorIs(mt, err, pkgerrors.ErrInvalidID)
	})
}

func TestUserRepoMongo_GetByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("miss returns nil", func(mt *mtest.T) {
		repo := newRepo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		u, err := repo.GetByEmail(context.Background(), "nobody@example.com")

		require.NoError(mt, err)
		assert.Nil(mt, u)
	})

	mt.Run("hit", func(mt *mtest.T) {
		repo := newRepo(mt)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			userDoc(oid, "Ana Torres", "ana@example.com", "Lima")))

		u, err := repo.GetByEmail(context.Background(), "ana@example.com")

		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), u.ID)
	})
}

func TestUserRepoMongo_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("page with total", func(mt *mtest.T) {
		repo := newRepo(mt)
		docs := make([]bson.D, 5)
		for i := range docs {
			docs[i] = userDoc(primitive.NewObjectID(), "User", "user@example.com", "Lima")
		}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, docs...),
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{{Key: "n", Value: int64(15)}}),
		)

		users, total, err := repo.List(context.Background(), 2, 10)

		require.NoError(mt, err)
		assert.Len(mt, users, 5)
		assert.Equal(mt, int64(15), total)
	})

	mt.Run("store error", func(mt *mtest.T) {
		repo := newRepo(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		_, _, err := repo.List(context.Background(), 1, 10)

		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to list users")
	})
}

func TestUserRepoMongo_FindByCity(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("matches", func(mt *mtest.T) {
		repo := newRepo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			userDoc(primitive.NewObjectID(), "Ana", "ana@example.com", "LIMA"),
			userDoc(primitive.NewObjectID(), "Luis", "luis@example.com", "lima"),
		))

		users, err := repo.FindByCity(context.Background(), "Lima")

		require.NoError(mt, err)
		assert.Len(mt, users, 2)
	})

	mt.Run("no matches", func(mt *mtest.T) {
		repo := newRepo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		users, err := repo.FindByCity(context.Background(), "Atlantis")

		require.NoError(mt, err)
		assert.Empty(mt, users)
	})
}

func TestUserRepoMongo_Update(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns updated document", func(mt *mtest.T) {
		repo := newRepo(mt)
		oid, _ := primitive.ObjectIDFromHex(testHexID)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: userDoc(oid, "Ana María", "ana@example.com", "Cusco")},
		))

		u := newUser()
		u.ID = testHexID
		u.Name = "Ana María"
		u.Addresses[0].City = "Cusco"

		updated, err := repo.Update(context.Background(), u)

		require.NoError(mt, err)
		assert.Equal(mt, "Ana María", updated.Name)
		assert.Equal(mt, "Cusco", updated.Addresses[0].City)
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := newRepo(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Name:    "DuplicateKey",
			Message: "E11000 duplicate key error",
		}))

		u := newUser()
		u.ID = testHexID

		_, err := repo.Update(context.Background(), u)

		assert.ErrorIs(mt, err, pkgerrors.ErrEmailTaken)
	})
}

func TestUserRepoMongo_Delete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deleted", func(mt *mtest.T) {
		repo := newRepo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, repo.Delete(context.Background(), testHexID))
	})

	mt.Run("nothing deleted", func(mt *mtest.T) {
		repo := newRepo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.ErrorIs(mt, repo.Delete(context.Background(), testHexID), pkgerrors.ErrUserNotFound)
	})
}

func TestUserRepoMongo_EnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates indexes", func(mt *mtest.T) {
		repo := newRepo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, repo.EnsureIndexes(context.Background()))
	})
}
