package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/types"
)

var fixedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func contentDoc(id primitive.ObjectID, title string, favorite bool) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "summary", Value: "summary of " + title},
		{Key: "tags", Value: bson.A{"go"}},
		{Key: "source", Value: bson.D{{Key: "name", Value: "Blog"}, {Key: "type", Value: "article"}}},
		{Key: "date", Value: fixedNow},
		{Key: "favorite", Value: favorite},
		{Key: "createdAt", Value: fixedNow},
		{Key: "updatedAt", Value: fixedNow},
	}
}

func TestContentRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list", func(mt *mtest.T) {
		repo := NewContentRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, contentDoc(a, "A", false), contentDoc(b, "B", true)))

		docs, err := repo.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, docs, 2)
		assert.Equal(mt, a, docs[0].ID)
		assert.True(mt, docs[1].Favorite)
		assert.Equal(mt, "Blog", docs[1].Source.Name)
	})

	mt.Run("favorites empty", func(mt *mtest.T) {
		repo := NewContentRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		docs, err := repo.Favorites(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, docs)
		assert.Empty(mt, docs)
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		repo := NewContentRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("malformed id is not found", func(mt *mtest.T) {
		repo := NewContentRepository(mt.Coll)
		_, err := repo.FindByID(context.Background(), "not-an-id")
		assert.ErrorIs(mt, err, ErrNotFound)
		assert.ErrorIs(mt, repo.Delete(context.Background(), "nope"), ErrNotFound)
	})

	mt.Run("create", func(mt *mtest.T) {
		repo := NewContentRepository(mt.Coll)
		repo.now = func() time.Time { return fixedNow }
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		doc, err := repo.Create(context.Background(), types.ContentCreateData{
			Title:       "New",
			Summary:     "Fresh",
			Source:      types.ContentSource{Name: "Blog", Type: types.SourceArticle},
			OriginalURL: "https://example.com",
		})
		require.NoError(mt, err)
		assert.False(mt, doc.ID.IsZero())
		assert.Equal(mt, fixedNow, doc.CreatedAt)
		assert.Equal(mt, fixedNow, doc.Date)
		assert.Equal(mt, []string{}, doc.Tags)
	})

	mt.Run("toggle favorite", func(mt *mtest.T) {
		repo := NewContentRepository(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: contentDoc(id, "A", true)}))

		doc, err := repo.ToggleFavorite(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.True(mt, doc.Favorite)
		assert.Equal(mt, id, doc.ID)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewContentRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(mt, repo.Delete(context.Background(), primitive.NewObjectID().Hex()))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assert.ErrorIs(mt, repo.Delete(context.Background(), primitive.NewObjectID().Hex()), ErrNotFound)
	})
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		doc, err := repo.Create(context.Background(), "Jane", "jane@example.com", "$2a$10$hash")
		require.NoError(mt, err)
		assert.Equal(mt, "jane@example.com", doc.ToPublic().Email)
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := repo.Create(context.Background(), "Jane", "jane@example.com", "$2a$10$hash")
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Jane"},
			{Key: "email", Value: "jane@example.com"},
			{Key: "password", Value: "$2a$10$hash"},
		}))

		doc, err := repo.FindByEmail(context.Background(), "jane@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, id, doc.ID)
		assert.Nil(mt, doc.Settings)
		assert.Equal(mt, types.DefaultSettings(), doc.EffectiveSettings())
	})
}

func TestLogSink(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("send stores entry", func(mt *mtest.T) {
		repo := NewLogRepository(mt.Coll)
		repo.now = func() time.Time { return fixedNow }
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		sink := NewLogSink(repo)
		err := sink.Send(context.Background(), logger.LogEntry{
			Timestamp: "2024-06-01T10:00:00.000Z",
			Level:     logger.LevelError,
			Message:   "boom",
			SessionID: "session_1_abc",
		})
		require.NoError(mt, err)
	})

	mt.Run("insert failure surfaces", func(mt *mtest.T) {
		repo := NewLogRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad value"}))

		err := NewLogSink(repo).Send(context.Background(), logger.LogEntry{Message: "x"})
		assert.Error(mt, err)
	})
}

type recordingInserter struct {
	logs []*ClientLog
}

func (r *recordingInserter) Insert(_ context.Context, log *ClientLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func TestLogSink_LevelName(t *testing.T) {
	store := &recordingInserter{}
	require.NoError(t, NewLogSink(store).Send(t.Context(), logger.LogEntry{Level: logger.LevelWarn, Message: "careful"}))
	require.Len(t, store.logs, 1)
	assert.Equal(t, "WARN", store.logs[0].LevelName)
	assert.Equal(t, "careful", store.logs[0].Message)
}
