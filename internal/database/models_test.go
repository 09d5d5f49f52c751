package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aashari/go-content-dashboard/internal/types"
)

func TestContentDocument_ToPublic(t *testing.T) {
	id := primitive.NewObjectID()
	created := time.Date(2024, 6, 1, 10, 0, 0, 123000000, time.UTC)

	doc := ContentDocument{ID: id, Title: "T", CreatedAt: created, UpdatedAt: created}
	pub := doc.ToPublic()

	assert.Equal(t, id.Hex(), pub.ID)
	assert.Equal(t, "2024-06-01T10:00:00.123Z", pub.Date)
	assert.Equal(t, types.DefaultReadTime, pub.ReadTime)
	assert.Equal(t, []string{}, pub.Tags)
	assert.False(t, pub.Favorite)
}

func TestNewContentDocument_Date(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	doc := NewContentDocument(types.ContentCreateData{Date: "2024-05-01T08:30:00Z"}, now)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC), doc.Date)

	doc = NewContentDocument(types.ContentCreateData{Date: "yesterday"}, now)
	assert.Equal(t, now, doc.Date)
}

func TestUserDocument_ToPublicOmitsPassword(t *testing.T) {
	u := UserDocument{Name: "Jane", Email: "jane@example.com", Password: "$2a$10$hash"}
	pub := u.ToPublic()
	assert.Equal(t, "Jane", pub.Name)
	assert.NotContains(t, pub.ID+pub.Name+pub.Email, "hash")
}
