package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aashari/go-content-dashboard/internal/types"
)

// FavoritesLimit caps the favorites listing
const FavoritesLimit = 50

var (
	// ErrNotFound is returned when no document matches, including malformed ids
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique index rejects a write
	ErrDuplicate = errors.New("duplicate document")
)

// Repository groups the collection-scoped repositories
type Repository struct {
	Content *ContentRepository
	Users   *UserRepository
	Logs    *LogRepository
}

// NewRepository creates the repositories over conn's database
func NewRepository(conn *Connection) *Repository {
	return &Repository{
		Content: NewContentRepository(conn.GetCollection(ContentCollection)),
		Users:   NewUserRepository(conn.GetCollection(UserCollection)),
		Logs:    NewLogRepository(conn.GetCollection(ClientLogsCollection)),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	return oid, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// ContentRepository provides operations for feed items
type ContentRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewContentRepository returns a repository over collection
func NewContentRepository(collection *mongo.Collection) *ContentRepository {
	return &ContentRepository{collection: collection, now: time.Now}
}

// List returns every item, newest date first
func (r *ContentRepository) List(ctx context.Context) ([]ContentDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

// Favorites returns up to FavoritesLimit favorited items, most recently created first
func (r *ContentRepository) Favorites(ctx context.Context) ([]ContentDocument, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(FavoritesLimit)
	return r.find(ctx, bson.M{"favorite": true}, opts)
}

func (r *ContentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]ContentDocument, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	defer cursor.Close(ctx)

	docs := []ContentDocument{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}
	return docs, nil
}

// FindByID returns one item
func (r *ContentRepository) FindByID(ctx context.Context, id string) (*ContentDocument, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc ContentDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

// Create inserts a new item and returns it with its id
func (r *ContentRepository) Create(ctx context.Context, data types.ContentCreateData) (*ContentDocument, error) {
	doc := NewContentDocument(data, r.now())
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to insert content: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return &doc, nil
}

// Update applies the non-nil fields of data and returns the updated item
func (r *ContentRepository) Update(ctx context.Context, id string, data types.ContentUpdateData) (*ContentDocument, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": r.now().UTC()}
	if data.Title != nil {
		set["title"] = *data.Title
	}
	if data.Summary != nil {
		set["summary"] = *data.Summary
	}
	if data.Tags != nil {
		set["tags"] = data.Tags
	}
	if data.Source != nil {
		set["source"] = *data.Source
	}
	if data.ReadTime != nil {
		set["readTime"] = *data.ReadTime
	}
	if data.OriginalURL != nil {
		set["originalUrl"] = *data.OriginalURL
	}
	if data.Favorite != nil {
		set["favorite"] = *data.Favorite
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc ContentDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

// Delete removes an item
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleFavorite flips the favorite flag in a single atomic update
func (r *ContentRepository) ToggleFavorite(ctx context.Context, id string) (*ContentDocument, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"favorite":  bson.M{"$not": bson.A{"$favorite"}},
			"updatedAt": r.now().UTC(),
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc ContentDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

// UserRepository provides operations for accounts
type UserRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewUserRepository returns a repository over collection
func NewUserRepository(collection *mongo.Collection) *UserRepository {
	return &UserRepository{collection: collection, now: time.Now}
}

// FindByEmail returns the account registered under email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*UserDocument, error) {
	var doc UserDocument
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

// Create inserts an account. passwordHash must already be hashed.
func (r *UserRepository) Create(ctx context.Context, name, email, passwordHash string) (*UserDocument, error) {
	now := r.now().UTC()
	doc := UserDocument{
		Name:      name,
		Email:     email,
		Password:  passwordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return &doc, nil
}

// UpdateProfile changes the name (and email when set) of the account under email
func (r *UserRepository) UpdateProfile(ctx context.Context, email string, update types.ProfileUpdate) (*UserDocument, error) {
	set := bson.M{"name": update.Name, "updatedAt": r.now().UTC()}
	if update.Email != "" {
		set["email"] = update.Email
	}
	return r.findOneAndSet(ctx, email, set)
}

// UpdateSettings replaces the stored settings of the account under email
func (r *UserRepository) UpdateSettings(ctx context.Context, email string, settings types.Settings) (*UserDocument, error) {
	return r.findOneAndSet(ctx, email, bson.M{"settings": settings, "updatedAt": r.now().UTC()})
}

func (r *UserRepository) findOneAndSet(ctx context.Context, email string, set bson.M) (*UserDocument, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc UserDocument
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"email": email}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, notFound(err)
	}
	return &doc, nil
}

// LogRepository stores client-shipped log entries
type LogRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewLogRepository returns a repository over collection
func NewLogRepository(collection *mongo.Collection) *LogRepository {
	return &LogRepository{collection: collection, now: time.Now}
}

// Insert stores one entry
func (r *LogRepository) Insert(ctx context.Context, log *ClientLog) error {
	if log.ReceivedAt.IsZero() {
		log.ReceivedAt = r.now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("failed to insert client log: %w", err)
	}
	return nil
}

// BySession returns up to limit entries of a session in timestamp order
func (r *LogRepository) BySession(ctx context.Context, sessionID string, limit int64) ([]ClientLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query client logs: %w", err)
	}
	defer cursor.Close(ctx)

	logs := []ClientLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode client logs: %w", err)
	}
	return logs, nil
}
