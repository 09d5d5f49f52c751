package database

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/types"
)

// Collection names
const (
	ContentCollection    = "contents"
	UserCollection       = "users"
	ClientLogsCollection = "client-logs"
)

// isoFormat matches the millisecond ISO-8601 timestamps of the public API
const isoFormat = "2006-01-02T15:04:05.000Z07:00"

func iso(t time.Time) string {
	return t.UTC().Format(isoFormat)
}

// ContentDocument is a feed item as stored
type ContentDocument struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Title       string              `bson:"title"`
	Summary     string              `bson:"summary"`
	Tags        []string            `bson:"tags"`
	Source      types.ContentSource `bson:"source"`
	Date        time.Time           `bson:"date"`
	ReadTime    string              `bson:"readTime,omitempty"`
	Favorite    bool                `bson:"favorite"`
	OriginalURL string              `bson:"originalUrl,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

// NewContentDocument builds a document from a create payload. A missing or
// unparseable date falls back to now.
func NewContentDocument(data types.ContentCreateData, now time.Time) ContentDocument {
	date := now
	if data.Date != "" {
		if parsed, err := time.Parse(time.RFC3339, data.Date); err == nil {
			date = parsed
		}
	}
	tags := data.Tags
	if tags == nil {
		tags = []string{}
	}
	return ContentDocument{
		Title:       data.Title,
		Summary:     data.Summary,
		Tags:        tags,
		Source:      data.Source,
		Date:        date.UTC(),
		ReadTime:    data.ReadTime,
		OriginalURL: data.OriginalURL,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
}

// ToPublic converts the document into its API representation
func (d ContentDocument) ToPublic() types.Content {
	date := d.Date
	if date.IsZero() {
		date = d.CreatedAt
	}
	readTime := d.ReadTime
	if readTime == "" {
		readTime = types.DefaultReadTime
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return types.Content{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Summary:     d.Summary,
		Tags:        tags,
		Source:      d.Source,
		Date:        iso(date),
		ReadTime:    readTime,
		Favorite:    d.Favorite,
		OriginalURL: d.OriginalURL,
		CreatedAt:   iso(d.CreatedAt),
		UpdatedAt:   iso(d.UpdatedAt),
	}
}

// UserDocument is an account as stored. Password holds a bcrypt hash.
type UserDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Settings  *types.Settings    `bson:"settings,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// ToPublic strips the credentials
func (u UserDocument) ToPublic() types.PublicUser {
	return types.PublicUser{
		ID:        u.ID.Hex(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: iso(u.CreatedAt),
		UpdatedAt: iso(u.UpdatedAt),
	}
}

// EffectiveSettings returns the stored settings or the defaults
func (u UserDocument) EffectiveSettings() types.Settings {
	if u.Settings == nil {
		return types.DefaultSettings()
	}
	return *u.Settings
}

// ClientLog is a log entry shipped by a client, stamped on arrival
type ClientLog struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	logger.LogEntry `bson:",inline"`
	LevelName       string    `bson:"levelName"`
	ReceivedAt      time.Time `bson:"receivedAt"`
}
