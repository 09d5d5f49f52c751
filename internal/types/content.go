package types

// SourceType identifies where a content item was published
type SourceType string

const (
	SourceYouTube    SourceType = "youtube"
	SourceArticle    SourceType = "article"
	SourceNewsletter SourceType = "newsletter"
)

// DefaultReadTime is reported for items stored without a read time
const DefaultReadTime = "5 min read"

// ContentSource describes the publisher of a content item
type ContentSource struct {
	Name      string     `json:"name" bson:"name" validate:"required" example:"Go Time"`
	AvatarURL string     `json:"avatarUrl" bson:"avatarUrl" example:"https://example.com/avatar.png"`
	Type      SourceType `json:"type" bson:"type" validate:"required,oneof=youtube article newsletter" example:"youtube"`
	URL       string     `json:"url" bson:"url" validate:"omitempty,url" example:"https://youtube.com/@gotime"`
}

// Content is the public representation of a feed item
type Content struct {
	ID          string        `json:"id" example:"665f1c2e9b1e8a0012345678"`
	Title       string        `json:"title" example:"Structured logging in Go"`
	Summary     string        `json:"summary" example:"A tour of log/slog"`
	Tags        []string      `json:"tags"`
	Source      ContentSource `json:"source"`
	Date        string        `json:"date" example:"2024-06-01T10:00:00.000Z"`
	ReadTime    string        `json:"readTime" example:"5 min read"`
	Favorite    bool          `json:"favorite" example:"false"`
	OriginalURL string        `json:"originalUrl" example:"https://example.com/post"`
	CreatedAt   string        `json:"createdAt" example:"2024-06-01T10:00:00.000Z"`
	UpdatedAt   string        `json:"updatedAt" example:"2024-06-01T10:00:00.000Z"`
}

// ContentCreateData is the payload accepted when creating a content item
type ContentCreateData struct {
	Title       string        `json:"title" validate:"required,max=200"`
	Summary     string        `json:"summary" validate:"required,max=1000"`
	Tags        []string      `json:"tags,omitempty" validate:"max=10"`
	Source      ContentSource `json:"source" validate:"required"`
	Date        string        `json:"date,omitempty"`
	ReadTime    string        `json:"readTime,omitempty"`
	OriginalURL string        `json:"originalUrl" validate:"required,url"`
}

// ContentUpdateData carries the fields a content update may change; nil
// fields are left untouched
type ContentUpdateData struct {
	Title       *string        `json:"title,omitempty" validate:"omitempty,max=200"`
	Summary     *string        `json:"summary,omitempty" validate:"omitempty,max=1000"`
	Tags        []string       `json:"tags,omitempty" validate:"omitempty,max=10"`
	Source      *ContentSource `json:"source,omitempty"`
	ReadTime    *string        `json:"readTime,omitempty"`
	OriginalURL *string        `json:"originalUrl,omitempty" validate:"omitempty,url"`
	Favorite    *bool          `json:"favorite,omitempty"`
}
