package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/mathwaksu-byte/MathwaV2/handlers/resource"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/services"
	"github.com/mathwaksu-byte/MathwaV2/utils/validation"
	"gorm.io/gorm"
)

// ExcerptLength bounds derived blog excerpts, in runes.
const ExcerptLength = 200

// MaxSlugLength bounds blog slugs, given or derived from the title.
const MaxSlugLength = 160

type CreateTestimonialRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Quote      string `json:"quote" validate:"required"`
	University string `json:"university" validate:"max=255"`
	Country    string `json:"country" validate:"max=100"`
	ImageURL   string `json:"image_url" validate:"omitempty,url"`
	Rating     *int   `json:"rating" validate:"omitnil,min=1,max=5"`
	IsActive   *bool  `json:"is_active"`
}

func (r CreateTestimonialRequest) Apply(t *model.Testimonial) {
	t.Name = validation.SanitizeString(r.Name)
	t.Quote = validation.SanitizeString(r.Quote)
	t.University = r.University
	t.Country = r.Country
	t.ImageURL = r.ImageURL
	t.Rating = r.Rating
	t.IsActive = r.IsActive == nil || *r.IsActive
}

type UpdateTestimonialRequest struct {
	Name       *string `json:"name" validate:"omitnil,min=1,max=255"`
	Quote      *string `json:"quote" validate:"omitnil,min=1"`
	University *string `json:"university" validate:"omitempty,max=255"`
	Country    *string `json:"country" validate:"omitempty,max=100"`
	ImageURL   *string `json:"image_url" validate:"omitempty,url"`
	Rating     *int    `json:"rating" validate:"omitnil,min=1,max=5"`
	IsActive   *bool   `json:"is_active"`
}

func (r UpdateTestimonialRequest) Apply(t *model.Testimonial) {
	setString(&t.Name, r.Name)
	setString(&t.Quote, r.Quote)
	setString(&t.University, r.University)
	setString(&t.Country, r.Country)
	setString(&t.ImageURL, r.ImageURL)
	if r.Rating != nil {
		t.Rating = r.Rating
	}
	setBool(&t.IsActive, r.IsActive)
}

func Testimonials(db *gorm.DB) *resource.Handler[model.Testimonial, CreateTestimonialRequest, UpdateTestimonialRequest] {
	return resource.New[model.Testimonial, CreateTestimonialRequest, UpdateTestimonialRequest](db, resource.Config[model.Testimonial]{
		Name:         "Testimonial",
		ActiveColumn: "is_active",
		Filters:      map[string]string{"country": "country"},
		Search:       []string{"name", "university"},
	})
}

type CreateFAQRequest struct {
	Question     string `json:"question" validate:"required"`
	Answer       string `json:"answer" validate:"required"`
	Category     string `json:"category" validate:"max=100"`
	DisplayOrder int    `json:"display_order"`
	IsActive     *bool  `json:"is_active"`
}

func (r CreateFAQRequest) Apply(f *model.FAQ) {
	f.Question = validation.SanitizeString(r.Question)
	f.Answer = validation.SanitizeString(r.Answer)
	f.Category = r.Category
	f.DisplayOrder = r.DisplayOrder
	f.IsActive = r.IsActive == nil || *r.IsActive
}

type UpdateFAQRequest struct {
	Question     *string `json:"question" validate:"omitnil,min=1"`
	Answer       *string `json:"answer" validate:"omitnil,min=1"`
	Category     *string `json:"category" validate:"omitempty,max=100"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

func (r UpdateFAQRequest) Apply(f *model.FAQ) {
	setString(&f.Question, r.Question)
	setString(&f.Answer, r.Answer)
	setString(&f.Category, r.Category)
	setInt(&f.DisplayOrder, r.DisplayOrder)
	setBool(&f.IsActive, r.IsActive)
}

func FAQs(db *gorm.DB) *resource.Handler[model.FAQ, CreateFAQRequest, UpdateFAQRequest] {
	return resource.New[model.FAQ, CreateFAQRequest, UpdateFAQRequest](db, resource.Config[model.FAQ]{
		Name:         "FAQ",
		ActiveColumn: "is_active",
		Filters:      map[string]string{"category": "category"},
		Search:       []string{"question"},
		Order:        "display_order ASC, created_at ASC",
	})
}

type CreateBlogRequest struct {
	Title         string     `json:"title" validate:"required,max=255"`
	Slug          string     `json:"slug" validate:"omitempty,max=160,slug"`
	Content       string     `json:"content" validate:"required"`
	Excerpt       string     `json:"excerpt"`
	CoverImageURL string     `json:"cover_image_url" validate:"omitempty,url"`
	Author        string     `json:"author" validate:"max=255"`
	IsActive      *bool      `json:"is_active"`
	PublishedAt   *time.Time `json:"published_at"`
}

func (r CreateBlogRequest) Apply(a *model.Article) {
	a.Title = validation.SanitizeString(r.Title)
	a.Slug = r.slug()
	a.Content = r.Content
	a.Excerpt = validation.SanitizeString(r.Excerpt)
	a.CoverImageURL = r.CoverImageURL
	a.Author = r.Author
	a.IsActive = r.IsActive == nil || *r.IsActive
	a.PublishedAt = r.PublishedAt
}

// slug returns the given slug, or one derived from the title.
func (r CreateBlogRequest) slug() string {
	if r.Slug != "" {
		return r.Slug
	}
	s := validation.GenerateSlug(r.Title)
	if len(s) > MaxSlugLength {
		s = strings.TrimRight(s[:MaxSlugLength], "-")
	}
	return s
}

// UpdateBlogRequest carries only the fields to change. Slug may be echoed
// back but never changed.
type UpdateBlogRequest struct {
	Slug          *string    `json:"slug"`
	Title         *string    `json:"title" validate:"omitnil,min=1,max=255"`
	Content       *string    `json:"content" validate:"omitnil,min=1"`
	Excerpt       *string    `json:"excerpt"`
	CoverImageURL *string    `json:"cover_image_url" validate:"omitempty,url"`
	Author        *string    `json:"author" validate:"omitempty,max=255"`
	IsActive      *bool      `json:"is_active"`
	PublishedAt   *time.Time `json:"published_at"`
}

func (r UpdateBlogRequest) Check(a *model.Article) resource.FieldErrors {
	if r.Slug != nil && strings.TrimSpace(*r.Slug) != a.Slug {
		return resource.FieldErrors{"slug": "slug cannot be changed"}
	}
	return nil
}

func (r UpdateBlogRequest) Apply(a *model.Article) {
	setString(&a.Title, r.Title)
	if r.Content != nil {
		a.Content = *r.Content
		if r.Excerpt == nil {
			a.Excerpt = ""
		}
	}
	setString(&a.Excerpt, r.Excerpt)
	setString(&a.CoverImageURL, r.CoverImageURL)
	setString(&a.Author, r.Author)
	setBool(&a.IsActive, r.IsActive)
	if r.PublishedAt != nil {
		a.PublishedAt = r.PublishedAt
	}
}

// Blogs serves /blogs, looked up publicly by slug. Markdown is rendered on
// every write.
func Blogs(db *gorm.DB) *resource.Handler[model.Article, CreateBlogRequest, UpdateBlogRequest] {
	return resource.New[model.Article, CreateBlogRequest, UpdateBlogRequest](db, resource.Config[model.Article]{
		Name:         "Blog",
		PublicKey:    "slug",
		ActiveColumn: "is_active",
		Filters:      map[string]string{"author": "author"},
		Search:       []string{"title"},
		Order:        "published_at DESC, created_at DESC",
		Prepare: func(ctx context.Context, db *gorm.DB, a *model.Article) error {
			if a.Slug == "" {
				return resource.FieldErrors{"slug": "slug is required"}
			}
			html, err := services.RenderMarkdown(a.Content)
			if err != nil {
				return resource.FieldErrors{"content": "content could not be rendered"}
			}
			a.ContentHTML = html
			if a.Excerpt == "" {
				a.Excerpt = services.Excerpt(html, ExcerptLength)
			}
			if a.IsActive && a.PublishedAt == nil {
				now := time.Now().UTC()
				a.PublishedAt = &now
			}
			return nil
		},
	})
}
