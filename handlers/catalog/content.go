package catalog

import (
	"github.com/mathwaksu-byte/MathwaV2/handlers/resource"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"gorm.io/gorm"
)

type CreateContentRequest struct {
	Key      string `json:"key" validate:"required,max=120"`
	Value    string `json:"value"`
	IsActive *bool  `json:"is_active"`
}

func (r CreateContentRequest) Apply(b *model.ContentBlock) {
	b.Key = r.Key
	b.Value = r.Value
	b.IsActive = r.IsActive == nil || *r.IsActive
}

type UpdateContentRequest struct {
	Value    *string `json:"value"`
	IsActive *bool   `json:"is_active"`
}

func (r UpdateContentRequest) Apply(b *model.ContentBlock) {
	if r.Value != nil {
		b.Value = *r.Value
	}
	setBool(&b.IsActive, r.IsActive)
}

// Content serves /content. Blocks are read publicly by key, either as
// /content/:key or /content?key=.
func Content(db *gorm.DB) *resource.Handler[model.ContentBlock, CreateContentRequest, UpdateContentRequest] {
	return resource.New[model.ContentBlock, CreateContentRequest, UpdateContentRequest](db, resource.Config[model.ContentBlock]{
		Name:         "Content block",
		PublicKey:    "key",
		ActiveColumn: "is_active",
		Filters:      map[string]string{"key": "key"},
		Search:       []string{"key"},
		Order:        "key ASC",
	})
}
