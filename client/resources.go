package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/services"
)

// Resource addresses one collection that follows the public/admin route
// layout: GET /{name}, GET /{name}/:key and /{name}/admin/... for writes.
type Resource[T any] struct {
	c    *Client
	path string
}

// ListOptions filter admin lists. Filters are sent as query parameters.
type ListOptions struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	for k, v := range o.Filters {
		q.Set(k, v)
	}
	return q
}

// List returns the public, active rows.
func (r Resource[T]) List(ctx context.Context, filters map[string]string) ([]T, error) {
	items := make([]T, 0)
	_, err := r.c.do(ctx, http.MethodGet, r.path, ListOptions{Filters: filters}.values(), nil, &items, false)
	return items, err
}

// Get returns one public row by its public key.
func (r Resource[T]) Get(ctx context.Context, key string) (*T, error) {
	var item T
	if _, err := r.c.do(ctx, http.MethodGet, r.path+"/"+url.PathEscape(key), nil, nil, &item, false); err != nil {
		return nil, err
	}
	return &item, nil
}

// AdminList returns a page of all rows.
func (r Resource[T]) AdminList(ctx context.Context, opts ListOptions) ([]T, *Pagination, error) {
	items := make([]T, 0)
	page, err := r.c.do(ctx, http.MethodGet, r.path+"/admin", opts.values(), nil, &items, true)
	return items, page, err
}

// AdminGet returns one row by id regardless of its active flag.
func (r Resource[T]) AdminGet(ctx context.Context, id string) (*T, error) {
	var item T
	if _, err := r.c.do(ctx, http.MethodGet, r.path+"/admin/"+url.PathEscape(id), nil, nil, &item, true); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create posts body and returns the stored row.
func (r Resource[T]) Create(ctx context.Context, body interface{}) (*T, error) {
	var item T
	if _, err := r.c.do(ctx, http.MethodPost, r.path+"/admin", nil, body, &item, true); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update sends the fields in body and returns the updated row.
func (r Resource[T]) Update(ctx context.Context, id string, body interface{}) (*T, error) {
	var item T
	if _, err := r.c.do(ctx, http.MethodPut, r.path+"/admin/"+url.PathEscape(id), nil, body, &item, true); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, http.MethodDelete, r.path+"/admin/"+url.PathEscape(id), nil, nil, nil, true)
	return err
}

func (c *Client) Programs() Resource[model.Program] {
	return Resource[model.Program]{c: c, path: "/programs"}
}

func (c *Client) Testimonials() Resource[model.Testimonial] {
	return Resource[model.Testimonial]{c: c, path: "/testimonials"}
}

func (c *Client) FAQs() Resource[model.FAQ] {
	return Resource[model.FAQ]{c: c, path: "/faqs"}
}

func (c *Client) Blogs() Resource[model.Article] {
	return Resource[model.Article]{c: c, path: "/blogs"}
}

func (c *Client) Content() Resource[model.ContentBlock] {
	return Resource[model.ContentBlock]{c: c, path: "/content"}
}

func (c *Client) Gallery() Resource[model.GalleryImage] {
	return Resource[model.GalleryImage]{c: c, path: "/gallery"}
}

// Universities has its own admin routes.
type Universities struct {
	c *Client
}

func (c *Client) Universities() Universities {
	return Universities{c: c}
}

// UniversityDetail is the public detail payload.
type UniversityDetail struct {
	University model.University `json:"university"`
	Fees       []model.Fee      `json:"fees"`
}

func (u Universities) List(ctx context.Context, filters map[string]string) ([]model.University, error) {
	items := make([]model.University, 0)
	_, err := u.c.do(ctx, http.MethodGet, "/universities", ListOptions{Filters: filters}.values(), nil, &items, false)
	return items, err
}

func (u Universities) Get(ctx context.Context, slug string) (*UniversityDetail, error) {
	var d UniversityDetail
	if _, err := u.c.do(ctx, http.MethodGet, "/universities/"+url.PathEscape(slug), nil, nil, &d, false); err != nil {
		return nil, err
	}
	return &d, nil
}

func (u Universities) AdminList(ctx context.Context, opts ListOptions) ([]model.University, *Pagination, error) {
	items := make([]model.University, 0)
	page, err := u.c.do(ctx, http.MethodGet, "/universities/admin/all", opts.values(), nil, &items, true)
	return items, page, err
}

func (u Universities) Create(ctx context.Context, body interface{}) (*model.University, error) {
	var item model.University
	if _, err := u.c.do(ctx, http.MethodPost, "/universities/admin", nil, body, &item, true); err != nil {
		return nil, err
	}
	return &item, nil
}

func (u Universities) Update(ctx context.Context, id string, body interface{}) (*model.University, error) {
	var item model.University
	if _, err := u.c.do(ctx, http.MethodPut, "/universities/admin/"+url.PathEscape(id), nil, body, &item, true); err != nil {
		return nil, err
	}
	return &item, nil
}

func (u Universities) Toggle(ctx context.Context, id string) (*model.University, error) {
	var item model.University
	if _, err := u.c.do(ctx, http.MethodPatch, "/universities/admin/"+url.PathEscape(id)+"/toggle", nil, nil, &item, true); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes the university and returns how many stored objects went
// with it.
func (u Universities) Delete(ctx context.Context, id string) (int, error) {
	var out struct {
		DeletedObjects int `json:"deleted_objects"`
	}
	_, err := u.c.do(ctx, http.MethodDelete, "/universities/admin/"+url.PathEscape(id), nil, nil, &out, true)
	return out.DeletedObjects, err
}

// SetFees merges fees into the schedule, or replaces it when replace is set.
func (u Universities) SetFees(ctx context.Context, slug string, fees []services.FeeInput, replace bool) ([]model.Fee, error) {
	var out struct {
		Fees []model.Fee `json:"fees"`
	}
	body := map[string]interface{}{"fees": fees, "replace": replace}
	if _, err := u.c.do(ctx, http.MethodPost, "/universities/"+url.PathEscape(slug)+"/fees", nil, body, &out, true); err != nil {
		return nil, err
	}
	return out.Fees, nil
}

// Leads groups the application and message endpoints.
type Leads struct {
	c *Client
}

func (c *Client) Leads() Leads {
	return Leads{c: c}
}

// Apply submits the public application form.
func (l Leads) Apply(ctx context.Context, form map[string]interface{}) (*model.Application, error) {
	var out struct {
		Application model.Application `json:"application"`
	}
	if _, err := l.c.do(ctx, http.MethodPost, "/applications", nil, form, &out, false); err != nil {
		return nil, err
	}
	return &out.Application, nil
}

func (l Leads) Applications(ctx context.Context, opts ListOptions) ([]model.Application, *Pagination, error) {
	items := make([]model.Application, 0)
	page, err := l.c.do(ctx, http.MethodGet, "/applications/admin", opts.values(), nil, &items, true)
	return items, page, err
}

func (l Leads) SetStatus(ctx context.Context, id string, status model.ApplicationStatus, notes string) (*model.Application, error) {
	var item model.Application
	body := map[string]string{"status": string(status), "notes": notes}
	if _, err := l.c.do(ctx, http.MethodPatch, "/applications/admin/"+url.PathEscape(id)+"/status", nil, body, &item, true); err != nil {
		return nil, err
	}
	return &item, nil
}

func (l Leads) Messages(ctx context.Context, opts ListOptions) ([]model.Message, *Pagination, error) {
	items := make([]model.Message, 0)
	page, err := l.c.do(ctx, http.MethodGet, "/messages/admin", opts.values(), nil, &items, true)
	return items, page, err
}

func (l Leads) MarkRead(ctx context.Context, id string, read bool) (*model.Message, error) {
	var item model.Message
	body := map[string]bool{"is_read": read}
	if _, err := l.c.do(ctx, http.MethodPatch, "/messages/admin/"+url.PathEscape(id)+"/read", nil, body, &item, true); err != nil {
		return nil, err
	}
	return &item, nil
}

// Dashboard returns the back-office headline counts.
func (c *Client) Dashboard(ctx context.Context) (*services.DashboardStats, error) {
	var stats services.DashboardStats
	if _, err := c.do(ctx, http.MethodGet, "/admin/dashboard", nil, nil, &stats, true); err != nil {
		return nil, err
	}
	return &stats, nil
}
