package pocketbase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// FullListBatch is the page size used by GetFullList.
const FullListBatch = 500

// ListOptions are the optional query parameters of a list request.
type ListOptions struct {
	Sort      string
	Filter    string
	Expand    string
	Fields    string
	SkipTotal bool
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	if o.Filter != "" {
		q.Set("filter", o.Filter)
	}
	if o.Expand != "" {
		q.Set("expand", o.Expand)
	}
	if o.Fields != "" {
		q.Set("fields", o.Fields)
	}
	if o.SkipTotal {
		q.Set("skipTotal", "1")
	}
	return q
}

// ListResult is one page of records. TotalItems and TotalPages are -1 when the
// request skipped the total count.
type ListResult[T any] struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
	Items      []T `json:"items"`
}

// AuthResult is the response of a password authentication.
type AuthResult[T any] struct {
	Token  string `json:"token"`
	Record T      `json:"record"`
}

// RecordService is typed access to one collection.
type RecordService[T any] struct {
	client     *Client
	collection string
}

// Collection returns typed access to the named collection.
func Collection[T any](client *Client, name string) *RecordService[T] {
	return &RecordService[T]{client: client, collection: name}
}

// Name returns the collection name or id.
func (s *RecordService[T]) Name() string {
	return s.collection
}

func (s *RecordService[T]) recordsPath() string {
	return "/api/collections/" + url.PathEscape(s.collection) + "/records"
}

func (s *RecordService[T]) recordPath(id string) string {
	return s.recordsPath() + "/" + url.PathEscape(id)
}

// GetList fetches one page of records.
func (s *RecordService[T]) GetList(ctx context.Context, page, perPage int, opts ListOptions) (*ListResult[T], error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}
	q := opts.query()
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(perPage))

	var out ListResult[T]
	if err := s.client.send(ctx, http.MethodGet, s.recordsPath(), q, nil, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []T{}
	}
	return &out, nil
}

// GetFullList fetches every record matching opts, FullListBatch at a time.
func (s *RecordService[T]) GetFullList(ctx context.Context, opts ListOptions) ([]T, error) {
	opts.SkipTotal = true
	var all []T
	for page := 1; ; page++ {
		result, err := s.GetList(ctx, page, FullListBatch, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Items...)
		if len(result.Items) < FullListBatch {
			break
		}
	}
	if all == nil {
		all = []T{}
	}
	return all, nil
}

// GetOne fetches a record by id.
func (s *RecordService[T]) GetOne(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, notFoundError(s.client.baseURL.JoinPath(s.recordsPath()).String())
	}
	var out T
	if err := s.client.send(ctx, http.MethodGet, s.recordPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFirstListItem returns the first record matching filter, or a 404
// *ResponseError when nothing matches.
func (s *RecordService[T]) GetFirstListItem(ctx context.Context, filter string) (*T, error) {
	result, err := s.GetList(ctx, 1, 1, ListOptions{Filter: filter, SkipTotal: true})
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, notFoundError(s.client.baseURL.JoinPath(s.recordsPath()).String())
	}
	return &result.Items[0], nil
}

// Create inserts a record. body is a *Form or any JSON-encodable value.
func (s *RecordService[T]) Create(ctx context.Context, body any) (*T, error) {
	var out T
	if err := s.client.send(ctx, http.MethodPost, s.recordsPath(), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update patches a record. body is a *Form or any JSON-encodable value.
func (s *RecordService[T]) Update(ctx context.Context, id string, body any) (*T, error) {
	if id == "" {
		return nil, fmt.Errorf("update %s: record id is required", s.collection)
	}
	var out T
	if err := s.client.send(ctx, http.MethodPatch, s.recordPath(id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a record.
func (s *RecordService[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete %s: record id is required", s.collection)
	}
	return s.client.send(ctx, http.MethodDelete, s.recordPath(id), nil, nil, nil)
}

// AuthWithPassword authenticates a record of an auth collection.
func (s *RecordService[T]) AuthWithPassword(ctx context.Context, identity, password string) (*AuthResult[T], error) {
	body := map[string]string{"identity": identity, "password": password}
	var out AuthResult[T]
	path := "/api/collections/" + url.PathEscape(s.collection) + "/auth-with-password"
	if err := s.client.send(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
