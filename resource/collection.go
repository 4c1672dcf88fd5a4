// ABOUTME: Generic REST collection over one backend resource path
// ABOUTME: list, create, update, delete and delete-all with a uniform error contract
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/harperreed/crmtui/api"
)

// Gateway is the part of the API client collections and controllers need.
type Gateway interface {
	Do(ctx context.Context, method, path string, body, out any) error
	Upload(ctx context.Context, path, fieldName, filename string, file io.Reader, fields map[string]string, out any) error
	Notifier() api.Notifier
}

// Collection issues requests for records of type T under one path, e.g. /api/leads.
type Collection[T any] struct {
	gw   Gateway
	path string
	name string
}

// NewCollection returns a collection rooted at p.
func NewCollection[T any](gw Gateway, p string) *Collection[T] {
	return &Collection[T]{gw: gw, path: p, name: path.Base(p)}
}

// Path returns the collection root.
func (c *Collection[T]) Path() string {
	return c.path
}

// Item returns the path of one record.
func (c *Collection[T]) Item(id string) string {
	return c.path + "/" + id
}

// Gateway returns the underlying gateway for endpoints outside the CRUD set.
func (c *Collection[T]) Gateway() Gateway {
	return c.gw
}

// List fetches every record. The body may be a bare array or an object keyed by the
// collection name, e.g. {"leads": [...]}; both occur in the wild.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	var raw json.RawMessage
	if err := c.gw.Do(ctx, http.MethodGet, c.path, nil, &raw); err != nil {
		return nil, err
	}
	items, err := decodeList[T](raw, c.name)
	if err != nil {
		return nil, api.NewAPIError("GET "+c.path, http.StatusOK, err)
	}
	return items, nil
}

func decodeList[T any](raw json.RawMessage, key string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}

	var items []T
	if raw[0] == '{' {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", key, err)
		}
		inner, ok := wrapped[key]
		if !ok {
			return nil, fmt.Errorf("failed to decode %s: no %q field in response", key, key)
		}
		raw = inner
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Create posts item and returns the stored record.
func (c *Collection[T]) Create(ctx context.Context, item any) (T, error) {
	var out T
	err := c.gw.Do(ctx, http.MethodPost, c.path, item, &out)
	return out, err
}

// Update sends body (a full record or a partial patch) and returns the stored record.
func (c *Collection[T]) Update(ctx context.Context, id string, body any) (T, error) {
	var out T
	err := c.gw.Do(ctx, http.MethodPut, c.Item(id), body, &out)
	return out, err
}

// Patch sends body and ignores the response, for endpoints that answer with a message.
func (c *Collection[T]) Patch(ctx context.Context, id string, body any) error {
	return c.gw.Do(ctx, http.MethodPut, c.Item(id), body, nil)
}

// Delete removes one record.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.gw.Do(ctx, http.MethodDelete, c.Item(id), nil, nil)
}

// DeleteAll removes every record of this type.
func (c *Collection[T]) DeleteAll(ctx context.Context) error {
	return c.gw.Do(ctx, http.MethodDelete, c.path+"/delete-all", nil, nil)
}
