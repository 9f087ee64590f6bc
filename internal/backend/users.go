package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"uleaf-admin/internal/config"
	"uleaf-admin/internal/domain"
)

type UserQuery struct {
	Role    string
	Status  string
	Search  string
	Page    int
	Limit   int
	SortBy  string
	SortDir string
}

type SearchQuery struct {
	Query    string
	UserType string
	Limit    int
	Offset   int
}

type UserPage struct {
	Users      []domain.User
	Pagination *domain.Pagination
}

func (c *Client) ListUsers(ctx context.Context, q UserQuery) (*UserPage, error) {
	v := url.Values{}
	setIfNotEmpty(v, "role", q.Role)
	setIfNotEmpty(v, "status", q.Status)
	setIfNotEmpty(v, "search", q.Search)
	setIfPositive(v, "page", q.Page)
	setIfPositive(v, "limit", q.Limit)
	setIfNotEmpty(v, "sortBy", q.SortBy)
	setIfNotEmpty(v, "sortDir", q.SortDir)

	env, err := c.do(ctx, request{method: http.MethodGet, endpoint: config.EndpointGetAllUsers, query: v})
	if err != nil {
		return nil, err
	}
	return decodeUserPage(env)
}

func (c *Client) SearchUsers(ctx context.Context, q SearchQuery) (*UserPage, error) {
	v := url.Values{}
	v.Set("query", q.Query)
	setIfNotEmpty(v, "userType", q.UserType)
	setIfPositive(v, "limit", q.Limit)
	setIfPositive(v, "offset", q.Offset)

	env, err := c.do(ctx, request{method: http.MethodGet, endpoint: config.EndpointSearchUser, query: v})
	if err != nil {
		return nil, err
	}
	return decodeUserPage(env)
}

func decodeUserPage(env *envelope) (*UserPage, error) {
	records, err := env.list("users")
	if err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	page := &UserPage{Users: make([]domain.User, 0, len(records)), Pagination: env.pagination()}
	for _, m := range records {
		page.Users = append(page.Users, userFromRecord(m))
	}
	return page, nil
}

func userFromRecord(m map[string]any) domain.User {
	return domain.User{
		ID:         stringField(m, "id", "uid", "_id"),
		Role:       domain.UserRole(stringField(m, "role", "userType")),
		Status:     stringField(m, "status"),
		FirstName:  stringField(m, "firstName"),
		LastName:   stringField(m, "lastName"),
		Username:   stringField(m, "username"),
		Email:      stringField(m, "email"),
		Avatar:     stringField(m, "profilePhotoUrl", "profileImage", "avatar"),
		GardenName: stringField(m, "gardenOrCompanyName", "gardenName", "garden"),
	}
}

func setIfNotEmpty(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

func setIfPositive(v url.Values, key string, n int) {
	if n > 0 {
		v.Set(key, strconv.Itoa(n))
	}
}
