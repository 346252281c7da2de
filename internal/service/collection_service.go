package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/partygames/truthordare/internal/apiclient"
	"github.com/partygames/truthordare/internal/domain"
)

type CollectionService struct {
	api Requester
}

func NewCollectionService(api Requester) *CollectionService {
	return &CollectionService{api: api}
}

func (s *CollectionService) Trending(ctx context.Context, limit int) ([]domain.Collection, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	resp, err := send[domain.ItemsResponse[domain.Collection]](ctx, s.api, apiclient.Request{
		Method:   http.MethodGet,
		Endpoint: "/collections/trending",
		Query:    url.Values{"limit": {strconv.Itoa(limit)}},
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (s *CollectionService) List(ctx context.Context, p PageRequest) (domain.CollectionPage, error) {
	p = normalizePageRequest(p)
	return send[domain.CollectionPage](ctx, s.api, apiclient.Request{
		Method:   http.MethodGet,
		Endpoint: "/collections",
		Query: url.Values{
			"page": {strconv.Itoa(p.Page)},
			"size": {strconv.Itoa(p.PageSize)},
		},
	})
}

func (s *CollectionService) Get(ctx context.Context, id int) (domain.Collection, error) {
	return send[domain.Collection](ctx, s.api, apiclient.Request{
		Method:   http.MethodGet,
		Endpoint: collectionPath(id),
	})
}

func (s *CollectionService) Actions(ctx context.Context, id int) ([]domain.Action, error) {
	resp, err := send[domain.ItemsResponse[domain.Action]](ctx, s.api, apiclient.Request{
		Method:   http.MethodGet,
		Endpoint: collectionPath(id) + "/actions",
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// WithActions loads a collection and fills in its actions.
func (s *CollectionService) WithActions(ctx context.Context, id int) (domain.Collection, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return domain.Collection{}, err
	}
	if c.Actions != nil {
		return c, nil
	}
	actions, err := s.Actions(ctx, id)
	if err != nil {
		return domain.Collection{}, err
	}
	c.Actions = actions
	return c, nil
}

func (s *CollectionService) Mine(ctx context.Context) ([]domain.Collection, error) {
	resp, err := send[domain.ItemsResponse[domain.Collection]](ctx, s.api, apiclient.Request{
		Method:       http.MethodGet,
		Endpoint:     "/user/collections",
		RequiresAuth: true,
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (s *CollectionService) Create(ctx context.Context, in domain.CollectionInput) (string, error) {
	return s.message(ctx, http.MethodPost, "/collections", in)
}

func (s *CollectionService) Update(ctx context.Context, id int, in domain.CollectionInput) (string, error) {
	return s.message(ctx, http.MethodPut, collectionPath(id), in)
}

func (s *CollectionService) Delete(ctx context.Context, id int) (string, error) {
	return s.message(ctx, http.MethodDelete, collectionPath(id), nil)
}

func (s *CollectionService) AddAction(ctx context.Context, collectionID int, in domain.ActionInput) (string, error) {
	return s.message(ctx, http.MethodPost, collectionPath(collectionID)+"/actions", in)
}

func (s *CollectionService) RemoveAction(ctx context.Context, actionID int) (string, error) {
	return s.message(ctx, http.MethodDelete, fmt.Sprintf("/actions/%d", actionID), nil)
}

func (s *CollectionService) message(ctx context.Context, method, endpoint string, body any) (string, error) {
	resp, err := send[domain.MessageResponse](ctx, s.api, apiclient.Request{
		Method:       method,
		Endpoint:     endpoint,
		Body:         body,
		RequiresAuth: true,
	})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func collectionPath(id int) string {
	return fmt.Sprintf("/collections/%d", id)
}
