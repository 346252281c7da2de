package service

import (
	"context"
	"net/http"

	"github.com/partygames/truthordare/internal/apiclient"
)

type ConnectivityService struct {
	api Requester
}

func NewConnectivityService(api Requester) *ConnectivityService {
	return &ConnectivityService{api: api}
}

// Ping succeeds on any 2xx from /ping.
func (s *ConnectivityService) Ping(ctx context.Context) error {
	return s.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Endpoint: "/ping"}, nil)
}
