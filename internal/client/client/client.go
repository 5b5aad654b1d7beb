package client

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
)

// Client is the transport contract towards the session backend.
type Client interface {
	Close() error
	UserInfo(ctx context.Context) (*models.Identity, error)
	Logout(ctx context.Context) error
}
