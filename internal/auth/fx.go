package auth

import (
	"github.com/smallbiznis/orderdesk/internal/auth/repository"
	"github.com/smallbiznis/orderdesk/internal/auth/service"
	"github.com/smallbiznis/orderdesk/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(session.NewManager),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
