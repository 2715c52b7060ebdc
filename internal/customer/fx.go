package customer

import (
	"github.com/smallbiznis/orderdesk/internal/customer/repository"
	"github.com/smallbiznis/orderdesk/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
