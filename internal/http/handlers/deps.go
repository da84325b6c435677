package handlers

import (
	"sync"

	"busticket/internal/cache"
	intconfig "busticket/internal/config"
	"busticket/internal/http/middleware"
	"busticket/internal/mq"
	"busticket/internal/services"
	"busticket/internal/vnpay"

	"github.com/gin-gonic/gin"
)

// Deps carries the process-wide collaborators handlers need beyond the
// database singleton: cache, broker and the payment gateway client.
type Deps struct {
	Env     intconfig.Env
	Holds   *cache.Holds
	Events  mq.BookingEvents
	Gateway *vnpay.Client
}

var (
	depsMu sync.RWMutex
	deps   Deps
)

// SetDeps stores the shared collaborators. Called once at startup, before
// the router starts serving.
func SetDeps(d Deps) {
	depsMu.Lock()
	defer depsMu.Unlock()
	deps = d
}

func getDeps() Deps {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return deps
}

func bookingSvc(c *gin.Context) services.BookingService {
	d := getDeps()
	return services.BookingService{
		Holds:         d.Holds,
		Events:        d.Events,
		Gateway:       d.Gateway,
		PaymentExpiry: d.Env.PaymentExpiry,
		RequestID:     middleware.GetRequestID(c),
	}
}

func paymentSvc(c *gin.Context) services.PaymentService {
	d := getDeps()
	return services.PaymentService{
		Holds:     d.Holds,
		Events:    d.Events,
		Gateway:   d.Gateway,
		RequestID: middleware.GetRequestID(c),
	}
}

func tripSvc(c *gin.Context) services.TripService {
	return services.TripService{RequestID: middleware.GetRequestID(c)}
}

func routeSvc(c *gin.Context) services.RouteService {
	return services.RouteService{RequestID: middleware.GetRequestID(c)}
}

func authSvc(c *gin.Context) services.AuthService {
	return services.AuthService{
		JWTSecret: getDeps().Env.JWTSecret,
		RequestID: middleware.GetRequestID(c),
	}
}

func docsSvc(c *gin.Context) services.DocsService {
	return services.DocsService{RequestID: middleware.GetRequestID(c)}
}
