package echoapi

import (
	"fmt"
	"net"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/admissions/core"
	metricsvc "github.com/trezcool/admissions/services/metrics"
	"github.com/trezcool/admissions/services/ratelimit"
)

// newIPExtractor decides which address identifies a client.
// Without trusted proxies the socket peer is used and forwarding headers are ignored;
// otherwise X-Forwarded-For is honoured only for hops inside the trusted CIDRs.
func newIPExtractor(trustedProxies []string, logger core.Logger) echo.IPExtractor {
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	trusted := 0
	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			logger.Warn(fmt.Sprintf("ignoring trusted proxy %q", cidr), err)
			continue
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
		trusted++
	}
	if trusted == 0 {
		return echo.ExtractIPDirect()
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// rateLimitMiddleware throttles requests per client IP.
func rateLimitMiddleware(limiter *ratelimit.Limiter, metrics *metricsvc.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if limiter.Allow(ctx.RealIP(), time.Now()) {
				return next(ctx)
			}
			metrics.ObserveRateLimited()
			return errTooManyRequests
		}
	}
}
