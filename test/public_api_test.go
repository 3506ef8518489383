//go:build integration
// +build integration

package test

import (
	"github.com/MrEthical07/authjwt"
	"github.com/MrEthical07/authjwt/httpapi"
	"github.com/MrEthical07/authjwt/metrics/export/otel"
	"github.com/MrEthical07/authjwt/metrics/export/prometheus"
	"github.com/MrEthical07/authjwt/middleware"
	"github.com/MrEthical07/authjwt/store"
	"github.com/MrEthical07/authjwt/userstore"
)

var (
	_ middleware.Authenticator = (*authjwt.Engine)(nil)
	_ httpapi.Engine           = (*authjwt.Engine)(nil)
	_ httpapi.Registrar        = (*userstore.Store)(nil)
	_ authjwt.Authenticator    = (*userstore.Store)(nil)
	_ authjwt.UserLookup       = (*userstore.Store)(nil)
	_ prometheus.Source        = (*authjwt.Engine)(nil)
	_ otel.Source              = (*authjwt.Engine)(nil)
	_ store.Store              = (*store.RedisStore)(nil)
	_ authjwt.AuditSink        = authjwt.NoOpSink{}
)
