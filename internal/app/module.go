package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/kisancoop/dairyops/internal/app/api/server"
	"github.com/kisancoop/dairyops/internal/app/service/identity"
	"github.com/kisancoop/dairyops/internal/app/service/inventory"
	"github.com/kisancoop/dairyops/internal/app/service/menu"
	notificationlog "github.com/kisancoop/dairyops/internal/app/service/notification_log"
	"github.com/kisancoop/dairyops/internal/app/service/payment"
	"github.com/kisancoop/dairyops/internal/app/service/statistics"
	"github.com/kisancoop/dairyops/internal/app/service/sweep"
	"github.com/kisancoop/dairyops/internal/platform/cache"
	"github.com/kisancoop/dairyops/internal/platform/db"
	"github.com/kisancoop/dairyops/internal/platform/phonepe"
	"github.com/kisancoop/dairyops/pkg/config"
	"github.com/kisancoop/dairyops/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var coreModule = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	cache.Module,
	phonepe.Module,
	notificationlog.Module,
	statistics.Module,
	payment.Module,
	identity.Module,
	menu.Module,
	inventory.Module,
)

// Module is the API server composition.
var Module = fx.Options(
	coreModule,
	server.Module,
)

// SweeperModule runs only the periodic maintenance jobs.
var SweeperModule = fx.Options(
	coreModule,
	sweep.Module,
)
