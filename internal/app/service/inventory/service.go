package inventory

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kisancoop/dairyops/pkg/config"
	"github.com/kisancoop/dairyops/pkg/types"
)

type Service struct {
	cfg       *config.Config
	log       *zap.SugaredLogger
	db        *gorm.DB
	hierarchy *HierarchyChecker
}

func NewService(cfg *config.Config, log *zap.SugaredLogger, db *gorm.DB, hierarchy *HierarchyChecker) Manager {
	return &Service{cfg: cfg, log: log, db: db, hierarchy: hierarchy}
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}
