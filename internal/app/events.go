package app

import (
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/domain"
	"go.uber.org/zap"
)

func auditCreated(p domain.Product) {
	zap.L().Info("product created",
		zap.String("namespace", "audit"),
		zap.Int64("id", p.ID),
		zap.String("name", p.Name),
		zap.String("price", p.Price.String()))
}

func auditUpdated(p domain.Product) {
	zap.L().Info("product updated",
		zap.String("namespace", "audit"),
		zap.Int64("id", p.ID),
		zap.String("name", p.Name),
		zap.String("price", p.Price.String()))
}

func auditDeleted(id int64) {
	zap.L().Info("product deleted", zap.String("namespace", "audit"), zap.Int64("id", id))
}

func (a *Application) subscribeAudit() error {
	if err := a.bus.Subscribe(catalog.TopicProductCreated, auditCreated); err != nil {
		return errors.Wrap(err, "subscribe audit")
	}
	if err := a.bus.Subscribe(catalog.TopicProductUpdated, auditUpdated); err != nil {
		return errors.Wrap(err, "subscribe audit")
	}
	if err := a.bus.Subscribe(catalog.TopicProductDeleted, auditDeleted); err != nil {
		return errors.Wrap(err, "subscribe audit")
	}
	return nil
}

func (a *Application) unsubscribeAudit() {
	if a.bus == nil {
		return
	}
	_ = a.bus.Unsubscribe(catalog.TopicProductCreated, auditCreated)
	_ = a.bus.Unsubscribe(catalog.TopicProductUpdated, auditUpdated)
	_ = a.bus.Unsubscribe(catalog.TopicProductDeleted, auditDeleted)
}
