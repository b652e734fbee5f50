package packages

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhijazi/souqline-backend/pkg/db/models"
	pkgerrors "github.com/omarhijazi/souqline-backend/pkg/errors"
	"github.com/omarhijazi/souqline-backend/pkg/logger"
)

// CarrierClient registers a package with the downstream carrier. Registration
// is best-effort; the package row exists whether or not the call succeeds.
type CarrierClient interface {
	Register(ctx context.Context, order *models.Order, pkg *models.ShippingPackage) (trackingNumber string, err error)
}

// Service creates shipping packages for orders.
type Service interface {
	CreateFromOrder(ctx context.Context, orderID uuid.UUID) (*models.ShippingPackage, error)
}

type service struct {
	db      *gorm.DB
	carrier CarrierClient
	logg    *logger.Logger
}

// NewService wires the package service. carrier may be nil when no carrier
// integration is configured.
func NewService(db *gorm.DB, carrier CarrierClient, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database required")
	}
	return &service{db: db, carrier: carrier, logg: logg}, nil
}

func (s *service) CreateFromOrder(ctx context.Context, orderID uuid.UUID) (*models.ShippingPackage, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.PackageID != nil {
		var existing models.ShippingPackage
		if err := s.db.WithContext(ctx).First(&existing, "id = ?", *order.PackageID).Error; err == nil {
			return &existing, nil
		}
	}

	pkg := &models.ShippingPackage{
		ID:      uuid.New(),
		OrderID: order.ID,
	}

	if s.carrier != nil {
		tracking, err := s.carrier.Register(ctx, &order, pkg)
		if err != nil {
			if s.logg != nil {
				ctx := s.logg.WithOrderID(ctx, order.ID.String())
				s.logg.Error(ctx, "carrier registration failed, creating package without tracking", err)
			}
		} else {
			pkg.TrackingNumber = &tracking
			pkg.APISuccess = true
		}
	}

	if err := s.db.WithContext(ctx).Create(pkg).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shipping package")
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		UpdateColumn("package_id", pkg.ID).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link package to order")
	}

	return pkg, nil
}
