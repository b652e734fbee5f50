package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omarhijazi/souqline-backend/pkg/db/models"
	"github.com/omarhijazi/souqline-backend/pkg/enums"
	pkgerrors "github.com/omarhijazi/souqline-backend/pkg/errors"
	"github.com/omarhijazi/souqline-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service posts and reverses the profit settlement for an order. Both
// operations hinge on the profits_distributed compare-and-set: whoever wins
// the swap writes the ledger entries, everyone else is a no-op.
type Service interface {
	// Distribute credits commission and marketer profit once per order.
	// Returns false when profits were already distributed.
	Distribute(ctx context.Context, order *models.Order, actorID uuid.UUID) (bool, error)
	// Reverse debits the previously credited amounts. Returns false when
	// there was nothing to reverse.
	Reverse(ctx context.Context, order *models.Order, actorID uuid.UUID, reason string) (bool, error)
	Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	adminUserID uuid.UUID
	logg        *logger.Logger
}

// NewService wires a settlement service. adminUserID names the platform wallet
// that receives commissions.
func NewService(repo Repository, tx txRunner, adminUserID uuid.UUID, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if adminUserID == uuid.Nil {
		return nil, fmt.Errorf("admin user id required")
	}
	return &service{repo: repo, tx: tx, adminUserID: adminUserID, logg: logg}, nil
}

func (s *service) Distribute(ctx context.Context, order *models.Order, actorID uuid.UUID) (bool, error) {
	if order == nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	applied := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		swapped, err := repo.SwapProfitsDistributed(ctx, order.ID, false, true)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark profits distributed")
		}
		if !swapped {
			return nil
		}
		applied = true

		for _, entry := range s.settlementEntries(order, enums.WalletEntryTypeCredit, "order delivered") {
			if err := repo.Create(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post wallet credit")
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if applied && s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Info(ctx, "order profits distributed")
	}
	return applied, nil
}

func (s *service) Reverse(ctx context.Context, order *models.Order, actorID uuid.UUID, reason string) (bool, error) {
	if order == nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	applied := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		swapped, err := repo.SwapProfitsDistributed(ctx, order.ID, true, false)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear profits distributed")
		}
		if !swapped {
			return nil
		}
		applied = true

		for _, entry := range s.settlementEntries(order, enums.WalletEntryTypeDebit, reason) {
			if err := repo.Create(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post wallet debit")
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if applied && s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"order_id":        order.ID.String(),
			"commission":      order.Commission.String(),
			"marketer_profit": order.MarketerProfit.String(),
		})
		s.logg.Info(ctx, "order profit settlement reversed")
	}
	return applied, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	if userID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet entries")
	}
	balance := decimal.Zero
	for _, entry := range entries {
		switch entry.Type {
		case enums.WalletEntryTypeCredit:
			balance = balance.Add(entry.Amount)
		case enums.WalletEntryTypeDebit:
			balance = balance.Sub(entry.Amount)
		}
	}
	return balance, nil
}

func (s *service) settlementEntries(order *models.Order, entryType enums.WalletEntryType, reason string) []*models.WalletEntry {
	entries := make([]*models.WalletEntry, 0, 2)
	if order.Commission.IsPositive() {
		entries = append(entries, &models.WalletEntry{
			ID:      uuid.New(),
			UserID:  s.adminUserID,
			OrderID: order.ID,
			Type:    entryType,
			Amount:  order.Commission,
			Reason:  "commission: " + reason,
		})
	}
	if order.MarketerProfit.IsPositive() {
		entries = append(entries, &models.WalletEntry{
			ID:      uuid.New(),
			UserID:  order.CustomerID,
			OrderID: order.ID,
			Type:    entryType,
			Amount:  order.MarketerProfit,
			Reason:  "marketer profit: " + reason,
		})
	}
	return entries
}
