package service

import (
	"context"
	"fmt"

	"github.com/damilare/otc-exchange/internal/directory"
	"github.com/damilare/otc-exchange/internal/domain"
	"github.com/damilare/otc-exchange/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validator runs every pre-creation check on an order request and reports
// all failures in one pass. A request that fails KYC and exceeds the max
// amount comes back with both errors, not whichever check ran first.
type Validator struct {
	catalog   *CatalogService
	wallets   *WalletResolver
	directory directory.UserDirectory
}

func NewValidator(catalog *CatalogService, wallets *WalletResolver, dir directory.UserDirectory) *Validator {
	return &Validator{catalog: catalog, wallets: wallets, directory: dir}
}

// Settlement is the resolved settlement target for a valid request. Exactly
// one of BankAccount or Wallet is set depending on direction.
type Settlement struct {
	BankAccount *models.BankAccount
	Wallet      *models.WalletAddress
}

// Validate checks a request against the catalog, the user's KYC standing
// and the available settlement methods. cryptoAmount is the asset-unit
// amount after conversion; range limits are defined in asset units.
func (v *Validator) Validate(ctx context.Context, userID uuid.UUID, direction string, asset *models.Asset, cryptoAmount decimal.Decimal, network string, bankDetails *models.BankDetails) (*Settlement, error) {
	var errs models.ValidationErrors

	status, err := v.directory.GetKYCStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup kyc status for %s: %w", userID, err)
	}
	if status != domain.KYCApproved {
		errs = append(errs, fmt.Errorf("kyc status is %q: %w", status, models.ErrKYCRequired))
	}

	if !asset.EnabledFor(direction) {
		errs = append(errs, fmt.Errorf("%s %s: %w", direction, asset.Symbol, models.ErrDirectionDisabled))
	}

	if cryptoAmount.LessThan(asset.MinAmount) || cryptoAmount.GreaterThan(asset.MaxAmount) {
		errs = append(errs, fmt.Errorf("amount %s outside [%s, %s] %s: %w",
			cryptoAmount, asset.MinAmount, asset.MaxAmount, asset.Symbol, models.ErrAmountOutOfRange))
	}

	settlement := &Settlement{}
	switch direction {
	case domain.DirectionSell:
		wallet, err := v.wallets.Resolve(ctx, asset.Symbol, network)
		if err != nil {
			return nil, err
		}
		if wallet == nil {
			errs = append(errs, fmt.Errorf("no active wallet for %s on %q: %w",
				asset.Symbol, network, models.ErrNoSettlementMethod))
		}
		settlement.Wallet = wallet

		if bankDetails == nil || bankDetails.BankName == "" || bankDetails.AccountName == "" || bankDetails.AccountNumber == "" {
			errs = append(errs, fmt.Errorf("payout details required on sell orders: %w", models.ErrMissingBankDetails))
		}
	default:
		accounts, err := v.catalog.ListActiveBankAccounts(ctx)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			errs = append(errs, fmt.Errorf("no active bank account to receive payment: %w", models.ErrNoSettlementMethod))
		} else {
			settlement.BankAccount = &accounts[0]
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return settlement, nil
}
