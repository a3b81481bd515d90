package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	// DefaultHistoryPageSize is the movement history page size
	DefaultHistoryPageSize = 50
	maxHistoryPageSize     = 500

	// MissingLineInfo is reported for bulk lines without a variant or quantity
	MissingLineInfo = "missing line information"
	// InvalidLineQuantity is reported for bulk lines whose quantity is not an integer
	InvalidLineQuantity = "Quantity must be a positive integer"
)

// LedgerService applies stock movements. Every movement updates the variant's
// cached quantity and appends a ledger entry in the same transaction, so the
// quantity always equals IN minus OUT.
type LedgerService struct {
	variantRepo     inventory.VariantRepository
	movementRepo    inventory.MovementRepository
	userRepo        identity.UserRepository
	txScope         TransactionScope
	logger          *zap.Logger
	historyPageSize int
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	variantRepo inventory.VariantRepository,
	movementRepo inventory.MovementRepository,
	userRepo identity.UserRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		variantRepo:     variantRepo,
		movementRepo:    movementRepo,
		userRepo:        userRepo,
		txScope:         txScope,
		logger:          logger,
		historyPageSize: DefaultHistoryPageSize,
	}
}

// SetHistoryPageSize overrides the default history page size
func (s *LedgerService) SetHistoryPageSize(size int) {
	if size > 0 {
		s.historyPageSize = size
	}
}

// StockIn adds stock to a variant. The handler is optional.
func (s *LedgerService) StockIn(ctx context.Context, req StockMoveRequest) (*StockMoveResult, error) {
	return s.move(ctx, req, inventory.DirectionIn)
}

// StockOut removes stock from a variant. A handler is required.
func (s *LedgerService) StockOut(ctx context.Context, req StockMoveRequest) (*StockMoveResult, error) {
	if req.UserID == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "A handler is required for stock out")
	}
	return s.move(ctx, req, inventory.DirectionOut)
}

func (s *LedgerService) move(ctx context.Context, req StockMoveRequest, direction inventory.Direction) (*StockMoveResult, error) {
	user, err := s.resolveUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	var result StockMoveResult
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		variant, err := loadVariant(ctx, repos.VariantRepo(), req.VariantID)
		if err != nil {
			return err
		}
		entry, err := recordMovement(ctx, repos, variant, req.Quantity, direction, req.UserID, req.Reason)
		if err != nil {
			return err
		}
		entry.User = user
		entry.Variant = variant
		result.Movement = ToMovementResponse(entry)
		result.Variant = ToVariantResponse(variant)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// BulkMove applies each line on its own. A failing line is reported and the
// remaining lines still run; lines already applied are kept.
func (s *LedgerService) BulkMove(ctx context.Context, req BulkMoveRequest, direction inventory.Direction) (*BulkMoveResult, error) {
	if !direction.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown direction %q", direction)
	}
	if direction == inventory.DirectionOut && req.UserID == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "A handler is required for stock out")
	}
	if _, err := s.resolveUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	result := &BulkMoveResult{Errors: make([]string, 0)}
	for _, line := range req.Lines {
		if line.VariantID == "" || line.Quantity.IsMissing() {
			result.Errors = append(result.Errors, MissingLineInfo)
			continue
		}
		variantID, err := uuid.Parse(line.VariantID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: invalid variant id", line.VariantID))
			continue
		}
		quantity, err := line.Quantity.Int()
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", line.VariantID, InvalidLineQuantity))
			continue
		}

		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			variant, err := loadVariant(ctx, repos.VariantRepo(), variantID)
			if err != nil {
				return err
			}
			_, err = recordMovement(ctx, repos, variant, quantity, direction, req.UserID, req.Reason)
			return err
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", line.VariantID, s.lineReason(err)))
			continue
		}
		result.Applied++
	}
	result.Failed = len(result.Errors)

	s.logger.Info("bulk stock movement",
		zap.String("direction", string(direction)),
		zap.Int("lines", len(req.Lines)),
		zap.Int("applied", result.Applied),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *LedgerService) lineReason(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	s.logger.Error("bulk movement line failed", zap.Error(err))
	return "unexpected error"
}

// CancelOut reverses a stock-out: the quantity goes back onto the variant
// and the entry is deleted. Stock-in entries cannot be cancelled.
func (s *LedgerService) CancelOut(ctx context.Context, movementID uuid.UUID) (*CancelOutResult, error) {
	var result CancelOutResult
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.MovementRepo().FindByID(ctx, movementID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NotFound("Movement", movementID)
			}
			return err
		}
		if err := entry.EnsureCancelable(); err != nil {
			return err
		}

		variant, err := loadVariant(ctx, repos.VariantRepo(), entry.VariantID)
		if err != nil {
			return err
		}
		if err := variant.StockIn(entry.Quantity); err != nil {
			return err
		}
		if err := repos.VariantRepo().SaveQuantity(ctx, variant); err != nil {
			return err
		}
		if err := repos.MovementRepo().Delete(ctx, entry.ID); err != nil {
			return err
		}

		result = CancelOutResult{
			CancelledID: entry.ID,
			Restored:    entry.Quantity,
			Variant:     ToVariantResponse(variant),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock out cancelled",
		zap.String("movement_id", movementID.String()),
		zap.String("variant_id", result.Variant.ID.String()),
		zap.Int("restored", result.Restored),
	)
	return &result, nil
}

// History returns a page of ledger entries, newest first
func (s *LedgerService) History(ctx context.Context, filter HistoryFilter) (shared.Paginated[MovementResponse], error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	page := shared.Page{Page: filter.Page, PageSize: filter.PageSize}.Normalize(s.historyPageSize, maxHistoryPageSize)

	logs, err := s.movementRepo.Search(ctx, domainFilter, page)
	if err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	return shared.MapPaginated(logs, func(l inventory.MovementLog) MovementResponse {
		return ToMovementResponse(&l)
	}), nil
}

// ExportHistory returns every ledger entry matching the filter, newest first
func (s *LedgerService) ExportHistory(ctx context.Context, filter HistoryFilter) ([]MovementResponse, error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, err
	}
	logs, err := s.movementRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	out := make([]MovementResponse, len(logs))
	for i := range logs {
		out[i] = ToMovementResponse(&logs[i])
	}
	return out, nil
}

func (s *LedgerService) resolveUser(ctx context.Context, userID *uuid.UUID) (*identity.User, error) {
	if userID == nil {
		return nil, nil
	}
	user, err := s.userRepo.FindByID(ctx, *userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("User", *userID)
		}
		return nil, err
	}
	return user, nil
}

func loadVariant(ctx context.Context, repo inventory.VariantRepository, id uuid.UUID) (*inventory.Variant, error) {
	variant, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Variant", id)
		}
		return nil, err
	}
	return variant, nil
}

// recordMovement applies the movement to a loaded variant and persists both
// the new quantity and the ledger entry through repos
func recordMovement(
	ctx context.Context,
	repos TransactionalRepositories,
	variant *inventory.Variant,
	quantity int,
	direction inventory.Direction,
	userID *uuid.UUID,
	reason string,
) (*inventory.MovementLog, error) {
	var err error
	switch direction {
	case inventory.DirectionIn:
		err = variant.StockIn(quantity)
	case inventory.DirectionOut:
		err = variant.StockOut(quantity)
	default:
		err = shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown direction %q", direction)
	}
	if err != nil {
		return nil, err
	}

	entry, err := inventory.NewMovementLog(variant.ID, userID, quantity, direction, shared.NormalizeText(reason))
	if err != nil {
		return nil, err
	}
	if err := repos.VariantRepo().SaveQuantity(ctx, variant); err != nil {
		return nil, err
	}
	if err := repos.MovementRepo().Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record movement: %w", err)
	}
	return entry, nil
}
