package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	csvimport "github.com/stockledger/backend/internal/infrastructure/import"
	"go.uber.org/zap"
)

// PendingService runs the intake workflow: pasted rows become PENDING
// batches, which are later committed to the ledger or cancelled.
type PendingService struct {
	itemRepo    catalog.ItemRepository
	specRepo    catalog.SpecRepository
	variantRepo inventory.VariantRepository
	batchRepo   inventory.PendingBatchRepository
	txScope     TransactionScope
	parser      *csvimport.RowParser
	logger      *zap.Logger
}

// NewPendingService creates a new PendingService
func NewPendingService(
	itemRepo catalog.ItemRepository,
	specRepo catalog.SpecRepository,
	variantRepo inventory.VariantRepository,
	batchRepo inventory.PendingBatchRepository,
	txScope TransactionScope,
	parser *csvimport.RowParser,
	logger *zap.Logger,
) *PendingService {
	if parser == nil {
		parser = csvimport.NewRowParser()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PendingService{
		itemRepo:    itemRepo,
		specRepo:    specRepo,
		variantRepo: variantRepo,
		batchRepo:   batchRepo,
		txScope:     txScope,
		parser:      parser,
		logger:      logger,
	}
}

// resolvedLine is a grouped row whose names resolved to catalog records
type resolvedLine struct {
	line   csvimport.IntakeLine
	itemID uuid.UUID
	specID uuid.UUID
}

// SubmitRecords parses, validates and stores intake rows. Any invalid or
// unresolvable row blocks the whole submission: either every group becomes
// a batch or none does. On rejection the result carries the row errors.
func (s *PendingService) SubmitRecords(ctx context.Context, records []csvimport.Record) (*SubmitRowsResult, error) {
	groups, rowErrors := s.parser.Parse(records)
	if len(rowErrors) > 0 {
		return rejected(rowErrors)
	}
	if len(groups) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, csvimport.ErrNoDataRows.Error())
	}

	resolved, rowErrors, err := s.resolve(ctx, groups)
	if err != nil {
		return nil, err
	}
	if len(rowErrors) > 0 {
		return rejected(rowErrors)
	}

	result := &SubmitRowsResult{Batches: make([]BatchSummary, 0, len(groups))}
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for i, group := range groups {
			batch, err := inventory.NewPendingBatch(group.Supplier, group.Date)
			if err != nil {
				return err
			}
			for _, rl := range resolved[i] {
				if _, err := batch.AddLine(rl.itemID, rl.specID, rl.line.Quantity, rl.line.Row); err != nil {
					return err
				}
			}
			if err := repos.PendingBatchRepo().Create(ctx, batch); err != nil {
				return fmt.Errorf("failed to create pending batch: %w", err)
			}
			result.Batches = append(result.Batches, ToBatchSummary(batch))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("intake rows submitted",
		zap.Int("rows", len(records)),
		zap.Int("batches", len(result.Batches)),
	)
	return result, nil
}

// SubmitRows accepts rows as arrays of cells, numbered from 1
func (s *PendingService) SubmitRows(ctx context.Context, rows [][]string) (*SubmitRowsResult, error) {
	return s.SubmitRecords(ctx, csvimport.RecordsFromRows(rows))
}

func rejected(rowErrors []csvimport.RowError) (*SubmitRowsResult, error) {
	return &SubmitRowsResult{Batches: make([]BatchSummary, 0), Errors: rowErrors},
		shared.NewDomainErrorf(shared.CodeInvalidInput, "Intake rejected: %d row(s) have errors", len(rowErrors))
}

// resolve looks up the item, spec and variant of every grouped line
func (s *PendingService) resolve(ctx context.Context, groups []csvimport.IntakeGroup) ([][]resolvedLine, []csvimport.RowError, error) {
	ec := csvimport.NewErrorCollection(500)
	items := make(map[string][]catalog.Item)
	specs := make(map[string]*catalog.Spec)
	out := make([][]resolvedLine, len(groups))

	for gi, group := range groups {
		for _, line := range group.Lines {
			candidates, ok := items[line.ItemName]
			if !ok {
				found, err := s.itemRepo.FindByName(ctx, line.ItemName)
				if err != nil {
					return nil, nil, err
				}
				candidates = found
				items[line.ItemName] = found
			}
			if len(candidates) == 0 {
				ec.AddReferenceError(line.Row, csvimport.ColumnItem, line.ItemName, "item")
				continue
			}

			spec, ok := specs[line.SpecLabel]
			if !ok {
				found, err := s.specRepo.FindByLabel(ctx, line.SpecLabel)
				if err != nil && !errors.Is(err, shared.ErrNotFound) {
					return nil, nil, err
				}
				spec = found
				specs[line.SpecLabel] = found
			}
			if spec == nil {
				ec.AddReferenceError(line.Row, csvimport.ColumnSpec, line.SpecLabel, "spec")
				continue
			}

			// A name shared by items in different categories is accepted when
			// exactly one of them has this spec registered
			var matches []uuid.UUID
			for _, item := range candidates {
				_, err := s.variantRepo.FindByItemAndSpec(ctx, item.ID, spec.ID)
				if err == nil {
					matches = append(matches, item.ID)
					continue
				}
				if !errors.Is(err, shared.ErrNotFound) {
					return nil, nil, err
				}
			}
			switch len(matches) {
			case 0:
				ec.Add(csvimport.NewRowErrorWithValue(line.Row, csvimport.ColumnSpec, csvimport.ErrCodeImportReferenceNotFound,
					fmt.Sprintf("item '%s' has no spec '%s'", line.ItemName, line.SpecLabel), line.SpecLabel))
			case 1:
				out[gi] = append(out[gi], resolvedLine{line: line, itemID: matches[0], specID: spec.ID})
			default:
				ec.AddAmbiguousError(line.Row, csvimport.ColumnItem, line.ItemName, "item", len(matches))
			}
		}
	}
	return out, ec.Errors(), nil
}

// ListBatches lists batches with the given statuses, newest delivery first
func (s *PendingService) ListBatches(ctx context.Context, filter BatchListFilter) ([]BatchSummary, error) {
	statuses, err := filter.Statuses()
	if err != nil {
		return nil, err
	}
	batches, err := s.batchRepo.FindByStatus(ctx, statuses)
	if err != nil {
		return nil, err
	}
	out := make([]BatchSummary, len(batches))
	for i := range batches {
		out[i] = ToBatchSummary(&batches[i])
	}
	return out, nil
}

// GetBatchItems returns a batch with its lines
func (s *PendingService) GetBatchItems(ctx context.Context, batchID uuid.UUID) (*BatchItemsResponse, error) {
	batch, err := s.loadBatch(ctx, s.batchRepo, batchID)
	if err != nil {
		return nil, err
	}
	return s.toBatchItems(ctx, batch)
}

// UpdateQuantities replaces every line quantity of a PENDING batch. The
// update must name every line; nothing is written unless all lines pass.
func (s *PendingService) UpdateQuantities(ctx context.Context, batchID uuid.UUID, req UpdateQuantitiesRequest) (*BatchItemsResponse, error) {
	quantities := make(map[uuid.UUID]int, len(req.Updates))
	for _, u := range req.Updates {
		quantities[u.ID] = u.Quantity
	}

	var batch *inventory.PendingBatch
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batch, err = s.loadBatch(ctx, repos.PendingBatchRepo(), batchID)
		if err != nil {
			return err
		}
		if err := batch.UpdateQuantities(quantities); err != nil {
			return err
		}
		return repos.PendingBatchRepo().SaveQuantities(ctx, batch)
	})
	if err != nil {
		return nil, err
	}
	return s.toBatchItems(ctx, batch)
}

// ProcessBatch commits a PENDING batch. The lines with a positive quantity
// must be exactly the lines of the batch. Within one transaction every line
// quantity is saved, each line is stocked in credited to actor, and the
// batch becomes DONE; any failure rolls all of it back.
func (s *PendingService) ProcessBatch(ctx context.Context, batchID uuid.UUID, req ProcessBatchRequest, actor *identity.User) (*ProcessBatchResult, error) {
	if actor == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Commit actor is required")
	}
	lines := make([]inventory.CommitLine, len(req.Quantities))
	for i, q := range req.Quantities {
		lines[i] = inventory.CommitLine{LineID: q.ID, Quantity: q.Quantity}
	}

	var result ProcessBatchResult
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := s.loadBatch(ctx, repos.PendingBatchRepo(), batchID)
		if err != nil {
			return err
		}
		if err := batch.PrepareCommit(lines); err != nil {
			return err
		}
		if err := repos.PendingBatchRepo().SaveQuantities(ctx, batch); err != nil {
			return err
		}

		reason := "intake: " + batch.Supplier
		for _, line := range batch.Items {
			variant, err := repos.VariantRepo().FindByItemAndSpec(ctx, line.ItemID, line.SpecID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NewDomainErrorf(shared.CodeNotFound,
						"Line %s (%s): no variant is registered for this item and spec", line.ID, line.DisplayName())
				}
				return err
			}
			if _, err := recordMovement(ctx, repos, variant, line.Quantity, inventory.DirectionIn, &actor.ID, reason); err != nil {
				return err
			}
			result.Applied++
		}

		if err := batch.MarkDone(actor, time.Now()); err != nil {
			return err
		}
		if err := repos.PendingBatchRepo().SaveStatus(ctx, batch); err != nil {
			return err
		}
		result.Batch = ToBatchSummary(batch)
		return nil
	})
	if err != nil {
		s.logger.Warn("pending batch commit rolled back",
			zap.String("batch_id", batchID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("pending batch committed",
		zap.String("batch_id", batchID.String()),
		zap.String("supplier", result.Batch.Supplier),
		zap.Int("lines", result.Applied),
		zap.Int("quantity", result.Batch.TotalQuantity),
	)
	return &result, nil
}

// CancelBatch moves a PENDING batch to CANCELED without touching stock
func (s *PendingService) CancelBatch(ctx context.Context, batchID uuid.UUID) (*BatchSummary, error) {
	var summary BatchSummary
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := s.loadBatch(ctx, repos.PendingBatchRepo(), batchID)
		if err != nil {
			return err
		}
		if err := batch.Cancel(); err != nil {
			return err
		}
		if err := repos.PendingBatchRepo().SaveStatus(ctx, batch); err != nil {
			return err
		}
		summary = ToBatchSummary(batch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("pending batch cancelled", zap.String("batch_id", batchID.String()))
	return &summary, nil
}

func (s *PendingService) loadBatch(ctx context.Context, repo inventory.PendingBatchRepository, id uuid.UUID) (*inventory.PendingBatch, error) {
	batch, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Pending batch", id)
		}
		return nil, err
	}
	return batch, nil
}

func (s *PendingService) toBatchItems(ctx context.Context, batch *inventory.PendingBatch) (*BatchItemsResponse, error) {
	resp := &BatchItemsResponse{
		BatchSummary: ToBatchSummary(batch),
		Items:        make([]BatchItemResponse, len(batch.Items)),
	}
	for i, line := range batch.Items {
		item := BatchItemResponse{
			ID:       line.ID,
			ItemID:   line.ItemID,
			SpecID:   line.SpecID,
			Item:     line.DisplayName(),
			Quantity: line.Quantity,
			Row:      line.RowIndex,
		}
		variant, err := s.variantRepo.FindByItemAndSpec(ctx, line.ItemID, line.SpecID)
		switch {
		case err == nil:
			item.VariantCode = variant.Code
		case !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}
		resp.Items[i] = item
	}
	return resp, nil
}
