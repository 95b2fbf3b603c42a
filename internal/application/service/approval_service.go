package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uniformhq/uniform-orders/internal/application/port"
	appwf "github.com/uniformhq/uniform-orders/internal/application/workflow"
	"github.com/uniformhq/uniform-orders/internal/domain/entity"
	domainwf "github.com/uniformhq/uniform-orders/internal/domain/workflow"
	"github.com/uniformhq/uniform-orders/pkg/apperrors"
	"github.com/uniformhq/uniform-orders/pkg/utils"
)

// BulkEntry is one order in a bulk approval request. Callers may submit both
// a split parent's id and its children's ids since they cannot predict which
// one the storage layer indexes; all map to the same PR data.
type BulkEntry struct {
	OrderID  string
	PRNumber string
	PRDate   *time.Time
}

// BulkFailure reports one id that could not be approved.
type BulkFailure struct {
	OrderID string `json:"order_id"`
	Error   string `json:"error"`
}

// BulkResult partitions a bulk approval into per-id outcomes. No id's
// failure blocks another id's success.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// ApprovalService advances orders through the approval workflow: site-admin
// PR approval (single and bulk), company-admin PO grouping, and downstream
// fulfilment transitions.
type ApprovalService interface {
	Approve(ctx context.Context, orderID, approverEmail, prNumber string, prDate *time.Time) (*entity.Order, error)
	BulkApprove(ctx context.Context, approverEmail string, entries []BulkEntry) (*BulkResult, error)
	LinkPO(ctx context.Context, approverEmail, poNumber string, orderIDs []string) error
	AdvanceFulfilment(ctx context.Context, orderID string, trigger domainwf.Trigger) (*entity.Order, error)
}

type approvalServiceImpl struct {
	orderRepo   port.OrderRepository
	companyRepo port.CompanyRepository
	txManager   port.TransactionManager
	logger      Logger
	now         func() time.Time
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	orderRepo port.OrderRepository,
	companyRepo port.CompanyRepository,
	txManager port.TransactionManager,
	logger Logger,
) ApprovalService {
	return &approvalServiceImpl{
		orderRepo:   orderRepo,
		companyRepo: companyRepo,
		txManager:   txManager,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Approve applies a site admin's PR number and date to an order. For split
// orders the parent and every child are written together: either all
// advance or none do.
func (s *approvalServiceImpl) Approve(ctx context.Context, orderID, approverEmail, prNumber string, prDate *time.Time) (*entity.Order, error) {
	if err := utils.ValidateEmail(approverEmail); err != nil {
		return nil, apperrors.Validation("approver email: %v", err)
	}
	if err := validatePRData(prNumber, prDate); err != nil {
		return nil, err
	}

	order, err := s.resolveOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if _, err := s.approveOrderTree(ctx, order, approverEmail, prNumber, prDate); err != nil {
		return nil, err
	}

	approved, err := s.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}
	s.logger.Info("Order approved",
		"order_id", order.ID,
		"pr_number", prNumber,
		"approver", approverEmail,
		"splits", len(order.Splits),
	)
	return approved, nil
}

// BulkApprove processes each entry independently: one id failing never
// blocks another. Ids already transitioned earlier in the batch (a duplicate
// id, or a child of an already-approved parent) are deduped and reported as
// succeeded without a second write.
func (s *approvalServiceImpl) BulkApprove(ctx context.Context, approverEmail string, entries []BulkEntry) (*BulkResult, error) {
	if err := utils.ValidateEmail(approverEmail); err != nil {
		return nil, apperrors.Validation("approver email: %v", err)
	}
	if len(entries) == 0 {
		return nil, apperrors.Validation("no orders supplied")
	}

	result := &BulkResult{}
	done := make(map[string]bool)

	for _, entry := range entries {
		// Committed transitions stay committed on cancellation; the
		// remainder of the batch is reported as failed.
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, BulkFailure{OrderID: entry.OrderID, Error: err.Error()})
			continue
		}

		if done[entry.OrderID] {
			result.Succeeded = append(result.Succeeded, entry.OrderID)
			continue
		}

		covered, err := s.approveOne(ctx, entry, approverEmail)
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{OrderID: entry.OrderID, Error: err.Error()})
			continue
		}
		for _, id := range covered {
			done[id] = true
		}
		result.Succeeded = append(result.Succeeded, entry.OrderID)
	}

	s.logger.Info("Bulk approval processed",
		"total", len(entries),
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)
	return result, nil
}

func (s *approvalServiceImpl) approveOne(ctx context.Context, entry BulkEntry, approverEmail string) ([]string, error) {
	if err := validatePRData(entry.PRNumber, entry.PRDate); err != nil {
		return nil, err
	}
	order, err := s.resolveOrder(ctx, entry.OrderID)
	if err != nil {
		return nil, err
	}
	return s.approveOrderTree(ctx, order, approverEmail, entry.PRNumber, entry.PRDate)
}

// approveOrderTree transitions an order and all its splits out of awaiting
// approval in one transaction. Returns every id covered by the write so
// bulk callers can dedupe redundant submissions.
func (s *approvalServiceImpl) approveOrderTree(ctx context.Context, order *entity.Order, approverEmail, prNumber string, prDate *time.Time) ([]string, error) {
	toStatus, ok := appwf.NextState(domainwf.State(order.Status), domainwf.TriggerApprovePR, appwf.TransitionPolicy{})
	if !ok {
		return nil, apperrors.Conflict("order %s is not awaiting approval (status %s)", order.ID, order.Status)
	}

	approvedAt := s.now()
	meta := port.TransitionMeta{
		PRNumber:   prNumber,
		PRDate:     prDate,
		ApprovedBy: approverEmail,
		ApprovedAt: &approvedAt,
	}

	covered := []string{order.ID}
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		ok, err := s.orderRepo.TransitionOrder(txCtx, order.ID, order.Status, toStatus.String(), meta)
		if err != nil {
			return fmt.Errorf("transition order: %w", err)
		}
		if !ok {
			return apperrors.Conflict("order %s is not awaiting approval", order.ID)
		}
		for _, split := range order.Splits {
			ok, err := s.orderRepo.TransitionSplit(txCtx, split.ID, split.Status, toStatus.String(), meta)
			if err != nil {
				return fmt.Errorf("transition split %s: %w", split.ID, err)
			}
			if !ok {
				return apperrors.Conflict("sub-order %s is not awaiting approval", split.ID)
			}
			covered = append(covered, split.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return covered, nil
}

// LinkPO groups one or more PR-approved orders under a purchase order. All
// targets must belong to the same company, hold a PR, and — unless the
// company allows multi-PR POs — share a single PR number.
func (s *approvalServiceImpl) LinkPO(ctx context.Context, approverEmail, poNumber string, orderIDs []string) error {
	if err := utils.ValidateEmail(approverEmail); err != nil {
		return apperrors.Validation("approver email: %v", err)
	}
	if strings.TrimSpace(poNumber) == "" {
		return apperrors.Validation("PO number is required")
	}
	if len(orderIDs) == 0 {
		return apperrors.Validation("no orders supplied")
	}

	orders := make([]*entity.Order, 0, len(orderIDs))
	seen := make(map[string]bool)
	for _, id := range orderIDs {
		order, err := s.resolveOrder(ctx, id)
		if err != nil {
			return err
		}
		if seen[order.ID] {
			continue
		}
		seen[order.ID] = true
		orders = append(orders, order)
	}

	company, err := s.companyRepo.GetByID(ctx, orders[0].CompanyID)
	if err != nil {
		return fmt.Errorf("load company: %w", err)
	}
	if company == nil {
		return apperrors.NotFound("company %s not found", orders[0].CompanyID)
	}

	prNumbers := make(map[string]bool)
	for _, order := range orders {
		if order.CompanyID != company.ID {
			return apperrors.Validation("orders span multiple companies")
		}
		if order.PRNumber == "" {
			return apperrors.Conflict("order %s has no approved PR", order.ID)
		}
		prNumbers[order.PRNumber] = true
	}
	if len(prNumbers) > 1 && !company.AllowMultiPRPO {
		return apperrors.Validation("company %s does not allow grouping multiple PRs into one PO", company.ID)
	}

	// The LINK_PO transition is guarded on the company's PO approval policy;
	// a company that never approves POs cannot fire it from any state.
	policy := appwf.TransitionPolicy{POApprovalEnabled: company.RequireCompanyAdminPOApproval}

	meta := port.TransitionMeta{PONumber: poNumber}
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, order := range orders {
			toStatus, ok := appwf.NextState(domainwf.State(order.Status), domainwf.TriggerLinkPO, policy)
			if !ok {
				if !company.RequireCompanyAdminPOApproval {
					return apperrors.Validation("company %s does not use PO approval", company.ID)
				}
				return apperrors.Conflict("order %s cannot be linked to a PO (status %s)", order.ID, order.Status)
			}
			ok, err := s.orderRepo.TransitionOrder(txCtx, order.ID, order.Status, toStatus.String(), meta)
			if err != nil {
				return fmt.Errorf("transition order: %w", err)
			}
			if !ok {
				return apperrors.Conflict("order %s was modified concurrently", order.ID)
			}
			for _, split := range order.Splits {
				ok, err := s.orderRepo.TransitionSplit(txCtx, split.ID, split.Status, toStatus.String(), meta)
				if err != nil {
					return fmt.Errorf("transition split %s: %w", split.ID, err)
				}
				if !ok {
					return apperrors.Conflict("sub-order %s was modified concurrently", split.ID)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("PO linked",
		"po_number", poNumber,
		"orders", len(orders),
		"approver", approverEmail,
	)
	return nil
}

// AdvanceFulfilment moves a standalone order or a split child one step
// through fulfilment. Split parents are views over their children and are
// not advanced directly.
func (s *approvalServiceImpl) AdvanceFulfilment(ctx context.Context, orderID string, trigger domainwf.Trigger) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if order != nil && order.IsSplit {
		return nil, apperrors.Validation("split order %s advances per vendor sub-order", orderID)
	}

	if order != nil {
		toStatus, ok := appwf.NextState(domainwf.State(order.Status), trigger, appwf.TransitionPolicy{})
		if !ok {
			return nil, apperrors.Conflict("order %s in status %s does not permit %s", orderID, order.Status, trigger)
		}
		ok, err := s.orderRepo.TransitionOrder(ctx, order.ID, order.Status, toStatus.String(), port.TransitionMeta{})
		if err != nil {
			return nil, fmt.Errorf("transition order: %w", err)
		}
		if !ok {
			return nil, apperrors.Conflict("order %s was modified concurrently", orderID)
		}
		return s.orderRepo.GetByID(ctx, order.ID)
	}

	split, err := s.orderRepo.FindSplit(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("find split: %w", err)
	}
	if split == nil {
		return nil, apperrors.NotFound("order %s not found", orderID)
	}

	toStatus, ok := appwf.NextState(domainwf.State(split.Status), trigger, appwf.TransitionPolicy{})
	if !ok {
		return nil, apperrors.Conflict("sub-order %s in status %s does not permit %s", orderID, split.Status, trigger)
	}
	ok, err = s.orderRepo.TransitionSplit(ctx, split.ID, split.Status, toStatus.String(), port.TransitionMeta{})
	if err != nil {
		return nil, fmt.Errorf("transition split: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("sub-order %s was modified concurrently", orderID)
	}
	return s.orderRepo.GetByID(ctx, split.ParentID)
}

// resolveOrder loads an order by its own id or by one of its split ids.
func (s *approvalServiceImpl) resolveOrder(ctx context.Context, id string) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order != nil {
		return order, nil
	}

	split, err := s.orderRepo.FindSplit(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find split: %w", err)
	}
	if split == nil {
		return nil, apperrors.NotFound("order %s not found", id)
	}

	order, err = s.orderRepo.GetByID(ctx, split.ParentID)
	if err != nil {
		return nil, fmt.Errorf("get parent order: %w", err)
	}
	if order == nil {
		return nil, apperrors.NotFound("parent order %s not found", split.ParentID)
	}
	return order, nil
}

func validatePRData(prNumber string, prDate *time.Time) error {
	if strings.TrimSpace(prNumber) == "" {
		return apperrors.Validation("PR number is required")
	}
	if prDate == nil || prDate.IsZero() {
		return apperrors.Validation("PR date is required")
	}
	return nil
}
