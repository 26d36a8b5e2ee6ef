package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_backend/internal/core/ports/services"
	"github.com/SscSPs/ledger_backend/internal/dto"
)

// BatchImportConfig sizes the group validation pool.
type BatchImportConfig struct {
	Workers int
}

// BatchImportService validates imported rows grouped by reference. A group with any
// failing row is rejected as a whole; other groups are unaffected.
type BatchImportService struct {
	BaseService
	accountRepo portsrepo.AccountRegistry
	journal     portssvc.JournalWriterSvc
	pool        *ants.Pool
	validate    *validator.Validate
}

// BatchImportOption is a functional option for configuring the batch import service
type BatchImportOption func(*BatchImportService)

// WithBatchWorkplaceAuthorizer sets the workplace authorizer for the batch import service.
func WithBatchWorkplaceAuthorizer(authorizer portssvc.WorkplaceAuthorizerSvc) BatchImportOption {
	return func(s *BatchImportService) {
		s.WorkplaceAuthorizer = authorizer
	}
}

// NewBatchImportService creates the service and its worker pool. Call Release on shutdown.
func NewBatchImportService(accountRepo portsrepo.AccountRegistry, journal portssvc.JournalWriterSvc, cfg BatchImportConfig, options ...BatchImportOption) (*BatchImportService, error) {
	size := cfg.Workers
	if size <= 0 {
		size = 4
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch import worker pool: %w", err)
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	svc := &BatchImportService{
		accountRepo: accountRepo,
		journal:     journal,
		pool:        pool,
		validate:    validate,
	}
	for _, option := range options {
		option(svc)
	}
	return svc, nil
}

var _ portssvc.BatchImportSvc = (*BatchImportService)(nil)

// Release shuts the worker pool down.
func (s *BatchImportService) Release() {
	s.pool.Release()
}

// importGroup is the rows sharing one reference, in input order.
type importGroup struct {
	reference string
	rows      []numberedRow
}

type numberedRow struct {
	number int // 1-based position in the input
	row    domain.ImportRow
}

type groupResult struct {
	entry  *domain.JournalEntry
	errors []domain.RowError
}

// ValidateBatch groups rows by reference and validates every group. Nothing is persisted.
func (s *BatchImportService) ValidateBatch(ctx context.Context, workplaceID string, rows []domain.ImportRow, userID string) (*domain.BatchImportResult, error) {
	if err := s.AuthorizeUser(ctx, userID, workplaceID, domain.RoleMember); err != nil {
		return nil, err
	}

	groups, results, err := s.validateGroups(ctx, workplaceID, rows)
	if err != nil {
		return nil, err
	}

	result := collect(groups, results)
	s.LogInfo(ctx, "Batch validated",
		slog.String("workplace_id", workplaceID),
		slog.Int("rows", len(rows)),
		slog.Int("groups", len(groups)),
		slog.Int("valid_entries", len(result.ValidatedEntries)),
		slog.Int("errors", len(result.Errors)))
	return result, nil
}

// ImportBatch validates the rows and creates a DRAFT entry for every valid group through the
// normal lifecycle. A group whose draft cannot be stored is reported against its first row.
func (s *BatchImportService) ImportBatch(ctx context.Context, workplaceID string, rows []domain.ImportRow, userID string) (*domain.BatchImportResult, error) {
	if err := s.AuthorizeUser(ctx, userID, workplaceID, domain.RoleMember); err != nil {
		return nil, err
	}

	groups, results, err := s.validateGroups(ctx, workplaceID, rows)
	if err != nil {
		return nil, err
	}

	for i := range results {
		if results[i].entry == nil {
			continue
		}
		created, err := s.journal.CreateDraft(ctx, workplaceID, toEntryRequest(*results[i].entry), userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrForbidden) {
				return nil, err
			}
			s.LogError(ctx, err, "Failed to create draft from batch group",
				slog.String("reference", groups[i].reference))
			results[i].errors = append(results[i].errors, domain.RowError{
				Row:     groups[i].rows[0].number,
				Message: fmt.Sprintf("failed to create draft: %v", err),
			})
			results[i].entry = nil
			continue
		}
		results[i].entry = created
	}

	return collect(groups, results), nil
}

func (s *BatchImportService) validateGroups(ctx context.Context, workplaceID string, rows []domain.ImportRow) ([]importGroup, []groupResult, error) {
	groups, orphans := groupRows(rows)

	codes := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		code := strings.TrimSpace(r.AccountCode)
		if _, ok := seen[code]; code == "" || ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	accounts := map[string]domain.Account{}
	if len(codes) > 0 {
		var err error
		accounts, err = s.accountRepo.FindAccountsByCodes(ctx, workplaceID, codes)
		if err != nil {
			s.LogError(ctx, err, "Failed to resolve batch account codes", slog.String("workplace_id", workplaceID))
			return nil, nil, fmt.Errorf("failed to resolve account codes: %w", err)
		}
	}

	results := make([]groupResult, len(groups))
	var wg sync.WaitGroup
	for i := range groups {
		i := i
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			results[i] = s.validateGroup(workplaceID, groups[i], accounts)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, nil, fmt.Errorf("failed to submit batch group %q: %w", groups[i].reference, err)
		}
	}
	wg.Wait()

	// Rows without a reference cannot join a group and are reported on their own.
	if len(orphans) > 0 {
		groups = append(groups, importGroup{rows: orphans})
		var errs []domain.RowError
		for _, r := range orphans {
			errs = append(errs, domain.RowError{Row: r.number, Message: "reference: is required"})
		}
		results = append(results, groupResult{errors: errs})
	}
	return groups, results, nil
}

// validateGroup checks one reference group. Row-level problems are reported on their rows;
// entry-level violations on the group's first row.
func (s *BatchImportService) validateGroup(workplaceID string, g importGroup, accounts map[string]domain.Account) groupResult {
	var res groupResult
	first := g.rows[0]

	entryDate, dateErr := time.Parse(domain.DateLayout, strings.TrimSpace(first.row.Date))
	entry := domain.JournalEntry{
		WorkplaceID: workplaceID,
		Reference:   g.reference,
		EntryDate:   entryDate,
		Description: first.row.Description,
		Status:      domain.StatusDraft,
	}

	shapeFailed := false
	lineRows := make(map[int]int, len(g.rows)) // line number -> input row
	for _, nr := range g.rows {
		msgs := s.checkShape(nr.row)
		if dateErr == nil && nr.row.Date != first.row.Date && len(msgs) == 0 {
			msgs = append(msgs, fmt.Sprintf("date: %s differs from %s on row %d of the same reference", nr.row.Date, first.row.Date, first.number))
		}
		debit, derr := parseAmount(strings.TrimSpace(nr.row.DebitAmount))
		if derr != nil {
			msgs = append(msgs, fmt.Sprintf("debitAmount: %q is not a number", nr.row.DebitAmount))
		}
		credit, cerr := parseAmount(strings.TrimSpace(nr.row.CreditAmount))
		if cerr != nil {
			msgs = append(msgs, fmt.Sprintf("creditAmount: %q is not a number", nr.row.CreditAmount))
		}
		if len(msgs) > 0 {
			shapeFailed = true
			for _, m := range msgs {
				res.errors = append(res.errors, domain.RowError{Row: nr.number, Message: m})
			}
			continue
		}

		code := strings.TrimSpace(nr.row.AccountCode)
		line := domain.JournalEntryLine{
			LineNumber:  len(entry.Lines) + 1,
			AccountID:   accounts[code].AccountID,
			AccountCode: code,
			Description: nr.row.LineDescription,
			Debit:       debit,
			Credit:      credit,
		}
		lineRows[line.LineNumber] = nr.number
		entry.Lines = append(entry.Lines, line)
	}

	byID := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		byID[acc.AccountID] = acc
	}

	if err := ValidateEntry(entry, byID); err != nil {
		var verr *apperrors.ValidationError
		if !errors.As(err, &verr) {
			res.errors = append(res.errors, domain.RowError{Row: first.number, Message: err.Error()})
			return res
		}
		for _, v := range verr.Violations {
			switch v.Kind {
			case apperrors.InvalidAccount, apperrors.MalformedLine:
				res.errors = append(res.errors, domain.RowError{Row: lineRows[v.LineNumber], Message: v.String()})
			default:
				// Totals of a partially parsed group say nothing useful.
				if !shapeFailed {
					res.errors = append(res.errors, domain.RowError{Row: first.number, Message: v.String()})
				}
			}
		}
	}

	if len(res.errors) == 0 {
		res.entry = &entry
	}
	return res
}

func (s *BatchImportService) checkShape(row domain.ImportRow) []string {
	err := s.validate.Struct(row)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s: is required", fe.Field()))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s: %q is not a YYYY-MM-DD date", fe.Field(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
		}
	}
	return msgs
}

// groupRows groups rows by trimmed reference in order of first appearance.
func groupRows(rows []domain.ImportRow) ([]importGroup, []numberedRow) {
	var groups []importGroup
	var orphans []numberedRow
	index := make(map[string]int)
	for i, r := range rows {
		nr := numberedRow{number: i + 1, row: r}
		ref := strings.TrimSpace(r.Reference)
		if ref == "" {
			orphans = append(orphans, nr)
			continue
		}
		idx, ok := index[ref]
		if !ok {
			idx = len(groups)
			index[ref] = idx
			groups = append(groups, importGroup{reference: ref})
		}
		groups[idx].rows = append(groups[idx].rows, nr)
	}
	return groups, orphans
}

func collect(groups []importGroup, results []groupResult) *domain.BatchImportResult {
	out := &domain.BatchImportResult{
		ValidatedEntries: []domain.JournalEntry{},
		Errors:           []domain.RowError{},
	}
	for i := range groups {
		if results[i].entry != nil {
			out.ValidatedEntries = append(out.ValidatedEntries, *results[i].entry)
		}
		out.Errors = append(out.Errors, results[i].errors...)
	}
	sort.SliceStable(out.Errors, func(i, j int) bool { return out.Errors[i].Row < out.Errors[j].Row })
	return out
}

func toEntryRequest(e domain.JournalEntry) dto.JournalEntryRequest {
	req := dto.JournalEntryRequest{
		Reference:   e.Reference,
		Date:        e.EntryDate.Format(domain.DateLayout),
		Description: e.Description,
		Lines:       make([]dto.JournalEntryLineRequest, len(e.Lines)),
	}
	for i, l := range e.Lines {
		req.Lines[i] = dto.JournalEntryLineRequest{
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
	}
	return req
}
