package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/stelform/adminkit/internal/auth"
	"github.com/stelform/adminkit/internal/batch"
	"github.com/stelform/adminkit/internal/domain"
	"github.com/stelform/adminkit/internal/middleware"
	"github.com/stelform/adminkit/internal/query"
	"github.com/stelform/adminkit/internal/quickfilter"
	"github.com/stelform/adminkit/internal/recordloader"
	"github.com/stelform/adminkit/internal/relation"
	"github.com/stelform/adminkit/internal/repository"
	"github.com/stelform/adminkit/pkg/validator"
)

// Handler exposes one application's listing, counting and batch-saving
// surface as JSON endpoints. It owns no semantics: parameters are parsed,
// handed to the compiler, counter and executor, and the outcomes rendered.
type Handler struct {
	pipeline     domain.Pipeline
	quickFilters map[string]domain.Condition
	compiler     query.Compiler
	resolver     query.OptionResolver
	records      repository.RecordRepository
	tenants      repository.TenantRepository
	counter      *quickfilter.Counter
	executor     *batch.Executor
	linker       *relation.Linker
	tagJoin      relation.JoinSpec
	forms        *validator.FormValidator
}

// Config wires a handler from the application's declarations and the engine
// services built over one record repository.
type Config struct {
	Pipeline     domain.Pipeline
	QuickFilters map[string]domain.Condition
	Codes        *domain.CodeRegistry
	Records      repository.RecordRepository
	Tenants      repository.TenantRepository
	Executor     *batch.Executor
	TagJoin      relation.JoinSpec
}

// NewHandler builds the JSON API router.
func NewHandler(cfg Config) http.Handler {
	h := &Handler{
		pipeline:     cfg.Pipeline,
		quickFilters: cfg.QuickFilters,
		compiler:     query.Compiler{QuickFilters: cfg.QuickFilters},
		resolver:     query.OptionResolver{Codes: cfg.Codes},
		records:      cfg.Records,
		tenants:      cfg.Tenants,
		counter:      quickfilter.NewCounter(cfg.Records.Count, 0),
		executor:     cfg.Executor,
		linker:       relation.NewLinker(cfg.Executor),
		tagJoin:      cfg.TagJoin,
		forms:        validator.NewFormValidator(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /tenants", h.handleListTenants)
	mux.HandleFunc("POST /tenants", h.handleCreateTenant)
	mux.HandleFunc("GET /tenants/{tenant}/records", h.handleList)
	mux.HandleFunc("GET /tenants/{tenant}/records/counts", h.handleCounts)
	mux.HandleFunc("GET /tenants/{tenant}/records/options", h.handleOptions)
	mux.HandleFunc("POST /tenants/{tenant}/batches", h.handleBatch)
	mux.HandleFunc("PUT /tenants/{tenant}/records/{id}/tags", h.handleTags)
	return mux
}

func (h *Handler) tenantID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	tenantID, err := uuid.Parse(r.PathValue("tenant"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid tenant id: %v", err), http.StatusBadRequest)
		return uuid.Nil, false
	}
	if err := auth.EnforceTenantScope(r.Context(), tenantID); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return uuid.Nil, false
	}
	return tenantID, true
}

type listResponse struct {
	Records []domain.Record `json:"records"`
	// Included holds eager-loaded related records keyed by id, covering the
	// pipeline's include graph.
	Included map[string]domain.Record `json:"included,omitempty"`
	Total    int64                    `json:"total"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"page_size"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	params := parseRequestParams(r.URL.Query())
	descriptor, err := h.compiler.Compile(h.pipeline, params, domain.Condition{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, total, err := h.records.List(r.Context(), tenantID, descriptor)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []domain.Record{}
	}

	var included map[string]domain.Record
	if loader := middleware.RecordLoaderFromContext(r.Context()); loader != nil {
		included = hydrateIncludes(r.Context(), loader, records, descriptor.Include)
	}

	writeJSON(w, http.StatusOK, listResponse{
		Records:  records,
		Included: included,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	})
}

// hydrateIncludes resolves the include graph's related records through the
// request's batching loader, one bulk query no matter how many rows
// reference them. Relations are matched by their lower-cased name against
// the records' properties; values that are not record ids are skipped.
func hydrateIncludes(ctx context.Context, loader *recordloader.RecordLoader, records []domain.Record, include []domain.IncludePath) map[string]domain.Record {
	if len(include) == 0 || len(records) == 0 {
		return nil
	}

	keys := make([]string, len(include))
	for i, path := range include {
		keys[i] = strings.ToLower(path.Relation)
	}

	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, record := range records {
		for _, key := range keys {
			raw, ok := record.Properties[key].(string)
			if !ok {
				continue
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				continue
			}
			if _, done := seen[id]; done {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	included := loader.LoadMany(ctx, ids)
	if len(included) == 0 {
		return nil
	}
	return included
}

type countsResponse struct {
	Counts map[string]int64 `json:"counts"`
	Failed []string         `json:"failed,omitempty"`
}

func (h *Handler) handleCounts(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	result := h.counter.Count(r.Context(), tenantID, h.pipeline.EntityType(), domain.Condition{}, h.quickFilters)

	resp := countsResponse{Counts: result.Counts}
	for name := range result.Failed {
		resp.Failed = append(resp.Failed, name)
	}
	sort.Strings(resp.Failed)

	writeJSON(w, http.StatusOK, resp)
}

type optionsEntry struct {
	Options []domain.Option `json:"options"`
	Empty   bool            `json:"empty,omitempty"`
}

func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	submitted := make(map[string]string)
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			submitted[key] = vals[0]
		}
	}

	resolutions := h.resolver.Resolve(h.pipeline, submitted)

	resp := make(map[string]optionsEntry, len(resolutions))
	for fieldID, resolution := range resolutions {
		entry := optionsEntry{Options: resolution.Options}
		switch {
		case resolution.Empty:
			entry.Empty = true
		case resolution.Fetch != nil:
			options, err := h.records.ListOptions(r.Context(), tenantID, *resolution.Fetch)
			if err != nil {
				// Same degradation as template failures: this field offers
				// nothing, the rest of the form stays usable.
				entry = optionsEntry{Empty: true}
				break
			}
			entry.Options = options
		}
		if entry.Options == nil {
			entry.Options = []domain.Option{}
		}
		resp[fieldID] = entry
	}

	writeJSON(w, http.StatusOK, resp)
}

type batchFailurePayload struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

type batchResponse struct {
	Success bool                     `json:"success"`
	Results []domain.OperationResult `json:"results,omitempty"`
	Failure *batchFailurePayload     `json:"failure,omitempty"`
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	defer r.Body.Close()
	var payload domain.Batch
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}

	if errs := h.validateBatch(payload); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}

	result := h.executor.Execute(r.Context(), tenantID, payload)
	writeJSON(w, statusForBatch(result), toBatchResponse(result))
}

// validateBatch runs the form validator over every body that targets the
// app's own entity shape. Other shapes (join rows, lookup entities) pass
// through untouched.
func (h *Handler) validateBatch(b domain.Batch) []validator.ValidationError {
	var errs []validator.ValidationError
	for _, op := range b.Ops {
		if op.EntityType != h.pipeline.EntityType() {
			continue
		}
		switch op.Method {
		case domain.MethodCreate:
			if result := h.forms.ValidateProperties(withReference(op.Properties, op.Reference), h.pipeline); !result.IsValid {
				errs = append(errs, result.Errors...)
			}
		case domain.MethodUpdate:
			if result := h.forms.ValidatePartial(op.Properties, h.pipeline); !result.IsValid {
				errs = append(errs, result.Errors...)
			}
		case domain.MethodUpsert:
			if result := h.forms.ValidateProperties(withReference(op.CreateBody, op.Reference), h.pipeline); !result.IsValid {
				errs = append(errs, result.Errors...)
			}
			if result := h.forms.ValidatePartial(op.UpdateBody, h.pipeline); !result.IsValid {
				errs = append(errs, result.Errors...)
			}
		}
	}
	return errs
}

type tagsPayload struct {
	Current []uuid.UUID `json:"current"`
	Desired []uuid.UUID `json:"desired"`
}

func (h *Handler) handleTags(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	parentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid record id: %v", err), http.StatusBadRequest)
		return
	}

	defer r.Body.Close()
	var payload tagsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}

	result := h.linker.Reconcile(r.Context(), tenantID, h.tagJoin, parentID, payload.Current, payload.Desired)
	writeJSON(w, statusForBatch(result), toBatchResponse(result))
}

func (h *Handler) handleListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if tenants == nil {
		tenants = []domain.Tenant{}
	}
	writeJSON(w, http.StatusOK, tenants)
}

type createTenantPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var payload createTenantPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}
	if payload.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	tenant, err := h.tenants.Create(r.Context(), domain.NewTenant(payload.Name, payload.Description))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, tenant)
}

// withReference folds the operation's reference column into the validated
// body, since pipelines declare the reference as an ordinary field.
func withReference(body map[string]any, reference string) map[string]any {
	if reference == "" {
		return body
	}
	merged := make(map[string]any, len(body)+1)
	for k, v := range body {
		merged[k] = v
	}
	merged["reference"] = reference
	return merged
}

func statusForBatch(result domain.BatchResult) int {
	if result.Success {
		return http.StatusOK
	}
	return http.StatusConflict
}

func toBatchResponse(result domain.BatchResult) batchResponse {
	resp := batchResponse{Success: result.Success, Results: result.Results}
	if result.Failure != nil {
		resp.Failure = &batchFailurePayload{
			Index:   result.Failure.Index,
			Message: result.Failure.Error(),
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
