package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/hierarchy"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
	"github.com/1CEs/xams-sub001/pkg/utils"
)

// BankHandler serves the path-addressed bank protocol over HTTP
type BankHandler struct {
	store        ports.BankStore
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewBankHandler creates a new bank handler
func NewBankHandler(store ports.BankStore, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *BankHandler {
	return &BankHandler{
		store:        store,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// CreateBankRequest is the body of the top-level and direct-child creates
type CreateBankRequest struct {
	Name  string   `json:"name" validate:"required,min=1,max=200"`
	Exams []string `json:"exams,omitempty" validate:"omitempty,max=500,dive,required"`
	Owner string   `json:"owner,omitempty" validate:"omitempty,max=100"`
}

// CreateNestedRequest is the body of a create addressed by path
type CreateNestedRequest struct {
	Path  []string `json:"path" validate:"required,min=1,dive,bankid"`
	Name  string   `json:"name" validate:"required,min=1,max=200"`
	Exams []string `json:"exams,omitempty" validate:"omitempty,max=500,dive,required"`
}

// RenameBankRequest is the body of the top-level and direct-child renames
type RenameBankRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// RenameNestedRequest is the body of a rename addressed by path
type RenameNestedRequest struct {
	Path []string `json:"path" validate:"required,min=1,dive,bankid"`
	Name string   `json:"name" validate:"required,min=1,max=200"`
}

// ListForest handles GET /banks
func (h *BankHandler) ListForest(w http.ResponseWriter, r *http.Request) {
	scope := ports.ForestScope{
		OwnerID: r.URL.Query().Get("owner"),
		ExamID:  r.URL.Query().Get("exam"),
	}

	forest, err := h.store.Forest(r.Context(), scope)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if forest == nil {
		forest = []hierarchy.RawBank{}
	}
	h.respondJSON(w, http.StatusOK, forest)
}

// GetHierarchy handles GET /banks/{bankID}
func (h *BankHandler) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bankParam(w, r, "bankID")
	if !ok {
		return
	}

	bank, err := h.store.Hierarchy(r.Context(), id)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, bank)
}

// CreateTopLevel handles POST /banks
func (h *BankHandler) CreateTopLevel(w http.ResponseWriter, r *http.Request) {
	var req CreateBankRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.store.CreateTopLevel(r.Context(), req.Owner, ports.NewBank{Name: req.Name, ExamIDs: req.Exams})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.logger.Info("Top-level bank created", zap.String("bankID", created.ID), zap.String("owner", req.Owner))
	h.respondJSON(w, http.StatusCreated, created)
}

// CreateChild handles POST /banks/{parentID}/children
func (h *BankHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	parentID, ok := h.bankParam(w, r, "parentID")
	if !ok {
		return
	}
	var req CreateBankRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.store.CreateChild(r.Context(), parentID, ports.NewBank{Name: req.Name, ExamIDs: req.Exams})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.logger.Info("Bank created", zap.String("bankID", created.ID), zap.String("parentID", parentID.String()))
	h.respondJSON(w, http.StatusCreated, created)
}

// CreateNested handles POST /banks/{rootID}/nested
func (h *BankHandler) CreateNested(w http.ResponseWriter, r *http.Request) {
	rootID, ok := h.bankParam(w, r, "rootID")
	if !ok {
		return
	}
	var req CreateNestedRequest
	if !h.decode(w, r, &req) {
		return
	}
	path, err := toPath(req.Path)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	created, err := h.store.CreateNested(r.Context(), rootID, path, ports.NewBank{Name: req.Name, ExamIDs: req.Exams})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.logger.Info("Nested bank created", zap.String("bankID", created.ID), zap.Stringer("path", path))
	h.respondJSON(w, http.StatusCreated, created)
}

// RenameTopLevel handles PUT /banks/{bankID}
func (h *BankHandler) RenameTopLevel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bankParam(w, r, "bankID")
	if !ok {
		return
	}
	var req RenameBankRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.store.RenameTopLevel(r.Context(), id, req.Name); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenameChild handles PUT /banks/{parentID}/children/{bankID}
func (h *BankHandler) RenameChild(w http.ResponseWriter, r *http.Request) {
	parentID, ok := h.bankParam(w, r, "parentID")
	if !ok {
		return
	}
	id, ok := h.bankParam(w, r, "bankID")
	if !ok {
		return
	}
	var req RenameBankRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.store.RenameChild(r.Context(), parentID, id, req.Name); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenameNested handles PUT /banks/{rootID}/nested/{bankID}
func (h *BankHandler) RenameNested(w http.ResponseWriter, r *http.Request) {
	rootID, ok := h.bankParam(w, r, "rootID")
	if !ok {
		return
	}
	id, ok := h.bankParam(w, r, "bankID")
	if !ok {
		return
	}
	var req RenameNestedRequest
	if !h.decode(w, r, &req) {
		return
	}
	path, err := toPath(req.Path)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.store.RenameNested(r.Context(), rootID, path, id, req.Name); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTopLevel handles DELETE /banks/{bankID}
func (h *BankHandler) DeleteTopLevel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bankParam(w, r, "bankID")
	if !ok {
		return
	}

	if err := h.store.DeleteTopLevel(r.Context(), id); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.logger.Info("Top-level bank deleted", zap.String("bankID", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteChild handles DELETE /banks/{parentID}/children/{bankID}
func (h *BankHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	parentID, ok := h.bankParam(w, r, "parentID")
	if !ok {
		return
	}
	id, ok := h.bankParam(w, r, "bankID")
	if !ok {
		return
	}

	if err := h.store.DeleteChild(r.Context(), parentID, id); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.logger.Info("Bank deleted", zap.String("bankID", id.String()), zap.String("parentID", parentID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteNested handles DELETE /banks/{rootID}/nested/{bankID}?path=
func (h *BankHandler) DeleteNested(w http.ResponseWriter, r *http.Request) {
	rootID, ok := h.bankParam(w, r, "rootID")
	if !ok {
		return
	}
	id, ok := h.bankParam(w, r, "bankID")
	if !ok {
		return
	}
	path, err := valueobjects.ParseBankPath(r.URL.Query().Get("path"))
	if err != nil || len(path) == 0 {
		h.errorHandler.HandleStatus(w, r, http.StatusBadRequest, "path query parameter is required")
		return
	}

	if err := h.store.DeleteNested(r.Context(), rootID, path, id); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.logger.Info("Nested bank deleted", zap.String("bankID", id.String()), zap.Stringer("path", path))
	w.WriteHeader(http.StatusNoContent)
}

func (h *BankHandler) bankParam(w http.ResponseWriter, r *http.Request, name string) (valueobjects.BankID, bool) {
	id, err := valueobjects.ParseBankID(chi.URLParam(r, name))
	if err != nil {
		h.errorHandler.HandleStatus(w, r, http.StatusBadRequest, "invalid "+name+": "+err.Error())
		return "", false
	}
	return id, true
}

func (h *BankHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.errorHandler.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		h.errorHandler.Handle(w, r, err)
		return false
	}
	return true
}

func (h *BankHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func toPath(ids []string) (valueobjects.BankPath, error) {
	path := make(valueobjects.BankPath, 0, len(ids))
	for _, raw := range ids {
		id, err := valueobjects.ParseBankID(raw)
		if err != nil {
			return nil, pkgerrors.NewValidationError("invalid path: " + err.Error())
		}
		path = append(path, id)
	}
	return path, nil
}
