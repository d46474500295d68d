package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edusuite/gridcalc/internal/logging"
	"github.com/edusuite/gridcalc/sheet"
	"github.com/edusuite/gridcalc/xlsxio"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleEvaluate evaluates a JSON sheet snapshot from the request body
// without storing it
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	snap, err := xlsxio.LoadJSON(body)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_sheet", "malformed sheet document", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"values": snap.EvaluateAll(),
	})
}

// handleUploadSheet stores an uploaded xlsx workbook and returns its ID
func (s *Server) handleUploadSheet(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.workbookFromRequest(w, r)
	if !ok {
		return
	}
	id := s.store.Put(snap)
	logging.FromContext(r.Context()).Info("sheet stored", "sheet_id", id, "cells", len(snap))
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":    id,
		"cells": len(snap),
	})
}

// handleReplaceSheet swaps a stored sheet's snapshot for a new workbook
func (s *Server) handleReplaceSheet(w http.ResponseWriter, r *http.Request) {
	id, ok := sheetID(w, r)
	if !ok {
		return
	}
	snap, ok := s.workbookFromRequest(w, r)
	if !ok {
		return
	}
	if !s.store.Replace(id, snap) {
		respondError(w, r, http.StatusNotFound, "sheet_not_found", "no sheet with that ID", nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":    id,
		"cells": len(snap),
	})
}

func (s *Server) handleDeleteSheet(w http.ResponseWriter, r *http.Request) {
	id, ok := sheetID(w, r)
	if !ok {
		return
	}
	if !s.store.Delete(id) {
		respondError(w, r, http.StatusNotFound, "sheet_not_found", "no sheet with that ID", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSheetValues evaluates every cell of a stored sheet
func (s *Server) handleSheetValues(w http.ResponseWriter, r *http.Request) {
	id, ok := sheetID(w, r)
	if !ok {
		return
	}
	snap, ok := s.store.Get(id)
	if !ok {
		respondError(w, r, http.StatusNotFound, "sheet_not_found", "no sheet with that ID", nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"values": snap.EvaluateAll(),
	})
}

// handleSheetCell evaluates a single cell of a stored sheet. Evaluation
// faults stay in-band as marker strings; only a reference that is not
// even shaped like an address is rejected at the HTTP layer.
func (s *Server) handleSheetCell(w http.ResponseWriter, r *http.Request) {
	id, ok := sheetID(w, r)
	if !ok {
		return
	}
	snap, ok := s.store.Get(id)
	if !ok {
		respondError(w, r, http.StatusNotFound, "sheet_not_found", "no sheet with that ID", nil)
		return
	}
	ref := chi.URLParam(r, "ref")
	addr, ok := sheet.Canonicalize(ref)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "invalid_reference",
			fmt.Sprintf("%q is not a cell reference", ref), nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":    id,
		"ref":   addr,
		"value": snap.Display(addr),
	})
}

// workbookFromRequest reads the "workbook" part of a multipart upload
// into a sheet snapshot
func (s *Server) workbookFromRequest(w http.ResponseWriter, r *http.Request) (sheet.Sheet, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	file, _, err := r.FormFile("workbook")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "file_too_large",
				fmt.Sprintf("workbook exceeds %d bytes", s.cfg.Upload.MaxFileSize), err)
			return nil, false
		}
		respondError(w, r, http.StatusBadRequest, "missing_file", "expected multipart field \"workbook\"", err)
		return nil, false
	}
	defer file.Close()

	snap, err := xlsxio.LoadReader(file)
	if err != nil {
		if errors.Is(err, xlsxio.ErrInvalidFormat) || errors.Is(err, xlsxio.ErrNoWorksheet) {
			respondError(w, r, http.StatusBadRequest, "invalid_workbook", "not a readable xlsx workbook", err)
			return nil, false
		}
		respondError(w, r, http.StatusInternalServerError, "load_failed", "could not load workbook", err)
		return nil, false
	}
	return snap, true
}

// sheetID parses the {sheetID} route parameter
func sheetID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "sheetID")
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_sheet_id",
			fmt.Sprintf("%q is not a valid sheet ID", raw), err)
		return uuid.Nil, false
	}
	return id, true
}
