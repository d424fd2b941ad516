package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"rfid-logbook/internal/export"
	"rfid-logbook/internal/ledger"
	"rfid-logbook/internal/models"
)

type modeRequest struct {
	Mode models.Mode `json:"mode" validate:"omitempty,oneof=attendance borrow"`
}

// GetMode returns the active scan mode
func (h *Handler) GetMode(w http.ResponseWriter, r *http.Request) {
	writeData(w, modeRequest{Mode: h.service.Mode()})
}

// SetMode switches the ledger that receives scans; an empty mode idles
func (h *Handler) SetMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.SetMode(req.Mode); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, req)
}

// GetStatus returns the display of the most recent scan
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.service.Status())
}

// HandleScan processes a tag scan posted by a reader
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	var req models.ScanRequest
	if !h.decode(w, r, &req) {
		return
	}

	uid := req.UID
	if uid == "" {
		uid = req.RawUID
	}
	log.Debugf("🏷️ [Reader: %s] Scanned %s (mode %q)", req.Reader, uid, req.Mode)

	status, err := h.service.HandleScan(uid, req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, status)
}

func filterFromQuery(r *http.Request) ledger.Filter {
	q := r.URL.Query()
	active, _ := strconv.ParseBool(q.Get("active"))
	return ledger.Filter{
		Search:     strings.TrimSpace(q.Get("q")),
		Date:       strings.TrimSpace(q.Get("date")),
		Sort:       ledger.ParseSortOption(q.Get("sort")),
		ActiveOnly: active,
	}
}

// ListAttendance returns the filtered attendance history
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.service.Attendance(filterFromQuery(r)))
}

// DeleteAttendance removes the entry named by tag_id and timestamp
func (h *Handler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	entry := models.AttendanceEntry{
		TagID:     r.URL.Query().Get("tag_id"),
		Timestamp: r.URL.Query().Get("timestamp"),
	}
	if entry.TagID == "" || entry.Timestamp == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "tag_id and timestamp are required"})
		return
	}
	writeData(w, h.service.DeleteAttendance(entry))
}

// ClearAttendance removes the whole attendance history
func (h *Handler) ClearAttendance(w http.ResponseWriter, r *http.Request) {
	h.service.ClearAttendance()
	writeMessage(w, http.StatusOK, "Attendance history cleared", []models.AttendanceEntry{})
}

// ListItems returns the loanable item catalog
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.service.Catalog())
}

// ListBorrows returns the filtered borrow history
func (h *Handler) ListBorrows(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.service.Borrows(filterFromQuery(r)))
}

// CreateBorrow lends an item to a tag
func (h *Handler) CreateBorrow(w http.ResponseWriter, r *http.Request) {
	var req models.BorrowRequest
	if !h.decode(w, r, &req) {
		return
	}

	borrow, err := h.service.CreateBorrow(req.TagID, req.ItemName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Borrow recorded", borrow)
}

// ReturnBorrow marks a borrow as returned. Unknown or already returned
// records answer 200 with returned=false.
func (h *Handler) ReturnBorrow(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	borrow, ok := h.service.ReturnBorrow(id)
	if !ok {
		writeMessage(w, http.StatusOK, "Nothing to return", map[string]interface{}{"id": id, "returned": false})
		return
	}
	writeMessage(w, http.StatusOK, "Return recorded", borrow)
}

// DeleteBorrow removes a borrow record
func (h *Handler) DeleteBorrow(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.service.DeleteBorrow(urlParam(r, "id")))
}

// ClearBorrows removes the whole borrow history
func (h *Handler) ClearBorrows(w http.ResponseWriter, r *http.Request) {
	h.service.ClearBorrows()
	writeMessage(w, http.StatusOK, "Borrow history cleared", []models.BorrowLog{})
}

// ListNicknames returns the nickname directory
func (h *Handler) ListNicknames(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.service.Nicknames())
}

// AddNickname names a tag that has no nickname yet
func (h *Handler) AddNickname(w http.ResponseWriter, r *http.Request) {
	var req models.NicknameRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.AddNickname(req.TagID, req.Nickname); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Nickname added", h.service.Nicknames())
}

// SetNickname assigns or replaces the nickname of the tag in the path
func (h *Handler) SetNickname(w http.ResponseWriter, r *http.Request) {
	var req models.NicknameRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.SetNickname(urlParam(r, "tagID"), req.Nickname); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, h.service.Nicknames())
}

// RemoveNickname forgets the nickname of the tag in the path
func (h *Handler) RemoveNickname(w http.ResponseWriter, r *http.Request) {
	h.service.RemoveNickname(urlParam(r, "tagID"))
	writeData(w, h.service.Nicknames())
}

// ReplaceNicknames swaps the whole directory for the posted object
func (h *Handler) ReplaceNicknames(w http.ResponseWriter, r *http.Request) {
	var mapping map[string]string
	if !readJSON(w, r, &mapping) {
		return
	}
	h.service.ReplaceNicknames(mapping)
	writeData(w, h.service.Nicknames())
}

// ClearNicknames empties the directory
func (h *Handler) ClearNicknames(w http.ResponseWriter, r *http.Request) {
	h.service.ClearNicknames()
	writeMessage(w, http.StatusOK, "Nicknames cleared", map[string]string{})
}

// ImportNicknames merges a remote JSON nickname dictionary
func (h *Handler) ImportNicknames(w http.ResponseWriter, r *http.Request) {
	var req models.ImportRequest
	if !h.decode(w, r, &req) {
		return
	}

	count, err := h.service.ImportNicknames(r.Context(), strings.TrimSpace(req.URL))
	if err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK,
		fmt.Sprintf("%d nicknames imported successfully.", count),
		map[string]int{"count": count})
}

// Export streams both ledgers as an XLSX workbook
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	attendance := h.service.Attendance(ledger.Filter{})
	borrows := h.service.Borrows(ledger.Filter{})
	filename := fmt.Sprintf("logbook-%s.xlsx", h.service.Now().Format("20060102"))

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := export.Write(w, attendance, borrows, h.service.Location()); err != nil {
		log.Errorf("❌ Export failed: %v", err)
	}
}
