package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"rfid-logbook/internal/models"
)

// EncodeNicknames serializes the directory as a JSON object
func EncodeNicknames(nicknames map[string]string) ([]byte, error) {
	if nicknames == nil {
		nicknames = map[string]string{}
	}
	return json.Marshal(nicknames)
}

// DecodeNicknames parses a JSON object of tag -> nickname
func DecodeNicknames(data []byte) (map[string]string, error) {
	nicknames := map[string]string{}
	if err := json.Unmarshal(data, &nicknames); err != nil {
		return nil, fmt.Errorf("failed to decode nicknames: %w", err)
	}
	if nicknames == nil {
		nicknames = map[string]string{}
	}
	return nicknames, nil
}

// EncodeAttendance serializes entries as a JSON array of "tagId,timestamp"
func EncodeAttendance(entries []models.AttendanceEntry) ([]byte, error) {
	flat := make([]string, len(entries))
	for i, e := range entries {
		flat[i] = e.TagID + "," + e.Timestamp
	}
	return json.Marshal(flat)
}

// DecodeAttendance parses a JSON array of "tagId,timestamp". The split
// happens on the last comma; strings without one are dropped.
func DecodeAttendance(data []byte) ([]models.AttendanceEntry, error) {
	var flat []string
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("failed to decode attendance: %w", err)
	}

	entries := make([]models.AttendanceEntry, 0, len(flat))
	for _, s := range flat {
		i := strings.LastIndex(s, ",")
		if i < 0 {
			log.Warnf("⚠️ Skipping malformed attendance entry %q", s)
			continue
		}
		entries = append(entries, models.AttendanceEntry{TagID: s[:i], Timestamp: s[i+1:]})
	}
	return entries, nil
}

// EncodeBorrows serializes borrow records as a JSON array of objects
func EncodeBorrows(logs []models.BorrowLog) ([]byte, error) {
	if logs == nil {
		logs = []models.BorrowLog{}
	}
	return json.Marshal(logs)
}

// DecodeBorrows parses a JSON array of borrow records
func DecodeBorrows(data []byte) ([]models.BorrowLog, error) {
	logs := []models.BorrowLog{}
	if err := json.Unmarshal(data, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode borrow logs: %w", err)
	}
	if logs == nil {
		logs = []models.BorrowLog{}
	}
	return logs, nil
}
