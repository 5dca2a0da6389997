package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// respondJSON 인코딩을 먼저 끝낸 뒤 상태 코드 기록
// 인코딩 실패 (NaN/Inf 등) 시 빈 200 대신 500
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(map[string]string{
			"error": "Failed to encode response",
		})
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
