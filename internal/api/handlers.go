package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/decoded-cipher/inovus-ama/internal/auth"
	"github.com/decoded-cipher/inovus-ama/internal/core"
	"github.com/decoded-cipher/inovus-ama/internal/notify"
)

const (
	maxUploadBytes = 10 << 20
	maxImageBytes  = 5 << 20
	maxSubjectLen  = 200
	maxDescLen     = 2000
	maxContactLen  = 100
)

// FileStore persists uploaded files and resolves their public URLs.
type FileStore interface {
	Configured() bool
	Put(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
	PublicURL(key string) string
}

// CaptchaVerifier checks a client captcha token. Verification never blocks
// a request; a failed check is logged and the request proceeds.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (auth.Outcome, error)
}

// FeedbackSink delivers a feedback submission somewhere a human will see it.
type FeedbackSink interface {
	Configured() bool
	Send(ctx context.Context, fb notify.Feedback) error
}

type APIHandler struct {
	answers  *core.AnswerService
	ingest   *core.IngestService
	files    FileStore
	captcha  CaptchaVerifier
	feedback FeedbackSink
	logger   *zap.Logger
}

func NewAPIHandler(answers *core.AnswerService, ingest *core.IngestService, files FileStore, captcha CaptchaVerifier, feedback FeedbackSink, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		answers:  answers,
		ingest:   ingest,
		files:    files,
		captcha:  captcha,
		feedback: feedback,
		logger:   logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type historyEntry struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

type AskRequest struct {
	Question            string         `json:"question"`
	ConversationHistory []historyEntry `json:"conversationHistory,omitempty"`
}

// filterHistory keeps only well-formed turns. Malformed entries from the
// widget are dropped, not rejected.
func filterHistory(entries []historyEntry) []core.Message {
	var history []core.Message
	for _, e := range entries {
		if e.Role != core.RoleUser && e.Role != core.RoleAssistant {
			continue
		}
		if strings.TrimSpace(e.Content) == "" {
			continue
		}
		ts := time.Now()
		if e.Timestamp != "" {
			if parsed, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
				ts = parsed
			}
		}
		history = append(history, core.Message{Role: e.Role, Content: e.Content, Timestamp: ts})
	}
	return history
}

func (h *APIHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	history := filterHistory(req.ConversationHistory)

	result, err := h.answers.Answer(r.Context(), req.Question, history)
	if err != nil {
		if errors.Is(err, core.ErrQuestionTooShort) {
			writeError(w, http.StatusBadRequest, "Question is too short")
			return
		}
		h.logger.Error("failed to answer question",
			zap.String("question", req.Question),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate answer")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type UploadResponse struct {
	Success             bool     `json:"success"`
	Key                 string   `json:"key,omitempty"`
	FileURL             string   `json:"fileUrl,omitempty"`
	TextExtracted       bool     `json:"textExtracted"`
	ChunksCreated       int      `json:"chunksCreated"`
	ChunksProcessed     int      `json:"chunksProcessed"`
	ChunksSkipped       int      `json:"chunksSkipped"`
	VectorizationErrors []string `json:"vectorizationErrors,omitempty"`
	Message             string   `json:"message"`
}

func (h *APIHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read uploaded file", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	// Malformed metadata is ignored rather than failing the upload.
	metadata := map[string]string{}
	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			h.logger.Warn("ignoring malformed upload metadata", zap.Error(err))
			metadata = map[string]string{}
		}
	}

	contentType := header.Header.Get("Content-Type")

	var key, fileURL string
	if h.files != nil && h.files.Configured() {
		key, err = h.files.Put(r.Context(), header.Filename, contentType, bytes.NewReader(data))
		if err != nil {
			h.logger.Error("failed to store file",
				zap.String("filename", header.Filename),
				zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to store file")
			return
		}
		fileURL = h.files.PublicURL(key)
	} else {
		h.logger.Warn("file storage not configured, skipping upload", zap.String("filename", header.Filename))
	}

	result, err := h.ingest.Ingest(r.Context(), core.IngestInput{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Data:        data,
		FileURL:     fileURL,
		Metadata:    metadata,
	})
	if err != nil {
		h.logger.Error("failed to ingest file",
			zap.String("filename", header.Filename),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to process file")
		return
	}

	message := "File uploaded and processed successfully"
	if !result.TextExtracted {
		message = "File uploaded, but no text could be extracted"
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success:             true,
		Key:                 key,
		FileURL:             fileURL,
		TextExtracted:       result.TextExtracted,
		ChunksCreated:       result.ChunksCreated,
		ChunksProcessed:     result.ChunksProcessed,
		ChunksSkipped:       result.ChunksSkipped,
		VectorizationErrors: result.Errors,
		Message:             message,
	})
}

func (h *APIHandler) FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	fbType := r.FormValue("type")
	if fbType != notify.FeedbackBug && fbType != notify.FeedbackImprovement {
		writeError(w, http.StatusBadRequest, "Type must be 'bug' or 'improvement'")
		return
	}

	subject := strings.TrimSpace(r.FormValue("subject"))
	if subject == "" || len(subject) > maxSubjectLen {
		writeError(w, http.StatusBadRequest, "Subject is required and must be at most 200 characters")
		return
	}

	description := strings.TrimSpace(r.FormValue("description"))
	if description == "" || len(description) > maxDescLen {
		writeError(w, http.StatusBadRequest, "Description is required and must be at most 2000 characters")
		return
	}

	contactEmail := strings.TrimSpace(r.FormValue("contactEmail"))
	if len(contactEmail) > maxContactLen {
		writeError(w, http.StatusBadRequest, "Contact email must be at most 100 characters")
		return
	}

	var image *notify.Attachment
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		if header.Size > maxImageBytes {
			writeError(w, http.StatusBadRequest, "Image must be at most 5MB")
			return
		}
		imageType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(imageType, "image/") {
			writeError(w, http.StatusBadRequest, "Attachment must be an image")
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			h.logger.Error("failed to read feedback image", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to read image")
			return
		}
		image = &notify.Attachment{Name: header.Filename, ContentType: imageType, Data: data}
	}

	clientIP := requestIP(r)

	if h.captcha != nil {
		outcome, err := h.captcha.Verify(r.Context(), r.FormValue("cf-turnstile-response"), clientIP)
		if err != nil {
			h.logger.Warn("captcha verification errored", zap.Error(err))
		} else if outcome == auth.OutcomeFailed {
			h.logger.Warn("captcha verification failed", zap.String("ip", clientIP))
		}
	}

	err := h.feedback.Send(r.Context(), notify.Feedback{
		Type:         fbType,
		Subject:      subject,
		Description:  description,
		ContactEmail: contactEmail,
		UserAgent:    r.UserAgent(),
		ClientIP:     clientIP,
		Country:      r.Header.Get("CF-IPCountry"),
		Image:        image,
	})
	if err != nil {
		h.logger.Error("failed to deliver feedback", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to submit feedback")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Feedback submitted successfully",
	})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func requestIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
